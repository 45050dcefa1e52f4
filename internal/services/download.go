package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Maheshwickramage/S3learnUID/internal/interfaces"
	"github.com/Maheshwickramage/S3learnUID/internal/models"
	"github.com/Maheshwickramage/S3learnUID/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/sirupsen/logrus"
)

const maxUserAgentLength = 512

type DownloadResult struct {
	Credited           bool             `json:"credited"`
	NewTotal           int64            `json:"new_total"`
	ComponentDownloads int64            `json:"component_downloads"`
	NewRewards         []*models.Reward `json:"new_rewards"`
	Level              int64            `json:"level"`
}

type ServiceDownload struct {
	container *do.Injector
	store     interfaces.Store

	serviceMilestone   *ServiceMilestone
	serviceLeaderboard *ServiceLeaderboard
}

func NewServiceDownload(container *do.Injector) (*ServiceDownload, error) {
	store, err := do.Invoke[interfaces.Store](container)
	if err != nil {
		return nil, err
	}

	serviceMilestone, err := do.Invoke[*ServiceMilestone](container)
	if err != nil {
		return nil, err
	}

	serviceLeaderboard, err := do.Invoke[*ServiceLeaderboard](container)
	if err != nil {
		return nil, err
	}

	return &ServiceDownload{container, store, serviceMilestone, serviceLeaderboard}, nil
}

func validateIdentity(identity models.DownloaderIdentity) (models.DownloaderIdentity, error) {
	identity.Fingerprint = strings.TrimSpace(identity.Fingerprint)

	if identity.UserID != nil && *identity.UserID <= 0 {
		return identity, validationError("invalid user reference")
	}

	if identity.UserID == nil && identity.Fingerprint == "" {
		return identity, validationError("downloader identity required")
	}

	if len(identity.Fingerprint) > models.MAX_FINGERPRINT_LENGTH {
		return identity, validationError("fingerprint longer than %d characters", models.MAX_FINGERPRINT_LENGTH)
	}

	if len(identity.UserAgent) > maxUserAgentLength {
		identity.UserAgent = identity.UserAgent[:maxUserAgentLength]
	}

	return identity, nil
}

// RecordDownload credits the component's owner at most once per identity and
// runs the milestone evaluator on the post-increment total.
func (service *ServiceDownload) RecordDownload(ctx context.Context, componentID uuid.UUID, identity models.DownloaderIdentity) (*DownloadResult, error) {
	identity, err := validateIdentity(identity)
	if err != nil {
		return nil, err
	}

	event := &models.DownloadEvent{
		ID:           uuid.New(),
		ComponentID:  componentID,
		IdentityKey:  identity.Key(),
		UserID:       identity.UserID,
		IPAddress:    identity.IPAddress,
		UserAgent:    identity.UserAgent,
		DownloadedAt: time.Now(),
	}
	if identity.Fingerprint != "" {
		fingerprint := identity.Fingerprint
		event.Fingerprint = &fingerprint
	}

	credit, err := service.store.CreditDownload(ctx, event)
	if err != nil {
		return nil, storeError(err, "component")
	}

	result := &DownloadResult{
		Credited:           credit.Credited,
		ComponentDownloads: credit.Component.Downloads,
		NewRewards:         []*models.Reward{},
		Level:              Level(0),
	}

	if !credit.Credited {
		if credit.Component.CreatorID == nil {
			return result, nil
		}

		owner, err := service.store.FindCreatorByID(ctx, *credit.Component.CreatorID)
		if errors.Is(err, sql.ErrNoRows) {
			return result, nil
		}
		if err != nil {
			return nil, persistenceError(err)
		}
		result.NewTotal = owner.TotalDownloads
		result.Level = Level(owner.Points)
		return result, nil
	}

	owner := credit.Owner
	if owner == nil {
		return result, nil
	}

	result.NewTotal = owner.TotalDownloads
	result.Level = Level(owner.Points)

	logger.WithFields(logrus.Fields{
		"component_id": componentID,
		"creator_id":   owner.ID,
		"total":        owner.TotalDownloads,
	}).Debug("download credited")

	if err := service.serviceLeaderboard.RecordCredit(ctx, owner); err != nil {
		logger.WithFields(logrus.Fields{"creator_id": owner.ID}).Warn("leaderboard update failed: ", err)
	}

	crossings, err := service.serviceMilestone.Evaluate(ctx, owner.ID, owner.TotalDownloads)
	if err != nil {
		return nil, err
	}
	result.NewRewards = rewardsOf(crossings)

	return result, nil
}
