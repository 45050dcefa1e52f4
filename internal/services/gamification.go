package services

import (
	"context"

	"github.com/Maheshwickramage/S3learnUID/internal/interfaces"
	"github.com/Maheshwickramage/S3learnUID/internal/models"
	"github.com/Maheshwickramage/S3learnUID/internal/pkg/logger"

	"github.com/samber/do"
	"github.com/sirupsen/logrus"
)

type ServiceGamification struct {
	container *do.Injector
	store     interfaces.Store
}

func NewServiceGamification(container *do.Injector) (*ServiceGamification, error) {
	store, err := do.Invoke[interfaces.Store](container)
	if err != nil {
		return nil, err
	}

	return &ServiceGamification{container, store}, nil
}

func Level(points int64) int64 {
	return models.LevelForPoints(points)
}

// GrantBadge adds kind to the creator's badge set; granting twice is a no-op.
func (service *ServiceGamification) GrantBadge(ctx context.Context, creatorID int64, kind models.BadgeKind) (bool, error) {
	granted, err := service.store.InsertBadge(ctx, &models.CreatorBadge{
		CreatorID: creatorID,
		Kind:      kind,
	})
	if err != nil {
		return false, persistenceError(err)
	}

	if granted {
		logger.WithFields(logrus.Fields{"creator_id": creatorID, "badge": kind}).Info("badge granted")
	}

	return granted, nil
}

func (service *ServiceGamification) Badges(ctx context.Context, creatorID int64) ([]models.CreatorBadge, error) {
	badges, err := service.store.ListBadges(ctx, creatorID)
	if err != nil {
		return nil, persistenceError(err)
	}
	if badges == nil {
		badges = []models.CreatorBadge{}
	}

	return badges, nil
}
