package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Maheshwickramage/S3learnUID/internal/interfaces"
	"github.com/Maheshwickramage/S3learnUID/internal/models"
	"github.com/Maheshwickramage/S3learnUID/internal/pkg/caching"
	"github.com/Maheshwickramage/S3learnUID/internal/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	sweepPageSize    = 100
	sweepConcurrency = 8

	profileComponentsLimit = 50
)

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

type Stats struct {
	TotalDownloads int64                 `json:"total_downloads"`
	TotalUploads   int64                 `json:"total_uploads"`
	Points         int64                 `json:"points"`
	Level          int64                 `json:"level"`
	Badges         []models.CreatorBadge `json:"badges"`
	PendingRewards []models.Reward       `json:"pending_rewards"`
	ClaimedRewards []models.Reward       `json:"claimed_rewards"`
	NewRewards     []*models.Reward      `json:"new_rewards"`
}

// PublicProfile is what anyone may see about a creator.
type PublicProfile struct {
	Creator    *models.Creator       `json:"creator"`
	Badges     []models.CreatorBadge `json:"badges"`
	Components []models.Component    `json:"components"`
}

type UploadResult struct {
	Component    *models.Component  `json:"component"`
	TotalUploads int64              `json:"total_uploads"`
	Points       int64              `json:"points"`
	Level        int64              `json:"level"`
	NewBadges    []models.BadgeKind `json:"new_badges"`
	NewRewards   []*models.Reward   `json:"new_rewards"`
}

type ServiceCreator struct {
	container     *do.Injector
	store         interfaces.Store
	cache         caching.Cache
	readonlyCache caching.ReadOnlyCache
	validate      *validator.Validate

	serviceMilestone    *ServiceMilestone
	serviceGamification *ServiceGamification
	serviceReward       *ServiceReward
	serviceLeaderboard  *ServiceLeaderboard
}

func NewServiceCreator(container *do.Injector) (*ServiceCreator, error) {
	store, err := do.Invoke[interfaces.Store](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readonlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	serviceMilestone, err := do.Invoke[*ServiceMilestone](container)
	if err != nil {
		return nil, err
	}

	serviceGamification, err := do.Invoke[*ServiceGamification](container)
	if err != nil {
		return nil, err
	}

	serviceReward, err := do.Invoke[*ServiceReward](container)
	if err != nil {
		return nil, err
	}

	serviceLeaderboard, err := do.Invoke[*ServiceLeaderboard](container)
	if err != nil {
		return nil, err
	}

	validate := validator.New()

	return &ServiceCreator{container, store, cache, readonlyCache, validate, serviceMilestone, serviceGamification, serviceReward, serviceLeaderboard}, nil
}

func (service *ServiceCreator) FindOrCreateCreator(ctx context.Context, creatorAuth *models.CreatorFromAuth) (*models.Creator, error) {
	if creatorAuth == nil {
		return nil, errors.New("creatorAuth is nil")
	}

	username := strings.ToLower(strings.TrimSpace(creatorAuth.Username))
	creator, err := service.store.FindCreatorByID(ctx, creatorAuth.ID)
	if err == nil {
		if creator.Username != username || creator.DisplayName != creatorAuth.DisplayName {
			creator.Username = username
			creator.DisplayName = creatorAuth.DisplayName
			if err := service.store.UpdateCreatorProfile(ctx, creator); err != nil {
				return nil, persistenceError(err)
			}
		}
		return creator.WithLevel(), nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, persistenceError(err)
	}

	now := time.Now()
	err = service.store.InsertCreator(ctx, &models.Creator{
		ID:          creatorAuth.ID,
		Username:    username,
		DisplayName: creatorAuth.DisplayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, persistenceError(err)
	}

	logger.WithFields(logrus.Fields{"creator_id": creatorAuth.ID, "username": username}).Info("creator created")

	// a concurrent first request may have won the insert
	creator, err = service.store.FindCreatorByID(ctx, creatorAuth.ID)
	if err != nil {
		return nil, storeError(err, "creator")
	}

	return creator.WithLevel(), nil
}

// GetStats refreshes milestones before reading, so a creator whose rewards
// were missed sees them on the next visit.
func (service *ServiceCreator) GetStats(ctx context.Context, creatorID int64) (*Stats, error) {
	check, err := service.serviceMilestone.CheckMilestones(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	creator, err := service.store.FindCreatorByID(ctx, creatorID)
	if err != nil {
		return nil, storeError(err, "creator")
	}

	badges, err := service.serviceGamification.Badges(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	rewards, err := service.serviceReward.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalDownloads: creator.TotalDownloads,
		TotalUploads:   creator.TotalUploads,
		Points:         creator.Points,
		Level:          Level(creator.Points),
		Badges:         badges,
		PendingRewards: []models.Reward{},
		ClaimedRewards: []models.Reward{},
		NewRewards:     check.NewRewards,
	}

	for _, reward := range rewards {
		switch reward.Status {
		case models.REWARD_STATUS_PENDING:
			stats.PendingRewards = append(stats.PendingRewards, reward)
		case models.REWARD_STATUS_CANCELLED:
		default:
			stats.ClaimedRewards = append(stats.ClaimedRewards, reward)
		}
	}

	return stats, nil
}

func slugify(name string, id uuid.UUID) string {
	base := strings.Trim(slugInvalidChars.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if base == "" {
		base = "component"
	}
	return fmt.Sprintf("%s-%s", base, id.String()[:8])
}

func (service *ServiceCreator) validateUpload(upload models.ComponentUpload) error {
	if err := service.validate.Struct(upload); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return validationError("%v", err)
		}

		fields := make([]string, 0, len(validationErrors))
		for _, fieldErr := range validationErrors {
			fields = append(fields, fmt.Sprintf("%s (%s)", fieldErr.Field(), fieldErr.Tag()))
		}
		return validationError("invalid component: %s", strings.Join(fields, ", "))
	}

	for _, category := range models.ComponentCategories {
		if category == upload.Category {
			return nil
		}
	}

	return validationError("unknown category %q", upload.Category)
}

// RecordUpload registers a component for the creator: +10 points, rookie badge
// on the first upload, then a milestone evaluation.
func (service *ServiceCreator) RecordUpload(ctx context.Context, creatorID int64, upload models.ComponentUpload) (*UploadResult, error) {
	upload.Name = strings.TrimSpace(upload.Name)
	if err := service.validateUpload(upload); err != nil {
		return nil, err
	}

	creator, err := service.store.FindCreatorByID(ctx, creatorID)
	if err != nil {
		return nil, storeError(err, "creator")
	}

	creatorName := creator.DisplayName
	if creatorName == "" {
		creatorName = creator.Username
	}

	version := upload.Version
	if version == "" {
		version = "1.0.0"
	}

	tags := make([]string, 0, len(upload.Tags))
	for _, tag := range upload.Tags {
		if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
			tags = append(tags, tag)
		}
	}

	now := time.Now()
	id := uuid.New()
	component := &models.Component{
		ID:           id,
		CreatorID:    &creator.ID,
		CreatorName:  creatorName,
		Name:         upload.Name,
		Slug:         slugify(upload.Name, id),
		Description:  strings.TrimSpace(upload.Description),
		Category:     upload.Category,
		Tags:         tags,
		PreviewImage: upload.PreviewImage,
		PreviewVideo: upload.PreviewVideo,
		ZipFile:      upload.ZipFile,
		DemoURL:      upload.DemoURL,
		Version:      version,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	owner, err := service.store.RegisterUpload(ctx, component, POINTS_PER_UPLOAD)
	if err != nil {
		return nil, storeError(err, "creator")
	}

	result := &UploadResult{
		Component:    component,
		TotalUploads: owner.TotalUploads,
		Points:       owner.Points,
		Level:        Level(owner.Points),
		NewBadges:    []models.BadgeKind{},
	}

	if owner.TotalUploads >= 1 {
		granted, err := service.serviceGamification.GrantBadge(ctx, owner.ID, models.BADGE_ROOKIE)
		if err != nil {
			return nil, err
		}
		if granted {
			result.NewBadges = append(result.NewBadges, models.BADGE_ROOKIE)
		}
	}

	crossings, err := service.serviceMilestone.Evaluate(ctx, owner.ID, owner.TotalDownloads)
	if err != nil {
		return nil, err
	}
	result.NewRewards = rewardsOf(crossings)
	for _, crossing := range crossings {
		result.NewBadges = append(result.NewBadges, models.MilestoneBadge(crossing.Milestone.Threshold))
	}

	logger.WithFields(logrus.Fields{"creator_id": owner.ID, "component_id": component.ID, "uploads": owner.TotalUploads}).Info("component registered")

	return result, nil
}

func (service *ServiceCreator) GetPublicProfile(ctx context.Context, username string) (*PublicProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, validationError("username required")
	}

	creator, err := service.store.FindCreatorByUsername(ctx, username)
	if err != nil {
		return nil, storeError(err, "creator")
	}

	badges, err := service.serviceGamification.Badges(ctx, creator.ID)
	if err != nil {
		return nil, err
	}

	components, err := service.store.ListComponentsByCreator(ctx, creator.ID, profileComponentsLimit)
	if err != nil {
		return nil, persistenceError(err)
	}
	if components == nil {
		components = []models.Component{}
	}

	return &PublicProfile{
		Creator:    creator.WithLevel(),
		Badges:     badges,
		Components: components,
	}, nil
}

func (service *ServiceCreator) GetComponent(ctx context.Context, componentID uuid.UUID) (*models.Component, error) {
	callback := func() (*models.Component, error) {
		component, err := service.store.FindComponentByID(ctx, componentID)
		if err != nil {
			return nil, storeError(err, "component")
		}
		return component, nil
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyComponent(componentID), CACHE_TTL_5_MINS, callback)
}

// AdjustDownloads raises a creator's total to at least total and re-evaluates.
// Totals are never lowered.
func (service *ServiceCreator) AdjustDownloads(ctx context.Context, operator *models.OperatorContext, creatorID int64, total int64) (*MilestoneCheck, error) {
	if !operator.IsAdmin() {
		return nil, ErrForbidden
	}

	if total < 0 {
		return nil, validationError("total must not be negative")
	}

	creator, err := service.store.RaiseCreatorDownloads(ctx, creatorID, total)
	if err != nil {
		return nil, storeError(err, "creator")
	}

	logger.WithFields(logrus.Fields{
		"creator_id":  creatorID,
		"operator_id": operator.OperatorID,
		"requested":   total,
		"total":       creator.TotalDownloads,
	}).Info("creator downloads adjusted")

	return service.evaluateAndProject(ctx, creator)
}

// Reconcile lifts the running counter to the ledger count when it lags, then
// evaluates.
func (service *ServiceCreator) Reconcile(ctx context.Context, creatorID int64) (*MilestoneCheck, error) {
	creator, err := service.store.FindCreatorByID(ctx, creatorID)
	if err != nil {
		return nil, storeError(err, "creator")
	}

	ledgerCount, err := service.store.CountCreditedDownloadsByOwner(ctx, creatorID)
	if err != nil {
		return nil, persistenceError(err)
	}

	if ledgerCount > creator.TotalDownloads {
		logger.WithFields(logrus.Fields{
			"creator_id": creatorID,
			"counter":    creator.TotalDownloads,
			"ledger":     ledgerCount,
		}).Warn("download counter behind ledger, raising")

		creator, err = service.store.RaiseCreatorDownloads(ctx, creatorID, ledgerCount)
		if err != nil {
			return nil, storeError(err, "creator")
		}
	}

	return service.evaluateAndProject(ctx, creator)
}

func (service *ServiceCreator) evaluateAndProject(ctx context.Context, creator *models.Creator) (*MilestoneCheck, error) {
	if err := service.serviceLeaderboard.UpdateCreatorTotal(ctx, creator); err != nil {
		logger.WithFields(logrus.Fields{"creator_id": creator.ID}).Warn("leaderboard update failed: ", err)
	}

	crossings, err := service.serviceMilestone.Evaluate(ctx, creator.ID, creator.TotalDownloads)
	if err != nil {
		return nil, err
	}

	return &MilestoneCheck{
		NewRewards:     rewardsOf(crossings),
		TotalDownloads: creator.TotalDownloads,
		Level:          Level(creator.Points),
	}, nil
}

// SweepMilestones reconciles every creator and returns how many rewards were
// created.
func (service *ServiceCreator) SweepMilestones(ctx context.Context) (int64, error) {
	var created int64

	for offset := 0; ; offset += sweepPageSize {
		ids, err := service.store.ListCreatorIDs(ctx, sweepPageSize, offset)
		if err != nil {
			return created, persistenceError(err)
		}
		if len(ids) == 0 {
			break
		}

		errWg, errCtx := errgroup.WithContext(ctx)
		errWg.SetLimit(sweepConcurrency)
		for _, id := range ids {
			id := id
			errWg.Go(func() error {
				check, err := service.Reconcile(errCtx, id)
				if err != nil {
					return fmt.Errorf("creator %d: %w", id, err)
				}
				atomic.AddInt64(&created, int64(len(check.NewRewards)))
				return nil
			})
		}

		if err := errWg.Wait(); err != nil {
			return created, err
		}
	}

	return created, nil
}
