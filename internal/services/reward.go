package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Maheshwickramage/S3learnUID/internal/datastore/redis_store"
	"github.com/Maheshwickramage/S3learnUID/internal/interfaces"
	"github.com/Maheshwickramage/S3learnUID/internal/models"
	"github.com/Maheshwickramage/S3learnUID/internal/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/go-redsync/redsync/v4"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/sirupsen/logrus"
)

type ServiceReward struct {
	container *do.Injector
	redisDB   redis.UniversalClient
	rs        *redsync.Redsync
	store     interfaces.Store
	validate  *validator.Validate
}

func NewServiceReward(container *do.Injector) (*ServiceReward, error) {
	dbRedis, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	rs, err := do.Invoke[*redsync.Redsync](container)
	if err != nil {
		return nil, err
	}

	store, err := do.Invoke[interfaces.Store](container)
	if err != nil {
		return nil, err
	}

	return &ServiceReward{container, dbRedis, rs, store, validator.New()}, nil
}

func newReward(creatorID int64, milestone models.Milestone, now time.Time) *models.Reward {
	reward := &models.Reward{
		ID:          uuid.New(),
		CreatorID:   creatorID,
		Milestone:   milestone.Threshold,
		Kind:        milestone.Kind,
		Title:       milestone.Title,
		Description: milestone.Description,
		Status:      models.REWARD_STATUS_PENDING,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// nothing to ship, nothing to claim
	if !milestone.Kind.RequiresShipping() {
		reward.Status = models.REWARD_STATUS_DELIVERED
		reward.DeliveredAt = &now
	}

	return reward
}

// Create inserts the reward for (creator, milestone). created is false when
// the creator already holds it; that is not an error.
func (service *ServiceReward) Create(ctx context.Context, creatorID int64, milestone models.Milestone) (*models.Reward, bool, error) {
	reward := newReward(creatorID, milestone, time.Now())

	created, err := service.store.InsertReward(ctx, reward)
	if err != nil {
		return nil, false, persistenceError(err)
	}
	if !created {
		return nil, false, nil
	}

	logger.WithFields(logrus.Fields{
		"creator_id": creatorID,
		"milestone":  milestone.Threshold,
		"kind":       milestone.Kind,
		"reward_id":  reward.ID,
	}).Info("milestone reward created")

	err = redis_store.PushRewardNotification(ctx, service.redisDB, creatorID, &models.RewardNotification{
		RewardID:    reward.ID.String(),
		Milestone:   reward.Milestone,
		Kind:        reward.Kind,
		Title:       reward.Title,
		Description: reward.Description,
		CreatedAt:   reward.CreatedAt,
	})
	if err != nil {
		logger.WithFields(logrus.Fields{"creator_id": creatorID, "reward_id": reward.ID}).Warn("reward inbox push failed: ", err)
	}

	return reward, true, nil
}

func (service *ServiceReward) ListByCreator(ctx context.Context, creatorID int64) ([]models.Reward, error) {
	rewards, err := service.store.ListRewardsByCreator(ctx, creatorID)
	if err != nil {
		return nil, persistenceError(err)
	}
	if rewards == nil {
		rewards = []models.Reward{}
	}

	return rewards, nil
}

func (service *ServiceReward) ListForFulfillment(ctx context.Context, operator *models.OperatorContext, status models.RewardStatus, limit, offset int) ([]models.Reward, error) {
	if !operator.IsAdmin() {
		return nil, ErrForbidden
	}

	if status != "" && !status.Valid() {
		return nil, validationError("unknown status %q", status)
	}

	if limit <= 0 {
		limit = ADMIN_REWARDS_DEFAULT_LIMIT
	}
	if offset < 0 {
		offset = 0
	}

	rewards, err := service.store.ListRewards(ctx, status, limit, offset)
	if err != nil {
		return nil, persistenceError(err)
	}
	if rewards == nil {
		rewards = []models.Reward{}
	}

	return rewards, nil
}

func (service *ServiceReward) DrainInbox(ctx context.Context, creatorID int64) ([]*models.RewardNotification, error) {
	return redis_store.DrainRewardNotifications(ctx, service.redisDB, creatorID)
}

func normalizeShippingInfo(kind models.RewardKind, details models.ShippingInfo) models.ShippingInfo {
	details.FullName = strings.TrimSpace(details.FullName)
	details.Email = strings.TrimSpace(details.Email)
	details.Phone = strings.TrimSpace(details.Phone)
	details.AddressLine1 = strings.TrimSpace(details.AddressLine1)
	details.AddressLine2 = strings.TrimSpace(details.AddressLine2)
	details.City = strings.TrimSpace(details.City)
	details.State = strings.TrimSpace(details.State)
	details.PostalCode = strings.TrimSpace(details.PostalCode)
	details.Country = strings.TrimSpace(details.Country)
	details.Size = strings.ToUpper(strings.TrimSpace(details.Size))

	if !kind.RequiresSize() {
		details.Size = ""
	}

	return details
}

func (service *ServiceReward) validateShippingInfo(kind models.RewardKind, details models.ShippingInfo) error {
	var fields []string

	err := service.validate.Struct(details)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return validationError("%v", err)
		}
		for _, fieldErr := range validationErrors {
			fields = append(fields, fmt.Sprintf("%s (%s)", fieldErr.Field(), fieldErr.Tag()))
		}
	}

	if kind.RequiresSize() {
		rule := "required,oneof=" + strings.Join(models.ApparelSizes, " ")
		if err := service.validate.Var(details.Size, rule); err != nil {
			fields = append(fields, "Size (oneof)")
		}
	}

	if len(fields) > 0 {
		return validationError("invalid shipping details: %s", strings.Join(fields, ", "))
	}

	return nil
}

func (service *ServiceReward) SubmitShipping(ctx context.Context, rewardID uuid.UUID, requesterCreatorID int64, details models.ShippingInfo) (*models.Reward, error) {
	reward, err := service.store.FindRewardByID(ctx, rewardID)
	if err != nil {
		return nil, storeError(err, "reward")
	}

	// someone else's reward looks exactly like a missing one
	if reward.CreatorID != requesterCreatorID {
		return nil, notFound("reward")
	}

	if !reward.Kind.RequiresShipping() {
		return nil, invalidState("reward kind %s does not ship", reward.Kind)
	}

	if reward.Status != models.REWARD_STATUS_PENDING {
		return nil, invalidState("reward is %s, shipping already submitted", reward.Status)
	}

	details = normalizeShippingInfo(reward.Kind, details)
	if err := service.validateShippingInfo(reward.Kind, details); err != nil {
		return nil, err
	}

	mutex := service.rs.NewMutex(LockKeyRewardShipping(reward.ID), redsync.WithExpiry(LOCK_EXPIRY_SHIPPING), redsync.WithTries(1))
	if err := mutex.TryLockContext(ctx); err != nil {
		return nil, invalidState("shipping submission already in progress")
	}
	// nolint:errcheck
	defer mutex.UnlockContext(ctx)

	now := time.Now()
	updated := *reward
	updated.Status = models.REWARD_STATUS_ADDRESS_SUBMITTED
	updated.ShippingInfo = &details
	updated.ClaimedAt = &now
	updated.UpdatedAt = now

	ok, err := service.store.UpdateRewardState(ctx, &updated, models.REWARD_STATUS_PENDING)
	if err != nil {
		return nil, persistenceError(err)
	}
	if !ok {
		return nil, invalidState("reward is no longer pending")
	}

	logger.WithFields(logrus.Fields{"reward_id": reward.ID, "creator_id": reward.CreatorID}).Info("shipping details submitted")

	return &updated, nil
}

func (service *ServiceReward) UpdateFulfillment(ctx context.Context, rewardID uuid.UUID, operator *models.OperatorContext, update models.FulfillmentUpdate) (*models.Reward, error) {
	if !operator.IsAdmin() {
		return nil, ErrForbidden
	}

	if !update.Status.Valid() {
		return nil, validationError("unknown status %q", update.Status)
	}

	reward, err := service.store.FindRewardByID(ctx, rewardID)
	if err != nil {
		return nil, storeError(err, "reward")
	}

	if !reward.Status.CanTransitionTo(update.Status) {
		return nil, invalidState("cannot move reward from %s to %s", reward.Status, update.Status)
	}

	now := time.Now()
	updated := *reward
	updated.Status = update.Status
	updated.UpdatedAt = now
	if update.TrackingNumber != nil {
		updated.TrackingNumber = update.TrackingNumber
	}
	if update.Notes != nil {
		updated.Notes = update.Notes
	}
	if update.Status == models.REWARD_STATUS_SHIPPED && updated.ShippedAt == nil {
		updated.ShippedAt = &now
	}
	if update.Status == models.REWARD_STATUS_DELIVERED && updated.DeliveredAt == nil {
		updated.DeliveredAt = &now
	}

	ok, err := service.store.UpdateRewardState(ctx, &updated, reward.Status)
	if err != nil {
		return nil, persistenceError(err)
	}
	if !ok {
		return nil, invalidState("reward changed concurrently, reload and retry")
	}

	logger.WithFields(logrus.Fields{
		"reward_id":   reward.ID,
		"operator_id": operator.OperatorID,
		"from":        reward.Status,
		"to":          updated.Status,
	}).Info("reward fulfillment updated")

	return &updated, nil
}
