package services

import (
	"context"
	"errors"

	"github.com/Maheshwickramage/S3learnUID/internal/interfaces"
	"github.com/Maheshwickramage/S3learnUID/internal/models"
	"github.com/Maheshwickramage/S3learnUID/internal/pkg/limiter"

	"github.com/go-redis/redis_rate/v10"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
)

// NewCrossings returns, in ascending order, every milestone at or below total
// that is not in rewarded. It looks at the whole table, so a jump over several
// thresholds or a threshold missed earlier is still reported.
func NewCrossings(total int64, rewarded []int) []models.Milestone {
	seen := make(map[int]bool, len(rewarded))
	for _, threshold := range rewarded {
		seen[threshold] = true
	}

	var crossings []models.Milestone
	for _, milestone := range models.Milestones {
		if int64(milestone.Threshold) > total {
			break
		}
		if seen[milestone.Threshold] {
			continue
		}
		crossings = append(crossings, milestone)
	}

	return crossings
}

type MilestoneCheck struct {
	NewRewards     []*models.Reward `json:"new_rewards"`
	TotalDownloads int64            `json:"total_downloads"`
	Level          int64            `json:"level"`
}

type ServiceMilestone struct {
	container *do.Injector
	store     interfaces.Store
	limiter   interfaces.Limiter

	serviceReward       *ServiceReward
	serviceGamification *ServiceGamification
	serviceConfig       *ServiceConfig
}

func NewServiceMilestone(container *do.Injector) (*ServiceMilestone, error) {
	store, err := do.Invoke[interfaces.Store](container)
	if err != nil {
		return nil, err
	}

	rateLimiter, err := do.Invoke[interfaces.Limiter](container)
	if err != nil {
		return nil, err
	}

	serviceReward, err := do.Invoke[*ServiceReward](container)
	if err != nil {
		return nil, err
	}

	serviceGamification, err := do.Invoke[*ServiceGamification](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceMilestone{container, store, rateLimiter, serviceReward, serviceGamification, serviceConfig}, nil
}

// Evaluate creates the reward and milestone badge for every threshold newTotal
// has crossed. Only crossings whose reward this call inserted are returned, so
// concurrent evaluations of the same total report each reward once. Badges
// missing for earlier rewards are granted again.
func (service *ServiceMilestone) Evaluate(ctx context.Context, creatorID int64, newTotal int64) ([]models.MilestoneCrossing, error) {
	rewarded, err := service.store.RewardedMilestones(ctx, creatorID)
	if err != nil {
		return nil, persistenceError(err)
	}

	crossings := []models.MilestoneCrossing{}
	for _, milestone := range NewCrossings(newTotal, rewarded) {
		reward, created, err := service.serviceReward.Create(ctx, creatorID, milestone)
		if err != nil {
			return crossings, err
		}
		rewarded = append(rewarded, milestone.Threshold)
		if created {
			crossings = append(crossings, models.MilestoneCrossing{Milestone: milestone, Reward: reward})
		}
	}

	if err := service.grantMilestoneBadges(ctx, creatorID, rewarded); err != nil {
		return crossings, err
	}

	return crossings, nil
}

func (service *ServiceMilestone) grantMilestoneBadges(ctx context.Context, creatorID int64, thresholds []int) error {
	if len(thresholds) == 0 {
		return nil
	}

	badges, err := service.serviceGamification.Badges(ctx, creatorID)
	if err != nil {
		return err
	}

	held := make(map[models.BadgeKind]bool, len(badges))
	for _, badge := range badges {
		held[badge.Kind] = true
	}

	for _, threshold := range thresholds {
		kind := models.MilestoneBadge(threshold)
		if held[kind] {
			continue
		}
		if _, err := service.serviceGamification.GrantBadge(ctx, creatorID, kind); err != nil {
			return err
		}
		held[kind] = true
	}

	return nil
}

// CheckMilestones re-runs the evaluator against the stored total.
func (service *ServiceMilestone) CheckMilestones(ctx context.Context, creatorID int64) (*MilestoneCheck, error) {
	creator, err := service.store.FindCreatorByID(ctx, creatorID)
	if err != nil {
		return nil, storeError(err, "creator")
	}

	crossings, err := service.Evaluate(ctx, creatorID, creator.TotalDownloads)
	if err != nil {
		return nil, err
	}

	return &MilestoneCheck{
		NewRewards:     rewardsOf(crossings),
		TotalDownloads: creator.TotalDownloads,
		Level:          Level(creator.Points),
	}, nil
}

func (service *ServiceMilestone) AllowCheckMilestones(ctx context.Context, creatorID int64) error {
	perMinute, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_CHECK_MILESTONES_RATE_LIMIT_PER_MINUTE, CHECK_MILESTONES_DEFAULT_RATE_LIMIT_PER_MINUTE)
	if perMinute <= 0 {
		perMinute = CHECK_MILESTONES_DEFAULT_RATE_LIMIT_PER_MINUTE
	}

	err := service.limiter.Allow(ctx, LimitKeyCheckMilestones(creatorID), redis_rate.PerMinute(perMinute))
	if err != nil {
		if errors.Is(err, limiter.ErrRateLimited) {
			return errorx.Wrap(err, errorx.RateLimiting)
		}
		return errorx.Wrap(err, errorx.Service)
	}

	return nil
}

func rewardsOf(crossings []models.MilestoneCrossing) []*models.Reward {
	rewards := make([]*models.Reward, 0, len(crossings))
	for _, crossing := range crossings {
		rewards = append(rewards, crossing.Reward)
	}
	return rewards
}
