package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	CONFIG_CHECK_MILESTONES_RATE_LIMIT_PER_MINUTE = "CHECK_MILESTONES_RATE_LIMIT_PER_MINUTE"
	CONFIG_LEADERBOARD_LIMIT                      = "LEADERBOARD_LIMIT"
	CONFIG_CRONJOB_TIME_MILESTONE_SWEEP           = "CRONJOB_TIME_MILESTONE_SWEEP"
	CONFIG_CRONJOB_TIME_WEEKLY_RESET              = "CRONJOB_TIME_WEEKLY_RESET"

	LEADERBOARD_CREATORS        = "creators"
	LEADERBOARD_CREATORS_WEEKLY = "creators_weekly"

	CHECK_MILESTONES_DEFAULT_RATE_LIMIT_PER_MINUTE = 10
	LEADERBOARD_DEFAULT_LIMIT                      = 20
	ADMIN_REWARDS_DEFAULT_LIMIT                    = 50

	POINTS_PER_UPLOAD   = 10
	POINTS_PER_DOWNLOAD = 1

	CACHE_TTL_1_MIN  = 1 * time.Minute
	CACHE_TTL_5_MINS = 5 * time.Minute

	LOCK_EXPIRY_SHIPPING = 10 * time.Second
)

func LockKeyRewardShipping(rewardID uuid.UUID) string {
	return fmt.Sprintf("lock:reward-shipping:%s", rewardID)
}

func LimitKeyCheckMilestones(creatorID int64) string {
	return fmt.Sprintf("limit:check-milestones:%d", creatorID)
}

// db
func DBKeyConfig(key string) string {
	return fmt.Sprintf("config:%s", strings.ToLower(key))
}

func DBKeyComponent(componentID uuid.UUID) string {
	return fmt.Sprintf("component:%s", componentID)
}

func DBKeyLeaderboard(name string, limit int) string {
	return fmt.Sprintf("leaderboard_page:%s:%d", strings.ToLower(name), limit)
}
