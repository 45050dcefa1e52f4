package interfaces

import (
	"context"
	"time"

	"github.com/Maheshwickramage/S3learnUID/internal/models"

	"github.com/go-redis/redis_rate/v10"
	"github.com/google/uuid"
)

type Limiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) error
}

// Store is the persistence contract shared by the postgres datastore and the
// in-memory store. Missing rows surface as sql.ErrNoRows.
type Store interface {
	InsertCreator(ctx context.Context, creator *models.Creator) error
	FindCreatorByID(ctx context.Context, creatorID int64) (*models.Creator, error)
	// FindCreatorByUsername returns the oldest creator holding username.
	FindCreatorByUsername(ctx context.Context, username string) (*models.Creator, error)
	UpdateCreatorProfile(ctx context.Context, creator *models.Creator) error
	ListCreatorIDs(ctx context.Context, limit, offset int) ([]int64, error)
	// RaiseCreatorDownloads sets total_downloads to max(current, total).
	RaiseCreatorDownloads(ctx context.Context, creatorID int64, total int64) (*models.Creator, error)

	// RegisterUpload inserts the component and bumps the owner's upload count
	// and points in one transaction.
	RegisterUpload(ctx context.Context, component *models.Component, points int64) (*models.Creator, error)
	FindComponentByID(ctx context.Context, componentID uuid.UUID) (*models.Component, error)
	ListComponentsByCreator(ctx context.Context, creatorID int64, limit int) ([]models.Component, error)

	// CreditDownload inserts the event if absent and, on insert, increments the
	// component and owner counters in the same transaction.
	CreditDownload(ctx context.Context, event *models.DownloadEvent) (*models.CreditResult, error)
	CountCreditedDownloadsByOwner(ctx context.Context, creatorID int64) (int64, error)
	ListDownloadCountsFromTime(ctx context.Context, from time.Time, limit, offset int) ([]*models.CreatorDownloadCount, error)

	InsertBadge(ctx context.Context, badge *models.CreatorBadge) (bool, error)
	ListBadges(ctx context.Context, creatorID int64) ([]models.CreatorBadge, error)

	InsertReward(ctx context.Context, reward *models.Reward) (bool, error)
	FindRewardByID(ctx context.Context, rewardID uuid.UUID) (*models.Reward, error)
	ListRewardsByCreator(ctx context.Context, creatorID int64) ([]models.Reward, error)
	ListRewards(ctx context.Context, status models.RewardStatus, limit, offset int) ([]models.Reward, error)
	RewardedMilestones(ctx context.Context, creatorID int64) ([]int, error)
	// UpdateRewardState writes the reward only if its stored status still equals from.
	UpdateRewardState(ctx context.Context, reward *models.Reward, from models.RewardStatus) (bool, error)

	GetConfigByKey(ctx context.Context, key string) (*models.Config, error)
	EditConfig(ctx context.Context, config *models.Config) error
}
