package datastore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Maheshwickramage/S3learnUID/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Store serves the persistence contract over postgres. Anything the milestone
// evaluator reads goes to the primary; the replica only serves listings.
type Store struct {
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
}

func NewStore(postgresDB *bun.DB, readonlyPostgresDB *bun.DB) *Store {
	if readonlyPostgresDB == nil {
		readonlyPostgresDB = postgresDB
	}
	return &Store{postgresDB, readonlyPostgresDB}
}

func (store *Store) InsertCreator(ctx context.Context, creator *models.Creator) error {
	return InsertCreator(ctx, store.postgresDB, creator)
}

func (store *Store) FindCreatorByID(ctx context.Context, creatorID int64) (*models.Creator, error) {
	return FindCreatorByID(ctx, store.postgresDB, creatorID)
}

func (store *Store) UpdateCreatorProfile(ctx context.Context, creator *models.Creator) error {
	return UpdateCreatorProfile(ctx, store.postgresDB, creator)
}

func (store *Store) ListCreatorIDs(ctx context.Context, limit, offset int) ([]int64, error) {
	return ListCreatorIDs(ctx, store.readonlyPostgresDB, limit, offset)
}

func (store *Store) RaiseCreatorDownloads(ctx context.Context, creatorID int64, total int64) (*models.Creator, error) {
	return RaiseCreatorDownloads(ctx, store.postgresDB, creatorID, total)
}

func (store *Store) RegisterUpload(ctx context.Context, component *models.Component, points int64) (*models.Creator, error) {
	var creator *models.Creator
	err := store.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := InsertComponent(ctx, tx, component); err != nil {
			return err
		}

		if component.CreatorID == nil {
			return nil
		}

		var err error
		creator, err = IncrementCreatorUploads(ctx, tx, *component.CreatorID, points)
		return err
	})
	if err != nil {
		return nil, err
	}

	return creator, nil
}

func (store *Store) FindCreatorByUsername(ctx context.Context, username string) (*models.Creator, error) {
	return FindCreatorByUsername(ctx, store.readonlyPostgresDB, username)
}

func (store *Store) ListComponentsByCreator(ctx context.Context, creatorID int64, limit int) ([]models.Component, error) {
	return ListComponentsByCreator(ctx, store.readonlyPostgresDB, creatorID, limit)
}

func (store *Store) FindComponentByID(ctx context.Context, componentID uuid.UUID) (*models.Component, error) {
	return FindComponentByID(ctx, store.postgresDB, componentID)
}

func (store *Store) CreditDownload(ctx context.Context, event *models.DownloadEvent) (*models.CreditResult, error) {
	result := &models.CreditResult{}
	err := store.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		component, err := FindComponentByID(ctx, tx, event.ComponentID)
		if err != nil {
			return err
		}
		result.Component = component

		inserted, err := InsertDownloadEvent(ctx, tx, event)
		if err != nil {
			return err
		}
		if !inserted {
			return nil
		}
		result.Credited = true

		result.Component, err = IncrementComponentDownloads(ctx, tx, event.ComponentID)
		if err != nil {
			return err
		}

		if component.CreatorID == nil {
			return nil
		}

		result.Owner, err = unresolvedOwner(IncrementCreatorDownloads(ctx, tx, *component.CreatorID))
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// unresolvedOwner turns a missing creator row into a nil owner. The credit
// still stands; only the aggregator step is skipped.
func unresolvedOwner(owner *models.Creator, err error) (*models.Creator, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return owner, nil
}

func (store *Store) CountCreditedDownloadsByOwner(ctx context.Context, creatorID int64) (int64, error) {
	return CountCreditedDownloadsByOwner(ctx, store.postgresDB, creatorID)
}

func (store *Store) ListDownloadCountsFromTime(ctx context.Context, from time.Time, limit, offset int) ([]*models.CreatorDownloadCount, error) {
	return ListDownloadCountsFromTime(ctx, store.readonlyPostgresDB, from, limit, offset)
}

func (store *Store) InsertBadge(ctx context.Context, badge *models.CreatorBadge) (bool, error) {
	return InsertBadge(ctx, store.postgresDB, badge)
}

func (store *Store) ListBadges(ctx context.Context, creatorID int64) ([]models.CreatorBadge, error) {
	return ListBadgesByCreator(ctx, store.postgresDB, creatorID)
}

func (store *Store) InsertReward(ctx context.Context, reward *models.Reward) (bool, error) {
	return InsertReward(ctx, store.postgresDB, reward)
}

func (store *Store) FindRewardByID(ctx context.Context, rewardID uuid.UUID) (*models.Reward, error) {
	return FindRewardByID(ctx, store.postgresDB, rewardID)
}

func (store *Store) ListRewardsByCreator(ctx context.Context, creatorID int64) ([]models.Reward, error) {
	return ListRewardsByCreator(ctx, store.postgresDB, creatorID)
}

func (store *Store) ListRewards(ctx context.Context, status models.RewardStatus, limit, offset int) ([]models.Reward, error) {
	return ListRewards(ctx, store.readonlyPostgresDB, status, limit, offset)
}

func (store *Store) RewardedMilestones(ctx context.Context, creatorID int64) ([]int, error) {
	return GetRewardedMilestones(ctx, store.postgresDB, creatorID)
}

func (store *Store) UpdateRewardState(ctx context.Context, reward *models.Reward, from models.RewardStatus) (bool, error) {
	return UpdateRewardState(ctx, store.postgresDB, reward, from)
}

func (store *Store) GetConfigByKey(ctx context.Context, key string) (*models.Config, error) {
	return GetConfigByKey(ctx, store.readonlyPostgresDB, key)
}

func (store *Store) EditConfig(ctx context.Context, config *models.Config) error {
	return EditConfig(ctx, store.postgresDB, config)
}
