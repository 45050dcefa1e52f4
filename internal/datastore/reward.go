package datastore

import (
	"context"

	"github.com/Maheshwickramage/S3learnUID/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func CreateTableReward(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Reward)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Reward)(nil)).Index("index_reward_creator_id_milestone").IfNotExists().Unique().Column("creator_id", "milestone").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Reward)(nil)).Index("index_reward_status").IfNotExists().Column("status").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

// InsertReward returns false when the creator already holds a reward for the milestone.
func InsertReward(ctx context.Context, db bun.IDB, reward *models.Reward) (bool, error) {
	res, err := db.NewInsert().Model(reward).On("CONFLICT (creator_id, milestone) DO NOTHING").Exec(ctx)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func FindRewardByID(ctx context.Context, db bun.IDB, rewardID uuid.UUID) (*models.Reward, error) {
	var reward models.Reward
	err := db.NewSelect().Model(&reward).Where("id = ?", rewardID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &reward, nil
}

func ListRewardsByCreator(ctx context.Context, db bun.IDB, creatorID int64) ([]models.Reward, error) {
	var rewards []models.Reward
	err := db.NewSelect().Model(&rewards).Where("creator_id = ?", creatorID).Order("milestone ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}

	return rewards, nil
}

func ListRewards(ctx context.Context, db bun.IDB, status models.RewardStatus, limit, offset int) ([]models.Reward, error) {
	var rewards []models.Reward
	q := db.NewSelect().Model(&rewards)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return rewards, nil
}

func GetRewardedMilestones(ctx context.Context, db bun.IDB, creatorID int64) ([]int, error) {
	var milestones []int
	err := db.NewSelect().
		Model((*models.Reward)(nil)).
		Column("milestone").
		Where("creator_id = ?", creatorID).
		Scan(ctx, &milestones)
	if err != nil {
		return nil, err
	}

	return milestones, nil
}

// UpdateRewardState is a compare-and-set on the stored status.
func UpdateRewardState(ctx context.Context, db bun.IDB, reward *models.Reward, from models.RewardStatus) (bool, error) {
	res, err := db.NewUpdate().
		Model(reward).
		Column("status", "shipping_info", "tracking_number", "notes", "claimed_at", "shipped_at", "delivered_at", "updated_at").
		WherePK().
		Where("status = ?", from).
		Exec(ctx)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}
