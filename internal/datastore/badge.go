package datastore

import (
	"context"

	"github.com/Maheshwickramage/S3learnUID/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableCreatorBadge(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.CreatorBadge)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func InsertBadge(ctx context.Context, db bun.IDB, badge *models.CreatorBadge) (bool, error) {
	res, err := db.NewInsert().Model(badge).On("CONFLICT (creator_id, kind) DO NOTHING").Exec(ctx)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func ListBadgesByCreator(ctx context.Context, db bun.IDB, creatorID int64) ([]models.CreatorBadge, error) {
	var badges []models.CreatorBadge
	err := db.NewSelect().Model(&badges).Where("creator_id = ?", creatorID).Order("earned_at ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}

	return badges, nil
}
