package datastore

import (
	"context"
	"time"

	"github.com/Maheshwickramage/S3learnUID/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableCreator(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Creator)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewRaw(`
		alter table "creator"
			drop constraint if exists creator_counters_non_negative;
		alter table "creator"
			add constraint creator_counters_non_negative
			check (total_downloads >= 0 and total_uploads >= 0 and points >= 0);`).Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Creator)(nil)).Index("index_creator_total_downloads").IfNotExists().Column("total_downloads").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Creator)(nil)).Index("index_creator_username").IfNotExists().Column("username").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func InsertCreator(ctx context.Context, db bun.IDB, creator *models.Creator) error {
	_, err := db.NewInsert().Model(creator).On("CONFLICT (id) DO NOTHING").Exec(ctx)
	if err != nil {
		return err
	}
	return nil
}

func FindCreatorByID(ctx context.Context, db bun.IDB, creatorID int64) (*models.Creator, error) {
	var creator models.Creator
	err := db.NewSelect().Model(&creator).Where("id = ?", creatorID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &creator, nil
}

func FindCreatorByUsername(ctx context.Context, db bun.IDB, username string) (*models.Creator, error) {
	var creator models.Creator
	err := db.NewSelect().Model(&creator).Where("username = ?", username).Order("id ASC").Limit(1).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &creator, nil
}

func UpdateCreatorProfile(ctx context.Context, db bun.IDB, creator *models.Creator) error {
	_, err := db.NewUpdate().
		Model((*models.Creator)(nil)).
		Set("username = ?", creator.Username).
		Set("display_name = ?", creator.DisplayName).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", creator.ID).
		Exec(ctx)
	return err
}

func ListCreatorIDs(ctx context.Context, db bun.IDB, limit, offset int) ([]int64, error) {
	var ids []int64
	err := db.NewSelect().
		Model((*models.Creator)(nil)).
		Column("id").
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Scan(ctx, &ids)
	if err != nil {
		return nil, err
	}

	return ids, nil
}

// IncrementCreatorDownloads is the counter aggregator step of a credited download.
func IncrementCreatorDownloads(ctx context.Context, db bun.IDB, creatorID int64) (*models.Creator, error) {
	var creator models.Creator
	err := db.NewUpdate().
		Model(&creator).
		Set("total_downloads = total_downloads + 1").
		Set("points = points + 1").
		Set("updated_at = ?", time.Now()).
		Where("id = ?", creatorID).
		Returning("*").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &creator, nil
}

func IncrementCreatorUploads(ctx context.Context, db bun.IDB, creatorID int64, points int64) (*models.Creator, error) {
	var creator models.Creator
	err := db.NewUpdate().
		Model(&creator).
		Set("total_uploads = total_uploads + 1").
		Set("points = points + ?", points).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", creatorID).
		Returning("*").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &creator, nil
}

func RaiseCreatorDownloads(ctx context.Context, db bun.IDB, creatorID int64, total int64) (*models.Creator, error) {
	var creator models.Creator
	err := db.NewUpdate().
		Model(&creator).
		Set("total_downloads = greatest(total_downloads, ?)", total).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", creatorID).
		Returning("*").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &creator, nil
}
