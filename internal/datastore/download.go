package datastore

import (
	"context"
	"time"

	"github.com/Maheshwickramage/S3learnUID/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableDownloadEvent(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.DownloadEvent)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	// one credited download per (component, identity)
	_, err = db.NewCreateIndex().Model((*models.DownloadEvent)(nil)).Index("index_download_event_component_id_identity_key").IfNotExists().Unique().Column("component_id", "identity_key").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.DownloadEvent)(nil)).Index("index_download_event_downloaded_at").IfNotExists().Column("downloaded_at").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

// InsertDownloadEvent reports whether the row was inserted; false means the
// identity already downloaded this component.
func InsertDownloadEvent(ctx context.Context, db bun.IDB, event *models.DownloadEvent) (bool, error) {
	res, err := db.NewInsert().Model(event).On("CONFLICT (component_id, identity_key) DO NOTHING").Exec(ctx)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func CountCreditedDownloadsByOwner(ctx context.Context, db bun.IDB, creatorID int64) (int64, error) {
	count, err := db.NewSelect().
		TableExpr("download_event AS de").
		Join("JOIN component AS c ON c.id = de.component_id").
		Where("c.creator_id = ?", creatorID).
		Count(ctx)
	if err != nil {
		return 0, err
	}

	return int64(count), nil
}

func ListDownloadCountsFromTime(ctx context.Context, db bun.IDB, from time.Time, limit, offset int) ([]*models.CreatorDownloadCount, error) {
	var counts []*models.CreatorDownloadCount
	err := db.NewSelect().
		ColumnExpr("c.creator_id AS creator_id").
		ColumnExpr("COUNT(*) AS downloads").
		TableExpr("download_event AS de").
		Join("JOIN component AS c ON c.id = de.component_id").
		Where("c.creator_id IS NOT NULL").
		Where("de.downloaded_at >= ?", from).
		GroupExpr("c.creator_id").
		OrderExpr("downloads DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx, &counts)
	if err != nil {
		return nil, err
	}

	return counts, nil
}
