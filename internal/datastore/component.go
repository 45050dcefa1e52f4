package datastore

import (
	"context"
	"time"

	"github.com/Maheshwickramage/S3learnUID/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func CreateTableComponent(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Component)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Component)(nil)).Index("index_component_creator_id").IfNotExists().Column("creator_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Component)(nil)).Index("index_component_slug").IfNotExists().Unique().Column("slug").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Component)(nil)).Index("index_component_category").IfNotExists().Column("category").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func InsertComponent(ctx context.Context, db bun.IDB, component *models.Component) error {
	_, err := db.NewInsert().Model(component).Exec(ctx)
	if err != nil {
		return err
	}
	return nil
}

func FindComponentByID(ctx context.Context, db bun.IDB, componentID uuid.UUID) (*models.Component, error) {
	var component models.Component
	err := db.NewSelect().Model(&component).Where("id = ?", componentID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &component, nil
}

func ListComponentsByCreator(ctx context.Context, db bun.IDB, creatorID int64, limit int) ([]models.Component, error) {
	var components []models.Component
	err := db.NewSelect().
		Model(&components).
		Where("creator_id = ?", creatorID).
		Order("created_at DESC", "id ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return components, nil
}

func IncrementComponentDownloads(ctx context.Context, db bun.IDB, componentID uuid.UUID) (*models.Component, error) {
	var component models.Component
	err := db.NewUpdate().
		Model(&component).
		Set("downloads = downloads + 1").
		Set("updated_at = ?", time.Now()).
		Where("id = ?", componentID).
		Returning("*").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &component, nil
}
