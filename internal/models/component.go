package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var ComponentCategories = []string{
	"Dashboard",
	"Cards",
	"Forms",
	"Tables",
	"Landing",
	"Navigation",
	"Modals",
	"Charts",
	"Other",
}

type Component struct {
	bun.BaseModel `bun:"table:component"`
	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	CreatorID     *int64    `bun:"creator_id" json:"creator_id"`
	CreatorName   string    `bun:"creator_name" json:"creator_name"`
	Name          string    `bun:"name,notnull" json:"name"`
	Slug          string    `bun:"slug" json:"slug"`
	Description   string    `bun:"description" json:"description"`
	Category      string    `bun:"category" json:"category"`
	Tags          []string  `bun:"tags,array" json:"tags"`
	PreviewImage  string    `bun:"preview_image" json:"preview_image"`
	PreviewVideo  string    `bun:"preview_video" json:"preview_video"`
	ZipFile       string    `bun:"zip_file" json:"zip_file"`
	DemoURL       string    `bun:"demo_url" json:"demo_url"`
	Version       string    `bun:"version" json:"version"`
	Downloads     int64     `bun:"downloads,notnull,default:0" json:"downloads"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at" json:"updated_at"`
}

type ComponentUpload struct {
	Name         string   `json:"name" validate:"required,max=100"`
	Description  string   `json:"description" validate:"max=500"`
	Category     string   `json:"category" validate:"required"`
	Tags         []string `json:"tags" validate:"max=20,dive,max=40"`
	PreviewImage string   `json:"preview_image" validate:"required"`
	PreviewVideo string   `json:"preview_video"`
	ZipFile      string   `json:"zip_file" validate:"required"`
	DemoURL      string   `json:"demo_url" validate:"omitempty,url"`
	Version      string   `json:"version"`
}
