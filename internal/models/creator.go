package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	ROLE_CREATOR = "creator"
	ROLE_ADMIN   = "admin"

	POINTS_PER_LEVEL = 100
)

type Creator struct {
	bun.BaseModel  `bun:"table:creator"`
	ID             int64     `bun:"id,pk" json:"id"`
	Username       string    `bun:"username" json:"username"`
	DisplayName    string    `bun:"display_name" json:"display_name"`
	TotalDownloads int64     `bun:"total_downloads,notnull,default:0" json:"total_downloads"`
	TotalUploads   int64     `bun:"total_uploads,notnull,default:0" json:"total_uploads"`
	Points         int64     `bun:"points,notnull,default:0" json:"points"`
	CreatedAt      time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
	UpdatedAt      time.Time `bun:"updated_at" json:"updated_at"`

	Level int64 `bun:"-" json:"level"`
}

// LevelForPoints is the only place a level is derived; it is never persisted.
func LevelForPoints(points int64) int64 {
	if points < 0 {
		points = 0
	}
	return points/POINTS_PER_LEVEL + 1
}

func (creator *Creator) WithLevel() *Creator {
	creator.Level = LevelForPoints(creator.Points)
	return creator
}

// CreatorFromAuth only use in middleware
type CreatorFromAuth struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// OperatorContext is the verified identity behind a fulfillment change.
type OperatorContext struct {
	OperatorID int64  `json:"operator_id"`
	Role       string `json:"role"`
}

func (operator *OperatorContext) IsAdmin() bool {
	return operator != nil && operator.Role == ROLE_ADMIN
}

type CreatorDownloadCount struct {
	CreatorID int64 `bun:"creator_id" json:"creator_id"`
	Downloads int64 `bun:"downloads" json:"downloads"`
}
