package models

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

type BadgeKind string

const (
	BADGE_ROOKIE BadgeKind = "rookie"
)

func MilestoneBadge(threshold int) BadgeKind {
	return BadgeKind(fmt.Sprintf("milestone_%d", threshold))
}

type CreatorBadge struct {
	bun.BaseModel `bun:"table:creator_badge"`
	CreatorID     int64     `bun:"creator_id,pk" json:"creator_id"`
	Kind          BadgeKind `bun:"kind,pk" json:"kind"`
	EarnedAt      time.Time `bun:"earned_at,default:current_timestamp" json:"earned_at"`
}
