package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const MAX_FINGERPRINT_LENGTH = 256

type DownloadEvent struct {
	bun.BaseModel `bun:"table:download_event"`
	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	ComponentID   uuid.UUID `bun:"component_id,type:uuid,notnull" json:"component_id"`
	IdentityKey   string    `bun:"identity_key,notnull" json:"-"`
	UserID        *int64    `bun:"user_id" json:"user_id"`
	Fingerprint   *string   `bun:"fingerprint" json:"-"`
	IPAddress     string    `bun:"ip_address" json:"-"`
	UserAgent     string    `bun:"user_agent" json:"-"`
	DownloadedAt  time.Time `bun:"downloaded_at,default:current_timestamp" json:"downloaded_at"`
}

// DownloaderIdentity is an authenticated creator, an anonymous fingerprint, or both.
type DownloaderIdentity struct {
	UserID      *int64
	Fingerprint string
	IPAddress   string
	UserAgent   string
}

// Key is the dedup key stored on the ledger. The authenticated reference wins.
func (identity DownloaderIdentity) Key() string {
	if identity.UserID != nil {
		return fmt.Sprintf("user:%d", *identity.UserID)
	}

	fingerprint := strings.TrimSpace(identity.Fingerprint)
	if fingerprint == "" {
		return ""
	}
	return "fp:" + fingerprint
}

// CreditResult is what a single ledger transaction observed.
type CreditResult struct {
	Credited  bool
	Component *Component
	Owner     *Creator
}
