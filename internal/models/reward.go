package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type RewardKind string

const (
	REWARD_KIND_BADGE        RewardKind = "badge"
	REWARD_KIND_FEATURE      RewardKind = "feature"
	REWARD_KIND_CERTIFICATE  RewardKind = "certificate"
	REWARD_KIND_TSHIRT       RewardKind = "t-shirt"
	REWARD_KIND_CAP          RewardKind = "cap"
	REWARD_KIND_GIFT_PACKAGE RewardKind = "gift-package"
)

type rewardKindCapability struct {
	requiresShipping bool
	requiresSize     bool
}

var rewardKindCapabilities = map[RewardKind]rewardKindCapability{
	REWARD_KIND_BADGE:        {},
	REWARD_KIND_FEATURE:      {},
	REWARD_KIND_CERTIFICATE:  {},
	REWARD_KIND_TSHIRT:       {requiresShipping: true, requiresSize: true},
	REWARD_KIND_CAP:          {requiresShipping: true, requiresSize: true},
	REWARD_KIND_GIFT_PACKAGE: {requiresShipping: true},
}

func (kind RewardKind) Valid() bool {
	_, ok := rewardKindCapabilities[kind]
	return ok
}

func (kind RewardKind) RequiresShipping() bool {
	return rewardKindCapabilities[kind].requiresShipping
}

func (kind RewardKind) RequiresSize() bool {
	return rewardKindCapabilities[kind].requiresSize
}

var ApparelSizes = []string{"XS", "S", "M", "L", "XL", "XXL", "XXXL"}

type RewardStatus string

const (
	REWARD_STATUS_PENDING           RewardStatus = "pending"
	REWARD_STATUS_ADDRESS_SUBMITTED RewardStatus = "address-submitted"
	REWARD_STATUS_PROCESSING        RewardStatus = "processing"
	REWARD_STATUS_SHIPPED           RewardStatus = "shipped"
	REWARD_STATUS_DELIVERED         RewardStatus = "delivered"
	REWARD_STATUS_CANCELLED         RewardStatus = "cancelled"
)

// rewardTransitions lists the operator-reachable targets from each status.
// A status listed as its own target is an idempotent re-set.
var rewardTransitions = map[RewardStatus][]RewardStatus{
	REWARD_STATUS_PENDING:           {REWARD_STATUS_CANCELLED},
	REWARD_STATUS_ADDRESS_SUBMITTED: {REWARD_STATUS_PROCESSING, REWARD_STATUS_SHIPPED, REWARD_STATUS_DELIVERED, REWARD_STATUS_CANCELLED},
	REWARD_STATUS_PROCESSING:        {REWARD_STATUS_PROCESSING, REWARD_STATUS_SHIPPED, REWARD_STATUS_DELIVERED, REWARD_STATUS_CANCELLED},
	REWARD_STATUS_SHIPPED:           {REWARD_STATUS_SHIPPED, REWARD_STATUS_DELIVERED, REWARD_STATUS_CANCELLED},
	REWARD_STATUS_DELIVERED:         {REWARD_STATUS_DELIVERED},
	REWARD_STATUS_CANCELLED:         {REWARD_STATUS_CANCELLED},
}

func (status RewardStatus) Valid() bool {
	_, ok := rewardTransitions[status]
	return ok
}

func (status RewardStatus) IsTerminal() bool {
	return status == REWARD_STATUS_DELIVERED || status == REWARD_STATUS_CANCELLED
}

func (status RewardStatus) CanTransitionTo(target RewardStatus) bool {
	for _, next := range rewardTransitions[status] {
		if next == target {
			return true
		}
	}
	return false
}

type ShippingInfo struct {
	FullName     string `json:"full_name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"required"`
	AddressLine1 string `json:"address_line1" validate:"required"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code" validate:"required"`
	Country      string `json:"country" validate:"required"`
	Size         string `json:"size,omitempty"`
}

type Reward struct {
	bun.BaseModel  `bun:"table:reward"`
	ID             uuid.UUID     `bun:"id,pk,type:uuid" json:"id"`
	CreatorID      int64         `bun:"creator_id,notnull" json:"creator_id"`
	Milestone      int           `bun:"milestone,notnull" json:"milestone"`
	Kind           RewardKind    `bun:"kind,notnull" json:"kind"`
	Title          string        `bun:"title" json:"title"`
	Description    string        `bun:"description" json:"description"`
	Status         RewardStatus  `bun:"status,notnull" json:"status"`
	ShippingInfo   *ShippingInfo `bun:"shipping_info,type:jsonb" json:"shipping_info"`
	TrackingNumber *string       `bun:"tracking_number" json:"tracking_number"`
	Notes          *string       `bun:"notes" json:"notes"`
	ClaimedAt      *time.Time    `bun:"claimed_at" json:"claimed_at"`
	ShippedAt      *time.Time    `bun:"shipped_at" json:"shipped_at"`
	DeliveredAt    *time.Time    `bun:"delivered_at" json:"delivered_at"`
	CreatedAt      time.Time     `bun:"created_at,default:current_timestamp" json:"created_at"`
	UpdatedAt      time.Time     `bun:"updated_at" json:"updated_at"`
}

// RewardNotification is an entry of the per-creator reward inbox.
type RewardNotification struct {
	RewardID    string     `msgpack:"reward_id" json:"reward_id"`
	Milestone   int        `msgpack:"milestone" json:"milestone"`
	Kind        RewardKind `msgpack:"kind" json:"kind"`
	Title       string     `msgpack:"title" json:"title"`
	Description string     `msgpack:"description" json:"description"`
	CreatedAt   time.Time  `msgpack:"created_at" json:"created_at"`
}

type FulfillmentUpdate struct {
	Status         RewardStatus `json:"status"`
	TrackingNumber *string      `json:"tracking_number"`
	Notes          *string      `json:"notes"`
}
