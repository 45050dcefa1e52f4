package api

import (
	"github.com/Maheshwickramage/S3learnUID/internal/models"
)

const HeaderFingerprint = "X-Fingerprint"

type ShippingRequest struct {
	ShippingInfo models.ShippingInfo `json:"shipping_info"`
}

type FulfillmentRequest struct {
	Status         models.RewardStatus `json:"status"`
	TrackingNumber *string             `json:"tracking_number"`
	Notes          *string             `json:"notes"`
}

func (req FulfillmentRequest) Update() models.FulfillmentUpdate {
	return models.FulfillmentUpdate{
		Status:         req.Status,
		TrackingNumber: req.TrackingNumber,
		Notes:          req.Notes,
	}
}

type AdjustDownloadsRequest struct {
	TotalDownloads int64 `json:"total_downloads"`
}
