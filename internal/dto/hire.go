package dto

import (
	"time"

	"github.com/Josh-Wiegman/cue-rms/internal/domain"
)

// CreateHireOrderRequest represents request to reserve hire stock
type CreateHireOrderRequest struct {
	ItemID       string `json:"item_id" binding:"required"`
	CustomerName string `json:"customer_name" binding:"required"`
	Quantity     int    `json:"quantity" binding:"required,min=1"`
}

// HireOrderResponse represents a hire order in API responses
type HireOrderResponse struct {
	ID             string     `json:"id"`
	ItemID         string     `json:"item_id"`
	CustomerName   string     `json:"customer_name"`
	Quantity       int        `json:"quantity"`
	Status         string     `json:"status"`
	ReturnVerified bool       `json:"return_verified"`
	CreatedAt      time.Time  `json:"created_at"`
	ReturnedAt     *time.Time `json:"returned_at,omitempty"`
}

// HireAvailabilityResponse represents an item's live stock counters
type HireAvailabilityResponse struct {
	ItemID    string `json:"item_id"`
	Total     int64  `json:"total"`
	Allocated int64  `json:"allocated"`
	Available int64  `json:"available"`
}

// SeedHireItemRequest represents request to create or reset a stock line
type SeedHireItemRequest struct {
	ItemID    string `json:"item_id" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Total     int    `json:"total" binding:"required,min=0"`
	Allocated int    `json:"allocated" binding:"min=0"`
}

// HireOrderFromDomain converts a domain hire order to a HireOrderResponse
func HireOrderFromDomain(o *domain.HireOrder) *HireOrderResponse {
	return &HireOrderResponse{
		ID:             o.ID,
		ItemID:         o.ItemID,
		CustomerName:   o.CustomerName,
		Quantity:       o.Quantity,
		Status:         string(o.Status),
		ReturnVerified: o.ReturnVerified,
		CreatedAt:      o.CreatedAt,
		ReturnedAt:     o.ReturnedAt,
	}
}
