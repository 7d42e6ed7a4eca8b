package dto

import (
	"time"

	"github.com/Josh-Wiegman/cue-rms/internal/domain"
)

// CreateVehicleRequest represents request to register a vehicle
type CreateVehicleRequest struct {
	Name          string    `json:"name" binding:"required"`
	LicensePlate  string    `json:"license_plate" binding:"required"`
	WarrantExpiry time.Time `json:"warrant_expiry" binding:"required"`
}

// UpdateVehicleRequest represents request to update a vehicle
type UpdateVehicleRequest struct {
	Name          string    `json:"name" binding:"required"`
	LicensePlate  string    `json:"license_plate" binding:"required"`
	WarrantExpiry time.Time `json:"warrant_expiry" binding:"required"`
}

// VehicleResponse represents a vehicle in API responses
type VehicleResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	LicensePlate  string    `json:"license_plate"`
	WarrantExpiry time.Time `json:"warrant_expiry"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// VehicleFromDomain converts a domain vehicle to a VehicleResponse
func VehicleFromDomain(v *domain.Vehicle) *VehicleResponse {
	return &VehicleResponse{
		ID:            v.ID,
		Name:          v.Name,
		LicensePlate:  v.LicensePlate,
		WarrantExpiry: v.WarrantExpiry,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}
