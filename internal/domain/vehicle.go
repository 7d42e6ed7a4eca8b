package domain

import "time"

// Vehicle is a fleet vehicle with a safety-certification (WOF) expiry.
type Vehicle struct {
	ID            string    `json:"id"`
	TenantID      string    `json:"tenant_id"`
	Name          string    `json:"name"`
	LicensePlate  string    `json:"license_plate"`
	WarrantExpiry time.Time `json:"warrant_expiry"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// VehicleRegistry maps vehicle id to vehicle for alert rendering.
type VehicleRegistry map[string]Vehicle

// Validate checks the vehicle's required fields.
func (v *Vehicle) Validate() error {
	if v.TenantID == "" {
		return ErrInvalidTenantID
	}
	if v.Name == "" {
		return ErrInvalidVehicleName
	}
	return nil
}
