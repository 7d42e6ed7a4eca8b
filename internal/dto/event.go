package dto

import (
	"time"

	"github.com/Josh-Wiegman/cue-rms/internal/domain"
)

// SlotRequest is one time block in an event create/update payload.
type SlotRequest struct {
	Key             string              `json:"key" binding:"required"`
	Label           string              `json:"label"`
	Start           string              `json:"start" binding:"required"`
	DurationMinutes int                 `json:"duration_minutes" binding:"required,min=1"`
	Crew            []domain.Assignment `json:"crew"`
}

// CreateEventRequest represents request to create an event
type CreateEventRequest struct {
	SalesOrder string        `json:"sales_order,omitempty"`
	Title      string        `json:"title" binding:"required"`
	Location   string        `json:"location,omitempty"`
	Type       string        `json:"type,omitempty"`
	Date       time.Time     `json:"date" binding:"required"`
	VehicleIDs []string      `json:"vehicle_ids"`
	Slots      []SlotRequest `json:"slots"`
}

// UpdateEventRequest represents request to update an event
type UpdateEventRequest struct {
	SalesOrder string        `json:"sales_order,omitempty"`
	Title      string        `json:"title" binding:"required"`
	Location   string        `json:"location,omitempty"`
	Type       string        `json:"type,omitempty"`
	Date       time.Time     `json:"date" binding:"required"`
	VehicleIDs []string      `json:"vehicle_ids"`
	Slots      []SlotRequest `json:"slots"`
}

// ReplaceSlotCrewRequest represents request to replace a slot's crew
type ReplaceSlotCrewRequest struct {
	Crew []domain.Assignment `json:"crew" binding:"required"`
}

// ToDomain builds a domain event from a create request.
func (r *CreateEventRequest) ToDomain(id, tenantID string, now time.Time) *domain.Event {
	return &domain.Event{
		ID:         id,
		TenantID:   tenantID,
		SalesOrder: r.SalesOrder,
		Title:      r.Title,
		Location:   r.Location,
		Type:       r.Type,
		Date:       r.Date,
		VehicleIDs: r.VehicleIDs,
		Slots:      slotsToDomain(r.Slots),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// ToDomain builds a domain event from an update request.
func (r *UpdateEventRequest) ToDomain(id, tenantID string, now time.Time) *domain.Event {
	return &domain.Event{
		ID:         id,
		TenantID:   tenantID,
		SalesOrder: r.SalesOrder,
		Title:      r.Title,
		Location:   r.Location,
		Type:       r.Type,
		Date:       r.Date,
		VehicleIDs: r.VehicleIDs,
		Slots:      slotsToDomain(r.Slots),
		UpdatedAt:  now,
	}
}

func slotsToDomain(slots []SlotRequest) []domain.Slot {
	out := make([]domain.Slot, len(slots))
	for i, s := range slots {
		crew := s.Crew
		if crew == nil {
			crew = []domain.Assignment{}
		}
		out[i] = domain.Slot{
			Key:             domain.SlotKey(s.Key),
			Label:           s.Label,
			Start:           s.Start,
			DurationMinutes: s.DurationMinutes,
			Crew:            crew,
		}
	}
	return out
}
