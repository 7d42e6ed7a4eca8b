package dto

import (
	"time"

	"github.com/Josh-Wiegman/cue-rms/internal/domain"
	"github.com/Josh-Wiegman/cue-rms/internal/planner"
)

// WeekRequest carries the query parameters of a planner week fetch.
type WeekRequest struct {
	Start string `form:"start" binding:"required"`
	Sort  string `form:"sort"`
}

// SlotResponse is one time block of an event in API responses.
type SlotResponse struct {
	Key             string              `json:"key"`
	Label           string              `json:"label"`
	Start           string              `json:"start"`
	DurationMinutes int                 `json:"duration_minutes"`
	Crew            []domain.Assignment `json:"crew"`
}

// EventResponse is an event with its computed warnings attached.
type EventResponse struct {
	ID            string         `json:"id"`
	SalesOrder    string         `json:"sales_order,omitempty"`
	Title         string         `json:"title"`
	Location      string         `json:"location,omitempty"`
	Type          string         `json:"type,omitempty"`
	Date          time.Time      `json:"date"`
	VehicleIDs    []string       `json:"vehicle_ids"`
	Slots         []SlotResponse `json:"slots"`
	CrewConflicts []string       `json:"crew_conflicts"`
	VehicleAlerts []string       `json:"vehicle_alerts"`
}

// DayResponse groups a day's events under its ISO date key.
type DayResponse struct {
	Date   string          `json:"date"`
	Events []EventResponse `json:"events"`
}

// WeekResponse is the planner week: seven days with warnings computed.
type WeekResponse struct {
	WeekStart     string        `json:"week_start"`
	Sort          string        `json:"sort"`
	Days          []DayResponse `json:"days"`
	ConflictCount int           `json:"conflict_count"`
	AlertCount    int           `json:"alert_count"`
}

// EventFromDomain converts a domain event plus its warning bucket to an
// EventResponse. A nil bucket yields empty warning slices.
func EventFromDomain(e *domain.Event, w *planner.Warnings) EventResponse {
	slots := make([]SlotResponse, len(e.Slots))
	for i, s := range e.Slots {
		crew := s.Crew
		if crew == nil {
			crew = []domain.Assignment{}
		}
		slots[i] = SlotResponse{
			Key:             string(s.Key),
			Label:           s.Label,
			Start:           s.Start,
			DurationMinutes: s.DurationMinutes,
			Crew:            crew,
		}
	}

	resp := EventResponse{
		ID:            e.ID,
		SalesOrder:    e.SalesOrder,
		Title:         e.Title,
		Location:      e.Location,
		Type:          e.Type,
		Date:          e.Date,
		VehicleIDs:    e.VehicleIDs,
		Slots:         slots,
		CrewConflicts: []string{},
		VehicleAlerts: []string{},
	}
	if resp.VehicleIDs == nil {
		resp.VehicleIDs = []string{}
	}
	if w != nil {
		resp.CrewConflicts = w.CrewConflicts
		resp.VehicleAlerts = w.VehicleAlerts
	}
	return resp
}
