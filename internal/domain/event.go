package domain

import (
	"time"
)

// SlotKey identifies one of the fixed time blocks inside an event.
type SlotKey string

const (
	SlotPackIn    SlotKey = "packIn"
	SlotRehearsal SlotKey = "rehearsal"
	SlotShow      SlotKey = "show"
	SlotPackOut   SlotKey = "packOut"
)

// slotPriority is the fixed display/sort order of slots within a day.
var slotPriority = map[SlotKey]int{
	SlotPackIn:    0,
	SlotRehearsal: 1,
	SlotShow:      2,
	SlotPackOut:   3,
}

// Priority returns the slot's position in the fixed slot order.
// Unknown keys sort after all known ones.
func (k SlotKey) Priority() int {
	if p, ok := slotPriority[k]; ok {
		return p
	}
	return len(slotPriority)
}

// Valid reports whether the key is one of the four known slots.
func (k SlotKey) Valid() bool {
	_, ok := slotPriority[k]
	return ok
}

// Assignment places a crew member on a slot.
type Assignment struct {
	CrewID         string `json:"crew_id"`
	Responsibility string `json:"responsibility,omitempty"`
}

// Slot is a bounded time block within an event. Start is an "HH:mm"
// wall-clock string anchored to the owning event's date; the slot covers
// the half-open interval [start, start+duration).
type Slot struct {
	Key             SlotKey      `json:"key"`
	Label           string       `json:"label"`
	Start           string       `json:"start"`
	DurationMinutes int          `json:"duration_minutes"`
	Crew            []Assignment `json:"crew"`
}

// Event is a calendar-dated job derived from a sales order.
type Event struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenant_id"`
	SalesOrder string    `json:"sales_order"`
	Title      string    `json:"title"`
	Location   string    `json:"location"`
	Type       string    `json:"type"`
	Date       time.Time `json:"date"`
	VehicleIDs []string  `json:"vehicle_ids"`
	Slots      []Slot    `json:"slots"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Slot returns the slot with the given key, if present.
func (e *Event) Slot(key SlotKey) (*Slot, bool) {
	for i := range e.Slots {
		if e.Slots[i].Key == key {
			return &e.Slots[i], true
		}
	}
	return nil, false
}

// Validate checks the event's required fields.
func (e *Event) Validate() error {
	if e.TenantID == "" {
		return ErrInvalidTenantID
	}
	if e.Title == "" {
		return ErrInvalidEventTitle
	}
	if e.Date.IsZero() {
		return ErrInvalidEventDate
	}
	for _, slot := range e.Slots {
		if !slot.Key.Valid() {
			return ErrInvalidSlotKey
		}
		if slot.DurationMinutes < 0 {
			return ErrInvalidSlotDuration
		}
	}
	return nil
}
