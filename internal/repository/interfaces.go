package repository

import (
	"context"
	"time"

	"github.com/Josh-Wiegman/cue-rms/internal/domain"
)

// ScheduleRepository persists events, slots, and crew assignments.
type ScheduleRepository interface {
	// ListWeek returns a tenant's events whose date falls inside
	// [weekStart, weekStart+7d), fully resolved with slots and crew.
	ListWeek(ctx context.Context, tenantID string, weekStart time.Time) ([]domain.Event, error)

	GetEvent(ctx context.Context, tenantID, eventID string) (*domain.Event, error)
	CreateEvent(ctx context.Context, event *domain.Event) error
	UpdateEvent(ctx context.Context, event *domain.Event) error
	DeleteEvent(ctx context.Context, tenantID, eventID string) error

	// ReplaceSlotCrew swaps out the full assignment list of one slot.
	ReplaceSlotCrew(ctx context.Context, tenantID, eventID string, key domain.SlotKey, crew []domain.Assignment) error

	// CrewDirectory loads the tenant's crew roster keyed by id.
	CrewDirectory(ctx context.Context, tenantID string) (domain.CrewDirectory, error)
}

// VehicleRepository persists the vehicle fleet registry.
type VehicleRepository interface {
	List(ctx context.Context, tenantID string) ([]domain.Vehicle, error)
	Get(ctx context.Context, tenantID, vehicleID string) (*domain.Vehicle, error)
	Create(ctx context.Context, vehicle *domain.Vehicle) error
	Update(ctx context.Context, vehicle *domain.Vehicle) error

	// Registry loads the tenant's fleet keyed by id for alert rendering.
	Registry(ctx context.Context, tenantID string) (domain.VehicleRegistry, error)

	// ListExpiringBy returns vehicles (all tenants) whose warrant
	// expires on or before the deadline. Used by the WOF alert worker.
	ListExpiringBy(ctx context.Context, deadline time.Time) ([]domain.Vehicle, error)
}

// HireRepository persists party-hire items and orders.
type HireRepository interface {
	GetItem(ctx context.Context, tenantID, itemID string) (*domain.HireItem, error)
	UpsertItem(ctx context.Context, item *domain.HireItem) error

	CreateOrder(ctx context.Context, order *domain.HireOrder) error
	GetOrder(ctx context.Context, tenantID, orderID string) (*domain.HireOrder, error)
	MarkReturned(ctx context.Context, tenantID, orderID string, returnedAt time.Time) error
}

// AllocationResult is the outcome of an atomic stock counter operation.
type AllocationResult struct {
	Success      bool
	Allocated    int64
	Total        int64
	ErrorCode    string
	ErrorMessage string
}

// AllocationRepository holds the live party-hire stock counters. All
// mutations are atomic and keep 0 <= allocated <= total.
type AllocationRepository interface {
	// Reserve allocates qty units, failing with INSUFFICIENT_STOCK
	// rather than over-allocating.
	Reserve(ctx context.Context, itemID string, qty int) (*AllocationResult, error)

	// Release returns qty units, saturating at zero.
	Release(ctx context.Context, itemID string, qty int) (*AllocationResult, error)

	// SetStock seeds or corrects an item's counters.
	SetStock(ctx context.Context, itemID string, total, allocated int64) error

	// Availability reads the current counters.
	Availability(ctx context.Context, itemID string) (allocated, total int64, err error)
}
