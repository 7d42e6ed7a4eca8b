package service

import (
	"context"
	"time"

	"github.com/Josh-Wiegman/cue-rms/internal/domain"
	"github.com/Josh-Wiegman/cue-rms/internal/repository"
)

// MockScheduleRepository is a mock implementation of ScheduleRepository
type MockScheduleRepository struct {
	ListWeekFunc        func(ctx context.Context, tenantID string, weekStart time.Time) ([]domain.Event, error)
	GetEventFunc        func(ctx context.Context, tenantID, eventID string) (*domain.Event, error)
	CreateEventFunc     func(ctx context.Context, event *domain.Event) error
	UpdateEventFunc     func(ctx context.Context, event *domain.Event) error
	DeleteEventFunc     func(ctx context.Context, tenantID, eventID string) error
	ReplaceSlotCrewFunc func(ctx context.Context, tenantID, eventID string, key domain.SlotKey, crew []domain.Assignment) error
	CrewDirectoryFunc   func(ctx context.Context, tenantID string) (domain.CrewDirectory, error)
}

func (m *MockScheduleRepository) ListWeek(ctx context.Context, tenantID string, weekStart time.Time) ([]domain.Event, error) {
	if m.ListWeekFunc != nil {
		return m.ListWeekFunc(ctx, tenantID, weekStart)
	}
	return []domain.Event{}, nil
}

func (m *MockScheduleRepository) GetEvent(ctx context.Context, tenantID, eventID string) (*domain.Event, error) {
	if m.GetEventFunc != nil {
		return m.GetEventFunc(ctx, tenantID, eventID)
	}
	return nil, domain.ErrEventNotFound
}

func (m *MockScheduleRepository) CreateEvent(ctx context.Context, event *domain.Event) error {
	if m.CreateEventFunc != nil {
		return m.CreateEventFunc(ctx, event)
	}
	return nil
}

func (m *MockScheduleRepository) UpdateEvent(ctx context.Context, event *domain.Event) error {
	if m.UpdateEventFunc != nil {
		return m.UpdateEventFunc(ctx, event)
	}
	return nil
}

func (m *MockScheduleRepository) DeleteEvent(ctx context.Context, tenantID, eventID string) error {
	if m.DeleteEventFunc != nil {
		return m.DeleteEventFunc(ctx, tenantID, eventID)
	}
	return nil
}

func (m *MockScheduleRepository) ReplaceSlotCrew(ctx context.Context, tenantID, eventID string, key domain.SlotKey, crew []domain.Assignment) error {
	if m.ReplaceSlotCrewFunc != nil {
		return m.ReplaceSlotCrewFunc(ctx, tenantID, eventID, key, crew)
	}
	return nil
}

func (m *MockScheduleRepository) CrewDirectory(ctx context.Context, tenantID string) (domain.CrewDirectory, error) {
	if m.CrewDirectoryFunc != nil {
		return m.CrewDirectoryFunc(ctx, tenantID)
	}
	return domain.CrewDirectory{}, nil
}

// MockVehicleRepository is a mock implementation of VehicleRepository
type MockVehicleRepository struct {
	ListFunc           func(ctx context.Context, tenantID string) ([]domain.Vehicle, error)
	GetFunc            func(ctx context.Context, tenantID, vehicleID string) (*domain.Vehicle, error)
	CreateFunc         func(ctx context.Context, vehicle *domain.Vehicle) error
	UpdateFunc         func(ctx context.Context, vehicle *domain.Vehicle) error
	RegistryFunc       func(ctx context.Context, tenantID string) (domain.VehicleRegistry, error)
	ListExpiringByFunc func(ctx context.Context, deadline time.Time) ([]domain.Vehicle, error)
}

func (m *MockVehicleRepository) List(ctx context.Context, tenantID string) ([]domain.Vehicle, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, tenantID)
	}
	return []domain.Vehicle{}, nil
}

func (m *MockVehicleRepository) Get(ctx context.Context, tenantID, vehicleID string) (*domain.Vehicle, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, tenantID, vehicleID)
	}
	return nil, domain.ErrVehicleNotFound
}

func (m *MockVehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, vehicle)
	}
	return nil
}

func (m *MockVehicleRepository) Update(ctx context.Context, vehicle *domain.Vehicle) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, vehicle)
	}
	return nil
}

func (m *MockVehicleRepository) Registry(ctx context.Context, tenantID string) (domain.VehicleRegistry, error) {
	if m.RegistryFunc != nil {
		return m.RegistryFunc(ctx, tenantID)
	}
	return domain.VehicleRegistry{}, nil
}

func (m *MockVehicleRepository) ListExpiringBy(ctx context.Context, deadline time.Time) ([]domain.Vehicle, error) {
	if m.ListExpiringByFunc != nil {
		return m.ListExpiringByFunc(ctx, deadline)
	}
	return []domain.Vehicle{}, nil
}

// MockHireRepository is a mock implementation of HireRepository
type MockHireRepository struct {
	GetItemFunc      func(ctx context.Context, tenantID, itemID string) (*domain.HireItem, error)
	UpsertItemFunc   func(ctx context.Context, item *domain.HireItem) error
	CreateOrderFunc  func(ctx context.Context, order *domain.HireOrder) error
	GetOrderFunc     func(ctx context.Context, tenantID, orderID string) (*domain.HireOrder, error)
	MarkReturnedFunc func(ctx context.Context, tenantID, orderID string, returnedAt time.Time) error
}

func (m *MockHireRepository) GetItem(ctx context.Context, tenantID, itemID string) (*domain.HireItem, error) {
	if m.GetItemFunc != nil {
		return m.GetItemFunc(ctx, tenantID, itemID)
	}
	return &domain.HireItem{ID: itemID, TenantID: tenantID, Total: 100}, nil
}

func (m *MockHireRepository) UpsertItem(ctx context.Context, item *domain.HireItem) error {
	if m.UpsertItemFunc != nil {
		return m.UpsertItemFunc(ctx, item)
	}
	return nil
}

func (m *MockHireRepository) CreateOrder(ctx context.Context, order *domain.HireOrder) error {
	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(ctx, order)
	}
	return nil
}

func (m *MockHireRepository) GetOrder(ctx context.Context, tenantID, orderID string) (*domain.HireOrder, error) {
	if m.GetOrderFunc != nil {
		return m.GetOrderFunc(ctx, tenantID, orderID)
	}
	return nil, domain.ErrHireOrderNotFound
}

func (m *MockHireRepository) MarkReturned(ctx context.Context, tenantID, orderID string, returnedAt time.Time) error {
	if m.MarkReturnedFunc != nil {
		return m.MarkReturnedFunc(ctx, tenantID, orderID, returnedAt)
	}
	return nil
}

// MockAllocationRepository is a mock implementation of AllocationRepository
type MockAllocationRepository struct {
	ReserveFunc      func(ctx context.Context, itemID string, qty int) (*repository.AllocationResult, error)
	ReleaseFunc      func(ctx context.Context, itemID string, qty int) (*repository.AllocationResult, error)
	SetStockFunc     func(ctx context.Context, itemID string, total, allocated int64) error
	AvailabilityFunc func(ctx context.Context, itemID string) (int64, int64, error)
}

func (m *MockAllocationRepository) Reserve(ctx context.Context, itemID string, qty int) (*repository.AllocationResult, error) {
	if m.ReserveFunc != nil {
		return m.ReserveFunc(ctx, itemID, qty)
	}
	return &repository.AllocationResult{Success: true, Allocated: int64(qty), Total: 100}, nil
}

func (m *MockAllocationRepository) Release(ctx context.Context, itemID string, qty int) (*repository.AllocationResult, error) {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, itemID, qty)
	}
	return &repository.AllocationResult{Success: true, Allocated: 0, Total: 100}, nil
}

func (m *MockAllocationRepository) SetStock(ctx context.Context, itemID string, total, allocated int64) error {
	if m.SetStockFunc != nil {
		return m.SetStockFunc(ctx, itemID, total, allocated)
	}
	return nil
}

func (m *MockAllocationRepository) Availability(ctx context.Context, itemID string) (int64, int64, error) {
	if m.AvailabilityFunc != nil {
		return m.AvailabilityFunc(ctx, itemID)
	}
	return 0, 100, nil
}
