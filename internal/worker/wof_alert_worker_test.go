package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Josh-Wiegman/cue-rms/internal/domain"
	"github.com/Josh-Wiegman/cue-rms/internal/repository"
)

// MockVehicleRepository is a mock implementation of VehicleRepository
type MockVehicleRepository struct {
	ListExpiringByFunc func(ctx context.Context, deadline time.Time) ([]domain.Vehicle, error)
}

func (m *MockVehicleRepository) List(ctx context.Context, tenantID string) ([]domain.Vehicle, error) {
	return nil, nil
}

func (m *MockVehicleRepository) Get(ctx context.Context, tenantID, vehicleID string) (*domain.Vehicle, error) {
	return nil, domain.ErrVehicleNotFound
}

func (m *MockVehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	return nil
}

func (m *MockVehicleRepository) Update(ctx context.Context, vehicle *domain.Vehicle) error {
	return nil
}

func (m *MockVehicleRepository) Registry(ctx context.Context, tenantID string) (domain.VehicleRegistry, error) {
	return domain.VehicleRegistry{}, nil
}

func (m *MockVehicleRepository) ListExpiringBy(ctx context.Context, deadline time.Time) ([]domain.Vehicle, error) {
	if m.ListExpiringByFunc != nil {
		return m.ListExpiringByFunc(ctx, deadline)
	}
	return nil, nil
}

var _ repository.VehicleRepository = (*MockVehicleRepository)(nil)

// MockAlertPublisher records published alerts
type MockAlertPublisher struct {
	mu        sync.Mutex
	wofAlerts []string
	failNext  bool
}

func (m *MockAlertPublisher) PublishCrewConflict(ctx context.Context, tenantID, eventID, message string) error {
	return nil
}

func (m *MockAlertPublisher) PublishWOFAlert(ctx context.Context, tenantID, vehicleID, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext {
		m.failNext = false
		return errors.New("broker unavailable")
	}
	m.wofAlerts = append(m.wofAlerts, message)
	return nil
}

func (m *MockAlertPublisher) Close() error { return nil }

func (m *MockAlertPublisher) Alerts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.wofAlerts))
	copy(out, m.wofAlerts)
	return out
}

func TestScan_RaisesAlertsForExpiringFleet(t *testing.T) {
	now := time.Now().UTC()
	vehicleRepo := &MockVehicleRepository{
		ListExpiringByFunc: func(ctx context.Context, deadline time.Time) ([]domain.Vehicle, error) {
			assert.True(t, deadline.After(now.AddDate(0, 0, 29)), "deadline should cover the warning horizon")
			return []domain.Vehicle{
				{ID: "veh-1", TenantID: "tenant-1", Name: "3T Truck", LicensePlate: "KWT482", WarrantExpiry: now.AddDate(0, 0, 5)},
				{ID: "veh-2", TenantID: "tenant-1", Name: "Van", LicensePlate: "JBB104", WarrantExpiry: now.AddDate(0, 0, -2)},
			}, nil
		},
	}
	publisher := &MockAlertPublisher{}

	w := NewWOFAlertWorker(vehicleRepo, publisher, &WOFAlertWorkerConfig{
		ScanCron:    "0 6 * * *",
		WarningDays: 30,
	})

	w.Scan(context.Background())

	alerts := publisher.Alerts()
	require.Len(t, alerts, 2)
	assert.Contains(t, alerts[0], "WOF expires in 5 days")
	assert.Contains(t, alerts[1], "WOF is expired")

	stats := w.GetStats()
	assert.Equal(t, int64(1), stats.TotalScans)
	assert.Equal(t, 2, stats.LastAlertCount)
}

func TestScan_SkipsFailedPublishes(t *testing.T) {
	now := time.Now().UTC()
	vehicleRepo := &MockVehicleRepository{
		ListExpiringByFunc: func(ctx context.Context, deadline time.Time) ([]domain.Vehicle, error) {
			return []domain.Vehicle{
				{ID: "veh-1", TenantID: "tenant-1", Name: "3T Truck", LicensePlate: "KWT482", WarrantExpiry: now.AddDate(0, 0, 3)},
				{ID: "veh-2", TenantID: "tenant-1", Name: "Van", LicensePlate: "JBB104", WarrantExpiry: now.AddDate(0, 0, 4)},
			}, nil
		},
	}
	publisher := &MockAlertPublisher{failNext: true}

	w := NewWOFAlertWorker(vehicleRepo, publisher, nil)
	w.Scan(context.Background())

	// First publish fails, second lands. The scan keeps going.
	assert.Len(t, publisher.Alerts(), 1)
	assert.Equal(t, 1, w.GetStats().LastAlertCount)
}

func TestScan_RepositoryErrorLeavesStatsUntouched(t *testing.T) {
	vehicleRepo := &MockVehicleRepository{
		ListExpiringByFunc: func(ctx context.Context, deadline time.Time) ([]domain.Vehicle, error) {
			return nil, errors.New("connection refused")
		},
	}

	w := NewWOFAlertWorker(vehicleRepo, &MockAlertPublisher{}, nil)
	w.Scan(context.Background())

	assert.Equal(t, int64(0), w.GetStats().TotalScans)
}

func TestStartStop(t *testing.T) {
	vehicleRepo := &MockVehicleRepository{}
	w := NewWOFAlertWorker(vehicleRepo, &MockAlertPublisher{}, &WOFAlertWorkerConfig{
		ScanCron:    "0 6 * * *",
		WarningDays: 30,
		ScanOnStart: true,
	})

	require.NoError(t, w.Start(context.Background()))
	assert.Error(t, w.Start(context.Background()), "second start must be rejected")

	w.Stop()
	assert.False(t, w.GetStats().IsRunning)
}
