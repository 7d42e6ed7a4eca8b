package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Josh-Wiegman/cue-rms/internal/domain"
	"github.com/Josh-Wiegman/cue-rms/internal/dto"
)

var weekStart = time.Date(2026, 5, 11, 0, 0, 0, 0, time.UTC) // a Monday

func weekEvent(id, title string, dayOffset int, slots ...domain.Slot) domain.Event {
	return domain.Event{
		ID:       id,
		TenantID: "tenant-1",
		Title:    title,
		Date:     weekStart.AddDate(0, 0, dayOffset),
		Slots:    slots,
	}
}

func showSlot(start string, minutes int, crewIDs ...string) domain.Slot {
	crew := make([]domain.Assignment, len(crewIDs))
	for i, id := range crewIDs {
		crew[i] = domain.Assignment{CrewID: id}
	}
	return domain.Slot{Key: domain.SlotShow, Label: "Show", Start: start, DurationMinutes: minutes, Crew: crew}
}

func TestGetWeek_ComputesConflicts(t *testing.T) {
	scheduleRepo := &MockScheduleRepository{
		ListWeekFunc: func(ctx context.Context, tenantID string, start time.Time) ([]domain.Event, error) {
			assert.Equal(t, "tenant-1", tenantID)
			assert.True(t, start.Equal(weekStart))
			return []domain.Event{
				weekEvent("ev-a", "Gala", 0, showSlot("13:00", 180, "c1")),
				weekEvent("ev-b", "AGM", 0, showSlot("14:00", 180, "c1")),
				weekEvent("ev-c", "Quiet Friday Job", 4),
			}, nil
		},
		CrewDirectoryFunc: func(ctx context.Context, tenantID string) (domain.CrewDirectory, error) {
			return domain.CrewDirectory{"c1": {ID: "c1", Name: "Avery Trask"}}, nil
		},
	}

	svc := NewPlannerService(scheduleRepo, &MockVehicleRepository{}, nil, nil)

	resp, err := svc.GetWeek(context.Background(), "tenant-1", &dto.WeekRequest{Start: "2026-05-11"})
	require.NoError(t, err)

	require.Len(t, resp.Days, 7)
	assert.Equal(t, "2026-05-11", resp.Days[0].Date)
	assert.Equal(t, "2026-05-17", resp.Days[6].Date)

	// Both overlapping events carry the same warning; the quiet job has
	// an empty bucket. Two buckets with one warning each.
	assert.Equal(t, 2, resp.ConflictCount)
	monday := resp.Days[0]
	require.Len(t, monday.Events, 2)
	require.Len(t, monday.Events[0].CrewConflicts, 1)
	assert.Contains(t, monday.Events[0].CrewConflicts[0], "Avery Trask")

	friday := resp.Days[4]
	require.Len(t, friday.Events, 1)
	assert.Empty(t, friday.Events[0].CrewConflicts)
	assert.NotNil(t, friday.Events[0].CrewConflicts)
}

func TestGetWeek_SortModes(t *testing.T) {
	events := []domain.Event{
		weekEvent("ev-packout", "Derig", 0, domain.Slot{Key: domain.SlotPackOut, Label: "Pack Out", Start: "08:00", DurationMinutes: 60}),
		weekEvent("ev-show", "Concert", 0, domain.Slot{Key: domain.SlotShow, Label: "Show", Start: "19:00", DurationMinutes: 120}),
	}
	scheduleRepo := &MockScheduleRepository{
		ListWeekFunc: func(ctx context.Context, tenantID string, start time.Time) ([]domain.Event, error) {
			return events, nil
		},
	}
	svc := NewPlannerService(scheduleRepo, &MockVehicleRepository{}, nil, nil)

	resp, err := svc.GetWeek(context.Background(), "tenant-1", &dto.WeekRequest{Start: "2026-05-11"})
	require.NoError(t, err)
	assert.Equal(t, "priority", resp.Sort)
	assert.Equal(t, "ev-show", resp.Days[0].Events[0].ID) // show outranks pack-out

	resp, err = svc.GetWeek(context.Background(), "tenant-1", &dto.WeekRequest{Start: "2026-05-11", Sort: "byTime"})
	require.NoError(t, err)
	assert.Equal(t, "ev-packout", resp.Days[0].Events[0].ID) // 08:00 before 19:00
}

func TestGetWeek_InvalidInputs(t *testing.T) {
	svc := NewPlannerService(&MockScheduleRepository{}, &MockVehicleRepository{}, nil, nil)

	_, err := svc.GetWeek(context.Background(), "", &dto.WeekRequest{Start: "2026-05-11"})
	assert.ErrorIs(t, err, domain.ErrInvalidTenantID)

	_, err = svc.GetWeek(context.Background(), "tenant-1", &dto.WeekRequest{Start: "11/05/2026"})
	assert.ErrorIs(t, err, domain.ErrInvalidWeekStart)

	_, err = svc.GetWeek(context.Background(), "tenant-1", &dto.WeekRequest{Start: "2026-05-11", Sort: "sideways"})
	assert.ErrorIs(t, err, domain.ErrInvalidSortMode)
}

func TestGetWeek_VehicleAlertsSurface(t *testing.T) {
	ev := weekEvent("ev-a", "Two Truck Job", 0)
	ev.VehicleIDs = []string{"v1"}

	scheduleRepo := &MockScheduleRepository{
		ListWeekFunc: func(ctx context.Context, tenantID string, start time.Time) ([]domain.Event, error) {
			return []domain.Event{ev}, nil
		},
	}
	vehicleRepo := &MockVehicleRepository{
		RegistryFunc: func(ctx context.Context, tenantID string) (domain.VehicleRegistry, error) {
			return domain.VehicleRegistry{
				"v1": {ID: "v1", Name: "Hino Flatdeck", LicensePlate: "KGB442", WarrantExpiry: weekStart.AddDate(0, 0, 5)},
			}, nil
		},
	}

	svc := NewPlannerService(scheduleRepo, vehicleRepo, nil, nil)

	resp, err := svc.GetWeek(context.Background(), "tenant-1", &dto.WeekRequest{Start: "2026-05-11"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.AlertCount)
	require.Len(t, resp.Days[0].Events[0].VehicleAlerts, 1)
	assert.Contains(t, resp.Days[0].Events[0].VehicleAlerts[0], "WOF expires in 5 days")
}

func TestExportWeekICal(t *testing.T) {
	scheduleRepo := &MockScheduleRepository{
		ListWeekFunc: func(ctx context.Context, tenantID string, start time.Time) ([]domain.Event, error) {
			ev := weekEvent("ev-a", "Winery Gala", 0,
				domain.Slot{Key: domain.SlotShow, Label: "Show", Start: "19:00", DurationMinutes: 120},
				domain.Slot{Key: domain.SlotPackIn, Label: "Pack In", Start: "08:00", DurationMinutes: 240},
			)
			ev.Location = "Gibbston Valley"
			return []domain.Event{ev}, nil
		},
	}
	svc := NewPlannerService(scheduleRepo, &MockVehicleRepository{}, nil, nil)

	ics, err := svc.ExportWeekICal(context.Background(), "tenant-1", &dto.WeekRequest{Start: "2026-05-11"})
	require.NoError(t, err)

	assert.Contains(t, ics, "BEGIN:VCALENDAR")
	assert.Contains(t, ics, "Winery Gala: Show")
	assert.Contains(t, ics, "Winery Gala: Pack In")
	assert.Contains(t, ics, "Gibbston Valley")
	assert.Equal(t, 2, strings.Count(ics, "BEGIN:VEVENT"))
}

func TestCreateEvent_Validation(t *testing.T) {
	created := false
	scheduleRepo := &MockScheduleRepository{
		CreateEventFunc: func(ctx context.Context, event *domain.Event) error {
			created = true
			assert.NotEmpty(t, event.ID)
			assert.Equal(t, "tenant-1", event.TenantID)
			return nil
		},
	}
	svc := NewPlannerService(scheduleRepo, &MockVehicleRepository{}, nil, nil)

	_, err := svc.CreateEvent(context.Background(), "tenant-1", &dto.CreateEventRequest{
		Title: "Winery Gala",
		Date:  weekStart,
		Slots: []dto.SlotRequest{{Key: "show", Label: "Show", Start: "19:00", DurationMinutes: 120}},
	})
	require.NoError(t, err)
	assert.True(t, created)

	_, err = svc.CreateEvent(context.Background(), "tenant-1", &dto.CreateEventRequest{
		Title: "Bad Slot",
		Date:  weekStart,
		Slots: []dto.SlotRequest{{Key: "encore", Start: "19:00", DurationMinutes: 120}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSlotKey)
}

func TestReplaceSlotCrew_RejectsUnknownKey(t *testing.T) {
	svc := NewPlannerService(&MockScheduleRepository{}, &MockVehicleRepository{}, nil, nil)

	err := svc.ReplaceSlotCrew(context.Background(), "tenant-1", "ev-a", "encore", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidSlotKey)

	err = svc.ReplaceSlotCrew(context.Background(), "tenant-1", "ev-a", domain.SlotShow, []domain.Assignment{{CrewID: "c1"}})
	assert.NoError(t, err)
}
