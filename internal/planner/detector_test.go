package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Josh-Wiegman/cue-rms/internal/domain"
)

var testDay = time.Date(2026, 5, 14, 0, 0, 0, 0, time.UTC)

func slot(key domain.SlotKey, label, start string, durationMinutes int, crewIDs ...string) domain.Slot {
	crew := make([]domain.Assignment, len(crewIDs))
	for i, id := range crewIDs {
		crew[i] = domain.Assignment{CrewID: id}
	}
	return domain.Slot{
		Key:             key,
		Label:           label,
		Start:           start,
		DurationMinutes: durationMinutes,
		Crew:            crew,
	}
}

func event(id, title string, date time.Time, slots ...domain.Slot) domain.Event {
	return domain.Event{
		ID:    id,
		Title: title,
		Date:  date,
		Slots: slots,
	}
}

func testCrew() domain.CrewDirectory {
	return domain.CrewDirectory{
		"c1": {ID: "c1", Name: "Avery Trask"},
		"c2": {ID: "c2", Name: "Mel Hoani"},
	}
}

func TestDetect_OverlapReportedSymmetrically(t *testing.T) {
	// Event A "show" 13:00-16:00 and event B "packIn" 15:00-17:00 share
	// crew c1 on the same day: exactly one warning, in both buckets,
	// naming both slots and the 3:00 PM overlap.
	events := []domain.Event{
		event("ev-a", "Winery Gala", testDay, slot(domain.SlotShow, "Show", "13:00", 180, "c1")),
		event("ev-b", "Town Hall AGM", testDay, slot(domain.SlotPackIn, "Pack In", "15:00", 120, "c1")),
	}

	d := &Detector{}
	warnings := d.Detect(events, testCrew(), nil)

	require.Len(t, warnings["ev-a"].CrewConflicts, 1)
	require.Len(t, warnings["ev-b"].CrewConflicts, 1)
	assert.Equal(t, warnings["ev-a"].CrewConflicts[0], warnings["ev-b"].CrewConflicts[0])

	msg := warnings["ev-a"].CrewConflicts[0]
	assert.Contains(t, msg, "Avery Trask")
	assert.Contains(t, msg, `"Winery Gala" (Show)`)
	assert.Contains(t, msg, `"Town Hall AGM" (Pack In)`)
	assert.Contains(t, msg, "3:00 PM")
}

func TestDetect_NoSelfConflict(t *testing.T) {
	// A crew member double-booked inside one job is normal.
	events := []domain.Event{
		event("ev-a", "Festival Stage", testDay,
			slot(domain.SlotPackIn, "Pack In", "09:00", 480, "c1"),
			slot(domain.SlotShow, "Show", "13:00", 180, "c1"),
		),
	}

	d := &Detector{}
	warnings := d.Detect(events, testCrew(), nil)

	assert.Empty(t, warnings["ev-a"].CrewConflicts)
}

func TestDetect_TouchingIntervalsDoNotConflict(t *testing.T) {
	// [13:00,15:00) then [15:00,17:00): half-open intervals, no overlap.
	events := []domain.Event{
		event("ev-a", "Matinee", testDay, slot(domain.SlotShow, "Show", "13:00", 120, "c1")),
		event("ev-b", "Evening Gig", testDay, slot(domain.SlotShow, "Show", "15:00", 120, "c1")),
	}

	d := &Detector{}
	warnings := d.Detect(events, testCrew(), nil)

	assert.Empty(t, warnings["ev-a"].CrewConflicts)
	assert.Empty(t, warnings["ev-b"].CrewConflicts)
}

func TestDetect_DayIsolation(t *testing.T) {
	// Slots straddling midnight from adjacent calendar days can overlap
	// in absolute time; different UTC day keys still never conflict.
	events := []domain.Event{
		event("ev-a", "Late Show", testDay, slot(domain.SlotShow, "Show", "23:00", 180, "c1")),
		event("ev-b", "Dawn Load-In", testDay.AddDate(0, 0, 1), slot(domain.SlotPackIn, "Pack In", "00:30", 120, "c1")),
	}

	d := &Detector{}
	warnings := d.Detect(events, testCrew(), nil)

	assert.Empty(t, warnings["ev-a"].CrewConflicts)
	assert.Empty(t, warnings["ev-b"].CrewConflicts)
}

func TestDetect_ChainReportsAdjacentPairs(t *testing.T) {
	// Three mutually overlapping events surface as two pairwise
	// warnings; each warning names exactly two events.
	events := []domain.Event{
		event("ev-a", "Job A", testDay, slot(domain.SlotShow, "Show", "10:00", 240, "c1")),
		event("ev-b", "Job B", testDay, slot(domain.SlotShow, "Show", "11:00", 240, "c1")),
		event("ev-c", "Job C", testDay, slot(domain.SlotShow, "Show", "12:00", 240, "c1")),
	}

	d := &Detector{}
	warnings := d.Detect(events, testCrew(), nil)

	assert.Len(t, warnings["ev-a"].CrewConflicts, 1)
	assert.Len(t, warnings["ev-b"].CrewConflicts, 2)
	assert.Len(t, warnings["ev-c"].CrewConflicts, 1)
}

func TestDetect_SameInstantAssignmentsBothKept(t *testing.T) {
	// Two events starting the same crew member at the identical instant
	// must both be retained and flagged (interval identity is the full
	// crew/start/event/slot tuple, not crew+start alone).
	events := []domain.Event{
		event("ev-a", "Job A", testDay, slot(domain.SlotShow, "Show", "13:00", 120, "c1")),
		event("ev-b", "Job B", testDay, slot(domain.SlotShow, "Show", "13:00", 120, "c1")),
	}

	d := &Detector{}
	warnings := d.Detect(events, testCrew(), nil)

	assert.Len(t, warnings["ev-a"].CrewConflicts, 1)
	assert.Len(t, warnings["ev-b"].CrewConflicts, 1)
}

func TestDetect_UnknownCrewLabel(t *testing.T) {
	events := []domain.Event{
		event("ev-a", "Job A", testDay, slot(domain.SlotShow, "Show", "13:00", 120, "ghost")),
		event("ev-b", "Job B", testDay, slot(domain.SlotShow, "Show", "13:30", 120, "ghost")),
	}

	d := &Detector{}
	warnings := d.Detect(events, testCrew(), nil)

	require.Len(t, warnings["ev-a"].CrewConflicts, 1)
	assert.Contains(t, warnings["ev-a"].CrewConflicts[0], "Unknown crew")
}

func TestDetect_Determinism(t *testing.T) {
	events := []domain.Event{
		event("ev-a", "Job A", testDay,
			slot(domain.SlotPackIn, "Pack In", "08:00", 300, "c1", "c2"),
			slot(domain.SlotShow, "Show", "13:00", 240, "c1"),
		),
		event("ev-b", "Job B", testDay, slot(domain.SlotShow, "Show", "12:00", 240, "c1", "c2")),
		event("ev-c", "Job C", testDay.AddDate(0, 0, 2), slot(domain.SlotPackOut, "Pack Out", "09:00", 120, "c2")),
	}
	vehicles := domain.VehicleRegistry{
		"v1": {ID: "v1", Name: "Hino Flatdeck", LicensePlate: "KGB442", WarrantExpiry: testDay.AddDate(0, 0, 5)},
	}
	events[0].VehicleIDs = []string{"v1"}

	d := &Detector{}
	first := d.Detect(events, testCrew(), vehicles)
	second := d.Detect(events, testCrew(), vehicles)

	assert.Equal(t, first, second)
}

func TestDetect_DoesNotMutateInputs(t *testing.T) {
	events := []domain.Event{
		event("ev-a", "Job A", testDay, slot(domain.SlotShow, "Show", "13:00", 120, "c1")),
		event("ev-b", "Job B", testDay, slot(domain.SlotShow, "Show", "14:00", 120, "c1")),
	}
	before := make([]domain.Event, len(events))
	copy(before, events)

	d := &Detector{}
	_ = d.Detect(events, testCrew(), nil)

	assert.Equal(t, before, events)
}

func TestDetect_EveryEventHasBucket(t *testing.T) {
	events := []domain.Event{
		event("ev-a", "Quiet Job", testDay),
		event("ev-b", "Another Quiet Job", testDay.AddDate(0, 0, 1)),
	}

	d := &Detector{}
	warnings := d.Detect(events, testCrew(), nil)

	require.Len(t, warnings, 2)
	for _, id := range []string{"ev-a", "ev-b"} {
		require.NotNil(t, warnings[id])
		assert.NotNil(t, warnings[id].CrewConflicts)
		assert.NotNil(t, warnings[id].VehicleAlerts)
		assert.Empty(t, warnings[id].CrewConflicts)
		assert.Empty(t, warnings[id].VehicleAlerts)
	}
}

func TestVehicleAlert_Boundaries(t *testing.T) {
	vehicle := domain.Vehicle{Name: "Ford Transit", LicensePlate: "HRD128"}

	tests := []struct {
		name       string
		expiry     time.Time
		wantAlert  bool
		wantSubstr string
	}{
		{"expired day before", testDay.AddDate(0, 0, -1), true, "WOF is expired before this event"},
		{"expires same day", testDay, true, "WOF expires in 0 days"},
		{"expires in one day", testDay.AddDate(0, 0, 1), true, "WOF expires in 1 day"},
		{"expires in ten days", testDay.AddDate(0, 0, 10), true, "WOF expires in 10 days"},
		{"expires exactly at horizon", testDay.AddDate(0, 0, 30), true, "WOF expires in 30 days"},
		{"expires beyond horizon", testDay.AddDate(0, 0, 31), false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vehicle.WarrantExpiry = tt.expiry
			alert, ok := VehicleAlert(&vehicle, testDay, DefaultWOFWarningDays)
			assert.Equal(t, tt.wantAlert, ok)
			if tt.wantAlert {
				assert.Contains(t, alert, "Ford Transit (HRD128)")
				assert.Contains(t, alert, tt.wantSubstr)
			}
		})
	}
}

func TestDetect_VehicleAlertsPerEvent(t *testing.T) {
	vehicles := domain.VehicleRegistry{
		"v1": {ID: "v1", Name: "Hino Flatdeck", LicensePlate: "KGB442", WarrantExpiry: testDay.AddDate(0, 0, 10)},
		"v2": {ID: "v2", Name: "Ford Transit", LicensePlate: "HRD128", WarrantExpiry: testDay.AddDate(0, 0, -1)},
	}

	ev := event("ev-a", "Two Truck Job", testDay)
	ev.VehicleIDs = []string{"v1", "v2", "missing"}

	d := &Detector{}
	warnings := d.Detect([]domain.Event{ev}, testCrew(), vehicles)

	alerts := warnings["ev-a"].VehicleAlerts
	require.Len(t, alerts, 2) // unknown id silently skipped
	assert.Equal(t, "Hino Flatdeck (KGB442) WOF expires in 10 days", alerts[0])
	assert.Equal(t, "Ford Transit (HRD128) WOF is expired before this event", alerts[1])
}

func TestDayKey_UsesUTCCalendarDay(t *testing.T) {
	auckland := time.FixedZone("NZST", 12*3600)

	// 1am local on the 15th is still the 14th in UTC.
	local := time.Date(2026, 5, 15, 1, 0, 0, 0, auckland)
	assert.Equal(t, "2026-05-14", DayKey(local))

	utc := time.Date(2026, 5, 15, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-05-15", DayKey(utc))
}

func TestCombineDateAndTime(t *testing.T) {
	date := time.Date(2026, 5, 14, 0, 0, 0, 0, time.UTC)

	got := CombineDateAndTime(date, "13:45")
	assert.Equal(t, time.Date(2026, 5, 14, 13, 45, 0, 0, time.UTC), got)

	// Malformed wall-clock strings anchor to midnight.
	for _, bad := range []string{"", "25:00", "13:75", "13", "1pm", "ab:cd"} {
		got := CombineDateAndTime(date, bad)
		assert.Equal(t, date, got, "input %q", bad)
	}
}
