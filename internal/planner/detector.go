// Package planner holds the crew and resource conflict detector. It is
// pure computation over immutable snapshots: no I/O, no stored state,
// safe to call from any goroutine.
package planner

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Josh-Wiegman/cue-rms/internal/domain"
)

// DefaultWOFWarningDays is the horizon for "expires soon" vehicle alerts.
const DefaultWOFWarningDays = 30

// Warnings is the per-event output bucket. Both slices are always
// non-nil, even when empty.
type Warnings struct {
	CrewConflicts []string `json:"crew_conflicts"`
	VehicleAlerts []string `json:"vehicle_alerts"`
}

// Detector computes warnings for a day-bucketed batch of events.
// The zero value is usable; WOFWarningDays defaults to 30.
type Detector struct {
	WOFWarningDays int
}

// scheduled is one (event, slot, assignment) expanded to an absolute
// interval. Identity is the full tuple (crew, start, event, slot), so
// two same-instant assignments from different events are both kept.
type scheduled struct {
	crewID     string
	eventID    string
	eventTitle string
	slotKey    domain.SlotKey
	slotLabel  string
	start      time.Time
	end        time.Time
}

type scheduledKey struct {
	crewID    string
	startUnix int64
	eventID   string
	slotKey   domain.SlotKey
}

// Detect produces the warnings map for the given events. Every input
// event id has an entry, conflict-free or not. Crew conflicts are only
// checked between events sharing a UTC calendar day; vehicle alerts are
// independent per event per vehicle.
func (d *Detector) Detect(events []domain.Event, crew domain.CrewDirectory, vehicles domain.VehicleRegistry) map[string]*Warnings {
	warnings := make(map[string]*Warnings, len(events))
	for i := range events {
		warnings[events[i].ID] = &Warnings{
			CrewConflicts: []string{},
			VehicleAlerts: []string{},
		}
	}

	d.detectCrewConflicts(events, crew, warnings)
	d.detectVehicleAlerts(events, vehicles, warnings)

	return warnings
}

func (d *Detector) detectCrewConflicts(events []domain.Event, crew domain.CrewDirectory, warnings map[string]*Warnings) {
	// Partition by UTC calendar day. Events on different day keys never
	// conflict, whatever their absolute timestamps.
	days := make(map[string][]*domain.Event)
	for i := range events {
		key := DayKey(events[i].Date)
		days[key] = append(days[key], &events[i])
	}

	dayKeys := make([]string, 0, len(days))
	for key := range days {
		dayKeys = append(dayKeys, key)
	}
	sort.Strings(dayKeys)

	for _, dayKey := range dayKeys {
		d.detectDayConflicts(days[dayKey], crew, warnings)
	}
}

func (d *Detector) detectDayConflicts(events []*domain.Event, crew domain.CrewDirectory, warnings map[string]*Warnings) {
	intervals := make(map[scheduledKey]scheduled)
	for _, ev := range events {
		for _, slot := range ev.Slots {
			start := CombineDateAndTime(ev.Date, slot.Start)
			end := start.Add(time.Duration(slot.DurationMinutes) * time.Minute)
			for _, assignment := range slot.Crew {
				key := scheduledKey{
					crewID:    assignment.CrewID,
					startUnix: start.UnixMilli(),
					eventID:   ev.ID,
					slotKey:   slot.Key,
				}
				intervals[key] = scheduled{
					crewID:     assignment.CrewID,
					eventID:    ev.ID,
					eventTitle: ev.Title,
					slotKey:    slot.Key,
					slotLabel:  slot.Label,
					start:      start,
					end:        end,
				}
			}
		}
	}

	byCrew := make(map[string][]scheduled)
	for _, iv := range intervals {
		byCrew[iv.crewID] = append(byCrew[iv.crewID], iv)
	}

	crewIDs := make([]string, 0, len(byCrew))
	for id := range byCrew {
		crewIDs = append(crewIDs, id)
	}
	sort.Strings(crewIDs)

	for _, crewID := range crewIDs {
		group := byCrew[crewID]
		sort.Slice(group, func(i, j int) bool {
			if !group[i].start.Equal(group[j].start) {
				return group[i].start.Before(group[j].start)
			}
			if group[i].eventID != group[j].eventID {
				return group[i].eventID < group[j].eventID
			}
			return group[i].slotKey.Priority() < group[j].slotKey.Priority()
		})

		// Adjacent pairs are enough once sorted by start; a chain of
		// overlaps surfaces as one warning per adjacent pair.
		for i := 0; i+1 < len(group); i++ {
			cur, next := group[i], group[i+1]
			if cur.eventID == next.eventID {
				continue
			}
			if cur.end.After(next.start) {
				msg := fmt.Sprintf("%s is double-booked: %q (%s) overlaps %q (%s) at %s",
					crew.NameOf(crewID),
					cur.eventTitle, cur.slotLabel,
					next.eventTitle, next.slotLabel,
					formatClock(next.start),
				)
				appendConflict(warnings, cur.eventID, msg)
				appendConflict(warnings, next.eventID, msg)
			}
		}
	}
}

func (d *Detector) detectVehicleAlerts(events []domain.Event, vehicles domain.VehicleRegistry, warnings map[string]*Warnings) {
	horizon := d.WOFWarningDays
	if horizon <= 0 {
		horizon = DefaultWOFWarningDays
	}

	for i := range events {
		ev := &events[i]
		bucket := warnings[ev.ID]
		for _, vehicleID := range ev.VehicleIDs {
			veh, ok := vehicles[vehicleID]
			if !ok {
				continue // unknown vehicle: no alert
			}
			if alert, ok := VehicleAlert(&veh, ev.Date, horizon); ok {
				bucket.VehicleAlerts = append(bucket.VehicleAlerts, alert)
			}
		}
	}
}

// VehicleAlert returns the WOF warning for a vehicle at an event date,
// if any. Expiry strictly before the event date reads as expired;
// expiry within the horizon (inclusive) reads as expiring in N days.
func VehicleAlert(v *domain.Vehicle, eventDate time.Time, horizonDays int) (string, bool) {
	if v.WarrantExpiry.Before(eventDate) {
		return fmt.Sprintf("%s (%s) WOF is expired before this event", v.Name, v.LicensePlate), true
	}
	days := int(math.Round(v.WarrantExpiry.Sub(eventDate).Hours() / 24))
	if days > horizonDays {
		return "", false
	}
	unit := "days"
	if days == 1 {
		unit = "day"
	}
	return fmt.Sprintf("%s (%s) WOF expires in %d %s", v.Name, v.LicensePlate, days, unit), true
}

func appendConflict(warnings map[string]*Warnings, eventID, msg string) {
	if bucket, ok := warnings[eventID]; ok {
		bucket.CrewConflicts = append(bucket.CrewConflicts, msg)
	}
}

// DayKey buckets a timestamp by its UTC calendar day. This matches the
// stored fixtures, which key days by the ISO date of the timestamp; a
// late-evening local show can bucket into the following UTC day.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// CombineDateAndTime anchors an "HH:mm" wall-clock string to a date,
// preserving the date's location. Malformed strings anchor to midnight.
func CombineDateAndTime(date time.Time, hhmm string) time.Time {
	hour, minute := parseHHMM(hhmm)
	year, month, day := date.Date()
	return time.Date(year, month, day, hour, minute, 0, 0, date.Location())
}

func parseHHMM(s string) (hour, minute int) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0
	}
	return h, m
}

func formatClock(t time.Time) string {
	return t.Format("3:04 PM")
}
