package planner

import (
	"sort"
	"time"

	"github.com/Josh-Wiegman/cue-rms/internal/domain"
)

// SortMode selects how events are ordered within a day.
type SortMode string

const (
	// SortByPriority orders events by the slot-priority index of their
	// earliest slot (pack-in days lead, pack-out days trail).
	SortByPriority SortMode = "priority"
	// SortByTime orders events chronologically by the absolute start
	// time of their earliest slot.
	SortByTime SortMode = "byTime"
)

// ParseSortMode validates a sort mode string, defaulting to priority.
func ParseSortMode(s string) (SortMode, error) {
	switch s {
	case "", string(SortByPriority):
		return SortByPriority, nil
	case string(SortByTime):
		return SortByTime, nil
	default:
		return "", domain.ErrInvalidSortMode
	}
}

// SortSlots returns the slots in fixed slot-priority order
// (packIn, rehearsal, show, packOut) without mutating the input.
func SortSlots(slots []domain.Slot) []domain.Slot {
	out := make([]domain.Slot, len(slots))
	copy(out, slots)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Key.Priority() < out[j].Key.Priority()
	})
	return out
}

// SortEvents returns the events ordered for display within a day. The
// input is not mutated. Ties keep their incoming order.
func SortEvents(events []domain.Event, mode SortMode) []domain.Event {
	out := make([]domain.Event, len(events))
	copy(out, events)

	switch mode {
	case SortByTime:
		sort.SliceStable(out, func(i, j int) bool {
			return earliestStart(&out[i]).Before(earliestStart(&out[j]))
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return earliestSlotPriority(&out[i]) < earliestSlotPriority(&out[j])
		})
	}
	return out
}

// earliestSlotPriority is the event's sort key in priority mode: the
// priority index of its first slot after slot-priority ordering.
// Slotless events sort last.
func earliestSlotPriority(e *domain.Event) int {
	best := len(e.Slots)
	if len(e.Slots) == 0 {
		return domain.SlotPackOut.Priority() + 1
	}
	best = e.Slots[0].Key.Priority()
	for _, slot := range e.Slots[1:] {
		if p := slot.Key.Priority(); p < best {
			best = p
		}
	}
	return best
}

// earliestStart is the event's sort key in chronological mode.
// Slotless events fall back to the event date itself.
func earliestStart(e *domain.Event) time.Time {
	if len(e.Slots) == 0 {
		return e.Date
	}
	best := CombineDateAndTime(e.Date, e.Slots[0].Start)
	for _, slot := range e.Slots[1:] {
		if s := CombineDateAndTime(e.Date, slot.Start); s.Before(best) {
			best = s
		}
	}
	return best
}
