package service

import (
	"context"
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Josh-Wiegman/cue-rms/internal/domain"
	"github.com/Josh-Wiegman/cue-rms/internal/dto"
	"github.com/Josh-Wiegman/cue-rms/internal/metrics"
	"github.com/Josh-Wiegman/cue-rms/internal/planner"
	"github.com/Josh-Wiegman/cue-rms/internal/repository"
	"github.com/Josh-Wiegman/cue-rms/pkg/logger"
	"github.com/Josh-Wiegman/cue-rms/pkg/telemetry"
)

// PlannerService defines the interface for planner business logic
type PlannerService interface {
	// GetWeek loads a week of events and computes their warnings
	GetWeek(ctx context.Context, tenantID string, req *dto.WeekRequest) (*dto.WeekResponse, error)

	// ExportWeekICal renders a week of events as an iCalendar document
	ExportWeekICal(ctx context.Context, tenantID string, req *dto.WeekRequest) (string, error)

	// GetEvent retrieves one event with its slots and crew
	GetEvent(ctx context.Context, tenantID, eventID string) (*dto.EventResponse, error)

	// CreateEvent creates an event from a request payload
	CreateEvent(ctx context.Context, tenantID string, req *dto.CreateEventRequest) (*dto.EventResponse, error)

	// UpdateEvent rewrites an event from a request payload
	UpdateEvent(ctx context.Context, tenantID, eventID string, req *dto.UpdateEventRequest) (*dto.EventResponse, error)

	// DeleteEvent removes an event
	DeleteEvent(ctx context.Context, tenantID, eventID string) error

	// ReplaceSlotCrew swaps out the full crew of one slot
	ReplaceSlotCrew(ctx context.Context, tenantID, eventID string, key domain.SlotKey, crew []domain.Assignment) error
}

// plannerService implements PlannerService
type plannerService struct {
	scheduleRepo   repository.ScheduleRepository
	vehicleRepo    repository.VehicleRepository
	alertPublisher AlertPublisher
	detector       *planner.Detector
}

// PlannerServiceConfig contains configuration for the planner service
type PlannerServiceConfig struct {
	WOFWarningDays int
}

// NewPlannerService creates a new planner service
func NewPlannerService(
	scheduleRepo repository.ScheduleRepository,
	vehicleRepo repository.VehicleRepository,
	alertPublisher AlertPublisher,
	cfg *PlannerServiceConfig,
) PlannerService {
	horizon := planner.DefaultWOFWarningDays
	if cfg != nil && cfg.WOFWarningDays > 0 {
		horizon = cfg.WOFWarningDays
	}
	if alertPublisher == nil {
		alertPublisher = NewNoOpAlertPublisher()
	}
	return &plannerService{
		scheduleRepo:   scheduleRepo,
		vehicleRepo:    vehicleRepo,
		alertPublisher: alertPublisher,
		detector:       &planner.Detector{WOFWarningDays: horizon},
	}
}

// GetWeek loads a week of events and computes their warnings
func (s *plannerService) GetWeek(ctx context.Context, tenantID string, req *dto.WeekRequest) (*dto.WeekResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.planner.get_week")
	defer span.End()

	if tenantID == "" {
		span.SetStatus(codes.Error, "invalid tenant_id")
		return nil, domain.ErrInvalidTenantID
	}

	weekStart, sortMode, err := parseWeekRequest(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("week_start", weekStart.Format("2006-01-02")),
		attribute.String("sort", string(sortMode)),
	)

	events, crew, vehicles, err := s.loadWeek(ctx, tenantID, weekStart)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	detectStart := time.Now()
	warnings := s.detector.Detect(events, crew, vehicles)
	detectDuration := time.Since(detectStart)

	resp := buildWeekResponse(weekStart, sortMode, events, warnings)

	s.publishConflicts(tenantID, events, warnings)
	metrics.RecordWeekComputed(ctx, tenantID, resp.ConflictCount, resp.AlertCount, detectDuration.Seconds())

	span.SetAttributes(
		attribute.Int("event_count", len(events)),
		attribute.Int("conflict_count", resp.ConflictCount),
		attribute.Int("alert_count", resp.AlertCount),
	)
	span.SetStatus(codes.Ok, "")
	return resp, nil
}

// ExportWeekICal renders a week of events as an iCalendar document.
// Each slot becomes one VEVENT so field crews can subscribe per block.
func (s *plannerService) ExportWeekICal(ctx context.Context, tenantID string, req *dto.WeekRequest) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.planner.export_week_ical")
	defer span.End()

	if tenantID == "" {
		span.SetStatus(codes.Error, "invalid tenant_id")
		return "", domain.ErrInvalidTenantID
	}

	weekStart, sortMode, err := parseWeekRequest(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("week_start", weekStart.Format("2006-01-02")),
	)

	events, err := s.scheduleRepo.ListWeek(ctx, tenantID, weekStart)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//cue-rms//planner//EN")

	now := time.Now()
	for i := range events {
		ev := &events[i]
		for _, slot := range planner.SortSlots(ev.Slots) {
			start := planner.CombineDateAndTime(ev.Date, slot.Start)
			end := start.Add(time.Duration(slot.DurationMinutes) * time.Minute)

			vevent := cal.AddEvent(fmt.Sprintf("%s-%s@cue-rms", ev.ID, slot.Key))
			vevent.SetDtStampTime(now)
			vevent.SetStartAt(start)
			vevent.SetEndAt(end)
			vevent.SetSummary(fmt.Sprintf("%s: %s", ev.Title, slot.Label))
			if ev.Location != "" {
				vevent.SetLocation(ev.Location)
			}
			if ev.SalesOrder != "" {
				vevent.SetDescription(fmt.Sprintf("Sales order %s", ev.SalesOrder))
			}
		}
	}
	_ = sortMode // the calendar client orders entries itself

	span.SetAttributes(attribute.Int("event_count", len(events)))
	span.SetStatus(codes.Ok, "")
	return cal.Serialize(), nil
}

// GetEvent retrieves one event with its warnings computed in isolation
func (s *plannerService) GetEvent(ctx context.Context, tenantID, eventID string) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.planner.get_event")
	defer span.End()

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("event_id", eventID),
	)

	event, err := s.scheduleRepo.GetEvent(ctx, tenantID, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	vehicles, err := s.vehicleRepo.Registry(ctx, tenantID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// A single event can still carry vehicle alerts; crew conflicts need
	// the rest of the day, which GetWeek provides.
	warnings := s.detector.Detect([]domain.Event{*event}, nil, vehicles)
	resp := dto.EventFromDomain(event, warnings[event.ID])

	span.SetStatus(codes.Ok, "")
	return &resp, nil
}

// CreateEvent creates an event from a request payload
func (s *plannerService) CreateEvent(ctx context.Context, tenantID string, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.planner.create_event")
	defer span.End()

	if tenantID == "" {
		span.SetStatus(codes.Error, "invalid tenant_id")
		return nil, domain.ErrInvalidTenantID
	}

	event := req.ToDomain(uuid.New().String(), tenantID, time.Now())
	if err := event.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("event_id", event.ID),
	)

	if err := s.scheduleRepo.CreateEvent(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	resp := dto.EventFromDomain(event, nil)
	span.SetStatus(codes.Ok, "")
	return &resp, nil
}

// UpdateEvent rewrites an event from a request payload
func (s *plannerService) UpdateEvent(ctx context.Context, tenantID, eventID string, req *dto.UpdateEventRequest) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.planner.update_event")
	defer span.End()

	if tenantID == "" {
		span.SetStatus(codes.Error, "invalid tenant_id")
		return nil, domain.ErrInvalidTenantID
	}
	if eventID == "" {
		span.SetStatus(codes.Error, "not found")
		return nil, domain.ErrEventNotFound
	}

	event := req.ToDomain(eventID, tenantID, time.Now())
	if err := event.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("event_id", eventID),
	)

	if err := s.scheduleRepo.UpdateEvent(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	resp := dto.EventFromDomain(event, nil)
	span.SetStatus(codes.Ok, "")
	return &resp, nil
}

// DeleteEvent removes an event
func (s *plannerService) DeleteEvent(ctx context.Context, tenantID, eventID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.planner.delete_event")
	defer span.End()

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("event_id", eventID),
	)

	if err := s.scheduleRepo.DeleteEvent(ctx, tenantID, eventID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// ReplaceSlotCrew swaps out the full crew of one slot
func (s *plannerService) ReplaceSlotCrew(ctx context.Context, tenantID, eventID string, key domain.SlotKey, crew []domain.Assignment) error {
	ctx, span := telemetry.StartSpan(ctx, "service.planner.replace_slot_crew")
	defer span.End()

	if !key.Valid() {
		span.SetStatus(codes.Error, "invalid slot key")
		return domain.ErrInvalidSlotKey
	}

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("event_id", eventID),
		attribute.String("slot_key", string(key)),
		attribute.Int("crew_count", len(crew)),
	)

	if err := s.scheduleRepo.ReplaceSlotCrew(ctx, tenantID, eventID, key, crew); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// loadWeek fetches the three snapshots the detector consumes.
func (s *plannerService) loadWeek(ctx context.Context, tenantID string, weekStart time.Time) ([]domain.Event, domain.CrewDirectory, domain.VehicleRegistry, error) {
	events, err := s.scheduleRepo.ListWeek(ctx, tenantID, weekStart)
	if err != nil {
		return nil, nil, nil, err
	}

	crew, err := s.scheduleRepo.CrewDirectory(ctx, tenantID)
	if err != nil {
		return nil, nil, nil, err
	}

	vehicles, err := s.vehicleRepo.Registry(ctx, tenantID)
	if err != nil {
		return nil, nil, nil, err
	}

	return events, crew, vehicles, nil
}

// publishConflicts forwards each surfaced crew conflict to the alert
// topic. Publishing is fire-and-forget; the week response never waits
// on the broker.
func (s *plannerService) publishConflicts(tenantID string, events []domain.Event, warnings map[string]*planner.Warnings) {
	log := logger.Get()
	for i := range events {
		ev := &events[i]
		bucket := warnings[ev.ID]
		if bucket == nil {
			continue
		}
		for _, msg := range bucket.CrewConflicts {
			go func(eventID, message string) {
				if err := s.alertPublisher.PublishCrewConflict(context.Background(), tenantID, eventID, message); err != nil {
					log.Warn("failed to publish crew conflict alert")
				}
			}(ev.ID, msg)
		}
	}
}

// parseWeekRequest validates the start date and sort mode of a week
// query. The start date is anchored to midnight UTC.
func parseWeekRequest(req *dto.WeekRequest) (time.Time, planner.SortMode, error) {
	if req == nil || req.Start == "" {
		return time.Time{}, "", domain.ErrInvalidWeekStart
	}

	weekStart, err := time.Parse("2006-01-02", req.Start)
	if err != nil {
		return time.Time{}, "", domain.ErrInvalidWeekStart
	}

	sortMode, err := planner.ParseSortMode(req.Sort)
	if err != nil {
		return time.Time{}, "", err
	}

	return weekStart, sortMode, nil
}

// buildWeekResponse groups events by UTC day key, sorts each day, and
// attaches warnings. All seven days are present even when empty.
func buildWeekResponse(weekStart time.Time, sortMode planner.SortMode, events []domain.Event, warnings map[string]*planner.Warnings) *dto.WeekResponse {
	byDay := make(map[string][]domain.Event)
	for i := range events {
		key := planner.DayKey(events[i].Date)
		byDay[key] = append(byDay[key], events[i])
	}

	resp := &dto.WeekResponse{
		WeekStart: weekStart.Format("2006-01-02"),
		Sort:      string(sortMode),
		Days:      make([]dto.DayResponse, 0, 7),
	}

	for d := 0; d < 7; d++ {
		dayKey := planner.DayKey(weekStart.AddDate(0, 0, d))
		day := dto.DayResponse{
			Date:   dayKey,
			Events: []dto.EventResponse{},
		}

		for _, ev := range planner.SortEvents(byDay[dayKey], sortMode) {
			ev.Slots = planner.SortSlots(ev.Slots)
			bucket := warnings[ev.ID]
			day.Events = append(day.Events, dto.EventFromDomain(&ev, bucket))
			if bucket != nil {
				resp.ConflictCount += len(bucket.CrewConflicts)
				resp.AlertCount += len(bucket.VehicleAlerts)
			}
		}

		resp.Days = append(resp.Days, day)
	}

	return resp
}
