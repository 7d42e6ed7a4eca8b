package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Josh-Wiegman/cue-rms/internal/domain"
	"github.com/Josh-Wiegman/cue-rms/pkg/telemetry"
)

// PostgresScheduleRepository implements ScheduleRepository using
// PostgreSQL with pgxpool. Events own their slots, slots own their
// crew assignments; all reads are tenant-scoped.
type PostgresScheduleRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresScheduleRepository creates a new PostgresScheduleRepository
func NewPostgresScheduleRepository(pool *pgxpool.Pool) *PostgresScheduleRepository {
	return &PostgresScheduleRepository{pool: pool}
}

// ListWeek returns a tenant's events with date in [weekStart, weekStart+7d),
// fully resolved with slots and crew assignments.
func (r *PostgresScheduleRepository) ListWeek(ctx context.Context, tenantID string, weekStart time.Time) ([]domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.schedule.list_week")
	defer span.End()

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("week_start", weekStart.Format("2006-01-02")),
	)

	query := `
		SELECT
			id, tenant_id, sales_order, title, location, event_type,
			event_date, vehicle_ids, created_at, updated_at
		FROM events
		WHERE tenant_id = $1
			AND event_date >= $2
			AND event_date < $3
		ORDER BY event_date, id
	`

	rows, err := r.pool.Query(ctx, query, tenantID, weekStart, weekStart.AddDate(0, 0, 7))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list week events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	var eventIDs []string
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		events = append(events, *event)
		eventIDs = append(eventIDs, event.ID)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	if err := r.attachSlots(ctx, events, eventIDs); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(events)))
	span.SetStatus(codes.Ok, "")
	return events, nil
}

// GetEvent retrieves one event with its slots and crew.
func (r *PostgresScheduleRepository) GetEvent(ctx context.Context, tenantID, eventID string) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.schedule.get_event")
	defer span.End()

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("event_id", eventID),
	)

	query := `
		SELECT
			id, tenant_id, sales_order, title, location, event_type,
			event_date, vehicle_ids, created_at, updated_at
		FROM events
		WHERE tenant_id = $1 AND id = $2
	`

	row := r.pool.QueryRow(ctx, query, tenantID, eventID)
	event, err := scanEventRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	events := []domain.Event{*event}
	if err := r.attachSlots(ctx, events, []string{event.ID}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &events[0], nil
}

// CreateEvent inserts an event together with its slots and crew in one
// transaction.
func (r *PostgresScheduleRepository) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.schedule.create_event")
	defer span.End()

	span.SetAttributes(
		attribute.String("tenant_id", event.TenantID),
		attribute.String("event_id", event.ID),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO events (
			id, tenant_id, sales_order, title, location, event_type,
			event_date, vehicle_ids, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = tx.Exec(ctx, query,
		event.ID,
		event.TenantID,
		event.SalesOrder,
		event.Title,
		event.Location,
		event.Type,
		event.Date,
		event.VehicleIDs,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create event: %w", err)
	}

	if err := insertSlots(ctx, tx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to commit event: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// UpdateEvent rewrites the event row and replaces its slots and crew.
func (r *PostgresScheduleRepository) UpdateEvent(ctx context.Context, event *domain.Event) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.schedule.update_event")
	defer span.End()

	span.SetAttributes(
		attribute.String("tenant_id", event.TenantID),
		attribute.String("event_id", event.ID),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE events SET
			sales_order = $3,
			title = $4,
			location = $5,
			event_type = $6,
			event_date = $7,
			vehicle_ids = $8,
			updated_at = $9
		WHERE tenant_id = $1 AND id = $2
	`

	result, err := tx.Exec(ctx, query,
		event.TenantID,
		event.ID,
		event.SalesOrder,
		event.Title,
		event.Location,
		event.Type,
		event.Date,
		event.VehicleIDs,
		time.Now(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update event: %w", err)
	}

	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrEventNotFound
	}

	// Slots are replaced wholesale; assignments cascade with them.
	if _, err := tx.Exec(ctx, `DELETE FROM event_slots WHERE event_id = $1`, event.ID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to clear event slots: %w", err)
	}

	if err := insertSlots(ctx, tx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to commit event update: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// DeleteEvent removes an event; slots and crew rows cascade.
func (r *PostgresScheduleRepository) DeleteEvent(ctx context.Context, tenantID, eventID string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.schedule.delete_event")
	defer span.End()

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("event_id", eventID),
	)

	result, err := r.pool.Exec(ctx, `DELETE FROM events WHERE tenant_id = $1 AND id = $2`, tenantID, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete event: %w", err)
	}

	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrEventNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// ReplaceSlotCrew swaps out the full assignment list of one slot.
func (r *PostgresScheduleRepository) ReplaceSlotCrew(ctx context.Context, tenantID, eventID string, key domain.SlotKey, crew []domain.Assignment) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.schedule.replace_slot_crew")
	defer span.End()

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("event_id", eventID),
		attribute.String("slot_key", string(key)),
		attribute.Int("crew_count", len(crew)),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var slotID int64
	err = tx.QueryRow(ctx, `
		SELECT s.id
		FROM event_slots s
		JOIN events e ON e.id = s.event_id
		WHERE e.tenant_id = $1 AND s.event_id = $2 AND s.slot_key = $3
	`, tenantID, eventID, string(key)).Scan(&slotID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return domain.ErrSlotNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to find slot: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM slot_crew WHERE slot_id = $1`, slotID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to clear slot crew: %w", err)
	}

	for i, assignment := range crew {
		_, err := tx.Exec(ctx, `
			INSERT INTO slot_crew (slot_id, crew_id, responsibility, position)
			VALUES ($1, $2, $3, $4)
		`, slotID, assignment.CrewID, assignment.Responsibility, i)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("failed to insert slot crew: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to commit slot crew: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// CrewDirectory loads the tenant's crew roster keyed by id.
func (r *PostgresScheduleRepository) CrewDirectory(ctx context.Context, tenantID string) (domain.CrewDirectory, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.schedule.crew_directory")
	defer span.End()

	span.SetAttributes(attribute.String("tenant_id", tenantID))

	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, name, phone, email
		FROM crew_members
		WHERE tenant_id = $1
	`, tenantID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to load crew directory: %w", err)
	}
	defer rows.Close()

	directory := make(domain.CrewDirectory)
	for rows.Next() {
		var member domain.CrewMember
		var phone, email *string
		if err := rows.Scan(&member.ID, &member.TenantID, &member.Name, &phone, &email); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan crew member: %w", err)
		}
		if phone != nil {
			member.Phone = *phone
		}
		if email != nil {
			member.Email = *email
		}
		directory[member.ID] = member
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating crew members: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(directory)))
	span.SetStatus(codes.Ok, "")
	return directory, nil
}

// attachSlots loads slots and crew for the given events and attaches
// them in place. Slot order and crew order follow the stored positions.
func (r *PostgresScheduleRepository) attachSlots(ctx context.Context, events []domain.Event, eventIDs []string) error {
	if len(eventIDs) == 0 {
		return nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT
			s.event_id, s.slot_key, s.label, s.start_time, s.duration_minutes,
			c.crew_id, c.responsibility
		FROM event_slots s
		LEFT JOIN slot_crew c ON c.slot_id = s.id
		WHERE s.event_id = ANY($1)
		ORDER BY s.event_id, s.id, c.position
	`, eventIDs)
	if err != nil {
		return fmt.Errorf("failed to load event slots: %w", err)
	}
	defer rows.Close()

	type slotRef struct {
		eventIdx int
		slotIdx  int
	}
	byID := make(map[string]int, len(events))
	for i := range events {
		byID[events[i].ID] = i
	}
	slotRefs := make(map[string]slotRef)

	for rows.Next() {
		var (
			eventID, slotKey, label, startTime string
			durationMinutes                    int
			crewID, responsibility             *string
		)
		if err := rows.Scan(&eventID, &slotKey, &label, &startTime, &durationMinutes, &crewID, &responsibility); err != nil {
			return fmt.Errorf("failed to scan slot row: %w", err)
		}

		eventIdx, ok := byID[eventID]
		if !ok {
			continue
		}

		refKey := eventID + "/" + slotKey
		ref, ok := slotRefs[refKey]
		if !ok {
			events[eventIdx].Slots = append(events[eventIdx].Slots, domain.Slot{
				Key:             domain.SlotKey(slotKey),
				Label:           label,
				Start:           startTime,
				DurationMinutes: durationMinutes,
				Crew:            []domain.Assignment{},
			})
			ref = slotRef{eventIdx: eventIdx, slotIdx: len(events[eventIdx].Slots) - 1}
			slotRefs[refKey] = ref
		}

		if crewID != nil {
			assignment := domain.Assignment{CrewID: *crewID}
			if responsibility != nil {
				assignment.Responsibility = *responsibility
			}
			slot := &events[ref.eventIdx].Slots[ref.slotIdx]
			slot.Crew = append(slot.Crew, assignment)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating slot rows: %w", err)
	}

	return nil
}

// insertSlots writes an event's slots and crew inside an open transaction.
func insertSlots(ctx context.Context, tx pgx.Tx, event *domain.Event) error {
	for _, slot := range event.Slots {
		var slotID int64
		err := tx.QueryRow(ctx, `
			INSERT INTO event_slots (event_id, slot_key, label, start_time, duration_minutes)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, event.ID, string(slot.Key), slot.Label, slot.Start, slot.DurationMinutes).Scan(&slotID)
		if err != nil {
			return fmt.Errorf("failed to insert slot %s: %w", slot.Key, err)
		}

		for i, assignment := range slot.Crew {
			_, err := tx.Exec(ctx, `
				INSERT INTO slot_crew (slot_id, crew_id, responsibility, position)
				VALUES ($1, $2, $3, $4)
			`, slotID, assignment.CrewID, assignment.Responsibility, i)
			if err != nil {
				return fmt.Errorf("failed to insert assignment: %w", err)
			}
		}
	}
	return nil
}

// scanEvent scans an event row from a rows iterator.
func scanEvent(rows pgx.Rows) (*domain.Event, error) {
	event := &domain.Event{}
	var salesOrder, location, eventType *string
	var vehicleIDs []string

	err := rows.Scan(
		&event.ID,
		&event.TenantID,
		&salesOrder,
		&event.Title,
		&location,
		&eventType,
		&event.Date,
		&vehicleIDs,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}

	applyEventFields(event, salesOrder, location, eventType, vehicleIDs)
	return event, nil
}

// scanEventRow scans an event from a single-row query.
func scanEventRow(row pgx.Row) (*domain.Event, error) {
	event := &domain.Event{}
	var salesOrder, location, eventType *string
	var vehicleIDs []string

	err := row.Scan(
		&event.ID,
		&event.TenantID,
		&salesOrder,
		&event.Title,
		&location,
		&eventType,
		&event.Date,
		&vehicleIDs,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	applyEventFields(event, salesOrder, location, eventType, vehicleIDs)
	return event, nil
}

func applyEventFields(event *domain.Event, salesOrder, location, eventType *string, vehicleIDs []string) {
	if salesOrder != nil {
		event.SalesOrder = *salesOrder
	}
	if location != nil {
		event.Location = *location
	}
	if eventType != nil {
		event.Type = *eventType
	}
	event.VehicleIDs = vehicleIDs
	if event.VehicleIDs == nil {
		event.VehicleIDs = []string{}
	}
	if event.Slots == nil {
		event.Slots = []domain.Slot{}
	}
}

// Ensure PostgresScheduleRepository implements ScheduleRepository
var _ ScheduleRepository = (*PostgresScheduleRepository)(nil)
