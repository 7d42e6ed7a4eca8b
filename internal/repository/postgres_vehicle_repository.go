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

// PostgresVehicleRepository implements VehicleRepository using PostgreSQL
type PostgresVehicleRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresVehicleRepository creates a new PostgresVehicleRepository
func NewPostgresVehicleRepository(pool *pgxpool.Pool) *PostgresVehicleRepository {
	return &PostgresVehicleRepository{pool: pool}
}

// List returns a tenant's fleet ordered by name.
func (r *PostgresVehicleRepository) List(ctx context.Context, tenantID string) ([]domain.Vehicle, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.vehicle.list")
	defer span.End()

	span.SetAttributes(attribute.String("tenant_id", tenantID))

	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, name, license_plate, warrant_expiry, created_at, updated_at
		FROM vehicles
		WHERE tenant_id = $1
		ORDER BY name, id
	`, tenantID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()

	vehicles, err := scanVehicles(rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(vehicles)))
	span.SetStatus(codes.Ok, "")
	return vehicles, nil
}

// Get retrieves one vehicle by id.
func (r *PostgresVehicleRepository) Get(ctx context.Context, tenantID, vehicleID string) (*domain.Vehicle, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.vehicle.get")
	defer span.End()

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("vehicle_id", vehicleID),
	)

	vehicle := &domain.Vehicle{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, name, license_plate, warrant_expiry, created_at, updated_at
		FROM vehicles
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, vehicleID).Scan(
		&vehicle.ID,
		&vehicle.TenantID,
		&vehicle.Name,
		&vehicle.LicensePlate,
		&vehicle.WarrantExpiry,
		&vehicle.CreatedAt,
		&vehicle.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrVehicleNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return vehicle, nil
}

// Create inserts a new vehicle.
func (r *PostgresVehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.vehicle.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("tenant_id", vehicle.TenantID),
		attribute.String("vehicle_id", vehicle.ID),
	)

	_, err := r.pool.Exec(ctx, `
		INSERT INTO vehicles (id, tenant_id, name, license_plate, warrant_expiry, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		vehicle.ID,
		vehicle.TenantID,
		vehicle.Name,
		vehicle.LicensePlate,
		vehicle.WarrantExpiry,
		vehicle.CreatedAt,
		vehicle.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create vehicle: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Update rewrites a vehicle's mutable fields.
func (r *PostgresVehicleRepository) Update(ctx context.Context, vehicle *domain.Vehicle) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.vehicle.update")
	defer span.End()

	span.SetAttributes(
		attribute.String("tenant_id", vehicle.TenantID),
		attribute.String("vehicle_id", vehicle.ID),
	)

	result, err := r.pool.Exec(ctx, `
		UPDATE vehicles SET
			name = $3,
			license_plate = $4,
			warrant_expiry = $5,
			updated_at = $6
		WHERE tenant_id = $1 AND id = $2
	`,
		vehicle.TenantID,
		vehicle.ID,
		vehicle.Name,
		vehicle.LicensePlate,
		vehicle.WarrantExpiry,
		time.Now(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update vehicle: %w", err)
	}

	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrVehicleNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Registry loads the tenant's fleet keyed by id for alert rendering.
func (r *PostgresVehicleRepository) Registry(ctx context.Context, tenantID string) (domain.VehicleRegistry, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.vehicle.registry")
	defer span.End()

	vehicles, err := r.List(ctx, tenantID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	registry := make(domain.VehicleRegistry, len(vehicles))
	for _, v := range vehicles {
		registry[v.ID] = v
	}

	span.SetAttributes(attribute.Int("count", len(registry)))
	span.SetStatus(codes.Ok, "")
	return registry, nil
}

// ListExpiringBy returns vehicles across all tenants whose warrant
// expires on or before the deadline, soonest first.
func (r *PostgresVehicleRepository) ListExpiringBy(ctx context.Context, deadline time.Time) ([]domain.Vehicle, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.vehicle.list_expiring_by")
	defer span.End()

	span.SetAttributes(attribute.String("deadline", deadline.Format("2006-01-02")))

	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, name, license_plate, warrant_expiry, created_at, updated_at
		FROM vehicles
		WHERE warrant_expiry <= $1
		ORDER BY warrant_expiry, id
	`, deadline)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list expiring vehicles: %w", err)
	}
	defer rows.Close()

	vehicles, err := scanVehicles(rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(vehicles)))
	span.SetStatus(codes.Ok, "")
	return vehicles, nil
}

func scanVehicles(rows pgx.Rows) ([]domain.Vehicle, error) {
	var vehicles []domain.Vehicle
	for rows.Next() {
		var v domain.Vehicle
		err := rows.Scan(
			&v.ID,
			&v.TenantID,
			&v.Name,
			&v.LicensePlate,
			&v.WarrantExpiry,
			&v.CreatedAt,
			&v.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vehicles: %w", err)
	}

	return vehicles, nil
}

// Ensure PostgresVehicleRepository implements VehicleRepository
var _ VehicleRepository = (*PostgresVehicleRepository)(nil)
