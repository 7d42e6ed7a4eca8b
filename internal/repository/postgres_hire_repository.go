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

// PostgresHireRepository implements HireRepository using PostgreSQL.
// It stores the durable order history; the live counters live in Redis.
type PostgresHireRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresHireRepository creates a new PostgresHireRepository
func NewPostgresHireRepository(pool *pgxpool.Pool) *PostgresHireRepository {
	return &PostgresHireRepository{pool: pool}
}

// GetItem retrieves a hire item by id.
func (r *PostgresHireRepository) GetItem(ctx context.Context, tenantID, itemID string) (*domain.HireItem, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.hire.get_item")
	defer span.End()

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("item_id", itemID),
	)

	item := &domain.HireItem{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, name, total, allocated, created_at, updated_at
		FROM hire_items
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, itemID).Scan(
		&item.ID,
		&item.TenantID,
		&item.Name,
		&item.Total,
		&item.Allocated,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrHireItemNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get hire item: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return item, nil
}

// UpsertItem creates or rewrites a hire item's stock line.
func (r *PostgresHireRepository) UpsertItem(ctx context.Context, item *domain.HireItem) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.hire.upsert_item")
	defer span.End()

	span.SetAttributes(
		attribute.String("tenant_id", item.TenantID),
		attribute.String("item_id", item.ID),
		attribute.Int("total", item.Total),
		attribute.Int("allocated", item.Allocated),
	)

	_, err := r.pool.Exec(ctx, `
		INSERT INTO hire_items (id, tenant_id, name, total, allocated, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			total = EXCLUDED.total,
			allocated = EXCLUDED.allocated,
			updated_at = EXCLUDED.updated_at
	`,
		item.ID,
		item.TenantID,
		item.Name,
		item.Total,
		item.Allocated,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to upsert hire item: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// CreateOrder inserts a new hire order.
func (r *PostgresHireRepository) CreateOrder(ctx context.Context, order *domain.HireOrder) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.hire.create_order")
	defer span.End()

	span.SetAttributes(
		attribute.String("tenant_id", order.TenantID),
		attribute.String("order_id", order.ID),
		attribute.String("item_id", order.ItemID),
		attribute.Int("quantity", order.Quantity),
	)

	_, err := r.pool.Exec(ctx, `
		INSERT INTO hire_orders (
			id, tenant_id, item_id, customer_name, quantity,
			status, return_verified, created_at, returned_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		order.ID,
		order.TenantID,
		order.ItemID,
		order.CustomerName,
		order.Quantity,
		string(order.Status),
		order.ReturnVerified,
		order.CreatedAt,
		order.ReturnedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create hire order: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetOrder retrieves a hire order by id.
func (r *PostgresHireRepository) GetOrder(ctx context.Context, tenantID, orderID string) (*domain.HireOrder, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.hire.get_order")
	defer span.End()

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("order_id", orderID),
	)

	order := &domain.HireOrder{}
	var status string
	var returnedAt *time.Time

	err := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, item_id, customer_name, quantity,
			status, return_verified, created_at, returned_at
		FROM hire_orders
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, orderID).Scan(
		&order.ID,
		&order.TenantID,
		&order.ItemID,
		&order.CustomerName,
		&order.Quantity,
		&status,
		&order.ReturnVerified,
		&order.CreatedAt,
		&returnedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrHireOrderNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get hire order: %w", err)
	}

	order.Status = domain.HireOrderStatus(status)
	order.ReturnedAt = returnedAt

	span.SetStatus(codes.Ok, "")
	return order, nil
}

// MarkReturned flips an active order to returned with its return
// verified. A second call reports the return as already done.
func (r *PostgresHireRepository) MarkReturned(ctx context.Context, tenantID, orderID string, returnedAt time.Time) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.hire.mark_returned")
	defer span.End()

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("order_id", orderID),
	)

	result, err := r.pool.Exec(ctx, `
		UPDATE hire_orders SET
			status = $3,
			return_verified = TRUE,
			returned_at = $4
		WHERE tenant_id = $1 AND id = $2 AND status = $5
	`,
		tenantID,
		orderID,
		string(domain.HireOrderReturned),
		returnedAt,
		string(domain.HireOrderActive),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to mark order returned: %w", err)
	}

	if result.RowsAffected() == 0 {
		var status string
		err := r.pool.QueryRow(ctx,
			`SELECT status FROM hire_orders WHERE tenant_id = $1 AND id = $2`,
			tenantID, orderID,
		).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				span.SetStatus(codes.Error, "not found")
				return domain.ErrHireOrderNotFound
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("failed to check order status: %w", err)
		}
		span.SetStatus(codes.Error, "already returned")
		return domain.ErrReturnAlreadyDone
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Ensure PostgresHireRepository implements HireRepository
var _ HireRepository = (*PostgresHireRepository)(nil)
