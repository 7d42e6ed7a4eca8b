package repository

import (
	"context"
	_ "embed"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	pkgredis "github.com/Josh-Wiegman/cue-rms/pkg/redis"
	"github.com/Josh-Wiegman/cue-rms/pkg/telemetry"
)

//go:embed scripts/reserve_stock.lua
var reserveStockScript string

//go:embed scripts/release_stock.lua
var releaseStockScript string

// Script names for caching
const (
	scriptReserveStock = "reserve_stock"
	scriptReleaseStock = "release_stock"
)

// RedisAllocationRepository implements AllocationRepository using Redis
// hash counters mutated by Lua scripts. Both directions are clamped:
// a reserve never exceeds total and a release never drops below zero.
type RedisAllocationRepository struct {
	client *pkgredis.Client
}

// NewRedisAllocationRepository creates a new RedisAllocationRepository
func NewRedisAllocationRepository(client *pkgredis.Client) *RedisAllocationRepository {
	return &RedisAllocationRepository{client: client}
}

// LoadScripts loads all Lua scripts into Redis
func (r *RedisAllocationRepository) LoadScripts(ctx context.Context) error {
	scripts := map[string]string{
		scriptReserveStock: reserveStockScript,
		scriptReleaseStock: releaseStockScript,
	}

	for name, script := range scripts {
		if _, err := r.client.LoadScript(ctx, name, script); err != nil {
			return fmt.Errorf("failed to load script %s: %w", name, err)
		}
	}

	return nil
}

// Reserve atomically allocates qty units of an item.
func (r *RedisAllocationRepository) Reserve(ctx context.Context, itemID string, qty int) (*AllocationResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.allocation.reserve")
	defer span.End()

	span.SetAttributes(
		attribute.String("item_id", itemID),
		attribute.Int("quantity", qty),
	)

	keys := []string{stockKey(itemID)}
	result := r.client.EvalWithFallback(ctx, scriptReserveStock, reserveStockScript, keys, qty)
	if result.Err() != nil {
		span.RecordError(result.Err())
		span.SetStatus(codes.Error, result.Err().Error())
		return nil, fmt.Errorf("failed to execute reserve_stock script: %w", result.Err())
	}

	return parseAllocationResult(result, span)
}

// Release atomically returns qty units of an item, saturating at zero.
func (r *RedisAllocationRepository) Release(ctx context.Context, itemID string, qty int) (*AllocationResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.allocation.release")
	defer span.End()

	span.SetAttributes(
		attribute.String("item_id", itemID),
		attribute.Int("quantity", qty),
	)

	keys := []string{stockKey(itemID)}
	result := r.client.EvalWithFallback(ctx, scriptReleaseStock, releaseStockScript, keys, qty)
	if result.Err() != nil {
		span.RecordError(result.Err())
		span.SetStatus(codes.Error, result.Err().Error())
		return nil, fmt.Errorf("failed to execute release_stock script: %w", result.Err())
	}

	return parseAllocationResult(result, span)
}

// SetStock seeds or corrects an item's counters (for initialization).
func (r *RedisAllocationRepository) SetStock(ctx context.Context, itemID string, total, allocated int64) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.allocation.set_stock")
	defer span.End()

	span.SetAttributes(
		attribute.String("item_id", itemID),
		attribute.Int64("total", total),
		attribute.Int64("allocated", allocated),
	)

	if total < 0 || allocated < 0 || allocated > total {
		span.SetStatus(codes.Error, "invalid stock levels")
		return fmt.Errorf("invalid stock levels for %s: allocated=%d total=%d", itemID, allocated, total)
	}

	err := r.client.HSet(ctx, stockKey(itemID), "total", total, "allocated", allocated).Err()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to set stock counters: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Availability reads the current counters for an item.
func (r *RedisAllocationRepository) Availability(ctx context.Context, itemID string) (int64, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.allocation.availability")
	defer span.End()

	span.SetAttributes(attribute.String("item_id", itemID))

	fields, err := r.client.HGetAll(ctx, stockKey(itemID)).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, 0, fmt.Errorf("failed to get stock counters: %w", err)
	}

	if len(fields) == 0 {
		span.SetStatus(codes.Ok, "item not seeded")
		return 0, 0, nil
	}

	allocated, _ := strconv.ParseInt(fields["allocated"], 10, 64)
	total, _ := strconv.ParseInt(fields["total"], 10, 64)

	span.SetAttributes(
		attribute.Int64("allocated", allocated),
		attribute.Int64("total", total),
	)
	span.SetStatus(codes.Ok, "")
	return allocated, total, nil
}

func stockKey(itemID string) string {
	return fmt.Sprintf("hire:stock:%s", itemID)
}

// parseAllocationResult decodes the {success, ...} tuple every stock
// script returns.
func parseAllocationResult(result *redis.Cmd, span trace.Span) (*AllocationResult, error) {
	values, err := result.Slice()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to parse script result: %w", err)
	}

	if len(values) < 3 {
		span.SetStatus(codes.Error, "unexpected result length")
		return nil, fmt.Errorf("unexpected script result length: %d", len(values))
	}

	success, _ := toInt64(values[0])
	if success == 1 {
		allocated, _ := toInt64(values[1])
		total, _ := toInt64(values[2])
		span.SetAttributes(
			attribute.Int64("allocated", allocated),
			attribute.Int64("total", total),
		)
		span.SetStatus(codes.Ok, "")
		return &AllocationResult{
			Success:   true,
			Allocated: allocated,
			Total:     total,
		}, nil
	}

	errorCode, _ := values[1].(string)
	errorMessage, _ := values[2].(string)
	span.SetAttributes(attribute.String("error_code", errorCode))
	span.SetStatus(codes.Error, errorCode)
	return &AllocationResult{
		Success:      false,
		ErrorCode:    errorCode,
		ErrorMessage: errorMessage,
	}, nil
}

// Helper function to convert interface{} to int64
func toInt64(v interface{}) (int64, bool) {
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	case float64:
		return int64(val), true
	case string:
		i, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// Ensure RedisAllocationRepository implements AllocationRepository
var _ AllocationRepository = (*RedisAllocationRepository)(nil)
