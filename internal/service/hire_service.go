package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Josh-Wiegman/cue-rms/internal/domain"
	"github.com/Josh-Wiegman/cue-rms/internal/dto"
	"github.com/Josh-Wiegman/cue-rms/internal/metrics"
	"github.com/Josh-Wiegman/cue-rms/internal/repository"
	"github.com/Josh-Wiegman/cue-rms/pkg/telemetry"
)

// HireService defines the interface for party-hire business logic
type HireService interface {
	// CreateOrder reserves stock atomically and records the order
	CreateOrder(ctx context.Context, tenantID string, req *dto.CreateHireOrderRequest) (*dto.HireOrderResponse, error)

	// GetOrder retrieves a hire order by id
	GetOrder(ctx context.Context, tenantID, orderID string) (*dto.HireOrderResponse, error)

	// VerifyReturn confirms the gear came back and releases its stock
	VerifyReturn(ctx context.Context, tenantID, orderID string) (*dto.HireOrderResponse, error)

	// GetAvailability reads an item's live stock counters
	GetAvailability(ctx context.Context, tenantID, itemID string) (*dto.HireAvailabilityResponse, error)

	// SeedItem creates or resets a stock line in both stores
	SeedItem(ctx context.Context, tenantID string, req *dto.SeedHireItemRequest) error
}

// hireService implements HireService
type hireService struct {
	hireRepo       repository.HireRepository
	allocationRepo repository.AllocationRepository
	maxPerOrder    int
}

// HireServiceConfig contains configuration for the hire service
type HireServiceConfig struct {
	MaxPerOrder int
}

// NewHireService creates a new hire service
func NewHireService(
	hireRepo repository.HireRepository,
	allocationRepo repository.AllocationRepository,
	cfg *HireServiceConfig,
) HireService {
	maxPerOrder := 500
	if cfg != nil && cfg.MaxPerOrder > 0 {
		maxPerOrder = cfg.MaxPerOrder
	}
	return &hireService{
		hireRepo:       hireRepo,
		allocationRepo: allocationRepo,
		maxPerOrder:    maxPerOrder,
	}
}

// CreateOrder reserves stock atomically and records the order
func (s *hireService) CreateOrder(ctx context.Context, tenantID string, req *dto.CreateHireOrderRequest) (*dto.HireOrderResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.hire.create_order")
	defer span.End()

	if tenantID == "" {
		span.SetStatus(codes.Error, "invalid tenant_id")
		return nil, domain.ErrInvalidTenantID
	}
	if req == nil || req.Quantity <= 0 || req.Quantity > s.maxPerOrder {
		span.SetStatus(codes.Error, "invalid quantity")
		return nil, domain.ErrInvalidQuantity
	}
	if req.ItemID == "" {
		span.SetStatus(codes.Error, "item not found")
		return nil, domain.ErrHireItemNotFound
	}

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("item_id", req.ItemID),
		attribute.Int("quantity", req.Quantity),
	)

	// Check the item exists before touching the counters.
	if _, err := s.hireRepo.GetItem(ctx, tenantID, req.ItemID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Reserve in Redis atomically; the script refuses to over-allocate.
	result, err := s.allocationRepo.Reserve(ctx, req.ItemID, req.Quantity)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if !result.Success {
		metrics.RecordHireRejection(ctx, req.ItemID, result.ErrorCode)
		switch result.ErrorCode {
		case "INSUFFICIENT_STOCK":
			span.SetStatus(codes.Error, "insufficient stock")
			return nil, domain.ErrInsufficientStock
		case "ITEM_NOT_FOUND":
			span.SetStatus(codes.Error, "item not seeded")
			return nil, domain.ErrHireItemNotFound
		default:
			span.SetStatus(codes.Error, result.ErrorCode)
			return nil, domain.ErrInvalidQuantity
		}
	}

	now := time.Now()
	order := &domain.HireOrder{
		ID:           uuid.New().String(),
		TenantID:     tenantID,
		ItemID:       req.ItemID,
		CustomerName: req.CustomerName,
		Quantity:     req.Quantity,
		Status:       domain.HireOrderActive,
		CreatedAt:    now,
	}

	if err := s.hireRepo.CreateOrder(ctx, order); err != nil {
		// Roll the counters back so the stock is not stranded.
		_, _ = s.allocationRepo.Release(ctx, req.ItemID, req.Quantity)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordHireReservation(ctx, req.ItemID, req.Quantity)

	span.SetAttributes(
		attribute.String("order_id", order.ID),
		attribute.Int64("allocated", result.Allocated),
		attribute.Int64("total", result.Total),
	)
	span.SetStatus(codes.Ok, "")
	return dto.HireOrderFromDomain(order), nil
}

// GetOrder retrieves a hire order by id
func (s *hireService) GetOrder(ctx context.Context, tenantID, orderID string) (*dto.HireOrderResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.hire.get_order")
	defer span.End()

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("order_id", orderID),
	)

	order, err := s.hireRepo.GetOrder(ctx, tenantID, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.HireOrderFromDomain(order), nil
}

// VerifyReturn confirms the gear came back and releases its stock.
// Stock is released only on this verification, never on the order
// merely being marked as back. A repeat call is rejected so the same
// units are not released twice.
func (s *hireService) VerifyReturn(ctx context.Context, tenantID, orderID string) (*dto.HireOrderResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.hire.verify_return")
	defer span.End()

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("order_id", orderID),
	)

	order, err := s.hireRepo.GetOrder(ctx, tenantID, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if order.IsReturned() {
		span.SetStatus(codes.Error, "already returned")
		return nil, domain.ErrReturnAlreadyDone
	}

	now := time.Now()
	if err := s.hireRepo.MarkReturned(ctx, tenantID, orderID, now); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// The release script clamps at zero, so a drifted counter can never
	// go negative.
	if _, err := s.allocationRepo.Release(ctx, order.ItemID, order.Quantity); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordHireRelease(ctx, order.ItemID, order.Quantity)

	order.Status = domain.HireOrderReturned
	order.ReturnVerified = true
	order.ReturnedAt = &now

	span.SetStatus(codes.Ok, "")
	return dto.HireOrderFromDomain(order), nil
}

// GetAvailability reads an item's live stock counters
func (s *hireService) GetAvailability(ctx context.Context, tenantID, itemID string) (*dto.HireAvailabilityResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.hire.get_availability")
	defer span.End()

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("item_id", itemID),
	)

	if _, err := s.hireRepo.GetItem(ctx, tenantID, itemID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	allocated, total, err := s.allocationRepo.Availability(ctx, itemID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("allocated", allocated),
		attribute.Int64("total", total),
	)
	span.SetStatus(codes.Ok, "")
	return &dto.HireAvailabilityResponse{
		ItemID:    itemID,
		Total:     total,
		Allocated: allocated,
		Available: total - allocated,
	}, nil
}

// SeedItem creates or resets a stock line in both stores
func (s *hireService) SeedItem(ctx context.Context, tenantID string, req *dto.SeedHireItemRequest) error {
	ctx, span := telemetry.StartSpan(ctx, "service.hire.seed_item")
	defer span.End()

	if tenantID == "" {
		span.SetStatus(codes.Error, "invalid tenant_id")
		return domain.ErrInvalidTenantID
	}
	if req == nil || req.Total < 0 || req.Allocated < 0 || req.Allocated > req.Total {
		span.SetStatus(codes.Error, "invalid stock levels")
		return domain.ErrInvalidStockLevel
	}

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("item_id", req.ItemID),
		attribute.Int("total", req.Total),
		attribute.Int("allocated", req.Allocated),
	)

	now := time.Now()
	item := &domain.HireItem{
		ID:        req.ItemID,
		TenantID:  tenantID,
		Name:      req.Name,
		Total:     req.Total,
		Allocated: req.Allocated,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.hireRepo.UpsertItem(ctx, item); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := s.allocationRepo.SetStock(ctx, req.ItemID, int64(req.Total), int64(req.Allocated)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}
