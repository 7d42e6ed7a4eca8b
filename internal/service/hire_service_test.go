package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Josh-Wiegman/cue-rms/internal/domain"
	"github.com/Josh-Wiegman/cue-rms/internal/dto"
	"github.com/Josh-Wiegman/cue-rms/internal/repository"
)

func TestCreateOrder_Success(t *testing.T) {
	var reservedQty int
	var createdOrder *domain.HireOrder

	allocRepo := &MockAllocationRepository{
		ReserveFunc: func(ctx context.Context, itemID string, qty int) (*repository.AllocationResult, error) {
			assert.Equal(t, "item-1", itemID)
			reservedQty = qty
			return &repository.AllocationResult{Success: true, Allocated: int64(qty), Total: 40}, nil
		},
	}
	hireRepo := &MockHireRepository{
		CreateOrderFunc: func(ctx context.Context, order *domain.HireOrder) error {
			createdOrder = order
			return nil
		},
	}

	svc := NewHireService(hireRepo, allocRepo, nil)

	resp, err := svc.CreateOrder(context.Background(), "tenant-1", &dto.CreateHireOrderRequest{
		ItemID:       "item-1",
		CustomerName: "Harriet Vane",
		Quantity:     12,
	})
	require.NoError(t, err)

	assert.Equal(t, 12, reservedQty)
	require.NotNil(t, createdOrder)
	assert.Equal(t, domain.HireOrderActive, createdOrder.Status)
	assert.False(t, createdOrder.ReturnVerified)
	assert.Equal(t, "active", resp.Status)
	assert.NotEmpty(t, resp.ID)
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	orderCreated := false
	allocRepo := &MockAllocationRepository{
		ReserveFunc: func(ctx context.Context, itemID string, qty int) (*repository.AllocationResult, error) {
			return &repository.AllocationResult{
				Success:      false,
				ErrorCode:    "INSUFFICIENT_STOCK",
				ErrorMessage: "only 3 of 40 units available",
			}, nil
		},
	}
	hireRepo := &MockHireRepository{
		CreateOrderFunc: func(ctx context.Context, order *domain.HireOrder) error {
			orderCreated = true
			return nil
		},
	}

	svc := NewHireService(hireRepo, allocRepo, nil)

	_, err := svc.CreateOrder(context.Background(), "tenant-1", &dto.CreateHireOrderRequest{
		ItemID:       "item-1",
		CustomerName: "Harriet Vane",
		Quantity:     10,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.False(t, orderCreated, "no order row on a refused reservation")
}

func TestCreateOrder_ReleasesOnPersistFailure(t *testing.T) {
	released := 0
	allocRepo := &MockAllocationRepository{
		ReleaseFunc: func(ctx context.Context, itemID string, qty int) (*repository.AllocationResult, error) {
			released = qty
			return &repository.AllocationResult{Success: true}, nil
		},
	}
	hireRepo := &MockHireRepository{
		CreateOrderFunc: func(ctx context.Context, order *domain.HireOrder) error {
			return errors.New("connection reset")
		},
	}

	svc := NewHireService(hireRepo, allocRepo, nil)

	_, err := svc.CreateOrder(context.Background(), "tenant-1", &dto.CreateHireOrderRequest{
		ItemID:       "item-1",
		CustomerName: "Harriet Vane",
		Quantity:     7,
	})
	require.Error(t, err)
	assert.Equal(t, 7, released, "reserved units returned when the order row fails")
}

func TestCreateOrder_InvalidQuantity(t *testing.T) {
	svc := NewHireService(&MockHireRepository{}, &MockAllocationRepository{}, &HireServiceConfig{MaxPerOrder: 50})

	_, err := svc.CreateOrder(context.Background(), "tenant-1", &dto.CreateHireOrderRequest{
		ItemID: "item-1", CustomerName: "x", Quantity: 0,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = svc.CreateOrder(context.Background(), "tenant-1", &dto.CreateHireOrderRequest{
		ItemID: "item-1", CustomerName: "x", Quantity: 51,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestVerifyReturn_ReleasesStockOnce(t *testing.T) {
	released := 0
	order := &domain.HireOrder{
		ID:        "order-1",
		TenantID:  "tenant-1",
		ItemID:    "item-1",
		Quantity:  12,
		Status:    domain.HireOrderActive,
		CreatedAt: time.Now(),
	}

	hireRepo := &MockHireRepository{
		GetOrderFunc: func(ctx context.Context, tenantID, orderID string) (*domain.HireOrder, error) {
			copy := *order
			return &copy, nil
		},
		MarkReturnedFunc: func(ctx context.Context, tenantID, orderID string, returnedAt time.Time) error {
			order.Status = domain.HireOrderReturned
			order.ReturnVerified = true
			return nil
		},
	}
	allocRepo := &MockAllocationRepository{
		ReleaseFunc: func(ctx context.Context, itemID string, qty int) (*repository.AllocationResult, error) {
			released += qty
			return &repository.AllocationResult{Success: true}, nil
		},
	}

	svc := NewHireService(hireRepo, allocRepo, nil)

	resp, err := svc.VerifyReturn(context.Background(), "tenant-1", "order-1")
	require.NoError(t, err)
	assert.Equal(t, 12, released)
	assert.Equal(t, "returned", resp.Status)
	assert.True(t, resp.ReturnVerified)

	// Second verification must not release the same units again.
	_, err = svc.VerifyReturn(context.Background(), "tenant-1", "order-1")
	assert.ErrorIs(t, err, domain.ErrReturnAlreadyDone)
	assert.Equal(t, 12, released)
}

func TestGetAvailability(t *testing.T) {
	allocRepo := &MockAllocationRepository{
		AvailabilityFunc: func(ctx context.Context, itemID string) (int64, int64, error) {
			return 15, 40, nil
		},
	}

	svc := NewHireService(&MockHireRepository{}, allocRepo, nil)

	resp, err := svc.GetAvailability(context.Background(), "tenant-1", "item-1")
	require.NoError(t, err)
	assert.Equal(t, int64(40), resp.Total)
	assert.Equal(t, int64(15), resp.Allocated)
	assert.Equal(t, int64(25), resp.Available)
}

func TestSeedItem_RejectsInvalidLevels(t *testing.T) {
	svc := NewHireService(&MockHireRepository{}, &MockAllocationRepository{}, nil)

	err := svc.SeedItem(context.Background(), "tenant-1", &dto.SeedHireItemRequest{
		ItemID: "item-1", Name: "Trestle Table", Total: 10, Allocated: 11,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStockLevel)

	err = svc.SeedItem(context.Background(), "tenant-1", &dto.SeedHireItemRequest{
		ItemID: "item-1", Name: "Trestle Table", Total: 10, Allocated: 4,
	})
	assert.NoError(t, err)
}

func TestSeedItem_SyncsBothStores(t *testing.T) {
	var pgTotal, redisTotal int64
	hireRepo := &MockHireRepository{
		UpsertItemFunc: func(ctx context.Context, item *domain.HireItem) error {
			pgTotal = int64(item.Total)
			return nil
		},
	}
	allocRepo := &MockAllocationRepository{
		SetStockFunc: func(ctx context.Context, itemID string, total, allocated int64) error {
			redisTotal = total
			return nil
		},
	}

	svc := NewHireService(hireRepo, allocRepo, nil)

	err := svc.SeedItem(context.Background(), "tenant-1", &dto.SeedHireItemRequest{
		ItemID: "item-1", Name: "Trestle Table", Total: 40,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(40), pgTotal)
	assert.Equal(t, int64(40), redisTotal)
}
