package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Josh-Wiegman/cue-rms/internal/domain"
	"github.com/Josh-Wiegman/cue-rms/internal/dto"
)

// MockHireService is a mock implementation of HireService for testing
type MockHireService struct {
	CreateOrderFunc     func(ctx context.Context, tenantID string, req *dto.CreateHireOrderRequest) (*dto.HireOrderResponse, error)
	GetOrderFunc        func(ctx context.Context, tenantID, orderID string) (*dto.HireOrderResponse, error)
	VerifyReturnFunc    func(ctx context.Context, tenantID, orderID string) (*dto.HireOrderResponse, error)
	GetAvailabilityFunc func(ctx context.Context, tenantID, itemID string) (*dto.HireAvailabilityResponse, error)
	SeedItemFunc        func(ctx context.Context, tenantID string, req *dto.SeedHireItemRequest) error
}

func (m *MockHireService) CreateOrder(ctx context.Context, tenantID string, req *dto.CreateHireOrderRequest) (*dto.HireOrderResponse, error) {
	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(ctx, tenantID, req)
	}
	return nil, nil
}

func (m *MockHireService) GetOrder(ctx context.Context, tenantID, orderID string) (*dto.HireOrderResponse, error) {
	if m.GetOrderFunc != nil {
		return m.GetOrderFunc(ctx, tenantID, orderID)
	}
	return nil, nil
}

func (m *MockHireService) VerifyReturn(ctx context.Context, tenantID, orderID string) (*dto.HireOrderResponse, error) {
	if m.VerifyReturnFunc != nil {
		return m.VerifyReturnFunc(ctx, tenantID, orderID)
	}
	return nil, nil
}

func (m *MockHireService) GetAvailability(ctx context.Context, tenantID, itemID string) (*dto.HireAvailabilityResponse, error) {
	if m.GetAvailabilityFunc != nil {
		return m.GetAvailabilityFunc(ctx, tenantID, itemID)
	}
	return nil, nil
}

func (m *MockHireService) SeedItem(ctx context.Context, tenantID string, req *dto.SeedHireItemRequest) error {
	if m.SeedItemFunc != nil {
		return m.SeedItemFunc(ctx, tenantID, req)
	}
	return nil
}

func setupHireRouter(handler *HireHandler, tenantID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	if tenantID != "" {
		router.Use(func(c *gin.Context) {
			c.Set("tenant_id", tenantID)
			c.Next()
		})
	}

	hire := router.Group("/hire")
	{
		hire.POST("/orders", handler.CreateOrder)
		hire.GET("/orders/:id", handler.GetOrder)
		hire.POST("/orders/:id/return", handler.VerifyReturn)
		hire.GET("/items/:id/availability", handler.GetAvailability)
		hire.PUT("/items", handler.SeedItem)
	}

	return router
}

func TestHireHandler_CreateOrder(t *testing.T) {
	tests := []struct {
		name           string
		tenantID       string
		body           string
		mockFunc       func(ctx context.Context, tenantID string, req *dto.CreateHireOrderRequest) (*dto.HireOrderResponse, error)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:     "successful order",
			tenantID: "tenant-1",
			body:     `{"item_id":"item-1","customer_name":"Harriet Vane","quantity":12}`,
			mockFunc: func(ctx context.Context, tenantID string, req *dto.CreateHireOrderRequest) (*dto.HireOrderResponse, error) {
				return &dto.HireOrderResponse{ID: "order-1", Status: "active"}, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:     "insufficient stock",
			tenantID: "tenant-1",
			body:     `{"item_id":"item-1","customer_name":"Harriet Vane","quantity":500}`,
			mockFunc: func(ctx context.Context, tenantID string, req *dto.CreateHireOrderRequest) (*dto.HireOrderResponse, error) {
				return nil, domain.ErrInsufficientStock
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "INSUFFICIENT_STOCK",
		},
		{
			name:           "invalid json",
			tenantID:       "tenant-1",
			body:           "not json",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "zero quantity rejected by binding",
			tenantID:       "tenant-1",
			body:           `{"item_id":"item-1","customer_name":"Harriet Vane","quantity":0}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unauthorized - no tenant",
			tenantID:       "",
			body:           `{"item_id":"item-1","customer_name":"Harriet Vane","quantity":1}`,
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "UNAUTHORIZED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockHireService{CreateOrderFunc: tt.mockFunc}
			handler := NewHireHandler(mockService)
			router := setupHireRouter(handler, tt.tenantID)

			req := httptest.NewRequest(http.MethodPost, "/hire/orders", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}

			if tt.expectedCode != "" {
				var response errorEnvelope
				if err := json.Unmarshal(w.Body.Bytes(), &response); err == nil {
					if response.Error.Code != tt.expectedCode {
						t.Errorf("expected code %s, got %s", tt.expectedCode, response.Error.Code)
					}
				}
			}
		})
	}
}

func TestHireHandler_VerifyReturn(t *testing.T) {
	tests := []struct {
		name           string
		orderID        string
		mockFunc       func(ctx context.Context, tenantID, orderID string) (*dto.HireOrderResponse, error)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:    "successful return",
			orderID: "order-1",
			mockFunc: func(ctx context.Context, tenantID, orderID string) (*dto.HireOrderResponse, error) {
				return &dto.HireOrderResponse{ID: orderID, Status: "returned", ReturnVerified: true}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:    "already returned",
			orderID: "order-1",
			mockFunc: func(ctx context.Context, tenantID, orderID string) (*dto.HireOrderResponse, error) {
				return nil, domain.ErrReturnAlreadyDone
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "ALREADY_RETURNED",
		},
		{
			name:    "order not found",
			orderID: "missing",
			mockFunc: func(ctx context.Context, tenantID, orderID string) (*dto.HireOrderResponse, error) {
				return nil, domain.ErrHireOrderNotFound
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockHireService{VerifyReturnFunc: tt.mockFunc}
			handler := NewHireHandler(mockService)
			router := setupHireRouter(handler, "tenant-1")

			req := httptest.NewRequest(http.MethodPost, "/hire/orders/"+tt.orderID+"/return", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.expectedCode != "" {
				var response errorEnvelope
				if err := json.Unmarshal(w.Body.Bytes(), &response); err == nil {
					if response.Error.Code != tt.expectedCode {
						t.Errorf("expected code %s, got %s", tt.expectedCode, response.Error.Code)
					}
				}
			}
		})
	}
}

func TestHireHandler_GetAvailability(t *testing.T) {
	mockService := &MockHireService{
		GetAvailabilityFunc: func(ctx context.Context, tenantID, itemID string) (*dto.HireAvailabilityResponse, error) {
			return &dto.HireAvailabilityResponse{ItemID: itemID, Total: 40, Allocated: 15, Available: 25}, nil
		},
	}
	handler := NewHireHandler(mockService)
	router := setupHireRouter(handler, "tenant-1")

	req := httptest.NewRequest(http.MethodGet, "/hire/items/item-1/availability", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var envelope struct {
		Data dto.HireAvailabilityResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if envelope.Data.Available != 25 {
		t.Errorf("expected 25 available, got %d", envelope.Data.Available)
	}
}

func TestHireHandler_SeedItem(t *testing.T) {
	var seeded *dto.SeedHireItemRequest
	mockService := &MockHireService{
		SeedItemFunc: func(ctx context.Context, tenantID string, req *dto.SeedHireItemRequest) error {
			seeded = req
			return nil
		},
	}
	handler := NewHireHandler(mockService)
	router := setupHireRouter(handler, "tenant-1")

	body := `{"item_id":"item-1","name":"Trestle Table","total":40}`
	req := httptest.NewRequest(http.MethodPut, "/hire/items", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d: %s", http.StatusNoContent, w.Code, w.Body.String())
	}
	if seeded == nil || seeded.Total != 40 {
		t.Errorf("unexpected seed payload: %+v", seeded)
	}
}
