package handler

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Josh-Wiegman/cue-rms/internal/dto"
	"github.com/Josh-Wiegman/cue-rms/internal/service"
	"github.com/Josh-Wiegman/cue-rms/pkg/response"
	"github.com/Josh-Wiegman/cue-rms/pkg/telemetry"
)

// HireHandler handles party-hire HTTP requests
type HireHandler struct {
	hireService service.HireService
}

// NewHireHandler creates a new hire handler
func NewHireHandler(hireService service.HireService) *HireHandler {
	return &HireHandler{hireService: hireService}
}

// CreateOrder handles POST /hire/orders
func (h *HireHandler) CreateOrder(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.hire.create_order")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	tenantID := c.GetString("tenant_id")
	if tenantID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "tenant context required")
		return
	}

	var req dto.CreateHireOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("item_id", req.ItemID),
		attribute.Int("quantity", req.Quantity),
	)

	result, err := h.hireService.CreateOrder(ctx, tenantID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("order_id", result.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// GetOrder handles GET /hire/orders/:id
func (h *HireHandler) GetOrder(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.hire.get_order")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	tenantID := c.GetString("tenant_id")
	if tenantID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "tenant context required")
		return
	}

	orderID := c.Param("id")
	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("order_id", orderID),
	)

	result, err := h.hireService.GetOrder(ctx, tenantID, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// VerifyReturn handles POST /hire/orders/:id/return
func (h *HireHandler) VerifyReturn(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.hire.verify_return")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	tenantID := c.GetString("tenant_id")
	if tenantID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "tenant context required")
		return
	}

	orderID := c.Param("id")
	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("order_id", orderID),
	)

	result, err := h.hireService.VerifyReturn(ctx, tenantID, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// GetAvailability handles GET /hire/items/:id/availability
func (h *HireHandler) GetAvailability(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.hire.get_availability")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	tenantID := c.GetString("tenant_id")
	if tenantID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "tenant context required")
		return
	}

	itemID := c.Param("id")
	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("item_id", itemID),
	)

	result, err := h.hireService.GetAvailability(ctx, tenantID, itemID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// SeedItem handles PUT /hire/items
func (h *HireHandler) SeedItem(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.hire.seed_item")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	tenantID := c.GetString("tenant_id")
	if tenantID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "tenant context required")
		return
	}

	var req dto.SeedHireItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("item_id", req.ItemID),
		attribute.Int("total", req.Total),
	)

	if err := h.hireService.SeedItem(ctx, tenantID, &req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.NoContent(c)
}
