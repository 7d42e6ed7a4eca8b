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

// VehicleHandler handles fleet HTTP requests
type VehicleHandler struct {
	vehicleService service.VehicleService
}

// NewVehicleHandler creates a new vehicle handler
func NewVehicleHandler(vehicleService service.VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicleService: vehicleService}
}

// List handles GET /vehicles
func (h *VehicleHandler) List(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.vehicle.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	tenantID := c.GetString("tenant_id")
	if tenantID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "tenant context required")
		return
	}

	span.SetAttributes(attribute.String("tenant_id", tenantID))

	result, err := h.vehicleService.List(ctx, tenantID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("count", len(result)))
	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// Get handles GET /vehicles/:id
func (h *VehicleHandler) Get(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.vehicle.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	tenantID := c.GetString("tenant_id")
	if tenantID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "tenant context required")
		return
	}

	vehicleID := c.Param("id")
	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("vehicle_id", vehicleID),
	)

	result, err := h.vehicleService.Get(ctx, tenantID, vehicleID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// Create handles POST /vehicles
func (h *VehicleHandler) Create(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.vehicle.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	tenantID := c.GetString("tenant_id")
	if tenantID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "tenant context required")
		return
	}

	var req dto.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("name", req.Name),
	)

	result, err := h.vehicleService.Create(ctx, tenantID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("vehicle_id", result.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// Update handles PUT /vehicles/:id
func (h *VehicleHandler) Update(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.vehicle.update")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	tenantID := c.GetString("tenant_id")
	if tenantID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "tenant context required")
		return
	}

	vehicleID := c.Param("id")

	var req dto.UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("vehicle_id", vehicleID),
	)

	result, err := h.vehicleService.Update(ctx, tenantID, vehicleID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}
