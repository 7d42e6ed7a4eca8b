package handler

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Josh-Wiegman/cue-rms/internal/domain"
	"github.com/Josh-Wiegman/cue-rms/internal/dto"
	"github.com/Josh-Wiegman/cue-rms/internal/service"
	"github.com/Josh-Wiegman/cue-rms/pkg/response"
	"github.com/Josh-Wiegman/cue-rms/pkg/telemetry"
)

// EventHandler handles event CRUD HTTP requests
type EventHandler struct {
	plannerService service.PlannerService
}

// NewEventHandler creates a new event handler
func NewEventHandler(plannerService service.PlannerService) *EventHandler {
	return &EventHandler{plannerService: plannerService}
}

// GetEvent handles GET /events/:id
func (h *EventHandler) GetEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	tenantID := c.GetString("tenant_id")
	if tenantID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "tenant context required")
		return
	}

	eventID := c.Param("id")
	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("event_id", eventID),
	)

	result, err := h.plannerService.GetEvent(ctx, tenantID, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	tenantID := c.GetString("tenant_id")
	if tenantID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "tenant context required")
		return
	}

	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("title", req.Title),
	)

	result, err := h.plannerService.CreateEvent(ctx, tenantID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("event_id", result.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// UpdateEvent handles PUT /events/:id
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.update")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	tenantID := c.GetString("tenant_id")
	if tenantID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "tenant context required")
		return
	}

	eventID := c.Param("id")

	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("event_id", eventID),
	)

	result, err := h.plannerService.UpdateEvent(ctx, tenantID, eventID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// DeleteEvent handles DELETE /events/:id
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.delete")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	tenantID := c.GetString("tenant_id")
	if tenantID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "tenant context required")
		return
	}

	eventID := c.Param("id")
	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("event_id", eventID),
	)

	if err := h.plannerService.DeleteEvent(ctx, tenantID, eventID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.NoContent(c)
}

// ReplaceSlotCrew handles PUT /events/:id/slots/:key/crew
func (h *EventHandler) ReplaceSlotCrew(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.replace_slot_crew")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	tenantID := c.GetString("tenant_id")
	if tenantID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "tenant context required")
		return
	}

	eventID := c.Param("id")
	slotKey := domain.SlotKey(c.Param("key"))

	var req dto.ReplaceSlotCrewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("event_id", eventID),
		attribute.String("slot_key", string(slotKey)),
		attribute.Int("crew_count", len(req.Crew)),
	)

	if err := h.plannerService.ReplaceSlotCrew(ctx, tenantID, eventID, slotKey, req.Crew); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.NoContent(c)
}
