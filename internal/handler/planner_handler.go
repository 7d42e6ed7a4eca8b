package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Josh-Wiegman/cue-rms/internal/domain"
	"github.com/Josh-Wiegman/cue-rms/internal/dto"
	"github.com/Josh-Wiegman/cue-rms/internal/service"
	"github.com/Josh-Wiegman/cue-rms/pkg/response"
	"github.com/Josh-Wiegman/cue-rms/pkg/telemetry"
)

// PlannerHandler handles planner week HTTP requests
type PlannerHandler struct {
	plannerService service.PlannerService
}

// NewPlannerHandler creates a new planner handler
func NewPlannerHandler(plannerService service.PlannerService) *PlannerHandler {
	return &PlannerHandler{plannerService: plannerService}
}

// GetWeek handles GET /planner/week?start=YYYY-MM-DD&sort=priority|byTime
func (h *PlannerHandler) GetWeek(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.planner.get_week")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	tenantID := c.GetString("tenant_id")
	if tenantID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "tenant context required")
		return
	}

	req := dto.WeekRequest{
		Start: c.Query("start"),
		Sort:  c.Query("sort"),
	}

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("week_start", req.Start),
		attribute.String("sort", req.Sort),
	)

	result, err := h.plannerService.GetWeek(ctx, tenantID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// ExportWeekICal handles GET /planner/week.ics?start=YYYY-MM-DD
func (h *PlannerHandler) ExportWeekICal(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.planner.export_week_ical")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	tenantID := c.GetString("tenant_id")
	if tenantID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "tenant context required")
		return
	}

	req := dto.WeekRequest{
		Start: c.Query("start"),
		Sort:  c.Query("sort"),
	}

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("week_start", req.Start),
	)

	ics, err := h.plannerService.ExportWeekICal(ctx, tenantID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.Header("Content-Disposition", `attachment; filename="planner-week.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(ics))
}

// handleError converts domain errors to HTTP responses. Shared by all
// handlers in this package.
func handleError(c *gin.Context, err error) {
	switch {
	case domain.IsNotFoundError(err):
		response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrInsufficientStock):
		response.Error(c, http.StatusConflict, "INSUFFICIENT_STOCK", err.Error(), "")
	case errors.Is(err, domain.ErrReturnAlreadyDone):
		response.Error(c, http.StatusConflict, "ALREADY_RETURNED", err.Error(), "")
	case domain.IsConflictError(err):
		response.Conflict(c, err.Error())
	case domain.IsValidationError(err):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
