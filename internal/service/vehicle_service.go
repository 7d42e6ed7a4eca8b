package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Josh-Wiegman/cue-rms/internal/domain"
	"github.com/Josh-Wiegman/cue-rms/internal/dto"
	"github.com/Josh-Wiegman/cue-rms/internal/repository"
	"github.com/Josh-Wiegman/cue-rms/pkg/telemetry"
)

// VehicleService defines the interface for fleet management logic
type VehicleService interface {
	List(ctx context.Context, tenantID string) ([]*dto.VehicleResponse, error)
	Get(ctx context.Context, tenantID, vehicleID string) (*dto.VehicleResponse, error)
	Create(ctx context.Context, tenantID string, req *dto.CreateVehicleRequest) (*dto.VehicleResponse, error)
	Update(ctx context.Context, tenantID, vehicleID string, req *dto.UpdateVehicleRequest) (*dto.VehicleResponse, error)
}

type vehicleService struct {
	vehicleRepo repository.VehicleRepository
}

// NewVehicleService creates a new vehicle service
func NewVehicleService(vehicleRepo repository.VehicleRepository) VehicleService {
	return &vehicleService{vehicleRepo: vehicleRepo}
}

func (s *vehicleService) List(ctx context.Context, tenantID string) ([]*dto.VehicleResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.vehicle.list")
	defer span.End()

	span.SetAttributes(attribute.String("tenant_id", tenantID))

	vehicles, err := s.vehicleRepo.List(ctx, tenantID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	responses := make([]*dto.VehicleResponse, len(vehicles))
	for i := range vehicles {
		responses[i] = dto.VehicleFromDomain(&vehicles[i])
	}

	span.SetAttributes(attribute.Int("count", len(responses)))
	span.SetStatus(codes.Ok, "")
	return responses, nil
}

func (s *vehicleService) Get(ctx context.Context, tenantID, vehicleID string) (*dto.VehicleResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.vehicle.get")
	defer span.End()

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("vehicle_id", vehicleID),
	)

	vehicle, err := s.vehicleRepo.Get(ctx, tenantID, vehicleID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.VehicleFromDomain(vehicle), nil
}

func (s *vehicleService) Create(ctx context.Context, tenantID string, req *dto.CreateVehicleRequest) (*dto.VehicleResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.vehicle.create")
	defer span.End()

	if tenantID == "" {
		span.SetStatus(codes.Error, "invalid tenant_id")
		return nil, domain.ErrInvalidTenantID
	}

	now := time.Now()
	vehicle := &domain.Vehicle{
		ID:            uuid.New().String(),
		TenantID:      tenantID,
		Name:          req.Name,
		LicensePlate:  req.LicensePlate,
		WarrantExpiry: req.WarrantExpiry,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := vehicle.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("vehicle_id", vehicle.ID),
	)

	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.VehicleFromDomain(vehicle), nil
}

func (s *vehicleService) Update(ctx context.Context, tenantID, vehicleID string, req *dto.UpdateVehicleRequest) (*dto.VehicleResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.vehicle.update")
	defer span.End()

	if tenantID == "" {
		span.SetStatus(codes.Error, "invalid tenant_id")
		return nil, domain.ErrInvalidTenantID
	}

	vehicle := &domain.Vehicle{
		ID:            vehicleID,
		TenantID:      tenantID,
		Name:          req.Name,
		LicensePlate:  req.LicensePlate,
		WarrantExpiry: req.WarrantExpiry,
		UpdatedAt:     time.Now(),
	}
	if err := vehicle.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("vehicle_id", vehicleID),
	)

	if err := s.vehicleRepo.Update(ctx, vehicle); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.VehicleFromDomain(vehicle), nil
}
