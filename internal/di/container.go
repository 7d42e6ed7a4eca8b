package di

import (
	"github.com/Josh-Wiegman/cue-rms/internal/handler"
	"github.com/Josh-Wiegman/cue-rms/internal/repository"
	"github.com/Josh-Wiegman/cue-rms/internal/service"
	"github.com/Josh-Wiegman/cue-rms/pkg/database"
	"github.com/Josh-Wiegman/cue-rms/pkg/redis"
)

// Container holds all dependencies for the planner service
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	ScheduleRepo   repository.ScheduleRepository
	VehicleRepo    repository.VehicleRepository
	HireRepo       repository.HireRepository
	AllocationRepo repository.AllocationRepository

	// Publishers
	AlertPublisher service.AlertPublisher

	// Services
	PlannerService service.PlannerService
	VehicleService service.VehicleService
	HireService    service.HireService

	// Handlers
	HealthHandler  *handler.HealthHandler
	PlannerHandler *handler.PlannerHandler
	EventHandler   *handler.EventHandler
	VehicleHandler *handler.VehicleHandler
	HireHandler    *handler.HireHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB             *database.PostgresDB
	Redis          *redis.Client
	ScheduleRepo   repository.ScheduleRepository
	VehicleRepo    repository.VehicleRepository
	HireRepo       repository.HireRepository
	AllocationRepo repository.AllocationRepository
	AlertPublisher service.AlertPublisher
	PlannerConfig  *service.PlannerServiceConfig
	HireConfig     *service.HireServiceConfig
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:             cfg.DB,
		Redis:          cfg.Redis,
		ScheduleRepo:   cfg.ScheduleRepo,
		VehicleRepo:    cfg.VehicleRepo,
		HireRepo:       cfg.HireRepo,
		AllocationRepo: cfg.AllocationRepo,
		AlertPublisher: cfg.AlertPublisher,
	}

	// Initialize services
	c.PlannerService = service.NewPlannerService(
		c.ScheduleRepo,
		c.VehicleRepo,
		c.AlertPublisher,
		cfg.PlannerConfig,
	)
	c.VehicleService = service.NewVehicleService(c.VehicleRepo)
	c.HireService = service.NewHireService(
		c.HireRepo,
		c.AllocationRepo,
		cfg.HireConfig,
	)

	// Initialize handlers
	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)
	c.PlannerHandler = handler.NewPlannerHandler(c.PlannerService)
	c.EventHandler = handler.NewEventHandler(c.PlannerService)
	c.VehicleHandler = handler.NewVehicleHandler(c.VehicleService)
	c.HireHandler = handler.NewHireHandler(c.HireService)

	return c
}
