package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // Import pprof for profiling
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Josh-Wiegman/cue-rms/internal/di"
	"github.com/Josh-Wiegman/cue-rms/internal/metrics"
	"github.com/Josh-Wiegman/cue-rms/internal/repository"
	"github.com/Josh-Wiegman/cue-rms/internal/service"
	"github.com/Josh-Wiegman/cue-rms/pkg/config"
	"github.com/Josh-Wiegman/cue-rms/pkg/database"
	"github.com/Josh-Wiegman/cue-rms/pkg/logger"
	"github.com/Josh-Wiegman/cue-rms/pkg/middleware"
	pkgredis "github.com/Josh-Wiegman/cue-rms/pkg/redis"
	"github.com/Josh-Wiegman/cue-rms/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       cfg.App.Environment,
		ServiceName: "cue-rms",
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting planner service...")

	ctx := context.Background()

	// Initialize OpenTelemetry
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Warn(fmt.Sprintf("Telemetry init failed, continuing without tracing: %v", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = telemetry.Shutdown(shutdownCtx)
	}()

	if err := metrics.Init(); err != nil {
		appLog.Warn(fmt.Sprintf("Metrics init failed: %v", err))
	}

	// Initialize database connection
	dbCfg := &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxOpenConns),
		MinConns:        int32(cfg.Database.MaxIdleConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   1 * time.Second,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()
	appLog.Info("Database connected")

	// Initialize Redis connection
	redisCfg := &pkgredis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		MaxRetries:    3,
		RetryInterval: 100 * time.Millisecond,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
	}
	redisClient, err := pkgredis.NewClient(ctx, redisCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Redis connection failed: %v", err))
	}
	defer redisClient.Close()
	appLog.Info("Redis connected")

	// Initialize Kafka alert publisher
	var alertPublisher service.AlertPublisher
	alertPublisher, err = service.NewKafkaAlertPublisher(ctx, &service.AlertPublisherConfig{
		Brokers:     cfg.Kafka.Brokers,
		Topic:       cfg.Kafka.AlertTopic,
		ServiceName: "cue-rms",
		ClientID:    cfg.Kafka.ClientID,
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("Kafka connection failed, using no-op publisher: %v", err))
		alertPublisher = service.NewNoOpAlertPublisher()
	} else {
		appLog.Info("Kafka alert publisher connected")
	}
	defer alertPublisher.Close()

	// Initialize repositories
	scheduleRepo := repository.NewPostgresScheduleRepository(db.Pool())
	vehicleRepo := repository.NewPostgresVehicleRepository(db.Pool())
	hireRepo := repository.NewPostgresHireRepository(db.Pool())
	allocationRepo := repository.NewRedisAllocationRepository(redisClient)

	// Pre-load Lua scripts into Redis
	if err := allocationRepo.LoadScripts(ctx); err != nil {
		appLog.Warn(fmt.Sprintf("Failed to pre-load Lua scripts: %v", err))
	} else {
		appLog.Info("Lua scripts pre-loaded into Redis")
	}

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		DB:             db,
		Redis:          redisClient,
		ScheduleRepo:   scheduleRepo,
		VehicleRepo:    vehicleRepo,
		HireRepo:       hireRepo,
		AllocationRepo: allocationRepo,
		AlertPublisher: alertPublisher,
		PlannerConfig: &service.PlannerServiceConfig{
			WOFWarningDays: cfg.Planner.WOFWarningDays,
		},
		HireConfig: &service.HireServiceConfig{
			MaxPerOrder: cfg.Planner.MaxHirePerOrder,
		},
	})

	// Setup Gin
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	// Health check endpoints
	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	// Pool stats for monitoring
	router.GET("/metrics", func(c *gin.Context) {
		stats := db.Stats()
		c.JSON(http.StatusOK, gin.H{
			"db_pool": gin.H{
				"total_conns":    stats.TotalConns(),
				"acquired_conns": stats.AcquiredConns(),
				"idle_conns":     stats.IdleConns(),
				"max_conns":      stats.MaxConns(),
			},
		})
	})

	// API routes
	authMiddleware := middleware.Auth(&middleware.AuthConfig{
		Secret:              cfg.JWT.Secret,
		Issuer:              cfg.JWT.Issuer,
		AllowHeaderFallback: cfg.IsDevelopment(),
	})

	v1 := router.Group("/api/v1")
	v1.Use(authMiddleware)
	{
		planner := v1.Group("/planner")
		{
			planner.GET("/week", container.PlannerHandler.GetWeek)
			planner.GET("/week.ics", container.PlannerHandler.ExportWeekICal)
		}

		events := v1.Group("/events")
		{
			events.POST("", container.EventHandler.CreateEvent)
			events.GET("/:id", container.EventHandler.GetEvent)
			events.PUT("/:id", container.EventHandler.UpdateEvent)
			events.DELETE("/:id", container.EventHandler.DeleteEvent)
			events.PUT("/:id/slots/:key/crew", container.EventHandler.ReplaceSlotCrew)
		}

		vehicles := v1.Group("/vehicles")
		{
			vehicles.GET("", container.VehicleHandler.List)
			vehicles.GET("/:id", container.VehicleHandler.Get)
			vehicles.POST("", container.VehicleHandler.Create)
			vehicles.PUT("/:id", container.VehicleHandler.Update)
		}

		hire := v1.Group("/hire")
		{
			hire.POST("/orders", container.HireHandler.CreateOrder)
			hire.GET("/orders/:id", container.HireHandler.GetOrder)
			hire.POST("/orders/:id/return", container.HireHandler.VerifyReturn)
			hire.GET("/items/:id/availability", container.HireHandler.GetAvailability)
			hire.PUT("/items", container.HireHandler.SeedItem)
		}
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Start pprof server on separate port for profiling
	go func() {
		pprofAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port+1000)
		appLog.Info(fmt.Sprintf("pprof server listening on %s", pprofAddr))
		if err := http.ListenAndServe(pprofAddr, nil); err != nil {
			appLog.Error(fmt.Sprintf("pprof server error: %v", err))
		}
	}()

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("Planner service listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}
