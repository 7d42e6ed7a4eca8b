package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Josh-Wiegman/cue-rms/internal/metrics"
	"github.com/Josh-Wiegman/cue-rms/internal/repository"
	"github.com/Josh-Wiegman/cue-rms/internal/service"
	"github.com/Josh-Wiegman/cue-rms/internal/worker"
	"github.com/Josh-Wiegman/cue-rms/pkg/config"
	"github.com/Josh-Wiegman/cue-rms/pkg/database"
	"github.com/Josh-Wiegman/cue-rms/pkg/logger"
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
		ServiceName: "wof-alert-worker",
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting WOF alert worker...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := metrics.Init(); err != nil {
		appLog.Warn(fmt.Sprintf("Metrics init failed: %v", err))
	}

	// Initialize database connection
	dbCfg := &database.PostgresConfig{
		Host:          cfg.Database.Host,
		Port:          cfg.Database.Port,
		User:          cfg.Database.User,
		Password:      cfg.Database.Password,
		Database:      cfg.Database.DBName,
		SSLMode:       cfg.Database.SSLMode,
		MaxConns:      int32(cfg.Database.MaxOpenConns),
		MinConns:      int32(cfg.Database.MaxIdleConns),
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to connect to database: %v", err))
	}
	defer db.Close()
	appLog.Info("Database connected")

	// Initialize Kafka alert publisher
	var alertPublisher service.AlertPublisher
	alertPublisher, err = service.NewKafkaAlertPublisher(ctx, &service.AlertPublisherConfig{
		Brokers:     cfg.Kafka.Brokers,
		Topic:       cfg.Kafka.AlertTopic,
		ServiceName: "wof-alert-worker",
		ClientID:    cfg.Kafka.ClientID,
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("Kafka connection failed, using no-op publisher: %v", err))
		alertPublisher = service.NewNoOpAlertPublisher()
	} else {
		appLog.Info("Kafka alert publisher connected")
	}
	defer alertPublisher.Close()

	vehicleRepo := repository.NewPostgresVehicleRepository(db.Pool())

	// Create and start worker
	wofWorker := worker.NewWOFAlertWorker(vehicleRepo, alertPublisher, &worker.WOFAlertWorkerConfig{
		ScanCron:    cfg.Worker.WOFScanCron,
		WarningDays: cfg.Planner.WOFWarningDays,
		ScanOnStart: true,
	})
	if err := wofWorker.Start(ctx); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to start worker: %v", err))
	}
	appLog.Info("WOF alert worker started")

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("Shutting down WOF alert worker...")
	wofWorker.Stop()
	cancel()
	appLog.Info("WOF alert worker stopped")
}
