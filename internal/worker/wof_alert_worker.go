package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Josh-Wiegman/cue-rms/internal/metrics"
	"github.com/Josh-Wiegman/cue-rms/internal/planner"
	"github.com/Josh-Wiegman/cue-rms/internal/repository"
	"github.com/Josh-Wiegman/cue-rms/internal/service"
	"github.com/Josh-Wiegman/cue-rms/pkg/logger"
)

// WOFAlertWorkerConfig contains configuration for the WOF alert worker
type WOFAlertWorkerConfig struct {
	// ScanCron is the cron expression for the daily fleet scan
	ScanCron string
	// WarningDays is the horizon, in days, for "expires soon" alerts
	WarningDays int
	// ScanOnStart runs one scan immediately when the worker starts
	ScanOnStart bool
}

// DefaultWOFAlertWorkerConfig returns default configuration
func DefaultWOFAlertWorkerConfig() *WOFAlertWorkerConfig {
	return &WOFAlertWorkerConfig{
		ScanCron:    "0 6 * * *", // daily at 06:00
		WarningDays: planner.DefaultWOFWarningDays,
		ScanOnStart: true,
	}
}

// WOFAlertWorker scans the fleet on a schedule and publishes an alert
// for every vehicle whose warrant is expired or inside the warning
// horizon.
type WOFAlertWorker struct {
	vehicleRepo    repository.VehicleRepository
	alertPublisher service.AlertPublisher
	config         *WOFAlertWorkerConfig
	log            *logger.Logger
	cron           *cron.Cron
	mu             sync.Mutex
	running        bool

	// Stats
	totalScans        int64
	totalAlertsRaised int64
	lastScanTime      time.Time
	lastAlertCount    int
}

// NewWOFAlertWorker creates a new WOF alert worker
func NewWOFAlertWorker(
	vehicleRepo repository.VehicleRepository,
	alertPublisher service.AlertPublisher,
	config *WOFAlertWorkerConfig,
) *WOFAlertWorker {
	if config == nil {
		config = DefaultWOFAlertWorkerConfig()
	}
	if config.ScanCron == "" {
		config.ScanCron = DefaultWOFAlertWorkerConfig().ScanCron
	}
	if config.WarningDays <= 0 {
		config.WarningDays = planner.DefaultWOFWarningDays
	}
	if alertPublisher == nil {
		alertPublisher = service.NewNoOpAlertPublisher()
	}

	return &WOFAlertWorker{
		vehicleRepo:    vehicleRepo,
		alertPublisher: alertPublisher,
		config:         config,
		log:            logger.Get(),
	}
}

// Start schedules the fleet scan
func (w *WOFAlertWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("WOF alert worker already running")
	}
	w.running = true
	w.cron = cron.New()
	w.mu.Unlock()

	if _, err := w.cron.AddFunc(w.config.ScanCron, func() {
		w.Scan(ctx)
	}); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return fmt.Errorf("invalid scan schedule %q: %w", w.config.ScanCron, err)
	}

	w.log.Info(fmt.Sprintf("Starting WOF alert worker (schedule: %s, horizon: %d days)",
		w.config.ScanCron, w.config.WarningDays))

	if w.config.ScanOnStart {
		w.Scan(ctx)
	}

	w.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for an in-flight scan to finish
func (w *WOFAlertWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	c := w.cron
	w.mu.Unlock()

	w.log.Info("Stopping WOF alert worker")
	if c != nil {
		<-c.Stop().Done()
	}
	w.log.Info("WOF alert worker stopped")
}

// Scan runs one pass over the fleet. Exported so a deploy hook or an
// admin endpoint can trigger an out-of-schedule scan.
func (w *WOFAlertWorker) Scan(ctx context.Context) {
	now := time.Now().UTC()
	deadline := now.AddDate(0, 0, w.config.WarningDays)

	vehicles, err := w.vehicleRepo.ListExpiringBy(ctx, deadline)
	if err != nil {
		w.log.Error(fmt.Sprintf("WOF scan failed to list vehicles: %v", err))
		return
	}

	alertCount := 0
	for i := range vehicles {
		veh := &vehicles[i]
		alert, ok := planner.VehicleAlert(veh, now, w.config.WarningDays)
		if !ok {
			continue
		}
		if err := w.alertPublisher.PublishWOFAlert(ctx, veh.TenantID, veh.ID, alert); err != nil {
			w.log.Warn(fmt.Sprintf("Failed to publish WOF alert for vehicle %s: %v", veh.ID, err))
			continue
		}
		alertCount++
	}

	w.mu.Lock()
	w.totalScans++
	w.totalAlertsRaised += int64(alertCount)
	w.lastScanTime = now
	w.lastAlertCount = alertCount
	w.mu.Unlock()

	metrics.RecordWOFScan(ctx, alertCount)

	if alertCount > 0 {
		w.log.Info(fmt.Sprintf("WOF scan raised %d alert(s) across %d vehicle(s)", alertCount, len(vehicles)))
	}
}

// GetStats returns worker statistics
func (w *WOFAlertWorker) GetStats() *WOFAlertWorkerStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	return &WOFAlertWorkerStats{
		IsRunning:         w.running,
		TotalScans:        w.totalScans,
		TotalAlertsRaised: w.totalAlertsRaised,
		LastScanTime:      w.lastScanTime,
		LastAlertCount:    w.lastAlertCount,
	}
}

// WOFAlertWorkerStats contains worker statistics
type WOFAlertWorkerStats struct {
	IsRunning         bool      `json:"is_running"`
	TotalScans        int64     `json:"total_scans"`
	TotalAlertsRaised int64     `json:"total_alerts_raised"`
	LastScanTime      time.Time `json:"last_scan_time"`
	LastAlertCount    int       `json:"last_alert_count"`
}
