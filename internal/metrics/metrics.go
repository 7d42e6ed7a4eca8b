package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Josh-Wiegman/cue-rms/pkg/telemetry"
)

var (
	// Planner counters
	WeeksComputed  *telemetry.Counter
	ConflictsFound *telemetry.Counter
	AlertsFound    *telemetry.Counter

	// Hire counters
	HireReservations *telemetry.Counter
	HireReleases     *telemetry.Counter
	HireRejections   *telemetry.Counter

	// Worker counters
	WOFScans        *telemetry.Counter
	WOFAlertsRaised *telemetry.Counter

	// Histograms
	DetectorDuration *telemetry.Histogram
	RequestDuration  *telemetry.Histogram

	// Gauges
	ActiveHireOrders *telemetry.UpDownCounter

	initOnce sync.Once
	initErr  error
)

// Init initializes all planner metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	WeeksComputed, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "planner_weeks_computed_total",
		Description: "Total number of planner week computations",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	ConflictsFound, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "planner_crew_conflicts_total",
		Description: "Total number of crew double-booking warnings surfaced",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	AlertsFound, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "planner_vehicle_alerts_total",
		Description: "Total number of vehicle WOF alerts surfaced",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	HireReservations, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "hire_reservations_total",
		Description: "Total number of hire stock reservations",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	HireReleases, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "hire_releases_total",
		Description: "Total number of hire stock releases",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	HireRejections, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "hire_rejections_total",
		Description: "Total number of reservations rejected for insufficient stock",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	WOFScans, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "wof_scans_total",
		Description: "Total number of fleet WOF expiry scans",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	WOFAlertsRaised, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "wof_alerts_raised_total",
		Description: "Total number of WOF expiry alerts published",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	DetectorDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "planner_detector_duration_seconds",
		Description: "Duration of one conflict detection pass",
		Unit:        "s",
	}, []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1})
	if err != nil {
		return err
	}

	RequestDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "planner_request_duration_seconds",
		Description: "HTTP request duration in seconds",
		Unit:        "s",
	}, []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10})
	if err != nil {
		return err
	}

	ActiveHireOrders, err = telemetry.NewUpDownCounter(telemetry.MetricOpts{
		Name:        "hire_active_orders",
		Description: "Current number of active hire orders",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	return nil
}

// RecordWeekComputed records one planner week computation
func RecordWeekComputed(ctx context.Context, tenantID string, conflicts, alerts int, durationSeconds float64) {
	if WeeksComputed != nil {
		WeeksComputed.Inc(ctx, attribute.String("tenant_id", tenantID))
	}
	if ConflictsFound != nil && conflicts > 0 {
		ConflictsFound.Add(ctx, int64(conflicts), attribute.String("tenant_id", tenantID))
	}
	if AlertsFound != nil && alerts > 0 {
		AlertsFound.Add(ctx, int64(alerts), attribute.String("tenant_id", tenantID))
	}
	if DetectorDuration != nil {
		DetectorDuration.Record(ctx, durationSeconds)
	}
}

// RecordHireReservation records a successful stock reservation
func RecordHireReservation(ctx context.Context, itemID string, quantity int) {
	if HireReservations != nil {
		HireReservations.Inc(ctx,
			attribute.String("item_id", itemID),
			attribute.Int("quantity", quantity),
		)
	}
	if ActiveHireOrders != nil {
		ActiveHireOrders.Inc(ctx)
	}
}

// RecordHireRelease records a verified return releasing stock
func RecordHireRelease(ctx context.Context, itemID string, quantity int) {
	if HireReleases != nil {
		HireReleases.Inc(ctx,
			attribute.String("item_id", itemID),
			attribute.Int("quantity", quantity),
		)
	}
	if ActiveHireOrders != nil {
		ActiveHireOrders.Dec(ctx)
	}
}

// RecordHireRejection records a reservation refused for lack of stock
func RecordHireRejection(ctx context.Context, itemID, reason string) {
	if HireRejections != nil {
		HireRejections.Inc(ctx,
			attribute.String("item_id", itemID),
			attribute.String("reason", reason),
		)
	}
}

// RecordWOFScan records one fleet scan and the alerts it raised
func RecordWOFScan(ctx context.Context, alertCount int) {
	if WOFScans != nil {
		WOFScans.Inc(ctx)
	}
	if WOFAlertsRaised != nil && alertCount > 0 {
		WOFAlertsRaised.Add(ctx, int64(alertCount))
	}
}

// RecordRequestDuration records HTTP request duration
func RecordRequestDuration(ctx context.Context, operation string, durationSeconds float64) {
	if RequestDuration != nil {
		RequestDuration.Record(ctx, durationSeconds,
			attribute.String("operation", operation),
		)
	}
}
