package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Outcome labels for ledger operations.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeConflict = "conflict"
	OutcomeTimeout  = "timeout"
	OutcomeError    = "error"
)

// Outcome labels for alert scans.
const (
	ScanCompleted = "completed"
	ScanSkipped   = "skipped"
	ScanFailed    = "failed"
)

// Outcome labels for scan retries.
const (
	RetryQueued       = "queued"
	RetryReplayed     = "replayed"
	RetryDeadLettered = "dead_lettered"
)

// LedgerMetrics tracks ledger transactions and alert evaluation.
type LedgerMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	operationsTotal     *Counter
	operationDuration   *Histogram
	stockConflictsTotal *Counter
	alertScansTotal     *Counter
	alertScanDuration   *Histogram
	alertChangesTotal   *Counter
	scanRetriesTotal    *Counter

	openAlerts *Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	alertProvider AlertMetricsProvider
}

// AlertMetricsProvider reports open alert counts for periodic collection.
type AlertMetricsProvider interface {
	// CountOpenAlerts returns open alerts per alert type for a tenant
	CountOpenAlerts(ctx context.Context, tenantID uuid.UUID) (map[string]int64, error)
}

// TenantProvider provides tenant IDs for periodic metrics collection.
type TenantProvider interface {
	GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// LedgerMetricsConfig holds configuration for ledger metrics.
type LedgerMetricsConfig struct {
	Meter         metric.Meter
	Logger        *zap.Logger
	AlertProvider AlertMetricsProvider
}

// NewLedgerMetrics creates a new LedgerMetrics instance.
func NewLedgerMetrics(cfg LedgerMetricsConfig) (*LedgerMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	lm := &LedgerMetrics{
		meter:         cfg.Meter,
		logger:        logger,
		stopChan:      make(chan struct{}),
		alertProvider: cfg.AlertProvider,
	}

	var err error

	lm.operationsTotal, err = NewCounter(cfg.Meter,
		"ledger_operations_total",
		"Total number of ledger transactions by operation and outcome",
		"{operation}",
	)
	if err != nil {
		return nil, err
	}

	lm.operationDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "ledger_operation_duration_seconds",
		Description: "Duration of ledger transactions",
		Unit:        "s",
		Buckets:     DBDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	lm.stockConflictsTotal, err = NewCounter(cfg.Meter,
		"ledger_stock_conflicts_total",
		"Total number of stock decrements lost to a concurrent writer",
		"{conflict}",
	)
	if err != nil {
		return nil, err
	}

	lm.alertScansTotal, err = NewCounter(cfg.Meter,
		"alert_scans_total",
		"Total number of alert scans by outcome",
		"{scan}",
	)
	if err != nil {
		return nil, err
	}

	lm.alertScanDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "alert_scan_duration_seconds",
		Description: "Duration of alert scans",
		Unit:        "s",
		Buckets:     HTTPDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	lm.alertChangesTotal, err = NewCounter(cfg.Meter,
		"alert_changes_total",
		"Total number of alert lifecycle changes",
		"{alert}",
	)
	if err != nil {
		return nil, err
	}

	lm.scanRetriesTotal, err = NewCounter(cfg.Meter,
		"alert_scan_retries_total",
		"Total number of failed alert scans handed to the retry queue",
		"{retry}",
	)
	if err != nil {
		return nil, err
	}

	lm.openAlerts, err = NewGauge(cfg.Meter,
		"alert_open_count",
		"Number of open stock alerts",
		"{alert}",
	)
	if err != nil {
		return nil, err
	}

	return lm, nil
}

// RecordOperation records one ledger transaction.
func (lm *LedgerMetrics) RecordOperation(ctx context.Context, tenantID uuid.UUID, operation, outcome string, d time.Duration) {
	lm.operationsTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrOperation.String(operation),
		AttrOutcome.String(outcome),
	)
	lm.operationDuration.RecordDuration(ctx, d,
		AttrOperation.String(operation),
		AttrOutcome.String(outcome),
	)
}

// RecordStockConflict records a conditional decrement that matched no row.
func (lm *LedgerMetrics) RecordStockConflict(ctx context.Context, tenantID uuid.UUID, operation string) {
	lm.stockConflictsTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrOperation.String(operation),
	)
}

// RecordAlertScan records a scan run.
func (lm *LedgerMetrics) RecordAlertScan(ctx context.Context, tenantID uuid.UUID, outcome string, d time.Duration) {
	lm.alertScansTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrOutcome.String(outcome),
	)
	if outcome != ScanSkipped {
		lm.alertScanDuration.RecordDuration(ctx, d, AttrOutcome.String(outcome))
	}
}

// RecordAlertChange records one alert being created, updated or resolved.
func (lm *LedgerMetrics) RecordAlertChange(ctx context.Context, tenantID uuid.UUID, alertType, change string) {
	lm.alertChangesTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrAlertType.String(alertType),
		AttrAlertChange.String(change),
	)
}

// RecordScanRetry records a retry queue transition for a failed scan.
func (lm *LedgerMetrics) RecordScanRetry(ctx context.Context, tenantID uuid.UUID, outcome string) {
	lm.scanRetriesTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrOutcome.String(outcome),
	)
}

// RecordOpenAlerts records the open alert gauge for one alert type.
func (lm *LedgerMetrics) RecordOpenAlerts(ctx context.Context, tenantID uuid.UUID, alertType string, count int64) {
	lm.openAlerts.Record(ctx, count,
		AttrTenantID.String(tenantID.String()),
		AttrAlertType.String(alertType),
	)
}

// StartPeriodicCollection starts periodic collection of the open alert gauge.
// Non-blocking; use Stop() to end it.
func (lm *LedgerMetrics) StartPeriodicCollection(ctx context.Context, tenantProvider TenantProvider, interval time.Duration) {
	lm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go lm.runPeriodicCollection(ctx, tenantProvider, interval)
	})
}

func (lm *LedgerMetrics) runPeriodicCollection(ctx context.Context, tenantProvider TenantProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lm.collectAlertMetrics(ctx, tenantProvider)

	for {
		select {
		case <-lm.stopChan:
			lm.logger.Info("Stopping periodic ledger metrics collection")
			return
		case <-ctx.Done():
			lm.logger.Info("Context cancelled, stopping periodic ledger metrics collection")
			return
		case <-ticker.C:
			lm.collectAlertMetrics(ctx, tenantProvider)
		}
	}
}

func (lm *LedgerMetrics) collectAlertMetrics(ctx context.Context, tenantProvider TenantProvider) {
	if lm.alertProvider == nil {
		lm.logger.Debug("No alert provider configured, skipping alert metrics collection")
		return
	}

	tenantIDs, err := tenantProvider.GetActiveTenantIDs(ctx)
	if err != nil {
		lm.logger.Error("Failed to get tenant IDs for metrics collection", zap.Error(err))
		return
	}

	for _, tenantID := range tenantIDs {
		counts, err := lm.alertProvider.CountOpenAlerts(ctx, tenantID)
		if err != nil {
			lm.logger.Warn("Failed to count open alerts for tenant",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
			continue
		}
		for alertType, count := range counts {
			lm.RecordOpenAlerts(ctx, tenantID, alertType, count)
		}
	}
}

// Stop stops the periodic collection.
func (lm *LedgerMetrics) Stop() {
	lm.stopOnce.Do(func() {
		close(lm.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewLedgerMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
