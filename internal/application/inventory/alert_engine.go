package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/erp/ledger/internal/application/ledger"
	"github.com/erp/ledger/internal/domain/audit"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Alert engine defaults
const (
	DefaultScanLeaseTTL     = 30 * time.Second
	DefaultScanTimeout      = 30 * time.Second
	DefaultScanMaxAttempts  = 5
	DefaultRetryDrainBatch  = 50
	scanLeaseKeyPrefix      = "alert-scan:"
	alertChangeCreatedLabel = "created"
)

// ScanLease grants one holder at a time the right to scan an organization.
// Acquire returns ok=false while another holder owns the key.
type ScanLease interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}

// ScanRetryQueue keeps failed scans for a later attempt. Pop returns a nil
// payload when the queue is empty.
type ScanRetryQueue interface {
	Push(ctx context.Context, payload []byte) error
	Pop(ctx context.Context) ([]byte, error)
	DeadLetter(ctx context.Context, payload []byte) error
}

type scanRetry struct {
	TenantID  uuid.UUID `json:"tenant_id"`
	Attempts  int       `json:"attempts"`
	LastError string    `json:"last_error"`
	FailedAt  time.Time `json:"failed_at"`
}

// AlertEngineConfig holds the AlertEngine dependencies
type AlertEngineConfig struct {
	Executor    *ledger.Executor
	Lease       ScanLease
	Retries     ScanRetryQueue
	Metrics     *telemetry.LedgerMetrics
	Logger      *zap.Logger
	LeaseTTL    time.Duration
	ScanTimeout time.Duration
	MaxAttempts int
	Clock       func() time.Time
}

// AlertEngine derives stock alerts from the ledger. Scans of one
// organization never overlap; a scan requested while another runs is a no-op.
type AlertEngine struct {
	exec        *ledger.Executor
	lease       ScanLease
	retries     ScanRetryQueue
	metrics     *telemetry.LedgerMetrics
	logger      *zap.Logger
	leaseTTL    time.Duration
	scanTimeout time.Duration
	maxAttempts int
	clock       func() time.Time

	wg sync.WaitGroup
}

// NewAlertEngine creates an AlertEngine
func NewAlertEngine(cfg AlertEngineConfig) (*AlertEngine, error) {
	if cfg.Executor == nil {
		return nil, errors.New("alert engine: executor is required")
	}
	if cfg.Lease == nil {
		return nil, errors.New("alert engine: scan lease is required")
	}
	e := &AlertEngine{
		exec:        cfg.Executor,
		lease:       cfg.Lease,
		retries:     cfg.Retries,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
		leaseTTL:    cfg.LeaseTTL,
		scanTimeout: cfg.ScanTimeout,
		maxAttempts: cfg.MaxAttempts,
		clock:       cfg.Clock,
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.leaseTTL <= 0 {
		e.leaseTTL = DefaultScanLeaseTTL
	}
	if e.scanTimeout <= 0 {
		e.scanTimeout = DefaultScanTimeout
	}
	if e.maxAttempts <= 0 {
		e.maxAttempts = DefaultScanMaxAttempts
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	return e, nil
}

type alertChange struct {
	alertType string
	change    string
}

// Scan reconciles every alert of the organization against current stock
func (e *AlertEngine) Scan(ctx context.Context, tenantID uuid.UUID) (*ScanResult, error) {
	start := time.Now()
	key := scanLeaseKeyPrefix + tenantID.String()

	token, ok, err := e.lease.Acquire(ctx, key, e.leaseTTL)
	if err != nil {
		e.recordScan(ctx, tenantID, telemetry.ScanFailed, time.Since(start))
		return nil, fmt.Errorf("acquire scan lease: %w", err)
	}
	if !ok {
		e.recordScan(ctx, tenantID, telemetry.ScanSkipped, 0)
		return &ScanResult{TenantID: tenantID, Skipped: true}, nil
	}
	defer func() {
		if err := e.lease.Release(context.WithoutCancel(ctx), key, token); err != nil {
			e.logger.Warn("Failed to release alert scan lease",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
		}
	}()

	result := &ScanResult{TenantID: tenantID}
	var changes []alertChange
	err = e.exec.Run(ctx, tenantID, "alert.scan", func(ctx context.Context, repos ledger.Repositories) error {
		changes = changes[:0]
		*result = ScanResult{TenantID: tenantID}
		return e.reconcile(ctx, repos, tenantID, result, &changes)
	})
	if err != nil {
		e.recordScan(ctx, tenantID, telemetry.ScanFailed, time.Since(start))
		return nil, err
	}

	e.recordScan(ctx, tenantID, telemetry.ScanCompleted, time.Since(start))
	if e.metrics != nil {
		for _, c := range changes {
			e.metrics.RecordAlertChange(ctx, tenantID, c.alertType, c.change)
		}
	}
	if len(changes) > 0 {
		e.logger.Info("Stock alerts reconciled",
			zap.String("tenant_id", tenantID.String()),
			zap.Int("created", result.Created),
			zap.Int("updated", result.Updated),
			zap.Int("resolved", result.Resolved),
		)
	}
	return result, nil
}

type productLocation struct {
	productID  uuid.UUID
	locationID uuid.UUID
}

func (e *AlertEngine) reconcile(ctx context.Context, repos ledger.Repositories, tenantID uuid.UUID, result *ScanResult, changes *[]alertChange) error {
	now := e.clock()

	products, err := repos.Products().FindActive(ctx, tenantID)
	if err != nil {
		return err
	}
	batches, err := repos.Batches().FindByTenant(ctx, tenantID)
	if err != nil {
		return err
	}
	open, err := repos.Alerts().FindOpen(ctx, tenantID)
	if err != nil {
		return err
	}

	rows := make(map[productLocation][]inventory.StockBatch)
	locations := make(map[uuid.UUID][]uuid.UUID)
	track := func(k productLocation) {
		if _, seen := rows[k]; !seen {
			rows[k] = nil
			locations[k.productID] = append(locations[k.productID], k.locationID)
		}
	}
	for _, b := range batches {
		k := productLocation{b.ProductID, b.LocationID}
		track(k)
		rows[k] = append(rows[k], b)
	}

	openLevel := make(map[productLocation]*inventory.StockAlert)
	openExpiry := make(map[productLocation]*inventory.StockAlert)
	for i := range open {
		a := &open[i]
		k := productLocation{a.ProductID, a.LocationID}
		track(k)
		if a.AlertType.IsStockLevel() {
			openLevel[k] = a
		} else {
			openExpiry[k] = a
		}
	}

	for i := range products {
		p := &products[i]
		for _, locationID := range locations[p.ID] {
			k := productLocation{p.ID, locationID}
			subject := inventory.AlertSubject{TenantID: tenantID, ProductID: p.ID, LocationID: locationID}

			alert, change := inventory.ReconcileStockLevel(openLevel[k], subject, inventory.TotalQuantity(rows[k]), p.ReorderPoint, now)
			if err := e.apply(ctx, repos, alert, change, result, changes); err != nil {
				return err
			}

			var earliest *time.Time
			expiring := inventory.TotalQuantity(nil)
			if p.TrackExpiration {
				earliest, expiring = inventory.EarliestExpiring(rows[k], p.ExpiryAlertDays, now)
			}
			alert, change = inventory.ReconcileExpiry(openExpiry[k], subject, earliest, expiring, p.ExpiryAlertDays, now)
			if err := e.apply(ctx, repos, alert, change, result, changes); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *AlertEngine) apply(ctx context.Context, repos ledger.Repositories, alert *inventory.StockAlert, change inventory.AlertChange, result *ScanResult, changes *[]alertChange) error {
	if change == inventory.AlertUnchanged || alert == nil {
		return nil
	}
	if err := repos.Alerts().Save(ctx, alert); err != nil {
		return err
	}
	label := ""
	switch change {
	case inventory.AlertCreated:
		result.Created++
		label = alertChangeCreatedLabel
	case inventory.AlertUpdated:
		result.Updated++
		label = "updated"
	case inventory.AlertResolved:
		result.Resolved++
		label = "resolved"
	}
	*changes = append(*changes, alertChange{alertType: string(alert.AlertType), change: label})
	return nil
}

// Trigger runs a scan in the background. Failures are logged, counted and
// queued for retry; they never reach the caller.
func (e *AlertEngine) Trigger(ctx context.Context, tenantID uuid.UUID) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.scanTimeout)
		defer cancel()
		if _, err := e.Scan(ctx, tenantID); err != nil {
			e.handleFailure(ctx, scanRetry{TenantID: tenantID}, err)
		}
	}()
}

// Wait blocks until background scans started by Trigger have finished
func (e *AlertEngine) Wait() {
	e.wg.Wait()
}

// SweepAll scans every organization with active products. It is the
// scheduler's periodic safety net for missed triggers.
func (e *AlertEngine) SweepAll(ctx context.Context) (int, error) {
	tenantIDs, err := e.GetActiveTenantIDs(ctx)
	if err != nil {
		return 0, err
	}
	scanned := 0
	for _, tenantID := range tenantIDs {
		if ctx.Err() != nil {
			return scanned, ctx.Err()
		}
		scanCtx, cancel := context.WithTimeout(ctx, e.scanTimeout)
		_, err := e.Scan(scanCtx, tenantID)
		cancel()
		if err != nil {
			e.handleFailure(ctx, scanRetry{TenantID: tenantID}, err)
			continue
		}
		scanned++
	}
	return scanned, nil
}

// DrainRetries replays up to limit queued scans and returns how many were
// taken off the queue. Scans failing again are queued after the drain so one
// call never replays the same entry twice.
func (e *AlertEngine) DrainRetries(ctx context.Context, limit int) (int, error) {
	if e.retries == nil {
		return 0, nil
	}
	if limit <= 0 {
		limit = DefaultRetryDrainBatch
	}
	type failure struct {
		retry scanRetry
		err   error
	}
	var failed []failure
	defer func() {
		for _, f := range failed {
			e.handleFailure(ctx, f.retry, f.err)
		}
	}()

	drained := 0
	for drained < limit {
		payload, err := e.retries.Pop(ctx)
		if err != nil {
			return drained, fmt.Errorf("pop scan retry: %w", err)
		}
		if payload == nil {
			break
		}
		drained++

		var retry scanRetry
		if err := json.Unmarshal(payload, &retry); err != nil || retry.TenantID == uuid.Nil {
			e.logger.Warn("Discarding malformed scan retry", zap.ByteString("payload", payload))
			if dlqErr := e.retries.DeadLetter(ctx, payload); dlqErr != nil {
				e.logger.Error("Failed to dead-letter scan retry", zap.Error(dlqErr))
			}
			continue
		}

		scanCtx, cancel := context.WithTimeout(ctx, e.scanTimeout)
		_, err = e.Scan(scanCtx, retry.TenantID)
		cancel()
		if err != nil {
			failed = append(failed, failure{retry, err})
			continue
		}
		if e.metrics != nil {
			e.metrics.RecordScanRetry(ctx, retry.TenantID, telemetry.RetryReplayed)
		}
	}
	return drained, nil
}

func (e *AlertEngine) handleFailure(ctx context.Context, retry scanRetry, cause error) {
	retry.Attempts++
	retry.LastError = cause.Error()
	retry.FailedAt = e.clock()

	e.logger.Error("Alert scan failed",
		zap.String("tenant_id", retry.TenantID.String()),
		zap.Int("attempts", retry.Attempts),
		zap.Error(cause),
	)
	if e.retries == nil {
		return
	}

	payload, err := json.Marshal(retry)
	if err != nil {
		e.logger.Error("Failed to encode scan retry", zap.Error(err))
		return
	}
	ctx = context.WithoutCancel(ctx)
	outcome := telemetry.RetryQueued
	if retry.Attempts >= e.maxAttempts {
		outcome = telemetry.RetryDeadLettered
		err = e.retries.DeadLetter(ctx, payload)
	} else {
		err = e.retries.Push(ctx, payload)
	}
	if err != nil {
		e.logger.Error("Failed to queue scan retry",
			zap.String("tenant_id", retry.TenantID.String()),
			zap.String("outcome", outcome),
			zap.Error(err),
		)
		return
	}
	if e.metrics != nil {
		e.metrics.RecordScanRetry(ctx, retry.TenantID, outcome)
	}
}

func (e *AlertEngine) recordScan(ctx context.Context, tenantID uuid.UUID, outcome string, d time.Duration) {
	if e.metrics != nil {
		e.metrics.RecordAlertScan(ctx, tenantID, outcome, d)
	}
}

// GetActiveTenantIDs lists organizations with active products
func (e *AlertEngine) GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := e.exec.Query(ctx, func(ctx context.Context, repos ledger.Repositories) error {
		var err error
		ids, err = repos.Products().FindTenantIDs(ctx)
		return err
	})
	return ids, err
}

// Snooze defers an open alert. The next scan after until wakes it again.
func (e *AlertEngine) Snooze(ctx context.Context, tenantID, userID, alertID uuid.UUID, req SnoozeAlertRequest) (*AlertResponse, error) {
	var resp AlertResponse
	err := e.exec.Run(ctx, tenantID, "alert.snooze", func(ctx context.Context, repos ledger.Repositories) error {
		alert, err := repos.Alerts().FindByID(ctx, tenantID, alertID)
		if err != nil {
			return err
		}
		before := string(alert.Status)
		if err := alert.Snooze(req.Until, e.clock()); err != nil {
			return err
		}
		if err := repos.Alerts().Save(ctx, alert); err != nil {
			return err
		}
		resp = ToAlertResponse(alert)
		return audit.Log(ctx, repos.Audit(), tenantID, userID, audit.Entry{
			Action:     audit.ActionAlertSnoozed,
			EntityType: "StockAlert",
			EntityID:   alert.ID,
			EntityName: string(alert.AlertType),
			Before:     map[string]string{"status": before},
			After:      map[string]any{"status": alert.Status, "snoozed_until": alert.SnoozedUntil},
		})
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// List returns alerts matching the filter
func (e *AlertEngine) List(ctx context.Context, tenantID uuid.UUID, filter AlertListFilter) ([]AlertResponse, int64, error) {
	f := inventory.AlertFilter{
		Filter:     shared.DefaultFilter(),
		Status:     inventory.AlertStatus(strings.ToUpper(filter.Status)),
		AlertType:  inventory.AlertType(strings.ToUpper(filter.AlertType)),
		ProductID:  filter.ProductID,
		LocationID: filter.LocationID,
	}
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}
	if f.Status != "" && !f.Status.IsValid() {
		return nil, 0, shared.Errorf(shared.CodeInvalidInput, "Unknown alert status %q", filter.Status)
	}
	if f.AlertType != "" && !f.AlertType.IsValid() {
		return nil, 0, shared.Errorf(shared.CodeInvalidInput, "Unknown alert type %q", filter.AlertType)
	}

	var (
		alerts []inventory.StockAlert
		total  int64
	)
	err := e.exec.Query(ctx, func(ctx context.Context, repos ledger.Repositories) error {
		var err error
		alerts, total, err = repos.Alerts().List(ctx, tenantID, f)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	out := make([]AlertResponse, 0, len(alerts))
	for i := range alerts {
		out = append(out, ToAlertResponse(&alerts[i]))
	}
	return out, total, nil
}
