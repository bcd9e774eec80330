// Package ledger runs inventory and money mutations as single units of work.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTransactionTimeout bounds a unit of work when none is configured
const DefaultTransactionTimeout = 15 * time.Second

// Config holds the Executor dependencies. Only Scope is required.
type Config struct {
	Scope     TransactionScope
	Timeout   time.Duration
	Publisher shared.EventPublisher
	Metrics   *telemetry.LedgerMetrics
	Logger    *zap.Logger
}

// Executor wraps every ledger operation: a bounded context, one transaction,
// a tracing span, metrics and post-commit event publication.
type Executor struct {
	scope     TransactionScope
	timeout   time.Duration
	publisher shared.EventPublisher
	metrics   *telemetry.LedgerMetrics
	logger    *zap.Logger
}

// NewExecutor creates an Executor
func NewExecutor(cfg Config) *Executor {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTransactionTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		scope:     cfg.Scope,
		timeout:   timeout,
		publisher: cfg.Publisher,
		metrics:   cfg.Metrics,
		logger:    logger,
	}
}

// Timeout returns the configured unit-of-work deadline
func (e *Executor) Timeout() time.Duration {
	return e.timeout
}

// Run executes fn in one transaction. A deadline hit inside fn is reported as
// TRANSACTION_TIMEOUT and the transaction is rolled back.
func (e *Executor) Run(ctx context.Context, tenantID uuid.UUID, operation string, fn func(ctx context.Context, repos Repositories) error) error {
	ctx, span := telemetry.StartSpan(ctx, operation,
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID),
		telemetry.WithAttribute(telemetry.SpanAttrOperation, operation),
	)
	defer span.End()

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	err := e.scope.Execute(runCtx, func(repos Repositories) error {
		return fn(runCtx, repos)
	})
	if err != nil && isDeadline(runCtx, err) {
		err = shared.Errorf(shared.CodeTransactionTimeout, "%s did not complete within %s", operation, e.timeout)
	}

	outcome := Outcome(err)
	telemetry.SetAttribute(span, telemetry.SpanAttrOutcome, outcome)
	if err != nil {
		telemetry.RecordError(span, err)
	} else {
		telemetry.SetOK(span)
	}
	e.record(ctx, tenantID, operation, outcome, time.Since(start), err)
	return err
}

// Query runs fn outside a transaction with the same deadline
func (e *Executor) Query(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	err := e.scope.Query(ctx, func(repos Repositories) error {
		return fn(ctx, repos)
	})
	if err != nil && isDeadline(ctx, err) {
		return shared.Errorf(shared.CodeTransactionTimeout, "query did not complete within %s", e.timeout)
	}
	return err
}

// Publish hands events to the bus after commit. It detaches from the request
// context so a client disconnect does not drop them.
func (e *Executor) Publish(ctx context.Context, events ...shared.DomainEvent) {
	if e.publisher == nil || len(events) == 0 {
		return
	}
	if err := e.publisher.Publish(context.WithoutCancel(ctx), events...); err != nil {
		e.logger.Warn("Failed to publish ledger events",
			zap.Int("count", len(events)),
			zap.Error(err),
		)
	}
}

func (e *Executor) record(ctx context.Context, tenantID uuid.UUID, operation, outcome string, d time.Duration, err error) {
	switch outcome {
	case telemetry.OutcomeError:
		e.logger.Error("Ledger operation failed",
			zap.String("operation", operation),
			zap.String("tenant_id", tenantID.String()),
			zap.Duration("duration", d),
			zap.Error(err),
		)
	case telemetry.OutcomeTimeout, telemetry.OutcomeConflict:
		e.logger.Warn("Ledger operation aborted",
			zap.String("operation", operation),
			zap.String("tenant_id", tenantID.String()),
			zap.String("outcome", outcome),
			zap.Duration("duration", d),
			zap.Error(err),
		)
	}

	if e.metrics == nil {
		return
	}
	e.metrics.RecordOperation(ctx, tenantID, operation, outcome, d)
	if errors.Is(err, shared.ErrConcurrentModification) {
		e.metrics.RecordStockConflict(ctx, tenantID, operation)
	}
}

// Outcome classifies an operation result for metrics and logs
func Outcome(err error) string {
	if err == nil {
		return telemetry.OutcomeSuccess
	}
	var de *shared.DomainError
	if !errors.As(err, &de) {
		return telemetry.OutcomeError
	}
	switch de.Code {
	case shared.CodeConcurrentModification, shared.CodeConcurrencyConflict:
		return telemetry.OutcomeConflict
	case shared.CodeTransactionTimeout:
		return telemetry.OutcomeTimeout
	default:
		return telemetry.OutcomeRejected
	}
}

func isDeadline(ctx context.Context, err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)
}
