package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

type passthroughScope struct {
	committed int
}

func (s *passthroughScope) Execute(ctx context.Context, fn func(repos Repositories) error) error {
	if err := fn(nil); err != nil {
		return err
	}
	s.committed++
	return nil
}

func (s *passthroughScope) Query(ctx context.Context, fn func(repos Repositories) error) error {
	return fn(nil)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func TestExecutor_Run_Commits(t *testing.T) {
	scope := &passthroughScope{}
	exec := NewExecutor(Config{Scope: scope})

	called := false
	err := exec.Run(context.Background(), uuid.New(), "sale.process", func(ctx context.Context, repos Repositories) error {
		called = true
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return nil
	})

	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, 1, scope.committed)
	assert.Equal(t, DefaultTransactionTimeout, exec.Timeout())
}

func TestExecutor_Run_TimeoutBecomesTransactionTimeout(t *testing.T) {
	exec := NewExecutor(Config{Scope: &passthroughScope{}, Timeout: 20 * time.Millisecond})

	err := exec.Run(context.Background(), uuid.New(), "receiving.receive", func(ctx context.Context, repos Repositories) error {
		<-ctx.Done()
		return ctx.Err()
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrTransactionTimeout)
	assert.Contains(t, err.Error(), "receiving.receive")
}

func TestExecutor_Run_PropagatesDomainErrors(t *testing.T) {
	scope := &passthroughScope{}
	exec := NewExecutor(Config{Scope: scope})

	err := exec.Run(context.Background(), uuid.New(), "sale.process", func(ctx context.Context, repos Repositories) error {
		return shared.InsufficientStock("Widget", inventoryQty("3"))
	})

	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.Equal(t, 0, scope.committed)
}

func TestExecutor_Run_RecordsMetrics(t *testing.T) {
	metrics, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
		Meter: noop.NewMeterProvider().Meter("test"),
	})
	require.NoError(t, err)
	exec := NewExecutor(Config{Scope: &passthroughScope{}, Metrics: metrics})

	err = exec.Run(context.Background(), uuid.New(), "transfer.ship", func(ctx context.Context, repos Repositories) error {
		return shared.ErrConcurrentModification
	})
	assert.ErrorIs(t, err, shared.ErrConcurrentModification)
}

func TestExecutor_Publish_SurvivesCancelledContext(t *testing.T) {
	pub := &mockPublisher{}
	exec := NewExecutor(Config{Scope: &passthroughScope{}, Publisher: pub})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	event := inventory.NewStockChangedEvent(uuid.New(), uuid.New(), "sale", []uuid.UUID{uuid.New()}, []uuid.UUID{uuid.New()})
	pub.On("Publish", mock.MatchedBy(func(c context.Context) bool { return c.Err() == nil }), mock.Anything).
		Return(nil).Once()

	exec.Publish(ctx, event)
	pub.AssertExpectations(t)
}

func TestExecutor_Publish_IgnoresPublisherErrors(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything).Return(errors.New("bus closed"))
	exec := NewExecutor(Config{Scope: &passthroughScope{}, Publisher: pub})

	assert.NotPanics(t, func() {
		exec.Publish(context.Background(), inventory.NewStockChangedEvent(uuid.New(), uuid.New(), "sale", nil, nil))
	})
	exec.Publish(context.Background())
	pub.AssertNumberOfCalls(t, "Publish", 1)
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"success", nil, telemetry.OutcomeSuccess},
		{"stock race", shared.ErrConcurrentModification, telemetry.OutcomeConflict},
		{"version race", shared.ErrConcurrencyConflict, telemetry.OutcomeConflict},
		{"timeout", shared.ErrTransactionTimeout, telemetry.OutcomeTimeout},
		{"business rule", shared.ErrOverReturn, telemetry.OutcomeRejected},
		{"infrastructure", errors.New("connection reset"), telemetry.OutcomeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Outcome(tt.err))
		})
	}
}

type inventoryQty string

func (q inventoryQty) String() string { return string(q) }
