package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubLease struct {
	mu   sync.Mutex
	held map[string]string
	err  error
}

func newStubLease() *stubLease {
	return &stubLease{held: make(map[string]string)}
}

func (l *stubLease) Acquire(_ context.Context, key string, _ time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return "", false, l.err
	}
	if _, busy := l.held[key]; busy {
		return "", false, nil
	}
	token := uuid.NewString()
	l.held[key] = token
	return token, true, nil
}

func (l *stubLease) Release(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
	}
	return nil
}

func (l *stubLease) failWith(err error) {
	l.mu.Lock()
	l.err = err
	l.mu.Unlock()
}

type stubQueue struct {
	mu    sync.Mutex
	items [][]byte
	dead  [][]byte
}

func (q *stubQueue) Push(_ context.Context, payload []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, payload)
	return nil
}

func (q *stubQueue) Pop(_ context.Context) ([]byte, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, nil
	}
	p := q.items[0]
	q.items = q.items[1:]
	return p, nil
}

func (q *stubQueue) DeadLetter(_ context.Context, payload []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.dead = append(q.dead, payload)
	return nil
}

type alertFixture struct {
	*testutil.Ledger
	engine     *AlertEngine
	lease      *stubLease
	queue      *stubQueue
	adjust     *AdjustmentService
	now        time.Time
	tenantID   uuid.UUID
	locationID uuid.UUID
}

func newAlertFixture(t *testing.T, maxAttempts int) *alertFixture {
	l := testutil.NewLedger(t)
	f := &alertFixture{
		Ledger:     l,
		lease:      newStubLease(),
		queue:      &stubQueue{},
		adjust:     NewAdjustmentService(l.Exec, nil),
		now:        time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC),
		tenantID:   uuid.New(),
		locationID: uuid.New(),
	}
	engine, err := NewAlertEngine(AlertEngineConfig{
		Executor:    l.Exec,
		Lease:       f.lease,
		Retries:     f.queue,
		Logger:      zaptest.NewLogger(t),
		MaxAttempts: maxAttempts,
		Clock:       func() time.Time { return f.now },
	})
	require.NoError(t, err)
	f.engine = engine
	return f
}

func (f *alertFixture) move(t *testing.T, productID uuid.UUID, qty int64) {
	t.Helper()
	_, err := f.adjust.Adjust(context.Background(), f.tenantID, uuid.New(), AdjustStockRequest{
		ProductID: productID, LocationID: f.locationID, Quantity: testutil.Qty(qty),
	})
	require.NoError(t, err)
}

func (f *alertFixture) openAlerts(t *testing.T) []AlertResponse {
	t.Helper()
	var open []AlertResponse
	for _, status := range []string{"ACTIVE", "SNOOZED"} {
		alerts, _, err := f.engine.List(context.Background(), f.tenantID, AlertListFilter{Status: status})
		require.NoError(t, err)
		open = append(open, alerts...)
	}
	return open
}

func TestNewAlertEngine_RequiresDependencies(t *testing.T) {
	_, err := NewAlertEngine(AlertEngineConfig{Lease: newStubLease()})
	assert.Error(t, err)
	_, err = NewAlertEngine(AlertEngineConfig{Executor: testutil.NewLedger(t).Exec})
	assert.Error(t, err)
}

func TestAlertEngine_StockLevelLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newAlertFixture(t, 0)
	product := f.SeedProduct(t, f.tenantID, testutil.ProductSpec{SKU: "gloves", ReorderPoint: 5})
	f.SeedStock(t, f.tenantID, product.ID, f.locationID, nil, 6)

	result, err := f.engine.Scan(ctx, f.tenantID)
	require.NoError(t, err)
	assert.Zero(t, result.Created)
	assert.Empty(t, f.openAlerts(t))

	f.move(t, product.ID, -3)
	result, err = f.engine.Scan(ctx, f.tenantID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	open := f.openAlerts(t)
	require.Len(t, open, 1)
	assert.Equal(t, string(inventory.AlertTypeLowStock), open[0].AlertType)
	assert.True(t, open[0].CurrentQuantity.Equal(testutil.Qty(3)))
	assert.True(t, open[0].ThresholdQuantity.Equal(testutil.Qty(5)))

	result, err = f.engine.Scan(ctx, f.tenantID)
	require.NoError(t, err)
	assert.Zero(t, result.Created+result.Updated+result.Resolved, "rescan without movement changes nothing")

	f.move(t, product.ID, -3)
	result, err = f.engine.Scan(ctx, f.tenantID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	open = f.openAlerts(t)
	require.Len(t, open, 1, "severity changes in place")
	assert.Equal(t, string(inventory.AlertTypeOutOfStock), open[0].AlertType)

	f.move(t, product.ID, 8)
	result, err = f.engine.Scan(ctx, f.tenantID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Resolved)
	assert.Empty(t, f.openAlerts(t))

	resolved, total, err := f.engine.List(ctx, f.tenantID, AlertListFilter{Status: "resolved"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.NotNil(t, resolved[0].ResolvedAt)
}

func TestAlertEngine_ExpiringSoon(t *testing.T) {
	ctx := context.Background()
	f := newAlertFixture(t, 0)
	product := f.SeedProduct(t, f.tenantID, testutil.ProductSpec{SKU: "insulin", TrackExpiration: true, ExpiryAlertDays: 30})
	f.SeedStock(t, f.tenantID, product.ID, f.locationID, testutil.Date(2026, 11, 1), 4)
	f.SeedStock(t, f.tenantID, product.ID, f.locationID, testutil.Date(2027, 6, 1), 20)

	result, err := f.engine.Scan(ctx, f.tenantID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)

	alerts, _, err := f.engine.List(ctx, f.tenantID, AlertListFilter{AlertType: "EXPIRING_SOON"})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	require.NotNil(t, alerts[0].ExpirationDate)
	assert.True(t, alerts[0].ExpirationDate.Equal(*testutil.Date(2026, 11, 1)))
	assert.True(t, alerts[0].CurrentQuantity.Equal(testutil.Qty(4)))
}

func TestAlertEngine_SnoozeWakesAfterDeadline(t *testing.T) {
	ctx := context.Background()
	f := newAlertFixture(t, 0)
	product := f.SeedProduct(t, f.tenantID, testutil.ProductSpec{SKU: "masks", ReorderPoint: 10})
	f.SeedStock(t, f.tenantID, product.ID, f.locationID, nil, 4)

	_, err := f.engine.Scan(ctx, f.tenantID)
	require.NoError(t, err)
	open := f.openAlerts(t)
	require.Len(t, open, 1)

	_, err = f.engine.Snooze(ctx, f.tenantID, uuid.New(), open[0].ID, SnoozeAlertRequest{Until: f.now.Add(-time.Minute)})
	assert.Error(t, err)

	snoozed, err := f.engine.Snooze(ctx, f.tenantID, uuid.New(), open[0].ID, SnoozeAlertRequest{Until: f.now.Add(2 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, string(inventory.AlertStatusSnoozed), snoozed.Status)

	f.move(t, product.ID, -1)
	_, err = f.engine.Scan(ctx, f.tenantID)
	require.NoError(t, err)
	alerts, _, err := f.engine.List(ctx, f.tenantID, AlertListFilter{Status: "SNOOZED"})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.True(t, alerts[0].CurrentQuantity.Equal(testutil.Qty(3)))

	f.now = f.now.Add(3 * time.Hour)
	_, err = f.engine.Scan(ctx, f.tenantID)
	require.NoError(t, err)
	alerts, _, err = f.engine.List(ctx, f.tenantID, AlertListFilter{Status: "ACTIVE"})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Nil(t, alerts[0].SnoozedUntil)
}

func TestAlertEngine_SkipsWhileLeaseHeld(t *testing.T) {
	ctx := context.Background()
	f := newAlertFixture(t, 0)
	product := f.SeedProduct(t, f.tenantID, testutil.ProductSpec{SKU: "pads", ReorderPoint: 5})
	f.SeedStock(t, f.tenantID, product.ID, f.locationID, nil, 1)

	token, ok, err := f.lease.Acquire(ctx, scanLeaseKeyPrefix+f.tenantID.String(), time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	result, err := f.engine.Scan(ctx, f.tenantID)
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Empty(t, f.openAlerts(t))

	require.NoError(t, f.lease.Release(ctx, scanLeaseKeyPrefix+f.tenantID.String(), token))
	result, err = f.engine.Scan(ctx, f.tenantID)
	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Equal(t, 1, result.Created)
}

func TestAlertEngine_FailedScansAreRetried(t *testing.T) {
	ctx := context.Background()
	f := newAlertFixture(t, 3)
	product := f.SeedProduct(t, f.tenantID, testutil.ProductSpec{SKU: "syringe", ReorderPoint: 5})
	f.SeedStock(t, f.tenantID, product.ID, f.locationID, nil, 2)

	f.lease.failWith(errors.New("redis unavailable"))
	scanned, err := f.engine.SweepAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, scanned)
	require.Len(t, f.queue.items, 1)

	drained, err := f.engine.DrainRetries(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, drained)
	require.Len(t, f.queue.items, 1, "second failure is queued again")

	f.lease.failWith(nil)
	drained, err = f.engine.DrainRetries(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, drained)
	assert.Empty(t, f.queue.items)
	assert.Empty(t, f.queue.dead)
	assert.Len(t, f.openAlerts(t), 1)
}

func TestAlertEngine_DeadLettersAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	f := newAlertFixture(t, 2)
	f.SeedProduct(t, f.tenantID, testutil.ProductSpec{SKU: "bandage"})

	f.lease.failWith(errors.New("boom"))
	_, err := f.engine.SweepAll(ctx)
	require.NoError(t, err)
	_, err = f.engine.DrainRetries(ctx, 10)
	require.NoError(t, err)

	assert.Empty(t, f.queue.items)
	assert.Len(t, f.queue.dead, 1)

	require.NoError(t, f.queue.Push(ctx, []byte("not json")))
	drained, err := f.engine.DrainRetries(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, drained)
	assert.Len(t, f.queue.dead, 2)
}

func TestAlertScanHandler_TriggersBackgroundScan(t *testing.T) {
	f := newAlertFixture(t, 0)
	product := f.SeedProduct(t, f.tenantID, testutil.ProductSpec{SKU: "thermo", ReorderPoint: 3})
	f.SeedStock(t, f.tenantID, product.ID, f.locationID, nil, 0)

	handler := NewAlertScanHandler(f.engine)
	assert.Equal(t, []string{inventory.EventTypeStockChanged}, handler.EventTypes())

	event := inventory.NewStockChangedEvent(f.tenantID, uuid.New(), "adjustment", []uuid.UUID{product.ID}, []uuid.UUID{f.locationID})
	require.NoError(t, handler.Handle(context.Background(), event))
	f.engine.Wait()

	open := f.openAlerts(t)
	require.Len(t, open, 1)
	assert.Equal(t, string(inventory.AlertTypeOutOfStock), open[0].AlertType)
}
