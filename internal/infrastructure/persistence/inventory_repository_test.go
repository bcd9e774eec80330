package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormStockTransferRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	repo := NewGormStockTransferRepository(db)
	tenantID, productID := uuid.New(), uuid.New()

	transfer, err := inventory.NewStockTransfer(tenantID, uuid.New(), uuid.New(), []inventory.TransferLine{
		{ProductID: productID, Quantity: decimal.NewFromInt(5)},
	}, "restock branch")
	require.NoError(t, err)
	transfer.TransferNumber, err = repo.NextNumber(ctx, tenantID, time.Now())
	require.NoError(t, err)
	assert.Contains(t, transfer.TransferNumber, "TR-")
	require.NoError(t, repo.Create(ctx, transfer))

	step := func(mutate func(*inventory.StockTransfer) error) *inventory.StockTransfer {
		t.Helper()
		loaded, err := repo.FindByID(ctx, tenantID, transfer.ID)
		require.NoError(t, err)
		require.NoError(t, mutate(loaded))
		require.NoError(t, repo.SaveWithLock(ctx, loaded))
		return loaded
	}
	step(func(tr *inventory.StockTransfer) error { return tr.Submit() })
	step(func(tr *inventory.StockTransfer) error { return tr.Approve() })
	step(func(tr *inventory.StockTransfer) error {
		return tr.Ship(map[uuid.UUID][]inventory.BatchConsumption{
			tr.Items[0].ID: {
				{BatchID: uuid.New(), ExpirationDate: date(2027, 1, 1), Quantity: decimal.NewFromInt(2)},
				{BatchID: uuid.New(), Quantity: decimal.NewFromInt(3)},
			},
		})
	})

	shipped, err := repo.FindByID(ctx, tenantID, transfer.ID)
	require.NoError(t, err)
	assert.Equal(t, inventory.TransferStatusInTransit, shipped.Status)
	require.Len(t, shipped.Items, 1)
	assert.True(t, shipped.Items[0].ShippedQuantity.Equal(decimal.NewFromInt(5)))
	require.Len(t, shipped.Items[0].Batches, 2)
	total := decimal.Zero
	for _, b := range shipped.Items[0].Batches {
		total = total.Add(b.Quantity)
	}
	assert.True(t, total.Equal(decimal.NewFromInt(5)))

	received := step(func(tr *inventory.StockTransfer) error { return tr.Receive() })
	stored, err := repo.FindByID(ctx, tenantID, transfer.ID)
	require.NoError(t, err)
	assert.Equal(t, inventory.TransferStatusReceived, stored.Status)
	assert.Equal(t, received.Version, stored.Version)
	assert.Len(t, stored.Items[0].Batches, 2, "receive keeps the shipped batch keys")
}

func TestGormStockTransferRepository_StaleSave(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	repo := NewGormStockTransferRepository(db)
	tenantID := uuid.New()

	transfer, err := inventory.NewStockTransfer(tenantID, uuid.New(), uuid.New(), []inventory.TransferLine{
		{ProductID: uuid.New(), Quantity: decimal.NewFromInt(1)},
	}, "")
	require.NoError(t, err)
	transfer.TransferNumber = "TR-20261018-00001"
	require.NoError(t, repo.Create(ctx, transfer))

	a, err := repo.FindByID(ctx, tenantID, transfer.ID)
	require.NoError(t, err)
	b, err := repo.FindByID(ctx, tenantID, transfer.ID)
	require.NoError(t, err)

	require.NoError(t, a.Submit())
	require.NoError(t, repo.SaveWithLock(ctx, a))

	_, err = b.Cancel("duplicate")
	require.NoError(t, err)
	assert.ErrorIs(t, repo.SaveWithLock(ctx, b), shared.ErrConcurrencyConflict)
}

func TestGormStockAlertRepository(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	repo := NewGormStockAlertRepository(db)
	metrics := NewGormAlertMetricsProvider(db)
	tenantID, productID, locationID := uuid.New(), uuid.New(), uuid.New()

	low := inventory.NewStockAlert(tenantID, productID, locationID, inventory.AlertTypeLowStock, decimal.NewFromInt(3), decimal.NewFromInt(5))
	out := inventory.NewStockAlert(tenantID, uuid.New(), locationID, inventory.AlertTypeOutOfStock, decimal.Zero, decimal.NewFromInt(5))
	resolved := inventory.NewStockAlert(tenantID, uuid.New(), locationID, inventory.AlertTypeLowStock, decimal.NewFromInt(1), decimal.NewFromInt(5))
	resolved.Status = inventory.AlertStatusResolved
	foreign := inventory.NewStockAlert(uuid.New(), productID, locationID, inventory.AlertTypeLowStock, decimal.NewFromInt(1), decimal.NewFromInt(5))
	for _, a := range []*inventory.StockAlert{low, out, resolved, foreign} {
		require.NoError(t, repo.Save(ctx, a))
	}

	t.Run("open alerts exclude resolved and other tenants", func(t *testing.T) {
		open, err := repo.FindOpen(ctx, tenantID)
		require.NoError(t, err)
		assert.Len(t, open, 2)
	})

	t.Run("snooze persists through save", func(t *testing.T) {
		loaded, err := repo.FindByID(ctx, tenantID, low.ID)
		require.NoError(t, err)
		now := time.Now()
		require.NoError(t, loaded.Snooze(now.Add(time.Hour), now))
		require.NoError(t, repo.Save(ctx, loaded))

		stored, err := repo.FindByID(ctx, tenantID, low.ID)
		require.NoError(t, err)
		assert.Equal(t, inventory.AlertStatusSnoozed, stored.Status)
		require.NotNil(t, stored.SnoozedUntil)

		open, err := repo.FindOpen(ctx, tenantID)
		require.NoError(t, err)
		assert.Len(t, open, 2)
	})

	t.Run("list filters and pages", func(t *testing.T) {
		alerts, total, err := repo.List(ctx, tenantID, inventory.AlertFilter{AlertType: inventory.AlertTypeLowStock})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, alerts, 2)

		alerts, total, err = repo.List(ctx, tenantID, inventory.AlertFilter{
			Filter: shared.Filter{Page: 2, PageSize: 2, OrderBy: "current_quantity", OrderDir: "asc"},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, alerts, 1)
		assert.True(t, alerts[0].CurrentQuantity.Equal(decimal.NewFromInt(3)))

		alerts, _, err = repo.List(ctx, tenantID, inventory.AlertFilter{ProductID: &productID})
		require.NoError(t, err)
		require.Len(t, alerts, 1)
		assert.Equal(t, low.ID, alerts[0].ID)
	})

	t.Run("metrics count open alerts per type", func(t *testing.T) {
		counts, err := metrics.CountOpenAlerts(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts[string(inventory.AlertTypeLowStock)])
		assert.Equal(t, int64(1), counts[string(inventory.AlertTypeOutOfStock)])
	})

	t.Run("unknown alert is not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, tenantID, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
