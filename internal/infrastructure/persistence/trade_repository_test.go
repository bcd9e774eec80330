package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestSale(t *testing.T, tenantID uuid.UUID, qty int64) *trade.Sale {
	t.Helper()
	product, err := catalog.NewProduct(tenantID, "sku-1", "Paracetamol")
	require.NoError(t, err)
	require.NoError(t, product.SetPricing(decimal.NewFromInt(10), decimal.NewFromInt(6), decimal.Zero))

	item, err := trade.PriceLine(product, trade.SaleLine{ProductID: product.ID, Quantity: decimal.NewFromInt(qty)})
	require.NoError(t, err)
	_, _, _, total := trade.Totals([]trade.SaleItem{item})
	terms, err := trade.DeterminePayment(total, total, trade.PaymentMethodCash, false, false)
	require.NoError(t, err)

	sale, err := trade.NewSale(tenantID, uuid.New(), nil, uuid.New(), []trade.SaleItem{item}, terms)
	require.NoError(t, err)
	return sale
}

func createSale(t *testing.T, db *gorm.DB, sale *trade.Sale) {
	t.Helper()
	repo := NewGormSaleRepository(db)
	number, err := repo.NextNumber(context.Background(), sale.TenantID, time.Now())
	require.NoError(t, err)
	sale.SaleNumber = number
	require.NoError(t, repo.Create(context.Background(), sale))
}

func TestGormSaleRepository_NextNumber(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	repo := NewGormSaleRepository(db)
	tenantID := uuid.New()
	at := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

	number, err := repo.NextNumber(ctx, tenantID, at)
	require.NoError(t, err)
	assert.Equal(t, "SO-20261018-00001", number)

	sale := newTestSale(t, tenantID, 1)
	sale.SaleNumber = number
	require.NoError(t, repo.Create(ctx, sale))

	number, err = repo.NextNumber(ctx, tenantID, at)
	require.NoError(t, err)
	assert.Equal(t, "SO-20261018-00002", number)

	number, err = repo.NextNumber(ctx, tenantID, at.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "SO-20261019-00001", number, "sequence restarts every day")

	number, err = repo.NextNumber(ctx, uuid.New(), at)
	require.NoError(t, err)
	assert.Equal(t, "SO-20261018-00001", number, "sequence is per organization")
}

func TestGormSaleRepository_NextNumberWithoutInsertIsUnique(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	sales := NewGormSaleRepository(db)
	returns := NewGormReturnRepository(db)
	tenantID := uuid.New()
	at := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

	// Two checkouts allocate before either sale row exists.
	first, err := sales.NextNumber(ctx, tenantID, at)
	require.NoError(t, err)
	second, err := sales.NextNumber(ctx, tenantID, at)
	require.NoError(t, err)
	assert.Equal(t, "SO-20261018-00001", first)
	assert.Equal(t, "SO-20261018-00002", second)

	number, err := returns.NextNumber(ctx, tenantID, at)
	require.NoError(t, err)
	assert.Equal(t, "RT-20261018-00001", number, "each prefix counts on its own")

	err = db.Transaction(func(tx *gorm.DB) error {
		_, err := NewGormSaleRepository(tx).NextNumber(ctx, tenantID, at)
		require.NoError(t, err)
		return errors.New("rollback")
	})
	require.Error(t, err)

	number, err = sales.NextNumber(ctx, tenantID, at)
	require.NoError(t, err)
	assert.Equal(t, "SO-20261018-00003", number, "rolled back allocation is returned")
}

func TestGormSaleRepository_SaveWithLock(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	repo := NewGormSaleRepository(db)
	tenantID := uuid.New()
	sale := newTestSale(t, tenantID, 2)
	createSale(t, db, sale)

	first, err := repo.FindByID(ctx, tenantID, sale.ID)
	require.NoError(t, err)
	require.Len(t, first.Items, 1)
	stale, err := repo.FindByID(ctx, tenantID, sale.ID)
	require.NoError(t, err)

	first.ApplyRefund(decimal.NewFromInt(5), false)
	require.NoError(t, repo.SaveWithLock(ctx, first))

	stale.ApplyRefund(decimal.NewFromInt(5), false)
	assert.ErrorIs(t, repo.SaveWithLock(ctx, stale), shared.ErrConcurrencyConflict)

	stored, err := repo.FindByID(ctx, tenantID, sale.ID)
	require.NoError(t, err)
	assert.True(t, stored.RefundedAmount.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, 2, stored.Version)
}

func TestGormSaleRepository_FindByID_OtherTenant(t *testing.T) {
	db := newSQLiteDB(t)
	sale := newTestSale(t, uuid.New(), 1)
	createSale(t, db, sale)

	_, err := NewGormSaleRepository(db).FindByID(context.Background(), uuid.New(), sale.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormReturnRepository_ReturnedQuantities(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	repo := NewGormReturnRepository(db)
	tenantID := uuid.New()
	sale := newTestSale(t, tenantID, 10)
	createSale(t, db, sale)
	itemID := sale.Items[0].ID

	book := func(qty int64, status trade.ReturnStatus) {
		ret, err := trade.NewReturn(sale, []trade.ReturnLine{{
			SaleItemID:  &itemID,
			ProductID:   sale.Items[0].ProductID,
			Quantity:    decimal.NewFromInt(qty),
			Condition:   trade.ConditionGood,
			Disposition: trade.DispositionReturnToStock,
		}}, nil, "customer changed mind", uuid.New())
		require.NoError(t, err)
		number, err := repo.NextNumber(ctx, tenantID, time.Now())
		require.NoError(t, err)
		ret.ReturnNumber = number
		ret.Status = status
		require.NoError(t, repo.Create(ctx, ret))
	}
	book(4, trade.ReturnStatusCompleted)
	book(2, trade.ReturnStatusCompleted)
	book(3, trade.ReturnStatusRejected)

	returned, err := repo.ReturnedQuantities(ctx, tenantID, sale.ID)
	require.NoError(t, err)
	assert.True(t, returned[itemID].Equal(decimal.NewFromInt(6)))

	returns, err := repo.FindBySale(ctx, tenantID, sale.ID)
	require.NoError(t, err)
	assert.Len(t, returns, 3)
	assert.NotEqual(t, returns[0].ReturnNumber, returns[1].ReturnNumber)

	other, err := repo.ReturnedQuantities(ctx, uuid.New(), sale.ID)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestGormPurchaseOrderRepository_SaveWithLock(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	tenantID, productID := uuid.New(), uuid.New()

	po, err := trade.NewPurchaseOrder(tenantID, uuid.New(), uuid.New(), []trade.PurchaseOrderLine{
		{ProductID: productID, Quantity: decimal.NewFromInt(100), UnitCost: decimal.NewFromInt(2)},
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, po))

	loaded, err := repo.FindByID(ctx, tenantID, po.ID)
	require.NoError(t, err)
	require.NoError(t, loaded.Send())
	require.NoError(t, repo.SaveWithLock(ctx, loaded))

	loaded, err = repo.FindByID(ctx, tenantID, po.ID)
	require.NoError(t, err)
	received, err := loaded.Receive([]trade.ReceiptLine{{ProductID: productID, Quantity: decimal.NewFromInt(40)}})
	require.NoError(t, err)
	require.Len(t, received, 1)
	require.NoError(t, repo.SaveWithLock(ctx, loaded))

	stored, err := repo.FindByID(ctx, tenantID, po.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.PurchaseOrderStatusPartial, stored.Status)
	assert.True(t, stored.Items[0].ReceivedQuantity.Equal(decimal.NewFromInt(40)))
}
