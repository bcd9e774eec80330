package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormCashDrawerRepository(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	drawers := NewGormCashDrawerRepository(db)
	entries := NewGormCashTransactionRepository(db)
	tenantID, locationID, userID := uuid.New(), uuid.New(), uuid.New()

	t.Run("no open drawer is nil without error", func(t *testing.T) {
		drawer, err := drawers.FindOpenByUser(ctx, tenantID, userID)
		require.NoError(t, err)
		assert.Nil(t, drawer)
	})

	drawer, opening, err := finance.OpenCashDrawer(tenantID, locationID, userID, decimal.NewFromInt(100))
	require.NoError(t, err)
	require.NoError(t, drawers.Create(ctx, drawer))
	require.NoError(t, entries.Create(ctx, opening))

	t.Run("finds the open drawer by user and location", func(t *testing.T) {
		byUser, err := drawers.FindOpenByUser(ctx, tenantID, userID)
		require.NoError(t, err)
		require.NotNil(t, byUser)
		assert.Equal(t, drawer.ID, byUser.ID)

		byLocation, err := drawers.FindOpenByLocation(ctx, tenantID, locationID)
		require.NoError(t, err)
		require.NotNil(t, byLocation)
		assert.Equal(t, drawer.ID, byLocation.ID)
	})

	t.Run("sale entry updates the running balance", func(t *testing.T) {
		loaded, err := drawers.FindByID(ctx, tenantID, drawer.ID)
		require.NoError(t, err)
		entry, err := loaded.RecordSale(decimal.NewFromInt(25), finance.Reference{Type: finance.ReferenceSale, ID: uuid.New(), CreatedBy: userID})
		require.NoError(t, err)
		require.NoError(t, drawers.SaveWithLock(ctx, loaded))
		require.NoError(t, entries.Create(ctx, entry))

		stored, err := drawers.FindByID(ctx, tenantID, drawer.ID)
		require.NoError(t, err)
		assert.True(t, stored.CurrentBalance.Equal(decimal.NewFromInt(125)))

		list, err := entries.ListByDrawer(ctx, tenantID, drawer.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, finance.CashTransactionOpening, list[0].Type)
		assert.Equal(t, finance.CashTransactionSale, list[1].Type)
		assert.True(t, list[1].BalanceAfter.Equal(decimal.NewFromInt(125)))
		assert.Equal(t, finance.ReferenceSale, list[1].Reference.Type)
	})

	t.Run("stale drawer save conflicts", func(t *testing.T) {
		stale, err := drawers.FindByID(ctx, tenantID, drawer.ID)
		require.NoError(t, err)
		fresh, err := drawers.FindByID(ctx, tenantID, drawer.ID)
		require.NoError(t, err)

		_, err = fresh.CashIn(decimal.NewFromInt(10), finance.Reference{Type: finance.ReferenceManual, CreatedBy: userID})
		require.NoError(t, err)
		require.NoError(t, drawers.SaveWithLock(ctx, fresh))

		_, err = stale.CashOut(decimal.NewFromInt(10), finance.Reference{Type: finance.ReferenceManual, CreatedBy: userID})
		require.NoError(t, err)
		assert.ErrorIs(t, drawers.SaveWithLock(ctx, stale), shared.ErrConcurrencyConflict)
	})

	t.Run("closed drawer is no longer open", func(t *testing.T) {
		loaded, err := drawers.FindByID(ctx, tenantID, drawer.ID)
		require.NoError(t, err)
		require.NoError(t, loaded.Close(decimal.NewFromInt(130), "end of shift"))
		require.NoError(t, drawers.SaveWithLock(ctx, loaded))

		open, err := drawers.FindOpenByUser(ctx, tenantID, userID)
		require.NoError(t, err)
		assert.Nil(t, open)

		closed, err := drawers.FindByID(ctx, tenantID, drawer.ID)
		require.NoError(t, err)
		require.NotNil(t, closed.Discrepancy)
		assert.True(t, closed.Discrepancy.Equal(decimal.NewFromInt(-5)))
	})
}

func TestGormCustomerAccountRepository(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	accounts := NewGormCustomerAccountRepository(db)
	credit := NewGormCreditTransactionRepository(db)
	tenantID := uuid.New()

	account, err := finance.NewCustomerAccount(tenantID, "Corner Pharmacy", decimal.NewFromInt(1000))
	require.NoError(t, err)
	require.NoError(t, accounts.Create(ctx, account))

	for _, amount := range []int64{100, 250} {
		loaded, err := accounts.FindByID(ctx, tenantID, account.ID)
		require.NoError(t, err)
		entry, err := loaded.Charge(decimal.NewFromInt(amount), finance.Reference{Type: finance.ReferenceSale, ID: uuid.New()})
		require.NoError(t, err)
		require.NoError(t, accounts.SaveWithLock(ctx, loaded))
		require.NoError(t, credit.Create(ctx, entry))
	}

	stored, err := accounts.FindByID(ctx, tenantID, account.ID)
	require.NoError(t, err)
	assert.True(t, stored.Balance.Equal(decimal.NewFromInt(350)))

	latest, err := credit.ListByCustomer(ctx, tenantID, account.ID, 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.True(t, latest[0].BalanceAfter.Equal(decimal.NewFromInt(350)))

	all, err := credit.ListByCustomer(ctx, tenantID, account.ID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = accounts.FindByID(ctx, uuid.New(), account.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormExpenseRepository_FindByReference(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	repo := NewGormExpenseRepository(db)
	tenantID, receiptID := uuid.New(), uuid.New()

	entry, err := finance.NewExpenseEntry(tenantID, finance.ExpenseCategoryInventory, decimal.NewFromInt(80), "BANK_TRANSFER", "PO receipt",
		finance.Reference{Type: finance.ReferenceReceiving, ID: receiptID})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, entry))

	found, err := repo.FindByReference(ctx, tenantID, finance.ReferenceReceiving, receiptID)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.True(t, found[0].Amount.Equal(decimal.NewFromInt(80)))

	none, err := repo.FindByReference(ctx, tenantID, finance.ReferenceReceiving, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFinanceRepositories_LockRowsForUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("customer account", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "customer_accounts" WHERE .* FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := NewGormCustomerAccountRepository(db.DB).FindByID(ctx, uuid.New(), uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("drawer by id", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "cash_drawers" WHERE .* FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := NewGormCashDrawerRepository(db.DB).FindByID(ctx, uuid.New(), uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("open drawer of a user", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "cash_drawers" WHERE .*status = .* FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		drawer, err := NewGormCashDrawerRepository(db.DB).FindOpenByUser(ctx, uuid.New(), uuid.New())
		require.NoError(t, err)
		assert.Nil(t, drawer)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
