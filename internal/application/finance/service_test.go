package finance

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/persistence"
	"github.com/erp/ledger/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codeOf(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

func TestCashDrawerService(t *testing.T) {
	ctx := context.Background()
	l := testutil.NewLedger(t)
	svc := NewCashDrawerService(l.Exec)
	tenantID, userID, locationID := uuid.New(), uuid.New(), uuid.New()

	drawer, err := svc.Open(ctx, tenantID, userID, OpenDrawerRequest{LocationID: locationID, OpeningBalance: testutil.Qty(100)})
	require.NoError(t, err)
	assert.Equal(t, string(finance.DrawerStatusOpen), drawer.Status)
	require.Len(t, drawer.Transactions, 1)
	assert.Equal(t, string(finance.CashTransactionOpening), drawer.Transactions[0].Type)

	t.Run("second drawer for the same user is rejected", func(t *testing.T) {
		_, err := svc.Open(ctx, tenantID, userID, OpenDrawerRequest{LocationID: uuid.New()})
		assert.Equal(t, shared.CodeCashDrawerAlreadyOpen, codeOf(err))
	})

	t.Run("second drawer at the same location is rejected", func(t *testing.T) {
		_, err := svc.Open(ctx, tenantID, uuid.New(), OpenDrawerRequest{LocationID: locationID})
		assert.Equal(t, shared.CodeCashDrawerAlreadyOpen, codeOf(err))
	})

	t.Run("movements", func(t *testing.T) {
		in, err := svc.RecordMovement(ctx, tenantID, userID, drawer.ID, DrawerMovementRequest{Type: "cash_in", Amount: testutil.Qty(40), Note: "float top-up"})
		require.NoError(t, err)
		assert.True(t, in.BalanceAfter.Equal(testutil.Qty(140)))

		_, err = svc.RecordMovement(ctx, tenantID, userID, drawer.ID, DrawerMovementRequest{Type: MovementCashOut, Amount: testutil.Qty(500)})
		assert.Equal(t, shared.CodeInvalidInput, codeOf(err))

		out, err := svc.RecordMovement(ctx, tenantID, userID, drawer.ID, DrawerMovementRequest{Type: MovementCashOut, Amount: testutil.Qty(15)})
		require.NoError(t, err)
		assert.True(t, out.BalanceAfter.Equal(testutil.Qty(125)))

		_, err = svc.RecordMovement(ctx, tenantID, userID, drawer.ID, DrawerMovementRequest{Type: "SWAP", Amount: testutil.Qty(1)})
		assert.Equal(t, shared.CodeInvalidInput, codeOf(err))
	})

	t.Run("close records the discrepancy", func(t *testing.T) {
		closed, err := svc.Close(ctx, tenantID, userID, drawer.ID, CloseDrawerRequest{ActualCounted: testutil.Qty(120), Notes: "short"})
		require.NoError(t, err)
		assert.Equal(t, string(finance.DrawerStatusClosed), closed.Status)
		require.NotNil(t, closed.Discrepancy)
		assert.True(t, closed.Discrepancy.Equal(testutil.Qty(-5)))

		_, err = svc.Close(ctx, tenantID, userID, drawer.ID, CloseDrawerRequest{ActualCounted: testutil.Qty(120)})
		assert.Error(t, err)

		got, err := svc.Get(ctx, tenantID, drawer.ID)
		require.NoError(t, err)
		assert.Len(t, got.Transactions, 3)
	})

	t.Run("a closed drawer frees the location", func(t *testing.T) {
		_, err := svc.Open(ctx, tenantID, userID, OpenDrawerRequest{LocationID: locationID})
		require.NoError(t, err)
	})

	t.Run("other tenants cannot see the drawer", func(t *testing.T) {
		_, err := svc.Get(ctx, uuid.New(), drawer.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestCreditService(t *testing.T) {
	ctx := context.Background()
	l := testutil.NewLedger(t)
	svc := NewCreditService(l.Exec)
	tenantID, userID := uuid.New(), uuid.New()

	account, err := finance.NewCustomerAccount(tenantID, "Riverside Clinic", testutil.Qty(200))
	require.NoError(t, err)
	_, err = account.Charge(testutil.Qty(150), finance.Reference{Type: finance.ReferenceSale, ID: uuid.New()})
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormCustomerAccountRepository(l.DB).Create(ctx, account))

	_, err = svc.RecordPayment(ctx, tenantID, userID, account.ID, RecordPaymentRequest{Amount: testutil.Qty(151)})
	assert.Equal(t, shared.CodeInvalidInput, codeOf(err))

	_, err = svc.RecordPayment(ctx, tenantID, userID, account.ID, RecordPaymentRequest{Amount: testutil.Qty(0)})
	assert.Equal(t, shared.CodeInvalidInput, codeOf(err))

	paid, err := svc.RecordPayment(ctx, tenantID, userID, account.ID, RecordPaymentRequest{Amount: testutil.Qty(100), Note: "bank transfer"})
	require.NoError(t, err)
	assert.True(t, paid.Balance.Equal(testutil.Qty(50)))
	require.Len(t, paid.Transactions, 1)
	assert.True(t, paid.Transactions[0].Amount.Equal(testutil.Qty(-100)))
	assert.Equal(t, string(finance.CreditTransactionPayment), paid.Transactions[0].Type)

	got, err := svc.GetAccount(ctx, tenantID, account.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(testutil.Qty(50)))
	assert.Equal(t, string(finance.CreditStatusGood), got.CreditStatus)
	assert.Len(t, got.Transactions, 1)

	_, err = svc.RecordPayment(ctx, tenantID, userID, uuid.New(), RecordPaymentRequest{Amount: testutil.Qty(1)})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
