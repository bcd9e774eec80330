package finance

import (
	"testing"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCashDrawer_Session(t *testing.T) {
	drawer, opening, err := OpenCashDrawer(uuid.New(), uuid.New(), uuid.New(), dec("50"))
	require.NoError(t, err)
	assert.Equal(t, CashTransactionOpening, opening.Type)
	assert.True(t, opening.BalanceAfter.Equal(dec("50")))

	tx, err := drawer.RecordSale(dec("30"), Reference{Type: ReferenceSale})
	require.NoError(t, err)
	assert.True(t, tx.BalanceAfter.Equal(dec("80")))

	tx, err = drawer.RecordRefund(dec("10"), Reference{Type: ReferenceReturn})
	require.NoError(t, err)
	assert.True(t, tx.Amount.Equal(dec("-10")))
	assert.True(t, drawer.CurrentBalance.Equal(dec("70")))

	_, err = drawer.CashOut(dec("100"), Reference{})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = drawer.CashIn(dec("5"), Reference{})
	require.NoError(t, err)

	require.NoError(t, drawer.Close(dec("72"), "short two"))
	assert.Equal(t, DrawerStatusClosed, drawer.Status)
	assert.True(t, drawer.ExpectedBalance.Equal(dec("75")))
	require.NotNil(t, drawer.Discrepancy)
	assert.True(t, drawer.Discrepancy.Equal(dec("-3")))

	_, err = drawer.RecordSale(dec("1"), Reference{})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	assert.ErrorIs(t, drawer.Close(dec("1"), ""), shared.ErrInvalidState)
}

func TestCashDrawer_Validation(t *testing.T) {
	_, _, err := OpenCashDrawer(uuid.New(), uuid.New(), uuid.New(), dec("-1"))
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, _, err = OpenCashDrawer(uuid.New(), uuid.Nil, uuid.New(), dec("0"))
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	drawer, _, err := OpenCashDrawer(uuid.New(), uuid.New(), uuid.New(), dec("0"))
	require.NoError(t, err)
	_, err = drawer.RecordSale(dec("0"), Reference{})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}
