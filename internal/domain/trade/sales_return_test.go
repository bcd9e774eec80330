package trade

import (
	"testing"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTenUnitSale(t *testing.T) *Sale {
	t.Helper()
	p := newTestProduct(t, "10", "5", "0")
	item, err := PriceLine(p, SaleLine{ProductID: p.ID, Quantity: dec("10")})
	require.NoError(t, err)
	terms, err := DeterminePayment(dec("100"), dec("100"), PaymentMethodCash, false, false)
	require.NoError(t, err)
	sale, err := NewSale(uuid.New(), uuid.New(), nil, uuid.New(), []SaleItem{item}, terms)
	require.NoError(t, err)
	return sale
}

func TestNewReturn_OverReturnGuard(t *testing.T) {
	sale := newTenUnitSale(t)
	productID := sale.Items[0].ProductID

	first, err := NewReturn(sale, []ReturnLine{{ProductID: productID, Quantity: dec("6"), Disposition: DispositionReturnToStock}}, nil, "", uuid.New())
	require.NoError(t, err)
	assert.True(t, first.RefundAmount.Equal(dec("60")))
	returned := first.ReturnedBySaleItem()

	_, err = NewReturn(sale, []ReturnLine{{ProductID: productID, Quantity: dec("5"), Disposition: DispositionDiscard}}, returned, "", uuid.New())
	assert.ErrorIs(t, err, shared.ErrOverReturn)

	second, err := NewReturn(sale, []ReturnLine{{ProductID: productID, Quantity: dec("4"), Disposition: DispositionDiscard}}, returned, "", uuid.New())
	require.NoError(t, err)
	assert.True(t, second.RefundAmount.Equal(dec("40")))

	all := map[uuid.UUID]decimal.Decimal{sale.Items[0].ID: dec("10")}
	assert.True(t, FullyReturned(sale, all))
}

func TestNewReturn_ByItemID(t *testing.T) {
	sale := newTenUnitSale(t)
	itemID := sale.Items[0].ID

	ret, err := NewReturn(sale, []ReturnLine{{SaleItemID: &itemID, Quantity: dec("2"), Disposition: DispositionDiscard}}, nil, "broken", uuid.New())
	require.NoError(t, err)
	require.Len(t, ret.Items, 1)
	assert.Equal(t, itemID, ret.Items[0].SaleItemID)
	assert.Equal(t, ConditionGood, ret.Items[0].Condition)

	unknown := uuid.New()
	_, err = NewReturn(sale, []ReturnLine{{SaleItemID: &unknown, Quantity: dec("1"), Disposition: DispositionDiscard}}, nil, "", uuid.New())
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestNewReturn_CountsLinesWithinRequest(t *testing.T) {
	sale := newTenUnitSale(t)
	productID := sale.Items[0].ProductID

	_, err := NewReturn(sale, []ReturnLine{
		{ProductID: productID, Quantity: dec("6"), Disposition: DispositionDiscard},
		{ProductID: productID, Quantity: dec("5"), Disposition: DispositionDiscard},
	}, nil, "", uuid.New())
	assert.ErrorIs(t, err, shared.ErrOverReturn)
}

func TestNewReturn_Validation(t *testing.T) {
	sale := newTenUnitSale(t)

	_, err := NewReturn(sale, []ReturnLine{{ProductID: uuid.New(), Quantity: dec("1"), Disposition: DispositionDiscard}}, nil, "", uuid.New())
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewReturn(sale, []ReturnLine{{ProductID: sale.Items[0].ProductID, Quantity: dec("1"), Disposition: "KEEP"}}, nil, "", uuid.New())
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	sale.Status = SaleStatusVoid
	_, err = NewReturn(sale, []ReturnLine{{ProductID: sale.Items[0].ProductID, Quantity: dec("1"), Disposition: DispositionDiscard}}, nil, "", uuid.New())
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}
