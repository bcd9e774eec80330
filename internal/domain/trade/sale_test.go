package trade

import (
	"testing"

	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func newTestProduct(t *testing.T, price, cost, taxRate string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(uuid.New(), "SKU-"+uuid.NewString()[:8], "Coffee")
	require.NoError(t, err)
	require.NoError(t, p.SetPricing(dec(price), dec(cost), dec(taxRate)))
	return p
}

func TestPriceLine(t *testing.T) {
	product := newTestProduct(t, "10", "6", "10")

	t.Run("uses selling price by default", func(t *testing.T) {
		item, err := PriceLine(product, SaleLine{ProductID: product.ID, Quantity: dec("3"), Discount: dec("2")})
		require.NoError(t, err)
		assert.True(t, item.UnitPrice.Equal(dec("10")))
		assert.True(t, item.LineTotal.Equal(dec("28")))
		assert.True(t, item.Tax.Equal(dec("2.8")))
		assert.True(t, item.CostPriceSnapshot.Equal(dec("6")))
	})

	t.Run("honors explicit unit price", func(t *testing.T) {
		price := dec("8")
		item, err := PriceLine(product, SaleLine{ProductID: product.ID, Quantity: dec("2"), UnitPrice: &price})
		require.NoError(t, err)
		assert.True(t, item.LineTotal.Equal(dec("16")))
	})

	t.Run("rejects discount above gross", func(t *testing.T) {
		_, err := PriceLine(product, SaleLine{ProductID: product.ID, Quantity: dec("1"), Discount: dec("11")})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		_, err := PriceLine(product, SaleLine{ProductID: product.ID, Quantity: decimal.Zero})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestDeterminePayment(t *testing.T) {
	total := dec("100")

	t.Run("cash with change", func(t *testing.T) {
		terms, err := DeterminePayment(total, dec("120"), PaymentMethodCash, false, false)
		require.NoError(t, err)
		assert.Equal(t, PaymentTypeCash, terms.Type)
		assert.True(t, terms.ChangeGiven.Equal(dec("20")))
		assert.True(t, terms.CreditAmount.IsZero())
		assert.True(t, terms.CashReceived().Equal(total))
	})

	t.Run("cash short of total", func(t *testing.T) {
		_, err := DeterminePayment(total, dec("99"), PaymentMethodCash, false, false)
		assert.ErrorIs(t, err, shared.ErrInsufficientPayment)
	})

	t.Run("full credit", func(t *testing.T) {
		terms, err := DeterminePayment(total, decimal.Zero, PaymentMethodCash, true, true)
		require.NoError(t, err)
		assert.Equal(t, PaymentTypeCredit, terms.Type)
		assert.True(t, terms.CreditAmount.Equal(total))
	})

	t.Run("partial credit", func(t *testing.T) {
		terms, err := DeterminePayment(total, dec("30"), PaymentMethodCard, true, true)
		require.NoError(t, err)
		assert.Equal(t, PaymentTypePartial, terms.Type)
		assert.True(t, terms.CreditAmount.Equal(dec("70")))
		assert.True(t, terms.ChangeGiven.IsZero())
	})

	t.Run("credit fully paid becomes cash", func(t *testing.T) {
		terms, err := DeterminePayment(total, total, PaymentMethodCash, true, true)
		require.NoError(t, err)
		assert.Equal(t, PaymentTypeCash, terms.Type)
	})

	t.Run("credit without customer", func(t *testing.T) {
		_, err := DeterminePayment(total, decimal.Zero, PaymentMethodCash, true, false)
		assert.ErrorIs(t, err, shared.ErrCustomerRequiredForCredit)
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := DeterminePayment(total, total, PaymentMethod("BARTER"), false, false)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestNewSale_TotalsInvariant(t *testing.T) {
	a := newTestProduct(t, "12.50", "7", "11")
	b := newTestProduct(t, "3.99", "2", "0")
	itemA, err := PriceLine(a, SaleLine{ProductID: a.ID, Quantity: dec("3"), Discount: dec("1.25")})
	require.NoError(t, err)
	itemB, err := PriceLine(b, SaleLine{ProductID: b.ID, Quantity: dec("7")})
	require.NoError(t, err)

	_, _, _, total := Totals([]SaleItem{itemA, itemB})
	terms, err := DeterminePayment(total, total, PaymentMethodCash, false, false)
	require.NoError(t, err)

	sale, err := NewSale(uuid.New(), uuid.New(), nil, uuid.New(), []SaleItem{itemA, itemB}, terms)
	require.NoError(t, err)

	sum := decimal.Zero
	for _, item := range sale.Items {
		sum = sum.Add(item.LineTotal).Add(item.Tax)
		assert.Equal(t, sale.ID, item.SaleID)
	}
	assert.True(t, sum.Equal(sale.TotalAmount))
	assert.True(t, sale.Subtotal.Add(sale.TaxTotal).Equal(sale.TotalAmount))
	assert.Equal(t, SaleStatusCompleted, sale.Status)
}

func TestSale_ApplyRefund(t *testing.T) {
	p := newTestProduct(t, "10", "5", "0")
	item, _ := PriceLine(p, SaleLine{ProductID: p.ID, Quantity: dec("10")})
	terms, _ := DeterminePayment(dec("100"), dec("100"), PaymentMethodCash, false, false)
	sale, err := NewSale(uuid.New(), uuid.New(), nil, uuid.New(), []SaleItem{item}, terms)
	require.NoError(t, err)

	sale.ApplyRefund(dec("60"), false)
	assert.Equal(t, SaleStatusCompleted, sale.Status)

	sale.ApplyRefund(dec("40"), false)
	assert.Equal(t, SaleStatusRefunded, sale.Status)
	assert.Error(t, sale.CanReturn())
}
