package catalog

import (
	"testing"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates active product with upper-cased sku", func(t *testing.T) {
		p, err := NewProduct(tenantID, "milk-1l", "Milk 1L")
		require.NoError(t, err)
		assert.Equal(t, "MILK-1L", p.SKU)
		assert.Equal(t, ProductStatusActive, p.Status)
		assert.True(t, p.IsActive())
		assert.Equal(t, tenantID, p.TenantID)
	})

	t.Run("rejects empty sku", func(t *testing.T) {
		_, err := NewProduct(tenantID, " ", "Milk")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewProduct(tenantID, "SKU", "")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestProduct_Pricing(t *testing.T) {
	p, err := NewProduct(uuid.New(), "SKU", "Bread")
	require.NoError(t, err)

	require.NoError(t, p.SetPricing(decimal.NewFromInt(10), decimal.NewFromInt(6), decimal.NewFromInt(11)))
	assert.True(t, p.TaxFor(decimal.NewFromInt(20)).Equal(decimal.NewFromFloat(2.2)))

	assert.Error(t, p.SetPricing(decimal.NewFromInt(-1), decimal.Zero, decimal.Zero))
	assert.Error(t, p.SetPricing(decimal.NewFromInt(1), decimal.Zero, decimal.NewFromInt(101)))
}

func TestProduct_Discontinue(t *testing.T) {
	p, err := NewProduct(uuid.New(), "SKU", "Bread")
	require.NoError(t, err)

	p.Discontinue()
	assert.False(t, p.IsActive())
	assert.Equal(t, ProductStatusDiscontinued, p.Status)
}
