package catalog

import (
	"strings"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "ACTIVE"
	ProductStatusInactive     ProductStatus = "INACTIVE"
	ProductStatusDiscontinued ProductStatus = "DISCONTINUED"
)

var hundred = decimal.NewFromInt(100)

// Product is the catalog entry the ledger reads prices and thresholds from.
// Catalog management owns writes; the ledger only reads.
type Product struct {
	shared.TenantAggregateRoot
	SKU             string
	Name            string
	SellingPrice    decimal.Decimal
	CostPrice       decimal.Decimal
	TaxRate         decimal.Decimal // percent
	ReorderPoint    decimal.Decimal
	TrackExpiration bool
	ExpiryAlertDays int
	Status          ProductStatus
}

// NewProduct creates an active product
func NewProduct(tenantID uuid.UUID, sku, name string) (*Product, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" || len(sku) > 64 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "SKU must be 1-64 characters")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Product name cannot be empty")
	}
	return &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SKU:                 strings.ToUpper(sku),
		Name:                name,
		SellingPrice:        decimal.Zero,
		CostPrice:           decimal.Zero,
		TaxRate:             decimal.Zero,
		ReorderPoint:        decimal.Zero,
		Status:              ProductStatusActive,
	}, nil
}

// SetPricing sets selling price, cost price and tax rate
func (p *Product) SetPricing(selling, cost, taxRate decimal.Decimal) error {
	if selling.IsNegative() || cost.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Prices cannot be negative")
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(hundred) {
		return shared.NewDomainError(shared.CodeInvalidInput, "Tax rate must be between 0 and 100")
	}
	p.SellingPrice = selling
	p.CostPrice = cost
	p.TaxRate = taxRate
	p.Touch()
	return nil
}

// SetStockPolicy configures the reorder point and expiry tracking
func (p *Product) SetStockPolicy(reorderPoint decimal.Decimal, trackExpiration bool, expiryAlertDays int) error {
	if reorderPoint.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Reorder point cannot be negative")
	}
	if expiryAlertDays < 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Expiry alert days cannot be negative")
	}
	p.ReorderPoint = reorderPoint
	p.TrackExpiration = trackExpiration
	p.ExpiryAlertDays = expiryAlertDays
	p.Touch()
	return nil
}

// IsActive reports whether the product participates in sales and alert scans
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// Discontinue retires a product that has transaction history
func (p *Product) Discontinue() {
	p.Status = ProductStatusDiscontinued
	p.Touch()
}

// TaxFor returns the tax owed on a line amount, rounded to cents.
func (p *Product) TaxFor(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(p.TaxRate).Div(hundred).Round(2)
}
