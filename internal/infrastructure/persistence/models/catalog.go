package models

import (
	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product aggregate root.
type ProductModel struct {
	TenantAggregateModel
	SKU             string                `gorm:"type:varchar(64);not null;index"`
	Name            string                `gorm:"type:varchar(200);not null"`
	SellingPrice    decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	CostPrice       decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	TaxRate         decimal.Decimal       `gorm:"type:decimal(9,4);not null;default:0"`
	ReorderPoint    decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	TrackExpiration bool                  `gorm:"not null;default:false"`
	ExpiryAlertDays int                   `gorm:"not null;default:0"`
	Status          catalog.ProductStatus `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		SKU:                 m.SKU,
		Name:                m.Name,
		SellingPrice:        m.SellingPrice,
		CostPrice:           m.CostPrice,
		TaxRate:             m.TaxRate,
		ReorderPoint:        m.ReorderPoint,
		TrackExpiration:     m.TrackExpiration,
		ExpiryAlertDays:     m.ExpiryAlertDays,
		Status:              m.Status,
	}
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		SKU:             p.SKU,
		Name:            p.Name,
		SellingPrice:    p.SellingPrice,
		CostPrice:       p.CostPrice,
		TaxRate:         p.TaxRate,
		ReorderPoint:    p.ReorderPoint,
		TrackExpiration: p.TrackExpiration,
		ExpiryAlertDays: p.ExpiryAlertDays,
		Status:          p.Status,
	}
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	return m
}
