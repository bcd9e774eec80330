// Package testutil provides the shared fixtures for ledger tests: a migrated
// in-memory database, an executor bound to it and seed helpers for products
// and stock.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/erp/ledger/internal/application/ledger"
	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/infrastructure/persistence"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Ledger is a complete ledger backed by an in-memory SQLite database
type Ledger struct {
	DB     *gorm.DB
	Scope  *persistence.GormTransactionScope
	Exec   *ledger.Executor
	Events *RecordingPublisher
}

// NewLedger migrates a fresh in-memory database and wires an executor to it.
// SQLite keeps one connection so every statement sees the same database.
func NewLedger(t *testing.T) *Ledger {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))

	scope := persistence.NewGormTransactionScope(db)
	events := NewRecordingPublisher()
	return &Ledger{
		DB:     db,
		Scope:  scope,
		Events: events,
		Exec: ledger.NewExecutor(ledger.Config{
			Scope:     scope,
			Timeout:   5 * time.Second,
			Publisher: events,
		}),
	}
}

// ProductSpec describes a seeded product
type ProductSpec struct {
	SKU             string
	Name            string
	SellingPrice    int64
	CostPrice       int64
	TaxRate         int64
	ReorderPoint    int64
	TrackExpiration bool
	ExpiryAlertDays int
}

// SeedProduct saves an active product
func (l *Ledger) SeedProduct(t *testing.T, tenantID uuid.UUID, spec ProductSpec) *catalog.Product {
	t.Helper()
	if spec.Name == "" {
		spec.Name = "Product " + spec.SKU
	}
	p, err := catalog.NewProduct(tenantID, spec.SKU, spec.Name)
	require.NoError(t, err)
	require.NoError(t, p.SetPricing(decimal.NewFromInt(spec.SellingPrice), decimal.NewFromInt(spec.CostPrice), decimal.NewFromInt(spec.TaxRate)))
	require.NoError(t, p.SetStockPolicy(decimal.NewFromInt(spec.ReorderPoint), spec.TrackExpiration, spec.ExpiryAlertDays))
	require.NoError(t, persistence.NewGormProductRepository(l.DB).Save(context.Background(), p))
	return p
}

// SeedStock adds quantity to a batch key
func (l *Ledger) SeedStock(t *testing.T, tenantID, productID, locationID uuid.UUID, expiry *time.Time, qty int64) {
	t.Helper()
	batch, err := inventory.NewStockBatch(tenantID, inventory.NewBatchKey(productID, locationID, expiry), nil, decimal.NewFromInt(qty))
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormStockBatchRepository(l.DB).Increment(context.Background(), batch))
}

// OnHand returns the summed quantity of a product at a location
func (l *Ledger) OnHand(t *testing.T, tenantID, productID, locationID uuid.UUID) decimal.Decimal {
	t.Helper()
	total, err := persistence.NewGormStockBatchRepository(l.DB).SumQuantity(context.Background(), tenantID, productID, locationID)
	require.NoError(t, err)
	return total
}

// Batches returns the ledger rows of a product at a location in FIFO order
func (l *Ledger) Batches(t *testing.T, tenantID, productID, locationID uuid.UUID) []inventory.StockBatch {
	t.Helper()
	batches, err := persistence.NewGormStockBatchRepository(l.DB).FindByProductLocation(context.Background(), tenantID, productID, locationID)
	require.NoError(t, err)
	return batches
}

// Count returns the number of rows in a table for a tenant
func (l *Ledger) Count(t *testing.T, table string, tenantID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, l.DB.Table(table).Where("tenant_id = ?", tenantID).Count(&n).Error)
	return n
}

// Date returns midnight UTC of a calendar day
func Date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// Qty shortens decimal literals in tests
func Qty(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}
