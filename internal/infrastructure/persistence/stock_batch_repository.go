package persistence

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/erp/ledger/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// fifoOrder puts dated batches first, earliest expiry first, then oldest row
const fifoOrder = "CASE WHEN expiration_date IS NULL THEN 1 ELSE 0 END ASC, expiration_date ASC, created_at ASC"

// GormStockBatchRepository implements StockBatchRepository using GORM
type GormStockBatchRepository struct {
	db *gorm.DB
}

// NewGormStockBatchRepository creates a new GormStockBatchRepository
func NewGormStockBatchRepository(db *gorm.DB) *GormStockBatchRepository {
	return &GormStockBatchRepository{db: db}
}

// FindForConsumption returns the batches with stock of a product at a
// location in consumption order, locking them on PostgreSQL
func (r *GormStockBatchRepository) FindForConsumption(ctx context.Context, tenantID, productID, locationID uuid.UUID) ([]inventory.StockBatch, error) {
	var rows []models.StockBatchModel
	query := forUpdate(r.db.WithContext(ctx)).
		Scopes(tenant.TenantScope(tenantID)).
		Where("product_id = ? AND location_id = ? AND quantity > 0", productID, locationID).
		Order(fifoOrder)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toBatches(rows), nil
}

// FindByProductLocation returns every batch of a product at a location
func (r *GormStockBatchRepository) FindByProductLocation(ctx context.Context, tenantID, productID, locationID uuid.UUID) ([]inventory.StockBatch, error) {
	var rows []models.StockBatchModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("product_id = ? AND location_id = ?", productID, locationID).
		Order(fifoOrder).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toBatches(rows), nil
}

// FindByTenant returns every batch of an organization
func (r *GormStockBatchRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]inventory.StockBatch, error) {
	var rows []models.StockBatchModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Order("product_id, location_id").
		Order(fifoOrder).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toBatches(rows), nil
}

// FindByKey finds the single row of a batch key
func (r *GormStockBatchRepository) FindByKey(ctx context.Context, tenantID uuid.UUID, key inventory.BatchKey) (*inventory.StockBatch, error) {
	var model models.StockBatchModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("product_id = ? AND location_id = ? AND expiry_key = ?", key.ProductID, key.LocationID, key.ExpiryKey()).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// SumQuantity returns the quantity on hand of a product at a location
func (r *GormStockBatchRepository) SumQuantity(ctx context.Context, tenantID, productID, locationID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	if err := r.db.WithContext(ctx).
		Model(&models.StockBatchModel{}).
		Scopes(tenant.TenantScope(tenantID)).
		Where("product_id = ? AND location_id = ?", productID, locationID).
		Select("SUM(quantity)").
		Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// Decrement subtracts quantity from a batch only while the row still holds it
func (r *GormStockBatchRepository) Decrement(ctx context.Context, tenantID, batchID uuid.UUID, quantity decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&models.StockBatchModel{}).
		Scopes(tenant.TenantScope(tenantID)).
		Where("id = ? AND quantity >= ?", batchID, quantity).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity - ?", quantity),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrentModification
	}
	return nil
}

// Increment adds batch.Quantity to the row with the same key, inserting it
// when the key is new. The manufacturing date is only filled when missing.
func (r *GormStockBatchRepository) Increment(ctx context.Context, batch *inventory.StockBatch) error {
	model := models.StockBatchModelFromDomain(batch)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}, {Name: "product_id"}, {Name: "location_id"}, {Name: "expiry_key"}},
			DoUpdates: clause.Set{
				{Column: clause.Column{Name: "quantity"}, Value: gorm.Expr("stock_batches.quantity + excluded.quantity")},
				{Column: clause.Column{Name: "manufacturing_date"}, Value: gorm.Expr("COALESCE(stock_batches.manufacturing_date, excluded.manufacturing_date)")},
				{Column: clause.Column{Name: "updated_at"}, Value: gorm.Expr("excluded.updated_at")},
			},
		}).
		Create(model).Error
}

func toBatches(rows []models.StockBatchModel) []inventory.StockBatch {
	batches := make([]inventory.StockBatch, len(rows))
	for i := range rows {
		batches[i] = *rows[i].ToDomain()
	}
	return batches
}

// Ensure GormStockBatchRepository implements StockBatchRepository
var _ inventory.StockBatchRepository = (*GormStockBatchRepository)(nil)
