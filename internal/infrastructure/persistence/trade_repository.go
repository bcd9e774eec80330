package persistence

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/domain/trade"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/erp/ledger/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByID loads a sale with its items
func (r *GormSaleRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*trade.Sale, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Create inserts a sale with its items
func (r *GormSaleRepository) Create(ctx context.Context, sale *trade.Sale) error {
	return createError(r.db.WithContext(ctx).Create(models.SaleModelFromDomain(sale)).Error)
}

// SaveWithLock updates the mutable header fields under the version check
func (r *GormSaleRepository) SaveWithLock(ctx context.Context, sale *trade.Sale) error {
	return updateVersioned(r.db.WithContext(ctx), &models.SaleModel{}, sale.TenantID, sale.ID, sale.Version, map[string]any{
		"refunded_amount": sale.RefundedAmount,
		"status":          sale.Status,
		"notes":           sale.Notes,
	})
}

// NextNumber returns the next SO- document number of the day
func (r *GormSaleRepository) NextNumber(ctx context.Context, tenantID uuid.UUID, at time.Time) (string, error) {
	return nextDocumentNumber(r.db.WithContext(ctx), SaleNumberPrefix, tenantID, at)
}

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByID loads a purchase order with its items, locking the header on
// PostgreSQL so concurrent receipts serialize
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*trade.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := forUpdate(r.db.WithContext(ctx)).
		Scopes(tenant.TenantScope(tenantID)).
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Create inserts a purchase order with its items
func (r *GormPurchaseOrderRepository) Create(ctx context.Context, po *trade.PurchaseOrder) error {
	return createError(r.db.WithContext(ctx).Create(models.PurchaseOrderModelFromDomain(po)).Error)
}

// SaveWithLock updates the header under the version check and the received
// quantity of every item
func (r *GormPurchaseOrderRepository) SaveWithLock(ctx context.Context, po *trade.PurchaseOrder) error {
	tx := r.db.WithContext(ctx)
	if err := updateVersioned(tx, &models.PurchaseOrderModel{}, po.TenantID, po.ID, po.Version, map[string]any{
		"status":      po.Status,
		"sent_at":     po.SentAt,
		"received_at": po.ReceivedAt,
	}); err != nil {
		return err
	}
	for _, item := range po.Items {
		if err := tx.Model(&models.PurchaseOrderItemModel{}).
			Where("id = ? AND purchase_order_id = ?", item.ID, po.ID).
			Update("received_quantity", item.ReceivedQuantity).Error; err != nil {
			return err
		}
	}
	return nil
}

// GormReceivingRecordRepository implements ReceivingRecordRepository using GORM
type GormReceivingRecordRepository struct {
	db *gorm.DB
}

// NewGormReceivingRecordRepository creates a new GormReceivingRecordRepository
func NewGormReceivingRecordRepository(db *gorm.DB) *GormReceivingRecordRepository {
	return &GormReceivingRecordRepository{db: db}
}

// Create inserts a receiving record with its lines
func (r *GormReceivingRecordRepository) Create(ctx context.Context, record *trade.ReceivingRecord) error {
	return r.db.WithContext(ctx).Create(models.ReceivingRecordModelFromDomain(record)).Error
}

// FindByPurchaseOrder lists the receipts booked against a purchase order
func (r *GormReceivingRecordRepository) FindByPurchaseOrder(ctx context.Context, tenantID, purchaseOrderID uuid.UUID) ([]trade.ReceivingRecord, error) {
	var rows []models.ReceivingRecordModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Preload("Lines").
		Where("purchase_order_id = ?", purchaseOrderID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	records := make([]trade.ReceivingRecord, len(rows))
	for i := range rows {
		records[i] = *rows[i].ToDomain()
	}
	return records, nil
}

// GormReturnRepository implements ReturnRepository using GORM
type GormReturnRepository struct {
	db *gorm.DB
}

// NewGormReturnRepository creates a new GormReturnRepository
func NewGormReturnRepository(db *gorm.DB) *GormReturnRepository {
	return &GormReturnRepository{db: db}
}

// Create inserts a return with its items
func (r *GormReturnRepository) Create(ctx context.Context, ret *trade.Return) error {
	return createError(r.db.WithContext(ctx).Create(models.SalesReturnModelFromDomain(ret)).Error)
}

// FindBySale lists the returns against a sale
func (r *GormReturnRepository) FindBySale(ctx context.Context, tenantID, saleID uuid.UUID) ([]trade.Return, error) {
	var rows []models.SalesReturnModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Preload("Items").
		Where("sale_id = ?", saleID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	returns := make([]trade.Return, len(rows))
	for i := range rows {
		returns[i] = *rows[i].ToDomain()
	}
	return returns, nil
}

// ReturnedQuantities sums returned quantity per sale item, ignoring rejected returns
func (r *GormReturnRepository) ReturnedQuantities(ctx context.Context, tenantID, saleID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	var rows []struct {
		SaleItemID uuid.UUID
		Quantity   decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Table("sales_return_items AS i").
		Joins("JOIN sales_returns AS r ON r.id = i.return_id").
		Scopes(tenant.TenantColumnScope("r.tenant_id", tenantID)).
		Where("r.sale_id = ? AND r.status <> ?", saleID, trade.ReturnStatusRejected).
		Group("i.sale_item_id").
		Select("i.sale_item_id AS sale_item_id, SUM(i.quantity) AS quantity").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]decimal.Decimal, len(rows))
	for _, row := range rows {
		out[row.SaleItemID] = row.Quantity
	}
	return out, nil
}

// NextNumber returns the next RT- document number of the day
func (r *GormReturnRepository) NextNumber(ctx context.Context, tenantID uuid.UUID, at time.Time) (string, error) {
	return nextDocumentNumber(r.db.WithContext(ctx), ReturnNumberPrefix, tenantID, at)
}

var (
	_ trade.SaleRepository            = (*GormSaleRepository)(nil)
	_ trade.PurchaseOrderRepository   = (*GormPurchaseOrderRepository)(nil)
	_ trade.ReceivingRecordRepository = (*GormReceivingRecordRepository)(nil)
	_ trade.ReturnRepository          = (*GormReturnRepository)(nil)
)
