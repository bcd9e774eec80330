package persistence

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/erp/ledger/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStockTransferRepository implements StockTransferRepository using GORM
type GormStockTransferRepository struct {
	db *gorm.DB
}

// NewGormStockTransferRepository creates a new GormStockTransferRepository
func NewGormStockTransferRepository(db *gorm.DB) *GormStockTransferRepository {
	return &GormStockTransferRepository{db: db}
}

// FindByID loads a transfer with its items and shipped batches
func (r *GormStockTransferRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inventory.StockTransfer, error) {
	var model models.StockTransferModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Preload("Items.Batches").
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Create inserts a transfer with its items
func (r *GormStockTransferRepository) Create(ctx context.Context, transfer *inventory.StockTransfer) error {
	return createError(r.db.WithContext(ctx).Create(models.StockTransferModelFromDomain(transfer)).Error)
}

// SaveWithLock updates the header under the version check and rewrites the
// item rows with their batches
func (r *GormStockTransferRepository) SaveWithLock(ctx context.Context, transfer *inventory.StockTransfer) error {
	tx := r.db.WithContext(ctx)
	if err := updateVersioned(tx, &models.StockTransferModel{}, transfer.TenantID, transfer.ID, transfer.Version, map[string]any{
		"status":        transfer.Status,
		"notes":         transfer.Notes,
		"cancel_reason": transfer.CancelReason,
		"submitted_at":  transfer.SubmittedAt,
		"approved_at":   transfer.ApprovedAt,
		"shipped_at":    transfer.ShippedAt,
		"received_at":   transfer.ReceivedAt,
		"cancelled_at":  transfer.CancelledAt,
	}); err != nil {
		return err
	}

	itemIDs := make([]uuid.UUID, len(transfer.Items))
	for i, item := range transfer.Items {
		itemIDs[i] = item.ID
	}
	if len(itemIDs) > 0 {
		if err := tx.Where("transfer_item_id IN ?", itemIDs).
			Delete(&models.StockTransferItemBatchModel{}).Error; err != nil {
			return err
		}
	}

	for _, item := range transfer.Items {
		row := models.StockTransferItemModel{
			ID:                item.ID,
			TransferID:        transfer.ID,
			ProductID:         item.ProductID,
			RequestedQuantity: item.RequestedQuantity,
			ShippedQuantity:   item.ShippedQuantity,
			ReceivedQuantity:  item.ReceivedQuantity,
		}
		if err := tx.Omit("Batches").Save(&row).Error; err != nil {
			return err
		}
		batches := models.TransferBatchModels(item)
		if len(batches) > 0 {
			if err := tx.Create(&batches).Error; err != nil {
				return err
			}
		}
	}
	transfer.UpdatedAt = time.Now()
	return nil
}

// NextNumber returns the next TR- document number of the day
func (r *GormStockTransferRepository) NextNumber(ctx context.Context, tenantID uuid.UUID, at time.Time) (string, error) {
	return nextDocumentNumber(r.db.WithContext(ctx), TransferNumberPrefix, tenantID, at)
}

// Ensure GormStockTransferRepository implements StockTransferRepository
var _ inventory.StockTransferRepository = (*GormStockTransferRepository)(nil)
