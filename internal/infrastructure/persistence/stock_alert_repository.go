package persistence

import (
	"context"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/erp/ledger/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AlertSortFields contains allowed sort fields for stock alerts
var AlertSortFields = map[string]bool{
	"created_at":       true,
	"updated_at":       true,
	"alert_type":       true,
	"status":           true,
	"current_quantity": true,
	"expiration_date":  true,
}

// GormStockAlertRepository implements StockAlertRepository using GORM
type GormStockAlertRepository struct {
	db *gorm.DB
}

// NewGormStockAlertRepository creates a new GormStockAlertRepository
func NewGormStockAlertRepository(db *gorm.DB) *GormStockAlertRepository {
	return &GormStockAlertRepository{db: db}
}

// FindByID finds an alert by ID
func (r *GormStockAlertRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inventory.StockAlert, error) {
	var model models.StockAlertModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindOpen returns ACTIVE and SNOOZED alerts
func (r *GormStockAlertRepository) FindOpen(ctx context.Context, tenantID uuid.UUID) ([]inventory.StockAlert, error) {
	var rows []models.StockAlertModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("status IN ?", []inventory.AlertStatus{inventory.AlertStatusActive, inventory.AlertStatusSnoozed}).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toAlerts(rows), nil
}

// List returns a page of alerts and the total matching count
func (r *GormStockAlertRepository) List(ctx context.Context, tenantID uuid.UUID, filter inventory.AlertFilter) ([]inventory.StockAlert, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.StockAlertModel{}).
		Scopes(tenant.TenantScope(tenantID))
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.AlertType != "" {
		query = query.Where("alert_type = ?", filter.AlertType)
	}
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.LocationID != nil {
		query = query.Where("location_id = ?", *filter.LocationID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortField := ValidateSortField(filter.OrderBy, AlertSortFields, "created_at")
	query = query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var rows []models.StockAlertModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toAlerts(rows), total, nil
}

// Save creates or updates an alert
func (r *GormStockAlertRepository) Save(ctx context.Context, alert *inventory.StockAlert) error {
	return r.db.WithContext(ctx).Save(models.StockAlertModelFromDomain(alert)).Error
}

func toAlerts(rows []models.StockAlertModel) []inventory.StockAlert {
	alerts := make([]inventory.StockAlert, len(rows))
	for i := range rows {
		alerts[i] = *rows[i].ToDomain()
	}
	return alerts
}

// Ensure GormStockAlertRepository implements StockAlertRepository
var _ inventory.StockAlertRepository = (*GormStockAlertRepository)(nil)
