package persistence

import (
	"context"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/erp/ledger/internal/infrastructure/persistence/tenant"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAlertMetricsProvider feeds the open-alert gauge
type GormAlertMetricsProvider struct {
	db *gorm.DB
}

// NewGormAlertMetricsProvider creates a new GormAlertMetricsProvider
func NewGormAlertMetricsProvider(db *gorm.DB) *GormAlertMetricsProvider {
	return &GormAlertMetricsProvider{db: db}
}

// CountOpenAlerts returns ACTIVE and SNOOZED alerts per alert type
func (p *GormAlertMetricsProvider) CountOpenAlerts(ctx context.Context, tenantID uuid.UUID) (map[string]int64, error) {
	var rows []struct {
		AlertType string
		Count     int64
	}
	if err := p.db.WithContext(ctx).
		Model(&models.StockAlertModel{}).
		Scopes(tenant.TenantScope(tenantID)).
		Where("status IN ?", []inventory.AlertStatus{inventory.AlertStatusActive, inventory.AlertStatusSnoozed}).
		Group("alert_type").
		Select("alert_type, COUNT(*) AS count").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.AlertType] = row.Count
	}
	return out, nil
}

// Ensure GormAlertMetricsProvider implements AlertMetricsProvider
var _ telemetry.AlertMetricsProvider = (*GormAlertMetricsProvider)(nil)
