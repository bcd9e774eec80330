package persistence

import (
	"context"

	"github.com/erp/ledger/internal/domain/audit"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/erp/ledger/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAuditRepository appends audit records inside the caller's transaction
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Append writes one record
func (r *GormAuditRepository) Append(ctx context.Context, record *audit.Record) error {
	return r.db.WithContext(ctx).Create(models.AuditRecordModelFromDomain(record)).Error
}

// ListByEntity returns the trail of one entity in time order
func (r *GormAuditRepository) ListByEntity(ctx context.Context, tenantID, entityID uuid.UUID) ([]audit.Record, error) {
	var rows []models.AuditRecordModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("entity_id = ?", entityID).
		Order("occurred_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]audit.Record, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Ensure GormAuditRepository implements Sink
var _ audit.Sink = (*GormAuditRepository)(nil)
