package models

import (
	"time"

	"github.com/erp/ledger/internal/domain/audit"
	"github.com/google/uuid"
)

// AuditRecordModel is one row of the append-only audit trail
type AuditRecordModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key"`
	TenantID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_audit_tenant_time,priority:1"`
	Action     string     `gorm:"type:varchar(50);not null;index"`
	EntityType string     `gorm:"type:varchar(50);not null"`
	EntityID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	EntityName string     `gorm:"type:varchar(200)"`
	Before     string     `gorm:"type:text"`
	After      string     `gorm:"type:text"`
	ActorID    *uuid.UUID `gorm:"type:uuid"`
	OccurredAt time.Time  `gorm:"not null;index:idx_audit_tenant_time,priority:2"`
}

// TableName returns the table name for GORM
func (AuditRecordModel) TableName() string {
	return "audit_records"
}

// ToDomain converts the persistence model to an audit record
func (m *AuditRecordModel) ToDomain() *audit.Record {
	return &audit.Record{
		ID:         m.ID,
		TenantID:   m.TenantID,
		Action:     m.Action,
		EntityType: m.EntityType,
		EntityID:   m.EntityID,
		EntityName: m.EntityName,
		Before:     m.Before,
		After:      m.After,
		ActorID:    m.ActorID,
		OccurredAt: m.OccurredAt,
	}
}

// AuditRecordModelFromDomain creates a new persistence model from an audit record
func AuditRecordModelFromDomain(r *audit.Record) *AuditRecordModel {
	return &AuditRecordModel{
		ID:         r.ID,
		TenantID:   r.TenantID,
		Action:     r.Action,
		EntityType: r.EntityType,
		EntityID:   r.EntityID,
		EntityName: r.EntityName,
		Before:     r.Before,
		After:      r.After,
		ActorID:    r.ActorID,
		OccurredAt: r.OccurredAt,
	}
}
