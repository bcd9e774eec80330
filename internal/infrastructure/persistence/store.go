package persistence

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Document number prefixes
const (
	SaleNumberPrefix     = "SO"
	TransferNumberPrefix = "TR"
	ReturnNumberPrefix   = "RT"
)

// forUpdate adds a row lock on dialects that support it. SQLite serializes
// writers on its own.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "postgres" {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// createError maps a unique violation on insert to a retryable conflict
func createError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrConcurrencyConflict
	}
	msg := err.Error()
	if strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed") {
		return shared.ErrConcurrencyConflict
	}
	return err
}

// updateVersioned writes columns only while the stored version is the one the
// aggregate was loaded with. Aggregates bump Version once per mutation, so the
// stored value is version-1.
func updateVersioned(tx *gorm.DB, model any, tenantID, id uuid.UUID, version int, columns map[string]any) error {
	columns["version"] = version
	columns["updated_at"] = time.Now()
	result := tx.Model(model).
		Scopes(tenant.TenantScope(tenantID)).
		Where("id = ? AND version = ?", id, version-1).
		Updates(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// nextDocumentNumber returns PREFIX-YYYYMMDD-NNNNN with the sequence restarting
// every day per organization. The counter row is bumped with an upsert, so
// concurrent units of work queue on its row lock and never share a number.
// A rolled back unit of work gives its number back.
func nextDocumentNumber(tx *gorm.DB, prefix string, tenantID uuid.UUID, at time.Time) (string, error) {
	day := at.UTC().Format("20060102")

	var next int64
	if err := tx.Raw(`INSERT INTO document_sequences (tenant_id, prefix, day, last_value)
VALUES (?, ?, ?, 1)
ON CONFLICT (tenant_id, prefix, day)
DO UPDATE SET last_value = document_sequences.last_value + 1
RETURNING last_value`, tenantID, prefix, day).Scan(&next).Error; err != nil {
		return "", fmt.Errorf("failed to allocate %s number: %w", prefix, err)
	}
	return fmt.Sprintf("%s-%s-%05d", prefix, day, next), nil
}
