package inventory

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockBatchRepository persists ledger rows
type StockBatchRepository interface {
	// FindForConsumption returns the batches of a product at a location in
	// FIFO order, row-locked where the store supports it
	FindForConsumption(ctx context.Context, tenantID, productID, locationID uuid.UUID) ([]StockBatch, error)
	FindByProductLocation(ctx context.Context, tenantID, productID, locationID uuid.UUID) ([]StockBatch, error)
	FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]StockBatch, error)
	FindByKey(ctx context.Context, tenantID uuid.UUID, key BatchKey) (*StockBatch, error)
	SumQuantity(ctx context.Context, tenantID, productID, locationID uuid.UUID) (decimal.Decimal, error)
	// Decrement subtracts quantity only while the row still holds it,
	// returning ErrConcurrentModification otherwise
	Decrement(ctx context.Context, tenantID, batchID uuid.UUID, quantity decimal.Decimal) error
	// Increment adds batch.Quantity to the row with the same key, inserting
	// batch when no such row exists
	Increment(ctx context.Context, batch *StockBatch) error
}

// AlertFilter narrows alert listings
type AlertFilter struct {
	shared.Filter
	Status     AlertStatus
	AlertType  AlertType
	ProductID  *uuid.UUID
	LocationID *uuid.UUID
}

// StockAlertRepository persists alerts
type StockAlertRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*StockAlert, error)
	// FindOpen returns ACTIVE and SNOOZED alerts of the organization
	FindOpen(ctx context.Context, tenantID uuid.UUID) ([]StockAlert, error)
	List(ctx context.Context, tenantID uuid.UUID, filter AlertFilter) ([]StockAlert, int64, error)
	Save(ctx context.Context, alert *StockAlert) error
}

// StockTransferRepository persists transfers with their items
type StockTransferRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*StockTransfer, error)
	Create(ctx context.Context, transfer *StockTransfer) error
	// SaveWithLock updates the transfer if its stored version is Version-1
	SaveWithLock(ctx context.Context, transfer *StockTransfer) error
	NextNumber(ctx context.Context, tenantID uuid.UUID, at time.Time) (string, error)
}
