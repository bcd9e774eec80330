package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleRepository persists sales with their items
type SaleRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Sale, error)
	Create(ctx context.Context, sale *Sale) error
	// SaveWithLock updates the header if its stored version is Version-1
	SaveWithLock(ctx context.Context, sale *Sale) error
	NextNumber(ctx context.Context, tenantID uuid.UUID, at time.Time) (string, error)
}

// PurchaseOrderRepository persists purchase orders with their items
type PurchaseOrderRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseOrder, error)
	Create(ctx context.Context, po *PurchaseOrder) error
	SaveWithLock(ctx context.Context, po *PurchaseOrder) error
}

// ReceivingRecordRepository appends receiving records
type ReceivingRecordRepository interface {
	Create(ctx context.Context, record *ReceivingRecord) error
	FindByPurchaseOrder(ctx context.Context, tenantID, purchaseOrderID uuid.UUID) ([]ReceivingRecord, error)
}

// ReturnRepository persists returns
type ReturnRepository interface {
	Create(ctx context.Context, ret *Return) error
	FindBySale(ctx context.Context, tenantID, saleID uuid.UUID) ([]Return, error)
	// ReturnedQuantities sums non-rejected returned quantity per sale item
	ReturnedQuantities(ctx context.Context, tenantID, saleID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
	NextNumber(ctx context.Context, tenantID uuid.UUID, at time.Time) (string, error)
}
