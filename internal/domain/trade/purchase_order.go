package trade

import (
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus is the lifecycle of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft     PurchaseOrderStatus = "DRAFT"
	PurchaseOrderStatusSent      PurchaseOrderStatus = "SENT"
	PurchaseOrderStatusPartial   PurchaseOrderStatus = "PARTIAL"
	PurchaseOrderStatusReceived  PurchaseOrderStatus = "RECEIVED"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "CANCELLED"
)

// CanReceive reports SENT or PARTIAL
func (s PurchaseOrderStatus) CanReceive() bool {
	return s == PurchaseOrderStatusSent || s == PurchaseOrderStatusPartial
}

// PurchaseOrderItem is one ordered product
type PurchaseOrderItem struct {
	ID               uuid.UUID
	PurchaseOrderID  uuid.UUID
	ProductID        uuid.UUID
	OrderedQuantity  decimal.Decimal
	ReceivedQuantity decimal.Decimal
	UnitCost         decimal.Decimal
}

// Remaining returns what is still to be received
func (i *PurchaseOrderItem) Remaining() decimal.Decimal {
	return decimal.Max(decimal.Zero, i.OrderedQuantity.Sub(i.ReceivedQuantity))
}

// IsComplete reports received >= ordered
func (i *PurchaseOrderItem) IsComplete() bool {
	return i.ReceivedQuantity.GreaterThanOrEqual(i.OrderedQuantity)
}

// PurchaseOrderLine is the input for an ordered product
type PurchaseOrderLine struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal
}

// PurchaseOrder delivers to one location. PARTIAL and RECEIVED are set only
// by receiving.
type PurchaseOrder struct {
	shared.TenantAggregateRoot
	OrderNumber string
	SupplierID  uuid.UUID
	LocationID  uuid.UUID
	Status      PurchaseOrderStatus
	Items       []PurchaseOrderItem
	SentAt      *time.Time
	ReceivedAt  *time.Time
}

// NewPurchaseOrder creates a DRAFT order
func NewPurchaseOrder(tenantID, supplierID, locationID uuid.UUID, lines []PurchaseOrderLine) (*PurchaseOrder, error) {
	if locationID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Receiving location is required")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Purchase order must have at least one item")
	}
	po := &PurchaseOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SupplierID:          supplierID,
		LocationID:          locationID,
		Status:              PurchaseOrderStatusDraft,
	}
	for _, line := range lines {
		if !line.Quantity.IsPositive() || line.UnitCost.IsNegative() {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Ordered quantity must be positive and cost non-negative")
		}
		po.Items = append(po.Items, PurchaseOrderItem{
			ID:               uuid.New(),
			PurchaseOrderID:  po.ID,
			ProductID:        line.ProductID,
			OrderedQuantity:  line.Quantity,
			ReceivedQuantity: decimal.Zero,
			UnitCost:         line.UnitCost,
		})
	}
	return po, nil
}

// Send moves DRAFT to SENT
func (po *PurchaseOrder) Send() error {
	if po.Status != PurchaseOrderStatusDraft {
		return shared.InvalidTransition("purchase order", string(po.Status), string(PurchaseOrderStatusSent))
	}
	now := time.Now()
	po.Status = PurchaseOrderStatusSent
	po.SentAt = &now
	po.IncrementVersion()
	po.Touch()
	return nil
}

// ReceiptLine is one product line of a delivery
type ReceiptLine struct {
	ProductID         uuid.UUID
	Quantity          decimal.Decimal
	ExpirationDate    *time.Time
	ManufacturingDate *time.Time
}

// ReceivedLine is what was actually booked for a delivery line
type ReceivedLine struct {
	PurchaseOrderItemID uuid.UUID
	ProductID           uuid.UUID
	Quantity            decimal.Decimal
	UnitCost            decimal.Decimal
	ExpirationDate      *time.Time
	ManufacturingDate   *time.Time
}

// Cost returns quantity * unit cost
func (l ReceivedLine) Cost() decimal.Decimal {
	return l.Quantity.Mul(l.UnitCost)
}

// Receive books a delivery. Each line is capped at what remains on the
// order; lines capped to zero are dropped. The status is recomputed.
func (po *PurchaseOrder) Receive(lines []ReceiptLine) ([]ReceivedLine, error) {
	if !po.Status.CanReceive() {
		return nil, shared.Errorf(shared.CodeInvalidState, "Purchase order %s cannot be received in status %s", po.OrderNumber, po.Status)
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Nothing to receive")
	}
	var received []ReceivedLine
	for _, line := range lines {
		if !line.Quantity.IsPositive() {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Received quantity must be positive")
		}
		remaining := line.Quantity
		for i := range po.Items {
			item := &po.Items[i]
			if item.ProductID != line.ProductID || !remaining.IsPositive() {
				continue
			}
			receivable := decimal.Min(remaining, item.Remaining())
			if !receivable.IsPositive() {
				continue
			}
			item.ReceivedQuantity = item.ReceivedQuantity.Add(receivable)
			remaining = remaining.Sub(receivable)
			received = append(received, ReceivedLine{
				PurchaseOrderItemID: item.ID,
				ProductID:           item.ProductID,
				Quantity:            receivable,
				UnitCost:            item.UnitCost,
				ExpirationDate:      line.ExpirationDate,
				ManufacturingDate:   line.ManufacturingDate,
			})
		}
	}
	if len(received) == 0 {
		return nil, nil
	}
	po.recomputeStatus()
	po.IncrementVersion()
	po.Touch()
	return received, nil
}

func (po *PurchaseOrder) recomputeStatus() {
	complete, started := true, false
	for i := range po.Items {
		if !po.Items[i].IsComplete() {
			complete = false
		}
		if po.Items[i].ReceivedQuantity.IsPositive() {
			started = true
		}
	}
	switch {
	case complete:
		now := time.Now()
		po.Status = PurchaseOrderStatusReceived
		po.ReceivedAt = &now
	case started:
		po.Status = PurchaseOrderStatusPartial
	}
}

// ReceivingRecord captures exactly what one receiving call booked
type ReceivingRecord struct {
	shared.BaseEntity
	TenantID        uuid.UUID
	PurchaseOrderID uuid.UUID
	LocationID      uuid.UUID
	ReceivedBy      uuid.UUID
	Lines           []ReceivedLine
	TotalCost       decimal.Decimal
	Notes           string
}

// NewReceivingRecord totals the booked lines
func NewReceivingRecord(po *PurchaseOrder, receivedBy uuid.UUID, lines []ReceivedLine, notes string) *ReceivingRecord {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Cost())
	}
	return &ReceivingRecord{
		BaseEntity:      shared.NewBaseEntity(),
		TenantID:        po.TenantID,
		PurchaseOrderID: po.ID,
		LocationID:      po.LocationID,
		ReceivedBy:      receivedBy,
		Lines:           lines,
		TotalCost:       total.Round(2),
		Notes:           notes,
	}
}
