package inventory

import (
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferStatus is the lifecycle of a stock transfer
type TransferStatus string

const (
	TransferStatusDraft     TransferStatus = "DRAFT"
	TransferStatusPending   TransferStatus = "PENDING"
	TransferStatusApproved  TransferStatus = "APPROVED"
	TransferStatusInTransit TransferStatus = "IN_TRANSIT"
	TransferStatusReceived  TransferStatus = "RECEIVED"
	TransferStatusCancelled TransferStatus = "CANCELLED"
)

var transferTransitions = map[TransferStatus]TransferStatus{
	TransferStatusDraft:     TransferStatusPending,
	TransferStatusPending:   TransferStatusApproved,
	TransferStatusApproved:  TransferStatusInTransit,
	TransferStatusInTransit: TransferStatusReceived,
}

// IsTerminal reports RECEIVED or CANCELLED
func (s TransferStatus) IsTerminal() bool {
	return s == TransferStatusReceived || s == TransferStatusCancelled
}

// CanTransitionTo reports whether the lifecycle allows moving to next
func (s TransferStatus) CanTransitionTo(next TransferStatus) bool {
	if next == TransferStatusCancelled {
		return !s.IsTerminal()
	}
	return transferTransitions[s] == next
}

// TransferItemBatch records the batch key a shipped amount came from
type TransferItemBatch struct {
	ID                uuid.UUID
	ExpirationDate    *time.Time
	ManufacturingDate *time.Time
	Quantity          decimal.Decimal
}

// StockTransferItem is one product line of a transfer
type StockTransferItem struct {
	ID                uuid.UUID
	TransferID        uuid.UUID
	ProductID         uuid.UUID
	RequestedQuantity decimal.Decimal
	ShippedQuantity   decimal.Decimal
	ReceivedQuantity  decimal.Decimal
	Batches           []TransferItemBatch
}

// TransferLine is the input for one transfer item
type TransferLine struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
}

// StockTransfer moves stock between two locations of one organization.
// Stock leaves the source when shipped and reaches the destination when
// received, keeping the batch keys taken at ship time.
type StockTransfer struct {
	shared.TenantAggregateRoot
	TransferNumber        string
	SourceLocationID      uuid.UUID
	DestinationLocationID uuid.UUID
	Status                TransferStatus
	Notes                 string
	CancelReason          string
	Items                 []StockTransferItem
	SubmittedAt           *time.Time
	ApprovedAt            *time.Time
	ShippedAt             *time.Time
	ReceivedAt            *time.Time
	CancelledAt           *time.Time
}

// NewStockTransfer creates a DRAFT transfer
func NewStockTransfer(tenantID, source, destination uuid.UUID, lines []TransferLine, notes string) (*StockTransfer, error) {
	if source == uuid.Nil || destination == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Source and destination locations are required")
	}
	if source == destination {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Source and destination locations must differ")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Transfer must have at least one item")
	}

	t := &StockTransfer{
		TenantAggregateRoot:   shared.NewTenantAggregateRoot(tenantID),
		SourceLocationID:      source,
		DestinationLocationID: destination,
		Status:                TransferStatusDraft,
		Notes:                 notes,
	}
	seen := make(map[uuid.UUID]int, len(lines))
	for _, line := range lines {
		if line.ProductID == uuid.Nil || !line.Quantity.IsPositive() {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Each item needs a product and a positive quantity")
		}
		if idx, ok := seen[line.ProductID]; ok {
			t.Items[idx].RequestedQuantity = t.Items[idx].RequestedQuantity.Add(line.Quantity)
			continue
		}
		seen[line.ProductID] = len(t.Items)
		t.Items = append(t.Items, StockTransferItem{
			ID:                uuid.New(),
			TransferID:        t.ID,
			ProductID:         line.ProductID,
			RequestedQuantity: line.Quantity,
			ShippedQuantity:   decimal.Zero,
			ReceivedQuantity:  decimal.Zero,
		})
	}
	return t, nil
}

func (t *StockTransfer) transition(next TransferStatus) error {
	if !t.Status.CanTransitionTo(next) {
		return shared.InvalidTransition("transfer", string(t.Status), string(next))
	}
	t.Status = next
	t.IncrementVersion()
	t.Touch()
	return nil
}

// Submit moves DRAFT to PENDING
func (t *StockTransfer) Submit() error {
	if err := t.transition(TransferStatusPending); err != nil {
		return err
	}
	now := time.Now()
	t.SubmittedAt = &now
	return nil
}

// Approve moves PENDING to APPROVED
func (t *StockTransfer) Approve() error {
	if err := t.transition(TransferStatusApproved); err != nil {
		return err
	}
	now := time.Now()
	t.ApprovedAt = &now
	return nil
}

// Ship moves APPROVED to IN_TRANSIT. takes holds the batches consumed at the
// source for each item ID and must cover every requested quantity.
func (t *StockTransfer) Ship(takes map[uuid.UUID][]BatchConsumption) error {
	if !t.Status.CanTransitionTo(TransferStatusInTransit) {
		return shared.InvalidTransition("transfer", string(t.Status), string(TransferStatusInTransit))
	}
	for i := range t.Items {
		item := &t.Items[i]
		shipped := decimal.Zero
		item.Batches = item.Batches[:0]
		for _, take := range takes[item.ID] {
			item.Batches = append(item.Batches, TransferItemBatch{
				ID:                uuid.New(),
				ExpirationDate:    take.ExpirationDate,
				ManufacturingDate: take.ManufacturingDate,
				Quantity:          take.Quantity,
			})
			shipped = shipped.Add(take.Quantity)
		}
		if !shipped.Equal(item.RequestedQuantity) {
			return shared.Errorf(shared.CodeInvalidState, "Shipped quantity %s does not match requested %s", shipped, item.RequestedQuantity)
		}
		item.ShippedQuantity = shipped
	}
	if err := t.transition(TransferStatusInTransit); err != nil {
		return err
	}
	now := time.Now()
	t.ShippedAt = &now
	return nil
}

// Receive moves IN_TRANSIT to RECEIVED
func (t *StockTransfer) Receive() error {
	if err := t.transition(TransferStatusReceived); err != nil {
		return err
	}
	for i := range t.Items {
		t.Items[i].ReceivedQuantity = t.Items[i].ShippedQuantity
	}
	now := time.Now()
	t.ReceivedAt = &now
	return nil
}

// Cancel moves any non-terminal transfer to CANCELLED. It reports whether
// stock had already left the source and has to be restored.
func (t *StockTransfer) Cancel(reason string) (bool, error) {
	wasInTransit := t.Status == TransferStatusInTransit
	if err := t.transition(TransferStatusCancelled); err != nil {
		return false, err
	}
	now := time.Now()
	t.CancelledAt = &now
	t.CancelReason = reason
	return wasInTransit, nil
}
