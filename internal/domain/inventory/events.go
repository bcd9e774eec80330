package inventory

import (
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// EventTypeStockChanged is published after a committed ledger mutation
const EventTypeStockChanged = "inventory.stock_changed"

// AggregateTypeStockLedger names the ledger as an event source
const AggregateTypeStockLedger = "StockLedger"

// StockChangedEvent tells subscribers that quantities moved for an
// organization. It carries the touched products and locations.
type StockChangedEvent struct {
	shared.BaseDomainEvent
	Reason      string      `json:"reason"`
	ProductIDs  []uuid.UUID `json:"product_ids"`
	LocationIDs []uuid.UUID `json:"location_ids"`
}

// NewStockChangedEvent creates a stock changed event for the operation that
// caused it (sourceID is the sale, receipt, transfer, return or adjustment).
func NewStockChangedEvent(tenantID, sourceID uuid.UUID, reason string, productIDs, locationIDs []uuid.UUID) *StockChangedEvent {
	return &StockChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockChanged, AggregateTypeStockLedger, sourceID, tenantID),
		Reason:          reason,
		ProductIDs:      dedupe(productIDs),
		LocationIDs:     dedupe(locationIDs),
	}
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == uuid.Nil {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
