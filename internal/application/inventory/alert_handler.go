package inventory

import (
	"context"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
)

// AlertScanHandler starts a background alert scan whenever the ledger moves
type AlertScanHandler struct {
	engine *AlertEngine
}

// NewAlertScanHandler creates a new AlertScanHandler
func NewAlertScanHandler(engine *AlertEngine) *AlertScanHandler {
	return &AlertScanHandler{engine: engine}
}

// EventTypes returns the event types this handler is interested in
func (h *AlertScanHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockChanged}
}

// Handle triggers the scan and returns immediately
func (h *AlertScanHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.engine.Trigger(ctx, event.TenantID())
	return nil
}
