package trade

import (
	"context"

	"github.com/erp/ledger/internal/application/ledger"
	"github.com/erp/ledger/internal/domain/audit"
	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceivingService books supplier deliveries against purchase orders
type ReceivingService struct {
	exec            *ledger.Executor
	stock           *inventory.StockLedger
	expenseCategory string
}

// NewReceivingService creates a new ReceivingService. Received cost is
// booked under expenseCategory, "Inventory" when empty.
func NewReceivingService(exec *ledger.Executor, stock *inventory.StockLedger, expenseCategory string) *ReceivingService {
	if stock == nil {
		stock = inventory.NewStockLedger(nil)
	}
	if expenseCategory == "" {
		expenseCategory = finance.ExpenseCategoryInventory
	}
	return &ReceivingService{exec: exec, stock: stock, expenseCategory: expenseCategory}
}

type receivingAudit struct {
	Status    string          `json:"status"`
	Lines     int             `json:"lines,omitempty"`
	TotalCost decimal.Decimal `json:"total_cost,omitempty"`
}

// Receive books a delivery. Quantities beyond what remains on the order are
// dropped; a delivery with nothing receivable changes nothing.
func (s *ReceivingService) Receive(ctx context.Context, tenantID, userID, purchaseOrderID uuid.UUID, req ReceivePurchaseOrderRequest) (*ReceivingResponse, error) {
	lines := make([]trade.ReceiptLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, trade.ReceiptLine{
			ProductID:         item.ProductID,
			Quantity:          item.Quantity,
			ExpirationDate:    item.ExpirationDate,
			ManufacturingDate: item.ManufacturingDate,
		})
	}

	var (
		resp     *ReceivingResponse
		received []trade.ReceivedLine
		location uuid.UUID
	)
	err := s.exec.Run(ctx, tenantID, "purchase.receive", func(ctx context.Context, repos ledger.Repositories) error {
		po, err := repos.PurchaseOrders().FindByID(ctx, tenantID, purchaseOrderID)
		if err != nil {
			return err
		}
		before := receivingAudit{Status: string(po.Status)}
		location = po.LocationID

		received, err = po.Receive(lines)
		if err != nil {
			return err
		}
		resp = toReceivingResponse(po, received)
		if len(received) == 0 {
			return nil
		}

		for _, l := range received {
			key := inventory.NewBatchKey(l.ProductID, po.LocationID, l.ExpirationDate)
			if err := s.stock.Credit(ctx, repos.Batches(), tenantID, key, l.ManufacturingDate, l.Quantity); err != nil {
				return err
			}
		}
		if err := repos.PurchaseOrders().SaveWithLock(ctx, po); err != nil {
			return err
		}

		record := trade.NewReceivingRecord(po, userID, received, req.Notes)
		if err := repos.Receivings().Create(ctx, record); err != nil {
			return err
		}
		resp.ReceivingRecordID = &record.ID

		if record.TotalCost.IsPositive() {
			expense, err := finance.NewExpenseEntry(tenantID, s.expenseCategory, record.TotalCost, "CASH",
				"Goods received on "+po.OrderNumber,
				finance.Reference{Type: finance.ReferenceReceiving, ID: record.ID, CreatedBy: userID, Note: po.OrderNumber})
			if err != nil {
				return err
			}
			if err := repos.Expenses().Create(ctx, expense); err != nil {
				return err
			}
			resp.ExpenseEntryID = &expense.ID
		}

		return audit.Log(ctx, repos.Audit(), tenantID, userID, audit.Entry{
			Action:     audit.ActionPurchaseReceived,
			EntityType: "PurchaseOrder",
			EntityID:   po.ID,
			EntityName: po.OrderNumber,
			Before:     before,
			After:      receivingAudit{Status: string(po.Status), Lines: len(received), TotalCost: record.TotalCost},
		})
	})
	if err != nil {
		return nil, err
	}

	if len(received) > 0 {
		productIDs := make([]uuid.UUID, 0, len(received))
		for _, l := range received {
			productIDs = append(productIDs, l.ProductID)
		}
		s.exec.Publish(ctx, inventory.NewStockChangedEvent(tenantID, purchaseOrderID, "purchase_received", productIDs, []uuid.UUID{location}))
	}
	return resp, nil
}
