package inventory

import (
	"context"
	"errors"

	"github.com/erp/ledger/internal/application/ledger"
	"github.com/erp/ledger/internal/domain/audit"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdjustmentService books manual stock corrections on a single batch key
type AdjustmentService struct {
	exec  *ledger.Executor
	stock *inventory.StockLedger
}

// NewAdjustmentService creates a new AdjustmentService
func NewAdjustmentService(exec *ledger.Executor, stock *inventory.StockLedger) *AdjustmentService {
	if stock == nil {
		stock = inventory.NewStockLedger(nil)
	}
	return &AdjustmentService{exec: exec, stock: stock}
}

type adjustmentAudit struct {
	ExpiryKey string          `json:"expiry_key"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reason    string          `json:"reason,omitempty"`
}

// Adjust credits or debits the batch key in req. A debit never takes the
// batch below zero.
func (s *AdjustmentService) Adjust(ctx context.Context, tenantID, userID uuid.UUID, req AdjustStockRequest) (*AdjustmentResponse, error) {
	if req.Quantity.IsZero() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Adjustment quantity cannot be zero")
	}
	key := inventory.NewBatchKey(req.ProductID, req.LocationID, req.ExpirationDate)

	var resp *AdjustmentResponse
	err := s.exec.Run(ctx, tenantID, "stock.adjust", func(ctx context.Context, repos ledger.Repositories) error {
		product, err := repos.Products().FindByID(ctx, tenantID, req.ProductID)
		if err != nil {
			return err
		}

		before := decimal.Zero
		existing, err := repos.Batches().FindByKey(ctx, tenantID, key)
		switch {
		case err == nil:
			before = existing.Quantity
		case !errors.Is(err, shared.ErrNotFound):
			return err
		}

		if req.Quantity.IsPositive() {
			if err := s.stock.Credit(ctx, repos.Batches(), tenantID, key, req.ManufacturingDate, req.Quantity); err != nil {
				return err
			}
		} else {
			take := req.Quantity.Neg()
			if existing == nil || existing.Quantity.LessThan(take) {
				return shared.InsufficientStock(product.Name, before)
			}
			if err := repos.Batches().Decrement(ctx, tenantID, existing.ID, take); err != nil {
				return err
			}
		}

		// the row is locked by our write now; read what it really holds
		updated, err := repos.Batches().FindByKey(ctx, tenantID, key)
		if err != nil {
			return err
		}
		after := updated.Quantity
		before = after.Sub(req.Quantity)

		total, err := s.stock.Available(ctx, repos.Batches(), tenantID, req.ProductID, req.LocationID)
		if err != nil {
			return err
		}
		resp = &AdjustmentResponse{
			ProductID:      req.ProductID,
			LocationID:     req.LocationID,
			ExpirationDate: key.ExpirationDate,
			Adjusted:       req.Quantity,
			BatchQuantity:  after,
			TotalQuantity:  total,
		}
		return audit.Log(ctx, repos.Audit(), tenantID, userID, audit.Entry{
			Action:     audit.ActionStockAdjusted,
			EntityType: "StockBatch",
			EntityID:   req.ProductID,
			EntityName: product.SKU,
			Before:     adjustmentAudit{ExpiryKey: key.ExpiryKey(), Quantity: before},
			After:      adjustmentAudit{ExpiryKey: key.ExpiryKey(), Quantity: after, Reason: req.Reason},
		})
	})
	if err != nil {
		return nil, err
	}

	s.exec.Publish(ctx, inventory.NewStockChangedEvent(tenantID, uuid.New(), "adjustment",
		[]uuid.UUID{req.ProductID}, []uuid.UUID{req.LocationID}))
	return resp, nil
}
