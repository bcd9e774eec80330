package inventory

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockLedger applies deductions and replenishments to batch rows through a
// repository bound to the caller's unit of work.
type StockLedger struct {
	policy ConsumptionPolicy
}

// NewStockLedger creates a ledger using the given consumption policy
func NewStockLedger(policy ConsumptionPolicy) *StockLedger {
	if policy == nil {
		policy = NewFIFOConsumptionPolicy()
	}
	return &StockLedger{policy: policy}
}

// Policy returns the consumption policy in use
func (l *StockLedger) Policy() ConsumptionPolicy {
	return l.policy
}

// Available returns the quantity on hand across all batches at a location
func (l *StockLedger) Available(ctx context.Context, repo StockBatchRepository, tenantID, productID, locationID uuid.UUID) (decimal.Decimal, error) {
	return repo.SumQuantity(ctx, tenantID, productID, locationID)
}

// Consume re-reads the batches, plans the takes and applies each one as a
// conditional decrement. A take that no longer fits fails the whole call
// with CONCURRENT_MODIFICATION; a plan that cannot be covered fails with
// INSUFFICIENT_STOCK.
func (l *StockLedger) Consume(ctx context.Context, repo StockBatchRepository, tenantID, productID, locationID uuid.UUID, quantity decimal.Decimal) ([]BatchConsumption, error) {
	batches, err := repo.FindForConsumption(ctx, tenantID, productID, locationID)
	if err != nil {
		return nil, err
	}
	takes, err := l.policy.Plan(quantity, batches)
	if err != nil {
		return nil, err
	}
	for _, take := range takes {
		if err := repo.Decrement(ctx, tenantID, take.BatchID, take.Quantity); err != nil {
			return nil, err
		}
	}
	return takes, nil
}

// Credit adds quantity to a batch key, creating the row if it does not exist
func (l *StockLedger) Credit(ctx context.Context, repo StockBatchRepository, tenantID uuid.UUID, key BatchKey, manufacturingDate *time.Time, quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Quantity to credit must be positive")
	}
	batch, err := NewStockBatch(tenantID, key, manufacturingDate, quantity)
	if err != nil {
		return err
	}
	return repo.Increment(ctx, batch)
}

// Restock returns quantity to the batch chosen by RestockTarget
func (l *StockLedger) Restock(ctx context.Context, repo StockBatchRepository, tenantID, productID, locationID uuid.UUID, quantity decimal.Decimal) (BatchKey, error) {
	batches, err := repo.FindByProductLocation(ctx, tenantID, productID, locationID)
	if err != nil {
		return BatchKey{}, err
	}
	key := RestockTarget(l.policy, productID, locationID, batches)
	if err := l.Credit(ctx, repo, tenantID, key, nil, quantity); err != nil {
		return BatchKey{}, err
	}
	return key, nil
}
