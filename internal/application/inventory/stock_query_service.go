package inventory

import (
	"context"

	"github.com/erp/ledger/internal/application/ledger"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/google/uuid"
)

// StockQueryService is the read-only view of the stock ledger
type StockQueryService struct {
	exec   *ledger.Executor
	policy inventory.ConsumptionPolicy
}

// NewStockQueryService creates a new StockQueryService
func NewStockQueryService(exec *ledger.Executor, policy inventory.ConsumptionPolicy) *StockQueryService {
	if policy == nil {
		policy = inventory.NewFIFOConsumptionPolicy()
	}
	return &StockQueryService{exec: exec, policy: policy}
}

// GetStockLevel returns the on-hand quantity of a product at a location with
// its batches in consumption order
func (s *StockQueryService) GetStockLevel(ctx context.Context, tenantID, productID, locationID uuid.UUID) (*StockLevelResponse, error) {
	var resp *StockLevelResponse
	err := s.exec.Query(ctx, func(ctx context.Context, repos ledger.Repositories) error {
		batches, err := repos.Batches().FindByProductLocation(ctx, tenantID, productID, locationID)
		if err != nil {
			return err
		}
		ordered := s.policy.Order(batches)
		resp = &StockLevelResponse{
			ProductID:  productID,
			LocationID: locationID,
			Quantity:   inventory.TotalQuantity(ordered),
			Batches:    make([]BatchResponse, 0, len(ordered)),
		}
		for i := range ordered {
			resp.Batches = append(resp.Batches, toBatchResponse(&ordered[i]))
		}
		return nil
	})
	return resp, err
}

// ListBatches returns ledger rows matching the query. Empty rows are hidden
// unless requested.
func (s *StockQueryService) ListBatches(ctx context.Context, tenantID uuid.UUID, q StockQuery) ([]BatchResponse, error) {
	var out []BatchResponse
	err := s.exec.Query(ctx, func(ctx context.Context, repos ledger.Repositories) error {
		var (
			batches []inventory.StockBatch
			err     error
		)
		if q.ProductID != nil && q.LocationID != nil {
			batches, err = repos.Batches().FindByProductLocation(ctx, tenantID, *q.ProductID, *q.LocationID)
		} else {
			batches, err = repos.Batches().FindByTenant(ctx, tenantID)
		}
		if err != nil {
			return err
		}
		out = make([]BatchResponse, 0, len(batches))
		for i := range batches {
			b := &batches[i]
			if q.ProductID != nil && b.ProductID != *q.ProductID {
				continue
			}
			if q.LocationID != nil && b.LocationID != *q.LocationID {
				continue
			}
			if !q.WithEmpty && !b.HasStock() {
				continue
			}
			out = append(out, toBatchResponse(b))
		}
		return nil
	})
	return out, err
}
