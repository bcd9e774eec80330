package inventory

import (
	"sort"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BatchConsumption is one take from one batch
type BatchConsumption struct {
	BatchID           uuid.UUID
	ExpirationDate    *time.Time
	ManufacturingDate *time.Time
	Quantity          decimal.Decimal
}

// ConsumptionPolicy decides which batches satisfy a deduction
type ConsumptionPolicy interface {
	// Order returns the batches in the order they are consumed
	Order(batches []StockBatch) []StockBatch
	// Plan returns the takes needed to cover required, or INSUFFICIENT_STOCK
	Plan(required decimal.Decimal, batches []StockBatch) ([]BatchConsumption, error)
}

// FIFOConsumptionPolicy consumes the earliest expiration first. Batches
// without an expiration date come last, oldest row first.
type FIFOConsumptionPolicy struct{}

// NewFIFOConsumptionPolicy creates the FIFO policy
func NewFIFOConsumptionPolicy() FIFOConsumptionPolicy {
	return FIFOConsumptionPolicy{}
}

// Order sorts a copy of batches into consumption order
func (FIFOConsumptionPolicy) Order(batches []StockBatch) []StockBatch {
	ordered := make([]StockBatch, len(batches))
	copy(ordered, batches)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i].ExpirationDate, ordered[j].ExpirationDate
		switch {
		case a == nil && b == nil:
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		case a == nil:
			return false
		case b == nil:
			return true
		case !a.Equal(*b):
			return a.Before(*b)
		default:
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
	})
	return ordered
}

// Plan walks the batches in FIFO order taking min(remaining, batch quantity)
// from each until required is covered. Batches are never over-drawn.
func (p FIFOConsumptionPolicy) Plan(required decimal.Decimal, batches []StockBatch) ([]BatchConsumption, error) {
	if !required.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Quantity to consume must be positive")
	}
	available := TotalQuantity(batches)
	if available.LessThan(required) {
		return nil, shared.Errorf(shared.CodeInsufficientStock,
			"Insufficient stock: available %s, required %s", available.String(), required.String())
	}

	remaining := required
	takes := make([]BatchConsumption, 0, len(batches))
	for _, b := range p.Order(batches) {
		if !remaining.IsPositive() {
			break
		}
		if !b.HasStock() {
			continue
		}
		take := decimal.Min(remaining, b.Quantity)
		takes = append(takes, BatchConsumption{
			BatchID:           b.ID,
			ExpirationDate:    b.ExpirationDate,
			ManufacturingDate: b.ManufacturingDate,
			Quantity:          take,
		})
		remaining = remaining.Sub(take)
	}
	return takes, nil
}

// RestockTarget picks the batch key that a returned unit goes back to: the
// batch consumed last under the policy, or an untyped batch if none exist.
func RestockTarget(policy ConsumptionPolicy, productID, locationID uuid.UUID, batches []StockBatch) BatchKey {
	ordered := policy.Order(batches)
	if len(ordered) == 0 {
		return NewBatchKey(productID, locationID, nil)
	}
	return ordered[len(ordered)-1].Key()
}

var _ ConsumptionPolicy = FIFOConsumptionPolicy{}
