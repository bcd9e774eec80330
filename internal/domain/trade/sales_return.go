package trade

import (
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReturnDisposition controls whether returned goods go back on the shelf
type ReturnDisposition string

const (
	DispositionReturnToStock ReturnDisposition = "RETURN_TO_STOCK"
	DispositionDiscard       ReturnDisposition = "DISCARD"
)

// IsValid checks the disposition
func (d ReturnDisposition) IsValid() bool {
	return d == DispositionReturnToStock || d == DispositionDiscard
}

// ItemCondition describes the state of a returned item
type ItemCondition string

const (
	ConditionGood      ItemCondition = "GOOD"
	ConditionOpened    ItemCondition = "OPENED"
	ConditionDamaged   ItemCondition = "DAMAGED"
	ConditionDefective ItemCondition = "DEFECTIVE"
	ConditionExpired   ItemCondition = "EXPIRED"
)

// ReturnStatus is the state of a return
type ReturnStatus string

const (
	ReturnStatusCompleted ReturnStatus = "COMPLETED"
	ReturnStatusRejected  ReturnStatus = "REJECTED"
)

// RefundChannel is where the refund money came from
type RefundChannel string

const (
	RefundChannelCredit     RefundChannel = "CREDIT"
	RefundChannelCashDrawer RefundChannel = "CASH_DRAWER"
	RefundChannelUnfunded   RefundChannel = "UNFUNDED"
)

// ReturnLine is the requested content of one returned line
type ReturnLine struct {
	SaleItemID  *uuid.UUID
	ProductID   uuid.UUID
	Quantity    decimal.Decimal
	Condition   ItemCondition
	Disposition ReturnDisposition
}

// ReturnItem is one accepted returned line
type ReturnItem struct {
	ID           uuid.UUID
	ReturnID     uuid.UUID
	SaleItemID   uuid.UUID
	ProductID    uuid.UUID
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	RefundAmount decimal.Decimal
	Condition    ItemCondition
	Disposition  ReturnDisposition
}

// Return reverses part of a sale
type Return struct {
	shared.TenantAggregateRoot
	ReturnNumber  string
	SaleID        uuid.UUID
	LocationID    uuid.UUID
	CustomerID    *uuid.UUID
	Reason        string
	Status        ReturnStatus
	Items         []ReturnItem
	RefundAmount  decimal.Decimal
	RefundChannel RefundChannel
	Unfunded      bool
	ProcessedBy   uuid.UUID
}

// NewReturn validates lines against the sale and the quantities already
// returned per sale item (from non-rejected returns). Refunds are priced at
// the original unit price.
func NewReturn(sale *Sale, lines []ReturnLine, alreadyReturned map[uuid.UUID]decimal.Decimal, reason string, processedBy uuid.UUID) (*Return, error) {
	if err := sale.CanReturn(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Return must have at least one item")
	}

	ret := &Return{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(sale.TenantID),
		SaleID:              sale.ID,
		LocationID:          sale.LocationID,
		CustomerID:          sale.CustomerID,
		Reason:              reason,
		Status:              ReturnStatusCompleted,
		RefundAmount:        decimal.Zero,
		ProcessedBy:         processedBy,
	}
	ret.SetCreatedBy(processedBy)

	returned := make(map[uuid.UUID]decimal.Decimal, len(alreadyReturned))
	for id, q := range alreadyReturned {
		returned[id] = q
	}

	for _, line := range lines {
		if !line.Quantity.IsPositive() {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Return quantity must be positive")
		}
		if !line.Disposition.IsValid() {
			return nil, shared.Errorf(shared.CodeInvalidInput, "Unknown disposition %q", line.Disposition)
		}
		item, err := matchSaleItem(sale, line, returned)
		if err != nil {
			return nil, err
		}
		prior := returned[item.ID]
		if prior.Add(line.Quantity).GreaterThan(item.Quantity) {
			return nil, shared.Errorf(shared.CodeOverReturn,
				"Cannot return %s of %s: %s sold, %s already returned",
				line.Quantity, item.ProductName, item.Quantity, prior)
		}
		returned[item.ID] = prior.Add(line.Quantity)

		condition := line.Condition
		if condition == "" {
			condition = ConditionGood
		}
		refund := line.Quantity.Mul(item.UnitPrice).Round(2)
		ret.Items = append(ret.Items, ReturnItem{
			ID:           uuid.New(),
			ReturnID:     ret.ID,
			SaleItemID:   item.ID,
			ProductID:    item.ProductID,
			Quantity:     line.Quantity,
			UnitPrice:    item.UnitPrice,
			RefundAmount: refund,
			Condition:    condition,
			Disposition:  line.Disposition,
		})
		ret.RefundAmount = ret.RefundAmount.Add(refund)
	}
	return ret, nil
}

// matchSaleItem finds the sale line a return line refers to: the given sale
// item, else the first line of the product that can still take the quantity.
func matchSaleItem(sale *Sale, line ReturnLine, returned map[uuid.UUID]decimal.Decimal) (*SaleItem, error) {
	if line.SaleItemID != nil {
		item, ok := sale.FindItem(*line.SaleItemID)
		if !ok {
			return nil, shared.Errorf(shared.CodeInvalidInput, "Sale item %s is not part of sale %s", line.SaleItemID, sale.SaleNumber)
		}
		if line.ProductID != uuid.Nil && line.ProductID != item.ProductID {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Product does not match the sale item")
		}
		return item, nil
	}

	var fallback *SaleItem
	for i := range sale.Items {
		item := &sale.Items[i]
		if item.ProductID != line.ProductID {
			continue
		}
		if fallback == nil {
			fallback = item
		}
		if returned[item.ID].Add(line.Quantity).LessThanOrEqual(item.Quantity) {
			return item, nil
		}
	}
	if fallback == nil {
		return nil, shared.Errorf(shared.CodeInvalidInput, "Product %s was not sold in sale %s", line.ProductID, sale.SaleNumber)
	}
	return fallback, nil
}

// ReturnedBySaleItem sums this return's quantities per sale item
func (r *Return) ReturnedBySaleItem() map[uuid.UUID]decimal.Decimal {
	out := make(map[uuid.UUID]decimal.Decimal, len(r.Items))
	for _, item := range r.Items {
		out[item.SaleItemID] = out[item.SaleItemID].Add(item.Quantity)
	}
	return out
}

// SetRefundChannel records where the refund was paid from
func (r *Return) SetRefundChannel(channel RefundChannel) {
	r.RefundChannel = channel
	r.Unfunded = channel == RefundChannelUnfunded
}

// FullyReturned reports whether every sale line has been returned in full
func FullyReturned(sale *Sale, returned map[uuid.UUID]decimal.Decimal) bool {
	for i := range sale.Items {
		if returned[sale.Items[i].ID].LessThan(sale.Items[i].Quantity) {
			return false
		}
	}
	return true
}
