package inventory

import (
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NoExpiryKey is the persisted batch key of stock without an expiration date
const NoExpiryKey = "none"

const expiryKeyLayout = "2006-01-02"

// BatchKey identifies one ledger row: a product at a location with an
// optional expiration date.
type BatchKey struct {
	ProductID      uuid.UUID
	LocationID     uuid.UUID
	ExpirationDate *time.Time
}

// NewBatchKey normalizes the expiration date to a calendar day
func NewBatchKey(productID, locationID uuid.UUID, expiration *time.Time) BatchKey {
	return BatchKey{
		ProductID:      productID,
		LocationID:     locationID,
		ExpirationDate: NormalizeDate(expiration),
	}
}

// ExpiryKey returns the expiration part of the key as stored
func (k BatchKey) ExpiryKey() string {
	return ExpiryKeyOf(k.ExpirationDate)
}

// ExpiryKeyOf formats an optional expiration date as a batch key component
func ExpiryKeyOf(t *time.Time) string {
	if t == nil {
		return NoExpiryKey
	}
	return t.UTC().Format(expiryKeyLayout)
}

// NormalizeDate truncates a date to midnight UTC; nil stays nil
func NormalizeDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	d := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

// StockBatch is the ledger row holding quantity on hand for one batch key.
// Quantity never goes below zero and rows are never deleted.
type StockBatch struct {
	shared.BaseEntity
	TenantID          uuid.UUID
	ProductID         uuid.UUID
	LocationID        uuid.UUID
	ExpirationDate    *time.Time
	ManufacturingDate *time.Time
	Quantity          decimal.Decimal
}

// NewStockBatch creates a batch row
func NewStockBatch(tenantID uuid.UUID, key BatchKey, manufacturingDate *time.Time, quantity decimal.Decimal) (*StockBatch, error) {
	if quantity.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Batch quantity cannot be negative")
	}
	return &StockBatch{
		BaseEntity:        shared.NewBaseEntity(),
		TenantID:          tenantID,
		ProductID:         key.ProductID,
		LocationID:        key.LocationID,
		ExpirationDate:    NormalizeDate(key.ExpirationDate),
		ManufacturingDate: NormalizeDate(manufacturingDate),
		Quantity:          quantity,
	}, nil
}

// Key returns the identity of the batch
func (b *StockBatch) Key() BatchKey {
	return BatchKey{ProductID: b.ProductID, LocationID: b.LocationID, ExpirationDate: b.ExpirationDate}
}

// ExpiryKey returns the persisted expiration key
func (b *StockBatch) ExpiryKey() string {
	return ExpiryKeyOf(b.ExpirationDate)
}

// HasStock returns true if the batch has quantity on hand
func (b *StockBatch) HasStock() bool {
	return b.Quantity.IsPositive()
}

// ExpiresWithin reports whether the batch expires no later than days after now.
// Already expired batches qualify.
func (b *StockBatch) ExpiresWithin(now time.Time, days int) bool {
	if b.ExpirationDate == nil {
		return false
	}
	today := NormalizeDate(&now)
	return !b.ExpirationDate.After(today.AddDate(0, 0, days))
}

// TotalQuantity sums the quantity of the given batches
func TotalQuantity(batches []StockBatch) decimal.Decimal {
	total := decimal.Zero
	for i := range batches {
		total = total.Add(batches[i].Quantity)
	}
	return total
}
