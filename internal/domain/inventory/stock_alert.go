package inventory

import (
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AlertType is the condition an alert reports
type AlertType string

const (
	AlertTypeLowStock     AlertType = "LOW_STOCK"
	AlertTypeOutOfStock   AlertType = "OUT_OF_STOCK"
	AlertTypeExpiringSoon AlertType = "EXPIRING_SOON"
)

// IsStockLevel reports whether the type belongs to the LOW_STOCK/OUT_OF_STOCK family
func (t AlertType) IsStockLevel() bool {
	return t == AlertTypeLowStock || t == AlertTypeOutOfStock
}

// IsValid checks the alert type
func (t AlertType) IsValid() bool {
	return t.IsStockLevel() || t == AlertTypeExpiringSoon
}

// AlertStatus is the lifecycle state of an alert
type AlertStatus string

const (
	AlertStatusActive   AlertStatus = "ACTIVE"
	AlertStatusSnoozed  AlertStatus = "SNOOZED"
	AlertStatusResolved AlertStatus = "RESOLVED"
)

// IsValid checks the alert status
func (s AlertStatus) IsValid() bool {
	switch s {
	case AlertStatusActive, AlertStatusSnoozed, AlertStatusResolved:
		return true
	}
	return false
}

// StockAlert is derived state written only by the alert scan. Snoozing is
// the one change a user can make.
type StockAlert struct {
	shared.BaseEntity
	TenantID          uuid.UUID
	ProductID         uuid.UUID
	LocationID        uuid.UUID
	AlertType         AlertType
	Status            AlertStatus
	CurrentQuantity   decimal.Decimal
	ThresholdQuantity decimal.Decimal
	ExpirationDate    *time.Time
	SnoozedUntil      *time.Time
	ResolvedAt        *time.Time
}

// NewStockAlert opens an ACTIVE alert
func NewStockAlert(tenantID, productID, locationID uuid.UUID, alertType AlertType, current, threshold decimal.Decimal) *StockAlert {
	return &StockAlert{
		BaseEntity:        shared.NewBaseEntity(),
		TenantID:          tenantID,
		ProductID:         productID,
		LocationID:        locationID,
		AlertType:         alertType,
		Status:            AlertStatusActive,
		CurrentQuantity:   current,
		ThresholdQuantity: threshold,
	}
}

// IsOpen reports ACTIVE or SNOOZED
func (a *StockAlert) IsOpen() bool {
	return a.Status == AlertStatusActive || a.Status == AlertStatusSnoozed
}

// Snooze defers an open alert until the given time
func (a *StockAlert) Snooze(until, now time.Time) error {
	if !a.IsOpen() {
		return shared.InvalidTransition("alert", string(a.Status), string(AlertStatusSnoozed))
	}
	if !until.After(now) {
		return shared.NewDomainError(shared.CodeInvalidInput, "Snooze time must be in the future")
	}
	a.Status = AlertStatusSnoozed
	a.SnoozedUntil = &until
	a.UpdatedAt = now
	return nil
}

// changeSeverity switches the type and always wakes the alert
func (a *StockAlert) changeSeverity(t AlertType, now time.Time) {
	a.AlertType = t
	a.wake(now)
}

func (a *StockAlert) wake(now time.Time) {
	a.Status = AlertStatusActive
	a.SnoozedUntil = nil
	a.UpdatedAt = now
}

// refresh updates the observed quantity and wakes an expired snooze
func (a *StockAlert) refresh(current decimal.Decimal, now time.Time) bool {
	changed := !a.CurrentQuantity.Equal(current)
	a.CurrentQuantity = current
	if a.Status == AlertStatusSnoozed && a.SnoozedUntil != nil && now.After(*a.SnoozedUntil) {
		a.wake(now)
		return true
	}
	if changed {
		a.UpdatedAt = now
	}
	return changed
}

// resolve closes the alert
func (a *StockAlert) resolve(now time.Time) {
	a.Status = AlertStatusResolved
	a.ResolvedAt = &now
	a.SnoozedUntil = nil
	a.UpdatedAt = now
}

// AlertChange describes what a reconciliation did
type AlertChange int

const (
	AlertUnchanged AlertChange = iota
	AlertCreated
	AlertUpdated
	AlertResolved
)

// StockLevelSeverity returns the alert type for an aggregate quantity, or
// false when the quantity is above the reorder point.
func StockLevelSeverity(quantity, reorderPoint decimal.Decimal) (AlertType, bool) {
	if quantity.GreaterThan(reorderPoint) {
		return "", false
	}
	if !quantity.IsPositive() {
		return AlertTypeOutOfStock, true
	}
	return AlertTypeLowStock, true
}

// AlertSubject is the product/location a reconciliation runs for
type AlertSubject struct {
	TenantID   uuid.UUID
	ProductID  uuid.UUID
	LocationID uuid.UUID
}

// ReconcileStockLevel applies the LOW_STOCK/OUT_OF_STOCK state machine. open
// is the current open alert of that family or nil. It returns the alert to
// persist (nil when nothing changes) and what happened.
func ReconcileStockLevel(open *StockAlert, subject AlertSubject, quantity, reorderPoint decimal.Decimal, now time.Time) (*StockAlert, AlertChange) {
	severity, low := StockLevelSeverity(quantity, reorderPoint)
	if !low {
		if open == nil {
			return nil, AlertUnchanged
		}
		open.CurrentQuantity = quantity
		open.resolve(now)
		return open, AlertResolved
	}

	if open == nil {
		alert := NewStockAlert(subject.TenantID, subject.ProductID, subject.LocationID, severity, quantity, reorderPoint)
		alert.CreatedAt, alert.UpdatedAt = now, now
		return alert, AlertCreated
	}

	if open.AlertType != severity {
		open.CurrentQuantity = quantity
		open.ThresholdQuantity = reorderPoint
		open.changeSeverity(severity, now)
		return open, AlertUpdated
	}

	thresholdChanged := !open.ThresholdQuantity.Equal(reorderPoint)
	open.ThresholdQuantity = reorderPoint
	if open.refresh(quantity, now) || thresholdChanged {
		return open, AlertUpdated
	}
	return nil, AlertUnchanged
}

// ReconcileExpiry applies the same lifecycle to EXPIRING_SOON. earliest is the
// earliest qualifying expiration date or nil when no stock qualifies;
// quantity is the stock in qualifying batches.
func ReconcileExpiry(open *StockAlert, subject AlertSubject, earliest *time.Time, quantity decimal.Decimal, alertDays int, now time.Time) (*StockAlert, AlertChange) {
	threshold := decimal.NewFromInt(int64(alertDays))
	if earliest == nil {
		if open == nil {
			return nil, AlertUnchanged
		}
		open.resolve(now)
		return open, AlertResolved
	}

	if open == nil {
		alert := NewStockAlert(subject.TenantID, subject.ProductID, subject.LocationID, AlertTypeExpiringSoon, quantity, threshold)
		alert.ExpirationDate = earliest
		alert.CreatedAt, alert.UpdatedAt = now, now
		return alert, AlertCreated
	}

	dateChanged := open.ExpirationDate == nil || !open.ExpirationDate.Equal(*earliest)
	open.ExpirationDate = earliest
	open.ThresholdQuantity = threshold
	if open.refresh(quantity, now) || dateChanged {
		open.UpdatedAt = now
		return open, AlertUpdated
	}
	return nil, AlertUnchanged
}

// EarliestExpiring finds the earliest expiration among batches with stock
// that expire within alertDays, along with their total quantity.
func EarliestExpiring(batches []StockBatch, alertDays int, now time.Time) (*time.Time, decimal.Decimal) {
	var earliest *time.Time
	qty := decimal.Zero
	for i := range batches {
		b := &batches[i]
		if !b.HasStock() || !b.ExpiresWithin(now, alertDays) {
			continue
		}
		qty = qty.Add(b.Quantity)
		if earliest == nil || b.ExpirationDate.Before(*earliest) {
			d := *b.ExpirationDate
			earliest = &d
		}
	}
	return earliest, qty
}
