package finance

import (
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DrawerStatus is OPEN or CLOSED
type DrawerStatus string

const (
	DrawerStatusOpen   DrawerStatus = "OPEN"
	DrawerStatusClosed DrawerStatus = "CLOSED"
)

// CashTransactionType classifies a drawer entry
type CashTransactionType string

const (
	CashTransactionOpening CashTransactionType = "OPENING"
	CashTransactionSale    CashTransactionType = "SALE"
	CashTransactionRefund  CashTransactionType = "REFUND"
	CashTransactionCashIn  CashTransactionType = "CASH_IN"
	CashTransactionCashOut CashTransactionType = "CASH_OUT"
)

// CashDrawer is one cash session of a user at a location. At most one drawer
// is OPEN per user and per location.
type CashDrawer struct {
	shared.TenantAggregateRoot
	LocationID      uuid.UUID
	UserID          uuid.UUID
	Status          DrawerStatus
	OpeningBalance  decimal.Decimal
	CurrentBalance  decimal.Decimal
	ExpectedBalance decimal.Decimal
	ActualCounted   *decimal.Decimal
	Discrepancy     *decimal.Decimal
	OpenedAt        time.Time
	ClosedAt        *time.Time
	Notes           string
}

// OpenCashDrawer starts a session with the float counted into the drawer
func OpenCashDrawer(tenantID, locationID, userID uuid.UUID, openingBalance decimal.Decimal) (*CashDrawer, *CashTransaction, error) {
	if locationID == uuid.Nil || userID == uuid.Nil {
		return nil, nil, shared.NewDomainError(shared.CodeInvalidInput, "Location and user are required")
	}
	if openingBalance.IsNegative() {
		return nil, nil, shared.NewDomainError(shared.CodeInvalidInput, "Opening balance cannot be negative")
	}
	d := &CashDrawer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		LocationID:          locationID,
		UserID:              userID,
		Status:              DrawerStatusOpen,
		OpeningBalance:      openingBalance,
		CurrentBalance:      openingBalance,
		ExpectedBalance:     openingBalance,
		OpenedAt:            time.Now(),
	}
	d.SetCreatedBy(userID)
	return d, d.entry(CashTransactionOpening, openingBalance, Reference{Type: ReferenceManual, CreatedBy: userID}), nil
}

// IsOpen reports OPEN
func (d *CashDrawer) IsOpen() bool {
	return d.Status == DrawerStatusOpen
}

func (d *CashDrawer) requireOpen() error {
	if !d.IsOpen() {
		return shared.Errorf(shared.CodeInvalidState, "Cash drawer %s is closed", d.ID)
	}
	return nil
}

// RecordSale adds cash received for a sale
func (d *CashDrawer) RecordSale(amount decimal.Decimal, ref Reference) (*CashTransaction, error) {
	return d.move(CashTransactionSale, amount, false, ref)
}

// RecordRefund pays a refund out of the drawer
func (d *CashDrawer) RecordRefund(amount decimal.Decimal, ref Reference) (*CashTransaction, error) {
	return d.move(CashTransactionRefund, amount, true, ref)
}

// CashIn adds cash that is not a sale
func (d *CashDrawer) CashIn(amount decimal.Decimal, ref Reference) (*CashTransaction, error) {
	return d.move(CashTransactionCashIn, amount, false, ref)
}

// CashOut removes cash that is not a refund; it cannot exceed the balance
func (d *CashDrawer) CashOut(amount decimal.Decimal, ref Reference) (*CashTransaction, error) {
	if amount.GreaterThan(d.CurrentBalance) {
		return nil, shared.Errorf(shared.CodeInvalidInput, "Cash out %s exceeds drawer balance %s", amount.StringFixed(2), d.CurrentBalance.StringFixed(2))
	}
	return d.move(CashTransactionCashOut, amount, true, ref)
}

func (d *CashDrawer) move(t CashTransactionType, amount decimal.Decimal, outflow bool, ref Reference) (*CashTransaction, error) {
	if err := d.requireOpen(); err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Cash movement amount must be positive")
	}
	signed := amount
	if outflow {
		signed = amount.Neg()
	}
	d.CurrentBalance = d.CurrentBalance.Add(signed)
	d.ExpectedBalance = d.CurrentBalance
	d.IncrementVersion()
	d.Touch()
	return d.entry(t, signed, ref), nil
}

func (d *CashDrawer) entry(t CashTransactionType, signed decimal.Decimal, ref Reference) *CashTransaction {
	return &CashTransaction{
		BaseEntity:   shared.NewBaseEntity(),
		TenantID:     d.TenantID,
		DrawerID:     d.ID,
		Type:         t,
		Amount:       signed,
		BalanceAfter: d.CurrentBalance,
		Reference:    ref,
	}
}

// Close counts the drawer; discrepancy = actual counted - expected
func (d *CashDrawer) Close(actualCounted decimal.Decimal, notes string) error {
	if err := d.requireOpen(); err != nil {
		return err
	}
	if actualCounted.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Counted cash cannot be negative")
	}
	now := time.Now()
	discrepancy := actualCounted.Sub(d.ExpectedBalance)
	d.Status = DrawerStatusClosed
	d.ActualCounted = &actualCounted
	d.Discrepancy = &discrepancy
	d.ClosedAt = &now
	d.Notes = notes
	d.IncrementVersion()
	d.Touch()
	return nil
}

// CashTransaction is an append-only drawer entry with a signed amount
type CashTransaction struct {
	shared.BaseEntity
	TenantID     uuid.UUID
	DrawerID     uuid.UUID
	Type         CashTransactionType
	Amount       decimal.Decimal
	BalanceAfter decimal.Decimal
	Reference    Reference
}
