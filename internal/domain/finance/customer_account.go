package finance

import (
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditStatus is the standing of a customer's credit account
type CreditStatus string

const (
	CreditStatusGood    CreditStatus = "GOOD"
	CreditStatusWarning CreditStatus = "WARNING"
	CreditStatusBlocked CreditStatus = "BLOCKED"
)

// CreditTransactionType classifies a credit ledger entry
type CreditTransactionType string

const (
	CreditTransactionSale    CreditTransactionType = "SALE"
	CreditTransactionPayment CreditTransactionType = "PAYMENT"
	CreditTransactionReturn  CreditTransactionType = "RETURN"
)

// CustomerAccount is the head of a customer's credit ledger. Balance is what
// the customer owes. BLOCKED is only lifted explicitly.
type CustomerAccount struct {
	shared.TenantAggregateRoot
	Name         string
	Balance      decimal.Decimal
	CreditLimit  decimal.Decimal
	CreditStatus CreditStatus
	Active       bool
}

// NewCustomerAccount opens an account with a zero balance
func NewCustomerAccount(tenantID uuid.UUID, name string, creditLimit decimal.Decimal) (*CustomerAccount, error) {
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Customer name cannot be empty")
	}
	if creditLimit.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Credit limit cannot be negative")
	}
	return &CustomerAccount{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Balance:             decimal.Zero,
		CreditLimit:         creditLimit,
		CreditStatus:        CreditStatusGood,
		Active:              true,
	}, nil
}

// CanBuyOnCredit fails for inactive or blocked customers
func (a *CustomerAccount) CanBuyOnCredit() error {
	if !a.Active || a.CreditStatus == CreditStatusBlocked {
		return shared.Errorf(shared.CodeCustomerCreditBlocked, "Customer %s cannot buy on credit", a.Name)
	}
	return nil
}

// Charge books a credit sale
func (a *CustomerAccount) Charge(amount decimal.Decimal, ref Reference) (*CreditTransaction, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Charge amount must be positive")
	}
	if err := a.CanBuyOnCredit(); err != nil {
		return nil, err
	}
	a.Balance = a.Balance.Add(amount)
	return a.post(CreditTransactionSale, amount, ref), nil
}

// ApplyReturn reduces the balance by a refund, never below zero. It returns
// the entry (nil when nothing was owed) and the amount applied.
func (a *CustomerAccount) ApplyReturn(refund decimal.Decimal, ref Reference) (*CreditTransaction, decimal.Decimal) {
	applied := decimal.Min(a.Balance, refund)
	if !applied.IsPositive() {
		return nil, decimal.Zero
	}
	a.Balance = a.Balance.Sub(applied)
	return a.post(CreditTransactionReturn, applied.Neg(), ref), applied
}

// ReceivePayment books a payment against the balance
func (a *CustomerAccount) ReceivePayment(amount decimal.Decimal, ref Reference) (*CreditTransaction, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Payment amount must be positive")
	}
	if amount.GreaterThan(a.Balance) {
		return nil, shared.Errorf(shared.CodeInvalidInput, "Payment %s exceeds balance %s", amount.StringFixed(2), a.Balance.StringFixed(2))
	}
	a.Balance = a.Balance.Sub(amount)
	return a.post(CreditTransactionPayment, amount.Neg(), ref), nil
}

// Block stops further credit sales until Unblock
func (a *CustomerAccount) Block() {
	a.CreditStatus = CreditStatusBlocked
	a.IncrementVersion()
	a.Touch()
}

// Unblock lifts a block and re-derives the status from the balance
func (a *CustomerAccount) Unblock() {
	a.CreditStatus = CreditStatusGood
	a.recomputeStatus()
	a.IncrementVersion()
	a.Touch()
}

func (a *CustomerAccount) recomputeStatus() {
	if a.CreditStatus == CreditStatusBlocked {
		return
	}
	if a.Balance.GreaterThan(a.CreditLimit) {
		a.CreditStatus = CreditStatusWarning
	} else {
		a.CreditStatus = CreditStatusGood
	}
}

func (a *CustomerAccount) post(t CreditTransactionType, signed decimal.Decimal, ref Reference) *CreditTransaction {
	a.recomputeStatus()
	a.IncrementVersion()
	a.Touch()
	return &CreditTransaction{
		BaseEntity:   shared.NewBaseEntity(),
		TenantID:     a.TenantID,
		CustomerID:   a.ID,
		Type:         t,
		Amount:       signed,
		BalanceAfter: a.Balance,
		Reference:    ref,
	}
}

// Reference points a ledger entry at the document that caused it
type Reference struct {
	Type      string
	ID        uuid.UUID
	CreatedBy uuid.UUID
	Note      string
}

// Reference types
const (
	ReferenceSale      = "SALE"
	ReferenceReturn    = "RETURN"
	ReferenceReceiving = "RECEIVING"
	ReferencePayment   = "PAYMENT"
	ReferenceManual    = "MANUAL"
)

// CreditTransaction is an append-only credit ledger entry. Amount is signed:
// positive increases what the customer owes.
type CreditTransaction struct {
	shared.BaseEntity
	TenantID     uuid.UUID
	CustomerID   uuid.UUID
	Type         CreditTransactionType
	Amount       decimal.Decimal
	BalanceAfter decimal.Decimal
	Reference    Reference
}
