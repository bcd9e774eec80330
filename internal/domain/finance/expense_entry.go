package finance

import (
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense categories
const (
	ExpenseCategorySupplies  = "Supplies"
	ExpenseCategoryInventory = "Inventory"
	ExpenseCategoryOther     = "Other"
)

// ExpenseStatus of an expense entry
type ExpenseStatus string

const (
	ExpenseStatusPaid    ExpenseStatus = "PAID"
	ExpenseStatusPending ExpenseStatus = "PENDING"
)

// ExpenseEntry is a line in the expense ledger
type ExpenseEntry struct {
	shared.BaseEntity
	TenantID      uuid.UUID
	Category      string
	Amount        decimal.Decimal
	PaymentMethod string
	Status        ExpenseStatus
	Description   string
	Reference     Reference
	IncurredAt    time.Time
}

// NewExpenseEntry records a paid expense
func NewExpenseEntry(tenantID uuid.UUID, category string, amount decimal.Decimal, paymentMethod, description string, ref Reference) (*ExpenseEntry, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Expense amount must be positive")
	}
	if category == "" {
		category = ExpenseCategoryOther
	}
	return &ExpenseEntry{
		BaseEntity:    shared.NewBaseEntity(),
		TenantID:      tenantID,
		Category:      category,
		Amount:        amount,
		PaymentMethod: paymentMethod,
		Status:        ExpenseStatusPaid,
		Description:   description,
		Reference:     ref,
		IncurredAt:    time.Now(),
	}, nil
}
