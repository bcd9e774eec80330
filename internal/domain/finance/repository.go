package finance

import (
	"context"

	"github.com/google/uuid"
)

// CustomerAccountRepository persists credit account heads
type CustomerAccountRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*CustomerAccount, error)
	Create(ctx context.Context, account *CustomerAccount) error
	// SaveWithLock updates the account if its stored version is Version-1
	SaveWithLock(ctx context.Context, account *CustomerAccount) error
}

// CreditTransactionRepository appends credit ledger entries
type CreditTransactionRepository interface {
	Create(ctx context.Context, tx *CreditTransaction) error
	ListByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, limit int) ([]CreditTransaction, error)
}

// CashDrawerRepository persists cash drawers
type CashDrawerRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*CashDrawer, error)
	FindOpenByUser(ctx context.Context, tenantID, userID uuid.UUID) (*CashDrawer, error)
	FindOpenByLocation(ctx context.Context, tenantID, locationID uuid.UUID) (*CashDrawer, error)
	Create(ctx context.Context, drawer *CashDrawer) error
	SaveWithLock(ctx context.Context, drawer *CashDrawer) error
}

// CashTransactionRepository appends drawer entries
type CashTransactionRepository interface {
	Create(ctx context.Context, tx *CashTransaction) error
	ListByDrawer(ctx context.Context, tenantID, drawerID uuid.UUID) ([]CashTransaction, error)
}

// ExpenseRepository appends expense ledger entries
type ExpenseRepository interface {
	Create(ctx context.Context, entry *ExpenseEntry) error
	FindByReference(ctx context.Context, tenantID uuid.UUID, refType string, refID uuid.UUID) ([]ExpenseEntry, error)
}
