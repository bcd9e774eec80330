package persistence

import (
	"context"

	"github.com/erp/ledger/internal/application/ledger"
	"github.com/erp/ledger/internal/domain/audit"
	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// Every repository handed to the callback shares the same *gorm.DB.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos ledger.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepositories{db: tx})
	})
}

// Query runs fn against repositories on the plain connection pool
func (s *GormTransactionScope) Query(ctx context.Context, fn func(repos ledger.Repositories) error) error {
	return fn(&gormRepositories{db: s.db.WithContext(ctx)})
}

type gormRepositories struct {
	db *gorm.DB
}

func (r *gormRepositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.db)
}

func (r *gormRepositories) Batches() inventory.StockBatchRepository {
	return NewGormStockBatchRepository(r.db)
}

func (r *gormRepositories) Alerts() inventory.StockAlertRepository {
	return NewGormStockAlertRepository(r.db)
}

func (r *gormRepositories) Transfers() inventory.StockTransferRepository {
	return NewGormStockTransferRepository(r.db)
}

func (r *gormRepositories) Sales() trade.SaleRepository {
	return NewGormSaleRepository(r.db)
}

func (r *gormRepositories) PurchaseOrders() trade.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.db)
}

func (r *gormRepositories) Receivings() trade.ReceivingRecordRepository {
	return NewGormReceivingRecordRepository(r.db)
}

func (r *gormRepositories) Returns() trade.ReturnRepository {
	return NewGormReturnRepository(r.db)
}

func (r *gormRepositories) Customers() finance.CustomerAccountRepository {
	return NewGormCustomerAccountRepository(r.db)
}

func (r *gormRepositories) CreditTransactions() finance.CreditTransactionRepository {
	return NewGormCreditTransactionRepository(r.db)
}

func (r *gormRepositories) CashDrawers() finance.CashDrawerRepository {
	return NewGormCashDrawerRepository(r.db)
}

func (r *gormRepositories) CashTransactions() finance.CashTransactionRepository {
	return NewGormCashTransactionRepository(r.db)
}

func (r *gormRepositories) Expenses() finance.ExpenseRepository {
	return NewGormExpenseRepository(r.db)
}

func (r *gormRepositories) Audit() audit.Sink {
	return NewGormAuditRepository(r.db)
}

// Ensure GormTransactionScope implements TransactionScope
var _ ledger.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormRepositories implements Repositories
var _ ledger.Repositories = (*gormRepositories)(nil)
