package ledger

import (
	"context"

	"github.com/erp/ledger/internal/domain/audit"
	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/trade"
)

// TransactionScope provides transactional access to the ledger repositories.
// All repository operations performed inside Execute are committed or rolled
// back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction. If fn returns an error
	// the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos Repositories) error) error
	// Query runs fn against repositories that are not bound to a transaction.
	Query(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories groups every repository a ledger operation may touch. Inside
// Execute they all share the same transaction.
type Repositories interface {
	Products() catalog.ProductRepository
	Batches() inventory.StockBatchRepository
	Alerts() inventory.StockAlertRepository
	Transfers() inventory.StockTransferRepository
	Sales() trade.SaleRepository
	PurchaseOrders() trade.PurchaseOrderRepository
	Receivings() trade.ReceivingRecordRepository
	Returns() trade.ReturnRepository
	Customers() finance.CustomerAccountRepository
	CreditTransactions() finance.CreditTransactionRepository
	CashDrawers() finance.CashDrawerRepository
	CashTransactions() finance.CashTransactionRepository
	Expenses() finance.ExpenseRepository
	Audit() audit.Sink
}
