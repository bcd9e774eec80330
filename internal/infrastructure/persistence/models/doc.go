// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
// - base.go: BaseModel, TenantModel and TenantAggregateModel
// - catalog.go: products
// - inventory.go: stock batches, alerts and transfers
// - trade.go: sales, purchase orders, receiving records and returns
// - finance.go: credit accounts, cash drawers and the expense ledger
// - audit.go: the audit trail
// - sequence.go: per-day document number counters
package models

// All returns every model in dependency order for AutoMigrate
func All() []any {
	return []any{
		&ProductModel{},
		&StockBatchModel{},
		&StockAlertModel{},
		&StockTransferModel{},
		&StockTransferItemModel{},
		&StockTransferItemBatchModel{},
		&SaleModel{},
		&SaleItemModel{},
		&PurchaseOrderModel{},
		&PurchaseOrderItemModel{},
		&ReceivingRecordModel{},
		&ReceivingRecordLineModel{},
		&SalesReturnModel{},
		&SalesReturnItemModel{},
		&CustomerAccountModel{},
		&CreditTransactionModel{},
		&CashDrawerModel{},
		&CashTransactionModel{},
		&ExpenseEntryModel{},
		&AuditRecordModel{},
		&DocumentSequenceModel{},
	}
}
