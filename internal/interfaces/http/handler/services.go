package handler

import (
	"context"

	financeapp "github.com/erp/ledger/internal/application/finance"
	inventoryapp "github.com/erp/ledger/internal/application/inventory"
	tradeapp "github.com/erp/ledger/internal/application/trade"
	"github.com/google/uuid"
)

// SaleService is the part of tradeapp.SaleService the handlers call
type SaleService interface {
	ProcessSale(ctx context.Context, tenantID, userID uuid.UUID, req tradeapp.ProcessSaleRequest) (*tradeapp.SaleResponse, error)
	GetSale(ctx context.Context, tenantID, saleID uuid.UUID) (*tradeapp.SaleResponse, error)
}

// ReceivingService books deliveries against purchase orders
type ReceivingService interface {
	Receive(ctx context.Context, tenantID, userID, purchaseOrderID uuid.UUID, req tradeapp.ReceivePurchaseOrderRequest) (*tradeapp.ReceivingResponse, error)
}

// ReturnService books customer returns
type ReturnService interface {
	ProcessReturn(ctx context.Context, tenantID, userID uuid.UUID, req tradeapp.ProcessReturnRequest) (*tradeapp.ReturnResponse, error)
}

// TransferService drives the transfer workflow
type TransferService interface {
	Create(ctx context.Context, tenantID, userID uuid.UUID, req inventoryapp.CreateTransferRequest) (*inventoryapp.TransferResponse, error)
	Submit(ctx context.Context, tenantID, userID, transferID uuid.UUID) (*inventoryapp.TransferResponse, error)
	Approve(ctx context.Context, tenantID, userID, transferID uuid.UUID) (*inventoryapp.TransferResponse, error)
	Ship(ctx context.Context, tenantID, userID, transferID uuid.UUID) (*inventoryapp.TransferResponse, error)
	Receive(ctx context.Context, tenantID, userID, transferID uuid.UUID) (*inventoryapp.TransferResponse, error)
	Cancel(ctx context.Context, tenantID, userID, transferID uuid.UUID, req inventoryapp.CancelTransferRequest) (*inventoryapp.TransferResponse, error)
	Get(ctx context.Context, tenantID, transferID uuid.UUID) (*inventoryapp.TransferResponse, error)
}

// AdjustmentService corrects batch quantities
type AdjustmentService interface {
	Adjust(ctx context.Context, tenantID, userID uuid.UUID, req inventoryapp.AdjustStockRequest) (*inventoryapp.AdjustmentResponse, error)
}

// StockQueryService reads the stock ledger
type StockQueryService interface {
	GetStockLevel(ctx context.Context, tenantID, productID, locationID uuid.UUID) (*inventoryapp.StockLevelResponse, error)
	ListBatches(ctx context.Context, tenantID uuid.UUID, q inventoryapp.StockQuery) ([]inventoryapp.BatchResponse, error)
}

// AlertService lists, snoozes and rescans stock alerts
type AlertService interface {
	Scan(ctx context.Context, tenantID uuid.UUID) (*inventoryapp.ScanResult, error)
	Snooze(ctx context.Context, tenantID, userID, alertID uuid.UUID, req inventoryapp.SnoozeAlertRequest) (*inventoryapp.AlertResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter inventoryapp.AlertListFilter) ([]inventoryapp.AlertResponse, int64, error)
}

// CashDrawerService manages cash sessions
type CashDrawerService interface {
	Open(ctx context.Context, tenantID, userID uuid.UUID, req financeapp.OpenDrawerRequest) (*financeapp.CashDrawerResponse, error)
	Close(ctx context.Context, tenantID, userID, drawerID uuid.UUID, req financeapp.CloseDrawerRequest) (*financeapp.CashDrawerResponse, error)
	RecordMovement(ctx context.Context, tenantID, userID, drawerID uuid.UUID, req financeapp.DrawerMovementRequest) (*financeapp.CashTransactionResponse, error)
	Get(ctx context.Context, tenantID, drawerID uuid.UUID) (*financeapp.CashDrawerResponse, error)
}

// CreditService manages customer credit balances
type CreditService interface {
	RecordPayment(ctx context.Context, tenantID, userID, customerID uuid.UUID, req financeapp.RecordPaymentRequest) (*financeapp.CreditAccountResponse, error)
	GetAccount(ctx context.Context, tenantID, customerID uuid.UUID) (*financeapp.CreditAccountResponse, error)
}

var (
	_ SaleService       = (*tradeapp.SaleService)(nil)
	_ ReceivingService  = (*tradeapp.ReceivingService)(nil)
	_ ReturnService     = (*tradeapp.ReturnService)(nil)
	_ TransferService   = (*inventoryapp.TransferService)(nil)
	_ AdjustmentService = (*inventoryapp.AdjustmentService)(nil)
	_ StockQueryService = (*inventoryapp.StockQueryService)(nil)
	_ AlertService      = (*inventoryapp.AlertEngine)(nil)
	_ CashDrawerService = (*financeapp.CashDrawerService)(nil)
	_ CreditService     = (*financeapp.CreditService)(nil)
)
