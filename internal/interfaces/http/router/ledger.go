package router

import (
	"github.com/erp/ledger/internal/interfaces/http/handler"
)

// Handlers bundles the ledger HTTP handlers
type Handlers struct {
	Sale       *handler.SaleHandler
	Receiving  *handler.ReceivingHandler
	Return     *handler.ReturnHandler
	Transfer   *handler.TransferHandler
	Stock      *handler.StockHandler
	Alert      *handler.AlertHandler
	CashDrawer *handler.CashDrawerHandler
	Credit     *handler.CreditHandler
}

// LedgerGroups builds the trade, inventory and finance route groups
func LedgerGroups(h Handlers) []RouteRegistrar {
	trade := NewDomainGroup("trade", "/trade")
	trade.POST("/sales", h.Sale.Create).
		GET("/sales/:id", h.Sale.Get).
		POST("/purchase-orders/:id/receive", h.Receiving.Receive).
		POST("/returns", h.Return.Create)

	inventory := NewDomainGroup("inventory", "/inventory")
	inventory.Group("transfers", "/transfers").
		POST("", h.Transfer.Create).
		GET("/:id", h.Transfer.Get).
		POST("/:id/submit", h.Transfer.Submit).
		POST("/:id/approve", h.Transfer.Approve).
		POST("/:id/ship", h.Transfer.Ship).
		POST("/:id/receive", h.Transfer.Receive).
		POST("/:id/cancel", h.Transfer.Cancel)
	inventory.POST("/adjustments", h.Stock.Adjust).
		GET("/stock", h.Stock.GetStock)
	inventory.Group("alerts", "/alerts").
		GET("", h.Alert.List).
		POST("/scan", h.Alert.Scan).
		POST("/:id/snooze", h.Alert.Snooze)

	finance := NewDomainGroup("finance", "/finance")
	finance.Group("cash-drawers", "/cash-drawers").
		POST("", h.CashDrawer.Open).
		GET("/:id", h.CashDrawer.Get).
		POST("/:id/close", h.CashDrawer.Close).
		POST("/:id/movements", h.CashDrawer.RecordMovement)
	finance.Group("credit", "/credit").
		GET("/:customer_id", h.Credit.GetAccount).
		POST("/:customer_id/payments", h.Credit.RecordPayment)

	return []RouteRegistrar{trade, inventory, finance}
}
