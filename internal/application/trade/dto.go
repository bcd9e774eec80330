package trade

import (
	"time"

	"github.com/erp/ledger/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleLineInput is one requested line of a sale
type SaleLineInput struct {
	ProductID uuid.UUID        `json:"product_id"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	Discount  decimal.Decimal  `json:"discount"`
}

// ProcessSaleRequest is the input of ProcessSale
type ProcessSaleRequest struct {
	LocationID    uuid.UUID       `json:"location_id"`
	CustomerID    *uuid.UUID      `json:"customer_id,omitempty"`
	Items         []SaleLineInput `json:"items"`
	PaymentMethod string          `json:"payment_method"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	IsCredit      bool            `json:"is_credit"`
	Notes         string          `json:"notes"`
}

// SaleItemResponse is one priced sale line
type SaleItemResponse struct {
	ID                uuid.UUID       `json:"id"`
	ProductID         uuid.UUID       `json:"product_id"`
	ProductName       string          `json:"product_name"`
	Quantity          decimal.Decimal `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	CostPriceSnapshot decimal.Decimal `json:"cost_price_snapshot"`
	Discount          decimal.Decimal `json:"discount"`
	Tax               decimal.Decimal `json:"tax"`
	LineTotal         decimal.Decimal `json:"line_total"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID             uuid.UUID          `json:"id"`
	SaleNumber     string             `json:"sale_number"`
	LocationID     uuid.UUID          `json:"location_id"`
	CustomerID     *uuid.UUID         `json:"customer_id,omitempty"`
	CashierID      uuid.UUID          `json:"cashier_id"`
	Items          []SaleItemResponse `json:"items"`
	PaymentType    string             `json:"payment_type"`
	PaymentMethod  string             `json:"payment_method"`
	AmountPaid     decimal.Decimal    `json:"amount_paid"`
	CreditAmount   decimal.Decimal    `json:"credit_amount"`
	ChangeGiven    decimal.Decimal    `json:"change_given"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	TaxTotal       decimal.Decimal    `json:"tax_total"`
	DiscountTotal  decimal.Decimal    `json:"discount_total"`
	TotalAmount    decimal.Decimal    `json:"total_amount"`
	RefundedAmount decimal.Decimal    `json:"refunded_amount"`
	Status         string             `json:"status"`
	CashDrawerID   *uuid.UUID         `json:"cash_drawer_id,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

// ToSaleResponse converts a domain sale
func ToSaleResponse(s *trade.Sale) *SaleResponse {
	resp := &SaleResponse{
		ID:             s.ID,
		SaleNumber:     s.SaleNumber,
		LocationID:     s.LocationID,
		CustomerID:     s.CustomerID,
		CashierID:      s.CashierID,
		Items:          make([]SaleItemResponse, 0, len(s.Items)),
		PaymentType:    string(s.PaymentType),
		PaymentMethod:  string(s.PaymentMethod),
		AmountPaid:     s.AmountPaid,
		CreditAmount:   s.CreditAmount,
		ChangeGiven:    s.ChangeGiven,
		Subtotal:       s.Subtotal,
		TaxTotal:       s.TaxTotal,
		DiscountTotal:  s.DiscountTotal,
		TotalAmount:    s.TotalAmount,
		RefundedAmount: s.RefundedAmount,
		Status:         string(s.Status),
		CreatedAt:      s.CreatedAt,
	}
	for _, item := range s.Items {
		resp.Items = append(resp.Items, SaleItemResponse{
			ID:                item.ID,
			ProductID:         item.ProductID,
			ProductName:       item.ProductName,
			Quantity:          item.Quantity,
			UnitPrice:         item.UnitPrice,
			CostPriceSnapshot: item.CostPriceSnapshot,
			Discount:          item.Discount,
			Tax:               item.Tax,
			LineTotal:         item.LineTotal,
		})
	}
	return resp
}

// ReceiptLineInput is one delivered product
type ReceiptLineInput struct {
	ProductID         uuid.UUID       `json:"product_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	ExpirationDate    *time.Time      `json:"expiration_date,omitempty"`
	ManufacturingDate *time.Time      `json:"manufacturing_date,omitempty"`
}

// ReceivePurchaseOrderRequest is the input of Receive
type ReceivePurchaseOrderRequest struct {
	Items []ReceiptLineInput `json:"items"`
	Notes string             `json:"notes"`
}

// ReceivedLineResponse is one booked delivery line
type ReceivedLineResponse struct {
	ProductID         uuid.UUID       `json:"product_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	ExpirationDate    *time.Time      `json:"expiration_date,omitempty"`
	ManufacturingDate *time.Time      `json:"manufacturing_date,omitempty"`
}

// PurchaseOrderItemResponse shows progress of an ordered product
type PurchaseOrderItemResponse struct {
	ID               uuid.UUID       `json:"id"`
	ProductID        uuid.UUID       `json:"product_id"`
	OrderedQuantity  decimal.Decimal `json:"ordered_quantity"`
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
}

// ReceivingResponse reports what a receiving call booked
type ReceivingResponse struct {
	PurchaseOrderID   uuid.UUID                   `json:"purchase_order_id"`
	OrderNumber       string                      `json:"order_number"`
	Status            string                      `json:"status"`
	ReceivingRecordID *uuid.UUID                  `json:"receiving_record_id,omitempty"`
	ExpenseEntryID    *uuid.UUID                  `json:"expense_entry_id,omitempty"`
	TotalCost         decimal.Decimal             `json:"total_cost"`
	Received          []ReceivedLineResponse      `json:"received"`
	Items             []PurchaseOrderItemResponse `json:"items"`
}

func toReceivingResponse(po *trade.PurchaseOrder, lines []trade.ReceivedLine) *ReceivingResponse {
	resp := &ReceivingResponse{
		PurchaseOrderID: po.ID,
		OrderNumber:     po.OrderNumber,
		Status:          string(po.Status),
		TotalCost:       decimal.Zero,
		Received:        make([]ReceivedLineResponse, 0, len(lines)),
		Items:           make([]PurchaseOrderItemResponse, 0, len(po.Items)),
	}
	for _, l := range lines {
		resp.Received = append(resp.Received, ReceivedLineResponse{
			ProductID:         l.ProductID,
			Quantity:          l.Quantity,
			UnitCost:          l.UnitCost,
			ExpirationDate:    l.ExpirationDate,
			ManufacturingDate: l.ManufacturingDate,
		})
		resp.TotalCost = resp.TotalCost.Add(l.Cost())
	}
	for _, item := range po.Items {
		resp.Items = append(resp.Items, PurchaseOrderItemResponse{
			ID:               item.ID,
			ProductID:        item.ProductID,
			OrderedQuantity:  item.OrderedQuantity,
			ReceivedQuantity: item.ReceivedQuantity,
			UnitCost:         item.UnitCost,
		})
	}
	resp.TotalCost = resp.TotalCost.Round(2)
	return resp
}

// ReturnLineInput is one returned line
type ReturnLineInput struct {
	SaleItemID  *uuid.UUID      `json:"sale_item_id,omitempty"`
	ProductID   uuid.UUID       `json:"product_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Condition   string          `json:"condition"`
	Disposition string          `json:"disposition"`
}

// ProcessReturnRequest is the input of ProcessReturn
type ProcessReturnRequest struct {
	SaleID uuid.UUID         `json:"sale_id"`
	Items  []ReturnLineInput `json:"items"`
	Reason string            `json:"reason"`
}

// ReturnItemResponse is one accepted returned line
type ReturnItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	SaleItemID   uuid.UUID       `json:"sale_item_id"`
	ProductID    uuid.UUID       `json:"product_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
	Condition    string          `json:"condition"`
	Disposition  string          `json:"disposition"`
}

// ReturnResponse represents a return in API responses
type ReturnResponse struct {
	ID            uuid.UUID            `json:"id"`
	ReturnNumber  string               `json:"return_number"`
	SaleID        uuid.UUID            `json:"sale_id"`
	LocationID    uuid.UUID            `json:"location_id"`
	CustomerID    *uuid.UUID           `json:"customer_id,omitempty"`
	Reason        string               `json:"reason,omitempty"`
	Status        string               `json:"status"`
	Items         []ReturnItemResponse `json:"items"`
	RefundAmount  decimal.Decimal      `json:"refund_amount"`
	RefundChannel string               `json:"refund_channel"`
	Unfunded      bool                 `json:"unfunded"`
	SaleStatus    string               `json:"sale_status"`
	CreatedAt     time.Time            `json:"created_at"`
}

func toReturnResponse(r *trade.Return, sale *trade.Sale) *ReturnResponse {
	resp := &ReturnResponse{
		ID:            r.ID,
		ReturnNumber:  r.ReturnNumber,
		SaleID:        r.SaleID,
		LocationID:    r.LocationID,
		CustomerID:    r.CustomerID,
		Reason:        r.Reason,
		Status:        string(r.Status),
		Items:         make([]ReturnItemResponse, 0, len(r.Items)),
		RefundAmount:  r.RefundAmount,
		RefundChannel: string(r.RefundChannel),
		Unfunded:      r.Unfunded,
		SaleStatus:    string(sale.Status),
		CreatedAt:     r.CreatedAt,
	}
	for _, item := range r.Items {
		resp.Items = append(resp.Items, ReturnItemResponse{
			ID:           item.ID,
			SaleItemID:   item.SaleItemID,
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			RefundAmount: item.RefundAmount,
			Condition:    string(item.Condition),
			Disposition:  string(item.Disposition),
		})
	}
	return resp
}
