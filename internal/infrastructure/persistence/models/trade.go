package models

import (
	"time"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleModel is the persistence model for the Sale aggregate root.
type SaleModel struct {
	TenantAggregateModel
	SaleNumber     string              `gorm:"type:varchar(50);not null;index"`
	LocationID     uuid.UUID           `gorm:"type:uuid;not null;index"`
	CustomerID     *uuid.UUID          `gorm:"type:uuid;index"`
	CashierID      uuid.UUID           `gorm:"type:uuid;not null"`
	PaymentType    trade.PaymentType   `gorm:"type:varchar(20);not null"`
	PaymentMethod  trade.PaymentMethod `gorm:"type:varchar(20);not null"`
	AmountPaid     decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	CreditAmount   decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	ChangeGiven    decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Subtotal       decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	TaxTotal       decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountTotal  decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount    decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	RefundedAmount decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Status         trade.SaleStatus    `gorm:"type:varchar(20);not null;default:'COMPLETED'"`
	Notes          string              `gorm:"type:text"`
	Items          []SaleItemModel     `gorm:"foreignKey:SaleID;references:ID"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// SaleItemModel is one sale line
type SaleItemModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key"`
	SaleID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName       string          `gorm:"type:varchar(200);not null"`
	Quantity          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CostPriceSnapshot decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Discount          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Tax               decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LineTotal         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (SaleItemModel) TableName() string {
	return "sale_items"
}

// ToDomain converts the persistence model to a domain Sale aggregate.
func (m *SaleModel) ToDomain() *trade.Sale {
	s := &trade.Sale{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		SaleNumber:          m.SaleNumber,
		LocationID:          m.LocationID,
		CustomerID:          m.CustomerID,
		CashierID:           m.CashierID,
		PaymentType:         m.PaymentType,
		PaymentMethod:       m.PaymentMethod,
		AmountPaid:          m.AmountPaid,
		CreditAmount:        m.CreditAmount,
		ChangeGiven:         m.ChangeGiven,
		Subtotal:            m.Subtotal,
		TaxTotal:            m.TaxTotal,
		DiscountTotal:       m.DiscountTotal,
		TotalAmount:         m.TotalAmount,
		RefundedAmount:      m.RefundedAmount,
		Status:              m.Status,
		Notes:               m.Notes,
		Items:               make([]trade.SaleItem, len(m.Items)),
	}
	for i, item := range m.Items {
		s.Items[i] = trade.SaleItem{
			ID:                item.ID,
			SaleID:            item.SaleID,
			ProductID:         item.ProductID,
			ProductName:       item.ProductName,
			Quantity:          item.Quantity,
			UnitPrice:         item.UnitPrice,
			CostPriceSnapshot: item.CostPriceSnapshot,
			Discount:          item.Discount,
			Tax:               item.Tax,
			LineTotal:         item.LineTotal,
		}
	}
	return s
}

// SaleModelFromDomain creates a new persistence model from a domain Sale aggregate.
func SaleModelFromDomain(s *trade.Sale) *SaleModel {
	m := &SaleModel{
		SaleNumber:     s.SaleNumber,
		LocationID:     s.LocationID,
		CustomerID:     s.CustomerID,
		CashierID:      s.CashierID,
		PaymentType:    s.PaymentType,
		PaymentMethod:  s.PaymentMethod,
		AmountPaid:     s.AmountPaid,
		CreditAmount:   s.CreditAmount,
		ChangeGiven:    s.ChangeGiven,
		Subtotal:       s.Subtotal,
		TaxTotal:       s.TaxTotal,
		DiscountTotal:  s.DiscountTotal,
		TotalAmount:    s.TotalAmount,
		RefundedAmount: s.RefundedAmount,
		Status:         s.Status,
		Notes:          s.Notes,
		Items:          make([]SaleItemModel, len(s.Items)),
	}
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	for i, item := range s.Items {
		m.Items[i] = SaleItemModel{
			ID:                item.ID,
			SaleID:            s.ID,
			ProductID:         item.ProductID,
			ProductName:       item.ProductName,
			Quantity:          item.Quantity,
			UnitPrice:         item.UnitPrice,
			CostPriceSnapshot: item.CostPriceSnapshot,
			Discount:          item.Discount,
			Tax:               item.Tax,
			LineTotal:         item.LineTotal,
		}
	}
	return m
}

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate root.
type PurchaseOrderModel struct {
	TenantAggregateModel
	OrderNumber string                    `gorm:"type:varchar(50);not null;index"`
	SupplierID  uuid.UUID                 `gorm:"type:uuid;not null;index"`
	LocationID  uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Status      trade.PurchaseOrderStatus `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	SentAt      *time.Time
	ReceivedAt  *time.Time
	Items       []PurchaseOrderItemModel `gorm:"foreignKey:PurchaseOrderID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// PurchaseOrderItemModel is one ordered product
type PurchaseOrderItemModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	PurchaseOrderID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null"`
	OrderedQuantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReceivedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitCost         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItemModel) TableName() string {
	return "purchase_order_items"
}

// ToDomain converts the persistence model to a domain PurchaseOrder aggregate.
func (m *PurchaseOrderModel) ToDomain() *trade.PurchaseOrder {
	po := &trade.PurchaseOrder{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		OrderNumber:         m.OrderNumber,
		SupplierID:          m.SupplierID,
		LocationID:          m.LocationID,
		Status:              m.Status,
		SentAt:              m.SentAt,
		ReceivedAt:          m.ReceivedAt,
		Items:               make([]trade.PurchaseOrderItem, len(m.Items)),
	}
	for i, item := range m.Items {
		po.Items[i] = trade.PurchaseOrderItem{
			ID:               item.ID,
			PurchaseOrderID:  item.PurchaseOrderID,
			ProductID:        item.ProductID,
			OrderedQuantity:  item.OrderedQuantity,
			ReceivedQuantity: item.ReceivedQuantity,
			UnitCost:         item.UnitCost,
		}
	}
	return po
}

// PurchaseOrderModelFromDomain creates a new persistence model from a domain PurchaseOrder aggregate.
func PurchaseOrderModelFromDomain(po *trade.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{
		OrderNumber: po.OrderNumber,
		SupplierID:  po.SupplierID,
		LocationID:  po.LocationID,
		Status:      po.Status,
		SentAt:      po.SentAt,
		ReceivedAt:  po.ReceivedAt,
		Items:       make([]PurchaseOrderItemModel, len(po.Items)),
	}
	m.FromDomainTenantAggregateRoot(po.TenantAggregateRoot)
	for i, item := range po.Items {
		m.Items[i] = PurchaseOrderItemModel{
			ID:               item.ID,
			PurchaseOrderID:  po.ID,
			ProductID:        item.ProductID,
			OrderedQuantity:  item.OrderedQuantity,
			ReceivedQuantity: item.ReceivedQuantity,
			UnitCost:         item.UnitCost,
		}
	}
	return m
}

// ReceivingRecordModel is the persistence model for one receiving call
type ReceivingRecordModel struct {
	TenantModel
	PurchaseOrderID uuid.UUID                  `gorm:"type:uuid;not null;index"`
	LocationID      uuid.UUID                  `gorm:"type:uuid;not null"`
	ReceivedBy      uuid.UUID                  `gorm:"type:uuid;not null"`
	TotalCost       decimal.Decimal            `gorm:"type:decimal(18,4);not null;default:0"`
	Notes           string                     `gorm:"type:text"`
	Lines           []ReceivingRecordLineModel `gorm:"foreignKey:ReceivingRecordID;references:ID"`
}

// TableName returns the table name for GORM
func (ReceivingRecordModel) TableName() string {
	return "receiving_records"
}

// ReceivingRecordLineModel is one booked delivery line
type ReceivingRecordLineModel struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primary_key"`
	ReceivingRecordID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	PurchaseOrderItemID uuid.UUID       `gorm:"type:uuid;not null"`
	ProductID           uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity            decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost            decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ExpirationDate      *time.Time      `gorm:"type:date"`
	ManufacturingDate   *time.Time      `gorm:"type:date"`
}

// TableName returns the table name for GORM
func (ReceivingRecordLineModel) TableName() string {
	return "receiving_record_lines"
}

// ToDomain converts the persistence model to a domain ReceivingRecord.
func (m *ReceivingRecordModel) ToDomain() *trade.ReceivingRecord {
	r := &trade.ReceivingRecord{
		BaseEntity:      m.BaseModel.ToDomain(),
		TenantID:        m.TenantID,
		PurchaseOrderID: m.PurchaseOrderID,
		LocationID:      m.LocationID,
		ReceivedBy:      m.ReceivedBy,
		TotalCost:       m.TotalCost,
		Notes:           m.Notes,
		Lines:           make([]trade.ReceivedLine, len(m.Lines)),
	}
	for i, l := range m.Lines {
		r.Lines[i] = trade.ReceivedLine{
			PurchaseOrderItemID: l.PurchaseOrderItemID,
			ProductID:           l.ProductID,
			Quantity:            l.Quantity,
			UnitCost:            l.UnitCost,
			ExpirationDate:      inventory.NormalizeDate(l.ExpirationDate),
			ManufacturingDate:   inventory.NormalizeDate(l.ManufacturingDate),
		}
	}
	return r
}

// ReceivingRecordModelFromDomain creates a new persistence model from a domain ReceivingRecord.
func ReceivingRecordModelFromDomain(r *trade.ReceivingRecord) *ReceivingRecordModel {
	m := &ReceivingRecordModel{
		PurchaseOrderID: r.PurchaseOrderID,
		LocationID:      r.LocationID,
		ReceivedBy:      r.ReceivedBy,
		TotalCost:       r.TotalCost,
		Notes:           r.Notes,
		Lines:           make([]ReceivingRecordLineModel, len(r.Lines)),
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	m.TenantID = r.TenantID
	for i, l := range r.Lines {
		m.Lines[i] = ReceivingRecordLineModel{
			ID:                  uuid.New(),
			ReceivingRecordID:   r.ID,
			PurchaseOrderItemID: l.PurchaseOrderItemID,
			ProductID:           l.ProductID,
			Quantity:            l.Quantity,
			UnitCost:            l.UnitCost,
			ExpirationDate:      l.ExpirationDate,
			ManufacturingDate:   l.ManufacturingDate,
		}
	}
	return m
}

// SalesReturnModel is the persistence model for the Return aggregate root.
type SalesReturnModel struct {
	TenantAggregateModel
	ReturnNumber  string                 `gorm:"type:varchar(50);not null;index"`
	SaleID        uuid.UUID              `gorm:"type:uuid;not null;index"`
	LocationID    uuid.UUID              `gorm:"type:uuid;not null"`
	CustomerID    *uuid.UUID             `gorm:"type:uuid"`
	Reason        string                 `gorm:"type:varchar(500)"`
	Status        trade.ReturnStatus     `gorm:"type:varchar(20);not null;default:'COMPLETED'"`
	RefundAmount  decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	RefundChannel trade.RefundChannel    `gorm:"type:varchar(20)"`
	Unfunded      bool                   `gorm:"not null;default:false"`
	ProcessedBy   uuid.UUID              `gorm:"type:uuid;not null"`
	Items         []SalesReturnItemModel `gorm:"foreignKey:ReturnID;references:ID"`
}

// TableName returns the table name for GORM
func (SalesReturnModel) TableName() string {
	return "sales_returns"
}

// SalesReturnItemModel is one returned line
type SalesReturnItemModel struct {
	ID           uuid.UUID               `gorm:"type:uuid;primary_key"`
	ReturnID     uuid.UUID               `gorm:"type:uuid;not null;index"`
	SaleItemID   uuid.UUID               `gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID               `gorm:"type:uuid;not null"`
	Quantity     decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	UnitPrice    decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	RefundAmount decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Condition    trade.ItemCondition     `gorm:"type:varchar(20);not null"`
	Disposition  trade.ReturnDisposition `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (SalesReturnItemModel) TableName() string {
	return "sales_return_items"
}

// ToDomain converts the persistence model to a domain Return aggregate.
func (m *SalesReturnModel) ToDomain() *trade.Return {
	r := &trade.Return{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		ReturnNumber:        m.ReturnNumber,
		SaleID:              m.SaleID,
		LocationID:          m.LocationID,
		CustomerID:          m.CustomerID,
		Reason:              m.Reason,
		Status:              m.Status,
		RefundAmount:        m.RefundAmount,
		RefundChannel:       m.RefundChannel,
		Unfunded:            m.Unfunded,
		ProcessedBy:         m.ProcessedBy,
		Items:               make([]trade.ReturnItem, len(m.Items)),
	}
	for i, item := range m.Items {
		r.Items[i] = trade.ReturnItem{
			ID:           item.ID,
			ReturnID:     item.ReturnID,
			SaleItemID:   item.SaleItemID,
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			RefundAmount: item.RefundAmount,
			Condition:    item.Condition,
			Disposition:  item.Disposition,
		}
	}
	return r
}

// SalesReturnModelFromDomain creates a new persistence model from a domain Return aggregate.
func SalesReturnModelFromDomain(r *trade.Return) *SalesReturnModel {
	m := &SalesReturnModel{
		ReturnNumber:  r.ReturnNumber,
		SaleID:        r.SaleID,
		LocationID:    r.LocationID,
		CustomerID:    r.CustomerID,
		Reason:        r.Reason,
		Status:        r.Status,
		RefundAmount:  r.RefundAmount,
		RefundChannel: r.RefundChannel,
		Unfunded:      r.Unfunded,
		ProcessedBy:   r.ProcessedBy,
		Items:         make([]SalesReturnItemModel, len(r.Items)),
	}
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	for i, item := range r.Items {
		m.Items[i] = SalesReturnItemModel{
			ID:           item.ID,
			ReturnID:     r.ID,
			SaleItemID:   item.SaleItemID,
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			RefundAmount: item.RefundAmount,
			Condition:    item.Condition,
			Disposition:  item.Disposition,
		}
	}
	return m
}
