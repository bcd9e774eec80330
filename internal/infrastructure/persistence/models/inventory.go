package models

import (
	"time"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockBatchModel is the persistence model for one ledger row. The batch key
// is unique per organization; ExpiryKey holds the expiration date as text so
// rows without one still collide.
type StockBatchModel struct {
	BaseModel
	TenantID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_batch_key,priority:1"`
	ProductID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_batch_key,priority:2"`
	LocationID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_batch_key,priority:3"`
	ExpiryKey         string          `gorm:"type:varchar(10);not null;uniqueIndex:idx_stock_batch_key,priority:4"`
	ExpirationDate    *time.Time      `gorm:"type:date"`
	ManufacturingDate *time.Time      `gorm:"type:date"`
	Quantity          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (StockBatchModel) TableName() string {
	return "stock_batches"
}

// ToDomain converts the persistence model to a domain StockBatch entity.
func (m *StockBatchModel) ToDomain() *inventory.StockBatch {
	return &inventory.StockBatch{
		BaseEntity:        m.BaseModel.ToDomain(),
		TenantID:          m.TenantID,
		ProductID:         m.ProductID,
		LocationID:        m.LocationID,
		ExpirationDate:    inventory.NormalizeDate(m.ExpirationDate),
		ManufacturingDate: inventory.NormalizeDate(m.ManufacturingDate),
		Quantity:          m.Quantity,
	}
}

// StockBatchModelFromDomain creates a new persistence model from a domain StockBatch entity.
func StockBatchModelFromDomain(b *inventory.StockBatch) *StockBatchModel {
	m := &StockBatchModel{
		TenantID:          b.TenantID,
		ProductID:         b.ProductID,
		LocationID:        b.LocationID,
		ExpiryKey:         b.ExpiryKey(),
		ExpirationDate:    b.ExpirationDate,
		ManufacturingDate: b.ManufacturingDate,
		Quantity:          b.Quantity,
	}
	m.FromDomainBaseEntity(b.BaseEntity)
	return m
}

// StockAlertModel is the persistence model for the StockAlert entity.
type StockAlertModel struct {
	TenantModel
	ProductID         uuid.UUID             `gorm:"type:uuid;not null;index:idx_stock_alert_subject,priority:1"`
	LocationID        uuid.UUID             `gorm:"type:uuid;not null;index:idx_stock_alert_subject,priority:2"`
	AlertType         inventory.AlertType   `gorm:"type:varchar(20);not null"`
	Status            inventory.AlertStatus `gorm:"type:varchar(20);not null;index"`
	CurrentQuantity   decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	ThresholdQuantity decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	ExpirationDate    *time.Time            `gorm:"type:date"`
	SnoozedUntil      *time.Time
	ResolvedAt        *time.Time
}

// TableName returns the table name for GORM
func (StockAlertModel) TableName() string {
	return "stock_alerts"
}

// ToDomain converts the persistence model to a domain StockAlert entity.
func (m *StockAlertModel) ToDomain() *inventory.StockAlert {
	return &inventory.StockAlert{
		BaseEntity:        m.BaseModel.ToDomain(),
		TenantID:          m.TenantID,
		ProductID:         m.ProductID,
		LocationID:        m.LocationID,
		AlertType:         m.AlertType,
		Status:            m.Status,
		CurrentQuantity:   m.CurrentQuantity,
		ThresholdQuantity: m.ThresholdQuantity,
		ExpirationDate:    inventory.NormalizeDate(m.ExpirationDate),
		SnoozedUntil:      m.SnoozedUntil,
		ResolvedAt:        m.ResolvedAt,
	}
}

// StockAlertModelFromDomain creates a new persistence model from a domain StockAlert entity.
func StockAlertModelFromDomain(a *inventory.StockAlert) *StockAlertModel {
	m := &StockAlertModel{
		ProductID:         a.ProductID,
		LocationID:        a.LocationID,
		AlertType:         a.AlertType,
		Status:            a.Status,
		CurrentQuantity:   a.CurrentQuantity,
		ThresholdQuantity: a.ThresholdQuantity,
		ExpirationDate:    a.ExpirationDate,
		SnoozedUntil:      a.SnoozedUntil,
		ResolvedAt:        a.ResolvedAt,
	}
	m.FromDomainBaseEntity(a.BaseEntity)
	m.TenantID = a.TenantID
	return m
}

// StockTransferModel is the persistence model for the StockTransfer aggregate root.
type StockTransferModel struct {
	TenantAggregateModel
	TransferNumber        string                   `gorm:"type:varchar(50);not null;index"`
	SourceLocationID      uuid.UUID                `gorm:"type:uuid;not null;index"`
	DestinationLocationID uuid.UUID                `gorm:"type:uuid;not null;index"`
	Status                inventory.TransferStatus `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	Notes                 string                   `gorm:"type:text"`
	CancelReason          string                   `gorm:"type:varchar(500)"`
	SubmittedAt           *time.Time
	ApprovedAt            *time.Time
	ShippedAt             *time.Time
	ReceivedAt            *time.Time
	CancelledAt           *time.Time
	Items                 []StockTransferItemModel `gorm:"foreignKey:TransferID;references:ID"`
}

// TableName returns the table name for GORM
func (StockTransferModel) TableName() string {
	return "stock_transfers"
}

// StockTransferItemModel is one product line of a transfer
type StockTransferItemModel struct {
	ID                uuid.UUID                     `gorm:"type:uuid;primary_key"`
	TransferID        uuid.UUID                     `gorm:"type:uuid;not null;index"`
	ProductID         uuid.UUID                     `gorm:"type:uuid;not null"`
	RequestedQuantity decimal.Decimal               `gorm:"type:decimal(18,4);not null"`
	ShippedQuantity   decimal.Decimal               `gorm:"type:decimal(18,4);not null;default:0"`
	ReceivedQuantity  decimal.Decimal               `gorm:"type:decimal(18,4);not null;default:0"`
	Batches           []StockTransferItemBatchModel `gorm:"foreignKey:TransferItemID;references:ID"`
}

// TableName returns the table name for GORM
func (StockTransferItemModel) TableName() string {
	return "stock_transfer_items"
}

// StockTransferItemBatchModel records a batch key taken at ship time
type StockTransferItemBatchModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key"`
	TransferItemID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ExpirationDate    *time.Time      `gorm:"type:date"`
	ManufacturingDate *time.Time      `gorm:"type:date"`
	Quantity          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (StockTransferItemBatchModel) TableName() string {
	return "stock_transfer_item_batches"
}

// ToDomain converts the persistence model to a domain StockTransfer aggregate.
func (m *StockTransferModel) ToDomain() *inventory.StockTransfer {
	t := &inventory.StockTransfer{
		TenantAggregateRoot:   m.ToTenantAggregateRoot(),
		TransferNumber:        m.TransferNumber,
		SourceLocationID:      m.SourceLocationID,
		DestinationLocationID: m.DestinationLocationID,
		Status:                m.Status,
		Notes:                 m.Notes,
		CancelReason:          m.CancelReason,
		SubmittedAt:           m.SubmittedAt,
		ApprovedAt:            m.ApprovedAt,
		ShippedAt:             m.ShippedAt,
		ReceivedAt:            m.ReceivedAt,
		CancelledAt:           m.CancelledAt,
		Items:                 make([]inventory.StockTransferItem, len(m.Items)),
	}
	for i, item := range m.Items {
		di := inventory.StockTransferItem{
			ID:                item.ID,
			TransferID:        item.TransferID,
			ProductID:         item.ProductID,
			RequestedQuantity: item.RequestedQuantity,
			ShippedQuantity:   item.ShippedQuantity,
			ReceivedQuantity:  item.ReceivedQuantity,
		}
		for _, b := range item.Batches {
			di.Batches = append(di.Batches, inventory.TransferItemBatch{
				ID:                b.ID,
				ExpirationDate:    inventory.NormalizeDate(b.ExpirationDate),
				ManufacturingDate: inventory.NormalizeDate(b.ManufacturingDate),
				Quantity:          b.Quantity,
			})
		}
		t.Items[i] = di
	}
	return t
}

// StockTransferModelFromDomain creates a new persistence model from a domain StockTransfer aggregate.
func StockTransferModelFromDomain(t *inventory.StockTransfer) *StockTransferModel {
	m := &StockTransferModel{
		TransferNumber:        t.TransferNumber,
		SourceLocationID:      t.SourceLocationID,
		DestinationLocationID: t.DestinationLocationID,
		Status:                t.Status,
		Notes:                 t.Notes,
		CancelReason:          t.CancelReason,
		SubmittedAt:           t.SubmittedAt,
		ApprovedAt:            t.ApprovedAt,
		ShippedAt:             t.ShippedAt,
		ReceivedAt:            t.ReceivedAt,
		CancelledAt:           t.CancelledAt,
		Items:                 make([]StockTransferItemModel, len(t.Items)),
	}
	m.FromDomainTenantAggregateRoot(t.TenantAggregateRoot)
	for i, item := range t.Items {
		m.Items[i] = StockTransferItemModel{
			ID:                item.ID,
			TransferID:        t.ID,
			ProductID:         item.ProductID,
			RequestedQuantity: item.RequestedQuantity,
			ShippedQuantity:   item.ShippedQuantity,
			ReceivedQuantity:  item.ReceivedQuantity,
			Batches:           TransferBatchModels(item),
		}
	}
	return m
}

func TransferBatchModels(item inventory.StockTransferItem) []StockTransferItemBatchModel {
	out := make([]StockTransferItemBatchModel, 0, len(item.Batches))
	for _, b := range item.Batches {
		id := b.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		out = append(out, StockTransferItemBatchModel{
			ID:                id,
			TransferItemID:    item.ID,
			ExpirationDate:    b.ExpirationDate,
			ManufacturingDate: b.ManufacturingDate,
			Quantity:          b.Quantity,
		})
	}
	return out
}
