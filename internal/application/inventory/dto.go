package inventory

import (
	"time"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferLineInput is one requested product of a transfer
type TransferLineInput struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// CreateTransferRequest creates a DRAFT transfer
type CreateTransferRequest struct {
	SourceLocationID      uuid.UUID           `json:"source_location_id"`
	DestinationLocationID uuid.UUID           `json:"destination_location_id"`
	Items                 []TransferLineInput `json:"items"`
	Notes                 string              `json:"notes"`
}

// CancelTransferRequest cancels a transfer
type CancelTransferRequest struct {
	Reason string `json:"reason"`
}

// TransferBatchResponse is one batch key moved by a transfer
type TransferBatchResponse struct {
	ExpirationDate    *time.Time      `json:"expiration_date,omitempty"`
	ManufacturingDate *time.Time      `json:"manufacturing_date,omitempty"`
	Quantity          decimal.Decimal `json:"quantity"`
}

// TransferItemResponse is one transfer line
type TransferItemResponse struct {
	ID                uuid.UUID               `json:"id"`
	ProductID         uuid.UUID               `json:"product_id"`
	RequestedQuantity decimal.Decimal         `json:"requested_quantity"`
	ShippedQuantity   decimal.Decimal         `json:"shipped_quantity"`
	ReceivedQuantity  decimal.Decimal         `json:"received_quantity"`
	Batches           []TransferBatchResponse `json:"batches,omitempty"`
}

// TransferResponse represents a stock transfer in API responses
type TransferResponse struct {
	ID                    uuid.UUID              `json:"id"`
	TransferNumber        string                 `json:"transfer_number"`
	SourceLocationID      uuid.UUID              `json:"source_location_id"`
	DestinationLocationID uuid.UUID              `json:"destination_location_id"`
	Status                string                 `json:"status"`
	Notes                 string                 `json:"notes,omitempty"`
	CancelReason          string                 `json:"cancel_reason,omitempty"`
	Items                 []TransferItemResponse `json:"items"`
	SubmittedAt           *time.Time             `json:"submitted_at,omitempty"`
	ApprovedAt            *time.Time             `json:"approved_at,omitempty"`
	ShippedAt             *time.Time             `json:"shipped_at,omitempty"`
	ReceivedAt            *time.Time             `json:"received_at,omitempty"`
	CancelledAt           *time.Time             `json:"cancelled_at,omitempty"`
	CreatedAt             time.Time              `json:"created_at"`
	UpdatedAt             time.Time              `json:"updated_at"`
	Version               int                    `json:"version"`
}

// ToTransferResponse converts a domain transfer
func ToTransferResponse(t *inventory.StockTransfer) *TransferResponse {
	resp := &TransferResponse{
		ID:                    t.ID,
		TransferNumber:        t.TransferNumber,
		SourceLocationID:      t.SourceLocationID,
		DestinationLocationID: t.DestinationLocationID,
		Status:                string(t.Status),
		Notes:                 t.Notes,
		CancelReason:          t.CancelReason,
		Items:                 make([]TransferItemResponse, 0, len(t.Items)),
		SubmittedAt:           t.SubmittedAt,
		ApprovedAt:            t.ApprovedAt,
		ShippedAt:             t.ShippedAt,
		ReceivedAt:            t.ReceivedAt,
		CancelledAt:           t.CancelledAt,
		CreatedAt:             t.CreatedAt,
		UpdatedAt:             t.UpdatedAt,
		Version:               t.Version,
	}
	for _, item := range t.Items {
		ir := TransferItemResponse{
			ID:                item.ID,
			ProductID:         item.ProductID,
			RequestedQuantity: item.RequestedQuantity,
			ShippedQuantity:   item.ShippedQuantity,
			ReceivedQuantity:  item.ReceivedQuantity,
		}
		for _, b := range item.Batches {
			ir.Batches = append(ir.Batches, TransferBatchResponse{
				ExpirationDate:    b.ExpirationDate,
				ManufacturingDate: b.ManufacturingDate,
				Quantity:          b.Quantity,
			})
		}
		resp.Items = append(resp.Items, ir)
	}
	return resp
}

// AdjustStockRequest adds to or removes from one batch key. A positive
// quantity credits the key, a negative one debits it.
type AdjustStockRequest struct {
	ProductID         uuid.UUID       `json:"product_id"`
	LocationID        uuid.UUID       `json:"location_id"`
	ExpirationDate    *time.Time      `json:"expiration_date"`
	ManufacturingDate *time.Time      `json:"manufacturing_date"`
	Quantity          decimal.Decimal `json:"quantity"`
	Reason            string          `json:"reason"`
}

// AdjustmentResponse reports the batch after an adjustment
type AdjustmentResponse struct {
	ProductID      uuid.UUID       `json:"product_id"`
	LocationID     uuid.UUID       `json:"location_id"`
	ExpirationDate *time.Time      `json:"expiration_date,omitempty"`
	Adjusted       decimal.Decimal `json:"adjusted"`
	BatchQuantity  decimal.Decimal `json:"batch_quantity"`
	TotalQuantity  decimal.Decimal `json:"total_quantity"`
}

// StockQuery selects ledger rows
type StockQuery struct {
	ProductID  *uuid.UUID `form:"product_id"`
	LocationID *uuid.UUID `form:"location_id"`
	WithEmpty  bool       `form:"with_empty"`
}

// BatchResponse is one ledger row
type BatchResponse struct {
	ID                uuid.UUID       `json:"id"`
	ProductID         uuid.UUID       `json:"product_id"`
	LocationID        uuid.UUID       `json:"location_id"`
	ExpirationDate    *time.Time      `json:"expiration_date,omitempty"`
	ManufacturingDate *time.Time      `json:"manufacturing_date,omitempty"`
	Quantity          decimal.Decimal `json:"quantity"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// StockLevelResponse aggregates a product at a location
type StockLevelResponse struct {
	ProductID  uuid.UUID       `json:"product_id"`
	LocationID uuid.UUID       `json:"location_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Batches    []BatchResponse `json:"batches"`
}

func toBatchResponse(b *inventory.StockBatch) BatchResponse {
	return BatchResponse{
		ID:                b.ID,
		ProductID:         b.ProductID,
		LocationID:        b.LocationID,
		ExpirationDate:    b.ExpirationDate,
		ManufacturingDate: b.ManufacturingDate,
		Quantity:          b.Quantity,
		UpdatedAt:         b.UpdatedAt,
	}
}

// AlertListFilter represents filter options for alert listings
type AlertListFilter struct {
	Status     string     `form:"status" binding:"omitempty,oneof=ACTIVE SNOOZED RESOLVED"`
	AlertType  string     `form:"alert_type" binding:"omitempty,oneof=LOW_STOCK OUT_OF_STOCK EXPIRING_SOON"`
	ProductID  *uuid.UUID `form:"product_id"`
	LocationID *uuid.UUID `form:"location_id"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by" binding:"omitempty,oneof=created_at updated_at current_quantity"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// SnoozeAlertRequest snoozes an open alert
type SnoozeAlertRequest struct {
	Until time.Time `json:"until"`
}

// AlertResponse represents a stock alert in API responses
type AlertResponse struct {
	ID                uuid.UUID       `json:"id"`
	ProductID         uuid.UUID       `json:"product_id"`
	LocationID        uuid.UUID       `json:"location_id"`
	AlertType         string          `json:"alert_type"`
	Status            string          `json:"status"`
	CurrentQuantity   decimal.Decimal `json:"current_quantity"`
	ThresholdQuantity decimal.Decimal `json:"threshold_quantity"`
	ExpirationDate    *time.Time      `json:"expiration_date,omitempty"`
	SnoozedUntil      *time.Time      `json:"snoozed_until,omitempty"`
	ResolvedAt        *time.Time      `json:"resolved_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ToAlertResponse converts a domain alert
func ToAlertResponse(a *inventory.StockAlert) AlertResponse {
	return AlertResponse{
		ID:                a.ID,
		ProductID:         a.ProductID,
		LocationID:        a.LocationID,
		AlertType:         string(a.AlertType),
		Status:            string(a.Status),
		CurrentQuantity:   a.CurrentQuantity,
		ThresholdQuantity: a.ThresholdQuantity,
		ExpirationDate:    a.ExpirationDate,
		SnoozedUntil:      a.SnoozedUntil,
		ResolvedAt:        a.ResolvedAt,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

// ScanResult summarizes one alert scan
type ScanResult struct {
	TenantID uuid.UUID `json:"tenant_id"`
	Skipped  bool      `json:"skipped"`
	Created  int       `json:"created"`
	Updated  int       `json:"updated"`
	Resolved int       `json:"resolved"`
}
