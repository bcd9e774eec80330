// Package audit holds the structured audit trail written by every ledger
// operation inside its unit of work.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Actions
const (
	ActionSaleCompleted     = "SALE_COMPLETED"
	ActionPurchaseReceived  = "PURCHASE_RECEIVED"
	ActionTransferCreated   = "TRANSFER_CREATED"
	ActionTransferSubmitted = "TRANSFER_SUBMITTED"
	ActionTransferApproved  = "TRANSFER_APPROVED"
	ActionTransferShipped   = "TRANSFER_SHIPPED"
	ActionTransferReceived  = "TRANSFER_RECEIVED"
	ActionTransferCancelled = "TRANSFER_CANCELLED"
	ActionReturnProcessed   = "RETURN_PROCESSED"
	ActionRefundUnfunded    = "REFUND_UNFUNDED"
	ActionStockAdjusted     = "STOCK_ADJUSTED"
	ActionDrawerOpened      = "CASH_DRAWER_OPENED"
	ActionDrawerClosed      = "CASH_DRAWER_CLOSED"
	ActionDrawerMovement    = "CASH_DRAWER_MOVEMENT"
	ActionCreditPayment     = "CREDIT_PAYMENT"
	ActionAlertSnoozed      = "ALERT_SNOOZED"
)

// Record is one audit entry. Before and After hold JSON summaries.
type Record struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	Action     string
	EntityType string
	EntityID   uuid.UUID
	EntityName string
	Before     string
	After      string
	ActorID    *uuid.UUID
	OccurredAt time.Time
}

// Entry describes what to audit
type Entry struct {
	Action     string
	EntityType string
	EntityID   uuid.UUID
	EntityName string
	Before     any
	After      any
}

// NewRecord serializes the before and after summaries
func NewRecord(tenantID, actorID uuid.UUID, e Entry) (*Record, error) {
	before, err := summary(e.Before)
	if err != nil {
		return nil, fmt.Errorf("audit before summary: %w", err)
	}
	after, err := summary(e.After)
	if err != nil {
		return nil, fmt.Errorf("audit after summary: %w", err)
	}
	r := &Record{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		EntityName: e.EntityName,
		Before:     before,
		After:      after,
		OccurredAt: time.Now(),
	}
	if actorID != uuid.Nil {
		r.ActorID = &actorID
	}
	return r, nil
}

func summary(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Sink appends audit records
type Sink interface {
	Append(ctx context.Context, record *Record) error
}

// Log builds a record and appends it to the sink
func Log(ctx context.Context, sink Sink, tenantID, actorID uuid.UUID, e Entry) error {
	record, err := NewRecord(tenantID, actorID, e)
	if err != nil {
		return err
	}
	return sink.Append(ctx, record)
}
