package finance

import (
	"time"

	"github.com/erp/ledger/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OpenDrawerRequest opens a cash session
type OpenDrawerRequest struct {
	LocationID     uuid.UUID       `json:"location_id"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// CloseDrawerRequest counts and closes a drawer
type CloseDrawerRequest struct {
	ActualCounted decimal.Decimal `json:"actual_counted"`
	Notes         string          `json:"notes"`
}

// Drawer movement types
const (
	MovementCashIn  = "CASH_IN"
	MovementCashOut = "CASH_OUT"
)

// DrawerMovementRequest adds or removes cash that is not a sale or refund
type DrawerMovementRequest struct {
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note"`
}

// CashTransactionResponse is one drawer entry
type CashTransactionResponse struct {
	ID            uuid.UUID       `json:"id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	ReferenceType string          `json:"reference_type,omitempty"`
	ReferenceID   *uuid.UUID      `json:"reference_id,omitempty"`
	Note          string          `json:"note,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// CashDrawerResponse represents a cash drawer in API responses
type CashDrawerResponse struct {
	ID              uuid.UUID                 `json:"id"`
	LocationID      uuid.UUID                 `json:"location_id"`
	UserID          uuid.UUID                 `json:"user_id"`
	Status          string                    `json:"status"`
	OpeningBalance  decimal.Decimal           `json:"opening_balance"`
	CurrentBalance  decimal.Decimal           `json:"current_balance"`
	ExpectedBalance decimal.Decimal           `json:"expected_balance"`
	ActualCounted   *decimal.Decimal          `json:"actual_counted,omitempty"`
	Discrepancy     *decimal.Decimal          `json:"discrepancy,omitempty"`
	OpenedAt        time.Time                 `json:"opened_at"`
	ClosedAt        *time.Time                `json:"closed_at,omitempty"`
	Notes           string                    `json:"notes,omitempty"`
	Transactions    []CashTransactionResponse `json:"transactions,omitempty"`
	Version         int                       `json:"version"`
}

// ToCashDrawerResponse converts a domain drawer with its entries
func ToCashDrawerResponse(d *finance.CashDrawer, txs []finance.CashTransaction) *CashDrawerResponse {
	resp := &CashDrawerResponse{
		ID:              d.ID,
		LocationID:      d.LocationID,
		UserID:          d.UserID,
		Status:          string(d.Status),
		OpeningBalance:  d.OpeningBalance,
		CurrentBalance:  d.CurrentBalance,
		ExpectedBalance: d.ExpectedBalance,
		ActualCounted:   d.ActualCounted,
		Discrepancy:     d.Discrepancy,
		OpenedAt:        d.OpenedAt,
		ClosedAt:        d.ClosedAt,
		Notes:           d.Notes,
		Version:         d.Version,
	}
	for i := range txs {
		resp.Transactions = append(resp.Transactions, toCashTransactionResponse(&txs[i]))
	}
	return resp
}

func toCashTransactionResponse(tx *finance.CashTransaction) CashTransactionResponse {
	out := CashTransactionResponse{
		ID:            tx.ID,
		Type:          string(tx.Type),
		Amount:        tx.Amount,
		BalanceAfter:  tx.BalanceAfter,
		ReferenceType: tx.Reference.Type,
		Note:          tx.Reference.Note,
		CreatedAt:     tx.CreatedAt,
	}
	if tx.Reference.ID != uuid.Nil {
		id := tx.Reference.ID
		out.ReferenceID = &id
	}
	return out
}

// RecordPaymentRequest pays down a customer's credit balance
type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note"`
}

// CreditTransactionResponse is one credit ledger entry
type CreditTransactionResponse struct {
	ID            uuid.UUID       `json:"id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   *uuid.UUID      `json:"reference_id,omitempty"`
	Note          string          `json:"note,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// CreditAccountResponse represents a customer's credit account
type CreditAccountResponse struct {
	CustomerID   uuid.UUID                   `json:"customer_id"`
	Name         string                      `json:"name"`
	Balance      decimal.Decimal             `json:"balance"`
	CreditLimit  decimal.Decimal             `json:"credit_limit"`
	CreditStatus string                      `json:"credit_status"`
	Active       bool                        `json:"active"`
	Transactions []CreditTransactionResponse `json:"transactions"`
}

func toCreditAccountResponse(a *finance.CustomerAccount, txs []finance.CreditTransaction) *CreditAccountResponse {
	resp := &CreditAccountResponse{
		CustomerID:   a.ID,
		Name:         a.Name,
		Balance:      a.Balance,
		CreditLimit:  a.CreditLimit,
		CreditStatus: string(a.CreditStatus),
		Active:       a.Active,
		Transactions: make([]CreditTransactionResponse, 0, len(txs)),
	}
	for _, tx := range txs {
		entry := CreditTransactionResponse{
			ID:            tx.ID,
			Type:          string(tx.Type),
			Amount:        tx.Amount,
			BalanceAfter:  tx.BalanceAfter,
			ReferenceType: tx.Reference.Type,
			Note:          tx.Reference.Note,
			CreatedAt:     tx.CreatedAt,
		}
		if tx.Reference.ID != uuid.Nil {
			id := tx.Reference.ID
			entry.ReferenceID = &id
		}
		resp.Transactions = append(resp.Transactions, entry)
	}
	return resp
}
