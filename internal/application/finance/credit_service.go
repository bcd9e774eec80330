package finance

import (
	"context"

	"github.com/erp/ledger/internal/application/ledger"
	"github.com/erp/ledger/internal/domain/audit"
	"github.com/erp/ledger/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCreditHistoryLimit caps the entries returned with an account
const DefaultCreditHistoryLimit = 50

// CreditService serves customer credit accounts
type CreditService struct {
	exec *ledger.Executor
}

// NewCreditService creates a new CreditService
func NewCreditService(exec *ledger.Executor) *CreditService {
	return &CreditService{exec: exec}
}

// RecordPayment books a payment against the customer's balance
func (s *CreditService) RecordPayment(ctx context.Context, tenantID, userID, customerID uuid.UUID, req RecordPaymentRequest) (*CreditAccountResponse, error) {
	var resp *CreditAccountResponse
	err := s.exec.Run(ctx, tenantID, "credit.payment", func(ctx context.Context, repos ledger.Repositories) error {
		account, err := repos.Customers().FindByID(ctx, tenantID, customerID)
		if err != nil {
			return err
		}
		before := account.Balance
		entry, err := account.ReceivePayment(req.Amount, finance.Reference{
			Type:      finance.ReferencePayment,
			ID:        uuid.New(),
			CreatedBy: userID,
			Note:      req.Note,
		})
		if err != nil {
			return err
		}
		if err := repos.Customers().SaveWithLock(ctx, account); err != nil {
			return err
		}
		if err := repos.CreditTransactions().Create(ctx, entry); err != nil {
			return err
		}
		resp = toCreditAccountResponse(account, []finance.CreditTransaction{*entry})
		return audit.Log(ctx, repos.Audit(), tenantID, userID, audit.Entry{
			Action:     audit.ActionCreditPayment,
			EntityType: "CustomerAccount",
			EntityID:   account.ID,
			EntityName: account.Name,
			Before:     map[string]decimal.Decimal{"balance": before},
			After:      map[string]any{"balance": account.Balance, "credit_status": account.CreditStatus},
		})
	})
	return resp, err
}

// GetAccount returns the account with its most recent entries
func (s *CreditService) GetAccount(ctx context.Context, tenantID, customerID uuid.UUID) (*CreditAccountResponse, error) {
	var resp *CreditAccountResponse
	err := s.exec.Query(ctx, func(ctx context.Context, repos ledger.Repositories) error {
		account, err := repos.Customers().FindByID(ctx, tenantID, customerID)
		if err != nil {
			return err
		}
		txs, err := repos.CreditTransactions().ListByCustomer(ctx, tenantID, customerID, DefaultCreditHistoryLimit)
		if err != nil {
			return err
		}
		resp = toCreditAccountResponse(account, txs)
		return nil
	})
	return resp, err
}
