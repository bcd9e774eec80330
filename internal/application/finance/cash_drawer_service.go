package finance

import (
	"context"
	"strings"

	"github.com/erp/ledger/internal/application/ledger"
	"github.com/erp/ledger/internal/domain/audit"
	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const entityCashDrawer = "CashDrawer"

// CashDrawerService manages cash sessions
type CashDrawerService struct {
	exec *ledger.Executor
}

// NewCashDrawerService creates a new CashDrawerService
func NewCashDrawerService(exec *ledger.Executor) *CashDrawerService {
	return &CashDrawerService{exec: exec}
}

type drawerAudit struct {
	Status      string           `json:"status"`
	Balance     decimal.Decimal  `json:"balance"`
	Discrepancy *decimal.Decimal `json:"discrepancy,omitempty"`
}

func summarize(d *finance.CashDrawer) drawerAudit {
	return drawerAudit{Status: string(d.Status), Balance: d.CurrentBalance, Discrepancy: d.Discrepancy}
}

// Open starts a session for userID. A user holds at most one open drawer and
// a location has at most one open drawer.
func (s *CashDrawerService) Open(ctx context.Context, tenantID, userID uuid.UUID, req OpenDrawerRequest) (*CashDrawerResponse, error) {
	var resp *CashDrawerResponse
	err := s.exec.Run(ctx, tenantID, "cash_drawer.open", func(ctx context.Context, repos ledger.Repositories) error {
		existing, err := repos.CashDrawers().FindOpenByUser(ctx, tenantID, userID)
		if err != nil {
			return err
		}
		if existing != nil {
			return shared.Errorf(shared.CodeCashDrawerAlreadyOpen, "User already has open cash drawer %s", existing.ID)
		}
		existing, err = repos.CashDrawers().FindOpenByLocation(ctx, tenantID, req.LocationID)
		if err != nil {
			return err
		}
		if existing != nil {
			return shared.Errorf(shared.CodeCashDrawerAlreadyOpen, "Location already has open cash drawer %s", existing.ID)
		}

		drawer, opening, err := finance.OpenCashDrawer(tenantID, req.LocationID, userID, req.OpeningBalance)
		if err != nil {
			return err
		}
		if err := repos.CashDrawers().Create(ctx, drawer); err != nil {
			return err
		}
		if err := repos.CashTransactions().Create(ctx, opening); err != nil {
			return err
		}
		resp = ToCashDrawerResponse(drawer, []finance.CashTransaction{*opening})
		return audit.Log(ctx, repos.Audit(), tenantID, userID, audit.Entry{
			Action:     audit.ActionDrawerOpened,
			EntityType: entityCashDrawer,
			EntityID:   drawer.ID,
			After:      summarize(drawer),
		})
	})
	return resp, err
}

// Close counts the drawer and records the discrepancy
func (s *CashDrawerService) Close(ctx context.Context, tenantID, userID, drawerID uuid.UUID, req CloseDrawerRequest) (*CashDrawerResponse, error) {
	var resp *CashDrawerResponse
	err := s.exec.Run(ctx, tenantID, "cash_drawer.close", func(ctx context.Context, repos ledger.Repositories) error {
		drawer, err := repos.CashDrawers().FindByID(ctx, tenantID, drawerID)
		if err != nil {
			return err
		}
		before := summarize(drawer)
		if err := drawer.Close(req.ActualCounted, req.Notes); err != nil {
			return err
		}
		if err := repos.CashDrawers().SaveWithLock(ctx, drawer); err != nil {
			return err
		}
		resp = ToCashDrawerResponse(drawer, nil)
		return audit.Log(ctx, repos.Audit(), tenantID, userID, audit.Entry{
			Action:     audit.ActionDrawerClosed,
			EntityType: entityCashDrawer,
			EntityID:   drawer.ID,
			Before:     before,
			After:      summarize(drawer),
		})
	})
	return resp, err
}

// RecordMovement books a CASH_IN or CASH_OUT entry
func (s *CashDrawerService) RecordMovement(ctx context.Context, tenantID, userID, drawerID uuid.UUID, req DrawerMovementRequest) (*CashTransactionResponse, error) {
	var resp CashTransactionResponse
	err := s.exec.Run(ctx, tenantID, "cash_drawer.movement", func(ctx context.Context, repos ledger.Repositories) error {
		drawer, err := repos.CashDrawers().FindByID(ctx, tenantID, drawerID)
		if err != nil {
			return err
		}
		before := summarize(drawer)
		ref := finance.Reference{Type: finance.ReferenceManual, CreatedBy: userID, Note: req.Note}

		var entry *finance.CashTransaction
		switch strings.ToUpper(req.Type) {
		case MovementCashIn:
			entry, err = drawer.CashIn(req.Amount, ref)
		case MovementCashOut:
			entry, err = drawer.CashOut(req.Amount, ref)
		default:
			return shared.Errorf(shared.CodeInvalidInput, "Unknown movement type %q", req.Type)
		}
		if err != nil {
			return err
		}
		if err := repos.CashDrawers().SaveWithLock(ctx, drawer); err != nil {
			return err
		}
		if err := repos.CashTransactions().Create(ctx, entry); err != nil {
			return err
		}
		resp = toCashTransactionResponse(entry)
		return audit.Log(ctx, repos.Audit(), tenantID, userID, audit.Entry{
			Action:     audit.ActionDrawerMovement,
			EntityType: entityCashDrawer,
			EntityID:   drawer.ID,
			EntityName: string(entry.Type),
			Before:     before,
			After:      summarize(drawer),
		})
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Get returns a drawer with its entries
func (s *CashDrawerService) Get(ctx context.Context, tenantID, drawerID uuid.UUID) (*CashDrawerResponse, error) {
	var resp *CashDrawerResponse
	err := s.exec.Query(ctx, func(ctx context.Context, repos ledger.Repositories) error {
		drawer, err := repos.CashDrawers().FindByID(ctx, tenantID, drawerID)
		if err != nil {
			return err
		}
		txs, err := repos.CashTransactions().ListByDrawer(ctx, tenantID, drawerID)
		if err != nil {
			return err
		}
		resp = ToCashDrawerResponse(drawer, txs)
		return nil
	})
	return resp, err
}
