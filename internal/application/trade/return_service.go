package trade

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/erp/ledger/internal/application/ledger"
	"github.com/erp/ledger/internal/domain/audit"
	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnfundedRefundPolicy decides what happens to a cash refund when no drawer
// is open at the sale's location
type UnfundedRefundPolicy string

const (
	// UnfundedRefundAllow records the return flagged as unfunded
	UnfundedRefundAllow UnfundedRefundPolicy = "allow"
	// UnfundedRefundReject fails the return with NO_OPEN_CASH_DRAWER
	UnfundedRefundReject UnfundedRefundPolicy = "reject"
)

// ParseUnfundedRefundPolicy parses a configured policy name
func ParseUnfundedRefundPolicy(s string) (UnfundedRefundPolicy, error) {
	switch p := UnfundedRefundPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case UnfundedRefundAllow, UnfundedRefundReject:
		return p, nil
	case "":
		return UnfundedRefundAllow, nil
	default:
		return "", fmt.Errorf("unknown unfunded refund policy %q", s)
	}
}

// ReturnService reverses sales
type ReturnService struct {
	exec     *ledger.Executor
	stock    *inventory.StockLedger
	unfunded UnfundedRefundPolicy
}

// NewReturnService creates a new ReturnService
func NewReturnService(exec *ledger.Executor, stock *inventory.StockLedger, unfunded UnfundedRefundPolicy) *ReturnService {
	if stock == nil {
		stock = inventory.NewStockLedger(nil)
	}
	if unfunded == "" {
		unfunded = UnfundedRefundAllow
	}
	return &ReturnService{exec: exec, stock: stock, unfunded: unfunded}
}

type returnAudit struct {
	ReturnNumber  string          `json:"return_number"`
	SaleID        uuid.UUID       `json:"sale_id"`
	RefundAmount  decimal.Decimal `json:"refund_amount"`
	RefundChannel string          `json:"refund_channel"`
	SaleStatus    string          `json:"sale_status"`
}

// ProcessReturn validates the returned quantities against the sale, puts
// RETURN_TO_STOCK items back on the shelf and refunds through the customer's
// credit account or the open cash drawer.
func (s *ReturnService) ProcessReturn(ctx context.Context, tenantID, userID uuid.UUID, req ProcessReturnRequest) (*ReturnResponse, error) {
	lines := make([]trade.ReturnLine, 0, len(req.Items))
	for _, item := range req.Items {
		disposition := trade.ReturnDisposition(strings.ToUpper(item.Disposition))
		if disposition == "" {
			disposition = trade.DispositionReturnToStock
		}
		lines = append(lines, trade.ReturnLine{
			SaleItemID:  item.SaleItemID,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			Condition:   trade.ItemCondition(strings.ToUpper(item.Condition)),
			Disposition: disposition,
		})
	}

	var (
		ret       *trade.Return
		sale      *trade.Sale
		restocked []uuid.UUID
	)
	err := s.exec.Run(ctx, tenantID, "return.process", func(ctx context.Context, repos ledger.Repositories) error {
		restocked = restocked[:0]
		var err error
		sale, err = repos.Sales().FindByID(ctx, tenantID, req.SaleID)
		if err != nil {
			return err
		}
		already, err := repos.Returns().ReturnedQuantities(ctx, tenantID, sale.ID)
		if err != nil {
			return err
		}
		ret, err = trade.NewReturn(sale, lines, already, req.Reason, userID)
		if err != nil {
			return err
		}
		ret.ReturnNumber, err = repos.Returns().NextNumber(ctx, tenantID, time.Now())
		if err != nil {
			return err
		}

		for _, item := range ret.Items {
			if item.Disposition != trade.DispositionReturnToStock {
				continue
			}
			if _, err := s.stock.Restock(ctx, repos.Batches(), tenantID, item.ProductID, sale.LocationID, item.Quantity); err != nil {
				return err
			}
			restocked = append(restocked, item.ProductID)
		}

		if err := s.refund(ctx, repos, sale, ret, userID); err != nil {
			return err
		}
		if err := repos.Returns().Create(ctx, ret); err != nil {
			return err
		}

		merged := make(map[uuid.UUID]decimal.Decimal, len(already)+len(ret.Items))
		for id, q := range already {
			merged[id] = q
		}
		for id, q := range ret.ReturnedBySaleItem() {
			merged[id] = merged[id].Add(q)
		}
		sale.ApplyRefund(ret.RefundAmount, trade.FullyReturned(sale, merged))
		if err := repos.Sales().SaveWithLock(ctx, sale); err != nil {
			return err
		}

		return audit.Log(ctx, repos.Audit(), tenantID, userID, audit.Entry{
			Action:     audit.ActionReturnProcessed,
			EntityType: "Return",
			EntityID:   ret.ID,
			EntityName: ret.ReturnNumber,
			After: returnAudit{
				ReturnNumber:  ret.ReturnNumber,
				SaleID:        sale.ID,
				RefundAmount:  ret.RefundAmount,
				RefundChannel: string(ret.RefundChannel),
				SaleStatus:    string(sale.Status),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if len(restocked) > 0 {
		s.exec.Publish(ctx, inventory.NewStockChangedEvent(tenantID, ret.ID, "return", restocked, []uuid.UUID{sale.LocationID}))
	}
	return toReturnResponse(ret, sale), nil
}

// refund reverses the money side. Credit sales reduce what the customer
// owes; everything else is paid out of the open drawer.
func (s *ReturnService) refund(ctx context.Context, repos ledger.Repositories, sale *trade.Sale, ret *trade.Return, userID uuid.UUID) error {
	ref := finance.Reference{Type: finance.ReferenceReturn, ID: ret.ID, CreatedBy: userID, Note: ret.ReturnNumber}

	if sale.PaymentType.IsCredit() && sale.CustomerID != nil {
		ret.SetRefundChannel(trade.RefundChannelCredit)
		account, err := repos.Customers().FindByID(ctx, sale.TenantID, *sale.CustomerID)
		if err != nil {
			return err
		}
		entry, _ := account.ApplyReturn(ret.RefundAmount, ref)
		if entry == nil {
			return nil
		}
		if err := repos.Customers().SaveWithLock(ctx, account); err != nil {
			return err
		}
		return repos.CreditTransactions().Create(ctx, entry)
	}

	ret.SetRefundChannel(trade.RefundChannelCashDrawer)
	if !ret.RefundAmount.IsPositive() {
		return nil
	}
	drawer, err := finance.FindDrawerFor(ctx, repos.CashDrawers(), sale.TenantID, userID, sale.LocationID)
	if err != nil {
		return err
	}
	if drawer == nil {
		if s.unfunded == UnfundedRefundReject {
			return shared.Errorf(shared.CodeNoOpenCashDrawer,
				"No open cash drawer to pay refund of %s", ret.RefundAmount.StringFixed(2))
		}
		ret.SetRefundChannel(trade.RefundChannelUnfunded)
		return audit.Log(ctx, repos.Audit(), sale.TenantID, userID, audit.Entry{
			Action:     audit.ActionRefundUnfunded,
			EntityType: "Return",
			EntityID:   ret.ID,
			EntityName: ret.ReturnNumber,
			After:      map[string]any{"refund_amount": ret.RefundAmount, "location_id": sale.LocationID},
		})
	}

	entry, err := drawer.RecordRefund(ret.RefundAmount, ref)
	if err != nil {
		return err
	}
	if err := repos.CashDrawers().SaveWithLock(ctx, drawer); err != nil {
		return err
	}
	return repos.CashTransactions().Create(ctx, entry)
}
