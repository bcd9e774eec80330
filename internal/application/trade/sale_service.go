package trade

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/erp/ledger/internal/application/ledger"
	"github.com/erp/ledger/internal/domain/audit"
	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleService books point-of-sale transactions
type SaleService struct {
	exec  *ledger.Executor
	stock *inventory.StockLedger
}

// NewSaleService creates a new SaleService
func NewSaleService(exec *ledger.Executor, stock *inventory.StockLedger) *SaleService {
	if stock == nil {
		stock = inventory.NewStockLedger(nil)
	}
	return &SaleService{exec: exec, stock: stock}
}

type saleAudit struct {
	SaleNumber   string          `json:"sale_number"`
	PaymentType  string          `json:"payment_type"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	AmountPaid   decimal.Decimal `json:"amount_paid"`
	CreditAmount decimal.Decimal `json:"credit_amount"`
	Items        int             `json:"items"`
}

// ProcessSale prices the lines, consumes stock in FIFO order, charges the
// customer's credit account for any unpaid part and puts cash into the open
// drawer. Everything commits together or not at all.
func (s *SaleService) ProcessSale(ctx context.Context, tenantID, userID uuid.UUID, req ProcessSaleRequest) (*SaleResponse, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Sale must have at least one item")
	}
	method := trade.PaymentMethod(strings.ToUpper(req.PaymentMethod))

	var (
		sale     *trade.Sale
		drawerID *uuid.UUID
	)
	err := s.exec.Run(ctx, tenantID, "sale.process", func(ctx context.Context, repos ledger.Repositories) error {
		products, err := s.loadProducts(ctx, repos, tenantID, req.Items)
		if err != nil {
			return err
		}
		if err := s.checkAvailability(ctx, repos, tenantID, req.LocationID, req.Items, products); err != nil {
			return err
		}

		items := make([]trade.SaleItem, 0, len(req.Items))
		for _, line := range req.Items {
			item, err := trade.PriceLine(products[line.ProductID], trade.SaleLine{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				Discount:  line.Discount,
			})
			if err != nil {
				return err
			}
			items = append(items, item)
		}
		_, _, _, total := trade.Totals(items)

		var customer *finance.CustomerAccount
		if req.CustomerID != nil {
			customer, err = repos.Customers().FindByID(ctx, tenantID, *req.CustomerID)
			if err != nil {
				return err
			}
			if req.IsCredit {
				if err := customer.CanBuyOnCredit(); err != nil {
					return err
				}
			}
		}

		terms, err := trade.DeterminePayment(total, req.AmountPaid, method, req.IsCredit, customer != nil)
		if err != nil {
			return err
		}

		sale, err = trade.NewSale(tenantID, req.LocationID, req.CustomerID, userID, items, terms)
		if err != nil {
			return err
		}
		sale.Notes = req.Notes
		sale.SaleNumber, err = repos.Sales().NextNumber(ctx, tenantID, time.Now())
		if err != nil {
			return err
		}
		if err := repos.Sales().Create(ctx, sale); err != nil {
			return err
		}

		for _, item := range sale.Items {
			if _, err := s.stock.Consume(ctx, repos.Batches(), tenantID, item.ProductID, sale.LocationID, item.Quantity); err != nil {
				// availability already passed in this unit of work, so a
				// shortfall on the locked re-read means another writer won
				if errors.Is(err, shared.ErrInsufficientStock) {
					return shared.ErrConcurrentModification
				}
				return err
			}
		}

		ref := finance.Reference{Type: finance.ReferenceSale, ID: sale.ID, CreatedBy: userID, Note: sale.SaleNumber}
		if terms.CreditAmount.IsPositive() {
			entry, err := customer.Charge(terms.CreditAmount, ref)
			if err != nil {
				return err
			}
			if err := repos.Customers().SaveWithLock(ctx, customer); err != nil {
				return err
			}
			if err := repos.CreditTransactions().Create(ctx, entry); err != nil {
				return err
			}
		}

		if method == trade.PaymentMethodCash && terms.CashReceived().IsPositive() {
			drawer, err := finance.FindDrawerFor(ctx, repos.CashDrawers(), tenantID, userID, sale.LocationID)
			if err != nil {
				return err
			}
			if drawer != nil {
				entry, err := drawer.RecordSale(terms.CashReceived(), ref)
				if err != nil {
					return err
				}
				if err := repos.CashDrawers().SaveWithLock(ctx, drawer); err != nil {
					return err
				}
				if err := repos.CashTransactions().Create(ctx, entry); err != nil {
					return err
				}
				drawerID = &drawer.ID
			}
		}

		return audit.Log(ctx, repos.Audit(), tenantID, userID, audit.Entry{
			Action:     audit.ActionSaleCompleted,
			EntityType: "Sale",
			EntityID:   sale.ID,
			EntityName: sale.SaleNumber,
			After: saleAudit{
				SaleNumber:   sale.SaleNumber,
				PaymentType:  string(sale.PaymentType),
				TotalAmount:  sale.TotalAmount,
				AmountPaid:   sale.AmountPaid,
				CreditAmount: sale.CreditAmount,
				Items:        len(sale.Items),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	productIDs := make([]uuid.UUID, 0, len(sale.Items))
	for _, item := range sale.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	s.exec.Publish(ctx, inventory.NewStockChangedEvent(tenantID, sale.ID, "sale", productIDs, []uuid.UUID{sale.LocationID}))

	resp := ToSaleResponse(sale)
	resp.CashDrawerID = drawerID
	return resp, nil
}

func (s *SaleService) loadProducts(ctx context.Context, repos ledger.Repositories, tenantID uuid.UUID, lines []SaleLineInput) (map[uuid.UUID]*catalog.Product, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	products, err := repos.Products().FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		p, ok := products[line.ProductID]
		if !ok {
			return nil, shared.Errorf(shared.CodeNotFound, "Product %s not found", line.ProductID)
		}
		if !p.IsActive() {
			return nil, shared.Errorf(shared.CodeProductUnavailable, "Product %s is not available for sale", p.Name)
		}
	}
	return products, nil
}

// checkAvailability compares the summed requested quantity of every product
// with what the location holds. Consume re-checks under row locks.
func (s *SaleService) checkAvailability(ctx context.Context, repos ledger.Repositories, tenantID, locationID uuid.UUID, lines []SaleLineInput, products map[uuid.UUID]*catalog.Product) error {
	required := make(map[uuid.UUID]decimal.Decimal, len(lines))
	order := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if _, seen := required[line.ProductID]; !seen {
			order = append(order, line.ProductID)
		}
		required[line.ProductID] = required[line.ProductID].Add(line.Quantity)
	}
	for _, productID := range order {
		available, err := s.stock.Available(ctx, repos.Batches(), tenantID, productID, locationID)
		if err != nil {
			return err
		}
		if available.LessThan(required[productID]) {
			return shared.InsufficientStock(products[productID].Name, available)
		}
	}
	return nil
}

// GetSale returns a sale
func (s *SaleService) GetSale(ctx context.Context, tenantID, saleID uuid.UUID) (*SaleResponse, error) {
	var resp *SaleResponse
	err := s.exec.Query(ctx, func(ctx context.Context, repos ledger.Repositories) error {
		sale, err := repos.Sales().FindByID(ctx, tenantID, saleID)
		if err != nil {
			return err
		}
		resp = ToSaleResponse(sale)
		return nil
	})
	return resp, err
}
