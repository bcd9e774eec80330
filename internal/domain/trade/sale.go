package trade

import (
	"strings"

	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentType classifies how a sale was settled
type PaymentType string

const (
	PaymentTypeCash    PaymentType = "CASH"
	PaymentTypeCredit  PaymentType = "CREDIT"
	PaymentTypePartial PaymentType = "PARTIAL"
)

// IsCredit reports whether part of the sale went on the customer's account
func (p PaymentType) IsCredit() bool {
	return p == PaymentTypeCredit || p == PaymentTypePartial
}

// PaymentMethod is the tender used for the paid part
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodEWallet      PaymentMethod = "E_WALLET"
)

// IsValid checks the payment method
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodBankTransfer, PaymentMethodEWallet:
		return true
	}
	return false
}

// SaleStatus is the state of a completed sale
type SaleStatus string

const (
	SaleStatusCompleted SaleStatus = "COMPLETED"
	SaleStatusVoid      SaleStatus = "VOID"
	SaleStatusRefunded  SaleStatus = "REFUNDED"
)

// SaleItem is one priced line of a sale
type SaleItem struct {
	ID                uuid.UUID
	SaleID            uuid.UUID
	ProductID         uuid.UUID
	ProductName       string
	Quantity          decimal.Decimal
	UnitPrice         decimal.Decimal
	CostPriceSnapshot decimal.Decimal
	Discount          decimal.Decimal
	Tax               decimal.Decimal
	LineTotal         decimal.Decimal
}

// SaleLine is the requested content of one line before pricing
type SaleLine struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	UnitPrice *decimal.Decimal
	Discount  decimal.Decimal
}

// PriceLine prices a line against the product. The unit price defaults to
// the selling price; lineTotal = unitPrice*qty - discount and tax is charged
// on lineTotal at the product rate.
func PriceLine(product *catalog.Product, line SaleLine) (SaleItem, error) {
	if !line.Quantity.IsPositive() {
		return SaleItem{}, shared.NewDomainError(shared.CodeInvalidInput, "Quantity must be positive")
	}
	unitPrice := product.SellingPrice
	if line.UnitPrice != nil {
		unitPrice = *line.UnitPrice
	}
	if unitPrice.IsNegative() {
		return SaleItem{}, shared.NewDomainError(shared.CodeInvalidInput, "Unit price cannot be negative")
	}
	gross := unitPrice.Mul(line.Quantity)
	if line.Discount.IsNegative() || line.Discount.GreaterThan(gross) {
		return SaleItem{}, shared.Errorf(shared.CodeInvalidInput, "Discount for %s must be between 0 and %s", product.Name, gross.StringFixed(2))
	}
	lineTotal := gross.Sub(line.Discount).Round(2)
	return SaleItem{
		ID:                uuid.New(),
		ProductID:         product.ID,
		ProductName:       product.Name,
		Quantity:          line.Quantity,
		UnitPrice:         unitPrice,
		CostPriceSnapshot: product.CostPrice,
		Discount:          line.Discount,
		Tax:               product.TaxFor(lineTotal),
		LineTotal:         lineTotal,
	}, nil
}

// PaymentTerms is the outcome of settling a total
type PaymentTerms struct {
	Type         PaymentType
	Method       PaymentMethod
	AmountPaid   decimal.Decimal
	CreditAmount decimal.Decimal
	ChangeGiven  decimal.Decimal
}

// CashReceived is what stays in the drawer: paid minus change
func (t PaymentTerms) CashReceived() decimal.Decimal {
	return t.AmountPaid.Sub(t.ChangeGiven)
}

// DeterminePayment settles total against amountPaid. A credit sale needs a
// customer and books the unpaid remainder as credit; any other sale must be
// fully paid and returns change.
func DeterminePayment(total, amountPaid decimal.Decimal, method PaymentMethod, isCredit, hasCustomer bool) (PaymentTerms, error) {
	if amountPaid.IsNegative() {
		return PaymentTerms{}, shared.NewDomainError(shared.CodeInvalidInput, "Amount paid cannot be negative")
	}
	if !method.IsValid() {
		return PaymentTerms{}, shared.Errorf(shared.CodeInvalidInput, "Unknown payment method %q", method)
	}
	terms := PaymentTerms{
		Type:         PaymentTypeCash,
		Method:       method,
		AmountPaid:   amountPaid,
		CreditAmount: decimal.Zero,
		ChangeGiven:  decimal.Max(decimal.Zero, amountPaid.Sub(total)),
	}
	if !isCredit {
		if amountPaid.LessThan(total) {
			return PaymentTerms{}, shared.Errorf(shared.CodeInsufficientPayment,
				"Amount paid %s does not cover total %s", amountPaid.StringFixed(2), total.StringFixed(2))
		}
		return terms, nil
	}
	if !hasCustomer {
		return PaymentTerms{}, shared.ErrCustomerRequiredForCredit
	}
	terms.CreditAmount = decimal.Max(decimal.Zero, total.Sub(amountPaid))
	switch {
	case terms.CreditAmount.IsZero():
		terms.Type = PaymentTypeCash
	case amountPaid.IsZero():
		terms.Type = PaymentTypeCredit
	default:
		terms.Type = PaymentTypePartial
	}
	return terms, nil
}

// Sale is the immutable record of a completed sale. Only the refund
// bookkeeping changes after creation.
type Sale struct {
	shared.TenantAggregateRoot
	SaleNumber     string
	LocationID     uuid.UUID
	CustomerID     *uuid.UUID
	CashierID      uuid.UUID
	Items          []SaleItem
	PaymentType    PaymentType
	PaymentMethod  PaymentMethod
	AmountPaid     decimal.Decimal
	CreditAmount   decimal.Decimal
	ChangeGiven    decimal.Decimal
	Subtotal       decimal.Decimal
	TaxTotal       decimal.Decimal
	DiscountTotal  decimal.Decimal
	TotalAmount    decimal.Decimal
	RefundedAmount decimal.Decimal
	Status         SaleStatus
	Notes          string
}

// Totals sums priced items into subtotal, tax, discount and total
func Totals(items []SaleItem) (subtotal, tax, discount, total decimal.Decimal) {
	subtotal, tax, discount = decimal.Zero, decimal.Zero, decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal)
		tax = tax.Add(item.Tax)
		discount = discount.Add(item.Discount)
	}
	return subtotal, tax, discount, subtotal.Add(tax)
}

// NewSale builds a COMPLETED sale from priced items and settled terms
func NewSale(tenantID, locationID uuid.UUID, customerID *uuid.UUID, cashierID uuid.UUID, items []SaleItem, terms PaymentTerms) (*Sale, error) {
	if locationID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Location is required")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Sale must have at least one item")
	}
	sale := &Sale{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		LocationID:          locationID,
		CustomerID:          customerID,
		CashierID:           cashierID,
		PaymentType:         terms.Type,
		PaymentMethod:       terms.Method,
		AmountPaid:          terms.AmountPaid,
		CreditAmount:        terms.CreditAmount,
		ChangeGiven:         terms.ChangeGiven,
		RefundedAmount:      decimal.Zero,
		Status:              SaleStatusCompleted,
	}
	sale.SetCreatedBy(cashierID)
	sale.Items = make([]SaleItem, len(items))
	for i, item := range items {
		item.SaleID = sale.ID
		sale.Items[i] = item
	}
	sale.Subtotal, sale.TaxTotal, sale.DiscountTotal, sale.TotalAmount = Totals(sale.Items)
	return sale, nil
}

// FindItem returns the sale line with the given ID
func (s *Sale) FindItem(id uuid.UUID) (*SaleItem, bool) {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return &s.Items[i], true
		}
	}
	return nil, false
}

// CanReturn reports whether returns may still be booked
func (s *Sale) CanReturn() error {
	if s.Status != SaleStatusCompleted {
		return shared.Errorf(shared.CodeInvalidState, "Sale %s is %s", s.SaleNumber, strings.ToLower(string(s.Status)))
	}
	return nil
}

// ApplyRefund adds a refund and flips the sale to REFUNDED once refunds
// reach the total or every line has been returned.
func (s *Sale) ApplyRefund(amount decimal.Decimal, fullyReturned bool) {
	s.RefundedAmount = s.RefundedAmount.Add(amount)
	if s.RefundedAmount.GreaterThanOrEqual(s.TotalAmount) || fullyReturned {
		s.Status = SaleStatusRefunded
	}
	s.IncrementVersion()
	s.Touch()
}
