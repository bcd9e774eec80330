package models

import (
	"time"

	"github.com/erp/ledger/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReferenceColumns embeds the document a ledger entry points at
type ReferenceColumns struct {
	ReferenceType string     `gorm:"type:varchar(20)"`
	ReferenceID   *uuid.UUID `gorm:"type:uuid;index"`
	CreatedBy     *uuid.UUID `gorm:"type:uuid"`
	Note          string     `gorm:"type:varchar(500)"`
}

func referenceColumns(ref finance.Reference) ReferenceColumns {
	c := ReferenceColumns{ReferenceType: ref.Type, Note: ref.Note}
	if ref.ID != uuid.Nil {
		id := ref.ID
		c.ReferenceID = &id
	}
	if ref.CreatedBy != uuid.Nil {
		by := ref.CreatedBy
		c.CreatedBy = &by
	}
	return c
}

func (c ReferenceColumns) toDomain() finance.Reference {
	ref := finance.Reference{Type: c.ReferenceType, Note: c.Note}
	if c.ReferenceID != nil {
		ref.ID = *c.ReferenceID
	}
	if c.CreatedBy != nil {
		ref.CreatedBy = *c.CreatedBy
	}
	return ref
}

// CustomerAccountModel is the persistence model for the CustomerAccount aggregate root.
type CustomerAccountModel struct {
	TenantAggregateModel
	Name         string               `gorm:"type:varchar(200);not null"`
	Balance      decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	CreditLimit  decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	CreditStatus finance.CreditStatus `gorm:"type:varchar(20);not null;default:'GOOD'"`
	Active       bool                 `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (CustomerAccountModel) TableName() string {
	return "customer_accounts"
}

// ToDomain converts the persistence model to a domain CustomerAccount.
func (m *CustomerAccountModel) ToDomain() *finance.CustomerAccount {
	return &finance.CustomerAccount{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Name:                m.Name,
		Balance:             m.Balance,
		CreditLimit:         m.CreditLimit,
		CreditStatus:        m.CreditStatus,
		Active:              m.Active,
	}
}

// CustomerAccountModelFromDomain creates a new persistence model from a domain CustomerAccount.
func CustomerAccountModelFromDomain(a *finance.CustomerAccount) *CustomerAccountModel {
	m := &CustomerAccountModel{
		Name:         a.Name,
		Balance:      a.Balance,
		CreditLimit:  a.CreditLimit,
		CreditStatus: a.CreditStatus,
		Active:       a.Active,
	}
	m.FromDomainTenantAggregateRoot(a.TenantAggregateRoot)
	return m
}

// CreditTransactionModel is an append-only credit ledger entry
type CreditTransactionModel struct {
	TenantModel
	CustomerID   uuid.UUID                     `gorm:"type:uuid;not null;index"`
	Type         finance.CreditTransactionType `gorm:"type:varchar(20);not null"`
	Amount       decimal.Decimal               `gorm:"type:decimal(18,4);not null"`
	BalanceAfter decimal.Decimal               `gorm:"type:decimal(18,4);not null"`
	ReferenceColumns
}

// TableName returns the table name for GORM
func (CreditTransactionModel) TableName() string {
	return "credit_transactions"
}

// ToDomain converts the persistence model to a domain CreditTransaction.
func (m *CreditTransactionModel) ToDomain() *finance.CreditTransaction {
	return &finance.CreditTransaction{
		BaseEntity:   m.BaseModel.ToDomain(),
		TenantID:     m.TenantID,
		CustomerID:   m.CustomerID,
		Type:         m.Type,
		Amount:       m.Amount,
		BalanceAfter: m.BalanceAfter,
		Reference:    m.ReferenceColumns.toDomain(),
	}
}

// CreditTransactionModelFromDomain creates a new persistence model from a domain CreditTransaction.
func CreditTransactionModelFromDomain(tx *finance.CreditTransaction) *CreditTransactionModel {
	m := &CreditTransactionModel{
		CustomerID:       tx.CustomerID,
		Type:             tx.Type,
		Amount:           tx.Amount,
		BalanceAfter:     tx.BalanceAfter,
		ReferenceColumns: referenceColumns(tx.Reference),
	}
	m.FromDomainBaseEntity(tx.BaseEntity)
	m.TenantID = tx.TenantID
	return m
}

// CashDrawerModel is the persistence model for the CashDrawer aggregate root.
type CashDrawerModel struct {
	TenantAggregateModel
	LocationID      uuid.UUID            `gorm:"type:uuid;not null;index"`
	UserID          uuid.UUID            `gorm:"type:uuid;not null;index"`
	Status          finance.DrawerStatus `gorm:"type:varchar(20);not null;index"`
	OpeningBalance  decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	CurrentBalance  decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	ExpectedBalance decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	ActualCounted   *decimal.Decimal     `gorm:"type:decimal(18,4)"`
	Discrepancy     *decimal.Decimal     `gorm:"type:decimal(18,4)"`
	OpenedAt        time.Time            `gorm:"not null"`
	ClosedAt        *time.Time
	Notes           string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CashDrawerModel) TableName() string {
	return "cash_drawers"
}

// ToDomain converts the persistence model to a domain CashDrawer.
func (m *CashDrawerModel) ToDomain() *finance.CashDrawer {
	return &finance.CashDrawer{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		LocationID:          m.LocationID,
		UserID:              m.UserID,
		Status:              m.Status,
		OpeningBalance:      m.OpeningBalance,
		CurrentBalance:      m.CurrentBalance,
		ExpectedBalance:     m.ExpectedBalance,
		ActualCounted:       m.ActualCounted,
		Discrepancy:         m.Discrepancy,
		OpenedAt:            m.OpenedAt,
		ClosedAt:            m.ClosedAt,
		Notes:               m.Notes,
	}
}

// CashDrawerModelFromDomain creates a new persistence model from a domain CashDrawer.
func CashDrawerModelFromDomain(d *finance.CashDrawer) *CashDrawerModel {
	m := &CashDrawerModel{
		LocationID:      d.LocationID,
		UserID:          d.UserID,
		Status:          d.Status,
		OpeningBalance:  d.OpeningBalance,
		CurrentBalance:  d.CurrentBalance,
		ExpectedBalance: d.ExpectedBalance,
		ActualCounted:   d.ActualCounted,
		Discrepancy:     d.Discrepancy,
		OpenedAt:        d.OpenedAt,
		ClosedAt:        d.ClosedAt,
		Notes:           d.Notes,
	}
	m.FromDomainTenantAggregateRoot(d.TenantAggregateRoot)
	return m
}

// CashTransactionModel is an append-only drawer entry
type CashTransactionModel struct {
	TenantModel
	DrawerID     uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Type         finance.CashTransactionType `gorm:"type:varchar(20);not null"`
	Amount       decimal.Decimal             `gorm:"type:decimal(18,4);not null"`
	BalanceAfter decimal.Decimal             `gorm:"type:decimal(18,4);not null"`
	ReferenceColumns
}

// TableName returns the table name for GORM
func (CashTransactionModel) TableName() string {
	return "cash_transactions"
}

// ToDomain converts the persistence model to a domain CashTransaction.
func (m *CashTransactionModel) ToDomain() *finance.CashTransaction {
	return &finance.CashTransaction{
		BaseEntity:   m.BaseModel.ToDomain(),
		TenantID:     m.TenantID,
		DrawerID:     m.DrawerID,
		Type:         m.Type,
		Amount:       m.Amount,
		BalanceAfter: m.BalanceAfter,
		Reference:    m.ReferenceColumns.toDomain(),
	}
}

// CashTransactionModelFromDomain creates a new persistence model from a domain CashTransaction.
func CashTransactionModelFromDomain(tx *finance.CashTransaction) *CashTransactionModel {
	m := &CashTransactionModel{
		DrawerID:         tx.DrawerID,
		Type:             tx.Type,
		Amount:           tx.Amount,
		BalanceAfter:     tx.BalanceAfter,
		ReferenceColumns: referenceColumns(tx.Reference),
	}
	m.FromDomainBaseEntity(tx.BaseEntity)
	m.TenantID = tx.TenantID
	return m
}

// ExpenseEntryModel is a line in the expense ledger
type ExpenseEntryModel struct {
	TenantModel
	Category      string                `gorm:"type:varchar(50);not null;index"`
	Amount        decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	PaymentMethod string                `gorm:"type:varchar(20);not null"`
	Status        finance.ExpenseStatus `gorm:"type:varchar(20);not null"`
	Description   string                `gorm:"type:varchar(500)"`
	IncurredAt    time.Time             `gorm:"not null"`
	ReferenceColumns
}

// TableName returns the table name for GORM
func (ExpenseEntryModel) TableName() string {
	return "expense_entries"
}

// ToDomain converts the persistence model to a domain ExpenseEntry.
func (m *ExpenseEntryModel) ToDomain() *finance.ExpenseEntry {
	return &finance.ExpenseEntry{
		BaseEntity:    m.BaseModel.ToDomain(),
		TenantID:      m.TenantID,
		Category:      m.Category,
		Amount:        m.Amount,
		PaymentMethod: m.PaymentMethod,
		Status:        m.Status,
		Description:   m.Description,
		Reference:     m.ReferenceColumns.toDomain(),
		IncurredAt:    m.IncurredAt,
	}
}

// ExpenseEntryModelFromDomain creates a new persistence model from a domain ExpenseEntry.
func ExpenseEntryModelFromDomain(e *finance.ExpenseEntry) *ExpenseEntryModel {
	m := &ExpenseEntryModel{
		Category:         e.Category,
		Amount:           e.Amount,
		PaymentMethod:    e.PaymentMethod,
		Status:           e.Status,
		Description:      e.Description,
		IncurredAt:       e.IncurredAt,
		ReferenceColumns: referenceColumns(e.Reference),
	}
	m.FromDomainBaseEntity(e.BaseEntity)
	m.TenantID = e.TenantID
	return m
}
