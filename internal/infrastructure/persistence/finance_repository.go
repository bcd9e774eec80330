package persistence

import (
	"context"
	"errors"

	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/erp/ledger/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCustomerAccountRepository implements CustomerAccountRepository using GORM
type GormCustomerAccountRepository struct {
	db *gorm.DB
}

// NewGormCustomerAccountRepository creates a new GormCustomerAccountRepository
func NewGormCustomerAccountRepository(db *gorm.DB) *GormCustomerAccountRepository {
	return &GormCustomerAccountRepository{db: db}
}

// FindByID finds a customer account by ID and locks its row until the
// surrounding transaction ends
func (r *GormCustomerAccountRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*finance.CustomerAccount, error) {
	var model models.CustomerAccountModel
	if err := forUpdate(r.db.WithContext(ctx)).
		Scopes(tenant.TenantScope(tenantID)).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Create inserts a customer account
func (r *GormCustomerAccountRepository) Create(ctx context.Context, account *finance.CustomerAccount) error {
	return r.db.WithContext(ctx).Create(models.CustomerAccountModelFromDomain(account)).Error
}

// SaveWithLock updates balance and status under the version check
func (r *GormCustomerAccountRepository) SaveWithLock(ctx context.Context, account *finance.CustomerAccount) error {
	return updateVersioned(r.db.WithContext(ctx), &models.CustomerAccountModel{}, account.TenantID, account.ID, account.Version, map[string]any{
		"name":          account.Name,
		"balance":       account.Balance,
		"credit_limit":  account.CreditLimit,
		"credit_status": account.CreditStatus,
		"active":        account.Active,
	})
}

// GormCreditTransactionRepository implements CreditTransactionRepository using GORM
type GormCreditTransactionRepository struct {
	db *gorm.DB
}

// NewGormCreditTransactionRepository creates a new GormCreditTransactionRepository
func NewGormCreditTransactionRepository(db *gorm.DB) *GormCreditTransactionRepository {
	return &GormCreditTransactionRepository{db: db}
}

// Create appends a credit ledger entry
func (r *GormCreditTransactionRepository) Create(ctx context.Context, tx *finance.CreditTransaction) error {
	return r.db.WithContext(ctx).Create(models.CreditTransactionModelFromDomain(tx)).Error
}

// ListByCustomer returns the latest entries of a customer, newest first
func (r *GormCreditTransactionRepository) ListByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, limit int) ([]finance.CreditTransaction, error) {
	query := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("customer_id = ?", customerID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []models.CreditTransactionModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]finance.CreditTransaction, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// GormCashDrawerRepository implements CashDrawerRepository using GORM
type GormCashDrawerRepository struct {
	db *gorm.DB
}

// NewGormCashDrawerRepository creates a new GormCashDrawerRepository
func NewGormCashDrawerRepository(db *gorm.DB) *GormCashDrawerRepository {
	return &GormCashDrawerRepository{db: db}
}

// FindByID finds a drawer by ID, row locked
func (r *GormCashDrawerRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*finance.CashDrawer, error) {
	var model models.CashDrawerModel
	if err := forUpdate(r.db.WithContext(ctx)).
		Scopes(tenant.TenantScope(tenantID)).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindOpenByUser returns the user's open drawer, or nil when there is none
func (r *GormCashDrawerRepository) FindOpenByUser(ctx context.Context, tenantID, userID uuid.UUID) (*finance.CashDrawer, error) {
	return r.findOpen(ctx, tenantID, "user_id = ?", userID)
}

// FindOpenByLocation returns the open drawer of a location, or nil when there is none
func (r *GormCashDrawerRepository) FindOpenByLocation(ctx context.Context, tenantID, locationID uuid.UUID) (*finance.CashDrawer, error) {
	return r.findOpen(ctx, tenantID, "location_id = ?", locationID)
}

func (r *GormCashDrawerRepository) findOpen(ctx context.Context, tenantID uuid.UUID, cond string, arg uuid.UUID) (*finance.CashDrawer, error) {
	var model models.CashDrawerModel
	err := forUpdate(r.db.WithContext(ctx)).
		Scopes(tenant.TenantScope(tenantID)).
		Where("status = ?", finance.DrawerStatusOpen).
		Where(cond, arg).
		Order("opened_at DESC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts a drawer
func (r *GormCashDrawerRepository) Create(ctx context.Context, drawer *finance.CashDrawer) error {
	return r.db.WithContext(ctx).Create(models.CashDrawerModelFromDomain(drawer)).Error
}

// SaveWithLock updates balances and status under the version check
func (r *GormCashDrawerRepository) SaveWithLock(ctx context.Context, drawer *finance.CashDrawer) error {
	return updateVersioned(r.db.WithContext(ctx), &models.CashDrawerModel{}, drawer.TenantID, drawer.ID, drawer.Version, map[string]any{
		"status":           drawer.Status,
		"current_balance":  drawer.CurrentBalance,
		"expected_balance": drawer.ExpectedBalance,
		"actual_counted":   drawer.ActualCounted,
		"discrepancy":      drawer.Discrepancy,
		"closed_at":        drawer.ClosedAt,
		"notes":            drawer.Notes,
	})
}

// GormCashTransactionRepository implements CashTransactionRepository using GORM
type GormCashTransactionRepository struct {
	db *gorm.DB
}

// NewGormCashTransactionRepository creates a new GormCashTransactionRepository
func NewGormCashTransactionRepository(db *gorm.DB) *GormCashTransactionRepository {
	return &GormCashTransactionRepository{db: db}
}

// Create appends a drawer entry
func (r *GormCashTransactionRepository) Create(ctx context.Context, tx *finance.CashTransaction) error {
	return r.db.WithContext(ctx).Create(models.CashTransactionModelFromDomain(tx)).Error
}

// ListByDrawer returns the entries of a drawer in booking order
func (r *GormCashTransactionRepository) ListByDrawer(ctx context.Context, tenantID, drawerID uuid.UUID) ([]finance.CashTransaction, error) {
	var rows []models.CashTransactionModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("drawer_id = ?", drawerID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]finance.CashTransaction, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// GormExpenseRepository implements ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// Create appends an expense entry
func (r *GormExpenseRepository) Create(ctx context.Context, entry *finance.ExpenseEntry) error {
	return r.db.WithContext(ctx).Create(models.ExpenseEntryModelFromDomain(entry)).Error
}

// FindByReference lists the expenses booked for a document
func (r *GormExpenseRepository) FindByReference(ctx context.Context, tenantID uuid.UUID, refType string, refID uuid.UUID) ([]finance.ExpenseEntry, error) {
	var rows []models.ExpenseEntryModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("reference_type = ? AND reference_id = ?", refType, refID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]finance.ExpenseEntry, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

var (
	_ finance.CustomerAccountRepository   = (*GormCustomerAccountRepository)(nil)
	_ finance.CreditTransactionRepository = (*GormCreditTransactionRepository)(nil)
	_ finance.CashDrawerRepository        = (*GormCashDrawerRepository)(nil)
	_ finance.CashTransactionRepository   = (*GormCashTransactionRepository)(nil)
	_ finance.ExpenseRepository           = (*GormExpenseRepository)(nil)
)
