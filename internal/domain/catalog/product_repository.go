package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository is the read side of the catalog used by the ledger
type ProductRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)
	// FindByIDs returns the products found, keyed by ID
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*Product, error)
	FindActive(ctx context.Context, tenantID uuid.UUID) ([]Product, error)
	// FindTenantIDs lists organizations that have at least one active product
	FindTenantIDs(ctx context.Context) ([]uuid.UUID, error)
	Save(ctx context.Context, product *Product) error
}
