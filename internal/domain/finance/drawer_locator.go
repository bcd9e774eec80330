package finance

import (
	"context"

	"github.com/google/uuid"
)

// FindDrawerFor returns the OPEN drawer that takes cash for userID at
// locationID: the user's own drawer when it is at that location, otherwise
// whichever drawer is open there. It returns nil when no drawer is open.
func FindDrawerFor(ctx context.Context, repo CashDrawerRepository, tenantID, userID, locationID uuid.UUID) (*CashDrawer, error) {
	if userID != uuid.Nil {
		own, err := repo.FindOpenByUser(ctx, tenantID, userID)
		if err != nil {
			return nil, err
		}
		if own != nil && own.LocationID == locationID {
			return own, nil
		}
	}
	return repo.FindOpenByLocation(ctx, tenantID, locationID)
}
