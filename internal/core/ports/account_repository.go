package ports

import (
	"context"

	"github.com/facegate/auth-system/internal/core/domain"
)

// AccountRepository defines persistence operations for accounts.
//
// Create must be atomic with respect to the uniqueness constraints: a
// duplicate username yields domain.ErrUsernameTaken, a duplicate external id
// yields domain.ErrProvisioningConflict, and in either case no partial row
// is left behind.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	FindByExternalID(ctx context.Context, externalID string) (*domain.Account, error)
	// ListEnrolled returns every account with a face template, in stable
	// creation order. The slice is a snapshot: accounts created after the
	// call started need not appear.
	ListEnrolled(ctx context.Context) ([]*domain.Account, error)
	Count(ctx context.Context) (int64, error)
}
