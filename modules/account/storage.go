package account

import (
	"context"

	"github.com/google/uuid"
)

// Storage persists accounts. Implementations must enforce email uniqueness
// at the store level so concurrent registrations for the same address cannot
// both land; the losing write surfaces ErrDuplicateEmail.
//
// Lookups by token are reverse-index point queries: tokens are opaque and
// carry no account reference.
type Storage interface {
	Create(ctx context.Context, acc *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByResetToken(ctx context.Context, token string) (*Account, error)
	GetByGoogleID(ctx context.Context, id string) (*Account, error)
	GetByFacebookID(ctx context.Context, id string) (*Account, error)
	Update(ctx context.Context, acc *Account) error
	Delete(ctx context.Context, id uuid.UUID) error
}
