package account_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/starterkit/modules/account"
)

func TestMemoryStoreCreateAndGet(t *testing.T) {
	t.Parallel()

	store := account.NewMemoryStore()
	ctx := context.Background()

	acc := &account.Account{ID: uuid.New(), Email: "a@example.com"}
	require.NoError(t, store.Create(ctx, acc))
	assert.False(t, acc.CreatedAt.IsZero())
	assert.False(t, acc.UpdatedAt.IsZero())

	byID, err := store.GetByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, acc.Email, byID.Email)

	byEmail, err := store.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, byEmail.ID)

	// Returned values are copies; mutating them must not leak into the store.
	byID.Email = "mutated@example.com"
	again, err := store.GetByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", again.Email)
}

func TestMemoryStoreCreateValidation(t *testing.T) {
	t.Parallel()

	store := account.NewMemoryStore()
	ctx := context.Background()

	assert.ErrorIs(t, store.Create(ctx, nil), account.ErrInvalidAccount)
	assert.ErrorIs(t, store.Create(ctx, &account.Account{}), account.ErrInvalidAccount)
}

func TestMemoryStoreDuplicateEmail(t *testing.T) {
	t.Parallel()

	store := account.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &account.Account{ID: uuid.New(), Email: "dup@example.com"}))
	err := store.Create(ctx, &account.Account{ID: uuid.New(), Email: "dup@example.com"})
	assert.ErrorIs(t, err, account.ErrDuplicateEmail)
}

func TestMemoryStoreAllowsMultipleEmptyEmails(t *testing.T) {
	t.Parallel()

	store := account.NewMemoryStore()
	ctx := context.Background()

	// Federated-only accounts may have no email; uniqueness only applies to
	// non-empty addresses.
	require.NoError(t, store.Create(ctx, &account.Account{ID: uuid.New(), GoogleID: "g-1"}))
	require.NoError(t, store.Create(ctx, &account.Account{ID: uuid.New(), FacebookID: "f-1"}))

	_, err := store.GetByEmail(ctx, "")
	assert.ErrorIs(t, err, account.ErrNotFound)
}

func TestMemoryStoreUpdateReindexesEmail(t *testing.T) {
	t.Parallel()

	store := account.NewMemoryStore()
	ctx := context.Background()

	acc := &account.Account{ID: uuid.New(), Email: "before@example.com"}
	require.NoError(t, store.Create(ctx, acc))
	created := acc.CreatedAt

	acc.Email = "after@example.com"
	require.NoError(t, store.Update(ctx, acc))
	assert.Equal(t, created, acc.CreatedAt)

	_, err := store.GetByEmail(ctx, "before@example.com")
	assert.ErrorIs(t, err, account.ErrNotFound)

	found, err := store.GetByEmail(ctx, "after@example.com")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, found.ID)
}

func TestMemoryStoreUpdateEmailCollision(t *testing.T) {
	t.Parallel()

	store := account.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &account.Account{ID: uuid.New(), Email: "held@example.com"}))
	other := &account.Account{ID: uuid.New(), Email: "free@example.com"}
	require.NoError(t, store.Create(ctx, other))

	other.Email = "held@example.com"
	assert.ErrorIs(t, store.Update(ctx, other), account.ErrDuplicateEmail)

	// Re-saving an account under its own email is not a collision.
	self, err := store.GetByEmail(ctx, "held@example.com")
	require.NoError(t, err)
	self.Profile.Name = "Holder"
	require.NoError(t, store.Update(ctx, self))
}

func TestMemoryStoreUpdateMissing(t *testing.T) {
	t.Parallel()

	store := account.NewMemoryStore()
	err := store.Update(context.Background(), &account.Account{ID: uuid.New()})
	assert.ErrorIs(t, err, account.ErrNotFound)
}

func TestMemoryStoreTokenAndProviderLookups(t *testing.T) {
	t.Parallel()

	store := account.NewMemoryStore()
	ctx := context.Background()

	acc := &account.Account{
		ID:                 uuid.New(),
		Email:              "lookup@example.com",
		PasswordResetToken: "0123456789abcdef0123456789abcdef",
		GoogleID:           "google-subject",
		FacebookID:         "facebook-subject",
	}
	require.NoError(t, store.Create(ctx, acc))

	byToken, err := store.GetByResetToken(ctx, acc.PasswordResetToken)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, byToken.ID)

	byGoogle, err := store.GetByGoogleID(ctx, "google-subject")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, byGoogle.ID)

	byFacebook, err := store.GetByFacebookID(ctx, "facebook-subject")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, byFacebook.ID)

	// Empty lookups never match the accounts that left these fields unset.
	_, err = store.GetByResetToken(ctx, "")
	assert.ErrorIs(t, err, account.ErrNotFound)
	_, err = store.GetByGoogleID(ctx, "")
	assert.ErrorIs(t, err, account.ErrNotFound)
}

func TestMemoryStoreDelete(t *testing.T) {
	t.Parallel()

	store := account.NewMemoryStore()
	ctx := context.Background()

	acc := &account.Account{ID: uuid.New(), Email: "del@example.com"}
	require.NoError(t, store.Create(ctx, acc))

	require.NoError(t, store.Delete(ctx, acc.ID))
	_, err := store.GetByID(ctx, acc.ID)
	assert.ErrorIs(t, err, account.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, acc.ID), account.ErrNotFound)

	// The email is released for reuse.
	require.NoError(t, store.Create(ctx, &account.Account{ID: uuid.New(), Email: "del@example.com"}))
}
