package account_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/starterkit/modules/account"
	"github.com/dmitrymomot/starterkit/pkg/email"
	"github.com/dmitrymomot/starterkit/pkg/password"
	"github.com/dmitrymomot/starterkit/pkg/token"
	"github.com/dmitrymomot/starterkit/pkg/validator"
)

type mailerStub struct {
	mu   sync.Mutex
	sent []email.SendEmailParams
	err  error
}

func (m *mailerStub) SendEmail(_ context.Context, params email.SendEmailParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, params)
	return nil
}

func (m *mailerStub) last() (email.SendEmailParams, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return email.SendEmailParams{}, false
	}
	return m.sent[len(m.sent)-1], true
}

func (m *mailerStub) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func newTestService(t *testing.T, opts ...account.Option) (*account.Service, *account.MemoryStore, *mailerStub) {
	t.Helper()

	store := account.NewMemoryStore()
	mailer := &mailerStub{}
	base := []account.Option{
		account.WithHasher(password.New(password.WithCost(bcrypt.MinCost))),
		account.WithMailer(mailer),
	}
	return account.NewService(store, append(base, opts...)...), store, mailer
}

func TestRegister(t *testing.T) {
	t.Parallel()

	svc, store, _ := newTestService(t)
	ctx := context.Background()

	acc, err := svc.Register(ctx, "  John.Doe@Example.COM ", "hunter2secret", "hunter2secret")
	require.NoError(t, err)
	assert.Equal(t, "john.doe@example.com", acc.Email)
	assert.NotEqual(t, uuid.Nil, acc.ID)
	assert.False(t, acc.EmailVerified)
	assert.NotEmpty(t, acc.PasswordHash)
	assert.NotContains(t, acc.PasswordHash, "hunter2secret")

	stored, err := store.GetByEmail(ctx, "john.doe@example.com")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, stored.ID)

	got, err := svc.Login(ctx, "john.doe@example.com", "hunter2secret")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, got.ID)
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		email   string
		pass    string
		confirm string
	}{
		{"invalid email", "not-an-email", "hunter2secret", "hunter2secret"},
		{"empty email", "", "hunter2secret", "hunter2secret"},
		{"short password", "a@b.co", "short", "short"},
		{"confirmation mismatch", "a@b.co", "hunter2secret", "different-secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Register(ctx, tt.email, tt.pass, tt.confirm)
			require.Error(t, err)
			assert.True(t, validator.IsValidationError(err))
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "taken@example.com", "hunter2secret", "hunter2secret")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Taken@Example.com", "otherpassword", "otherpassword")
	assert.ErrorIs(t, err, account.ErrDuplicateEmail)
}

// racingStore simulates two registrations racing past the existence check:
// the pre-write read always misses while the store's unique constraint
// still rejects the second insert.
type racingStore struct {
	*account.MemoryStore
}

func (s *racingStore) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	return nil, account.ErrNotFound
}

func TestRegisterLosesRaceToDuplicateCreate(t *testing.T) {
	t.Parallel()

	inner := account.NewMemoryStore()
	svc := account.NewService(&racingStore{MemoryStore: inner},
		account.WithHasher(password.New(password.WithCost(bcrypt.MinCost))),
	)
	ctx := context.Background()

	winner, err := svc.Register(ctx, "contested@example.com", "hunter2secret", "hunter2secret")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "contested@example.com", "otherpassword1", "otherpassword1")
	assert.ErrorIs(t, err, account.ErrDuplicateEmail)

	// Exactly one account holds the address.
	stored, err := inner.GetByEmail(ctx, "contested@example.com")
	require.NoError(t, err)
	assert.Equal(t, winner.ID, stored.ID)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	t.Parallel()

	svc, store, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "user@example.com", "hunter2secret", "hunter2secret")
	require.NoError(t, err)

	// Passwordless account created through a federated provider.
	require.NoError(t, store.Create(ctx, &account.Account{
		ID:       uuid.New(),
		Email:    "federated@example.com",
		GoogleID: "google-oauth-subject",
	}))

	tests := []struct {
		name  string
		email string
		pass  string
	}{
		{"unknown email", "nobody@example.com", "hunter2secret"},
		{"wrong password", "user@example.com", "wrong-password"},
		{"passwordless account", "federated@example.com", "hunter2secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Login(ctx, tt.email, tt.pass)
			assert.ErrorIs(t, err, account.ErrInvalidCredentials)
		})
	}
}

func TestPasswordResetFlow(t *testing.T) {
	t.Parallel()

	svc, store, mailer := newTestService(t)
	ctx := context.Background()

	acc, err := svc.Register(ctx, "reset@example.com", "oldpassword1", "oldpassword1")
	require.NoError(t, err)

	require.NoError(t, svc.RequestPasswordReset(ctx, "reset@example.com"))

	stored, err := store.GetByID(ctx, acc.ID)
	require.NoError(t, err)
	require.Len(t, stored.PasswordResetToken, token.Length)
	assert.True(t, stored.PasswordResetExpires.After(time.Now()))

	sent, ok := mailer.last()
	require.True(t, ok)
	assert.Equal(t, "reset@example.com", sent.SendTo)
	assert.Contains(t, sent.BodyHTML, "/reset/"+stored.PasswordResetToken)

	reset, err := svc.CompletePasswordReset(ctx, stored.PasswordResetToken, "newpassword1", "newpassword1")
	require.NoError(t, err)
	assert.Empty(t, reset.PasswordResetToken)
	assert.True(t, reset.PasswordResetExpires.IsZero())

	_, err = svc.Login(ctx, "reset@example.com", "oldpassword1")
	assert.ErrorIs(t, err, account.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "reset@example.com", "newpassword1")
	require.NoError(t, err)

	// The token was cleared on use; a replay misses the lookup.
	_, err = svc.CompletePasswordReset(ctx, stored.PasswordResetToken, "anotherpass1", "anotherpass1")
	assert.ErrorIs(t, err, account.ErrInvalidToken)

	// Confirmation email followed the reset email.
	assert.Equal(t, 2, mailer.count())
}

func TestPasswordResetUnknownEmail(t *testing.T) {
	t.Parallel()

	svc, _, mailer := newTestService(t)

	err := svc.RequestPasswordReset(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.Zero(t, mailer.count())
}

func TestPasswordResetExpiredToken(t *testing.T) {
	t.Parallel()

	// Issue tokens that are already past their expiry.
	svc, store, _ := newTestService(t,
		account.WithTokenIssuer(token.NewIssuer(token.WithTTL(-time.Minute))))
	ctx := context.Background()

	acc, err := svc.Register(ctx, "late@example.com", "oldpassword1", "oldpassword1")
	require.NoError(t, err)
	require.NoError(t, svc.RequestPasswordReset(ctx, "late@example.com"))

	stored, err := store.GetByID(ctx, acc.ID)
	require.NoError(t, err)

	_, err = svc.CompletePasswordReset(ctx, stored.PasswordResetToken, "newpassword1", "newpassword1")
	assert.ErrorIs(t, err, account.ErrTokenExpired)

	// The old credential still works after the failed attempt.
	_, err = svc.Login(ctx, "late@example.com", "oldpassword1")
	require.NoError(t, err)
}

func TestPasswordResetMalformedToken(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)

	_, err := svc.CompletePasswordReset(context.Background(), "not-hex", "newpassword1", "newpassword1")
	require.Error(t, err)
	assert.True(t, validator.IsValidationError(err))
}

func TestPasswordResetNotificationFailure(t *testing.T) {
	t.Parallel()

	svc, store, mailer := newTestService(t)
	mailer.err = errors.New("smtp unreachable")
	ctx := context.Background()

	acc, err := svc.Register(ctx, "flaky@example.com", "hunter2secret", "hunter2secret")
	require.NoError(t, err)

	err = svc.RequestPasswordReset(ctx, "flaky@example.com")
	assert.ErrorIs(t, err, account.ErrNotificationFailed)

	// The token was persisted before the send failed and remains usable.
	stored, err := store.GetByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Len(t, stored.PasswordResetToken, token.Length)
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	acc, err := svc.Register(ctx, "profile@example.com", "hunter2secret", "hunter2secret")
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, acc.ID, account.ProfileUpdate{
		Email:    "profile@example.com",
		Name:     "  Jane Roe ",
		Location: "Berlin",
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane Roe", updated.Profile.Name)
	assert.Equal(t, "Berlin", updated.Profile.Location)
	assert.Empty(t, updated.Profile.Website)

	// A later submit without the location field clears it.
	updated, err = svc.UpdateProfile(ctx, acc.ID, account.ProfileUpdate{
		Email: "profile@example.com",
		Name:  "Jane Roe",
	})
	require.NoError(t, err)
	assert.Empty(t, updated.Profile.Location)
}

func TestUpdateProfileEmailChangeClearsVerification(t *testing.T) {
	t.Parallel()

	svc, store, _ := newTestService(t)
	ctx := context.Background()

	acc, err := svc.Register(ctx, "old@example.com", "hunter2secret", "hunter2secret")
	require.NoError(t, err)

	acc.EmailVerified = true
	acc.EmailVerificationToken = strings.Repeat("a", token.Length)
	require.NoError(t, store.Update(ctx, acc))

	updated, err := svc.UpdateProfile(ctx, acc.ID, account.ProfileUpdate{Email: "new@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", updated.Email)
	assert.False(t, updated.EmailVerified)
	assert.Empty(t, updated.EmailVerificationToken)
}

func TestUpdateProfileDuplicateEmail(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "first@example.com", "hunter2secret", "hunter2secret")
	require.NoError(t, err)
	second, err := svc.Register(ctx, "second@example.com", "hunter2secret", "hunter2secret")
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, second.ID, account.ProfileUpdate{Email: "first@example.com"})
	assert.ErrorIs(t, err, account.ErrDuplicateEmail)
}

func TestUpdatePassword(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	acc, err := svc.Register(ctx, "pwchange@example.com", "hunter2secret", "hunter2secret")
	require.NoError(t, err)

	_, err = svc.UpdatePassword(ctx, acc.ID, "brand-new-pass", "brand-new-pass")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "pwchange@example.com", "hunter2secret")
	assert.ErrorIs(t, err, account.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "pwchange@example.com", "brand-new-pass")
	require.NoError(t, err)

	_, err = svc.UpdatePassword(ctx, acc.ID, "short", "short")
	assert.True(t, validator.IsValidationError(err))
}

func TestDeleteAccount(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	acc, err := svc.Register(ctx, "gone@example.com", "hunter2secret", "hunter2secret")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(ctx, acc.ID))

	_, err = svc.GetAccount(ctx, acc.ID)
	assert.ErrorIs(t, err, account.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteAccount(ctx, acc.ID), account.ErrNotFound)
}

func TestEmailVerificationFlow(t *testing.T) {
	t.Parallel()

	svc, store, mailer := newTestService(t)
	ctx := context.Background()

	acc, err := svc.Register(ctx, "verify@example.com", "hunter2secret", "hunter2secret")
	require.NoError(t, err)

	require.NoError(t, svc.RequestEmailVerification(ctx, acc.ID))

	stored, err := store.GetByID(ctx, acc.ID)
	require.NoError(t, err)
	require.Len(t, stored.EmailVerificationToken, token.Length)

	sent, ok := mailer.last()
	require.True(t, ok)
	assert.Contains(t, sent.BodyHTML, "/account/verify/"+stored.EmailVerificationToken)

	verified, err := svc.ConfirmEmailVerification(ctx, acc.ID, stored.EmailVerificationToken)
	require.NoError(t, err)
	assert.True(t, verified.EmailVerified)
	assert.Empty(t, verified.EmailVerificationToken)

	// The flag is terminal: repeat operations report it rather than reissue.
	_, err = svc.ConfirmEmailVerification(ctx, acc.ID, stored.EmailVerificationToken)
	assert.ErrorIs(t, err, account.ErrAlreadyVerified)
	assert.ErrorIs(t, svc.RequestEmailVerification(ctx, acc.ID), account.ErrAlreadyVerified)
}

func TestEmailVerificationWrongToken(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	acc, err := svc.Register(ctx, "wrongtok@example.com", "hunter2secret", "hunter2secret")
	require.NoError(t, err)
	require.NoError(t, svc.RequestEmailVerification(ctx, acc.ID))

	_, err = svc.ConfirmEmailVerification(ctx, acc.ID, strings.Repeat("0", token.Length))
	assert.ErrorIs(t, err, account.ErrInvalidToken)

	_, err = svc.ConfirmEmailVerification(ctx, acc.ID, "zz")
	assert.True(t, validator.IsValidationError(err))
}

func TestEmailVerificationScopedToOwner(t *testing.T) {
	t.Parallel()

	svc, store, _ := newTestService(t)
	ctx := context.Background()

	alice, err := svc.Register(ctx, "alice@example.com", "hunter2secret", "hunter2secret")
	require.NoError(t, err)
	bob, err := svc.Register(ctx, "bob@example.com", "hunter2secret", "hunter2secret")
	require.NoError(t, err)

	require.NoError(t, svc.RequestEmailVerification(ctx, alice.ID))
	aliceStored, err := store.GetByID(ctx, alice.ID)
	require.NoError(t, err)

	// Alice's token presented under Bob's session does not verify Bob.
	_, err = svc.ConfirmEmailVerification(ctx, bob.ID, aliceStored.EmailVerificationToken)
	assert.ErrorIs(t, err, account.ErrInvalidToken)

	stored, err := store.GetByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.False(t, stored.EmailVerified)
}
