package account

import (
	"time"

	"github.com/google/uuid"
)

// Profile holds the free-form display attributes of an account. There are no
// uniqueness constraints on any of these fields.
type Profile struct {
	Name     string
	Gender   string
	Location string
	Website  string
	Picture  string
}

// Account is one registered user. Email is empty for accounts created
// through a federated login that did not share an address; PasswordHash is
// empty until a password is set.
type Account struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string

	// Reset token fields are present together or absent together. The token
	// is only valid while the current time is strictly before the expiry.
	PasswordResetToken   string
	PasswordResetExpires time.Time

	// The verification token has no expiry. It is single-use: once matched
	// it is cleared and EmailVerified flips to true.
	EmailVerificationToken string
	EmailVerified          bool

	GoogleID   string
	FacebookID string

	Profile Profile

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPassword reports whether a local password has been set.
func (a *Account) HasPassword() bool {
	return a.PasswordHash != ""
}

// clearResetToken removes both reset fields; they never exist separately.
func (a *Account) clearResetToken() {
	a.PasswordResetToken = ""
	a.PasswordResetExpires = time.Time{}
}
