package token

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"time"
)

// Length is the size of an issued token in hex characters.
const Length = 32

// ErrGenerationFailed indicates the system's randomness source failed.
// This is fatal to the issuing operation; a token must never be derived
// from a weaker source.
var ErrGenerationFailed = errors.New("token: generation failed")

// Issuer creates bearer tokens. The zero value is usable; TTL only applies
// to expiring tokens and defaults to one hour.
type Issuer struct {
	ttl time.Duration
	now func() time.Time
}

// Option configures an Issuer during construction.
type Option func(*Issuer)

// WithTTL sets the lifetime attached to expiring tokens.
func WithTTL(ttl time.Duration) Option {
	return func(i *Issuer) {
		i.ttl = ttl
	}
}

// WithClock overrides the time source, used by tests to simulate expiry.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		i.now = now
	}
}

// NewIssuer creates an Issuer with a one hour TTL for expiring tokens.
func NewIssuer(opts ...Option) *Issuer {
	i := &Issuer{
		ttl: time.Hour,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue returns a new random token with no expiry attached.
func (i *Issuer) Issue() (string, error) {
	b := make([]byte, Length/2)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrGenerationFailed, err)
	}
	return hex.EncodeToString(b), nil
}

// IssueExpiring returns a new random token and its expiry timestamp.
func (i *Issuer) IssueExpiring() (string, time.Time, error) {
	tok, err := i.Issue()
	if err != nil {
		return "", time.Time{}, err
	}
	return tok, i.now().Add(i.ttl), nil
}

// Validate reports whether a presented token matches the stored one.
// Comparison is constant-time; an empty stored token never matches.
func (i *Issuer) Validate(presented, stored string) bool {
	return Matches(presented, stored)
}

// ValidateExpiring reports whether a presented token matches the stored one
// and the current time is strictly before the stored expiry. A zero expiry
// means the token was never issued and is treated as absent.
func (i *Issuer) ValidateExpiring(presented, stored string, expiresAt time.Time) bool {
	if expiresAt.IsZero() || !i.now().Before(expiresAt) {
		return false
	}
	return Matches(presented, stored)
}

// Matches performs a constant-time equality check between two tokens.
func Matches(presented, stored string) bool {
	if stored == "" || len(presented) != len(stored) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(stored)) == 1
}

// IsWellFormed reports whether a string has the exact shape of an issued
// token: fixed length, lowercase or uppercase hex. Anything else is a
// malformed link, not a lookup miss.
func IsWellFormed(s string) bool {
	if len(s) != Length {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
