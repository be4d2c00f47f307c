// Package password wraps bcrypt hashing behind a small Hasher type so the
// cost factor is configured once and every caller hashes the same way.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrHashingFailed indicates the hash could not be produced. Callers must
	// abort the enclosing save: an account is never persisted with a plaintext
	// password or a half-written hash.
	ErrHashingFailed = errors.New("password: hashing failed")

	// ErrPasswordTooLong indicates the plaintext exceeds bcrypt's 72-byte limit.
	ErrPasswordTooLong = errors.New("password: too long")
)

// Hasher produces and verifies salted one-way password hashes.
type Hasher struct {
	cost int
}

// Option configures a Hasher during construction.
type Option func(*Hasher)

// WithCost sets the bcrypt cost factor. Values outside bcrypt's supported
// range fall back to the default cost at hash time.
func WithCost(cost int) Option {
	return func(h *Hasher) {
		h.cost = cost
	}
}

// New creates a Hasher with bcrypt's default cost unless overridden.
func New(opts ...Option) *Hasher {
	h := &Hasher{cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Hash derives a salted hash from the plaintext. Each call generates a fresh
// random salt, so hashing the same plaintext twice yields different hashes.
func (h *Hasher) Hash(plaintext string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, ErrPasswordTooLong
		}
		return nil, fmt.Errorf("%w: %w", ErrHashingFailed, err)
	}
	return hash, nil
}

// Verify reports whether the plaintext matches the stored hash. The
// comparison is constant-time within bcrypt; no prefix match is leaked.
func (h *Hasher) Verify(plaintext string, hash []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(plaintext)) == nil
}
