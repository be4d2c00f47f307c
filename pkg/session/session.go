package session

import (
	"time"

	"github.com/google/uuid"
)

// Session is one client's server-side state. AccountID is nil while
// anonymous. Data carries request-scoped values that must survive redirects,
// like the pre-login intended destination.
type Session struct {
	ID        uuid.UUID         `json:"id"`
	Token     string            `json:"token"`
	AccountID *uuid.UUID        `json:"account_id,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
	ExpiresAt time.Time         `json:"expires_at"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewSession creates a session expiring ttl from now.
func NewSession(token string, accountID *uuid.UUID, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.New(),
		Token:     token,
		AccountID: accountID,
		Data:      make(map[string]string),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}

// IsAuthenticated reports whether the session is bound to an account.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.AccountID != nil
}

// IsExpired reports whether the session passed its absolute expiry.
func (s *Session) IsExpired() bool {
	return s != nil && time.Now().After(s.ExpiresAt)
}

// Get retrieves a value from session data.
func (s *Session) Get(key string) (string, bool) {
	if s == nil || s.Data == nil {
		return "", false
	}
	val, ok := s.Data[key]
	return val, ok
}

// Set stores a value in session data.
func (s *Session) Set(key, value string) {
	if s == nil {
		return
	}
	if s.Data == nil {
		s.Data = make(map[string]string)
	}
	s.Data[key] = value
}

// Delete removes a value from session data.
func (s *Session) Delete(key string) {
	if s == nil || s.Data == nil {
		return
	}
	delete(s.Data, key)
}
