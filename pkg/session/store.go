package session

import "context"

// Store defines the interface for session persistence. The store is a
// multimap from account to sessions: many tokens may point at one account.
type Store interface {
	// Create stores a new session
	Create(ctx context.Context, session *Session) error

	// Get retrieves a session by token
	Get(ctx context.Context, token string) (*Session, error)

	// Update replaces an existing session
	Update(ctx context.Context, session *Session) error

	// Delete removes a session by token
	Delete(ctx context.Context, token string) error

	// DeleteByAccountID removes every session bound to the account,
	// logging out all of its devices at once
	DeleteByAccountID(ctx context.Context, accountID string) error

	// DeleteExpired removes all expired sessions
	DeleteExpired(ctx context.Context) error
}
