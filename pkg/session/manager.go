package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/starterkit/pkg/cookie"
)

// Manager handles session operations: resolving the request's session,
// establishing an authenticated one after credential checks, and tearing it
// down on logout.
type Manager struct {
	store         Store
	transport     Transport
	config        Config
	cookieManager *cookie.Manager
	cookieOptions []cookie.Option
	logger        *slog.Logger
}

// New creates a session manager with the given options.
func New(opts ...Option) *Manager {
	m := &Manager{
		config: DefaultConfig(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.store == nil {
		m.store = NewMemoryStore(m.config.CleanupInterval)
	}

	if m.transport == nil {
		if m.cookieManager == nil {
			// Fail fast on misconfiguration to prevent insecure runtime behavior
			panic("session: cookie manager is required when using default cookie transport")
		}
		m.transport = NewCookieTransport(m.cookieManager, m.config.CookieName, m.config.SecureCookies, m.cookieOptions...)
	}

	return m
}

// NewFromConfig creates a Manager from the provided Config.
func NewFromConfig(cfg Config, opts ...Option) *Manager {
	return New(append([]Option{WithConfig(cfg)}, opts...)...)
}

// Get retrieves the request's existing session, if any.
func (m *Manager) Get(ctx context.Context, r *http.Request) (*Session, error) {
	token, err := m.transport.GetToken(r)
	if err != nil {
		return nil, err
	}

	session, err := m.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	if session.IsExpired() {
		return nil, ErrSessionExpired
	}

	return session, nil
}

// Ensure returns the request's session, creating an anonymous one if needed.
func (m *Manager) Ensure(ctx context.Context, w http.ResponseWriter, r *http.Request) (*Session, error) {
	session, err := m.Get(ctx, r)
	if err == nil {
		return session, nil
	}
	_ = m.transport.ClearToken(w)

	session, err = m.createSession(ctx, nil)
	if err != nil {
		return nil, err
	}

	if err := m.transport.SetToken(w, session.Token, m.config.AnonTTL); err != nil {
		_ = m.store.Delete(ctx, session.Token)
		return nil, err
	}

	return session, nil
}

// Establish binds the request's session to an account after a successful
// credential check, rotating the token so a pre-login session id can never
// be fixated into an authenticated one. Data set before login (such as the
// intended destination) carries over.
func (m *Manager) Establish(ctx context.Context, w http.ResponseWriter, r *http.Request, accountID uuid.UUID) (*Session, error) {
	session, err := m.Get(ctx, r)
	if err != nil {
		session, err = m.createSession(ctx, &accountID)
		if err != nil {
			return nil, err
		}
	} else {
		newToken, err := generateToken()
		if err != nil {
			return nil, err
		}

		_ = m.store.Delete(ctx, session.Token)

		// The absolute deadline counts from authentication, not from when
		// the anonymous session was first created.
		session.Token = newToken
		session.AccountID = &accountID
		session.ExpiresAt = time.Now().Add(m.config.AuthTTL)

		if err := m.store.Create(ctx, session); err != nil {
			return nil, err
		}
	}

	if err := m.transport.SetToken(w, session.Token, m.config.AuthTTL); err != nil {
		return nil, err
	}

	return session, nil
}

// Terminate invalidates the request's session immediately and
// unconditionally. A store failure is logged but does not block clearing
// the client-visible cookie, so from the caller's perspective logout always
// succeeds.
func (m *Manager) Terminate(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if token, err := m.transport.GetToken(r); err == nil && token != "" {
		if err := m.store.Delete(ctx, token); err != nil {
			m.logger.Error("failed to destroy session state",
				slog.Any("error", err),
				slog.String("component", "session"),
			)
		}
	}

	_ = m.transport.ClearToken(w)
}

// TerminateAll destroys every session bound to the account, across devices.
func (m *Manager) TerminateAll(ctx context.Context, accountID uuid.UUID) error {
	return m.store.DeleteByAccountID(ctx, accountID.String())
}

// Current resolves the request's session to an account id. A false result
// means the request is unauthenticated.
func (m *Manager) Current(ctx context.Context, r *http.Request) (uuid.UUID, bool) {
	session, err := m.Get(ctx, r)
	if err != nil || !session.IsAuthenticated() {
		return uuid.Nil, false
	}
	return *session.AccountID, true
}

// SetValue persists a key/value pair on the request's session, creating an
// anonymous session if none exists yet.
func (m *Manager) SetValue(ctx context.Context, w http.ResponseWriter, r *http.Request, key, value string) error {
	session, err := m.Ensure(ctx, w, r)
	if err != nil {
		return err
	}

	session.Set(key, value)
	return m.store.Update(ctx, session)
}

// PopSessionValue reads and removes a key from an already resolved session.
// Establish rotates the token, so the request's cookie no longer resolves;
// callers holding the fresh session use this instead of PopValue.
func (m *Manager) PopSessionValue(ctx context.Context, session *Session, key string) (string, bool) {
	value, ok := session.Get(key)
	if !ok {
		return "", false
	}

	session.Delete(key)
	if err := m.store.Update(ctx, session); err != nil {
		return "", false
	}

	return value, true
}

// PopValue reads and removes a key from the request's session.
func (m *Manager) PopValue(ctx context.Context, r *http.Request, key string) (string, bool) {
	session, err := m.Get(ctx, r)
	if err != nil {
		return "", false
	}

	value, ok := session.Get(key)
	if !ok {
		return "", false
	}

	session.Delete(key)
	if err := m.store.Update(ctx, session); err != nil {
		return "", false
	}

	return value, true
}

func (m *Manager) createSession(ctx context.Context, accountID *uuid.UUID) (*Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	session := NewSession(token, accountID, m.config.TTL(accountID != nil))

	if err := m.store.Create(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// generateToken creates a cryptographically secure session token.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
