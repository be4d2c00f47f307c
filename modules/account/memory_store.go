package account

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Storage with an in-process map. It is the default
// for development and tests; production deployments use the Postgres or
// Mongo store.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*Account
	byEmail  map[string]uuid.UUID
}

// NewMemoryStore creates an empty in-memory account store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[uuid.UUID]*Account),
		byEmail:  make(map[string]uuid.UUID),
	}
}

var _ Storage = (*MemoryStore)(nil)

func (m *MemoryStore) Create(ctx context.Context, acc *Account) error {
	if acc == nil || acc.ID == uuid.Nil {
		return ErrInvalidAccount
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if acc.Email != "" {
		if _, exists := m.byEmail[acc.Email]; exists {
			return ErrDuplicateEmail
		}
	}

	now := time.Now()
	cp := *acc
	cp.CreatedAt = now
	cp.UpdatedAt = now

	m.accounts[cp.ID] = &cp
	if cp.Email != "" {
		m.byEmail[cp.Email] = cp.ID
	}

	*acc = cp
	return nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	acc, exists := m.accounts[id]
	if !exists {
		return nil, ErrNotFound
	}
	cp := *acc
	return &cp, nil
}

func (m *MemoryStore) GetByEmail(ctx context.Context, email string) (*Account, error) {
	if email == "" {
		return nil, ErrNotFound
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	id, exists := m.byEmail[email]
	if !exists {
		return nil, ErrNotFound
	}
	cp := *m.accounts[id]
	return &cp, nil
}

func (m *MemoryStore) GetByResetToken(ctx context.Context, token string) (*Account, error) {
	if token == "" {
		return nil, ErrNotFound
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, acc := range m.accounts {
		if acc.PasswordResetToken == token {
			cp := *acc
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetByGoogleID(ctx context.Context, id string) (*Account, error) {
	return m.getByProviderID(id, func(acc *Account) string { return acc.GoogleID })
}

func (m *MemoryStore) GetByFacebookID(ctx context.Context, id string) (*Account, error) {
	return m.getByProviderID(id, func(acc *Account) string { return acc.FacebookID })
}

func (m *MemoryStore) getByProviderID(id string, field func(*Account) string) (*Account, error) {
	if id == "" {
		return nil, ErrNotFound
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, acc := range m.accounts {
		if field(acc) == id {
			cp := *acc
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) Update(ctx context.Context, acc *Account) error {
	if acc == nil || acc.ID == uuid.Nil {
		return ErrInvalidAccount
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, exists := m.accounts[acc.ID]
	if !exists {
		return ErrNotFound
	}

	if acc.Email != "" {
		if owner, taken := m.byEmail[acc.Email]; taken && owner != acc.ID {
			return ErrDuplicateEmail
		}
	}

	cp := *acc
	cp.CreatedAt = stored.CreatedAt
	cp.UpdatedAt = time.Now()

	if stored.Email != cp.Email {
		delete(m.byEmail, stored.Email)
	}
	m.accounts[cp.ID] = &cp
	if cp.Email != "" {
		m.byEmail[cp.Email] = cp.ID
	}

	*acc = cp
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, exists := m.accounts[id]
	if !exists {
		return ErrNotFound
	}

	delete(m.byEmail, acc.Email)
	delete(m.accounts, id)
	return nil
}
