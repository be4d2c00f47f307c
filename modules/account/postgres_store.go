package account

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/starterkit/pkg/pg"
)

// PostgresStore implements Storage on a pgx connection pool. Email
// uniqueness is enforced by a partial unique index so federated-only
// accounts with no email do not collide.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Storage backed by the given pool. The accounts
// table must exist; see the goose migrations under internal/db/migrations.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

var _ Storage = (*PostgresStore)(nil)

const accountColumns = `id, email, password_hash, password_reset_token, password_reset_expires,
	email_verification_token, email_verified, google_id, facebook_id,
	name, gender, location, website, picture, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, acc *Account) error {
	if acc == nil || acc.ID == uuid.Nil {
		return ErrInvalidAccount
	}

	now := time.Now()
	acc.CreatedAt = now
	acc.UpdatedAt = now

	_, err := s.pool.Exec(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		acc.ID, acc.Email, acc.PasswordHash,
		acc.PasswordResetToken, nullTime(acc.PasswordResetExpires),
		acc.EmailVerificationToken, acc.EmailVerified,
		acc.GoogleID, acc.FacebookID,
		acc.Profile.Name, acc.Profile.Gender, acc.Profile.Location,
		acc.Profile.Website, acc.Profile.Picture,
		acc.CreatedAt, acc.UpdatedAt,
	)
	if pg.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.getBy(ctx, `id = $1`, id)
}

func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (*Account, error) {
	if email == "" {
		return nil, ErrNotFound
	}
	return s.getBy(ctx, `email = $1`, email)
}

func (s *PostgresStore) GetByResetToken(ctx context.Context, token string) (*Account, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	return s.getBy(ctx, `password_reset_token = $1`, token)
}

func (s *PostgresStore) GetByGoogleID(ctx context.Context, id string) (*Account, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	return s.getBy(ctx, `google_id = $1`, id)
}

func (s *PostgresStore) GetByFacebookID(ctx context.Context, id string) (*Account, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	return s.getBy(ctx, `facebook_id = $1`, id)
}

func (s *PostgresStore) getBy(ctx context.Context, where string, arg any) (*Account, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE `+where, arg)
	return scanAccount(row)
}

func (s *PostgresStore) Update(ctx context.Context, acc *Account) error {
	if acc == nil || acc.ID == uuid.Nil {
		return ErrInvalidAccount
	}

	acc.UpdatedAt = time.Now()

	tag, err := s.pool.Exec(ctx, `
		UPDATE accounts SET
			email = $2, password_hash = $3,
			password_reset_token = $4, password_reset_expires = $5,
			email_verification_token = $6, email_verified = $7,
			google_id = $8, facebook_id = $9,
			name = $10, gender = $11, location = $12, website = $13, picture = $14,
			updated_at = $15
		WHERE id = $1`,
		acc.ID, acc.Email, acc.PasswordHash,
		acc.PasswordResetToken, nullTime(acc.PasswordResetExpires),
		acc.EmailVerificationToken, acc.EmailVerified,
		acc.GoogleID, acc.FacebookID,
		acc.Profile.Name, acc.Profile.Gender, acc.Profile.Location,
		acc.Profile.Website, acc.Profile.Picture,
		acc.UpdatedAt,
	)
	if pg.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAccount(row pgx.Row) (*Account, error) {
	var acc Account
	var resetExpires *time.Time

	err := row.Scan(
		&acc.ID, &acc.Email, &acc.PasswordHash,
		&acc.PasswordResetToken, &resetExpires,
		&acc.EmailVerificationToken, &acc.EmailVerified,
		&acc.GoogleID, &acc.FacebookID,
		&acc.Profile.Name, &acc.Profile.Gender, &acc.Profile.Location,
		&acc.Profile.Website, &acc.Profile.Picture,
		&acc.CreatedAt, &acc.UpdatedAt,
	)
	if pg.IsNotFoundError(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if resetExpires != nil {
		acc.PasswordResetExpires = *resetExpires
	}
	return &acc, nil
}

// nullTime maps the zero time to SQL NULL so "no expiry" is queryable.
func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
