package account

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/starterkit/pkg/email"
	"github.com/dmitrymomot/starterkit/pkg/logger"
	"github.com/dmitrymomot/starterkit/pkg/password"
	"github.com/dmitrymomot/starterkit/pkg/sanitizer"
	"github.com/dmitrymomot/starterkit/pkg/token"
	"github.com/dmitrymomot/starterkit/pkg/validator"
)

// Service orchestrates the account lifecycle: registration, login checks,
// password reset, email verification, profile management, and deletion.
// Session establishment belongs to the HTTP layer; Service methods return
// the affected account and the caller binds the session.
type Service struct {
	cfg     Config
	storage Storage
	hasher  *password.Hasher
	tokens  *token.Issuer
	mailer  email.EmailSender
	log     *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithHasher overrides the password hasher, used by tests to lower the cost.
func WithHasher(h *password.Hasher) Option {
	return func(s *Service) { s.hasher = h }
}

// WithTokenIssuer overrides the token issuer, used by tests to control the clock.
func WithTokenIssuer(i *token.Issuer) Option {
	return func(s *Service) { s.tokens = i }
}

// WithMailer sets the transport for reset and verification emails. Without
// one, notification sends fail as ErrNotificationFailed while the state
// mutation stands.
func WithMailer(m email.EmailSender) Option {
	return func(s *Service) { s.mailer = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

func WithConfig(cfg Config) Option {
	return func(s *Service) { s.cfg = cfg }
}

// NewService creates an account service over the given storage.
func NewService(storage Storage, opts ...Option) *Service {
	s := &Service{
		cfg: Config{
			AppName:           "Starter Kit",
			AppURL:            "http://localhost:8080",
			MinPasswordLength: 8,
		},
		storage: storage,
		hasher:  password.New(),
		tokens:  token.NewIssuer(),
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a local account. Validation failures return
// validator.ValidationErrors with no side effects; a racing duplicate
// registration loses with ErrDuplicateEmail from the store's unique
// constraint even when the pre-write check passed.
func (s *Service) Register(ctx context.Context, emailAddr, pass, confirm string) (*Account, error) {
	emailAddr = sanitizer.NormalizeEmail(emailAddr)

	if err := validator.Apply(
		validator.ValidEmail("email", emailAddr),
		validator.MinLength("password", pass, s.cfg.MinPasswordLength),
		validator.FieldsMatch("confirm_password", pass, confirm),
	); err != nil {
		return nil, err
	}

	if _, err := s.storage.GetByEmail(ctx, emailAddr); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(pass)
	if err != nil {
		return nil, err
	}

	acc := &Account{
		ID:           uuid.New(),
		Email:        emailAddr,
		PasswordHash: string(hash),
	}
	if err := s.storage.Create(ctx, acc); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "account registered", logger.AccountID(acc.ID), logger.Component("account"))
	return acc, nil
}

// Login checks credentials. The failure is ErrInvalidCredentials for both
// an unknown email and a wrong password so responses cannot be used to
// enumerate accounts.
func (s *Service) Login(ctx context.Context, emailAddr, pass string) (*Account, error) {
	emailAddr = sanitizer.NormalizeEmail(emailAddr)

	if err := validator.Apply(
		validator.ValidEmail("email", emailAddr),
		validator.NotEmpty("password", pass),
	); err != nil {
		return nil, err
	}

	acc, err := s.storage.GetByEmail(ctx, emailAddr)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !acc.HasPassword() || !s.hasher.Verify(pass, []byte(acc.PasswordHash)) {
		return nil, ErrInvalidCredentials
	}

	return acc, nil
}

// GetAccount returns the account for the given id.
func (s *Service) GetAccount(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.storage.GetByID(ctx, id)
}

// RequestPasswordReset issues a reset token for the account with the given
// email and sends the reset link. An unknown email is not an error: the
// caller shows the same generic notice either way, and the miss is logged at
// debug level. A failed send returns ErrNotificationFailed after the token
// was persisted; the token stays valid.
func (s *Service) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	emailAddr = sanitizer.NormalizeEmail(emailAddr)

	if err := validator.Apply(validator.ValidEmail("email", emailAddr)); err != nil {
		return err
	}

	acc, err := s.storage.GetByEmail(ctx, emailAddr)
	if errors.Is(err, ErrNotFound) {
		s.log.DebugContext(ctx, "password reset requested for unknown email",
			logger.Email(emailAddr), logger.Component("account"))
		return nil
	}
	if err != nil {
		return err
	}

	tok, expiresAt, err := s.tokens.IssueExpiring()
	if err != nil {
		return err
	}

	acc.PasswordResetToken = tok
	acc.PasswordResetExpires = expiresAt
	if err := s.storage.Update(ctx, acc); err != nil {
		return err
	}

	if err := s.sendEmail(ctx, passwordResetEmail(s.cfg, acc.Email, tok)); err != nil {
		s.log.WarnContext(ctx, "failed to send password reset email",
			logger.Error(err), logger.AccountID(acc.ID), logger.Component("account"))
		return errors.Join(ErrNotificationFailed, err)
	}

	return nil
}

// CompletePasswordReset consumes a reset token: re-hashes the new password,
// clears both token fields, and best-effort sends a confirmation email. The
// returned account is ready for session establishment.
func (s *Service) CompletePasswordReset(ctx context.Context, tok, pass, confirm string) (*Account, error) {
	if err := validator.Apply(
		validator.Hexadecimal("token", tok, token.Length),
		validator.MinLength("password", pass, s.cfg.MinPasswordLength),
		validator.FieldsMatch("confirm_password", pass, confirm),
	); err != nil {
		return nil, err
	}

	acc, err := s.storage.GetByResetToken(ctx, tok)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	if !s.tokens.ValidateExpiring(tok, acc.PasswordResetToken, acc.PasswordResetExpires) {
		return nil, ErrTokenExpired
	}

	hash, err := s.hasher.Hash(pass)
	if err != nil {
		return nil, err
	}

	acc.PasswordHash = string(hash)
	acc.clearResetToken()
	if err := s.storage.Update(ctx, acc); err != nil {
		return nil, err
	}

	// Confirmation is informational only; a send failure never fails the reset.
	if acc.Email != "" {
		if err := s.sendEmail(ctx, passwordChangedEmail(s.cfg, acc.Email)); err != nil {
			s.log.WarnContext(ctx, "failed to send password change confirmation",
				logger.Error(err), logger.AccountID(acc.ID), logger.Component("account"))
		}
	}

	s.log.InfoContext(ctx, "password reset completed", logger.AccountID(acc.ID), logger.Component("account"))
	return acc, nil
}

// ProfileUpdate carries the full profile form. Fields the form omits arrive
// empty and are persisted empty; nothing is left unchanged implicitly.
type ProfileUpdate struct {
	Email    string
	Name     string
	Gender   string
	Location string
	Website  string
	Picture  string
}

// UpdateProfile persists the submitted profile verbatim. Changing the email
// clears the verified flag and any pending verification token; a collision
// with another account's email fails with ErrDuplicateEmail.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, upd ProfileUpdate) (*Account, error) {
	upd.Email = sanitizer.NormalizeEmail(upd.Email)

	if err := validator.Apply(validator.ValidEmail("email", upd.Email)); err != nil {
		return nil, err
	}

	acc, err := s.storage.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Email != acc.Email {
		acc.EmailVerified = false
		acc.EmailVerificationToken = ""
	}

	acc.Email = upd.Email
	acc.Profile = Profile{
		Name:     sanitizer.Trim(upd.Name),
		Gender:   sanitizer.Trim(upd.Gender),
		Location: sanitizer.Trim(upd.Location),
		Website:  sanitizer.Trim(upd.Website),
		Picture:  sanitizer.Trim(upd.Picture),
	}

	if err := s.storage.Update(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// UpdatePassword re-hashes and persists a new password for the account.
func (s *Service) UpdatePassword(ctx context.Context, id uuid.UUID, pass, confirm string) (*Account, error) {
	if err := validator.Apply(
		validator.MinLength("password", pass, s.cfg.MinPasswordLength),
		validator.FieldsMatch("confirm_password", pass, confirm),
	); err != nil {
		return nil, err
	}

	acc, err := s.storage.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(pass)
	if err != nil {
		return nil, err
	}

	acc.PasswordHash = string(hash)
	if err := s.storage.Update(ctx, acc); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "password updated", logger.AccountID(acc.ID), logger.Component("account"))
	return acc, nil
}

// DeleteAccount removes the account record. The caller terminates the
// session afterwards.
func (s *Service) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	if err := s.storage.Delete(ctx, id); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "account deleted", logger.AccountID(id), logger.Component("account"))
	return nil
}

// RequestEmailVerification issues a verification token (no expiry) and
// emails the confirmation link. Already-verified accounts get
// ErrAlreadyVerified, which handlers surface as an informational notice.
func (s *Service) RequestEmailVerification(ctx context.Context, id uuid.UUID) error {
	acc, err := s.storage.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if acc.EmailVerified {
		return ErrAlreadyVerified
	}

	if err := validator.Apply(validator.ValidEmail("email", acc.Email)); err != nil {
		return err
	}

	tok, err := s.tokens.Issue()
	if err != nil {
		return err
	}

	acc.EmailVerificationToken = tok
	if err := s.storage.Update(ctx, acc); err != nil {
		return err
	}

	if err := s.sendEmail(ctx, emailVerificationEmail(s.cfg, acc.Email, tok)); err != nil {
		s.log.WarnContext(ctx, "failed to send verification email",
			logger.Error(err), logger.AccountID(acc.ID), logger.Component("account"))
		return errors.Join(ErrNotificationFailed, err)
	}

	return nil
}

// ConfirmEmailVerification consumes the verification token. It is scoped to
// the authenticated owner: the token must equal the one stored on that
// account exactly. On success the token is cleared, so a second confirmation
// with the same token fails.
func (s *Service) ConfirmEmailVerification(ctx context.Context, id uuid.UUID, tok string) (*Account, error) {
	acc, err := s.storage.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if acc.EmailVerified {
		return nil, ErrAlreadyVerified
	}

	if err := validator.Apply(validator.Hexadecimal("token", tok, token.Length)); err != nil {
		return nil, err
	}

	if !s.tokens.Validate(tok, acc.EmailVerificationToken) {
		return nil, ErrInvalidToken
	}

	acc.EmailVerificationToken = ""
	acc.EmailVerified = true
	if err := s.storage.Update(ctx, acc); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "email verified", logger.AccountID(acc.ID), logger.Component("account"))
	return acc, nil
}

func (s *Service) sendEmail(ctx context.Context, params email.SendEmailParams) error {
	if s.mailer == nil {
		return email.ErrFailedToSendEmail
	}
	return s.mailer.SendEmail(ctx, params)
}
