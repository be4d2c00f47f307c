package account

import "errors"

var (
	// ErrNotFound indicates no account matches the given identifier.
	ErrNotFound = errors.New("account.not_found")

	// ErrDuplicateEmail indicates the email is already registered. Storage
	// implementations return it both from the pre-write existence check and
	// from a unique-constraint violation when two registrations race.
	ErrDuplicateEmail = errors.New("account.duplicate_email")

	// ErrInvalidCredentials is the generic login failure. It deliberately
	// does not distinguish an unknown email from a wrong password.
	ErrInvalidCredentials = errors.New("account.invalid_credentials")

	// ErrInvalidToken indicates a well-formed token that matches no account
	// or does not equal the stored value.
	ErrInvalidToken = errors.New("account.invalid_token")

	// ErrTokenExpired indicates a reset token past its expiry, even when the
	// token string itself still matches.
	ErrTokenExpired = errors.New("account.token_expired")

	// ErrAlreadyVerified indicates a verification operation on an account
	// whose email is already verified. Handlers surface it as an
	// informational notice, not a failure.
	ErrAlreadyVerified = errors.New("account.already_verified")

	// ErrNotificationFailed indicates the email transport failed after the
	// state mutation succeeded. Non-fatal: the token stays valid and handlers
	// surface a warning.
	ErrNotificationFailed = errors.New("account.notification_failed")

	// ErrInvalidAccount indicates a nil or structurally unusable account
	// passed to a storage operation.
	ErrInvalidAccount = errors.New("account.invalid_account")

	// ErrUnknownProvider indicates a federated identity from a provider the
	// service does not support.
	ErrUnknownProvider = errors.New("account.unknown_provider")
)
