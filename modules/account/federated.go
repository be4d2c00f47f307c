package account

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dmitrymomot/starterkit/pkg/logger"
	"github.com/dmitrymomot/starterkit/pkg/sanitizer"
	"github.com/dmitrymomot/starterkit/pkg/validator"
)

// Supported federated identity providers.
const (
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
)

// FederatedIdentity is the provider-asserted identity handed back after an
// OAuth exchange. Subject is the provider-scoped stable user id.
type FederatedIdentity struct {
	Provider string
	Subject  string
	Email    string
	Name     string
	Picture  string
}

// AuthenticateFederated resolves a federated identity to a local account:
// an account already holding the provider id signs in directly; otherwise an
// existing account with the same email gets the provider id linked to it;
// otherwise a new passwordless account is created. A linked or created email
// is never marked verified on the provider's word alone.
func (s *Service) AuthenticateFederated(ctx context.Context, ident FederatedIdentity) (*Account, error) {
	if err := validator.Apply(
		validator.NotEmpty("provider", ident.Provider),
		validator.NotEmpty("subject", ident.Subject),
	); err != nil {
		return nil, err
	}

	var lookup func(context.Context, string) (*Account, error)
	switch ident.Provider {
	case ProviderGoogle:
		lookup = s.storage.GetByGoogleID
	case ProviderFacebook:
		lookup = s.storage.GetByFacebookID
	default:
		return nil, ErrUnknownProvider
	}

	acc, err := lookup(ctx, ident.Subject)
	if err == nil {
		return acc, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	ident.Email = sanitizer.NormalizeEmail(ident.Email)

	if ident.Email != "" {
		acc, err = s.storage.GetByEmail(ctx, ident.Email)
		if err == nil {
			setProviderID(acc, ident)
			fillMissingProfile(acc, ident)
			if err := s.storage.Update(ctx, acc); err != nil {
				return nil, err
			}
			s.log.InfoContext(ctx, "federated identity linked",
				logger.AccountID(acc.ID), logger.Component("account"),
				logger.Event(ident.Provider))
			return acc, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	acc = &Account{
		ID:    uuid.New(),
		Email: ident.Email,
		Profile: Profile{
			Name:    ident.Name,
			Picture: ident.Picture,
		},
	}
	setProviderID(acc, ident)
	if err := s.storage.Create(ctx, acc); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "account registered via federated identity",
		logger.AccountID(acc.ID), logger.Component("account"),
		logger.Event(ident.Provider))
	return acc, nil
}

func setProviderID(acc *Account, ident FederatedIdentity) {
	switch ident.Provider {
	case ProviderGoogle:
		acc.GoogleID = ident.Subject
	case ProviderFacebook:
		acc.FacebookID = ident.Subject
	}
}

// fillMissingProfile copies provider profile data into fields the account
// has not set itself. Existing values always win.
func fillMissingProfile(acc *Account, ident FederatedIdentity) {
	if acc.Profile.Name == "" {
		acc.Profile.Name = ident.Name
	}
	if acc.Profile.Picture == "" {
		acc.Profile.Picture = ident.Picture
	}
}
