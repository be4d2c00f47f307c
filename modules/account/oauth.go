package account

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"

	"github.com/dmitrymomot/starterkit/pkg/logger"
	"github.com/dmitrymomot/starterkit/pkg/token"
)

const oauthStateSessionKey = "oauth_state"

// OAuthConfig holds provider credentials. A provider with an empty client id
// is simply not mounted.
type OAuthConfig struct {
	GoogleClientID       string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret   string `env:"GOOGLE_CLIENT_SECRET"`
	FacebookClientID     string `env:"FACEBOOK_CLIENT_ID"`
	FacebookClientSecret string `env:"FACEBOOK_CLIENT_SECRET"`
}

// provider bundles an oauth2 exchange config with the function that turns an
// access token into a FederatedIdentity.
type provider struct {
	name     string
	config   *oauth2.Config
	userInfo func(ctx context.Context, client *http.Client) (FederatedIdentity, error)
}

// OAuthProviders mounts federated sign-in routes for the configured
// providers under /auth/{provider} and /auth/{provider}/callback.
type OAuthProviders struct {
	providers []provider
	tokens    *token.Issuer
}

// NewOAuthProviders builds the provider set from credentials. Redirect URLs
// are derived from appURL, which must match the URLs registered with each
// provider's console.
func NewOAuthProviders(cfg OAuthConfig, appURL string) *OAuthProviders {
	p := &OAuthProviders{tokens: token.NewIssuer()}

	if cfg.GoogleClientID != "" {
		p.providers = append(p.providers, provider{
			name: ProviderGoogle,
			config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				RedirectURL:  appURL + "/auth/google/callback",
				Scopes:       []string{"openid", "email", "profile"},
				Endpoint:     google.Endpoint,
			},
			userInfo: googleUserInfo,
		})
	}

	if cfg.FacebookClientID != "" {
		p.providers = append(p.providers, provider{
			name: ProviderFacebook,
			config: &oauth2.Config{
				ClientID:     cfg.FacebookClientID,
				ClientSecret: cfg.FacebookClientSecret,
				RedirectURL:  appURL + "/auth/facebook/callback",
				Scopes:       []string{"email", "public_profile"},
				Endpoint:     facebook.Endpoint,
			},
			userInfo: facebookUserInfo,
		})
	}

	return p
}

// Mount registers the redirect and callback routes on the handler's router.
func (p *OAuthProviders) Mount(r chi.Router, h *Handler) {
	for _, prov := range p.providers {
		prov := prov
		r.Get("/auth/"+prov.name, p.begin(h, prov))
		r.Get("/auth/"+prov.name+"/callback", p.callback(h, prov))
	}
}

// begin stores a one-shot state token in the session and redirects to the
// provider's consent screen.
func (p *OAuthProviders) begin(h *Handler, prov provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.isAuthenticated(r) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		state, err := p.tokens.Issue()
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if err := h.sessions.SetValue(r.Context(), w, r, oauthStateSessionKey, state); err != nil {
			h.fail(w, r, err)
			return
		}

		http.Redirect(w, r, prov.config.AuthCodeURL(state), http.StatusSeeOther)
	}
}

// callback verifies the state round-trip, exchanges the code, fetches the
// provider profile, and signs the resolved account in.
func (p *OAuthProviders) callback(h *Handler, prov provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stored, ok := h.sessions.PopValue(r.Context(), r, oauthStateSessionKey)
		if !ok || !token.Matches(r.URL.Query().Get("state"), stored) {
			h.redirect(w, r, "/login", errorNotices("Sign-in could not be completed. Please try again."))
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			h.redirect(w, r, "/login", errorNotices(fmt.Sprintf("Sign-in with %s was cancelled.", prov.name)))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
		defer cancel()

		tok, err := prov.config.Exchange(ctx, code)
		if err != nil {
			h.log.ErrorContext(r.Context(), "oauth code exchange failed",
				logger.Error(err), logger.Component("account.oauth"), logger.Event(prov.name))
			h.redirect(w, r, "/login", errorNotices("Sign-in could not be completed. Please try again."))
			return
		}

		ident, err := prov.userInfo(ctx, prov.config.Client(ctx, tok))
		if err != nil {
			h.log.ErrorContext(r.Context(), "oauth profile fetch failed",
				logger.Error(err), logger.Component("account.oauth"), logger.Event(prov.name))
			h.redirect(w, r, "/login", errorNotices("Sign-in could not be completed. Please try again."))
			return
		}

		acc, err := h.svc.AuthenticateFederated(r.Context(), ident)
		if err != nil {
			h.fail(w, r, err)
			return
		}

		h.establishAndRedirect(w, r, acc, successNotices("You are signed in."))
	}
}

func googleUserInfo(ctx context.Context, client *http.Client) (FederatedIdentity, error) {
	var payload struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := fetchJSON(ctx, client, "https://www.googleapis.com/oauth2/v2/userinfo", &payload); err != nil {
		return FederatedIdentity{}, err
	}
	return FederatedIdentity{
		Provider: ProviderGoogle,
		Subject:  payload.ID,
		Email:    payload.Email,
		Name:     payload.Name,
		Picture:  payload.Picture,
	}, nil
}

func facebookUserInfo(ctx context.Context, client *http.Client) (FederatedIdentity, error) {
	var payload struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture struct {
			Data struct {
				URL string `json:"url"`
			} `json:"data"`
		} `json:"picture"`
	}
	if err := fetchJSON(ctx, client, "https://graph.facebook.com/me?fields=id,name,email,picture", &payload); err != nil {
		return FederatedIdentity{}, err
	}
	return FederatedIdentity{
		Provider: ProviderFacebook,
		Subject:  payload.ID,
		Email:    payload.Email,
		Name:     payload.Name,
		Picture:  payload.Picture.Data.URL,
	}, nil
}

func fetchJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("userinfo request failed with status %d: %s", resp.StatusCode, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
