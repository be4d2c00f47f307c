package account

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/starterkit/pkg/cookie"
	"github.com/dmitrymomot/starterkit/pkg/logger"
	"github.com/dmitrymomot/starterkit/pkg/session"
	"github.com/dmitrymomot/starterkit/pkg/token"
	"github.com/dmitrymomot/starterkit/pkg/validator"
)

// Handler is the HTTP surface of the account module. Each mutating route
// follows post/redirect/get: the outcome travels as flash notices and the
// next GET renders them.
type Handler struct {
	cfg      Config
	svc      *Service
	sessions *session.Manager
	cookies  *cookie.Manager
	oauth    *OAuthProviders
	log      *slog.Logger
}

// HandlerOption configures optional Handler collaborators.
type HandlerOption func(*Handler)

// WithOAuth mounts the federated login routes for the configured providers.
func WithOAuth(p *OAuthProviders) HandlerOption {
	return func(h *Handler) { h.oauth = p }
}

func WithHandlerLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) { h.log = l }
}

// NewHandler wires the account service to its routes.
func NewHandler(cfg Config, svc *Service, sessions *session.Manager, cookies *cookie.Manager, opts ...HandlerOption) *Handler {
	h := &Handler{
		cfg:      cfg,
		svc:      svc,
		sessions: sessions,
		cookies:  cookies,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router returns the module's routes ready to mount at the site root.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(h.sessions.Middleware)

	r.Get("/", h.home)

	r.Get("/signup", h.signupForm)
	r.Post("/signup", h.signup)
	r.Get("/login", h.loginForm)
	r.Post("/login", h.login)
	r.Get("/logout", h.logout)

	r.Get("/forgot", h.forgotForm)
	r.Post("/forgot", h.forgot)
	r.Get("/reset/{token}", h.resetForm)
	r.Post("/reset/{token}", h.reset)

	r.Group(func(r chi.Router) {
		r.Use(h.sessions.RequireAuth("/login"))
		r.Get("/account", h.profile)
		r.Post("/account/profile", h.updateProfile)
		r.Post("/account/password", h.updatePassword)
		r.Post("/account/delete", h.deleteAccount)
		r.Get("/account/verify", h.requestVerification)
		r.Get("/account/verify/{token}", h.confirmVerification)
	})

	if h.oauth != nil {
		h.oauth.Mount(r, h)
	}

	return r
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(r.Context(), w); err != nil {
		h.log.ErrorContext(r.Context(), "failed to render page",
			logger.Error(err), logger.Component("account.handler"))
	}
}

// fail handles unrecovered store errors: log detail, render a generic page.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.log.ErrorContext(r.Context(), "account operation failed",
		logger.Error(err), logger.Component("account.handler"))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = io.WriteString(w, `<!DOCTYPE html><html><body><h1>Something went wrong</h1><p>Please try again later.</p></body></html>`)
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, target string, n Notices) {
	queueNotices(h.cookies, w, n)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// currentAccountID is only called behind RequireAuth, where a session is
// guaranteed in context.
func (h *Handler) currentAccountID(r *http.Request) (uuid.UUID, bool) {
	return session.AccountIDFromContext(r.Context())
}

func (h *Handler) isAuthenticated(r *http.Request) bool {
	_, ok := session.AccountIDFromContext(r.Context())
	return ok
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, homePage(popNotices(h.cookies, w, r), h.isAuthenticated(r)))
}

func (h *Handler) signupForm(w http.ResponseWriter, r *http.Request) {
	if h.isAuthenticated(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, signupPage(popNotices(h.cookies, w, r), ""))
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	acc, err := h.svc.Register(r.Context(),
		r.FormValue("email"), r.FormValue("password"), r.FormValue("confirm_password"))
	switch {
	case validator.IsValidationError(err):
		h.redirect(w, r, "/signup", errorNotices(validator.ExtractValidationErrors(err).Messages()...))
		return
	case errors.Is(err, ErrDuplicateEmail):
		h.redirect(w, r, "/signup", errorNotices("An account with that email address already exists."))
		return
	case err != nil:
		h.fail(w, r, err)
		return
	}

	h.establishAndRedirect(w, r, acc, successNotices("Welcome! Your account has been created."))
}

func (h *Handler) loginForm(w http.ResponseWriter, r *http.Request) {
	if h.isAuthenticated(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, loginPage(popNotices(h.cookies, w, r), ""))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	acc, err := h.svc.Login(r.Context(), r.FormValue("email"), r.FormValue("password"))
	switch {
	case validator.IsValidationError(err):
		h.redirect(w, r, "/login", errorNotices(validator.ExtractValidationErrors(err).Messages()...))
		return
	case errors.Is(err, ErrInvalidCredentials):
		h.redirect(w, r, "/login", errorNotices("Invalid email or password."))
		return
	case err != nil:
		h.fail(w, r, err)
		return
	}

	h.establishAndRedirect(w, r, acc, successNotices("You are signed in."))
}

// establishAndRedirect binds the session to the account and sends the user
// to the destination captured before login, or the landing page.
func (h *Handler) establishAndRedirect(w http.ResponseWriter, r *http.Request, acc *Account, n Notices) {
	sess, err := h.sessions.Establish(r.Context(), w, r, acc.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	target := "/"
	if dest, ok := h.sessions.PopSessionValue(r.Context(), sess, "return_to"); ok && dest != "" {
		target = dest
	}
	h.redirect(w, r, target, n)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Terminate(r.Context(), w, r)
	h.redirect(w, r, "/", infoNotices("You have been signed out."))
}

func (h *Handler) forgotForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, forgotPasswordPage(popNotices(h.cookies, w, r), ""))
}

// The same notice is shown whether or not the email matched an account, so
// the form cannot be used to probe for registered addresses.
func (h *Handler) forgot(w http.ResponseWriter, r *http.Request) {
	err := h.svc.RequestPasswordReset(r.Context(), r.FormValue("email"))
	switch {
	case validator.IsValidationError(err):
		h.redirect(w, r, "/forgot", errorNotices(validator.ExtractValidationErrors(err).Messages()...))
		return
	case errors.Is(err, ErrNotificationFailed):
		h.redirect(w, r, "/forgot", warningNotices("We could not send the reset email. Please try again later."))
		return
	case err != nil:
		h.fail(w, r, err)
		return
	}

	h.redirect(w, r, "/login", infoNotices("If an account exists for that address, a password reset link has been sent."))
}

func (h *Handler) resetForm(w http.ResponseWriter, r *http.Request) {
	tok := chi.URLParam(r, "token")
	if !token.IsWellFormed(tok) {
		h.redirect(w, r, "/forgot", errorNotices("The password reset link is invalid."))
		return
	}
	h.render(w, r, resetPasswordPage(popNotices(h.cookies, w, r), tok))
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	tok := chi.URLParam(r, "token")

	acc, err := h.svc.CompletePasswordReset(r.Context(), tok,
		r.FormValue("password"), r.FormValue("confirm_password"))
	switch {
	case validator.IsValidationError(err):
		h.redirect(w, r, "/reset/"+tok, errorNotices(validator.ExtractValidationErrors(err).Messages()...))
		return
	case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrTokenExpired):
		h.redirect(w, r, "/forgot", errorNotices("The password reset link is invalid or has expired."))
		return
	case err != nil:
		h.fail(w, r, err)
		return
	}

	h.establishAndRedirect(w, r, acc, successNotices("Your password has been changed."))
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.currentAccountID(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	acc, err := h.svc.GetAccount(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		h.sessions.Terminate(r.Context(), w, r)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.render(w, r, profilePage(popNotices(h.cookies, w, r), acc))
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.currentAccountID(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	_, err := h.svc.UpdateProfile(r.Context(), id, ProfileUpdate{
		Email:    r.FormValue("email"),
		Name:     r.FormValue("name"),
		Gender:   r.FormValue("gender"),
		Location: r.FormValue("location"),
		Website:  r.FormValue("website"),
		Picture:  r.FormValue("picture"),
	})
	switch {
	case validator.IsValidationError(err):
		h.redirect(w, r, "/account", errorNotices(validator.ExtractValidationErrors(err).Messages()...))
		return
	case errors.Is(err, ErrDuplicateEmail):
		h.redirect(w, r, "/account", errorNotices("That email address is already in use by another account."))
		return
	case err != nil:
		h.fail(w, r, err)
		return
	}

	h.redirect(w, r, "/account", successNotices("Profile information has been updated."))
}

func (h *Handler) updatePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := h.currentAccountID(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	_, err := h.svc.UpdatePassword(r.Context(), id,
		r.FormValue("password"), r.FormValue("confirm_password"))
	switch {
	case validator.IsValidationError(err):
		h.redirect(w, r, "/account", errorNotices(validator.ExtractValidationErrors(err).Messages()...))
		return
	case err != nil:
		h.fail(w, r, err)
		return
	}

	h.redirect(w, r, "/account", successNotices("Password has been changed."))
}

func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.currentAccountID(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := h.svc.DeleteAccount(r.Context(), id); err != nil && !errors.Is(err, ErrNotFound) {
		h.fail(w, r, err)
		return
	}

	// Every session of the account dies with it, not just this device's.
	if err := h.sessions.TerminateAll(r.Context(), id); err != nil {
		h.log.ErrorContext(r.Context(), "failed to terminate account sessions",
			logger.Error(err), logger.AccountID(id), logger.Component("account.handler"))
	}
	h.sessions.Terminate(r.Context(), w, r)
	h.redirect(w, r, "/", infoNotices("Your account has been deleted."))
}

func (h *Handler) requestVerification(w http.ResponseWriter, r *http.Request) {
	id, ok := h.currentAccountID(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	err := h.svc.RequestEmailVerification(r.Context(), id)
	switch {
	case errors.Is(err, ErrAlreadyVerified):
		h.redirect(w, r, "/account", infoNotices("Your email address is already verified."))
		return
	case validator.IsValidationError(err):
		h.redirect(w, r, "/account", errorNotices("Your email address is invalid; update your profile first."))
		return
	case errors.Is(err, ErrNotificationFailed):
		h.redirect(w, r, "/account", warningNotices("We could not send the verification email. Please try again later."))
		return
	case err != nil:
		h.fail(w, r, err)
		return
	}

	h.redirect(w, r, "/account", infoNotices("A verification email has been sent to your address."))
}

func (h *Handler) confirmVerification(w http.ResponseWriter, r *http.Request) {
	id, ok := h.currentAccountID(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	_, err := h.svc.ConfirmEmailVerification(r.Context(), id, chi.URLParam(r, "token"))
	switch {
	case errors.Is(err, ErrAlreadyVerified):
		h.redirect(w, r, "/account", infoNotices("Your email address is already verified."))
		return
	case validator.IsValidationError(err):
		h.redirect(w, r, "/account", errorNotices("The verification link is malformed."))
		return
	case errors.Is(err, ErrInvalidToken):
		h.redirect(w, r, "/account", errorNotices("The verification link is invalid."))
		return
	case err != nil:
		h.fail(w, r, err)
		return
	}

	h.redirect(w, r, "/account", successNotices("Thank you! Your email address has been verified."))
}
