package account_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/starterkit/modules/account"
	"github.com/dmitrymomot/starterkit/pkg/cookie"
	"github.com/dmitrymomot/starterkit/pkg/password"
	"github.com/dmitrymomot/starterkit/pkg/session"
)

type testApp struct {
	handler http.Handler
	svc     *account.Service
	store   *account.MemoryStore
	mailer  *mailerStub
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	cookieMgr, err := cookie.New([]string{"0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)

	sessionStore := session.NewMemoryStore(0)
	t.Cleanup(func() { _ = sessionStore.Close() })
	sessions := session.New(
		session.WithStore(sessionStore),
		session.WithCookieManager(cookieMgr),
	)

	store := account.NewMemoryStore()
	mailer := &mailerStub{}
	svc := account.NewService(store,
		account.WithHasher(password.New(password.WithCost(bcrypt.MinCost))),
		account.WithMailer(mailer),
	)

	cfg := account.Config{AppName: "Starter Kit", AppURL: "http://localhost:8080", MinPasswordLength: 8}
	return &testApp{
		handler: account.NewHandler(cfg, svc, sessions, cookieMgr).Router(),
		svc:     svc,
		store:   store,
		mailer:  mailer,
	}
}

// postForm submits a form carrying any cookies set by previous responses.
func (a *testApp) postForm(path string, form url.Values, prev ...*httptest.ResponseRecorder) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	addCookies(req, prev)

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) get(path string, prev ...*httptest.ResponseRecorder) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	addCookies(req, prev)

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

// addCookies carries cookies from earlier responses into the request.
// Callers pass responses newest-first; on a name clash the newest wins, the
// way a browser replaces a rotated session or flash cookie.
func addCookies(req *http.Request, recs []*httptest.ResponseRecorder) {
	seen := make(map[string]bool)
	for _, rec := range recs {
		for _, c := range rec.Result().Cookies() {
			if c.MaxAge < 0 || seen[c.Name] {
				continue
			}
			seen[c.Name] = true
			req.AddCookie(c)
		}
	}
}

func body(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	b, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return string(b)
}

func signupForm(email string) url.Values {
	return url.Values{
		"email":            {email},
		"password":         {"hunter2secret"},
		"confirm_password": {"hunter2secret"},
	}
}

func TestSignupFlow(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)

	rec := app.postForm("/signup", signupForm("fresh@example.com"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	home := app.get("/", rec)
	require.Equal(t, http.StatusOK, home.Code)
	html := body(t, home)
	assert.Contains(t, html, "Welcome back")
	assert.Contains(t, html, "Welcome! Your account has been created.")
}

func TestSignupValidationErrors(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)

	rec := app.postForm("/signup", url.Values{
		"email":            {"not-an-email"},
		"password":         {"short"},
		"confirm_password": {"short"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/signup", rec.Header().Get("Location"))

	form := app.get("/signup", rec)
	require.Equal(t, http.StatusOK, form.Code)
	assert.Contains(t, body(t, form), "notice-error")
}

func TestSignupDuplicateEmail(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)

	first := app.postForm("/signup", signupForm("taken@example.com"))
	require.Equal(t, http.StatusSeeOther, first.Code)

	// A fresh browser, not the signed-in one.
	rec := app.postForm("/signup", signupForm("taken@example.com"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/signup", rec.Header().Get("Location"))

	form := app.get("/signup", rec)
	assert.Contains(t, body(t, form), "already exists")
}

func TestLoginFlow(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	signup := app.postForm("/signup", signupForm("user@example.com"))
	require.Equal(t, http.StatusSeeOther, signup.Code)

	rec := app.postForm("/login", url.Values{
		"email":    {"user@example.com"},
		"password": {"hunter2secret"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	profile := app.get("/account", rec)
	require.Equal(t, http.StatusOK, profile.Code)
	assert.Contains(t, body(t, profile), "user@example.com")
}

func TestLoginWrongPassword(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	signup := app.postForm("/signup", signupForm("user@example.com"))
	require.Equal(t, http.StatusSeeOther, signup.Code)

	rec := app.postForm("/login", url.Values{
		"email":    {"user@example.com"},
		"password": {"wrong-password"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	form := app.get("/login", rec)
	assert.Contains(t, body(t, form), "Invalid email or password.")
}

func TestRequireAuthRedirectsToLogin(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)

	rec := app.get("/account")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestLoginReturnsToIntendedDestination(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	signup := app.postForm("/signup", signupForm("user@example.com"))
	require.Equal(t, http.StatusSeeOther, signup.Code)
	logout := app.get("/logout", signup)

	// Hitting a protected page records where the user was headed.
	blocked := app.get("/account", logout)
	require.Equal(t, http.StatusSeeOther, blocked.Code)

	rec := app.postForm("/login", url.Values{
		"email":    {"user@example.com"},
		"password": {"hunter2secret"},
	}, blocked, logout)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/account", rec.Header().Get("Location"))
}

func TestLogout(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	signup := app.postForm("/signup", signupForm("user@example.com"))
	require.Equal(t, http.StatusSeeOther, signup.Code)

	rec := app.get("/logout", signup)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	after := app.get("/account", rec, signup)
	require.Equal(t, http.StatusSeeOther, after.Code)
	assert.Equal(t, "/login", after.Header().Get("Location"))
}

func TestAuthenticatedUserSkipsAuthForms(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	signup := app.postForm("/signup", signupForm("user@example.com"))
	require.Equal(t, http.StatusSeeOther, signup.Code)

	for _, path := range []string{"/login", "/signup"} {
		rec := app.get(path, signup)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
	}
}

func TestForgotPasswordIsNotAnOracle(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	signup := app.postForm("/signup", signupForm("known@example.com"))
	require.Equal(t, http.StatusSeeOther, signup.Code)

	known := app.postForm("/forgot", url.Values{"email": {"known@example.com"}})
	unknown := app.postForm("/forgot", url.Values{"email": {"unknown@example.com"}})

	// Same redirect and same notice either way.
	assert.Equal(t, known.Header().Get("Location"), unknown.Header().Get("Location"))
	assert.Equal(t, body(t, app.get("/login", known)), body(t, app.get("/login", unknown)))

	// Only the known address actually received mail.
	assert.Equal(t, 1, app.mailer.count())
}

func TestResetPasswordFlow(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	signup := app.postForm("/signup", signupForm("reset@example.com"))
	require.Equal(t, http.StatusSeeOther, signup.Code)

	forgot := app.postForm("/forgot", url.Values{"email": {"reset@example.com"}})
	require.Equal(t, http.StatusSeeOther, forgot.Code)

	acc, err := app.store.GetByEmail(t.Context(), "reset@example.com")
	require.NoError(t, err)
	tok := acc.PasswordResetToken
	require.NotEmpty(t, tok)

	form := app.get("/reset/" + tok)
	require.Equal(t, http.StatusOK, form.Code)
	assert.Contains(t, body(t, form), "/reset/"+tok)

	rec := app.postForm("/reset/"+tok, url.Values{
		"password":         {"newpassword1"},
		"confirm_password": {"newpassword1"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	// The reset signed the user in.
	home := app.get("/", rec)
	assert.Contains(t, body(t, home), "Welcome back")
}

func TestResetPasswordMalformedToken(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)

	rec := app.get("/reset/definitely-not-a-token")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/forgot", rec.Header().Get("Location"))
}

func TestUpdateProfileFlow(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	signup := app.postForm("/signup", signupForm("profile@example.com"))
	require.Equal(t, http.StatusSeeOther, signup.Code)

	rec := app.postForm("/account/profile", url.Values{
		"email":    {"profile@example.com"},
		"name":     {"Jane Roe"},
		"location": {"Berlin"},
	}, signup)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/account", rec.Header().Get("Location"))

	page := app.get("/account", rec, signup)
	html := body(t, page)
	assert.Contains(t, html, "Jane Roe")
	assert.Contains(t, html, "Profile information has been updated.")
}

func TestDeleteAccountFlow(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	signup := app.postForm("/signup", signupForm("gone@example.com"))
	require.Equal(t, http.StatusSeeOther, signup.Code)

	rec := app.postForm("/account/delete", nil, signup)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	_, err := app.store.GetByEmail(t.Context(), "gone@example.com")
	assert.ErrorIs(t, err, account.ErrNotFound)

	after := app.get("/account", rec, signup)
	require.Equal(t, http.StatusSeeOther, after.Code)
	assert.Equal(t, "/login", after.Header().Get("Location"))
}

func TestEmailVerificationFlowOverHTTP(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	signup := app.postForm("/signup", signupForm("verify@example.com"))
	require.Equal(t, http.StatusSeeOther, signup.Code)

	sent := app.get("/account/verify", signup)
	require.Equal(t, http.StatusSeeOther, sent.Code)

	acc, err := app.store.GetByEmail(t.Context(), "verify@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, acc.EmailVerificationToken)

	rec := app.get("/account/verify/"+acc.EmailVerificationToken, signup)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/account", rec.Header().Get("Location"))

	page := app.get("/account", rec, signup)
	assert.Contains(t, body(t, page), "verified")

	updated, err := app.store.GetByEmail(t.Context(), "verify@example.com")
	require.NoError(t, err)
	assert.True(t, updated.EmailVerified)
}
