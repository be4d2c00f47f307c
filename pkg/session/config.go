package session

import "time"

// Config holds session configuration. Lifetimes are absolute: a session
// expires at CreatedAt+TTL no matter how active the client is.
type Config struct {
	// CookieName is the name of the session cookie (default: "sid")
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"sid"`

	AnonTTL time.Duration `env:"SESSION_ANON_TTL" envDefault:"24h"`
	AuthTTL time.Duration `env:"SESSION_AUTH_TTL" envDefault:"336h"` // two weeks

	// CleanupInterval for expired sessions in the memory store (0 to disable)
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"5m"`

	// SecureCookies enables the Secure flag on session cookies
	SecureCookies bool `env:"SESSION_SECURE_COOKIES" envDefault:"false"`
}

// DefaultConfig returns default session configuration.
func DefaultConfig() Config {
	return Config{
		CookieName:      "sid",
		AnonTTL:         24 * time.Hour,
		AuthTTL:         14 * 24 * time.Hour,
		CleanupInterval: 5 * time.Minute,
		SecureCookies:   false,
	}
}

// TTL returns the absolute lifetime for a session in the given state.
func (c Config) TTL(isAuthenticated bool) time.Duration {
	if isAuthenticated {
		return c.AuthTTL
	}
	return c.AnonTTL
}
