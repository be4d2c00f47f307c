package token_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/starterkit/pkg/token"
)

func TestIssue(t *testing.T) {
	t.Parallel()

	issuer := token.NewIssuer()

	tok, err := issuer.Issue()
	require.NoError(t, err)
	assert.Len(t, tok, token.Length)
	assert.True(t, token.IsWellFormed(tok))

	other, err := issuer.Issue()
	require.NoError(t, err)
	assert.NotEqual(t, tok, other, "tokens must be unique")
}

func TestIssueExpiring(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	issuer := token.NewIssuer(
		token.WithTTL(time.Hour),
		token.WithClock(func() time.Time { return now }),
	)

	tok, expiresAt, err := issuer.IssueExpiring()
	require.NoError(t, err)
	assert.True(t, token.IsWellFormed(tok))
	assert.Equal(t, now.Add(time.Hour), expiresAt)
}

func TestValidateExpiring(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &now
	issuer := token.NewIssuer(
		token.WithTTL(time.Hour),
		token.WithClock(func() time.Time { return *clock }),
	)

	tok, expiresAt, err := issuer.IssueExpiring()
	require.NoError(t, err)

	assert.True(t, issuer.ValidateExpiring(tok, tok, expiresAt))
	assert.False(t, issuer.ValidateExpiring("00000000000000000000000000000000", tok, expiresAt))
	assert.False(t, issuer.ValidateExpiring(tok, "", expiresAt), "absent stored token never matches")
	assert.False(t, issuer.ValidateExpiring(tok, tok, time.Time{}), "zero expiry means never issued")

	// Matching token presented at exactly the expiry instant is rejected:
	// validity requires current time strictly before expiry.
	*clock = expiresAt
	assert.False(t, issuer.ValidateExpiring(tok, tok, expiresAt))

	*clock = expiresAt.Add(time.Minute)
	assert.False(t, issuer.ValidateExpiring(tok, tok, expiresAt))
}

func TestMatches(t *testing.T) {
	t.Parallel()

	assert.True(t, token.Matches("abc123", "abc123"))
	assert.False(t, token.Matches("abc123", "abc124"))
	assert.False(t, token.Matches("abc123", "abc1234"))
	assert.False(t, token.Matches("", ""))
}

func TestIsWellFormed(t *testing.T) {
	t.Parallel()

	assert.True(t, token.IsWellFormed("deadbeefdeadbeefdeadbeefdeadbeef"))
	assert.True(t, token.IsWellFormed("DEADBEEFDEADBEEFDEADBEEFDEADBEEF"))
	assert.False(t, token.IsWellFormed("deadbeef"))
	assert.False(t, token.IsWellFormed("zzzdbeefdeadbeefdeadbeefdeadbeef"))
	assert.False(t, token.IsWellFormed(""))
}
