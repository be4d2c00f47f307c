// Package token issues and validates opaque bearer tokens for the password
// reset and email verification flows.
//
// Tokens are 16 cryptographically random bytes rendered as a fixed-length
// hexadecimal string. They carry no embedded account reference; the caller
// stores the token on the account record and resolves presented tokens by
// reverse lookup. Possession of the string alone grants the action it
// authorizes, which is why the randomness must come from crypto/rand and
// comparisons must be constant-time.
package token
