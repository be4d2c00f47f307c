// Package account implements the account lifecycle for the starter kit:
// registration, login and logout, password reset, email verification, profile
// management, and federated sign-in with Google and Facebook.
//
// The package splits into three layers. Storage is the persistence interface
// with Postgres, MongoDB, and in-memory implementations. Service holds the
// business rules and returns the affected account from each operation.
// Handler is the server-rendered HTTP surface: it binds sessions, queues
// flash notices, and follows post/redirect/get for every mutation.
//
// Security posture worth knowing about: login and password reset requests
// never reveal whether an email is registered, reset tokens expire after one
// hour and are cleared on use, and email verification is scoped to the
// authenticated account that requested it.
package account
