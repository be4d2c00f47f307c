// Package session manages server-side login sessions.
//
// A session binds an opaque random token, delivered in a signed cookie, to
// an optional account id held in a pluggable Store (in-memory or Redis).
// Sessions carry a fixed absolute expiry independent of activity:
// authenticated sessions live two weeks, anonymous ones a day. The state
// machine is Anonymous -> Authenticated (Establish) -> Anonymous (Terminate
// or expiry); there are no intermediate states, and one account may hold any
// number of concurrent sessions across devices.
package session
