// Package cookie provides an HMAC-signed cookie manager used for the session
// token transport and one-shot flash notices.
//
// Values are signed with SHA-256 over a rotating secret list, so old cookies
// remain readable while a new secret is being rolled out. Flash cookies are
// deleted on read, which is what makes them one-shot: a notice queued during
// one request is rendered on the next page and then gone.
package cookie
