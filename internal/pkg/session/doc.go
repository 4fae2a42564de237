// Package session provides server-side login sessions held only in process
// memory. A session moves through three states: anonymous, holding a pending
// one-time-code challenge, and authenticated with a principal.
//
// Challenges never reach a durable store. All reads and writes of a session's
// state go through the session's own mutex, so concurrent requests on the
// same session observe either the old or the new state, never a torn mix.
package session
