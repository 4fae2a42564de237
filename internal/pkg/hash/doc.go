// Package hash holds the one-way hashing used for secrets: bcrypt for
// passwords, keyed HMAC for deterministic fingerprints. Callers depend on
// the Hash interface and never see which is behind it.
package hash
