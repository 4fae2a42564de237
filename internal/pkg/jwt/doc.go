// Package jwt is helpers for working with JSON Web Tokens (JWT).
//
// It includes:
//   - A typed Claims wrapper (registered claims + session identifier).
//   - A symmetric HS512 implementation for generating and verifying tokens.
//
// Tokens here are session cookies with integrity protection, not bearer
// credentials carrying authorization on their own.
package jwt
