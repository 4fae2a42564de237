// Package otp generates the short numeric one-time passcodes that are
// delivered to users out-of-band (email) during the second login step.
//
// Codes are single-use random values, not time-based authenticator codes:
// the server keeps the issued code in the login session and compares it
// against user input exactly once per submission.
package otp
