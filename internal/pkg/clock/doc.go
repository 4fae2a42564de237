// Package clock abstracts time.Now behind the Clocker interface so code
// that reasons about expiry can be tested against a fixed clock.
package clock
