// Package mail defines the contract for sending email. Use cases depend on
// the Mail interface and Message payload only, so the delivery mechanism can
// change without touching them.
package mail
