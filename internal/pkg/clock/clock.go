package clock

import "time"

// Clocker abstracts time so tests can pin it.
type Clocker interface {
	Now() time.Time
}

// TimeClocker reads the real system clock.
type TimeClocker struct{}

// New returns the production clock.
func New() *TimeClocker {
	return &TimeClocker{}
}

// Now returns the current system time.
func (*TimeClocker) Now() time.Time {
	return time.Now()
}
