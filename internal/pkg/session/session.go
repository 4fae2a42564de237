package session

import (
	"sync"
	"time"
)

// Challenge is a pending one-time-code login challenge. It snapshots the
// identity attributes captured at password verification so the second step
// never re-reads the user store.
type Challenge struct {
	// UserID is the subject's identifier.
	UserID int64
	// Email is the subject the challenge was issued for.
	Email string
	// Name is the subject's display name, used in notifications.
	Name string
	// Role is the subject's role at issuance time.
	Role string
	// Code is the 6-digit code delivered out-of-band.
	Code string
	// IssuedAt is when the challenge was created.
	IssuedAt time.Time
	// ExpiresAt is the hard validity deadline.
	ExpiresAt time.Time
	// Attempts counts failed code submissions against this challenge.
	Attempts int
}

// Principal is the identity attached to a fully authenticated session.
type Principal struct {
	// UserID is the subject's identifier.
	UserID int64
	// Email is the subject's unique email.
	Email string
	// Name is the subject's display name.
	Name string
	// Role is the subject's role, used for URL authorization.
	Role string
}

// ConsumeResult is the outcome of submitting a code against a session.
type ConsumeResult int

const (
	// ConsumeMatch means the code matched and the challenge was cleared.
	ConsumeMatch ConsumeResult = iota
	// ConsumeMissing means no challenge is bound to the session.
	ConsumeMissing
	// ConsumeExpired means the challenge passed its deadline.
	ConsumeExpired
	// ConsumeMismatch means the code did not match; the challenge survives.
	ConsumeMismatch
	// ConsumeLocked means too many mismatches cleared the challenge.
	ConsumeLocked
)

// Session is a single server-side login session.
type Session struct {
	id        string
	createdAt time.Time

	mu        sync.Mutex
	expiresAt time.Time
	challenge *Challenge
	principal *Principal
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// SetChallenge binds a challenge to the session, replacing any prior one.
// A fresh login attempt always wins over a stale pending challenge.
func (s *Session) SetChallenge(ch Challenge) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.challenge = &ch
}

// Challenge returns a copy of the pending challenge, if any.
func (s *Session) Challenge() (Challenge, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.challenge == nil {
		return Challenge{}, false
	}

	return *s.challenge, true
}

// ClearChallenge drops the pending challenge, if any.
func (s *Session) ClearChallenge() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.challenge = nil
}

// Principal returns the authenticated principal, if the session has one.
func (s *Session) Principal() (Principal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.principal == nil {
		return Principal{}, false
	}

	return *s.principal, true
}

// ConsumeCode submits a code against the pending challenge. The compare,
// the attempt bookkeeping, and the clear on success happen under one lock
// acquisition, so a matched challenge can be consumed exactly once even
// under concurrent submissions.
//
// maxAttempts caps failed submissions per challenge; 0 means unlimited.
func (s *Session) ConsumeCode(code string, now time.Time, maxAttempts int) (Challenge, ConsumeResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.challenge == nil {
		return Challenge{}, ConsumeMissing
	}

	if now.After(s.challenge.ExpiresAt) {
		s.challenge = nil
		return Challenge{}, ConsumeExpired
	}

	if code != s.challenge.Code {
		s.challenge.Attempts++
		if maxAttempts > 0 && s.challenge.Attempts >= maxAttempts {
			s.challenge = nil
			return Challenge{}, ConsumeLocked
		}

		return Challenge{}, ConsumeMismatch
	}

	ch := *s.challenge
	s.challenge = nil

	return ch, ConsumeMatch
}

func (s *Session) expired(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return now.After(s.expiresAt)
}

func (s *Session) touch(deadline time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expiresAt = deadline
}
