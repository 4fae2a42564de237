package session

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

type seqID struct {
	mu sync.Mutex
	n  int
}

func (g *seqID) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.n++
	return fmt.Sprintf("sess-%d", g.n)
}

func newTestManager(t *testing.T, clk *fakeClock, ttl time.Duration) *Manager {
	t.Helper()

	m := NewManager(Config{TTL: ttl, SweepEvery: time.Hour, Clock: clk, ID: &seqID{}})
	t.Cleanup(func() { _ = m.Close() })

	return m
}

func TestManager_GetExpiresIdleSessions(t *testing.T) {
	// Arrange
	clk := &fakeClock{now: time.Unix(1700000000, 0)}
	m := newTestManager(t, clk, 30*time.Minute)
	s := m.Create()

	// Act & Assert
	if _, ok := m.Get(s.ID()); !ok {
		t.Fatal("Get() on fresh session = false, want true")
	}

	clk.Advance(31 * time.Minute)

	if _, ok := m.Get(s.ID()); ok {
		t.Fatal("Get() on idle-expired session = true, want false")
	}

	if got := m.Live(); got != 0 {
		t.Fatalf("Live() = %d, want 0", got)
	}
}

func TestManager_PromoteRotatesSessionID(t *testing.T) {
	// Arrange
	clk := &fakeClock{now: time.Unix(1700000000, 0)}
	m := newTestManager(t, clk, 30*time.Minute)
	old := m.Create()

	// Act
	authed := m.Promote(old, Principal{UserID: 7, Email: "a@b.c", Role: "USER"})

	// Assert
	if authed.ID() == old.ID() {
		t.Fatal("Promote() kept the old session ID, want a fresh one")
	}

	if _, ok := m.Get(old.ID()); ok {
		t.Fatal("old session still resolves after promotion")
	}

	p, ok := authed.Principal()
	if !ok {
		t.Fatal("promoted session has no principal")
	}
	if p.Email != "a@b.c" || p.Role != "USER" {
		t.Fatalf("Principal() = %+v, want email a@b.c role USER", p)
	}
}

func TestSession_ConsumeCode(t *testing.T) {
	issued := time.Unix(1700000000, 0)

	newChallenged := func() *Session {
		s := &Session{id: "s1"}
		s.SetChallenge(Challenge{
			Email:     "a@b.c",
			Code:      "123456",
			IssuedAt:  issued,
			ExpiresAt: issued.Add(5 * time.Minute),
		})
		return s
	}

	t.Run("match clears the challenge", func(t *testing.T) {
		s := newChallenged()

		ch, res := s.ConsumeCode("123456", issued.Add(time.Minute), 0)
		if res != ConsumeMatch {
			t.Fatalf("ConsumeCode() = %v, want ConsumeMatch", res)
		}
		if ch.Email != "a@b.c" {
			t.Fatalf("challenge email = %q, want a@b.c", ch.Email)
		}

		if _, ok := s.Challenge(); ok {
			t.Fatal("challenge survived a successful consume")
		}
	})

	t.Run("mismatch keeps the challenge", func(t *testing.T) {
		s := newChallenged()

		if _, res := s.ConsumeCode("000000", issued.Add(time.Minute), 0); res != ConsumeMismatch {
			t.Fatalf("ConsumeCode() = %v, want ConsumeMismatch", res)
		}

		if _, ok := s.Challenge(); !ok {
			t.Fatal("challenge dropped on mismatch, want retained")
		}
	})

	t.Run("expired challenge is dropped", func(t *testing.T) {
		s := newChallenged()

		if _, res := s.ConsumeCode("123456", issued.Add(6*time.Minute), 0); res != ConsumeExpired {
			t.Fatalf("ConsumeCode() = %v, want ConsumeExpired", res)
		}

		if _, ok := s.Challenge(); ok {
			t.Fatal("expired challenge still bound")
		}
	})

	t.Run("missing challenge", func(t *testing.T) {
		s := &Session{id: "s1"}

		if _, res := s.ConsumeCode("123456", issued, 0); res != ConsumeMissing {
			t.Fatalf("ConsumeCode() = %v, want ConsumeMissing", res)
		}
	})

	t.Run("attempt cap locks the challenge", func(t *testing.T) {
		s := newChallenged()
		now := issued.Add(time.Minute)

		if _, res := s.ConsumeCode("000000", now, 3); res != ConsumeMismatch {
			t.Fatalf("attempt 1 = %v, want ConsumeMismatch", res)
		}
		if _, res := s.ConsumeCode("000001", now, 3); res != ConsumeMismatch {
			t.Fatalf("attempt 2 = %v, want ConsumeMismatch", res)
		}
		if _, res := s.ConsumeCode("000002", now, 3); res != ConsumeLocked {
			t.Fatalf("attempt 3 = %v, want ConsumeLocked", res)
		}

		// The right code no longer works once locked.
		if _, res := s.ConsumeCode("123456", now, 3); res != ConsumeMissing {
			t.Fatalf("post-lock consume = %v, want ConsumeMissing", res)
		}
	})

	t.Run("zero cap means unlimited retries", func(t *testing.T) {
		s := newChallenged()
		now := issued.Add(time.Minute)

		for range 50 {
			if _, res := s.ConsumeCode("000000", now, 0); res != ConsumeMismatch {
				t.Fatalf("ConsumeCode() = %v, want ConsumeMismatch", res)
			}
		}

		if _, res := s.ConsumeCode("123456", now, 0); res != ConsumeMatch {
			t.Fatalf("ConsumeCode() = %v, want ConsumeMatch after retries", res)
		}
	})
}

func TestSession_ConsumeCode_SingleUse(t *testing.T) {
	// Arrange
	issued := time.Unix(1700000000, 0)
	s := &Session{id: "s1"}
	s.SetChallenge(Challenge{Code: "123456", IssuedAt: issued, ExpiresAt: issued.Add(5 * time.Minute)})

	// Act: many goroutines race to consume the same matching code.
	const workers = 64
	results := make(chan ConsumeResult, workers)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, res := s.ConsumeCode("123456", issued.Add(time.Minute), 0)
			results <- res
		}()
	}
	wg.Wait()
	close(results)

	// Assert: exactly one winner.
	matches := 0
	for res := range results {
		if res == ConsumeMatch {
			matches++
		}
	}

	if matches != 1 {
		t.Fatalf("ConsumeMatch count = %d, want exactly 1", matches)
	}
}

func TestSession_ChallengeOverwriteIsAtomic(t *testing.T) {
	// Arrange
	s := &Session{id: "s1"}
	issued := time.Unix(1700000000, 0)

	valid := func(ch Challenge) bool {
		// Every observed challenge must be one whole written value:
		// the code always matches the email it was written with.
		return "code-"+ch.Email == ch.Code
	}

	// Act: concurrent overwrites and readers on the same slot.
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(2)

		go func() {
			defer wg.Done()
			email := fmt.Sprintf("w%d@b.c", i)
			s.SetChallenge(Challenge{
				Email:     email,
				Code:      "code-" + email,
				IssuedAt:  issued,
				ExpiresAt: issued.Add(5 * time.Minute),
			})
		}()

		go func() {
			defer wg.Done()
			if ch, ok := s.Challenge(); ok && !valid(ch) {
				t.Errorf("torn challenge read: %+v", ch)
			}
		}()
	}
	wg.Wait()

	// Assert: the surviving challenge is also whole.
	if ch, ok := s.Challenge(); ok && !valid(ch) {
		t.Fatalf("final challenge is torn: %+v", ch)
	}
}
