package session

import (
	"sync"
	"time"

	"go.uber.org/atomic"
)

type clocker interface {
	Now() time.Time
}

type idGenerator interface {
	Generate() string
}

// Config defines the inputs for building a session Manager.
type Config struct {
	// TTL is the idle lifetime of a session. Reads refresh the deadline.
	TTL time.Duration
	// SweepEvery is the interval between expired-session sweeps.
	SweepEvery time.Duration
	// Clock provides the current time source.
	Clock clocker
	// ID generates session identifiers.
	ID idGenerator
}

// Manager owns all live sessions. Lookup by ID is the only way in; sessions
// are never enumerated or persisted.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	ttl   time.Duration
	clock clocker
	idGen idGenerator
	live  *atomic.Int64

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewManager constructs a Manager and starts its background sweep of
// expired sessions.
func NewManager(cfg Config) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		ttl:      cfg.TTL,
		clock:    cfg.Clock,
		idGen:    cfg.ID,
		live:     atomic.NewInt64(0),
		stop:     make(chan struct{}),
	}

	sweepEvery := cfg.SweepEvery
	if sweepEvery <= 0 {
		sweepEvery = time.Minute
	}

	m.wg.Add(1)
	go m.sweep(sweepEvery)

	return m
}

// Create makes a new anonymous session.
func (m *Manager) Create() *Session {
	now := m.clock.Now()
	s := &Session{
		id:        m.idGen.Generate(),
		createdAt: now,
		expiresAt: now.Add(m.ttl),
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	m.live.Inc()

	return s
}

// Get returns the live session with the given ID. An expired session is
// removed on sight; a live one gets its deadline pushed out.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, false
	}

	now := m.clock.Now()
	if s.expired(now) {
		m.Destroy(id)
		return nil, false
	}

	s.touch(now.Add(m.ttl))

	return s, true
}

// Promote replaces the given session with a fresh one that carries the
// principal. The old session ID stops resolving, so a cookie captured
// before authentication cannot name an authenticated session.
func (m *Manager) Promote(old *Session, p Principal) *Session {
	s := m.Create()

	s.mu.Lock()
	s.principal = &p
	s.mu.Unlock()

	m.Destroy(old.ID())

	return s
}

// Destroy removes the session with the given ID, if it exists.
func (m *Manager) Destroy(id string) {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		m.live.Dec()
	}
}

// Live returns the number of sessions currently held.
func (m *Manager) Live() int64 {
	return m.live.Load()
}

// Close stops the background sweep.
func (m *Manager) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })
	m.wg.Wait()

	return nil
}

func (m *Manager) sweep(every time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			now := m.clock.Now()

			m.mu.RLock()
			var stale []string
			for id, s := range m.sessions {
				if s.expired(now) {
					stale = append(stale, id)
				}
			}
			m.mu.RUnlock()

			for _, id := range stale {
				m.Destroy(id)
			}
		}
	}
}
