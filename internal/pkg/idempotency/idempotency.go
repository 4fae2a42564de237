package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrAlreadyInProgress = errors.New("operation already in progress")
	ErrAlreadyCompleted  = errors.New("operation already completed")
	ErrAlreadyFailed     = errors.New("operation already failed")
	ErrInvalidState      = errors.New("invalid state")
)

// State is the recorded outcome of an operation key.
type State string

const (
	StateNone       State = "none"        // key is free, operation can proceed
	StateInProgress State = "in_progress" // another call holds the key
	StateCompleted  State = "completed"   // a previous call finished
	StateFailed     State = "failed"      // a previous call failed
	StateError      State = "error"       // the state lookup itself failed
)

// Idempotency guards an operation key so retried requests observe the first
// attempt's outcome instead of running again.
type Idempotency interface {
	Acquire(ctx context.Context, key string, lockDuration time.Duration) (State, error)
	MarkCompleted(ctx context.Context, key string, ttl time.Duration) error
	MarkFailed(ctx context.Context, key string, ttl time.Duration) error
	Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error
}

// StateTracker implements Idempotency on Redis.
type StateTracker struct {
	client *redis.Client
	prefix string
}

func New(client *redis.Client) *StateTracker {
	return &StateTracker{client: client, prefix: "idempotency:"}
}

const (
	defaultLockDuration = time.Minute
	defaultStateTTL     = time.Minute
)

type Option func(*execOptions)

type execOptions struct {
	lockDuration time.Duration
	stateTTL     time.Duration
}

// WithLockDuration overrides how long the in-progress lock lives.
func WithLockDuration(lockDuration time.Duration) Option {
	return func(o *execOptions) { o.lockDuration = lockDuration }
}

// WithStateTTL overrides how long the final state is remembered.
func WithStateTTL(stateTTL time.Duration) Option {
	return func(o *execOptions) { o.stateTTL = stateTTL }
}

// Acquire claims the key, or reports the state a previous call left behind.
// Two attempts cover the race where the key expires between the failed claim
// and the state read.
func (s *StateTracker) Acquire(ctx context.Context, key string, lockDuration time.Duration) (State, error) {
	fk := s.prefix + key

	for range 2 {
		acquired, err := s.client.SetNX(ctx, fk, string(StateInProgress), lockDuration).Result()
		if err != nil {
			return StateError, err
		}
		if acquired {
			return StateNone, nil
		}

		current, err := s.client.Get(ctx, fk).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return StateError, err
		}

		switch State(current) {
		case StateInProgress, StateCompleted, StateFailed:
			return State(current), nil
		default:
			return StateError, ErrInvalidState
		}
	}

	return StateError, ErrInvalidState
}

func (s *StateTracker) MarkCompleted(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, string(StateCompleted), ttl).Err()
}

func (s *StateTracker) MarkFailed(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, string(StateFailed), ttl).Err()
}

// Exec runs fn under the key's lock, recording the outcome so retries map to
// ErrAlreadyInProgress, ErrAlreadyCompleted or ErrAlreadyFailed.
func (s *StateTracker) Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error {
	eo := &execOptions{lockDuration: defaultLockDuration, stateTTL: defaultStateTTL}
	for _, opt := range opts {
		opt(eo)
	}
	if eo.lockDuration <= 0 {
		eo.lockDuration = defaultLockDuration
	}
	if eo.stateTTL <= 0 {
		eo.stateTTL = defaultStateTTL
	}

	state, err := s.Acquire(ctx, key, eo.lockDuration)
	if err != nil {
		return err
	}

	switch state {
	case StateInProgress:
		return ErrAlreadyInProgress
	case StateCompleted:
		return ErrAlreadyCompleted
	case StateFailed:
		return ErrAlreadyFailed
	}

	if err := fn(ctx); err != nil {
		if markErr := s.MarkFailed(ctx, key, eo.stateTTL); markErr != nil {
			return markErr
		}
		return err
	}

	return s.MarkCompleted(ctx, key, eo.stateTTL)
}
