package pgxcasbin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
)

// Watcher propagates policy changes between instances over Postgres
// LISTEN/NOTIFY. Every notification means "reload": policy edits are rare
// enough that a full reload beats replicating each mutation.
type Watcher struct {
	mu         sync.RWMutex
	opt        OptionWatcher
	pool       *pgxpool.Pool
	callback   func(string)
	cancelFunc func()
}

// OptionWatcher configures a Watcher.
type OptionWatcher struct {
	// Channel is the Postgres notification channel.
	Channel string
	// LocalID distinguishes this instance's own notifications.
	LocalID string
	// NotifySelf also fires the callback for notifications this instance sent.
	NotifySelf bool
	// Verbose logs every message sent and received.
	Verbose bool
}

type watcherMsg struct {
	ID string `json:"id"`
}

// NewWatcherWithPool starts a watcher on an existing pool. The listener
// reconnects with capped fibonacci backoff until ctx is canceled.
func NewWatcherWithPool(ctx context.Context, pool *pgxpool.Pool, opt OptionWatcher) (*Watcher, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("pgxcasbin: ping: %w", err)
	}

	if opt.Channel == "" {
		opt.Channel = "casbin_psql_watcher"
	}
	if opt.LocalID == "" {
		opt.LocalID = uuid.New().String()
	}

	listenCtx, cancel := context.WithCancel(ctx)
	w := &Watcher{opt: opt, pool: pool, cancelFunc: cancel}

	go func() {
		b := retry.WithCappedDuration(5*time.Second, retry.NewFibonacci(200*time.Millisecond))
		err := retry.Do(listenCtx, b, func(ctx context.Context) error {
			if err := w.listen(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				slog.Error("casbin watcher listen failed", "error", err)
				return retry.RetryableError(err)
			}
			return nil
		})
		if err != nil {
			slog.Error("casbin watcher stopped", "error", err)
		}
	}()

	return w, nil
}

// DefaultCallback reloads the enforcer's policy on any notification.
func DefaultCallback(e casbin.IEnforcer) func(string) {
	return func(string) {
		if err := e.LoadPolicy(); err != nil {
			slog.Error("casbin watcher reload failed", "error", err)
		}
	}
}

// SetUpdateCallback registers the function invoked on notifications.
func (w *Watcher) SetUpdateCallback(callback func(string)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callback = callback
	return nil
}

// Close stops the listener.
func (w *Watcher) Close() {
	w.cancelFunc()
}

// Update notifies the other instances that policy changed.
func (w *Watcher) Update() error { return w.notify() }

// The per-mutation hooks below exist so casbin's auto-notify recognizes this
// as a full watcher; they all collapse into one reload notification.

func (w *Watcher) UpdateForAddPolicy(string, string, ...string) error { return w.notify() }

func (w *Watcher) UpdateForRemovePolicy(string, string, ...string) error { return w.notify() }

func (w *Watcher) UpdateForRemoveFilteredPolicy(string, string, int, ...string) error {
	return w.notify()
}

func (w *Watcher) UpdateForSavePolicy(model.Model) error { return w.notify() }

func (w *Watcher) UpdateForAddPolicies(string, string, ...[]string) error { return w.notify() }

func (w *Watcher) UpdateForRemovePolicies(string, string, ...[]string) error { return w.notify() }

func (w *Watcher) UpdateForUpdatePolicy(string, string, []string, []string) error {
	return w.notify()
}

func (w *Watcher) UpdateForUpdatePolicies(string, string, [][]string, [][]string) error {
	return w.notify()
}

func (w *Watcher) notify() error {
	payload, err := json.Marshal(watcherMsg{ID: w.opt.LocalID})
	if err != nil {
		return fmt.Errorf("pgxcasbin: marshal notification: %w", err)
	}

	query := fmt.Sprintf("select pg_notify('%s', $1)", w.opt.Channel)
	if _, err := w.pool.Exec(context.Background(), query, string(payload)); err != nil {
		return fmt.Errorf("pgxcasbin: notify: %w", err)
	}

	if w.opt.Verbose {
		slog.Info("casbin watcher sent notification", "channel", w.opt.Channel)
	}

	return nil
}

func (w *Watcher) listen(ctx context.Context) error {
	conn, err := w.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("pgxcasbin: acquire: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "listen "+w.opt.Channel); err != nil {
		return fmt.Errorf("pgxcasbin: listen %s: %w", w.opt.Channel, err)
	}

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			return fmt.Errorf("pgxcasbin: wait notification: %w", err)
		}

		if w.opt.Verbose {
			slog.Info("casbin watcher received notification", "channel", w.opt.Channel, "payload", notification.Payload)
		}

		var msg watcherMsg
		if err := json.Unmarshal([]byte(notification.Payload), &msg); err != nil {
			slog.Error("casbin watcher bad payload", "payload", notification.Payload, "error", err)
			continue
		}
		if msg.ID == w.opt.LocalID && !w.opt.NotifySelf {
			continue
		}

		w.mu.RLock()
		cb := w.callback
		w.mu.RUnlock()
		if cb != nil {
			cb(notification.Payload)
		}
	}
}
