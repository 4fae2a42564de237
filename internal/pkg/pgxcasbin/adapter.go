package pgxcasbin

import (
	"context"
	"database/sql/driver"

	"github.com/casbin/casbin/v3/model"
	"github.com/casbin/casbin/v3/persist"
)

// Adapter persists casbin rules in Postgres through pgx.
type Adapter struct {
	store *store
}

var (
	_ persist.Adapter      = (*Adapter)(nil)
	_ persist.BatchAdapter = (*Adapter)(nil)
)

// Option configures the Adapter.
type Option func(*Adapter)

// WithTableName overrides the default rule table name.
func WithTableName(tableName string) Option {
	return func(a *Adapter) { a.store.table = tableName }
}

// NewAdapter builds the adapter and verifies database connectivity.
func NewAdapter(ctx context.Context, db interface {
	driver.Pinger
	Commander
}, opts ...Option) (*Adapter, error) {
	if err := db.Ping(ctx); err != nil {
		return nil, err
	}

	a := &Adapter{store: newStore(db)}
	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// LoadPolicy reads every rule row into the model.
func (a *Adapter) LoadPolicy(m model.Model) error {
	lines, err := a.store.selectAll(context.Background())
	if err != nil {
		return err
	}
	for _, line := range lines {
		if err := persist.LoadPolicyArray(line, m); err != nil {
			return err
		}
	}
	return nil
}

// SavePolicy replaces the stored rules with the model's current ones.
func (a *Adapter) SavePolicy(m model.Model) error {
	var rules [][]string
	for _, section := range []string{"p", "g"} {
		for ptype, ast := range m[section] {
			for _, rule := range ast.Policy {
				rules = append(rules, prepend(ptype, rule))
			}
		}
	}
	return a.store.replaceAll(context.Background(), rules)
}

// AddPolicy inserts one rule.
func (a *Adapter) AddPolicy(_ string, ptype string, rule []string) error {
	return a.store.insert(context.Background(), ptype, rule)
}

// AddPolicies inserts a batch of rules.
func (a *Adapter) AddPolicies(_ string, ptype string, rules [][]string) error {
	return a.store.batchInsert(context.Background(), ptype, rules)
}

// RemovePolicy deletes one rule.
func (a *Adapter) RemovePolicy(_ string, ptype string, rule []string) error {
	return a.store.delete(context.Background(), ptype, rule)
}

// RemovePolicies deletes a batch of rules.
func (a *Adapter) RemovePolicies(_ string, ptype string, rules [][]string) error {
	return a.store.batchDelete(context.Background(), ptype, rules)
}

// RemoveFilteredPolicy deletes the rules whose fields starting at fieldIndex
// match fieldValues; empty values match anything.
func (a *Adapter) RemoveFilteredPolicy(_ string, ptype string, fieldIndex int, fieldValues ...string) error {
	return a.store.deleteWhere(context.Background(), ptype, fieldIndex, fieldValues)
}

func prepend(ptype string, rule []string) []string {
	out := make([]string, 0, 1+len(rule))
	out = append(out, ptype)
	return append(out, rule...)
}
