package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Position binds a provider adapter to a date and an optional account filter.
// Its canonical table is computed on first access and kept for the lifetime of the value.
type Position struct {
	provider string
	date     time.Time
	accounts []string
	adapter  Adapter

	mu    sync.Mutex
	table *Table
}

// NewPosition creates a position for adapter. An empty provider label defaults to the adapter name.
func NewPosition(adapter Adapter, date time.Time, provider string, accounts []string) *Position {
	if provider == "" {
		provider = adapter.Name()
	}
	return &Position{
		provider: provider,
		date:     date,
		accounts: append([]string(nil), accounts...),
		adapter:  adapter,
	}
}

// Provider returns the provider label used to namespace reconciliation columns.
func (p *Position) Provider() string { return p.provider }

// Date returns the position date.
func (p *Position) Date() time.Time { return p.date }

// Accounts returns the account filter. Nil means every account.
func (p *Position) Accounts() []string { return append([]string(nil), p.accounts...) }

// Data returns the canonical table, running extract, transform and validation on first access.
// A failed computation is not cached.
func (p *Position) Data(ctx context.Context) (*Table, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.table != nil {
		return p.table, nil
	}

	raw, err := p.adapter.Extract(ctx, p.date, p.accounts)
	if err != nil {
		return nil, fmt.Errorf("extract %s positions for %s: %w", p.provider, p.date.Format(time.DateOnly), err)
	}

	table, err := p.adapter.Transform(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("transform %s positions: %w", p.provider, err)
	}
	if table == nil {
		table = NewTable(nil)
	}

	if err := Validate(p.provider, table); err != nil {
		return nil, err
	}

	p.table = table
	return table, nil
}

// Option adjusts the matching passes of ReconcileWith.
type Option func(*Options)

// WithFallback reruns the match on unmatched rows using id.
func WithFallback(id Identifier) Option {
	return func(o *Options) { o.Fallback = id }
}

// WithPolicy selects the diff policy.
func WithPolicy(policy DiffPolicy) Option {
	return func(o *Options) { o.Policy = policy }
}

// ReconcileWith compares this position (left) with other (right) on the primary identifier.
func (p *Position) ReconcileWith(ctx context.Context, other *Position, primary Identifier, opts ...Option) (*Result, error) {
	if other.provider == p.provider {
		return nil, fmt.Errorf("%w: other position can't have the same provider %q", ErrConfiguration, p.provider)
	}

	o := Options{Primary: primary}
	for _, opt := range opts {
		opt(&o)
	}

	left, err := p.Data(ctx)
	if err != nil {
		return nil, err
	}
	right, err := other.Data(ctx)
	if err != nil {
		return nil, err
	}

	return Reconcile(Input{Provider: p.provider, Table: left}, Input{Provider: other.provider, Table: right}, o)
}
