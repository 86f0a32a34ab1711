package reconcile

import (
	"context"
	"time"
)

// RawRow is a provider-native record keyed by column name.
// Adapters may add derived lower-case keys such as "account_id".
// The layout is private to the adapter that produced it.
type RawRow map[string]string

// Adapter defines the interface for provider-specific normalization.
// Each adapter implements how to fetch and canonicalize the position export
// of one provider (e.g., a broker, a fund administrator, a PMS).
type Adapter interface {
	// Name returns the unique name of this adapter (e.g., "ib", "rjo").
	Name() string

	// Extract reads the raw export for date and keeps only genuine position rows.
	// Each returned row carries a normalized "account_id". When accounts is non-empty,
	// only rows of exactly those accounts are returned.
	Extract(ctx context.Context, date time.Time, accounts []string) ([]RawRow, error)

	// Transform groups raw rows by (account_id, instrument), sums quantities and
	// resolves the standard security code. The rows passed in must come from Extract
	// of the same adapter.
	Transform(ctx context.Context, raw []RawRow) (*Table, error)
}

// AccountFilter returns a predicate for an account list. An empty list accepts every account.
func AccountFilter(accounts []string) func(string) bool {
	if len(accounts) == 0 {
		return func(string) bool { return true }
	}
	set := make(map[string]struct{}, len(accounts))
	for _, a := range accounts {
		set[a] = struct{}{}
	}
	return func(account string) bool {
		_, ok := set[account]
		return ok
	}
}
