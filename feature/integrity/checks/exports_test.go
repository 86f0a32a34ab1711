package checks

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"position-tally/core/reconcile"
	"position-tally/core/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct {
	name string
	raw  []reconcile.RawRow
	err  error
}

func (a stubAdapter) Name() string { return a.name }

func (a stubAdapter) Extract(ctx context.Context, date time.Time, accounts []string) ([]reconcile.RawRow, error) {
	return a.raw, a.err
}

func (a stubAdapter) Transform(ctx context.Context, raw []reconcile.RawRow) (*reconcile.Table, error) {
	return reconcile.NewTable(nil), nil
}

// stubAdapters maps provider labels to adapters for tests.
type stubAdapters map[string]reconcile.Adapter

func (s stubAdapters) Labels() []string {
	labels := make([]string, 0, len(s)+1)
	for l := range s {
		labels = append(labels, l)
	}
	return append(labels, "unwired")
}

func (s stubAdapters) Adapter(label string) (reconcile.Adapter, error) {
	a, ok := s[label]
	if !ok {
		return nil, fmt.Errorf("%w: missing connection", reconcile.ErrConfiguration)
	}
	return a, nil
}

func TestCheckExports(t *testing.T) {
	adapters := stubAdapters{
		"ib": stubAdapter{name: "ib", raw: []reconcile.RawRow{
			{"account_id": "U1"}, {"account_id": "U1"}, {"account_id": "U2"},
		}},
		"rjo":       stubAdapter{name: "rjo", err: reconcile.Transport("read", storage.ErrNotFound)},
		"formidium": stubAdapter{name: "formidium", err: reconcile.Transport("read", errors.New("auth failed"))},
	}

	reports := CheckExports(context.Background(), adapters, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	require.Len(t, reports, 4)

	assert.Equal(t, "formidium", reports[0].Provider)
	assert.Equal(t, StatusError, reports[0].Status)
	assert.Contains(t, reports[0].Error, "auth failed")

	assert.Equal(t, ExportReport{Provider: "ib", Adapter: "ib", Status: StatusOK, Rows: 3, Accounts: 2}, reports[1])

	assert.Equal(t, "rjo", reports[2].Provider)
	assert.Equal(t, StatusMissing, reports[2].Status)
	assert.Empty(t, reports[2].Error)

	assert.Equal(t, "unwired", reports[3].Provider)
	assert.Equal(t, StatusError, reports[3].Status)
	assert.Empty(t, reports[3].Adapter)
}
