package reconcile

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockAdapter is a simple test adapter returning a fixed table.
type mockAdapter struct {
	name         string
	rows         []CanonicalPosition
	extractErr   error
	extractCalls int
	lastAccounts []string
}

func (m *mockAdapter) Name() string {
	return m.name
}

func (m *mockAdapter) Extract(ctx context.Context, date time.Time, accounts []string) ([]RawRow, error) {
	m.extractCalls++
	m.lastAccounts = accounts
	if m.extractErr != nil {
		return nil, m.extractErr
	}
	return []RawRow{}, nil
}

func (m *mockAdapter) Transform(ctx context.Context, raw []RawRow) (*Table, error) {
	return NewTable(m.rows), nil
}

func pos(account string, desc, yellow *string, qty int64, price float64, ccy string) CanonicalPosition {
	return CanonicalPosition{
		AccountID:   account,
		Description: desc,
		BBGYellow:   yellow,
		Quantity:    qty,
		Price:       price,
		LocalCCY:    ccy,
	}
}

func in(provider string, rows ...CanonicalPosition) Input {
	return Input{Provider: provider, Table: NewTable(rows)}
}

var testDate = time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

// TestReconcile_Scenarios covers the documented reconciliation scenarios.
func TestReconcile_Scenarios(t *testing.T) {
	t.Run("Identical rows produce empty relations", func(t *testing.T) {
		l := in("ib", pos("A1", Str("XYZ"), nil, 100, 10.0, "USD"))
		r := in("formidium", pos("A1", Str("XYZ"), nil, 100, 10.0, "USD"))

		res, err := Reconcile(l, r, Options{Primary: Description})
		require.NoError(t, err)
		assert.Empty(t, res.Diff)
		assert.Empty(t, res.LeftOnly)
		assert.Empty(t, res.RightOnly)
		assert.Equal(t, 1, res.Summary.Matched)
	})

	t.Run("Currency-only difference is not flagged by the conjunctive policy", func(t *testing.T) {
		l := in("ib", pos("A1", Str("XYZ"), nil, 100, 10.0, "USD"))
		r := in("formidium", pos("A1", Str("XYZ"), nil, 100, 10.0, "EUR"))

		res, err := Reconcile(l, r, Options{Primary: Description, Policy: PolicyAllDiffer})
		require.NoError(t, err)
		assert.Empty(t, res.Diff, "all three signals must disagree under PolicyAllDiffer")
		assert.Empty(t, res.LeftOnly)
		assert.Empty(t, res.RightOnly)
	})

	t.Run("Fallback identifier matches rows the primary pass missed", func(t *testing.T) {
		l := in("ib", pos("A1", Str("XYZ"), Str("XYZ US EQUITY"), 100, 10.0, "USD"))
		r := in("enfusion", pos("A1", Str("XYZ CORP"), Str("XYZ US EQUITY"), 100, 10.0, "USD"))

		tier1, err := Reconcile(l, r, Options{Primary: Description})
		require.NoError(t, err)
		assert.Len(t, tier1.LeftOnly, 1)
		assert.Len(t, tier1.RightOnly, 1)

		tier2, err := Reconcile(l, r, Options{Primary: Description, Fallback: BBGYellow})
		require.NoError(t, err)
		assert.Empty(t, tier2.LeftOnly)
		assert.Empty(t, tier2.RightOnly)
		assert.Empty(t, tier2.Diff)
		assert.Equal(t, 1, tier2.Summary.Matched)
	})

	t.Run("Row with no description cannot reach the fallback pass", func(t *testing.T) {
		l := in("ib", pos("A1", Str("XYZ"), Str("XYZ US EQUITY"), 100, 10.0, "USD"))
		r := in("enfusion", pos("A1", nil, Str("XYZ US EQUITY"), 100, 10.0, "USD"))

		res, err := Reconcile(l, r, Options{Primary: Description, Fallback: BBGYellow})
		require.NoError(t, err)
		assert.Len(t, res.LeftOnly, 1, "left row stays unmatched")
		assert.Empty(t, res.RightOnly, "right row was dropped by the primary pass")
		assert.Equal(t, 1, res.Summary.UnidentifiedRight)
	})

	t.Run("Row with no identifiers appears in no relation", func(t *testing.T) {
		l := in("ib",
			pos("A1", nil, nil, 5, 1.0, "USD"),
			pos("A1", Str("ABC"), Str("ABC US EQUITY"), 1, 1.0, "USD"),
		)
		r := in("rjo", pos("A1", nil, nil, 7, 2.0, "EUR"))

		for _, fallback := range []Identifier{"", BBGYellow} {
			res, err := Reconcile(l, r, Options{Primary: Description, Fallback: fallback, Policy: PolicyAnyDiffer})
			require.NoError(t, err)
			assert.Empty(t, res.Diff)
			require.Len(t, res.LeftOnly, 1)
			assert.Equal(t, "ABC", *res.LeftOnly[0].Position.Description)
			assert.Empty(t, res.RightOnly)
		}
	})
}

func TestReconcile_DiffPolicies(t *testing.T) {
	tests := []struct {
		name    string
		right   CanonicalPosition
		wantAll bool
		wantAny bool
	}{
		{"Identical", pos("A1", Str("XYZ"), nil, 100, 10.0, "USD"), false, false},
		{"Quantity only", pos("A1", Str("XYZ"), nil, 90, 10.0, "USD"), false, true},
		{"Price only", pos("A1", Str("XYZ"), nil, 100, 11.0, "USD"), false, true},
		{"Currency only", pos("A1", Str("XYZ"), nil, 100, 10.0, "EUR"), false, true},
		{"All three", pos("A1", Str("XYZ"), nil, 90, 11.0, "EUR"), true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := in("ib", pos("A1", Str("XYZ"), nil, 100, 10.0, "USD"))
			r := in("rjo", tt.right)

			all, err := Reconcile(l, r, Options{Primary: Description, Policy: PolicyAllDiffer})
			require.NoError(t, err)
			assert.Equal(t, tt.wantAll, len(all.Diff) == 1)

			anyRes, err := Reconcile(l, r, Options{Primary: Description, Policy: PolicyAnyDiffer})
			require.NoError(t, err)
			assert.Equal(t, tt.wantAny, len(anyRes.Diff) == 1)

			// Matched pairs never leak into the unmatched relations.
			assert.Empty(t, anyRes.LeftOnly)
			assert.Empty(t, anyRes.RightOnly)
		})
	}
}

func TestReconcile_DiffValues(t *testing.T) {
	l := in("ib", pos("A1", Str("XYZ"), nil, 100, 10.5, "USD"))
	r := in("rjo", pos("A1", Str("XYZ"), nil, 40, 10.0, "EUR"))

	res, err := Reconcile(l, r, Options{Primary: Description})
	require.NoError(t, err)
	require.Len(t, res.Diff, 1)

	d := res.Diff[0]
	assert.Equal(t, int64(60), d.QuantityDiff)
	assert.InDelta(t, 0.5, d.PriceDiff, 1e-9)
	assert.False(t, d.SameCCY)
	assert.Equal(t, Description, d.MatchedOn)
	assert.Equal(t, "ib", d.Left.Provider)
	assert.Equal(t, "rjo", d.Right.Provider)
}

func TestReconcile_SameProviderRejected(t *testing.T) {
	l := in("ib", pos("A1", Str("XYZ"), nil, 1, 1, "USD"))
	r := in("ib", pos("A1", Str("XYZ"), nil, 1, 1, "USD"))

	_, err := Reconcile(l, r, Options{Primary: Description})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestReconcile_UnknownIdentifier(t *testing.T) {
	l := in("ib")
	r := in("rjo")

	_, err := Reconcile(l, r, Options{Primary: "isin"})
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = Reconcile(l, r, Options{Primary: Description, Fallback: "cusip"})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestReconcile_JoinIntegrity(t *testing.T) {
	tests := []struct {
		name     string
		left     []CanonicalPosition
		right    []CanonicalPosition
		provider string
	}{
		{
			name: "Duplicate on left",
			left: []CanonicalPosition{
				pos("A1", Str("XYZ"), nil, 1, 1, "USD"),
				pos("A1", Str("XYZ"), nil, 2, 1, "USD"),
			},
			right:    []CanonicalPosition{pos("A1", Str("XYZ"), nil, 1, 1, "USD")},
			provider: "ib",
		},
		{
			name: "Duplicate on right",
			left: []CanonicalPosition{pos("A1", Str("XYZ"), nil, 1, 1, "USD")},
			right: []CanonicalPosition{
				pos("A1", Str("XYZ"), nil, 1, 1, "USD"),
				pos("A1", Str("XYZ"), nil, 3, 1, "USD"),
			},
			provider: "rjo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reconcile(in("ib", tt.left...), in("rjo", tt.right...), Options{Primary: Description})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrJoinIntegrity)

			var jerr *JoinIntegrityError
			require.True(t, errors.As(err, &jerr))
			assert.Equal(t, tt.provider, jerr.Provider)
			assert.Equal(t, "A1", jerr.AccountID)
			assert.Equal(t, "XYZ", jerr.Value)
		})
	}

	t.Run("Same key in different accounts is not a duplicate", func(t *testing.T) {
		l := in("ib",
			pos("A1", Str("XYZ"), nil, 1, 1, "USD"),
			pos("A2", Str("XYZ"), nil, 1, 1, "USD"),
		)
		r := in("rjo", pos("A2", Str("XYZ"), nil, 1, 1, "USD"))

		res, err := Reconcile(l, r, Options{Primary: Description})
		require.NoError(t, err)
		require.Len(t, res.LeftOnly, 1)
		assert.Equal(t, "A1", res.LeftOnly[0].Position.AccountID)
	})
}

// sampleTables builds a pair of tables exercising every relation in both tiers.
func sampleTables() (Input, Input) {
	l := in("ib",
		pos("A1", Str("APPLE"), Str("AAPL US EQUITY"), 100, 190.1, "USD"),
		pos("A1", Str("CRUDE MAR24"), Str("CLH4 COMDTY"), 5, 78.2, "USD"),
		pos("A1", Str("GOLD"), Str("GCG4 COMDTY"), 2, 2050, "USD"),
		pos("A2", Str("BUND"), Str("RXH4 COMDTY"), -3, 133.2, "EUR"),
		pos("A2", nil, Str("VGH4 INDEX"), 4, 4500, "EUR"),
		pos("A3", Str("ORPHAN"), nil, 1, 1, "USD"),
	)
	r := in("formidium",
		pos("A1", Str("APPLE"), Str("AAPL US EQUITY"), 90, 191.0, "EUR"),
		pos("A1", Str("WTI CRUDE"), Str("CLH4 COMDTY"), 6, 78.0, "GBP"),
		pos("A1", Str("GOLD"), nil, 2, 2050, "USD"),
		pos("A2", Str("EURO BUND"), Str("RXH4 COMDTY"), -3, 133.2, "EUR"),
		pos("A2", Str("STOXX"), Str("VGH4 INDEX"), 4, 4500, "EUR"),
		pos("A4", nil, nil, 9, 9, "USD"),
	)
	return l, r
}

func TestReconcile_PartitionLaw(t *testing.T) {
	l, r := sampleTables()

	for _, policy := range []DiffPolicy{PolicyAllDiffer, PolicyAnyDiffer} {
		t.Run(policy.Name, func(t *testing.T) {
			res, err := Reconcile(l, r, Options{Primary: Description, Fallback: BBGYellow, Policy: policy})
			require.NoError(t, err)

			// Every left row is matched, left-only or unidentified, exactly once.
			assert.Equal(t, l.Table.Len(), res.Summary.Matched+len(res.LeftOnly)+res.Summary.UnidentifiedLeft)
			assert.Equal(t, r.Table.Len(), res.Summary.Matched+len(res.RightOnly)+res.Summary.UnidentifiedRight)
			assert.LessOrEqual(t, len(res.Diff), res.Summary.Matched)

			seen := make(map[string]int)
			for _, d := range res.Diff {
				seen["L"+fmt.Sprint(d.Left.Position)]++
				seen["R"+fmt.Sprint(d.Right.Position)]++
			}
			for _, row := range res.LeftOnly {
				seen["L"+fmt.Sprint(row.Position)]++
			}
			for _, row := range res.RightOnly {
				seen["R"+fmt.Sprint(row.Position)]++
			}
			for k, n := range seen {
				assert.Equal(t, 1, n, "row duplicated across outputs: %s", k)
			}
		})
	}

	t.Run("Expected relations", func(t *testing.T) {
		res, err := Reconcile(l, r, Options{Primary: Description, Fallback: BBGYellow})
		require.NoError(t, err)

		// APPLE (tier 1) and CRUDE (tier 2) disagree on all three signals.
		require.Len(t, res.Diff, 2)
		assert.Equal(t, Description, res.Diff[0].MatchedOn)
		assert.Equal(t, BBGYellow, res.Diff[1].MatchedOn)

		// ORPHAN has no yellow key, so the fallback pass drops it.
		assert.Empty(t, res.LeftOnly)
		// STOXX lost its partner in the primary pass, which dropped the left row without a description.
		require.Len(t, res.RightOnly, 1)
		assert.Equal(t, "STOXX", *res.RightOnly[0].Position.Description)
		assert.Equal(t, 4, res.Summary.Matched)
		assert.Equal(t, 2, res.Summary.UnidentifiedLeft)
		assert.Equal(t, 1, res.Summary.UnidentifiedRight)
	})
}

func TestReconcile_Symmetry(t *testing.T) {
	l, r := sampleTables()
	opts := Options{Primary: Description, Fallback: BBGYellow, Policy: PolicyAnyDiffer}

	lr, err := Reconcile(l, r, opts)
	require.NoError(t, err)
	rl, err := Reconcile(r, l, opts)
	require.NoError(t, err)

	leftOf := func(rows []LeftRow) []CanonicalPosition {
		out := []CanonicalPosition{}
		for _, row := range rows {
			out = append(out, row.Position)
		}
		return out
	}
	rightOf := func(rows []RightRow) []CanonicalPosition {
		out := []CanonicalPosition{}
		for _, row := range rows {
			out = append(out, row.Position)
		}
		return out
	}

	assert.ElementsMatch(t, leftOf(lr.LeftOnly), rightOf(rl.RightOnly))
	assert.ElementsMatch(t, rightOf(lr.RightOnly), leftOf(rl.LeftOnly))

	require.Len(t, rl.Diff, len(lr.Diff))
	swapped := make([][2]CanonicalPosition, 0, len(rl.Diff))
	for _, d := range rl.Diff {
		swapped = append(swapped, [2]CanonicalPosition{d.Right.Position, d.Left.Position})
	}
	original := make([][2]CanonicalPosition, 0, len(lr.Diff))
	for _, d := range lr.Diff {
		original = append(original, [2]CanonicalPosition{d.Left.Position, d.Right.Position})
	}
	assert.ElementsMatch(t, original, swapped)
}

func TestReconcile_FallbackContainment(t *testing.T) {
	l, r := sampleTables()

	tier1, err := Reconcile(l, r, Options{Primary: Description})
	require.NoError(t, err)
	tier2, err := Reconcile(l, r, Options{Primary: Description, Fallback: BBGYellow})
	require.NoError(t, err)

	for _, row := range tier2.LeftOnly {
		assert.Contains(t, tier1.LeftOnly, row)
	}
	for _, row := range tier2.RightOnly {
		assert.Contains(t, tier1.RightOnly, row)
	}
}

func TestReconcile_InputsUntouched(t *testing.T) {
	l, r := sampleTables()
	before := l.Table.Rows()

	_, err := Reconcile(l, r, Options{Primary: Description, Fallback: BBGYellow})
	require.NoError(t, err)
	assert.Equal(t, before, l.Table.Rows())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		rows   []CanonicalPosition
		column string
		row    int
	}{
		{"Missing account", []CanonicalPosition{pos("", Str("X"), nil, 1, 1, "USD")}, "account_id", 0},
		{"Missing currency", []CanonicalPosition{pos("A1", Str("X"), nil, 1, 1, "")}, "local_ccy", 0},
		{"Missing price", []CanonicalPosition{pos("A1", Str("X"), nil, 1, math.NaN(), "USD")}, "price", 0},
		{
			"Duplicate description",
			[]CanonicalPosition{pos("A1", Str("X"), nil, 1, 1, "USD"), pos("A1", Str("X"), nil, 1, 1, "USD")},
			"description", 1,
		},
		{
			"Duplicate yellow key",
			[]CanonicalPosition{pos("A1", Str("X"), Str("K"), 1, 1, "USD"), pos("A1", Str("Y"), Str("K"), 1, 1, "USD")},
			"bbg_yellow", 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate("ib", NewTable(tt.rows))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSchemaViolation)

			var serr *SchemaViolationError
			require.True(t, errors.As(err, &serr))
			assert.Equal(t, tt.column, serr.Column)
			assert.Equal(t, tt.row, serr.Row)
		})
	}

	t.Run("Null identifiers are allowed", func(t *testing.T) {
		rows := []CanonicalPosition{pos("A1", nil, nil, 1, 1, "USD"), pos("A1", nil, nil, 2, 1, "USD")}
		assert.NoError(t, Validate("ib", NewTable(rows)))
	})
}

func TestPosition_Data(t *testing.T) {
	t.Run("Memoizes the canonical table", func(t *testing.T) {
		adapter := &mockAdapter{name: "ib", rows: []CanonicalPosition{pos("A1", Str("X"), nil, 1, 1, "USD")}}
		p := NewPosition(adapter, testDate, "", []string{"A1"})

		first, err := p.Data(context.Background())
		require.NoError(t, err)
		second, err := p.Data(context.Background())
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, 1, adapter.extractCalls)
		assert.Equal(t, []string{"A1"}, adapter.lastAccounts)
		assert.Equal(t, "ib", p.Provider())
	})

	t.Run("Does not memoize failures", func(t *testing.T) {
		adapter := &mockAdapter{name: "ib", extractErr: fmt.Errorf("boom")}
		p := NewPosition(adapter, testDate, "ib", nil)

		_, err := p.Data(context.Background())
		assert.Error(t, err)

		adapter.extractErr = nil
		_, err = p.Data(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, 2, adapter.extractCalls)
	})

	t.Run("Fails on schema violation", func(t *testing.T) {
		adapter := &mockAdapter{name: "ib", rows: []CanonicalPosition{pos("A1", Str("X"), nil, 1, 1, "")}}
		p := NewPosition(adapter, testDate, "ib", nil)

		_, err := p.Data(context.Background())
		assert.ErrorIs(t, err, ErrSchemaViolation)
	})
}

func TestPosition_ReconcileWith(t *testing.T) {
	left := NewPosition(&mockAdapter{name: "ib", rows: []CanonicalPosition{
		pos("A1", Str("XYZ"), Str("XYZ US EQUITY"), 100, 10.0, "USD"),
	}}, testDate, "ib", nil)
	right := NewPosition(&mockAdapter{name: "enfusion", rows: []CanonicalPosition{
		pos("A1", Str("XYZ INC"), Str("XYZ US EQUITY"), 50, 12.0, "EUR"),
	}}, testDate, "enfusion", nil)

	t.Run("Rejects same provider", func(t *testing.T) {
		same := NewPosition(&mockAdapter{name: "ib"}, testDate, "ib", nil)
		_, err := left.ReconcileWith(context.Background(), same, Description)
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("Applies fallback and policy options", func(t *testing.T) {
		res, err := left.ReconcileWith(context.Background(), right, Description,
			WithFallback(BBGYellow), WithPolicy(PolicyAnyDiffer))
		require.NoError(t, err)
		require.Len(t, res.Diff, 1)
		assert.Equal(t, BBGYellow, res.Diff[0].MatchedOn)
		assert.Equal(t, "ib", res.Left)
		assert.Equal(t, "enfusion", res.Right)
	})
}

func TestResult_Tables(t *testing.T) {
	l := in("ib", pos("A1", Str("XYZ"), nil, 100, 10.5, "USD"), pos("A1", Str("LEFT"), nil, 1, 1, "USD"))
	r := in("rjo", pos("A1", Str("XYZ"), nil, 40, 10.0, "EUR"))

	res, err := Reconcile(l, r, Options{Primary: Description})
	require.NoError(t, err)

	header, records := res.DiffTable()
	assert.Equal(t, "account_id_ib", header[0])
	assert.Equal(t, "account_id_rjo", header[len(PositionColumns)])
	assert.Equal(t, []string{"price_diff", "quantity_diff", "same_ccy?", "matched_on"}, header[2*len(PositionColumns):])
	require.Len(t, records, 1)
	assert.Len(t, records[0], len(header))
	assert.Equal(t, "60", records[0][len(header)-3])

	header, records = res.LeftOnlyTable()
	assert.Equal(t, "description_ib", header[1])
	assert.Equal(t, [][]string{{"A1", "LEFT", "", "1", "1", "USD", "", ""}}, records)

	header, records = res.RightOnlyTable()
	assert.Equal(t, "local_ccy_rjo", header[5])
	assert.Empty(t, records)
}

func TestPolicyByName(t *testing.T) {
	p, err := PolicyByName("")
	require.NoError(t, err)
	assert.Equal(t, "all", p.Name)

	p, err = PolicyByName("any")
	require.NoError(t, err)
	assert.Equal(t, "any", p.Name)

	_, err = PolicyByName("some")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestGroupRows(t *testing.T) {
	raw := []RawRow{
		{"acct": "A1", "sec": "X", "q": "1"},
		{"acct": "A2", "sec": "X", "q": "2"},
		{"acct": "A1", "sec": "", "q": "3"},
		{"acct": "A1", "sec": "X", "q": "4"},
	}

	groups := GroupRows(raw, "acct", "sec")
	require.Len(t, groups, 2)
	assert.Equal(t, "A1", groups[0].Account)
	assert.Len(t, groups[0].Rows, 2)
	assert.Equal(t, "1", groups[0].First("q"))
	assert.Equal(t, "A2", groups[1].Account)
}
