package reconcile

import (
	"fmt"
)

// Input is one side of a reconciliation: a canonical table and the provider that produced it.
type Input struct {
	Provider string
	Table    *Table
}

// Options controls the matching passes of Reconcile.
type Options struct {
	// Primary is the identifier of the first matching pass.
	Primary Identifier

	// Fallback, when set, reruns the match on the rows left unmatched by the primary pass.
	Fallback Identifier

	// Policy decides which matched pairs are reported. The zero value selects PolicyAllDiffer.
	Policy DiffPolicy
}

// joinKey is the composite (account_id, identifier) key of a match pass.
type joinKey struct {
	account string
	value   string
}

// Reconcile matches two canonical tables and returns the diff, left-only and right-only relations.
// Neither input is modified.
func Reconcile(left, right Input, opts Options) (*Result, error) {
	if left.Provider == right.Provider {
		return nil, fmt.Errorf("%w: cannot reconcile provider %q with itself", ErrConfiguration, left.Provider)
	}
	if opts.Primary == "" {
		opts.Primary = Description
	}
	if _, err := ParseIdentifier(string(opts.Primary)); err != nil {
		return nil, err
	}
	if opts.Fallback != "" {
		if _, err := ParseIdentifier(string(opts.Fallback)); err != nil {
			return nil, err
		}
	}
	if opts.Policy.Flag == nil {
		opts.Policy = PolicyAllDiffer
	}

	// Namespace both sides before any join.
	l := make([]LeftRow, 0, left.Table.Len())
	for _, p := range left.Table.Rows() {
		l = append(l, LeftRow{Provider: left.Provider, Position: p})
	}
	r := make([]RightRow, 0, right.Table.Len())
	for _, p := range right.Table.Rows() {
		r = append(r, RightRow{Provider: right.Provider, Position: p})
	}

	result := &Result{Left: left.Provider, Right: right.Provider}

	first, err := match(l, r, opts.Primary, opts.Policy)
	if err != nil {
		return nil, err
	}
	result.absorb(first)

	final := first
	if opts.Fallback != "" {
		second, err := match(first.leftOnly, first.rightOnly, opts.Fallback, opts.Policy)
		if err != nil {
			return nil, err
		}
		result.absorb(second)
		final = second
	}

	result.LeftOnly = final.leftOnly
	result.RightOnly = final.rightOnly
	if result.Diff == nil {
		result.Diff = []DiffRow{}
	}
	result.Summary.Diff = len(result.Diff)
	result.Summary.LeftOnly = len(result.LeftOnly)
	result.Summary.RightOnly = len(result.RightOnly)

	return result, nil
}

// pass is the outcome of a single match pass.
type pass struct {
	diff      []DiffRow
	leftOnly  []LeftRow
	rightOnly []RightRow
	matched   int
	droppedL  int
	droppedR  int
}

func (r *Result) absorb(p *pass) {
	r.Diff = append(r.Diff, p.diff...)
	r.Summary.Matched += p.matched
	r.Summary.UnidentifiedLeft += p.droppedL
	r.Summary.UnidentifiedRight += p.droppedR
}

// match runs one 1:1 join pass on (account_id, id).
// Rows whose id is null take no part in the pass and are left out of every relation.
func match(left []LeftRow, right []RightRow, id Identifier, policy DiffPolicy) (*pass, error) {
	p := &pass{leftOnly: []LeftRow{}, rightOnly: []RightRow{}}

	leftKeys := make([]joinKey, 0, len(left))
	leftRows := make([]LeftRow, 0, len(left))
	seenLeft := make(map[joinKey]struct{}, len(left))
	for _, row := range left {
		v := id.value(row.Position)
		if v == nil {
			p.droppedL++
			continue
		}
		k := joinKey{account: row.Position.AccountID, value: *v}
		if _, dup := seenLeft[k]; dup {
			return nil, &JoinIntegrityError{Provider: row.Provider, Identifier: id, AccountID: k.account, Value: k.value}
		}
		seenLeft[k] = struct{}{}
		leftKeys = append(leftKeys, k)
		leftRows = append(leftRows, row)
	}

	rightIndex := make(map[joinKey]int, len(right))
	rightRows := make([]RightRow, 0, len(right))
	for _, row := range right {
		v := id.value(row.Position)
		if v == nil {
			p.droppedR++
			continue
		}
		k := joinKey{account: row.Position.AccountID, value: *v}
		if _, dup := rightIndex[k]; dup {
			return nil, &JoinIntegrityError{Provider: row.Provider, Identifier: id, AccountID: k.account, Value: k.value}
		}
		rightIndex[k] = len(rightRows)
		rightRows = append(rightRows, row)
	}

	matchedRight := make([]bool, len(rightRows))
	for i, row := range leftRows {
		j, ok := rightIndex[leftKeys[i]]
		if !ok {
			p.leftOnly = append(p.leftOnly, row)
			continue
		}
		matchedRight[j] = true
		p.matched++

		other := rightRows[j]
		d := DiffRow{
			Left:         row,
			Right:        other,
			QuantityDiff: row.Position.Quantity - other.Position.Quantity,
			PriceDiff:    row.Position.Price - other.Position.Price,
			SameCCY:      row.Position.LocalCCY == other.Position.LocalCCY,
			MatchedOn:    id,
		}
		if policy.Flag(d) {
			p.diff = append(p.diff, d)
		}
	}

	for j, row := range rightRows {
		if !matchedRight[j] {
			p.rightOnly = append(p.rightOnly, row)
		}
	}

	return p, nil
}
