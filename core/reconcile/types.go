package reconcile

import (
	"fmt"
	"math"
	"strconv"
)

// CanonicalPosition is the normalized position row every provider adapter produces.
type CanonicalPosition struct {
	// AccountID is the bare account number with provider prefixes stripped.
	AccountID string `json:"account_id"`

	// Description is the provider's security description. It is the primary matching key.
	Description *string `json:"description"`

	// BBGYellow is the standard cross-venue security code, always upper-cased.
	BBGYellow *string `json:"bbg_yellow"`

	// Quantity is the signed net size summed over all lots of the instrument.
	Quantity int64 `json:"quantity"`

	// Price is the provider mark. NaN marks a missing price.
	Price float64 `json:"price"`

	// LocalCCY is the currency code the position is held in.
	LocalCCY string `json:"local_ccy"`

	// AssetType and CostPriceLC belong to the extended schema and are optional.
	AssetType   *string  `json:"asset_type,omitempty"`
	CostPriceLC *float64 `json:"cost_price_lc,omitempty"`
}

// Identifier names the column used to match instruments across providers.
type Identifier string

const (
	// Description matches on the provider security description.
	Description Identifier = "description"
	// BBGYellow matches on the standard security code.
	BBGYellow Identifier = "bbg_yellow"
)

// ParseIdentifier validates an identifier name coming from flags or query parameters.
func ParseIdentifier(s string) (Identifier, error) {
	switch Identifier(s) {
	case Description, BBGYellow:
		return Identifier(s), nil
	default:
		return "", fmt.Errorf("%w: unknown instrument identifier %q", ErrConfiguration, s)
	}
}

// value returns the identifier value of a position, or nil when it is null.
func (id Identifier) value(p CanonicalPosition) *string {
	switch id {
	case Description:
		return p.Description
	case BBGYellow:
		return p.BBGYellow
	default:
		return nil
	}
}

// Table is an ordered, read-only collection of canonical positions.
type Table struct {
	rows []CanonicalPosition
}

// NewTable copies rows into a new table.
func NewTable(rows []CanonicalPosition) *Table {
	cp := make([]CanonicalPosition, len(rows))
	copy(cp, rows)
	return &Table{rows: cp}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Rows returns a copy of the table rows.
func (t *Table) Rows() []CanonicalPosition {
	if t == nil {
		return nil
	}
	cp := make([]CanonicalPosition, len(t.rows))
	copy(cp, t.rows)
	return cp
}

// At returns the i-th row.
func (t *Table) At(i int) CanonicalPosition {
	return t.rows[i]
}

// PositionColumns is the stable column order of the canonical schema.
var PositionColumns = []string{
	"account_id", "description", "bbg_yellow", "quantity", "price", "local_ccy", "asset_type", "cost_price_lc",
}

// Record renders the row in PositionColumns order. Nulls become empty cells.
func (p CanonicalPosition) Record() []string {
	return []string{
		p.AccountID,
		deref(p.Description),
		deref(p.BBGYellow),
		strconv.FormatInt(p.Quantity, 10),
		formatFloat(p.Price),
		p.LocalCCY,
		deref(p.AssetType),
		formatFloatPtr(p.CostPriceLC),
	}
}

// Str returns a pointer to s, or nil when s is empty.
func Str(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatFloatPtr(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}
