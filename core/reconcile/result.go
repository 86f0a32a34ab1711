package reconcile

import (
	"strconv"
)

// LeftRow is a position namespaced to the left-hand provider of a reconciliation.
type LeftRow struct {
	Provider string            `json:"provider"`
	Position CanonicalPosition `json:"position"`
}

// RightRow is a position namespaced to the right-hand provider of a reconciliation.
type RightRow struct {
	Provider string            `json:"provider"`
	Position CanonicalPosition `json:"position"`
}

// DiffRow is a matched pair whose values disagree under the active diff policy.
type DiffRow struct {
	Left  LeftRow  `json:"left"`
	Right RightRow `json:"right"`

	// QuantityDiff is left quantity minus right quantity.
	QuantityDiff int64 `json:"quantity_diff"`
	// PriceDiff is left price minus right price.
	PriceDiff float64 `json:"price_diff"`
	// SameCCY reports whether both sides hold the position in the same currency.
	SameCCY bool `json:"same_ccy"`
	// MatchedOn is the identifier of the pass that paired the rows.
	MatchedOn Identifier `json:"matched_on"`
}

// Result holds the three relations of a reconciliation. It is recomputed on every call.
type Result struct {
	Left  string `json:"left"`
	Right string `json:"right"`

	Diff      []DiffRow  `json:"diff"`
	LeftOnly  []LeftRow  `json:"left_only"`
	RightOnly []RightRow `json:"right_only"`

	Summary Summary `json:"summary"`
}

// Summary provides aggregate counts for a reconciliation.
type Summary struct {
	// Matched counts pairs joined in any tier, flagged or not.
	Matched int `json:"matched"`
	// Diff, LeftOnly and RightOnly count the rows of each relation.
	Diff      int `json:"diff"`
	LeftOnly  int `json:"left_only"`
	RightOnly int `json:"right_only"`
	// UnidentifiedLeft and UnidentifiedRight count rows dropped because the
	// identifier of their tier was null. Such rows appear in no relation.
	UnidentifiedLeft  int `json:"unidentified_left"`
	UnidentifiedRight int `json:"unidentified_right"`
}

// Suffixed returns the canonical columns with the provider suffix appended.
func Suffixed(provider string) []string {
	cols := make([]string, len(PositionColumns))
	for i, c := range PositionColumns {
		cols[i] = c + "_" + provider
	}
	return cols
}

// DiffTable renders the diff relation as a header plus records in stable column order.
func (r *Result) DiffTable() ([]string, [][]string) {
	header := append(Suffixed(r.Left), Suffixed(r.Right)...)
	header = append(header, "price_diff", "quantity_diff", "same_ccy?", "matched_on")

	records := make([][]string, 0, len(r.Diff))
	for _, d := range r.Diff {
		rec := append(d.Left.Position.Record(), d.Right.Position.Record()...)
		rec = append(rec,
			formatFloat(d.PriceDiff),
			strconv.FormatInt(d.QuantityDiff, 10),
			strconv.FormatBool(d.SameCCY),
			string(d.MatchedOn),
		)
		records = append(records, rec)
	}
	return header, records
}

// LeftOnlyTable renders the left-only relation.
func (r *Result) LeftOnlyTable() ([]string, [][]string) {
	records := make([][]string, 0, len(r.LeftOnly))
	for _, row := range r.LeftOnly {
		records = append(records, row.Position.Record())
	}
	return Suffixed(r.Left), records
}

// RightOnlyTable renders the right-only relation.
func (r *Result) RightOnlyTable() ([]string, [][]string) {
	records := make([][]string, 0, len(r.RightOnly))
	for _, row := range r.RightOnly {
		records = append(records, row.Position.Record())
	}
	return Suffixed(r.Right), records
}
