package history

import (
	"time"

	"position-tally/core/reconcile"
)

// Run is the persisted summary of one reconciliation.
type Run struct {
	ID                 string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt          time.Time `json:"created_at"`
	Date               time.Time `gorm:"index" json:"date"`
	LeftProvider       string    `gorm:"size:64;not null" json:"left"`
	RightProvider      string    `gorm:"size:64;not null" json:"right"`
	PrimaryIdentifier  string    `gorm:"size:32" json:"primary"`
	FallbackIdentifier string    `gorm:"size:32" json:"fallback,omitempty"`
	Policy             string    `gorm:"size:16" json:"policy"`

	Matched           int `json:"matched"`
	Diff              int `json:"diff"`
	LeftOnly          int `json:"left_only"`
	RightOnly         int `json:"right_only"`
	UnidentifiedLeft  int `json:"unidentified_left"`
	UnidentifiedRight int `json:"unidentified_right"`

	Breaks []Break `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE" json:"breaks,omitempty"`
}

// TableName overrides the table name used by Run to `reconciliation_runs`.
func (Run) TableName() string {
	return "reconciliation_runs"
}

// Break is one row of a run's diff, left-only or right-only relation.
type Break struct {
	ID          uint    `gorm:"primaryKey" json:"-"`
	RunID       string  `gorm:"size:36;index" json:"-"`
	Relation    string  `gorm:"size:16" json:"relation"`
	AccountID   string  `gorm:"size:64" json:"account_id"`
	Description *string `gorm:"size:255" json:"description"`
	BBGYellow   *string `gorm:"size:64" json:"bbg_yellow"`
	MatchedOn   string  `gorm:"size:32" json:"matched_on,omitempty"`

	LeftQuantity  *int64   `json:"left_quantity,omitempty"`
	RightQuantity *int64   `json:"right_quantity,omitempty"`
	QuantityDiff  *int64   `json:"quantity_diff,omitempty"`
	PriceDiff     *float64 `json:"price_diff,omitempty"`
	SameCCY       *bool    `json:"same_ccy,omitempty"`
}

// TableName overrides the table name used by Break to `reconciliation_breaks`.
func (Break) TableName() string {
	return "reconciliation_breaks"
}

// RunColumns are the columns Save writes to reconciliation_runs.
var RunColumns = []string{
	"id", "created_at", "date", "left_provider", "right_provider", "primary_identifier",
	"fallback_identifier", "policy", "matched", "diff", "left_only", "right_only",
	"unidentified_left", "unidentified_right",
}

// Params describes how a run was configured.
type Params struct {
	Date     time.Time
	Primary  reconcile.Identifier
	Fallback reconcile.Identifier
	Policy   string
}

// NewRun converts a result into a Run with its breaks.
func NewRun(id string, p Params, res *reconcile.Result) *Run {
	run := &Run{
		ID:                 id,
		Date:               p.Date,
		LeftProvider:       res.Left,
		RightProvider:      res.Right,
		PrimaryIdentifier:  string(p.Primary),
		FallbackIdentifier: string(p.Fallback),
		Policy:             p.Policy,
		Matched:            res.Summary.Matched,
		Diff:               res.Summary.Diff,
		LeftOnly:           res.Summary.LeftOnly,
		RightOnly:          res.Summary.RightOnly,
		UnidentifiedLeft:   res.Summary.UnidentifiedLeft,
		UnidentifiedRight:  res.Summary.UnidentifiedRight,
	}

	for _, d := range res.Diff {
		lq, rq, qd, pd, same := d.Left.Position.Quantity, d.Right.Position.Quantity, d.QuantityDiff, d.PriceDiff, d.SameCCY
		run.Breaks = append(run.Breaks, Break{
			Relation:      "diff",
			AccountID:     d.Left.Position.AccountID,
			Description:   d.Left.Position.Description,
			BBGYellow:     d.Left.Position.BBGYellow,
			MatchedOn:     string(d.MatchedOn),
			LeftQuantity:  &lq,
			RightQuantity: &rq,
			QuantityDiff:  &qd,
			PriceDiff:     &pd,
			SameCCY:       &same,
		})
	}
	for _, l := range res.LeftOnly {
		q := l.Position.Quantity
		run.Breaks = append(run.Breaks, Break{
			Relation:     "left_only",
			AccountID:    l.Position.AccountID,
			Description:  l.Position.Description,
			BBGYellow:    l.Position.BBGYellow,
			LeftQuantity: &q,
		})
	}
	for _, r := range res.RightOnly {
		q := r.Position.Quantity
		run.Breaks = append(run.Breaks, Break{
			Relation:      "right_only",
			AccountID:     r.Position.AccountID,
			Description:   r.Position.Description,
			BBGYellow:     r.Position.BBGYellow,
			RightQuantity: &q,
		})
	}
	return run
}
