package reconcile

import (
	"math"
	"strconv"
)

// Validate checks a canonical table against the position schema.
// It returns the first violation found as a *SchemaViolationError.
func Validate(provider string, t *Table) error {
	if t == nil {
		return nil
	}
	descKeys := make(map[joinKey]int)
	yellowKeys := make(map[joinKey]int)

	for i, p := range t.rows {
		switch {
		case p.AccountID == "":
			return &SchemaViolationError{Provider: provider, Column: "account_id", Row: i, Reason: "null value"}
		case p.LocalCCY == "":
			return &SchemaViolationError{Provider: provider, Column: "local_ccy", Row: i, Reason: "null value"}
		case math.IsNaN(p.Price):
			return &SchemaViolationError{Provider: provider, Column: "price", Row: i, Reason: "null value"}
		}

		if p.Description != nil {
			k := joinKey{account: p.AccountID, value: *p.Description}
			if first, ok := descKeys[k]; ok {
				return &SchemaViolationError{Provider: provider, Column: "description", Row: i,
					Reason: "duplicates row " + strconv.Itoa(first) + " for the same account"}
			}
			descKeys[k] = i
		}
		if p.BBGYellow != nil {
			k := joinKey{account: p.AccountID, value: *p.BBGYellow}
			if first, ok := yellowKeys[k]; ok {
				return &SchemaViolationError{Provider: provider, Column: "bbg_yellow", Row: i,
					Reason: "duplicates row " + strconv.Itoa(first) + " for the same account"}
			}
			yellowKeys[k] = i
		}
	}
	return nil
}
