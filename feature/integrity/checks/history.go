package checks

import (
	"context"
	"fmt"
)

// ColumnChecker reports the columns missing from a table. It is satisfied by *history.Store.
type ColumnChecker interface {
	MissingColumns(ctx context.Context) ([]string, error)
}

// HistoryReport strictly types the result of a history database check.
type HistoryReport struct {
	Matched        bool     `json:"matched"`
	MissingColumns []string `json:"missing_columns"`
	Status         string   `json:"status"` // "ok", "error"
}

// CheckHistory verifies the run history table carries every column the store writes.
func CheckHistory(ctx context.Context, store ColumnChecker) (*HistoryReport, error) {
	if store == nil {
		return nil, fmt.Errorf("history database is not configured")
	}

	missing, err := store.MissingColumns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect history table: %w", err)
	}

	report := &HistoryReport{Matched: len(missing) == 0, MissingColumns: missing, Status: StatusOK}
	if !report.Matched {
		report.Status = StatusError
	}
	if report.MissingColumns == nil {
		report.MissingColumns = []string{}
	}
	return report, nil
}
