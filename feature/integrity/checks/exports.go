package checks

import (
	"context"
	"errors"
	"sort"
	"time"

	"position-tally/core/reconcile"
	"position-tally/core/storage"
)

// Export statuses.
const (
	StatusOK      = "ok"
	StatusMissing = "missing"
	StatusError   = "error"
)

// Adapters resolves provider labels to adapters. It is satisfied by *providers.Registry.
type Adapters interface {
	Labels() []string
	Adapter(label string) (reconcile.Adapter, error)
}

// ExportReport is the availability of one provider export for a date.
type ExportReport struct {
	Provider string `json:"provider"`
	Adapter  string `json:"adapter,omitempty"`
	Status   string `json:"status"`
	Rows     int    `json:"rows"`
	Accounts int    `json:"accounts"`
	Error    string `json:"error,omitempty"`
}

// CheckExports extracts the export of every configured provider for date and reports
// which are present, missing or unreadable. Reports are sorted by provider.
func CheckExports(ctx context.Context, adapters Adapters, date time.Time) []ExportReport {
	labels := adapters.Labels()
	reports := make([]ExportReport, 0, len(labels))
	for _, label := range labels {
		reports = append(reports, checkExport(ctx, adapters, label, date))
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].Provider < reports[j].Provider })
	return reports
}

func checkExport(ctx context.Context, adapters Adapters, label string, date time.Time) ExportReport {
	report := ExportReport{Provider: label}

	adapter, err := adapters.Adapter(label)
	if err != nil {
		report.Status = StatusError
		report.Error = err.Error()
		return report
	}
	report.Adapter = adapter.Name()

	raw, err := adapter.Extract(ctx, date, nil)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		report.Status = StatusMissing
		return report
	case err != nil:
		report.Status = StatusError
		report.Error = err.Error()
		return report
	}

	accounts := make(map[string]struct{})
	for _, r := range raw {
		accounts[r["account_id"]] = struct{}{}
	}
	report.Status = StatusOK
	report.Rows = len(raw)
	report.Accounts = len(accounts)
	return report
}
