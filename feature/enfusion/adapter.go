package enfusion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"position-tally/core/reconcile"
	"position-tally/core/storage"
	"position-tally/core/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Name is the provider label of the Enfusion PMS.
const Name = "enfusion"

// DefaultPath is the object key pattern of the daily position report.
const DefaultPath = "daily_positions/paf_1_dailyposition_%Y%m%d.csv"

// Columns of the Enfusion daily position report.
const (
	ColScenarioDate     = "Position Scenario Date"
	ColActive           = "Active"
	ColAccount          = "Account"
	ColYellowKey        = "BB Yellow Key"
	ColNotionalQuantity = "Notional Quantity"
	ColMarketPrice      = "Market Price"
	ColNativeCurrency   = "Native Currency"
	ColDescription      = "Description"
)

// ParseAccount extracts the bare account number from an Enfusion account label.
//
//	IBLLC U8674826                      -> U8674826
//	RJO' Brien Bank A/c: 791 30013 - F1 -> 30013
//	RJO' Brien Bank A/c: 791-30012 - F1 -> 30012
//
// Other labels are returned unchanged.
func ParseAccount(label string) string {
	switch {
	case strings.HasPrefix(label, "IBLLC"):
		return lastToken(label, " ")
	case strings.HasPrefix(label, "RJO"):
		head, _, _ := strings.Cut(label, " - ")
		return lastToken(lastToken(head, " "), "-")
	default:
		return label
	}
}

func lastToken(s, sep string) string {
	if i := strings.LastIndex(s, sep); i >= 0 {
		return s[i+len(sep):]
	}
	return s
}

// Adapter implements reconcile.Adapter for Enfusion position reports.
type Adapter struct {
	source storage.Source
	path   string
	logger *zap.Logger
}

// NewAdapter creates an Enfusion adapter. An empty path uses DefaultPath.
func NewAdapter(source storage.Source, path string, logger *zap.Logger) *Adapter {
	if path == "" {
		path = DefaultPath
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{source: source, path: path, logger: logger}
}

// Name returns the unique name of this adapter.
func (a *Adapter) Name() string {
	return Name
}

// Extract reads the report for date and keeps active scenario rows.
func (a *Adapter) Extract(ctx context.Context, date time.Time, accounts []string) ([]reconcile.RawRow, error) {
	path := utils.FormatPath(a.path, date)
	data, err := a.source.ReadBytes(ctx, path)
	if err != nil {
		return nil, reconcile.Transport("read "+path, err)
	}

	records, err := utils.ReadCSV(data, 0, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", reconcile.ErrSchemaViolation, path, err)
	}

	keep := reconcile.AccountFilter(accounts)
	var raw []reconcile.RawRow
	for _, rec := range records {
		if rec[ColScenarioDate] == "" || !utils.ToBool(rec[ColActive]) {
			continue
		}
		account := ParseAccount(rec[ColAccount])
		if !keep(account) {
			continue
		}
		row := reconcile.RawRow(rec)
		row["account_id"] = account
		raw = append(raw, row)
	}

	a.logger.Debug("Extracted Enfusion positions",
		zap.String("path", path),
		zap.Int("records", len(records)),
		zap.Int("positions", len(raw)))

	return raw, nil
}

// Transform sums notional quantities per (account, yellow key).
func (a *Adapter) Transform(ctx context.Context, raw []reconcile.RawRow) (*reconcile.Table, error) {
	groups := reconcile.GroupRows(raw, "account_id", ColYellowKey)

	rows := make([]reconcile.CanonicalPosition, 0, len(groups))
	for i, g := range groups {
		qty := decimal.Zero
		for _, r := range g.Rows {
			q, err := utils.ParseDecimal(r[ColNotionalQuantity])
			if err != nil {
				return nil, &reconcile.SchemaViolationError{Provider: Name, Column: "quantity", Row: i, Reason: err.Error()}
			}
			qty = qty.Add(q)
		}

		quantity, err := utils.ToInt64(qty)
		if err != nil {
			return nil, &reconcile.SchemaViolationError{Provider: Name, Column: "quantity", Row: i, Reason: err.Error()}
		}

		price, err := utils.ParsePrice(g.First(ColMarketPrice))
		if err != nil {
			return nil, &reconcile.SchemaViolationError{Provider: Name, Column: "price", Row: i, Reason: err.Error()}
		}

		rows = append(rows, reconcile.CanonicalPosition{
			AccountID:   g.Account,
			Description: reconcile.Str(g.First(ColDescription)),
			BBGYellow:   reconcile.Str(strings.ToUpper(g.Instrument)),
			Quantity:    quantity,
			Price:       price,
			LocalCCY:    g.First(ColNativeCurrency),
		})
	}

	a.logger.Debug("Transformed Enfusion positions", zap.Int("positions", len(rows)))

	return reconcile.NewTable(rows), nil
}
