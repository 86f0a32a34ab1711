package formidium

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

// Name is the provider label of the Formidium fund administrator.
const Name = "formidium"

// DefaultPath is the object key pattern of the reporting package.
const DefaultPath = "formidium/Reporting Package %Y-%m-%d.xlsx"

// HeaderRow is the zero-based row of the position sheet header.
const HeaderRow = 3

// Columns of the reporting package position sheet.
const (
	ColAccount  = "Account"
	ColSymbol   = "Symbol"
	ColSecurity = "Security"
	ColQuantity = "Quantity"
	ColPrice    = "MP"
	ColCurrency = "CCY"
)

// Broker labels assigned to administrator accounts.
const (
	BrokerRJO = "RJO"
	BrokerIB  = "IB"
)

var brokerNames = map[string]string{
	"RJO' Brien Bank A/c": BrokerRJO,
	"Interactive Brokers": BrokerIB,
}

// ParseAccount splits an administrator account label "<broker> - <account>" into the broker
// label and bare account number. RJO accounts keep only the last token ("791 30003" -> "30003").
// Unknown brokers keep their raw name.
func ParseAccount(label string) (broker, account string) {
	name, rest, found := strings.Cut(label, " - ")
	if !found {
		return label, label
	}
	broker = name
	if b, ok := brokerNames[name]; ok {
		broker = b
	}
	account = rest
	if broker == BrokerRJO {
		if i := strings.LastIndex(rest, " "); i >= 0 {
			account = rest[i+1:]
		}
	}
	return broker, account
}

// Adapter implements reconcile.Adapter for Formidium reporting packages.
type Adapter struct {
	source storage.Source
	path   string
	logger *zap.Logger
}

// NewAdapter creates a Formidium adapter. An empty path uses DefaultPath.
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

// Extract reads the reporting package for date and keeps rows with a symbol.
func (a *Adapter) Extract(ctx context.Context, date time.Time, accounts []string) ([]reconcile.RawRow, error) {
	path := utils.FormatPath(a.path, date)
	data, err := a.source.ReadBytes(ctx, path)
	if err != nil {
		return nil, reconcile.Transport("read "+path, err)
	}

	records, err := utils.ReadXLSX(data, HeaderRow)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", reconcile.ErrSchemaViolation, path, err)
	}

	keep := reconcile.AccountFilter(accounts)
	var raw []reconcile.RawRow
	for _, rec := range records {
		if rec[ColSymbol] == "" {
			continue
		}
		broker, account := ParseAccount(rec[ColAccount])
		if !keep(account) {
			continue
		}
		row := reconcile.RawRow(rec)
		row["broker"] = broker
		row["account_id"] = account
		raw = append(raw, row)
	}

	a.logger.Debug("Extracted Formidium positions",
		zap.String("path", path),
		zap.Int("records", len(records)),
		zap.Int("positions", len(raw)))

	return raw, nil
}

// Transform sums quantities per (account, security). Only RJO symbols are yellow keys.
func (a *Adapter) Transform(ctx context.Context, raw []reconcile.RawRow) (*reconcile.Table, error) {
	groups := reconcile.GroupRows(raw, "account_id", ColSecurity)

	rows := make([]reconcile.CanonicalPosition, 0, len(groups))
	for i, g := range groups {
		qty := decimal.Zero
		for _, r := range g.Rows {
			q, err := utils.ParseDecimal(r[ColQuantity])
			if err != nil {
				return nil, &reconcile.SchemaViolationError{Provider: Name, Column: "quantity", Row: i, Reason: err.Error()}
			}
			qty = qty.Add(q)
		}

		quantity, err := utils.ToInt64(qty)
		if err != nil {
			return nil, &reconcile.SchemaViolationError{Provider: Name, Column: "quantity", Row: i, Reason: err.Error()}
		}

		price, err := utils.ParsePrice(g.First(ColPrice))
		if err != nil {
			return nil, &reconcile.SchemaViolationError{Provider: Name, Column: "price", Row: i, Reason: err.Error()}
		}

		var bbg *string
		if g.First("broker") == BrokerRJO {
			bbg = reconcile.Str(strings.ToUpper(g.First(ColSymbol)))
		}

		rows = append(rows, reconcile.CanonicalPosition{
			AccountID:   g.Account,
			Description: reconcile.Str(g.Instrument),
			BBGYellow:   bbg,
			Quantity:    quantity,
			Price:       price,
			LocalCCY:    g.First(ColCurrency),
		})
	}

	a.logger.Debug("Transformed Formidium positions", zap.Int("positions", len(rows)))

	return reconcile.NewTable(rows), nil
}
