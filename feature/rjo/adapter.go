package rjo

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

// Name is the provider label of RJO.
const Name = "rjo"

// DefaultPath is the object key pattern of the daily position file.
const DefaultPath = "NOVISCIENT_SFTP_csvnpos_npos_%Y%m%d.csv"

// Adapter implements reconcile.Adapter for RJO position files.
type Adapter struct {
	source storage.Source
	path   string
	logger *zap.Logger
}

// NewAdapter creates an RJO adapter reading from source. An empty path uses DefaultPath.
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

// Extract reads the position file for date and keeps position records of the requested accounts.
func (a *Adapter) Extract(ctx context.Context, date time.Time, accounts []string) ([]reconcile.RawRow, error) {
	path := utils.FormatPath(a.path, date)
	data, err := a.source.ReadBytes(ctx, path)
	if err != nil {
		return nil, reconcile.Transport("read "+path, err)
	}

	records, err := utils.ReadCSV(data, 0, PositionHeader)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", reconcile.ErrSchemaViolation, path, err)
	}

	keep := reconcile.AccountFilter(accounts)
	var raw []reconcile.RawRow
	for _, rec := range records {
		if rec[ColRecordCode] != "P" {
			continue
		}
		account := rec[ColAccountNumber]
		if !keep(account) {
			continue
		}
		row := reconcile.RawRow(rec)
		row["account_id"] = account
		raw = append(raw, row)
	}

	a.logger.Debug("Extracted RJO positions",
		zap.String("path", path),
		zap.Int("records", len(records)),
		zap.Int("positions", len(raw)))

	return raw, nil
}

// Transform nets futures lots per (account, description) and derives the yellow key.
func (a *Adapter) Transform(ctx context.Context, raw []reconcile.RawRow) (*reconcile.Table, error) {
	futures := make([]reconcile.RawRow, 0, len(raw))
	for _, row := range raw {
		if row[ColSecurityDescription] == "" || row[ColSecuritySubtypeCode] != "" {
			continue
		}
		futures = append(futures, row)
	}

	groups := reconcile.GroupRows(futures, "account_id", ColSecurityDescription)
	rows := make([]reconcile.CanonicalPosition, 0, len(groups))
	for i, g := range groups {
		qty := decimal.Zero
		for _, r := range g.Rows {
			lot, err := signedQuantity(r)
			if err != nil {
				return nil, &reconcile.SchemaViolationError{Provider: Name, Column: "quantity", Row: i, Reason: err.Error()}
			}
			qty = qty.Add(lot)
		}

		quantity, err := utils.ToInt64(qty)
		if err != nil {
			return nil, &reconcile.SchemaViolationError{Provider: Name, Column: "quantity", Row: i, Reason: err.Error()}
		}

		price, err := utils.ParsePrice(g.First(ColClosePrice))
		if err != nil {
			return nil, &reconcile.SchemaViolationError{Provider: Name, Column: "price", Row: i, Reason: err.Error()}
		}

		key, err := YellowKey(g.Instrument, g.First(ColBloombergRoot), g.First(ColBloombergSector), g.First(ColContractMonth))
		if err != nil {
			return nil, &reconcile.SchemaViolationError{Provider: Name, Column: "bbg_yellow", Row: i, Reason: err.Error()}
		}

		rows = append(rows, reconcile.CanonicalPosition{
			AccountID:   g.Account,
			Description: reconcile.Str(g.Instrument),
			BBGYellow:   reconcile.Str(strings.ToUpper(key)),
			Quantity:    quantity,
			Price:       price,
			LocalCCY:    g.First(ColAccountCurrencySymbol),
		})
	}

	a.logger.Debug("Transformed RJO positions", zap.Int("lots", len(futures)), zap.Int("positions", len(rows)))

	return reconcile.NewTable(rows), nil
}

// signedQuantity applies the buy/sell code to the lot quantity.
func signedQuantity(row reconcile.RawRow) (decimal.Decimal, error) {
	qty, err := utils.ParseDecimal(row[ColQuantity])
	if err != nil {
		return decimal.Zero, err
	}
	switch row[ColBuySellCode] {
	case "1":
		return qty, nil
	case "2":
		return qty.Neg(), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown buy/sell code %q", row[ColBuySellCode])
	}
}
