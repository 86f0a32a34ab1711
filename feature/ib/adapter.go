package ib

import (
	"context"
	"fmt"
	"strings"
	"time"

	"position-tally/core/openfigi"
	"position-tally/core/reconcile"
	"position-tally/core/storage"
	"position-tally/core/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Name is the provider label of Interactive Brokers.
const Name = "ib"

// DefaultPath is the object key pattern of the daily position file.
const DefaultPath = "IB/F5678557_Position_%Y%m%d.csv"

// Columns of the IB position file.
const (
	ColType                = "Type"
	ColAccountID           = "AccountID"
	ColAssetType           = "AssetType"
	ColSecurityDescription = "SecurityDescription"
	ColQuantity            = "Quantity"
	ColMarketPrice         = "MarketPrice"
	ColCurrency            = "Currency"
	ColBBGlobalID          = "BBGlobalID"
	ColCostBasisPrice      = "CostBasisPrice"
)

// nonPositionAssets are asset types that report balances rather than holdings.
// See https://www.ibkrguides.com/reportingintegration/topics/asset_types.htm
var nonPositionAssets = map[string]bool{"CASH": true, "DIVACC": true, "INTACC": true}

// Mapper resolves Bloomberg global ids in one batch.
type Mapper interface {
	MapBatch(ctx context.Context, ids []string) (map[string]openfigi.Mapping, error)
}

// Adapter implements reconcile.Adapter for IB flex position files.
type Adapter struct {
	source storage.Source
	mapper Mapper
	path   string
	logger *zap.Logger
}

// NewAdapter creates an IB adapter. An empty path uses DefaultPath.
func NewAdapter(source storage.Source, mapper Mapper, path string, logger *zap.Logger) *Adapter {
	if path == "" {
		path = DefaultPath
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{source: source, mapper: mapper, path: path, logger: logger}
}

// Name returns the unique name of this adapter.
func (a *Adapter) Name() string {
	return Name
}

// Extract reads the position file for date. The first line of the file is a preamble.
func (a *Adapter) Extract(ctx context.Context, date time.Time, accounts []string) ([]reconcile.RawRow, error) {
	path := utils.FormatPath(a.path, date)
	data, err := a.source.ReadBytes(ctx, path)
	if err != nil {
		return nil, reconcile.Transport("read "+path, err)
	}

	records, err := utils.ReadCSV(data, 1, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", reconcile.ErrSchemaViolation, path, err)
	}

	keep := reconcile.AccountFilter(accounts)
	var raw []reconcile.RawRow
	for _, rec := range records {
		asset := rec[ColAssetType]
		if rec[ColType] != "D" || asset == "" || nonPositionAssets[asset] {
			continue
		}
		if !keep(rec[ColAccountID]) {
			continue
		}
		row := reconcile.RawRow(rec)
		row["account_id"] = rec[ColAccountID]
		raw = append(raw, row)
	}

	a.logger.Debug("Extracted IB positions",
		zap.String("path", path),
		zap.Int("records", len(records)),
		zap.Int("positions", len(raw)))

	return raw, nil
}

// Transform sums quantities per (account, description) and resolves yellow keys through the mapper.
// Ids the mapper cannot resolve are kept as the yellow key.
func (a *Adapter) Transform(ctx context.Context, raw []reconcile.RawRow) (*reconcile.Table, error) {
	groups := reconcile.GroupRows(raw, "account_id", ColSecurityDescription)

	rows := make([]reconcile.CanonicalPosition, 0, len(groups))
	ids := make([]string, 0, len(groups))
	seen := make(map[string]struct{}, len(groups))
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

		price, err := utils.ParsePrice(g.First(ColMarketPrice))
		if err != nil {
			return nil, &reconcile.SchemaViolationError{Provider: Name, Column: "price", Row: i, Reason: err.Error()}
		}

		pos := reconcile.CanonicalPosition{
			AccountID:   g.Account,
			Description: reconcile.Str(g.Instrument),
			BBGYellow:   reconcile.Str(g.First(ColBBGlobalID)),
			Quantity:    quantity,
			Price:       price,
			LocalCCY:    g.First(ColCurrency),
			AssetType:   reconcile.Str(g.First(ColAssetType)),
		}
		if cost := g.First(ColCostBasisPrice); cost != "" {
			c, err := utils.ToFloat(cost)
			if err != nil {
				return nil, &reconcile.SchemaViolationError{Provider: Name, Column: "cost_price_lc", Row: i, Reason: err.Error()}
			}
			pos.CostPriceLC = &c
		}

		if id := pos.BBGYellow; id != nil {
			if _, dup := seen[*id]; !dup {
				seen[*id] = struct{}{}
				ids = append(ids, *id)
			}
		}
		rows = append(rows, pos)
	}

	mapping := map[string]openfigi.Mapping{}
	if len(ids) > 0 {
		var err error
		mapping, err = a.mapper.MapBatch(ctx, ids)
		if err != nil {
			return nil, reconcile.Transport("map IB global ids", err)
		}
	}

	unresolved := 0
	for i := range rows {
		id := rows[i].BBGYellow
		if id == nil {
			continue
		}
		key := *id
		if m, ok := mapping[key]; ok {
			key = openfigi.YellowKey(m)
		} else {
			unresolved++
		}
		rows[i].BBGYellow = reconcile.Str(strings.ToUpper(key))
	}

	a.logger.Debug("Transformed IB positions",
		zap.Int("positions", len(rows)),
		zap.Int("global_ids", len(ids)),
		zap.Int("unresolved", unresolved))

	return reconcile.NewTable(rows), nil
}
