package integrity

import (
	"context"
	"time"

	"position-tally/feature/history"
	"position-tally/feature/integrity/checks"

	"go.uber.org/zap"
)

// Service handles integrity checks.
type Service struct {
	adapters checks.Adapters
	history  checks.ColumnChecker
	logger   *zap.Logger
}

// NewService creates a new integrity service. store may be nil when run history is disabled.
func NewService(adapters checks.Adapters, store *history.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{adapters: adapters, logger: logger}
	if store != nil {
		s.history = store
	}
	return s
}

// CheckExports reports the availability of every provider export for date.
func (s *Service) CheckExports(ctx context.Context, date time.Time) []checks.ExportReport {
	return checks.CheckExports(ctx, s.adapters, date)
}

// CheckHistory validates the run history schema.
func (s *Service) CheckHistory(ctx context.Context) (*checks.HistoryReport, error) {
	return checks.CheckHistory(ctx, s.history)
}
