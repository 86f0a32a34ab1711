package reconciliation

import (
	"context"
	"fmt"
	"time"

	"position-tally/core/config"
	"position-tally/core/reconcile"
	"position-tally/feature/history"
	"position-tally/feature/report"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Positions builds provider positions. It is satisfied by *providers.Registry.
type Positions interface {
	NewPosition(label string, date time.Time, accounts []string) (*reconcile.Position, error)
}

// Request describes one reconciliation of a left provider against a right provider.
type Request struct {
	Left     string
	Right    string
	Date     time.Time
	Accounts []string
	Primary  reconcile.Identifier
	Fallback reconcile.Identifier
	Policy   string
	// Export writes the three relations to the report sink.
	Export bool
	// Store persists the run to the history store.
	Store bool
}

// Outcome is the result of one reconciliation together with what was done with it.
type Outcome struct {
	ID     string            `json:"id"`
	Date   string            `json:"date"`
	Result *reconcile.Result `json:"result"`
	Files  []string          `json:"files,omitempty"`
	Stored bool              `json:"stored"`
}

// Service runs reconciliations between configured providers.
type Service struct {
	positions Positions
	defaults  config.Reconcile
	sink      report.Sink
	store     *history.Store
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a new reconciliation service. sink and store may be nil,
// in which case export and persistence are skipped.
func NewService(positions Positions, defaults config.Reconcile, sink report.Sink, store *history.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		positions: positions,
		defaults:  defaults,
		sink:      sink,
		store:     store,
		logger:    logger,
		now:       time.Now,
	}
}

// Defaults returns a request for left and right on date filled from configuration.
func (s *Service) Defaults(left, right string, date time.Time) Request {
	return Request{
		Left:     left,
		Right:    right,
		Date:     date,
		Primary:  reconcile.Identifier(s.defaults.Primary),
		Fallback: reconcile.Identifier(s.defaults.Fallback),
		Policy:   s.defaults.DiffPolicy,
		Export:   s.sink != nil,
		Store:    s.defaults.Store && s.store != nil,
	}
}

// History returns the run store, or nil when persistence is disabled.
func (s *Service) History() *history.Store {
	return s.store
}

// Table loads the canonical positions of one provider.
func (s *Service) Table(ctx context.Context, label string, date time.Time, accounts []string) (*reconcile.Table, error) {
	pos, err := s.positions.NewPosition(label, date, accounts)
	if err != nil {
		return nil, err
	}
	return pos.Data(ctx)
}

// Run reconciles req.Left against req.Right.
func (s *Service) Run(ctx context.Context, req Request) (*Outcome, error) {
	outcomes, err := s.RunAll(ctx, req, req.Right)
	if err != nil {
		return nil, err
	}
	return outcomes[0], nil
}

// RunAll reconciles req.Left against every provider in rights. The left table is
// loaded once and reused for each counterparty. req.Right is ignored.
func (s *Service) RunAll(ctx context.Context, req Request, rights ...string) ([]*Outcome, error) {
	if len(rights) == 0 {
		return nil, fmt.Errorf("%w: no counterparty provider given", reconcile.ErrConfiguration)
	}
	primary, err := reconcile.ParseIdentifier(string(orDefault(req.Primary, reconcile.Description)))
	if err != nil {
		return nil, err
	}
	var opts []reconcile.Option
	if req.Fallback != "" {
		fallback, err := reconcile.ParseIdentifier(string(req.Fallback))
		if err != nil {
			return nil, err
		}
		opts = append(opts, reconcile.WithFallback(fallback))
	}
	policy, err := reconcile.PolicyByName(req.Policy)
	if err != nil {
		return nil, err
	}
	opts = append(opts, reconcile.WithPolicy(policy))

	left, err := s.positions.NewPosition(req.Left, req.Date, req.Accounts)
	if err != nil {
		return nil, err
	}
	others := make([]*reconcile.Position, len(rights))
	for i, label := range rights {
		others[i], err = s.positions.NewPosition(label, req.Date, req.Accounts)
		if err != nil {
			return nil, err
		}
	}

	if err := s.load(ctx, append([]*reconcile.Position{left}, others...)); err != nil {
		return nil, err
	}

	stamp := s.now()
	outcomes := make([]*Outcome, 0, len(others))
	for _, right := range others {
		res, err := left.ReconcileWith(ctx, right, primary, opts...)
		if err != nil {
			return nil, err
		}

		out := &Outcome{ID: uuid.NewString(), Date: req.Date.Format(time.DateOnly), Result: res}
		if req.Export && s.sink != nil {
			out.Files, err = report.Export(ctx, s.sink, res, req.Date, stamp)
			if err != nil {
				return nil, fmt.Errorf("failed to export %s/%s: %w", res.Left, res.Right, err)
			}
		}
		if req.Store && s.store != nil {
			run := history.NewRun(out.ID, history.Params{
				Date:     req.Date,
				Primary:  primary,
				Fallback: req.Fallback,
				Policy:   policy.Name,
			}, res)
			if err := s.store.Save(ctx, run); err != nil {
				return nil, err
			}
			out.Stored = true
		}

		s.logger.Info("Reconciliation completed",
			zap.String("run_id", out.ID),
			zap.String("left", res.Left),
			zap.String("right", res.Right),
			zap.String("date", out.Date),
			zap.Int("matched", res.Summary.Matched),
			zap.Int("diff", res.Summary.Diff),
			zap.Int("left_only", res.Summary.LeftOnly),
			zap.Int("right_only", res.Summary.RightOnly),
			zap.Int("unidentified_left", res.Summary.UnidentifiedLeft),
			zap.Int("unidentified_right", res.Summary.UnidentifiedRight),
		)
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}

// load computes the tables of every position concurrently.
func (s *Service) load(ctx context.Context, positions []*reconcile.Position) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range positions {
		g.Go(func() error {
			start := time.Now()
			t, err := p.Data(gctx)
			if err != nil {
				return err
			}
			s.logger.Debug("Positions loaded",
				zap.String("provider", p.Provider()),
				zap.Int("rows", t.Len()),
				zap.Duration("duration", time.Since(start)),
			)
			return nil
		})
	}
	return g.Wait()
}

func orDefault(id, def reconcile.Identifier) reconcile.Identifier {
	if id == "" {
		return def
	}
	return id
}
