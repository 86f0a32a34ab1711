package cmd

import (
	"context"
	"fmt"

	"position-tally/core/config"
	"position-tally/core/database"
	"position-tally/core/storage"
	"position-tally/feature/history"
	"position-tally/feature/providers"
	"position-tally/feature/reconciliation"
	"position-tally/feature/report"

	"go.uber.org/zap"
)

// newSink builds the report sink from configuration: an s3 upload when
// reconcile.output_connection is set, the local output directory otherwise.
func newSink(ctx context.Context, cfg *config.Config) (report.Sink, error) {
	name := cfg.Reconcile.OutputConnection
	if name == "" {
		return report.DirSink{Dir: cfg.Reconcile.OutputDir}, nil
	}

	cc, ok := cfg.Connection[name]
	if !ok {
		return nil, fmt.Errorf("unknown output connection %q", name)
	}
	if cc.Type != "" && cc.Type != storage.TypeS3 {
		return nil, fmt.Errorf("output connection %q must be of type %s", name, storage.TypeS3)
	}

	client, err := storage.NewClient(cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	sink := report.NewObjectSink(client, cc.Bucket, cfg.Reconcile.OutputDir)
	if err := sink.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return sink, nil
}

// newStore connects the run history database and migrates its schema.
func newStore(ctx context.Context, cfg *config.Config) (*history.Store, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}
	store := history.NewStore(db)
	if err := store.Migrate(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// newRegistry resolves configured provider labels to adapters.
func newRegistry(cfg *config.Config, logg *zap.Logger) *providers.Registry {
	return providers.NewRegistry(cfg, providers.Deps{Logger: logg})
}

// newService wires the provider registry, report sink and optional history store.
func newService(ctx context.Context, cfg *config.Config, registry *providers.Registry, logg *zap.Logger, store *history.Store) (*reconciliation.Service, error) {
	sink, err := newSink(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return reconciliation.NewService(registry, cfg.Reconcile, sink, store, logg), nil
}
