package providers

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"position-tally/core/config"
	"position-tally/core/openfigi"
	"position-tally/core/reconcile"
	"position-tally/core/storage"
	"position-tally/feature/enfusion"
	"position-tally/feature/formidium"
	"position-tally/feature/ib"
	"position-tally/feature/rjo"

	"go.uber.org/zap"
)

// Deps are the collaborators shared by every adapter a Registry builds.
type Deps struct {
	Logger *zap.Logger
	// Mapper resolves IB global ids. Nil builds an OpenFIGI client from configuration.
	Mapper ib.Mapper
	// NewSource opens a connection. Nil uses storage.NewSource.
	NewSource func(storage.Config) (storage.Source, error)
}

// Factory builds an adapter reading path from source.
type Factory func(source storage.Source, path string, r *Registry) reconcile.Adapter

// Registry resolves provider labels to adapters wired from configuration.
// Connections are opened once per registry and shared by the providers that name them.
type Registry struct {
	cfg       *config.Config
	deps      Deps
	factories map[string]Factory

	mu      sync.Mutex
	sources map[string]storage.Source
	cached  map[string]storage.Source
	mapper  ib.Mapper
}

// NewRegistry creates a registry with the RJO, IB, Enfusion and Formidium adapters registered.
func NewRegistry(cfg *config.Config, deps Deps) *Registry {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.NewSource == nil {
		deps.NewSource = storage.NewSource
	}
	r := &Registry{
		cfg:       cfg,
		deps:      deps,
		factories: make(map[string]Factory),
		sources:   make(map[string]storage.Source),
		cached:    make(map[string]storage.Source),
		mapper:    deps.Mapper,
	}

	r.Register(rjo.Name, func(src storage.Source, path string, r *Registry) reconcile.Adapter {
		return rjo.NewAdapter(src, path, r.logger(rjo.Name))
	})
	r.Register(ib.Name, func(src storage.Source, path string, r *Registry) reconcile.Adapter {
		return ib.NewAdapter(src, r.Mapper(), path, r.logger(ib.Name))
	})
	r.Register(enfusion.Name, func(src storage.Source, path string, r *Registry) reconcile.Adapter {
		return enfusion.NewAdapter(src, path, r.logger(enfusion.Name))
	})
	r.Register(formidium.Name, func(src storage.Source, path string, r *Registry) reconcile.Adapter {
		return formidium.NewAdapter(src, path, r.logger(formidium.Name))
	})

	return r
}

// Register adds or replaces the factory of an adapter name.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// Adapters returns the registered adapter names in order.
func (r *Registry) Adapters() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Labels returns the configured provider labels in order.
func (r *Registry) Labels() []string {
	labels := make([]string, 0, len(r.cfg.Provider))
	for label := range r.cfg.Provider {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Mapper returns the shared identifier mapper, creating the OpenFIGI client on first use.
func (r *Registry) Mapper() ib.Mapper {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mapper == nil {
		r.mapper = openfigi.NewClient(r.cfg.OpenFIGI, r.logger("openfigi"))
	}
	return r.mapper
}

func (r *Registry) logger(name string) *zap.Logger {
	return r.deps.Logger.With(zap.String("provider", name))
}

// Adapter builds the adapter configured for label.
func (r *Registry) Adapter(label string) (reconcile.Adapter, error) {
	pc, ok := r.cfg.Provider[label]
	if !ok {
		if _, registered := r.factories[label]; !registered {
			return nil, fmt.Errorf("%w: %q", reconcile.ErrUnknownProvider, label)
		}
		return nil, fmt.Errorf("%w: missing [provider.%s] section", reconcile.ErrConfiguration, label)
	}

	name := pc.Adapter
	if name == "" {
		name = label
	}
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: provider %q uses adapter %q", reconcile.ErrUnknownProvider, label, name)
	}

	src, err := r.source(pc.Connection, !pc.DisableCache)
	if err != nil {
		return nil, fmt.Errorf("provider %q: %w", label, err)
	}

	return factory(src, pc.Path, r), nil
}

// NewPosition builds a position for label. When accounts is empty the configured
// account list of the provider applies.
func (r *Registry) NewPosition(label string, date time.Time, accounts []string) (*reconcile.Position, error) {
	adapter, err := r.Adapter(label)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		accounts = r.cfg.Provider[label].Accounts
	}
	return reconcile.NewPosition(adapter, date, label, accounts), nil
}

// source returns the shared source of a named connection.
func (r *Registry) source(name string, cached bool) (storage.Source, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: no connection configured", reconcile.ErrConfiguration)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	src, ok := r.sources[name]
	if !ok {
		cc, found := r.cfg.Connection[name]
		if !found {
			return nil, fmt.Errorf("%w: unknown connection %q", reconcile.ErrConfiguration, name)
		}
		var err error
		src, err = r.deps.NewSource(cc)
		if err != nil {
			return nil, fmt.Errorf("%w: connection %q: %v", reconcile.ErrConfiguration, name, err)
		}
		r.sources[name] = src
	}
	if !cached {
		return src, nil
	}

	c, ok := r.cached[name]
	if !ok {
		c = storage.NewCachedSource(src)
		r.cached[name] = c
	}
	return c, nil
}

// NewPosition resolves label against cfg and builds its position.
// Use a Registry directly to share connections across several positions.
func NewPosition(label string, cfg *config.Config, date time.Time, accounts []string, deps Deps) (*reconcile.Position, error) {
	return NewRegistry(cfg, deps).NewPosition(label, date, accounts)
}
