package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/historyviewer"
	"github.com/aretw0/historyviewer/internal/config"
	"github.com/aretw0/historyviewer/internal/metrics"
	"github.com/aretw0/historyviewer/pkg/adapters/file"
	"github.com/aretw0/historyviewer/pkg/adapters/memory"
	"github.com/aretw0/historyviewer/pkg/adapters/redis"
	"github.com/aretw0/historyviewer/pkg/ports"
	"github.com/aretw0/historyviewer/pkg/transform"
	"github.com/prometheus/client_golang/prometheus"
)

// Services holds everything a long-running command needs.
type Services struct {
	Viewer   *historyviewer.Viewer
	Store    ports.SelectionStore
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	closers []func() error
}

// Close releases backend connections.
func (s *Services) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NewStore builds the selection store selected by cfg.
func NewStore(cfg config.StoreConfig) (ports.SelectionStore, ports.DistributedLocker, func() error, error) {
	switch cfg.Backend {
	case config.StoreMemory, "":
		return memory.NewStore(), nil, nil, nil
	case config.StoreFile:
		return file.New(cfg.Dir), nil, nil, nil
	case config.StoreRedis:
		var opts []redis.Option
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		if cfg.Redis.TTL.Duration > 0 {
			opts = append(opts, redis.WithTTL(cfg.Redis.TTL.Duration))
		}
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		var locker ports.DistributedLocker
		if cfg.Redis.Lock {
			locker = redis.NewLocker(store.Client(), cfg.Redis.Prefix)
		}
		return store, locker, store.Close, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// Build wires a Viewer from configuration: selection store, version source,
// diff options, form layouts and metrics.
func Build(cfg config.Config, logger *slog.Logger, debug bool) (*Services, error) {
	store, locker, closeStore, err := NewStore(cfg.Store)
	if err != nil {
		return nil, err
	}

	svc := &Services{
		Store:    store,
		Registry: prometheus.NewRegistry(),
	}
	if closeStore != nil {
		svc.closers = append(svc.closers, closeStore)
	}
	svc.Metrics = metrics.New(svc.Registry)

	hooks := svc.Metrics.Hooks()
	if debug {
		hooks = hooks.Merge(createDebugHooks(logger))
	}

	opts := []historyviewer.Option{
		historyviewer.WithStore(store),
		historyviewer.WithLogger(logger),
		historyviewer.WithHooks(hooks),
		historyviewer.WithProtectedFields(cfg.Diff.ProtectedFields...),
		historyviewer.WithForms(cfg.Forms),
		historyviewer.WithSchemaBases(cfg.Schema.DetailBase, cfg.Schema.CompareBase),
	}
	if locker != nil {
		opts = append(opts, historyviewer.WithLocker(locker))
	}
	if cfg.Diff.SanitizeEnabled() {
		opts = append(opts, historyviewer.WithSanitizer(transform.NewSanitizer()))
	}
	if cfg.Diff.Escape {
		opts = append(opts, historyviewer.WithEscape())
	}

	viewer, err := historyviewer.New(cfg.VersionsDir, opts...)
	if err != nil {
		svc.Close()
		return nil, fmt.Errorf("error initializing viewer: %w", err)
	}
	svc.Viewer = viewer
	return svc, nil
}
