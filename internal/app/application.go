package app

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/raysh454/favicond/internal/batch"
	"github.com/raysh454/favicond/internal/cache"
	"github.com/raysh454/favicond/internal/favicon"
	"github.com/raysh454/favicond/internal/logging"
	"github.com/raysh454/favicond/internal/metrics"
	"github.com/raysh454/favicond/internal/store"
	"github.com/raysh454/favicond/internal/webclient"
)

// Application is the runtime state container. It owns the shared transport
// and every component built on it. Pass Application into surfaces (server,
// CLI) rather than using package-level variables.
type Application struct {
	Config *Config
	Logger logging.Logger

	WebClient webclient.WebClient
	Resolver  *favicon.Resolver

	// Source is what batches resolve through: Resolver, wrapped by Cache
	// when caching is enabled.
	Source favicon.Source
	Cache  *cache.Cache

	// Store is nil for the none backend.
	Store store.Persistent

	Batch   *batch.Coordinator
	Metrics *metrics.Metrics
}

type options struct {
	webClient webclient.WebClient
	registry  *prometheus.Registry
}

type Option func(*options)

// WithWebClient injects a transport instead of building one from
// Config.WebClient. The Application still closes it.
func WithWebClient(wc webclient.WebClient) Option {
	return func(o *options) { o.webClient = wc }
}

// WithMetricsRegistry registers metrics on reg instead of a fresh registry.
func WithMetricsRegistry(reg *prometheus.Registry) Option {
	return func(o *options) { o.registry = reg }
}

// NewApplication wires the components described by cfg.
func NewApplication(cfg *Config, logger logging.Logger, opts ...Option) (*Application, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &Application{Config: cfg, Logger: logger}

	wc := o.webClient
	if wc == nil {
		webclient.RegisterBuiltins()
		var err error
		wc, err = webclient.New(cfg.WebClient, logger)
		if err != nil {
			return nil, fmt.Errorf("create webclient: %w", err)
		}
	}
	a.WebClient = wc

	a.Metrics = metrics.New(o.registry)
	a.Resolver = favicon.NewResolver(cfg.Favicon, wc, logger)
	a.Source = a.Resolver

	if cfg.Cache.Enabled {
		c, err := cache.New(a.Resolver, cfg.Cache, logger, cache.WithObserver(a.Metrics))
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("create cache: %w", err)
		}
		a.Cache = c
		a.Source = c
	}

	st, err := store.Open(cfg.Store, logger)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	a.Store = st

	batchOpts := []batch.Option{batch.WithRecorder(a.Metrics), batch.WithLogger(logger)}
	if st != nil {
		batchOpts = append(batchOpts, batch.WithStore(st))
	}
	a.Batch = batch.New(a.Source, cfg.Batch, batchOpts...)

	logger.Info("application ready",
		logging.Field{Key: "webclient", Value: string(cfg.WebClient.Client)},
		logging.Field{Key: "cache", Value: cfg.Cache.Enabled},
		logging.Field{Key: "store", Value: string(cfg.Store.Backend)},
		logging.Field{Key: "max_concurrency", Value: cfg.Batch.MaxConcurrency})

	return a, nil
}

// Close releases the transport, cache and store.
func (a *Application) Close() error {
	if a == nil {
		return errors.New("application is nil")
	}
	var errs []error
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	if a.Cache != nil {
		errs = append(errs, a.Cache.Close())
	}
	if a.WebClient != nil {
		errs = append(errs, a.WebClient.Close())
	}
	a.Logger.Info("application closed")
	return errors.Join(errs...)
}
