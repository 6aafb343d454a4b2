package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/five82/shopfront/internal/bridge"
	"github.com/five82/shopfront/internal/bus"
	"github.com/five82/shopfront/internal/cart"
	"github.com/five82/shopfront/internal/catalog"
	"github.com/five82/shopfront/internal/catalogapi"
	"github.com/five82/shopfront/internal/checkout"
	"github.com/five82/shopfront/internal/config"
	"github.com/five82/shopfront/internal/kv"
	"github.com/five82/shopfront/internal/metrics"
	"github.com/five82/shopfront/internal/orders"
	"github.com/five82/shopfront/internal/prefs"
	"github.com/five82/shopfront/internal/profile"
	"github.com/five82/shopfront/internal/sched"
	"github.com/five82/shopfront/internal/telemetry"
	"github.com/five82/shopfront/internal/ui"
)

const serviceName = "shopfront"

// Options configure a shopfront process.
type Options struct {
	ConfigPath string
	// View restores the catalog query, e.g. "search=lamp&filters=lighting".
	View string
	// Route selects the first TUI view.
	Route string
	// LogTo replaces the configured log file. CLI commands log to stderr.
	LogTo io.Writer
	// LogLevel overrides the configured level when set.
	LogLevel string
}

// Env is one process's set of services, all sharing one store, bus and
// scheduler.
type Env struct {
	Config   config.Config
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Store    *kv.Store
	Bus      *bus.Bus
	Clock    *sched.Realtime
	Cart     *cart.Service
	Orders   *orders.Service
	Profile  *profile.Service
	Prefs    *prefs.Service
	Catalog  *catalog.Engine
	Checkout *checkout.Workflow
	Bridge   *bridge.Bridge

	closers []func() error
}

// Open loads configuration and wires every service. Close releases the
// store, the log file and the tracer.
func Open(ctx context.Context, opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	env := &Env{
		Config:  cfg,
		Metrics: metrics.New(),
		Bus:     bus.New(),
		Clock:   sched.NewRealtime(nil),
	}

	logger, closeLog, err := newLogger(cfg, opts.LogTo)
	if err != nil {
		return nil, err
	}
	env.Logger = logger
	env.closers = append(env.closers, closeLog)

	shutdown, err := telemetry.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		// Tracing is optional; run without it.
		logger.Warn("tracing disabled", "endpoint", cfg.OTelEndpoint, "error", err)
	}
	env.closers = append(env.closers, func() error {
		flushCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return shutdown(flushCtx)
	})

	backend, err := kv.Open(cfg.Backend, cfg.DataDir)
	if err != nil {
		_ = env.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	env.Store = kv.NewStore(backend,
		kv.WithLogger(logger),
		kv.WithMaxValueBytes(cfg.StorageQuota),
		kv.WithErrorHook(func(e *kv.StorageError) {
			env.Metrics.StorageError(e.Op, e.Key)
		}),
	)
	env.closers = append(env.closers, env.Store.Close)

	client, err := catalogapi.NewClient(cfg.CatalogURL)
	if err != nil {
		_ = env.Close()
		return nil, fmt.Errorf("init catalog client: %w", err)
	}

	env.Cart = cart.NewService(env.Store, env.Bus, logger, env.Metrics)
	env.Orders = orders.NewService(env.Store, env.Bus, logger)
	env.Profile = profile.NewService(env.Store, env.Bus, logger)
	env.Prefs = prefs.NewService(env.Store, env.Bus, logger)
	env.Catalog = catalog.New(catalog.Options{
		Store:     env.Store,
		Bus:       env.Bus,
		Scheduler: env.Clock,
		Fetcher:   client,
		Orders:    env.Orders,
		Debounce:  cfg.Debounce,
		Latency:   cfg.CatalogLatency,
		Logger:    logger,
		Metrics:   env.Metrics,
	})
	if opts.View != "" {
		env.Catalog.Restore(catalog.ParseQuery(opts.View))
	}
	env.Checkout = checkout.New(checkout.Deps{
		Cart:      env.Cart,
		Orders:    env.Orders,
		Profile:   env.Profile,
		Scheduler: env.Clock,
		Delay:     cfg.CheckoutDelay,
		Logger:    logger,
		Metrics:   env.Metrics,
	})
	env.Bridge = bridge.New(env.Store, env.Bus, env.Clock, bridge.Options{
		Interval:    cfg.SyncInterval,
		Logger:      logger,
		OnRepublish: env.Metrics.Republished,
		OnError:     func(error) { env.Metrics.SyncError() },
	})

	logger.Debug("environment ready",
		"backend", cfg.Backend,
		"data_dir", cfg.DataDir,
		"catalog_url", client.URL(),
	)
	return env, nil
}

// Close stops the bridge and releases resources in reverse order.
func (e *Env) Close() error {
	if e.Bridge != nil {
		e.Bridge.Stop()
	}
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}

// Run boots the shopfront TUI until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	route, err := ui.ParseRoute(opts.Route)
	if err != nil {
		return err
	}

	env, err := Open(ctx, opts)
	if err != nil {
		return err
	}
	defer env.Close()

	cfg := env.Config
	env.Logger.Info("shopfront starting",
		"backend", cfg.Backend,
		"data_dir", cfg.DataDir,
		"route", route.String(),
	)

	if cfg.MetricsAddr != "" {
		go func() {
			if err := catalogapi.Serve(ctx, cfg.MetricsAddr, metricsRouter(env.Metrics)); err != nil {
				env.Logger.Error("metrics server stopped", "addr", cfg.MetricsAddr, "error", err)
			}
		}()
	}

	return ui.Run(ui.Options{
		Context:  ctx,
		Bus:      env.Bus,
		Clock:    env.Clock,
		Catalog:  env.Catalog,
		Cart:     env.Cart,
		Checkout: env.Checkout,
		Profile:  env.Profile,
		Orders:   env.Orders,
		Prefs:    env.Prefs,
		Feedback: cfg.Feedback,
		LogFile:  cfg.LogFile,
		Route:    route,
		Logger:   env.Logger,
		OnStart: func() {
			env.Bridge.Start(ctx)
		},
	})
}

// metricsRouter serves the process counters next to the TUI.
func metricsRouter(m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())
	return r
}

// newLogger builds the process logger. Without an explicit writer it appends
// to the configured log file, because the TUI owns the terminal.
func newLogger(cfg config.Config, w io.Writer) (*slog.Logger, func() error, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, nil, err
	}
	closer := func() error { return nil }
	if w == nil {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = file
		closer = file.Close
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler), closer, nil
}
