// Package app provides the orchestration layer for the shopfront application.
//
// # Overview
//
// This package wires together configuration, logging, tracing, the key-value
// store, the domain services and the UI. It is the composition root: every
// dependency is created here and handed to the packages that use it.
//
// # Architecture
//
// Open builds an Env in a fixed order:
//
//  1. Load ~/.config/shopfront/config.toml and SHOPFRONT_* overrides
//  2. Open the log file (the TUI owns the terminal) at the configured level
//  3. Set up OTLP tracing when otel_endpoint is set
//  4. Open the storage backend (sqlite, files or memory) behind kv.Store
//  5. Create the bus, the realtime scheduler and the services
//  6. Create the sync bridge that republishes writes from other processes
//
// Run then starts the optional metrics server and the TUI. The bridge starts
// from the TUI's OnStart hook so that its callbacks are posted to the
// Bubble Tea loop.
//
// # Components
//
//   - app.go: Options, Env, Open/Close and Run
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> Open()            Config, logger, tracer, store, services
//	       ├─────> catalogapi.Serve() /metrics and /healthz (optional)
//	       └─────> ui.Run()          Start TUI (blocks)
//	                  └─> OnStart: Bridge.Start()
//
//	Sync bridge loop:
//	┌─────────────────────────────────────────┐
//	│ Bridge.Poll() on the scheduler          │
//	│  ├─> Store.Revision(key) per watch      │
//	│  └─> republish on the bus if it moved   │
//	│      └─> services and UI react          │
//	└─────────────────────────────────────────┘
//
// # Error Handling
//
// Fatal errors (returned from Open or Run):
//   - Invalid configuration file or SHOPFRONT_* variable
//   - Unknown start route
//   - Storage backend or log file cannot be opened
//
// Recoverable errors (logged, the process continues):
//   - Tracing exporter setup failure
//   - Metrics server failure
//   - Storage read/write failures after startup (counted and reported)
//
// # Usage Example
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//
//	if err := app.Run(ctx, app.Options{View: "search=lamp"}); err != nil {
//		log.Fatalf("shopfront failed: %v", err)
//	}
//
// CLI subcommands use Open directly with LogTo set to stderr and never start
// the TUI.
package app
