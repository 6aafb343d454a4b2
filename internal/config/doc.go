// Package config loads shopfront configuration from a TOML file and the
// environment.
//
// # Overview
//
// Every shopfront process (the TUI and the one-shot CLI commands) loads the
// same configuration so that they open the same store. The Config struct is
// resolved once at startup and passed by value.
//
// # Configuration Discovery
//
// Load follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/shopfront/config.toml (default)
//  3. If the file doesn't exist, start from Defaults
//  4. Apply SHOPFRONT_* environment variables on top
//  5. Validate, then expand data_dir and log_file
//
// # Default Values
//
//   - Config file: ~/.config/shopfront/config.toml
//   - Data directory: ~/.local/share/shopfront
//   - Backend: sqlite (<data_dir>/shopfront.db)
//   - Catalog URL: http://127.0.0.1:8787/data.json
//   - Catalog latency: 1500ms
//   - Checkout delay: 1500ms
//   - Suggestion debounce: 1500ms
//   - Add-to-cart feedback: 2000ms
//   - Sync interval: 500ms
//   - Storage quota: 5 MiB per value
//   - Log file: ~/.local/state/shopfront/shopfront.log
//
// # TOML Format
//
//	data_dir = "~/.local/share/shopfront"
//	backend = "sqlite"            # sqlite, files or memory
//	catalog_url = "127.0.0.1:8787"
//	catalog_latency_ms = 1500     # 0 fetches immediately
//	checkout_delay_ms = 1500
//	debounce_ms = 1500
//	feedback_ms = 2000
//	sync_interval_ms = 500
//	storage_quota_bytes = 5242880
//	log_file = "~/.local/state/shopfront/shopfront.log"
//	log_level = "info"
//	metrics_addr = "127.0.0.1:9464"   # empty disables /metrics
//	otel_endpoint = ""                # OTLP/HTTP URL, empty disables tracing
//
// Every field is optional. Empty strings keep the default; numeric keys that
// are present override it, including an explicit 0 for catalog_latency_ms.
//
// # Environment
//
// Each field has a SHOPFRONT_ variable with the upper-cased key, for example
// SHOPFRONT_BACKEND=memory or SHOPFRONT_DEBOUNCE_MS=300. Variables are parsed
// with caarlos0/env and win over the file.
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - TOML parsing errors
//   - Malformed numeric environment variables
//   - Unknown backends, non-positive delays, negative latency, bad log levels
//
// Missing config files are NOT an error. shopfront works out of the box.
package config
