package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/shopfront/internal/kv"
)

// Config is the resolved shopfront configuration.
type Config struct {
	DataDir        string
	Backend        string
	CatalogURL     string
	CatalogLatency time.Duration
	CheckoutDelay  time.Duration
	Debounce       time.Duration
	Feedback       time.Duration
	SyncInterval   time.Duration
	StorageQuota   int
	LogFile        string
	LogLevel       string
	MetricsAddr    string
	OTelEndpoint   string
}

const (
	defaultConfigPath   = "~/.config/shopfront/config.toml"
	defaultDataDir      = "~/.local/share/shopfront"
	defaultLogFile      = "~/.local/state/shopfront/shopfront.log"
	defaultBackend      = kv.KindSQLite
	defaultCatalogURL   = "http://127.0.0.1:8787/data.json"
	defaultLogLevel     = "info"
	defaultLatencyMS    = 1500
	defaultCheckoutMS   = 1500
	defaultDebounceMS   = 1500
	defaultFeedbackMS   = 2000
	defaultSyncMS       = 500
	defaultStorageQuota = 5 << 20
)

// fileConfig mirrors config.toml. Pointers tell an explicit zero from an
// absent key.
type fileConfig struct {
	DataDir           string `toml:"data_dir"`
	Backend           string `toml:"backend"`
	CatalogURL        string `toml:"catalog_url"`
	CatalogLatencyMS  *int   `toml:"catalog_latency_ms"`
	CheckoutDelayMS   *int   `toml:"checkout_delay_ms"`
	DebounceMS        *int   `toml:"debounce_ms"`
	FeedbackMS        *int   `toml:"feedback_ms"`
	SyncIntervalMS    *int   `toml:"sync_interval_ms"`
	StorageQuotaBytes *int   `toml:"storage_quota_bytes"`
	LogFile           string `toml:"log_file"`
	LogLevel          string `toml:"log_level"`
	MetricsAddr       string `toml:"metrics_addr"`
	OTelEndpoint      string `toml:"otel_endpoint"`
}

// envConfig holds SHOPFRONT_* overrides. It is pre-filled from the file so
// unset variables keep the file's values.
type envConfig struct {
	DataDir           string `env:"SHOPFRONT_DATA_DIR"`
	Backend           string `env:"SHOPFRONT_BACKEND"`
	CatalogURL        string `env:"SHOPFRONT_CATALOG_URL"`
	CatalogLatencyMS  int    `env:"SHOPFRONT_CATALOG_LATENCY_MS"`
	CheckoutDelayMS   int    `env:"SHOPFRONT_CHECKOUT_DELAY_MS"`
	DebounceMS        int    `env:"SHOPFRONT_DEBOUNCE_MS"`
	FeedbackMS        int    `env:"SHOPFRONT_FEEDBACK_MS"`
	SyncIntervalMS    int    `env:"SHOPFRONT_SYNC_INTERVAL_MS"`
	StorageQuotaBytes int    `env:"SHOPFRONT_STORAGE_QUOTA_BYTES"`
	LogFile           string `env:"SHOPFRONT_LOG_FILE"`
	LogLevel          string `env:"SHOPFRONT_LOG_LEVEL"`
	MetricsAddr       string `env:"SHOPFRONT_METRICS_ADDR"`
	OTelEndpoint      string `env:"SHOPFRONT_OTEL_ENDPOINT"`
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return defaultConfigPath
}

// Defaults returns the configuration used when no file or variable says
// otherwise. Paths are not expanded.
func Defaults() Config {
	return Config{
		DataDir:        defaultDataDir,
		Backend:        defaultBackend,
		CatalogURL:     defaultCatalogURL,
		CatalogLatency: defaultLatencyMS * time.Millisecond,
		CheckoutDelay:  defaultCheckoutMS * time.Millisecond,
		Debounce:       defaultDebounceMS * time.Millisecond,
		Feedback:       defaultFeedbackMS * time.Millisecond,
		SyncInterval:   defaultSyncMS * time.Millisecond,
		StorageQuota:   defaultStorageQuota,
		LogFile:        defaultLogFile,
		LogLevel:       defaultLogLevel,
	}
}

// Load reads the config file, applies SHOPFRONT_* overrides and validates
// the result. A missing file is not an error.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Defaults()

	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		var raw fileConfig
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		cfg.applyFile(raw)
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	overrides := cfg.toEnv()
	if err := env.Parse(&overrides); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.applyEnv(overrides)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	cfg.DataDir = mustExpand(cfg.DataDir)
	cfg.LogFile = mustExpand(cfg.LogFile)
	return cfg, nil
}

// Validate checks backend names, durations and the storage quota.
func (c Config) Validate() error {
	switch c.Backend {
	case kv.KindSQLite, kv.KindFiles, kv.KindMemory:
	default:
		return fmt.Errorf("invalid backend %q (want %s, %s or %s)", c.Backend, kv.KindSQLite, kv.KindFiles, kv.KindMemory)
	}
	if c.CatalogLatency < 0 {
		return fmt.Errorf("invalid catalog_latency_ms: %d", c.CatalogLatency.Milliseconds())
	}
	for name, d := range map[string]time.Duration{
		"checkout_delay_ms": c.CheckoutDelay,
		"debounce_ms":       c.Debounce,
		"feedback_ms":       c.Feedback,
		"sync_interval_ms":  c.SyncInterval,
	} {
		if d <= 0 {
			return fmt.Errorf("invalid %s: %d", name, d.Milliseconds())
		}
	}
	if c.StorageQuota <= 0 {
		return fmt.Errorf("invalid storage_quota_bytes: %d", c.StorageQuota)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

func (c *Config) applyFile(raw fileConfig) {
	setString(&c.DataDir, raw.DataDir)
	setString(&c.Backend, strings.ToLower(raw.Backend))
	setString(&c.CatalogURL, raw.CatalogURL)
	setString(&c.LogFile, raw.LogFile)
	setString(&c.LogLevel, raw.LogLevel)
	setString(&c.MetricsAddr, raw.MetricsAddr)
	setString(&c.OTelEndpoint, raw.OTelEndpoint)
	setMillis(&c.CatalogLatency, raw.CatalogLatencyMS)
	setMillis(&c.CheckoutDelay, raw.CheckoutDelayMS)
	setMillis(&c.Debounce, raw.DebounceMS)
	setMillis(&c.Feedback, raw.FeedbackMS)
	setMillis(&c.SyncInterval, raw.SyncIntervalMS)
	if raw.StorageQuotaBytes != nil {
		c.StorageQuota = *raw.StorageQuotaBytes
	}
}

func (c Config) toEnv() envConfig {
	return envConfig{
		DataDir:           c.DataDir,
		Backend:           c.Backend,
		CatalogURL:        c.CatalogURL,
		CatalogLatencyMS:  int(c.CatalogLatency.Milliseconds()),
		CheckoutDelayMS:   int(c.CheckoutDelay.Milliseconds()),
		DebounceMS:        int(c.Debounce.Milliseconds()),
		FeedbackMS:        int(c.Feedback.Milliseconds()),
		SyncIntervalMS:    int(c.SyncInterval.Milliseconds()),
		StorageQuotaBytes: c.StorageQuota,
		LogFile:           c.LogFile,
		LogLevel:          c.LogLevel,
		MetricsAddr:       c.MetricsAddr,
		OTelEndpoint:      c.OTelEndpoint,
	}
}

func (c *Config) applyEnv(e envConfig) {
	setString(&c.DataDir, e.DataDir)
	setString(&c.Backend, strings.ToLower(e.Backend))
	setString(&c.CatalogURL, e.CatalogURL)
	setString(&c.LogFile, e.LogFile)
	setString(&c.LogLevel, e.LogLevel)
	c.MetricsAddr = strings.TrimSpace(e.MetricsAddr)
	c.OTelEndpoint = strings.TrimSpace(e.OTelEndpoint)
	c.CatalogLatency = time.Duration(e.CatalogLatencyMS) * time.Millisecond
	c.CheckoutDelay = time.Duration(e.CheckoutDelayMS) * time.Millisecond
	c.Debounce = time.Duration(e.DebounceMS) * time.Millisecond
	c.Feedback = time.Duration(e.FeedbackMS) * time.Millisecond
	c.SyncInterval = time.Duration(e.SyncIntervalMS) * time.Millisecond
	c.StorageQuota = e.StorageQuotaBytes
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setMillis(dst *time.Duration, v *int) {
	if v != nil {
		*dst = time.Duration(*v) * time.Millisecond
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
