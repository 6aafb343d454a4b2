package app

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/five82/shopfront/internal/bus"
	"github.com/five82/shopfront/internal/shop"
)

// writeConfig points a config file at a temp data dir using the file
// backend, so two Envs can share it like two processes would.
func writeConfig(t *testing.T, extra string) (path, dataDir string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	dataDir = filepath.Join(dir, "data")
	body := "backend = \"files\"\n" +
		"data_dir = \"" + filepath.ToSlash(dataDir) + "\"\n" +
		"log_file = \"" + filepath.ToSlash(filepath.Join(dir, "state", "shopfront.log")) + "\"\n" +
		extra
	path = filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path, dataDir
}

func openEnv(t *testing.T, opts Options) *Env {
	t.Helper()
	if opts.LogTo == nil {
		opts.LogTo = io.Discard
	}
	env, err := Open(context.Background(), opts)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = env.Close() })
	return env
}

func TestOpen_SharedDataDirPropagatesThroughBridge(t *testing.T) {
	path, _ := writeConfig(t, "")
	first := openEnv(t, Options{ConfigPath: path})
	second := openEnv(t, Options{ConfigPath: path})

	var changes []shop.CartChange
	bus.Subscribe(second.Bus, shop.CartChanged, func(c shop.CartChange) { changes = append(changes, c) })

	if err := first.Cart.Add(shop.Product{ID: "3", Title: "Oak Table", Price: 12000}); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if len(changes) != 0 {
		t.Fatalf("second process saw %d changes before polling, want 0", len(changes))
	}

	n, err := second.Bridge.Poll()
	if err != nil {
		t.Fatalf("Poll returned error: %v", err)
	}
	if n != 1 || len(changes) != 1 {
		t.Fatalf("republished = %d, events = %d, want 1 and 1", n, len(changes))
	}
	if changes[0].Count != 1 || second.Cart.Count() != 1 {
		t.Fatalf("second cart count = %d (event %d), want 1", second.Cart.Count(), changes[0].Count)
	}

	// The writer's own bridge ignores its write.
	if n, err := first.Bridge.Poll(); err != nil || n != 0 {
		t.Fatalf("first Poll = %d, %v, want 0, nil", n, err)
	}
}

func TestOpen_RestoresView(t *testing.T) {
	path, _ := writeConfig(t, "")
	env := openEnv(t, Options{ConfigPath: path, View: "search=lamp&filters=lighting"})

	q := env.Catalog.Query()
	if q.Search != "lamp" {
		t.Fatalf("Search = %q, want %q", q.Search, "lamp")
	}
	if len(q.Filters) != 1 || q.Filters[0] != "lighting" {
		t.Fatalf("Filters = %v, want [lighting]", q.Filters)
	}
	if env.Catalog.Input() != "lamp" {
		t.Fatalf("Input = %q, want %q", env.Catalog.Input(), "lamp")
	}
}

func TestOpen_InvalidConfigFails(t *testing.T) {
	path, _ := writeConfig(t, "checkout_delay_ms = 0\n")

	_, err := Open(context.Background(), Options{ConfigPath: path, LogTo: io.Discard})
	if err == nil {
		t.Fatal("Open returned nil error, want invalid config")
	}
	if !strings.Contains(err.Error(), "load config") {
		t.Fatalf("error = %q, want it to mention load config", err)
	}
}

func TestOpen_LogLevelOverride(t *testing.T) {
	path, _ := writeConfig(t, "")
	var buf bytes.Buffer
	env := openEnv(t, Options{ConfigPath: path, LogTo: &buf, LogLevel: "debug"})

	if !strings.Contains(buf.String(), "environment ready") {
		t.Fatalf("debug log missing, got %q", buf.String())
	}
	if env.Config.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", env.Config.LogLevel)
	}
}

func TestOpen_WritesLogFileWithoutWriter(t *testing.T) {
	path, _ := writeConfig(t, "log_level = \"debug\"\n")
	env, err := Open(context.Background(), Options{ConfigPath: path})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := env.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	data, err := os.ReadFile(env.Config.LogFile)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "environment ready") {
		t.Fatalf("log file = %q, want the startup line", data)
	}
}

func TestRun_UnknownRouteFailsBeforeOpen(t *testing.T) {
	err := Run(context.Background(), Options{ConfigPath: filepath.Join(t.TempDir(), "none.toml"), Route: "wishlist"})
	if err == nil {
		t.Fatal("Run returned nil error, want unknown route")
	}
}

func TestMetricsRouter(t *testing.T) {
	path, _ := writeConfig(t, "")
	env := openEnv(t, Options{ConfigPath: path})
	if err := env.Cart.Add(shop.Product{ID: "1", Title: "Lamp", Price: 10}); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	srv := httptest.NewServer(metricsRouter(env.Metrics))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/healthz status = %d, want 200", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `shopfront_cart_mutations_total{action="add",result="ok"} 1`) {
		t.Fatalf("/metrics missing cart counter:\n%s", body)
	}
}
