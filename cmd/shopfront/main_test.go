package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/five82/shopfront/internal/catalogapi"
)

// execute runs the root command and returns what it printed to stdout.
func execute(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append(args, "--config", configPath))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeConfig(t *testing.T, extra ...string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	body := "backend = \"files\"\n" +
		"data_dir = \"" + filepath.ToSlash(filepath.Join(dir, "data")) + "\"\n" +
		"log_file = \"" + filepath.ToSlash(filepath.Join(dir, "shopfront.log")) + "\"\n" +
		strings.Join(extra, "")
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestProfileSetAndShow(t *testing.T) {
	cfg := writeConfig(t)

	out, err := execute(t, cfg, "profile", "set", "--name", "Ann Lee", "--email", "ann@example.com", "--notifications")
	if err != nil {
		t.Fatalf("profile set returned error: %v", err)
	}
	if !strings.Contains(out, "Data saved") {
		t.Fatalf("profile set output = %q, want the saved notice", out)
	}

	out, err = execute(t, cfg, "profile", "show")
	if err != nil {
		t.Fatalf("profile show returned error: %v", err)
	}
	for _, want := range []string{"Ann Lee", "ann@example.com", "Notifications: true"} {
		if !strings.Contains(out, want) {
			t.Fatalf("profile show output = %q, want %q", out, want)
		}
	}
}

func TestProfileSet_RejectsInvalidEmail(t *testing.T) {
	cfg := writeConfig(t)

	_, err := execute(t, cfg, "profile", "set", "--name", "Ann", "--email", "not-an-email")
	if err == nil {
		t.Fatal("profile set returned nil error, want validation failure")
	}
	if !strings.Contains(strings.ToLower(err.Error()), "e-mail") {
		t.Fatalf("error = %q, want it to name the email field", err)
	}

	out, err := execute(t, cfg, "profile", "show")
	if err != nil {
		t.Fatalf("profile show returned error: %v", err)
	}
	if !strings.Contains(out, "No profile saved") {
		t.Fatalf("profile show output = %q, want nothing saved", out)
	}
}

func TestCartAndOrders_EmptyStates(t *testing.T) {
	cfg := writeConfig(t)

	out, err := execute(t, cfg, "cart", "list")
	if err != nil {
		t.Fatalf("cart list returned error: %v", err)
	}
	if strings.TrimSpace(out) != "Cart is empty" {
		t.Fatalf("cart list output = %q, want empty state", out)
	}

	if _, err := execute(t, cfg, "cart", "remove", "7"); err == nil {
		t.Fatal("cart remove of a missing item returned nil error")
	}

	out, err = execute(t, cfg, "orders", "list")
	if err != nil {
		t.Fatalf("orders list returned error: %v", err)
	}
	if strings.TrimSpace(out) == "" {
		t.Fatal("orders list printed nothing, want the empty message")
	}
}

func TestVersionShort(t *testing.T) {
	out, err := execute(t, writeConfig(t), "version", "--short")
	if err != nil {
		t.Fatalf("version returned error: %v", err)
	}
	if strings.TrimSpace(out) != version {
		t.Fatalf("version output = %q, want %q", out, version)
	}
}

func TestCartAdd_FromCatalogServer(t *testing.T) {
	srv := httptest.NewServer(catalogapi.NewRouter(catalogapi.ServerOptions{
		Catalog: []byte(`{"products":[{"id":1,"title":"Oak Table","price":120,"type":"Furniture"},{"id":2,"title":"Table Lamp","price":45.5,"type":"Lighting"}]}`),
	}))
	defer srv.Close()
	cfg := writeConfig(t,
		"catalog_url = \""+srv.URL+"/data.json\"\n",
		"catalog_latency_ms = 0\n",
	)

	out, err := execute(t, cfg, "cart", "add", "2")
	if err != nil {
		t.Fatalf("cart add returned error: %v", err)
	}
	if !strings.Contains(out, "Added Table Lamp") {
		t.Fatalf("cart add output = %q, want the added title", out)
	}

	if _, err := execute(t, cfg, "cart", "add", "9"); err == nil {
		t.Fatal("cart add of an unknown product returned nil error")
	}

	out, err = execute(t, cfg, "cart", "list")
	if err != nil {
		t.Fatalf("cart list returned error: %v", err)
	}
	for _, want := range []string{"Table Lamp", "$45.5"} {
		if !strings.Contains(out, want) {
			t.Fatalf("cart list output = %q, want %q", out, want)
		}
	}
	if strings.Contains(out, "Oak Table") {
		t.Fatalf("cart list output = %q, want only the added product", out)
	}
}
