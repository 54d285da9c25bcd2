package app_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/raysh454/favicond/internal/app"
	"github.com/raysh454/favicond/internal/store"
	"github.com/raysh454/favicond/internal/webclient"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := app.DefaultConfig()
	if cfg.Server.ListenAddr != ":3000" {
		t.Errorf("listen addr = %q, want :3000", cfg.Server.ListenAddr)
	}
	if cfg.WebClient.Timeout != 30*time.Second || cfg.WebClient.MaxRedirects != 15 {
		t.Errorf("transport defaults = %v / %d", cfg.WebClient.Timeout, cfg.WebClient.MaxRedirects)
	}
	if cfg.WebClient.Client != webclient.ClientNetHTTP {
		t.Errorf("client = %q", cfg.WebClient.Client)
	}
	if cfg.Favicon.MaxCandidates != 1 || cfg.Favicon.WellKnownPath != "/favicon.ico" {
		t.Errorf("favicon defaults = %+v", cfg.Favicon)
	}
	if cfg.Batch.MaxConcurrency != 0 {
		t.Errorf("max concurrency = %d, want unbounded", cfg.Batch.MaxConcurrency)
	}
	if cfg.Store.Backend != store.BackendNone {
		t.Errorf("store backend = %q", cfg.Store.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*app.Config)
		want   error
	}{
		{"empty addr", func(c *app.Config) { c.Server.ListenAddr = "" }, app.ErrInvalidListenAddr},
		{"addr without port", func(c *app.Config) { c.Server.ListenAddr = "localhost" }, app.ErrInvalidListenAddr},
		{"negative read timeout", func(c *app.Config) { c.Server.ReadTimeout = -1 }, app.ErrInvalidServerTimeout},
		{"negative batch size", func(c *app.Config) { c.Server.MaxBatchSize = -1 }, app.ErrInvalidBatchSize},
		{"zero fetch timeout", func(c *app.Config) { c.WebClient.Timeout = 0 }, app.ErrInvalidTimeout},
		{"negative redirects", func(c *app.Config) { c.WebClient.MaxRedirects = -1 }, app.ErrInvalidRedirects},
		{"negative body size", func(c *app.Config) { c.WebClient.MaxBodyBytes = -1 }, app.ErrInvalidMaxBodySize},
		{"negative candidates", func(c *app.Config) { c.Favicon.MaxCandidates = -1 }, app.ErrInvalidMaxCandidates},
		{"negative concurrency", func(c *app.Config) { c.Batch.MaxConcurrency = -2 }, app.ErrInvalidConcurrency},
		{"zero cache size", func(c *app.Config) { c.Cache.MaxBytes = 0 }, app.ErrInvalidCache},
		{"unknown backend", func(c *app.Config) { c.Store.Backend = "s3" }, app.ErrInvalidStoreBackend},
		{"dir without path", func(c *app.Config) { c.Store.Backend = store.BackendDir; c.Store.Dir = "" }, app.ErrMissingStorePath},
		{"sqlite without path", func(c *app.Config) { c.Store.Backend = store.BackendSQLite; c.Store.SQLitePath = "" }, app.ErrMissingStorePath},
	}
	for _, tt := range tests {
		cfg := app.DefaultConfig()
		tt.mutate(cfg)
		if err := cfg.Validate(); !errors.Is(err, tt.want) {
			t.Errorf("%s: err = %v, want %v", tt.name, err, tt.want)
		}
	}

	cfg := app.DefaultConfig()
	cfg.Cache.Enabled = false
	cfg.Cache.MaxBytes = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled cache should not be validated: %v", err)
	}
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func TestLoadConfigFile_OverlaysDefaults(t *testing.T) {
	t.Parallel()

	p := writeFile(t, t.TempDir(), "favicond.yaml", `
server:
  listen_addr: "127.0.0.1:8080"
webclient:
  timeout: 5s
  max_redirects: 3
favicon:
  max_candidates: 2
  user_agent: "test-agent"
batch:
  max_concurrency: 8
store:
  backend: sqlite
  sqlite_path: /tmp/f.db
logging:
  level: debug
`)
	cfg, err := app.LoadConfigFile(p)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	if cfg.Server.ListenAddr != "127.0.0.1:8080" || cfg.WebClient.Timeout != 5*time.Second || cfg.WebClient.MaxRedirects != 3 {
		t.Errorf("overrides not applied: %+v %+v", cfg.Server, cfg.WebClient)
	}
	if cfg.Favicon.MaxCandidates != 2 || cfg.Favicon.UserAgent != "test-agent" || cfg.Batch.MaxConcurrency != 8 {
		t.Errorf("overrides not applied: %+v %+v", cfg.Favicon, cfg.Batch)
	}
	if cfg.Store.Backend != store.BackendSQLite || cfg.Logging.Level != "debug" {
		t.Errorf("overrides not applied: %+v %+v", cfg.Store, cfg.Logging)
	}
	if cfg.Favicon.WellKnownPath != "/favicon.ico" || cfg.Server.MaxBatchSize != 500 || !cfg.Cache.Enabled {
		t.Error("keys missing from the file lost their defaults")
	}
}

func TestLoadConfigFile_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, err := app.LoadConfigFile(filepath.Join(dir, "nope.yaml")); !errors.Is(err, app.ErrConfigNotFound) {
		t.Errorf("missing file: err = %v", err)
	}
	bad := writeFile(t, dir, "bad.yaml", "server: [unclosed")
	if _, err := app.LoadConfigFile(bad); err == nil {
		t.Error("expected parse error")
	}
	badDuration := writeFile(t, dir, "dur.yaml", "webclient:\n  timeout: soon\n")
	if _, err := app.LoadConfigFile(badDuration); err == nil {
		t.Error("expected duration parse error")
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, err := app.Load(filepath.Join(dir, "missing.yaml")); !errors.Is(err, app.ErrConfigNotFound) {
		t.Errorf("explicit missing path: err = %v", err)
	}

	invalid := writeFile(t, dir, "invalid.yaml", "webclient:\n  timeout: 0s\n")
	if _, err := app.Load(invalid); !errors.Is(err, app.ErrInvalidTimeout) {
		t.Errorf("invalid file: err = %v", err)
	}

	good := writeFile(t, dir, "good.yaml", "server:\n  listen_addr: \":9000\"\n")
	cfg, err := app.Load(good)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.ListenAddr != ":9000" {
		t.Errorf("listen addr = %q", cfg.Server.ListenAddr)
	}
}

func TestFindConfigFile_Explicit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := writeFile(t, dir, "x.yaml", "")
	if got := app.FindConfigFile(p); got != p {
		t.Errorf("FindConfigFile(%q) = %q", p, got)
	}
	if got := app.FindConfigFile(filepath.Join(dir, "absent.yaml")); got != "" {
		t.Errorf("absent explicit path returned %q", got)
	}
}

func TestDirs(t *testing.T) {
	t.Parallel()
	if filepath.Base(app.ConfigDir()) != app.AppName || filepath.Base(app.DataDir()) != app.AppName {
		t.Errorf("dirs = %q %q", app.ConfigDir(), app.DataDir())
	}
}
