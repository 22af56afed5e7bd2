package storage_test

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/nikbrunner/dex/internal/storage"
)

func TestLoadConfig_CreatesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	t.Setenv("DEX_DB_PATH", filepath.Join(dir, "dex.db"))

	cfg, err := storage.LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected config file to be created: %v", err)
	}
	if cfg.Search.DebounceMS != 300 || cfg.Search.SuggestionGraceMS != 200 {
		t.Errorf("unexpected search defaults %+v", cfg.Search)
	}
	if cfg.Search.RequireSubstring {
		t.Error("expected substring filtering to be off by default")
	}
	if cfg.Database.Path != filepath.Join(dir, "dex.db") {
		t.Errorf("expected env override for db path, got %s", cfg.Database.Path)
	}
	if cfg.Log.File == "" {
		t.Error("expected derived log file path")
	}
}

func TestLoadConfig_FileValuesAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
format_version = "1.2.0"

[database]
path = "/tmp/dex-test.db"

[user]
id = "ash"

[search]
debounce_ms = 150
require_substring = true

[notify]
from_email = "dex@example.com"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("DEX_USER", "misty")
	t.Setenv("SENDGRID_API_KEY", "sg-key")

	cfg, err := storage.LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.User.ID != "misty" {
		t.Errorf("expected env user override, got %s", cfg.User.ID)
	}
	if cfg.Search.DebounceDelay().Milliseconds() != 150 || !cfg.Search.RequireSubstring {
		t.Errorf("unexpected search config %+v", cfg.Search)
	}
	if cfg.Notify.FromEmail != "dex@example.com" || cfg.Notify.APIKey != "sg-key" {
		t.Errorf("unexpected notify config %+v", cfg.Notify)
	}
	// Untouched sections keep defaults
	if cfg.Importer.Concurrency != 8 {
		t.Errorf("expected default importer concurrency, got %d", cfg.Importer.Concurrency)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*storage.Config)
		wantErr string
	}{
		{"defaults are valid", func(*storage.Config) {}, ""},
		{"unsupported major", func(c *storage.Config) { c.FormatVersion = "2.0.0" }, "unsupported config file format version"},
		{"garbage version", func(c *storage.Config) { c.FormatVersion = "one" }, "invalid format_version"},
		{"bad log level", func(c *storage.Config) { c.Log.Level = "loud" }, "invalid config"},
		{"bad import range", func(c *storage.Config) { c.Server.ImportEnd = 0 }, "invalid config"},
		{"bad from email", func(c *storage.Config) { c.Notify.FromEmail = "nope" }, "invalid config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := storage.DefaultConfig()
			cfg.Database.Path = "/tmp/x.db"
			cfg.Log.File = "/tmp/x.log"
			tt.mutate(&cfg)

			err := storage.ValidateConfig(&cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateConfig_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cfg := storage.DefaultConfig()
			cfg.Database.Path = "/tmp/x.db"
			cfg.Log.File = "/tmp/x.log"
			errs <- storage.ValidateConfig(&cfg)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	}
}

func TestLoadEnv_SkipsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("DEX_TEST_LOADENV=from-file\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("DEX_TEST_LOADENV", "")
	os.Unsetenv("DEX_TEST_LOADENV")

	if err := storage.LoadEnv(filepath.Join(dir, "missing.env"), envPath); err != nil {
		t.Fatalf("load env: %v", err)
	}
	if got := os.Getenv("DEX_TEST_LOADENV"); got != "from-file" {
		t.Errorf("expected value from .env, got %q", got)
	}
}
