package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// ConfigFormatVersion is written into new config files.
const ConfigFormatVersion = "1.0.0"

// supportedFormats is the range of config format versions this build reads.
const supportedFormats = "^1"

// Config holds application configuration.
type Config struct {
	FormatVersion string `toml:"format_version" validate:"required"`

	Database DatabaseConfig `toml:"database"`
	User     UserConfig     `toml:"user"`
	Search   SearchConfig   `toml:"search"`
	Importer ImporterConfig `toml:"importer"`
	Notify   NotifyConfig   `toml:"notify"`
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
}

// DatabaseConfig locates the SQLite file.
type DatabaseConfig struct {
	Path string `toml:"path"` // empty = ~/.config/dex/dex.db
}

// UserConfig selects the signed-in user for the CLI and TUI.
type UserConfig struct {
	ID string `toml:"id"`
}

// SearchConfig tunes search orchestration.
type SearchConfig struct {
	DebounceMS        int `toml:"debounce_ms" validate:"gte=0"`
	SuggestionGraceMS int `toml:"suggestion_grace_ms" validate:"gte=0"`
	// RequireSubstring also filters hydrated records by the raw query, capped
	// at 20. Off by default so misspelled queries still return their fuzzy
	// matches; set it to get the stricter substring-only results back.
	RequireSubstring bool `toml:"require_substring"`
}

// ImporterConfig tunes the PokeAPI importer.
type ImporterConfig struct {
	BaseURL           string  `toml:"base_url" validate:"required,url"`
	Concurrency       int     `toml:"concurrency" validate:"gte=1,lte=64"`
	RequestsPerSecond float64 `toml:"requests_per_second" validate:"gt=0"`
	TimeoutSeconds    int     `toml:"timeout_seconds" validate:"gte=1"`
}

// NotifyConfig configures outgoing email.
type NotifyConfig struct {
	APIURL    string `toml:"api_url" validate:"required,url"`
	APIKey    string `toml:"-"` // SENDGRID_API_KEY only
	FromEmail string `toml:"from_email" validate:"required,email"`
	FromName  string `toml:"from_name"`
	SiteURL   string `toml:"site_url" validate:"required,url"`
	Workers   int    `toml:"workers" validate:"gte=1,lte=32"`
}

// ServerConfig configures the HTTP functions server.
type ServerConfig struct {
	Addr              string  `toml:"addr" validate:"required"`
	ImportSchedule    string  `toml:"import_schedule"` // cron spec, empty = disabled
	ImportStart       int     `toml:"import_start" validate:"gte=1"`
	ImportEnd         int     `toml:"import_end" validate:"gtefield=ImportStart"`
	RequestsPerSecond float64 `toml:"requests_per_second" validate:"gt=0"`
	Burst             int     `toml:"burst" validate:"gte=1"`
}

// LogConfig configures zerolog output.
type LogConfig struct {
	Level string `toml:"level" validate:"oneof=trace debug info warn error disabled"`
	File  string `toml:"file"` // TUI log file, empty = ~/.config/dex/dex.log
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		FormatVersion: ConfigFormatVersion,
		User:          UserConfig{ID: "local"},
		Search: SearchConfig{
			DebounceMS:        300,
			SuggestionGraceMS: 200,
		},
		Importer: ImporterConfig{
			BaseURL:           "https://pokeapi.co/api/v2/pokemon",
			Concurrency:       8,
			RequestsPerSecond: 10,
			TimeoutSeconds:    15,
		},
		Notify: NotifyConfig{
			APIURL:    "https://api.sendgrid.com/v3/mail/send",
			FromEmail: "noreply@yoursite.com",
			FromName:  "PokéSearch Team",
			SiteURL:   "https://yoursite.com",
			Workers:   4,
		},
		Server: ServerConfig{
			Addr:              ":8787",
			ImportStart:       1,
			ImportEnd:         100,
			RequestsPerSecond: 5,
			Burst:             10,
		},
		Log: LogConfig{Level: "info"},
	}
}

// DebounceDelay returns the search debounce interval.
func (c SearchConfig) DebounceDelay() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// SuggestionGrace returns how long suggestions stay visible after blur.
func (c SearchConfig) SuggestionGrace() time.Duration {
	return time.Duration(c.SuggestionGraceMS) * time.Millisecond
}

// Timeout returns the per-request importer timeout.
func (c ImporterConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LoadConfig reads config from the TOML file.
// Creates the file with defaults if it doesn't exist. Environment overrides are applied
// after the file is read.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if _, err := toml.DecodeFile(path, &config); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		// Non-fatal: keep defaults even if the file can't be written
		_ = SaveConfig(path, &config)
	}

	config.ApplyEnv()

	if err := ValidateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// SaveConfig writes config to the TOML file.
// Creates the directory if it doesn't exist.
func SaveConfig(path string, config *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(config)
}

// LoadEnv loads .env files that exist. Variables already set win.
func LoadEnv(paths ...string) error {
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// ApplyEnv overrides file values with environment variables.
func (c *Config) ApplyEnv() {
	overrides := []struct {
		env  string
		dest *string
	}{
		{"DEX_DB_PATH", &c.Database.Path},
		{"DEX_USER", &c.User.ID},
		{"DEX_LOG_LEVEL", &c.Log.Level},
		{"DEX_SERVER_ADDR", &c.Server.Addr},
		{"SENDGRID_API_KEY", &c.Notify.APIKey},
		{"FROM_EMAIL", &c.Notify.FromEmail},
		{"SITE_URL", &c.Notify.SiteURL},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dest = v
		}
	}
}

// ValidateConfig checks the format version and field constraints, filling derived paths.
func ValidateConfig(cfg *Config) error {
	version, err := semver.NewVersion(cfg.FormatVersion)
	if err != nil {
		return fmt.Errorf("invalid format_version %q: %w", cfg.FormatVersion, err)
	}
	constraint, err := semver.NewConstraint(supportedFormats)
	if err != nil {
		return err
	}
	if !constraint.Check(version) {
		return fmt.Errorf("unsupported config file format version: %s", cfg.FormatVersion)
	}

	if err := configValidator().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if cfg.Database.Path == "" {
		p, err := DefaultSQLitePath()
		if err != nil {
			return err
		}
		cfg.Database.Path = p
	}
	if cfg.Log.File == "" {
		dir, err := DefaultDataDir()
		if err != nil {
			return err
		}
		cfg.Log.File = filepath.Join(dir, "dex.log")
	}

	return nil
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func configValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// DefaultConfigFilePath returns the default config path: ~/.config/dex/config.toml
func DefaultConfigFilePath() (string, error) {
	dir, err := DefaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
