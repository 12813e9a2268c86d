// Package config handles loading and saving user configuration for manchu.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// FileName is the name of the config file inside the config directory.
const FileName = "config.yaml"

// Store backends.
const (
	BackendSQLite   = "sqlite"
	BackendSupabase = "supabase"
)

// Config holds all user configuration.
type Config struct {
	Store       StoreConfig       `yaml:"store"`
	Translation TranslationConfig `yaml:"translation"`
	Log         LogConfig         `yaml:"log"`
	UI          UIConfig          `yaml:"ui"`
}

// StoreConfig selects and configures the corpus store.
type StoreConfig struct {
	Backend     string        `yaml:"backend"      env:"MANCHU_STORE_BACKEND" env-default:"sqlite"`
	Path        string        `yaml:"path"         env:"MANCHU_DB_PATH"`
	SupabaseURL string        `yaml:"supabase_url" env:"SUPABASE_URL"`
	SupabaseKey string        `yaml:"supabase_key" env:"SUPABASE_KEY"`
	Timeout     time.Duration `yaml:"timeout"      env:"MANCHU_STORE_TIMEOUT" env-default:"30s"`
}

// TranslationConfig configures the chat-completion backend.
type TranslationConfig struct {
	APIKey      string        `yaml:"api_key"     env:"DEEPSEEK_API_KEY"`
	BaseURL     string        `yaml:"base_url"    env:"MANCHU_TRANSLATION_URL"   env-default:"https://api.deepseek.com/v1"`
	Model       string        `yaml:"model"       env:"MANCHU_TRANSLATION_MODEL" env-default:"deepseek-chat"`
	Timeout     time.Duration `yaml:"timeout"     env:"MANCHU_TRANSLATION_TIMEOUT" env-default:"60s"`
	MaxTokens   int           `yaml:"max_tokens"  env:"MANCHU_TRANSLATION_MAX_TOKENS" env-default:"512"`
	Temperature float32       `yaml:"temperature" env:"MANCHU_TRANSLATION_TEMPERATURE" env-default:"0.3"`
	Direction   string        `yaml:"direction"   env:"MANCHU_DIRECTION" env-default:"manchu-to-english"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"MANCHU_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"MANCHU_LOG_FORMAT" env-default:"text"`
}

// UIConfig holds terminal UI settings.
type UIConfig struct {
	PageSize  int    `yaml:"page_size"  env:"MANCHU_PAGE_SIZE"  env-default:"6"`
	ExportDir string `yaml:"export_dir" env:"MANCHU_EXPORT_DIR" env-default:"."`
	BigToken  bool   `yaml:"big_token"  env:"MANCHU_BIG_TOKEN"  env-default:"true"`
}

// Load reads <dir>/config.yaml if it exists, then applies environment
// overrides and defaults. Without a file, configuration comes from the
// environment and defaults only. Relative paths resolve against dir.
func Load(dir string) (*Config, error) {
	var cfg Config

	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("reading config env: %w", err)
		}
	} else {
		return nil, fmt.Errorf("checking config %s: %w", path, err)
	}

	if cfg.Store.Path == "" {
		cfg.Store.Path = "manchu.db"
	}
	if cfg.Store.Path != ":memory:" && !filepath.IsAbs(cfg.Store.Path) {
		cfg.Store.Path = filepath.Join(dir, cfg.Store.Path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// Validate checks values that cannot be expressed as defaults.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendSQLite, BackendSupabase:
	default:
		return fmt.Errorf("store.backend must be %q or %q (got %q)", BackendSQLite, BackendSupabase, c.Store.Backend)
	}
	if c.UI.PageSize <= 0 {
		return fmt.Errorf("ui.page_size must be > 0 (got %d)", c.UI.PageSize)
	}
	if c.Translation.Direction != "manchu-to-english" && c.Translation.Direction != "english-to-manchu" {
		return fmt.Errorf("translation.direction must be manchu-to-english or english-to-manchu (got %q)", c.Translation.Direction)
	}
	return nil
}

// Default returns the configuration written by `manchu init`.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: BackendSQLite,
			Path:    "manchu.db",
			Timeout: 30 * time.Second,
		},
		Translation: TranslationConfig{
			BaseURL:     "https://api.deepseek.com/v1",
			Model:       "deepseek-chat",
			Timeout:     60 * time.Second,
			MaxTokens:   512,
			Temperature: 0.3,
			Direction:   "manchu-to-english",
		},
		Log: LogConfig{Level: "info", Format: "text"},
		UI:  UIConfig{PageSize: 6, ExportDir: ".", BigToken: true},
	}
}

// Save writes cfg as YAML. Secrets are written as given; callers that
// generate templates leave them empty.
func Save(path string, cfg *Config) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, out, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// GetConfigDir returns the default configuration directory.
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "manchu"), nil
}

// EnsureConfigDir creates dir if it doesn't exist.
func EnsureConfigDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return nil
}
