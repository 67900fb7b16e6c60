// Package config loads personachat settings from defaults, a .env file,
// a TOML file and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"personachat/internal/db"
)

const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"

	// ConfigPathEnv overrides the location of the TOML file.
	ConfigPathEnv = "PERSONA_CHAT_CONFIG"
)

type Config struct {
	// Provider selects the model backend: "gemini" or "openrouter".
	Provider string `toml:"provider" env:"PERSONA_CHAT_PROVIDER"`
	// Model is passed to the backend as is. Empty means the backend default.
	Model string `toml:"model" env:"PERSONA_CHAT_MODEL"`

	GeminiAPIKey      string `toml:"gemini_api_key" env:"GEMINI_API_KEY"`
	OpenRouterAPIKey  string `toml:"openrouter_api_key" env:"OPENROUTER_API_KEY"`
	OpenRouterBaseURL string `toml:"openrouter_base_url" env:"OPENROUTER_BASE_URL"`

	// LegacyAPIKey is the variable name older deployments used for the
	// Gemini key.
	LegacyAPIKey string `toml:"-" env:"API_KEY"`

	DataDir     string `toml:"data_dir" env:"PERSONA_CHAT_DATA_DIR"`
	LogLevel    string `toml:"log_level" env:"PERSONA_CHAT_LOG_LEVEL"`
	EnableTools bool   `toml:"enable_tools" env:"PERSONA_CHAT_TOOLS"`
}

func Default() *Config {
	return &Config{
		Provider:          ProviderGemini,
		OpenRouterBaseURL: "https://openrouter.ai/api/v1",
		LogLevel:          "info",
		EnableTools:       true,
	}
}

// Path returns the TOML file location.
func Path() (string, error) {
	if p := os.Getenv(ConfigPathEnv); p != "" {
		return p, nil
	}
	dir, err := db.DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads ./.env and the TOML file at Path. Either may be missing.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	path, err := Path()
	if err != nil {
		return nil, fmt.Errorf("locate config: %w", err)
	}
	return LoadFile(path)
}

// LoadFile layers the TOML file at path (if it exists) and then the
// environment over the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = cfg.LegacyAPIKey
	}
	if cfg.DataDir == "" {
		dir, err := db.DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("locate data dir: %w", err)
		}
		cfg.DataDir = dir
	}
	return cfg, nil
}

// ValidationError names the first config key that is unusable.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks that the selected backend can be reached.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return ValidationError{Field: "gemini_api_key", Message: "GEMINI_API_KEY is not set"}
		}
	case ProviderOpenRouter:
		if c.OpenRouterAPIKey == "" {
			return ValidationError{Field: "openrouter_api_key", Message: "OPENROUTER_API_KEY is not set"}
		}
	default:
		return ValidationError{
			Field:   "provider",
			Message: fmt.Sprintf("unknown provider %q, must be one of: gemini, openrouter", c.Provider),
		}
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return ValidationError{Field: "log_level", Message: err.Error()}
	}
	return nil
}

// ParseLevel accepts debug, info, warn or error. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}

func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, "personachat.log")
}
