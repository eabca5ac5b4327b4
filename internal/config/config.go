// Package config provides configuration loading and validation for the CLI and API server.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Production is the APP_ENV value that switches logging to JSON.
const Production = "production"

// Config holds every setting. Values come from the environment (optionally a
// .env file), then a JSON config file, then CLI flags, each overriding the last.
type Config struct {
	BackendURL     string        `json:"backend_url,omitempty" env:"BACKEND_API_URL_BASE" envDefault:"http://127.0.0.1:8090/api/"`
	PerPage        int           `json:"per_page,omitempty" env:"EMPLOYEES_PER_PAGE" envDefault:"20"`
	SearchDebounce time.Duration `json:"search_debounce,omitempty" env:"SEARCH_DEBOUNCE" envDefault:"500ms"`
	HTTPTimeout    time.Duration `json:"http_timeout,omitempty" env:"HTTP_TIMEOUT" envDefault:"0s"`
	LogLevel       string        `json:"log_level,omitempty" env:"LOG_LEVEL" envDefault:"info"`
	Environment    string        `json:"environment,omitempty" env:"APP_ENV" envDefault:"development"`
	Port           string        `json:"port,omitempty" env:"PORT" envDefault:"8080"`
	AllowedOrigins []string      `json:"allowed_origins,omitempty" env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// LoadEnv loads the existing files among envFiles into the process environment.
// Missing files are skipped. It returns how many files were loaded.
func LoadEnv(envFiles ...string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return 0, fmt.Errorf("failed to load env files: %w", err)
	}
	return len(existing), nil
}

// FromEnv parses the configuration from environment variables, applying defaults.
func FromEnv() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return &cfg, nil
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var raw struct {
		Config
		SearchDebounce string `json:"search_debounce,omitempty"`
		HTTPTimeout    string `json:"http_timeout,omitempty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	cfg := raw.Config
	if raw.SearchDebounce != "" {
		if cfg.SearchDebounce, err = time.ParseDuration(raw.SearchDebounce); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: search_debounce: %w", err)
		}
	}
	if raw.HTTPTimeout != "" {
		if cfg.HTTPTimeout, err = time.ParseDuration(raw.HTTPTimeout); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: http_timeout: %w", err)
		}
	}
	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config error: 'backend_url' must be an absolute URL, got %q", c.BackendURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("config error: 'backend_url' must use http or https")
	}
	if c.PerPage < 1 {
		return fmt.Errorf("config error: 'per_page' must be positive")
	}
	if c.SearchDebounce <= 0 {
		return fmt.Errorf("config error: 'search_debounce' must be positive")
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("config error: 'http_timeout' must be non-negative")
	}
	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to layer a config file over environment values.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.BackendURL == "" {
		result.BackendURL = defaults.BackendURL
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.Environment == "" {
		result.Environment = defaults.Environment
	}
	if result.Port == "" {
		result.Port = defaults.Port
	}
	if len(result.AllowedOrigins) == 0 {
		result.AllowedOrigins = defaults.AllowedOrigins
	}

	if result.PerPage == 0 {
		result.PerPage = defaults.PerPage
	}
	if result.SearchDebounce == 0 {
		result.SearchDebounce = defaults.SearchDebounce
	}
	// HTTPTimeout 0 is meaningful (transport defaults), so a file can only raise it.
	if result.HTTPTimeout == 0 {
		result.HTTPTimeout = defaults.HTTPTimeout
	}

	return result
}
