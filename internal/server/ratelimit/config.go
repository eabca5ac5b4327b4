package ratelimit

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// EndpointConfig is the limit applied to one route and method.
type EndpointConfig struct {
	Path   string        // exact path, or a prefix when it ends in "/"
	Method string        // HTTP method
	Limit  int           // requests per window
	Window time.Duration // refill window
	Burst  int           // bucket size, Limit when 0
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	// IdleTimeout is how long an unused bucket is kept.
	IdleTimeout     time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// DefaultConfig returns the limits used when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		IdleTimeout:     time.Hour,
		Whitelist:       make(map[string]bool),
		Blacklist:       make(map[string]bool),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// envConfig is the RATE_LIMIT_* environment surface.
type envConfig struct {
	Enabled         bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	DefaultLimit    int           `env:"RATE_LIMIT_DEFAULT_LIMIT" envDefault:"1000"`
	DefaultWindow   time.Duration `env:"RATE_LIMIT_DEFAULT_WINDOW" envDefault:"1m"`
	CleanupInterval time.Duration `env:"RATE_LIMIT_CLEANUP_INTERVAL" envDefault:"5m"`
	IdleTimeout     time.Duration `env:"RATE_LIMIT_IDLE_TIMEOUT" envDefault:"1h"`
	Whitelist       []string      `env:"RATE_LIMIT_WHITELIST" envSeparator:","`
	Blacklist       []string      `env:"RATE_LIMIT_BLACKLIST" envSeparator:","`
}

// LoadConfig loads rate limiting configuration from RATE_LIMIT_* environment variables.
func LoadConfig() (*Config, error) {
	raw, err := env.ParseAs[envConfig]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse rate limit environment: %w", err)
	}
	if !raw.Enabled {
		return &Config{Enabled: false}, nil
	}

	cfg := DefaultConfig()
	cfg.DefaultLimit = raw.DefaultLimit
	cfg.DefaultWindow = raw.DefaultWindow
	cfg.CleanupInterval = raw.CleanupInterval
	cfg.IdleTimeout = raw.IdleTimeout
	cfg.Whitelist = toSet(raw.Whitelist)
	cfg.Blacklist = toSet(raw.Blacklist)
	return cfg, nil
}

// DefaultEndpointConfigs returns the per-route limits.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Tier 1: fan-out reads that hit the store several times
		{Path: "/dashboard", Method: "GET", Limit: 120, Window: time.Minute, Burst: 10},
		{Path: "/search", Method: "GET", Limit: 300, Window: time.Minute, Burst: 30},
		{Path: "/export", Method: "GET", Limit: 10, Window: time.Minute, Burst: 2},

		// Tier 2: writes
		{Path: "/employees", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/employees/", Method: "PATCH", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/employees/", Method: "PUT", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/employees/", Method: "DELETE", Limit: 100, Window: time.Minute, Burst: 10},

		// Tier 3: other reads use the default limit
		// Tier 4: /health and /metrics are unlimited, see MatchEndpoint
	}
}

// toSet turns a list of client addresses into a set, ignoring blanks.
func toSet(list []string) map[string]bool {
	result := make(map[string]bool, len(list))
	for _, ip := range list {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
