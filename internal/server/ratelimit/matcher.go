package ratelimit

import (
	"net/http"
	"strings"
)

var unlimited = EndpointConfig{}

// MatchEndpoint returns the configuration for path and method, or nil when the
// default limit applies. Entries whose Path ends in "/" match by prefix, so
// "/employees/" covers "/employees/{id}" and "/employees/{id}/profile".
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if method == http.MethodGet && (path == "/health" || path == "/metrics") {
		cfg := unlimited
		return &cfg
	}

	for i := range configs {
		config := &configs[i]
		if config.Path == path && config.Method == method {
			return config
		}
	}

	for i := range configs {
		config := &configs[i]
		if config.Method == method && strings.HasSuffix(config.Path, "/") && strings.HasPrefix(path, config.Path) {
			return config
		}
	}
	return nil
}
