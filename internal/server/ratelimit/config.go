package ratelimit

import (
	"strings"
	"time"

	"github.com/jonathan/job-recommender/internal/config"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// FromSettings converts the loaded rate limit settings into a limiter Config.
func FromSettings(s config.RateLimitConfig) *Config {
	if !s.Enabled {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    s.DefaultLimit,
		DefaultWindow:   s.DefaultWindow,
		CleanupInterval: s.CleanupInterval,
		Whitelist:       parseIPList(s.Whitelist),
		Blacklist:       parseIPList(s.Blacklist),
		EndpointConfigs: RecommendEndpointConfigs(s.RecommendLimit, s.RecommendWindow, s.RecommendBurst),
	}
}

// RecommendEndpointConfigs limits the scoring endpoints, which are the only
// ones that do real work. Everything else falls back to the default limit.
func RecommendEndpointConfigs(limit int, window time.Duration, burst int) []EndpointConfig {
	return []EndpointConfig{
		{Path: "/recommend", Method: "POST", Limit: limit, Window: window, Burst: burst},
		{Path: "/recommend/file", Method: "POST", Limit: limit, Window: window, Burst: burst},
	}
}

// parseIPList turns a list of addresses into a set. Entries may themselves be
// comma-separated, which is how they arrive from a single environment variable.
func parseIPList(list []string) map[string]bool {
	result := make(map[string]bool)
	for _, entry := range list {
		for _, ip := range strings.Split(entry, ",") {
			ip = strings.TrimSpace(ip)
			if ip != "" {
				result[ip] = true
			}
		}
	}
	return result
}
