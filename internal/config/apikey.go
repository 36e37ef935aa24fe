package config

import (
	"os"
	"strings"
)

// ResolveAPIKey returns an API key by checking multiple sources in priority order.
//
// Priority (highest to lowest):
//  1. Provided apiKey parameter (if non-empty), e.g. from --api-key
//  2. DFA_API_KEY environment variable (including values loaded from .env)
//  3. api_key from the config file
//
// Returns empty string if no API key found in any source.
func ResolveAPIKey(apiKey string, cfg *Config) string {
	if key := strings.TrimSpace(apiKey); key != "" {
		return key
	}
	if key := strings.TrimSpace(os.Getenv(EnvAPIKey)); key != "" {
		return key
	}
	if cfg != nil {
		return strings.TrimSpace(cfg.APIKey)
	}
	return ""
}
