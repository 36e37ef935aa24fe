package ratelimit

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Scope identifies a group of endpoints that share one token bucket.
type Scope string

const (
	// ScopeRead covers lookups: job listings, job configs and data views.
	ScopeRead Scope = "read"

	// ScopeWrite covers requests that change or compute cluster state.
	ScopeWrite Scope = "write"
)

// ScopeConfig holds the rate limit configuration for a single scope.
type ScopeConfig struct {
	Scope         Scope
	TargetRate    float64 // requests per second
	BurstCapacity float64 // token bucket burst capacity
}

// EndpointRule maps an API endpoint pattern to its scope.
// Rules are matched in order of specificity: longer patterns and method-specific
// rules take precedence over shorter/wildcard ones.
type EndpointRule struct {
	// Pattern is matched with strings.Contains so path parameters are allowed.
	Pattern string

	// Method is the HTTP method to match, or "" for any method.
	Method string

	Scope Scope
}

// specificity returns a score for rule precedence. Higher = more specific.
func (r EndpointRule) specificity() int {
	score := len(r.Pattern)
	if r.Method != "" {
		score += 1000 // Method-specific rules always win over method-agnostic
	}
	return score
}

// Registry maps endpoints to scopes and scopes to limits.
type Registry struct {
	// rules sorted by specificity descending (most specific first)
	rules        []EndpointRule
	scopeConfigs map[Scope]ScopeConfig
	defaultScope Scope
}

// NewRegistry creates the registry of known Kibana ML endpoints.
func NewRegistry() *Registry {
	r := &Registry{
		defaultScope: ScopeRead,
		scopeConfigs: map[Scope]ScopeConfig{
			ScopeRead: {
				Scope:         ScopeRead,
				TargetRate:    ReadRatePerSec,
				BurstCapacity: ReadBurstCapacity,
			},
			ScopeWrite: {
				Scope:         ScopeWrite,
				TargetRate:    WriteRatePerSec,
				BurstCapacity: WriteBurstCapacity,
			},
		},
	}

	r.rules = []EndpointRule{
		{Pattern: "/data_frame/analytics/", Method: http.MethodPut, Scope: ScopeWrite},
		{Pattern: "/_start", Method: http.MethodPost, Scope: ScopeWrite},
		{Pattern: "/_explain", Method: http.MethodPost, Scope: ScopeWrite},
		{Pattern: "/data_frame/analytics", Method: "", Scope: ScopeRead},
		{Pattern: "/saved_objects/", Method: "", Scope: ScopeRead},
	}

	sort.Slice(r.rules, func(i, j int) bool {
		return r.rules[i].specificity() > r.rules[j].specificity()
	})

	return r
}

// ResolveScope determines the scope for a given HTTP method and path.
// Returns the most specific matching scope, or the default scope (ScopeRead)
// if no rule matches.
func (r *Registry) ResolveScope(method, path string) Scope {
	for _, rule := range r.rules {
		if !strings.Contains(path, rule.Pattern) {
			continue
		}
		if rule.Method != "" && !strings.EqualFold(rule.Method, method) {
			continue
		}
		return rule.Scope
	}
	return r.defaultScope
}

// GetScopeConfig returns the rate limit configuration for a scope.
// Returns the default scope config if the scope is not found.
func (r *Registry) GetScopeConfig(scope Scope) ScopeConfig {
	if cfg, ok := r.scopeConfigs[scope]; ok {
		return cfg
	}
	return r.scopeConfigs[r.defaultScope]
}

// NewLimiters builds one limiter per configured scope.
func (r *Registry) NewLimiters() map[Scope]*RateLimiter {
	out := make(map[Scope]*RateLimiter, len(r.scopeConfigs))
	for s, cfg := range r.scopeConfigs {
		out[s] = NewRateLimiter(cfg.TargetRate, cfg.BurstCapacity)
	}
	return out
}

// ScopeDisplayString returns a human-readable description of the scope for logging.
// Example: "write (2.00/sec, burst 5)"
func (r *Registry) ScopeDisplayString(scope Scope) string {
	cfg, ok := r.scopeConfigs[scope]
	if !ok {
		return string(scope) + " (unknown scope)"
	}
	return fmt.Sprintf("%s (%.2f/sec, burst %.0f)", scope, cfg.TargetRate, cfg.BurstCapacity)
}
