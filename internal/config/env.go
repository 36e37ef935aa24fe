package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override file settings.
const (
	EnvKibanaURL      = "DFA_KIBANA_URL"
	EnvAPIKey         = "DFA_API_KEY"
	EnvSpace          = "DFA_SPACE"
	EnvProxyMode      = "DFA_PROXY_MODE"
	EnvProxyPassword  = "DFA_PROXY_PASSWORD"
	EnvCreateDataView = "DFA_CREATE_DATA_VIEW"
)

// LoadDotEnv loads variables from a .env file into the process environment.
// Variables already set are left alone. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides cfg with any DFA_* variables that lookup reports.
// Pass os.LookupEnv for the process environment.
func (cfg *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(EnvKibanaURL); ok && v != "" {
		cfg.KibanaURL = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvAPIKey); ok && v != "" {
		cfg.APIKey = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvSpace); ok {
		cfg.Space = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvProxyMode); ok && v != "" {
		cfg.ProxyMode = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvProxyPassword); ok {
		cfg.ProxyPassword = v
	}
	if v, ok := lookup(EnvCreateDataView); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", EnvCreateDataView, v, err)
		}
		cfg.CreateDataView = b
	}
	return nil
}
