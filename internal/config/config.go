// Package config provides configuration management for dfa-wizard.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/ini.v1"
)

// Config holds the connection, proxy and wizard settings.
//
// Config file location:
//   - Windows: %USERPROFILE%\.config\dfa-wizard\config
//   - Unix: ~/.config/dfa-wizard/config
//
// INI format:
//
//	[kibana]
//	url = https://kibana.example.com:5601
//	api_key = <base64 api key>
//	space = default
//
//	[proxy]
//	mode = no-proxy
//	host = proxy.corp
//	port = 8080
//	user = alice
//	no_proxy = localhost,.internal
//
//	[wizard]
//	create_data_view = true
//	start_after_create = false
type Config struct {
	// Kibana connection settings
	KibanaURL string
	APIKey    string
	Space     string // Kibana space; empty or "default" means the default space

	// Proxy settings
	ProxyMode     string // "no-proxy", "system", "basic", "ntlm"
	ProxyHost     string
	ProxyPort     int
	ProxyUser     string
	ProxyPassword string // never written to disk
	NoProxy       string // Comma-separated list of hosts to bypass proxy
	ProxyWarmup   bool

	// Wizard defaults
	CreateDataView   bool
	StartAfterCreate bool
}

// Validation errors
var (
	ErrMissingKibanaURL = errors.New("kibana url is required")
	ErrInvalidKibanaURL = errors.New("kibana url must be an absolute http or https URL")
	ErrMissingAPIKey    = errors.New("api_key is required")
	ErrInvalidProxyMode = errors.New("proxy mode must be one of no-proxy, system, basic, ntlm")
	ErrMissingProxyHost = errors.New("proxy host is required for basic and ntlm proxy modes")
)

var proxyModes = []string{"no-proxy", "system", "basic", "ntlm"}

// DefaultPath returns the default path for the config file.
func DefaultPath() (string, error) {
	var configDir string

	if runtime.GOOS == "windows" {
		userProfile := os.Getenv("USERPROFILE")
		if userProfile == "" {
			return "", errors.New("USERPROFILE environment variable not set")
		}
		configDir = filepath.Join(userProfile, ".config", "dfa-wizard")
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config", "dfa-wizard")
	}

	return filepath.Join(configDir, "config"), nil
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		KibanaURL:      "http://localhost:5601",
		ProxyMode:      "no-proxy",
		CreateDataView: true,
	}
}

// Load loads configuration from an INI file.
// If the file doesn't exist, returns a config with default values and no error.
// If the file exists but is invalid, returns an error.
func Load(path string) (*Config, error) {
	cfg := New()

	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return cfg, nil
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	kibana := iniFile.Section("kibana")
	cfg.KibanaURL = kibana.Key("url").MustString(cfg.KibanaURL)
	cfg.APIKey = kibana.Key("api_key").String()
	cfg.Space = kibana.Key("space").String()

	proxy := iniFile.Section("proxy")
	cfg.ProxyMode = proxy.Key("mode").MustString(cfg.ProxyMode)
	cfg.ProxyHost = proxy.Key("host").String()
	cfg.ProxyPort = proxy.Key("port").MustInt(0)
	cfg.ProxyUser = proxy.Key("user").String()
	cfg.NoProxy = proxy.Key("no_proxy").String()
	cfg.ProxyWarmup = proxy.Key("warmup").MustBool(false)

	wizard := iniFile.Section("wizard")
	cfg.CreateDataView = wizard.Key("create_data_view").MustBool(true)
	cfg.StartAfterCreate = wizard.Key("start_after_create").MustBool(false)

	return cfg, nil
}

// Save writes cfg to an INI file, creating parent directories as needed.
// The proxy password is never persisted. The API key is, so the file is
// written with owner-only permissions.
func Save(cfg *Config, path string) error {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return fmt.Errorf("failed to determine config path: %w", err)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	iniFile := ini.Empty()

	kibana, err := iniFile.NewSection("kibana")
	if err != nil {
		return fmt.Errorf("failed to create kibana section: %w", err)
	}
	kibana.Key("url").SetValue(cfg.KibanaURL)
	kibana.Key("api_key").SetValue(cfg.APIKey)
	kibana.Key("space").SetValue(cfg.Space)

	proxy, err := iniFile.NewSection("proxy")
	if err != nil {
		return fmt.Errorf("failed to create proxy section: %w", err)
	}
	proxy.Key("mode").SetValue(cfg.ProxyMode)
	proxy.Key("host").SetValue(cfg.ProxyHost)
	proxy.Key("port").SetValue(fmt.Sprintf("%d", cfg.ProxyPort))
	proxy.Key("user").SetValue(cfg.ProxyUser)
	proxy.Key("no_proxy").SetValue(cfg.NoProxy)
	proxy.Key("warmup").SetValue(fmt.Sprintf("%t", cfg.ProxyWarmup))

	wizard, err := iniFile.NewSection("wizard")
	if err != nil {
		return fmt.Errorf("failed to create wizard section: %w", err)
	}
	wizard.Key("create_data_view").SetValue(fmt.Sprintf("%t", cfg.CreateDataView))
	wizard.Key("start_after_create").SetValue(fmt.Sprintf("%t", cfg.StartAfterCreate))

	// Temporary file + rename for atomicity
	tmpPath := path + ".tmp"
	if err := iniFile.SaveTo(tmpPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set config permissions: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// Validate checks the whole configuration.
func (cfg *Config) Validate() error {
	if err := cfg.ValidateForConnection(); err != nil {
		return err
	}
	mode := strings.ToLower(cfg.ProxyMode)
	if mode == "" {
		return nil
	}
	valid := false
	for _, m := range proxyModes {
		if mode == m {
			valid = true
			break
		}
	}
	if !valid {
		return ErrInvalidProxyMode
	}
	if (mode == "basic" || mode == "ntlm") && strings.TrimSpace(cfg.ProxyHost) == "" {
		return ErrMissingProxyHost
	}
	return nil
}

// ValidateForConnection checks only the settings needed to reach Kibana.
func (cfg *Config) ValidateForConnection() error {
	if strings.TrimSpace(cfg.KibanaURL) == "" {
		return ErrMissingKibanaURL
	}
	u, err := url.Parse(cfg.KibanaURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidKibanaURL
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// MaskedAPIKey returns the API key with all but the last four characters
// hidden, for display.
func (cfg *Config) MaskedAPIKey() string {
	key := cfg.APIKey
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
