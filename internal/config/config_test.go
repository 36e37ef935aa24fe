package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.KibanaURL != "http://localhost:5601" {
		t.Errorf("expected default KibanaURL to be http://localhost:5601, got %s", cfg.KibanaURL)
	}
	if cfg.ProxyMode != "no-proxy" {
		t.Errorf("expected default ProxyMode to be no-proxy, got %s", cfg.ProxyMode)
	}
	if !cfg.CreateDataView {
		t.Error("expected CreateDataView to default to true")
	}
	if cfg.StartAfterCreate {
		t.Error("expected StartAfterCreate to default to false")
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config")

	cfg := &Config{
		KibanaURL:        "https://kibana.test:5601",
		APIKey:           "test-api-key-12345",
		Space:            "analytics",
		ProxyMode:        "basic",
		ProxyHost:        "proxy.test",
		ProxyPort:        3128,
		ProxyUser:        "alice",
		ProxyPassword:    "secret",
		NoProxy:          "localhost,.internal",
		ProxyWarmup:      true,
		CreateDataView:   false,
		StartAfterCreate: true,
	}

	if err := Save(cfg, configPath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("config file was not created: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("expected permissions 0600, got %o", info.Mode().Perm())
	}
	if _, err := os.Stat(configPath + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file was left behind")
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := *cfg
	want.ProxyPassword = "" // never persisted
	if *loaded != want {
		t.Errorf("loaded config mismatch:\n got  %+v\n want %+v", *loaded, want)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if *cfg != *New() {
		t.Errorf("expected defaults, got %+v", *cfg)
	}
}

func TestLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	content := "[kibana]\napi_key = abc\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.APIKey != "abc" {
		t.Errorf("expected api key abc, got %s", cfg.APIKey)
	}
	if cfg.KibanaURL != "http://localhost:5601" {
		t.Errorf("expected default url to survive, got %s", cfg.KibanaURL)
	}
	if !cfg.CreateDataView {
		t.Error("expected create_data_view default to survive")
	}
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(path, []byte("[kibana\nurl = x\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed INI")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := New()
		cfg.APIKey = "key"
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"valid defaults with key", func(*Config) {}, nil},
		{"missing url", func(c *Config) { c.KibanaURL = " " }, ErrMissingKibanaURL},
		{"relative url", func(c *Config) { c.KibanaURL = "kibana:5601" }, ErrInvalidKibanaURL},
		{"ftp url", func(c *Config) { c.KibanaURL = "ftp://kibana" }, ErrInvalidKibanaURL},
		{"missing key", func(c *Config) { c.APIKey = "" }, ErrMissingAPIKey},
		{"unknown proxy mode", func(c *Config) { c.ProxyMode = "socks" }, ErrInvalidProxyMode},
		{"basic without host", func(c *Config) { c.ProxyMode = "basic" }, ErrMissingProxyHost},
		{"ntlm with host", func(c *Config) { c.ProxyMode = "NTLM"; c.ProxyHost = "p" }, nil},
		{"empty proxy mode", func(c *Config) { c.ProxyMode = "" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvKibanaURL:      " https://env.kibana ",
		EnvAPIKey:         "env-key",
		EnvSpace:          "",
		EnvProxyPassword:  "pw",
		EnvCreateDataView: "false",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := New()
	cfg.Space = "from-file"
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}

	if cfg.KibanaURL != "https://env.kibana" {
		t.Errorf("KibanaURL = %q", cfg.KibanaURL)
	}
	if cfg.APIKey != "env-key" {
		t.Errorf("APIKey = %q", cfg.APIKey)
	}
	if cfg.Space != "" {
		t.Errorf("expected an empty DFA_SPACE to select the default space, got %q", cfg.Space)
	}
	if cfg.ProxyPassword != "pw" {
		t.Errorf("ProxyPassword = %q", cfg.ProxyPassword)
	}
	if cfg.CreateDataView {
		t.Error("expected CreateDataView to be overridden to false")
	}
	if cfg.ProxyMode != "no-proxy" {
		t.Errorf("unset variable changed ProxyMode to %q", cfg.ProxyMode)
	}
}

func TestApplyEnvInvalidBool(t *testing.T) {
	cfg := New()
	err := cfg.ApplyEnv(func(k string) (string, bool) {
		if k == EnvCreateDataView {
			return "maybe", true
		}
		return "", false
	})
	if err == nil {
		t.Error("expected error for invalid boolean")
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("DFA_SPACE=dotenv-space\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvSpace, "")
	os.Unsetenv(EnvSpace)

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}
	if got := os.Getenv(EnvSpace); got != "dotenv-space" {
		t.Errorf("expected DFA_SPACE from .env, got %q", got)
	}

	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing .env should not be an error, got %v", err)
	}
}

func TestResolveAPIKey(t *testing.T) {
	cfg := &Config{APIKey: "file-key"}

	t.Setenv(EnvAPIKey, "")
	if got := ResolveAPIKey("", cfg); got != "file-key" {
		t.Errorf("expected file key, got %q", got)
	}

	t.Setenv(EnvAPIKey, "env-key")
	if got := ResolveAPIKey("", cfg); got != "env-key" {
		t.Errorf("expected env key, got %q", got)
	}
	if got := ResolveAPIKey("flag-key", cfg); got != "flag-key" {
		t.Errorf("expected flag key, got %q", got)
	}
	if got := ResolveAPIKey("", nil); got != "env-key" {
		t.Errorf("expected env key with nil config, got %q", got)
	}
}

func TestMaskedAPIKey(t *testing.T) {
	tests := map[string]string{
		"":           "",
		"abc":        "***",
		"abcdefgh":   "****efgh",
		"1234567890": "******7890",
	}
	for key, want := range tests {
		cfg := &Config{APIKey: key}
		if got := cfg.MaskedAPIKey(); got != want {
			t.Errorf("MaskedAPIKey(%q) = %q, want %q", key, got, want)
		}
	}
}
