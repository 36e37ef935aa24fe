package cli

import (
	"fmt"
	"strings"

	"github.com/mlops-tools/dfa-wizard/internal/api"
	"github.com/mlops-tools/dfa-wizard/internal/config"
)

// configPath returns --config or the default location.
func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.DefaultPath()
}

// loadConfig merges the configuration sources.
// Priority: flags > environment (.env included) > config file > defaults
func loadConfig() (*config.Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	if err := config.LoadDotEnv(envFile); err != nil {
		GetLogger().Warn().Err(err).Msg("ignoring .env file")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(nil); err != nil {
		return nil, err
	}

	if kibanaURL != "" {
		cfg.KibanaURL = strings.TrimSpace(kibanaURL)
	}
	if space != "" {
		cfg.Space = strings.TrimSpace(space)
	}
	cfg.APIKey = config.ResolveAPIKey(apiKey, cfg)

	return cfg, nil
}

// getAPIClient loads configuration and creates an API client.
func getAPIClient() (*api.Client, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w (run 'dfa-wizard config init' or set %s/%s)",
			err, config.EnvKibanaURL, config.EnvAPIKey)
	}

	client, err := api.NewClient(cfg, GetLogger())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create API client: %w", err)
	}

	return client, cfg, nil
}
