// Package config provides centralized configuration management for ImageSmith.
// Defaults and file/environment overrides are assembled by viper in the CLI
// layer; Load decodes the merged settings into the typed Config and patches
// provider credentials from well-known environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/imagesmith/imagesmith/internal/imagelink"
)

var (
	// appConfig holds the current application configuration
	appConfig *Config
	configMu  sync.RWMutex
)

// credentialEnvVars are checked in order when a provider has no usable
// API key configured. The first non-empty value wins.
var credentialEnvVars = []string{"IMAGESMITH_HF_TOKEN", "HF_TOKEN"}

// Load decodes the merged viper settings into a typed Config.
//
// This function is safe to call multiple times (e.g., for config reload)
func Load() (*Config, error) {
	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(viper.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvCredentials(&cfg.ImageLink)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	setConfig(cfg)
	return cfg, nil
}

// GetConfig returns the current application configuration (thread-safe)
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

// setConfig updates the current configuration (thread-safe)
func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}

// applyEnvCredentials injects an API key from the environment into every
// provider instance that has no usable credential of its own. This keeps
// the common single-token deployment to one environment variable.
func applyEnvCredentials(cfg *imagelink.Config) {
	token := ""
	for _, name := range credentialEnvVars {
		if value := strings.TrimSpace(os.Getenv(name)); value != "" {
			token = value
			break
		}
	}
	if token == "" {
		return
	}

	for id, provider := range cfg.Providers {
		if hasUsableCredential(provider) {
			continue
		}
		provider.Credentials = append(provider.Credentials, imagelink.CredentialConfig{
			Enabled: true,
			Label:   "env",
			APIKey:  token,
		})
		cfg.Providers[id] = provider
	}
}

func hasUsableCredential(provider imagelink.ProviderInstanceConfig) bool {
	for _, cred := range provider.Credentials {
		if cred.Enabled && strings.TrimSpace(cred.APIKey) != "" {
			return true
		}
	}
	return false
}

func validate(cfg *Config) error {
	if cfg.Quota.MaxRequests < 1 {
		return fmt.Errorf("quota.max_requests must be at least 1, got %d", cfg.Quota.MaxRequests)
	}
	if cfg.Quota.Window <= 0 {
		return fmt.Errorf("quota.window must be positive, got %s", cfg.Quota.Window)
	}
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", cfg.Server.Port)
	}
	if strings.TrimSpace(cfg.ImageLink.DefaultProvider) == "" {
		return fmt.Errorf("imagelink.default_provider is required")
	}
	if strings.TrimSpace(cfg.ImageLink.FallbackModel) == "" {
		return fmt.Errorf("imagelink.fallback_model is required")
	}
	if _, ok := cfg.ImageLink.Providers[cfg.ImageLink.DefaultProvider]; !ok {
		return fmt.Errorf("imagelink.default_provider %q has no provider entry", cfg.ImageLink.DefaultProvider)
	}
	if fb := strings.TrimSpace(cfg.ImageLink.FallbackProvider); fb != "" {
		if _, ok := cfg.ImageLink.Providers[fb]; !ok {
			return fmt.Errorf("imagelink.fallback_provider %q has no provider entry", fb)
		}
	}
	return nil
}
