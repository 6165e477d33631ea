package imagelink

import "time"

// Config defines provider configuration for the image generation pipeline.
type Config struct {
	// DefaultProvider is the instance used for the primary attempt.
	DefaultProvider string `mapstructure:"default_provider"`

	// FallbackProvider and FallbackModel define the single retry target used
	// when the primary attempt fails. The fallback ignores the caller's
	// requested model by contract.
	FallbackProvider string `mapstructure:"fallback_provider"`
	FallbackModel    string `mapstructure:"fallback_model"`

	// DefaultTimeout bounds each outbound provider call. The upstream service
	// is not under our control; an unbounded call is a latent defect.
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`

	// PresetsFile optionally overrides the built-in style preset catalog.
	PresetsFile string `mapstructure:"presets_file"`

	// Providers is a set of provider instances keyed by a user-defined id.
	Providers map[string]ProviderInstanceConfig `mapstructure:"providers"`
}

// ProviderInstanceConfig defines a configured provider instance (e.g. "hf").
type ProviderInstanceConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Driver is the driver identifier; "hf" is the only driver today.
	Driver string `mapstructure:"driver"`

	BaseURL string `mapstructure:"base_url"`

	Credentials []CredentialConfig `mapstructure:"credentials"`
}

// CredentialConfig is a single credential for a provider instance.
//
// Multiple credentials enable key rotation and per-key prioritization.
type CredentialConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Label    string `mapstructure:"label"`
	APIKey   string `mapstructure:"api_key"`
	Priority int    `mapstructure:"priority"`
}
