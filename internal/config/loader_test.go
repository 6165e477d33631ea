package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setValidSettings seeds viper with a minimal valid configuration.
func setValidSettings(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("server.host", "localhost")
	viper.Set("server.port", 8080)
	viper.Set("server.read_timeout", "30s")
	viper.Set("server.write_timeout", "150s")
	viper.Set("server.idle_timeout", "120s")
	viper.Set("server.shutdown_timeout", "10s")

	viper.Set("quota.window", "4h")
	viper.Set("quota.max_requests", 3)

	viper.Set("logging.level", "info")
	viper.Set("logging.profile", "structured")

	viper.Set("metrics.enabled", true)
	viper.Set("metrics.port", 9090)
	viper.Set("health.enabled", true)

	viper.Set("imagelink.default_provider", "hf")
	viper.Set("imagelink.fallback_provider", "hf-auto")
	viper.Set("imagelink.fallback_model", "black-forest-labs/FLUX.1-schnell")
	viper.Set("imagelink.default_timeout", "120s")
	viper.Set("imagelink.providers.hf.enabled", true)
	viper.Set("imagelink.providers.hf.driver", "hf")
	viper.Set("imagelink.providers.hf-auto.enabled", true)
	viper.Set("imagelink.providers.hf-auto.driver", "hf")
}

func TestLoad(t *testing.T) {
	t.Run("DecodesTypedConfig", func(t *testing.T) {
		setValidSettings(t)

		cfg, err := Load()
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "localhost", cfg.Server.Host)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, 150*time.Second, cfg.Server.WriteTimeout)

		assert.Equal(t, 4*time.Hour, cfg.Quota.Window)
		assert.Equal(t, 3, cfg.Quota.MaxRequests)

		assert.Equal(t, "hf", cfg.ImageLink.DefaultProvider)
		assert.Equal(t, "hf-auto", cfg.ImageLink.FallbackProvider)
		assert.Equal(t, 120*time.Second, cfg.ImageLink.DefaultTimeout)
		assert.True(t, cfg.ImageLink.Providers["hf"].Enabled)
	})

	t.Run("GetConfigReturnsLoadedConfig", func(t *testing.T) {
		setValidSettings(t)

		cfg, err := Load()
		require.NoError(t, err)

		retrieved := GetConfig()
		require.NotNil(t, retrieved)
		assert.Equal(t, cfg.Quota.MaxRequests, retrieved.Quota.MaxRequests)
	})
}

func TestLoadEnvCredentialPatch(t *testing.T) {
	t.Run("PatchesProvidersWithoutKeys", func(t *testing.T) {
		setValidSettings(t)
		t.Setenv("IMAGESMITH_HF_TOKEN", "")
		t.Setenv("HF_TOKEN", "hf_secret")

		cfg, err := Load()
		require.NoError(t, err)

		for _, id := range []string{"hf", "hf-auto"} {
			creds := cfg.ImageLink.Providers[id].Credentials
			require.Len(t, creds, 1, "provider %s", id)
			assert.Equal(t, "hf_secret", creds[0].APIKey)
			assert.True(t, creds[0].Enabled)
		}
	})

	t.Run("PrefersAppPrefixedVariable", func(t *testing.T) {
		setValidSettings(t)
		t.Setenv("IMAGESMITH_HF_TOKEN", "app_secret")
		t.Setenv("HF_TOKEN", "generic_secret")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "app_secret", cfg.ImageLink.Providers["hf"].Credentials[0].APIKey)
	})

	t.Run("LeavesConfiguredKeysAlone", func(t *testing.T) {
		setValidSettings(t)
		viper.Set("imagelink.providers.hf.credentials", []map[string]any{
			{"enabled": true, "label": "file", "api_key": "from_file"},
		})
		t.Setenv("HF_TOKEN", "hf_secret")

		cfg, err := Load()
		require.NoError(t, err)

		creds := cfg.ImageLink.Providers["hf"].Credentials
		require.Len(t, creds, 1)
		assert.Equal(t, "from_file", creds[0].APIKey)
	})
}

func TestLoadValidation(t *testing.T) {
	t.Run("RejectsZeroMaxRequests", func(t *testing.T) {
		setValidSettings(t)
		viper.Set("quota.max_requests", 0)

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "quota.max_requests")
	})

	t.Run("RejectsNonPositiveWindow", func(t *testing.T) {
		setValidSettings(t)
		viper.Set("quota.window", "0s")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "quota.window")
	})

	t.Run("RejectsUnknownDefaultProvider", func(t *testing.T) {
		setValidSettings(t)
		viper.Set("imagelink.default_provider", "missing")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "default_provider")
	})

	t.Run("RejectsUnknownFallbackProvider", func(t *testing.T) {
		setValidSettings(t)
		viper.Set("imagelink.fallback_provider", "missing")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fallback_provider")
	})
}
