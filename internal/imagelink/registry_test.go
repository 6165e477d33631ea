package imagelink

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveUnknownProvider(t *testing.T) {
	r := NewRegistry(Config{Providers: map[string]ProviderInstanceConfig{}})
	_, err := r.Resolve("nope")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown provider")
}

func TestResolveDisabledProvider(t *testing.T) {
	r := NewRegistry(Config{Providers: map[string]ProviderInstanceConfig{
		"hf": {Enabled: false, Driver: "hf"},
	}})
	_, err := r.Resolve("hf")
	require.Error(t, err)
	require.Contains(t, err.Error(), "disabled")
}

func TestResolveEmptyIDFallsBackToDefaultProvider(t *testing.T) {
	r := NewRegistry(Config{
		DefaultProvider: "hf",
		Providers: map[string]ProviderInstanceConfig{
			"hf": {Enabled: true, Driver: "hf", Credentials: []CredentialConfig{{Enabled: true, APIKey: "k"}}},
		},
	})

	resolved, err := r.Resolve("")
	require.NoError(t, err)
	require.Equal(t, "hf", resolved.ProviderID)
	require.Equal(t, "hf", resolved.Driver.Name())
}

func TestSelectCredentialPrefersHighestPriority(t *testing.T) {
	cred := selectCredential(ProviderInstanceConfig{
		Credentials: []CredentialConfig{
			{Enabled: true, Label: "old", APIKey: "k1", Priority: 1},
			{Enabled: true, Label: "new", APIKey: "k2", Priority: 5},
			{Enabled: false, Label: "off", APIKey: "k3", Priority: 9},
		},
	})
	require.Equal(t, "new", cred.Label)
}

func TestSelectCredentialReturnsFirstWhenNoneUsable(t *testing.T) {
	cred := selectCredential(ProviderInstanceConfig{
		Credentials: []CredentialConfig{
			{Enabled: true, Label: "blank", APIKey: ""},
			{Enabled: false, Label: "off", APIKey: "k"},
		},
	})
	require.Equal(t, "blank", cred.Label)
	require.Empty(t, cred.APIKey)
}

func TestDriverInstancesAreCachedPerCredential(t *testing.T) {
	r := NewRegistry(Config{
		Providers: map[string]ProviderInstanceConfig{
			"hf": {Enabled: true, Driver: "hf", Credentials: []CredentialConfig{{Enabled: true, Label: "env", APIKey: "k"}}},
		},
	})

	first, err := r.Resolve("hf")
	require.NoError(t, err)
	second, err := r.Resolve("hf")
	require.NoError(t, err)
	require.Same(t, first.Driver, second.Driver)
}
