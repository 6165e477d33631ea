package imagelink

import (
	"fmt"
	"strings"
	"sync"

	"github.com/imagesmith/imagesmith/internal/imagelink/driver"
	"github.com/imagesmith/imagesmith/internal/imagelink/driver/hf"
)

// Registry resolves provider instance ids to configured drivers.
type Registry struct {
	cfg Config

	mu      sync.Mutex
	drivers map[string]driver.Driver
}

// ResolvedProvider is a provider instance ready to dispatch against.
type ResolvedProvider struct {
	ProviderID string
	Provider   ProviderInstanceConfig
	Credential CredentialConfig
	Driver     driver.Driver
}

func NewRegistry(cfg Config) *Registry {
	return &Registry{cfg: cfg}
}

// Resolve returns the driver and credential for the given provider instance id.
func (r *Registry) Resolve(providerID string) (*ResolvedProvider, error) {
	if r == nil {
		return nil, fmt.Errorf("imagelink registry not configured")
	}

	providerID = strings.TrimSpace(providerID)
	if providerID == "" {
		providerID = strings.TrimSpace(r.cfg.DefaultProvider)
	}
	if providerID == "" {
		return nil, fmt.Errorf("no provider configured")
	}

	providerCfg, ok := r.cfg.Providers[providerID]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", providerID)
	}
	if !providerCfg.Enabled {
		return nil, fmt.Errorf("provider %q is disabled", providerID)
	}

	cred := selectCredential(providerCfg)

	drv, err := r.driverFor(providerID, providerCfg, cred)
	if err != nil {
		return nil, err
	}

	return &ResolvedProvider{
		ProviderID: providerID,
		Provider:   providerCfg,
		Credential: cred,
		Driver:     drv,
	}, nil
}

// CredentialConfigured reports whether the provider instance has a usable API key.
func (r *Registry) CredentialConfigured(providerID string) bool {
	resolved, err := r.Resolve(providerID)
	if err != nil {
		return false
	}
	return strings.TrimSpace(resolved.Credential.APIKey) != ""
}

// selectCredential picks the enabled credential with the highest priority.
// When none is usable the first configured credential is returned so the
// caller can report the missing key.
func selectCredential(cfg ProviderInstanceConfig) CredentialConfig {
	var best *CredentialConfig
	for i := range cfg.Credentials {
		cred := &cfg.Credentials[i]
		if !cred.Enabled || strings.TrimSpace(cred.APIKey) == "" {
			continue
		}
		if best == nil || cred.Priority > best.Priority {
			best = cred
		}
	}
	if best != nil {
		return *best
	}
	if len(cfg.Credentials) > 0 {
		return cfg.Credentials[0]
	}
	return CredentialConfig{}
}

func (r *Registry) driverFor(providerID string, cfg ProviderInstanceConfig, cred CredentialConfig) (driver.Driver, error) {
	cacheKey := providerID + ":" + strings.TrimSpace(cred.Label)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.drivers == nil {
		r.drivers = make(map[string]driver.Driver)
	}
	if drv, ok := r.drivers[cacheKey]; ok {
		return drv, nil
	}

	driverName := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driverName == "" {
		driverName = "hf"
	}

	switch driverName {
	case "hf":
		client := hf.NewClient(cfg.BaseURL, cred.APIKey)
		client.Timeout = r.cfg.DefaultTimeout
		r.drivers[cacheKey] = client
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported driver %q for provider %q", driverName, providerID)
	}
}
