package preset

import (
	_ "embed"
	"fmt"
)

//go:embed presets.yaml
var defaultCatalogYAML []byte

// LoadDefaults loads the embedded preset catalog.
func LoadDefaults() (*Catalog, error) {
	catalog, err := Load("embedded", defaultCatalogYAML)
	if err != nil {
		return nil, fmt.Errorf("load embedded presets: %w", err)
	}
	return catalog, nil
}
