package handlers

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/imagesmith/imagesmith/internal/errors"
	"github.com/imagesmith/imagesmith/internal/imagelink/preset"
)

var presetCatalog *preset.Catalog

// SetPresetCatalog installs the catalog served by PresetsHandler.
func SetPresetCatalog(catalog *preset.Catalog) {
	presetCatalog = catalog
}

// PresetsResponse lists the available style presets.
type PresetsResponse struct {
	Presets []preset.Preset `json:"presets"`
}

// PresetsHandler returns the style preset catalog.
func PresetsHandler(w http.ResponseWriter, r *http.Request) {
	if presetCatalog == nil {
		respondWithError(w, r, apperrors.NewInternalError("preset catalog not initialized"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(PresetsResponse{Presets: presetCatalog.List()})
}
