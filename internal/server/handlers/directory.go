// internal/server/handlers/directory.go

package handlers

import (
	"encoding/json"
	"net/http"

	"lifeline/internal/domain/geo"
	"lifeline/internal/domain/hotline"
	"lifeline/internal/service/directory"
)

// DirectoryHandler handles hotline-directory HTTP requests
type DirectoryHandler struct {
	catalog *directory.Catalog
}

// NewDirectoryHandler creates a new directory handler
func NewDirectoryHandler(catalog *directory.Catalog) *DirectoryHandler {
	return &DirectoryHandler{
		catalog: catalog,
	}
}

// GetRegions returns all regions in dataset order
func (h *DirectoryHandler) GetRegions(w http.ResponseWriter, r *http.Request) {
	index := h.catalog.Index()
	if index == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Datasets not loaded", nil)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"regions": index.ListRegions(),
	})
}

// GetProvinces returns provinces, optionally scoped to a region
func (h *DirectoryHandler) GetProvinces(w http.ResponseWriter, r *http.Request) {
	index := h.catalog.Index()
	if index == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Datasets not loaded", nil)
		return
	}

	regionKey := geo.Normalize(r.URL.Query().Get("region"))
	provinces := index.ListProvinces(regionKey)
	if provinces == nil {
		provinces = []geo.ProvinceEntry{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"provinces": provinces,
	})
}

// GetCities returns cities, optionally scoped to a province or region
func (h *DirectoryHandler) GetCities(w http.ResponseWriter, r *http.Request) {
	index := h.catalog.Index()
	if index == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Datasets not loaded", nil)
		return
	}

	provinceKey := geo.Normalize(r.URL.Query().Get("province"))
	regionKey := geo.Normalize(r.URL.Query().Get("region"))
	cities := index.ListCities(provinceKey, regionKey)
	if cities == nil {
		cities = []geo.CityEntry{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"cities": cities,
	})
}

// GetHotlines returns the filtered, deterministically ordered directory
func (h *DirectoryHandler) GetHotlines(w http.ResponseWriter, r *http.Request) {
	if h.catalog.Index() == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Datasets not loaded", nil)
		return
	}

	// City keys may contain the composite separator and arrive URL-encoded;
	// the other parameters are plain normalized keys.
	filter := hotline.Filter{
		Region:   geo.Normalize(r.URL.Query().Get("region")),
		Province: geo.Normalize(r.URL.Query().Get("province")),
		City:     geo.Normalize(r.URL.Query().Get("city")),
		Category: r.URL.Query().Get("category"),
	}

	matched := hotline.Apply(h.catalog.Hotlines(), filter)

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"hotlines": matched,
		"count":    len(matched),
	})
}

// ReloadDatasets refetches both datasets and rebuilds the hierarchy index
func (h *DirectoryHandler) ReloadDatasets(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Load(r.Context()); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to reload datasets", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"hotlines": len(h.catalog.Hotlines()),
		"loadedAt": h.catalog.LoadedAt(),
	})
}

// Helper for JSON responses
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper for error responses
func respondWithError(w http.ResponseWriter, code int, message string, err error) {
	response := map[string]string{"error": message}
	if err != nil {
		response["detail"] = err.Error()
	}

	jsonResponse, _ := json.Marshal(response)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(jsonResponse)
}
