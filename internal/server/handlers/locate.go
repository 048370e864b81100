// internal/server/handlers/locate.go

package handlers

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/google/uuid"

	"lifeline/internal/adapter/geoip"
	"lifeline/internal/domain/geo"
	"lifeline/internal/service/locate"
	"lifeline/internal/service/session"
)

// LocateHandler handles location resolution and filter-state requests
type LocateHandler struct {
	resolver *locate.Resolver
	sessions *session.Manager
	store    locate.LocationStore
	geoIP    *geoip.Locator
}

// NewLocateHandler creates a new locate handler. The store and GeoIP locator
// may be nil when the corresponding capability is not configured.
func NewLocateHandler(resolver *locate.Resolver, sessions *session.Manager, store locate.LocationStore, geoIP *geoip.Locator) *LocateHandler {
	return &LocateHandler{
		resolver: resolver,
		sessions: sessions,
		store:    store,
		geoIP:    geoIP,
	}
}

type resolveRequest struct {
	DeviceID string           `json:"deviceId"`
	Coords   *geo.Coordinates `json:"coords"`
	Denied   bool             `json:"denied"`
}

// ResolveLocation runs the resolution fallback chain for a device
func (h *LocateHandler) ResolveLocation(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	deviceID := req.DeviceID
	if deviceID == "" {
		deviceID = uuid.New().String()
	}

	// Pick the live-geolocation capability for this request: coordinates
	// the client already holds, an explicit denial, or a GeoIP lookup of
	// the caller's address. A nil locator means the capability does not
	// exist at all.
	var locator locate.Geolocator
	switch {
	case req.Denied:
		locator = locate.DeniedGeolocator()
	case req.Coords != nil:
		locator = locate.StaticGeolocator(*req.Coords)
	case h.geoIP != nil:
		locator = h.geoIP.ForIP(remoteIP(r))
	}

	result := h.resolver.Resolve(r.Context(), deviceID, locator)

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"deviceId":      deviceID,
		"location":      result.Location,
		"source":        result.Source,
		"locationError": result.LocationError,
	})
}

// GetLocation returns the persisted filter state of a device
func (h *LocateHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("deviceId")
	if deviceID == "" {
		respondWithError(w, http.StatusBadRequest, "Missing deviceId", nil)
		return
	}
	if h.store == nil {
		respondWithError(w, http.StatusNotFound, "No saved location", nil)
		return
	}

	loc, ok, err := h.store.Load(r.Context(), deviceID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to read saved location", err)
		return
	}
	if !ok {
		respondWithError(w, http.StatusNotFound, "No saved location", nil)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"deviceId": deviceID,
		"state":    session.FromLocation(loc),
	})
}

type updateRequest struct {
	DeviceID string         `json:"deviceId"`
	State    session.State  `json:"state"`
	Action   session.Action `json:"action"`
	Value    string         `json:"value"`
}

// UpdateLocation applies a filter transition and persists location changes
func (h *LocateHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.DeviceID == "" {
		respondWithError(w, http.StatusBadRequest, "Missing deviceId", nil)
		return
	}

	state, err := h.sessions.Apply(r.Context(), req.DeviceID, req.State, req.Action, req.Value)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid filter action", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"deviceId": req.DeviceID,
		"state":    state,
	})
}

// remoteIP extracts the caller's IP. The RealIP middleware has already
// rewritten RemoteAddr from forwarding headers when present.
func remoteIP(r *http.Request) net.IP {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return net.ParseIP(host)
}
