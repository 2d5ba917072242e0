package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/fips-geocoder/internal/geocoding"
	"github.com/sells-group/fips-geocoder/pkg/location"
)

const (
	msgInternal        = "Internal server error"
	msgAddressRequired = "Valid address is required"
	msgPlaceIDRequired = "Valid placeId is required"
	msgPartialRequired = "partialAddress is required"
	msgStateRequired   = "state is required"

	maxBodyBytes = 1 << 16
)

type handlers struct {
	svc Geocoder
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"fipsReady": h.svc.Ready(),
	})
}

func (h *handlers) geocode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address string `json:"address"`
	}
	if !decodeBody(w, r, &req) || strings.TrimSpace(req.Address) == "" {
		writeError(w, http.StatusBadRequest, msgAddressRequired)
		return
	}

	result, err := h.svc.Geocode(r.Context(), req.Address)
	switch {
	case eris.Is(err, geocoding.ErrNoResults):
		writeError(w, http.StatusNotFound, geocoding.ErrNoResults.Error())
	case err != nil:
		logFailure(r, "geocode", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
	default:
		writeJSON(w, http.StatusOK, result)
	}
}

func (h *handlers) getPlace(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlaceID string `json:"placeId"`
	}
	if !decodeBody(w, r, &req) || strings.TrimSpace(req.PlaceID) == "" {
		writeError(w, http.StatusBadRequest, msgPlaceIDRequired)
		return
	}

	result, err := h.svc.Place(r.Context(), req.PlaceID)
	switch {
	case eris.Is(err, geocoding.ErrPlaceNotFound):
		writeError(w, http.StatusNotFound, geocoding.ErrPlaceNotFound.Error())
	case err != nil:
		logFailure(r, "getplace", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
	default:
		writeJSON(w, http.StatusOK, result)
	}
}

func (h *handlers) suggestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	partial := q.Get("partialAddress")
	if partial == "" {
		writeError(w, http.StatusBadRequest, msgPartialRequired)
		return
	}

	maxResults := geocoding.DefaultMaxSuggestions
	if n, err := strconv.Atoi(q.Get("maxResults")); err == nil && n > 0 {
		maxResults = n
	}

	var bias *location.Position
	lon, lonErr := strconv.ParseFloat(q.Get("biasLon"), 64)
	lat, latErr := strconv.ParseFloat(q.Get("biasLat"), 64)
	if lonErr == nil && latErr == nil {
		bias = &location.Position{Longitude: lon, Latitude: lat}
	}

	suggestions, err := h.svc.Suggest(r.Context(), partial, maxResults, bias)
	if err != nil {
		logFailure(r, "suggestions", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

func (h *handlers) mapConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.MapConfig())
}

func (h *handlers) lookupFIPS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	state := q.Get("state")
	if state == "" {
		writeError(w, http.StatusBadRequest, msgStateRequired)
		return
	}

	codes, err := h.svc.Lookup(r.Context(), state, q.Get("county"))
	if err != nil {
		logFailure(r, "fips", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	writeJSON(w, http.StatusOK, codes)
}

// decodeBody reads a JSON object into v. It reports false for a missing or
// malformed body.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		zap.L().Debug("api: invalid request body", zap.String("path", r.URL.Path), zap.Error(err))
		return false
	}
	return true
}

func logFailure(r *http.Request, route string, err error) {
	zap.L().Error("api: request failed",
		zap.String("route", route),
		zap.String("request_id", RequestIDFrom(r.Context())),
		zap.Error(err),
	)
}
