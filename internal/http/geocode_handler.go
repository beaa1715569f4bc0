package httpapi

import (
	"net/http"

	"safezone/internal/geocode"

	"go.uber.org/zap"
)

// GeocodeHandler 离线地理编码
type GeocodeHandler struct {
	geocoder *geocode.Geocoder
	logger   *zap.Logger
}

func NewGeocodeHandler(geocoder *geocode.Geocoder, logger *zap.Logger) *GeocodeHandler {
	return &GeocodeHandler{geocoder: geocoder, logger: logger}
}

// Autocomplete ?q=
func (h *GeocodeHandler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Ok(h.geocoder.Autocomplete(r.URL.Query().Get("q"))))
}

// Search ?address=
func (h *GeocodeHandler) Search(w http.ResponseWriter, r *http.Request) {
	res, ok := h.geocoder.Geocode(r.URL.Query().Get("address"))
	if !ok {
		writeJSON(w, http.StatusNotFound, Fail("address not found"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(res))
}

// Reverse ?lat=&lng=
func (h *GeocodeHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, ok1 := parseFloat(q.Get("lat"))
	lng, ok2 := parseFloat(q.Get("lng"))
	if !ok1 || !ok2 {
		writeJSON(w, http.StatusBadRequest, Fail("lat and lng are required"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(h.geocoder.Reverse(lat, lng)))
}
