package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vantrack/server/internal/fleet"
)

const maxBodyBytes = 1 << 20

// respondWithError sends a JSON error response
func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, map[string]string{"error": message})
}

func respondJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func vehicleID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// respondWithFleetError maps fleet errors to status codes. Anything
// unrecognised is a store failure and gets a generic message.
func respondWithFleetError(w http.ResponseWriter, err error) {
	var ve *fleet.ValidationError
	var nf *fleet.PlateNotFoundError
	switch {
	case errors.As(err, &ve):
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Message, "field": ve.Field})
	case errors.As(err, &nf):
		respondWithError(w, http.StatusNotFound, nf.Error())
	case errors.Is(err, fleet.ErrVehicleNotFound):
		respondWithError(w, http.StatusNotFound, "vehicle not found")
	case errors.Is(err, fleet.ErrEmptyPlate):
		respondWithError(w, http.StatusBadRequest, "plate is required")
	default:
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
