package handlers

import (
	"net/http"

	"github.com/vantrack/server/internal/fleet"
	"github.com/vantrack/server/internal/logging"
)

// VehicleHandler serves the operator lookup and sighting endpoints
type VehicleHandler struct {
	resolver *fleet.Resolver
	recorder *fleet.Recorder
	roster   *fleet.Roster
	log      logging.Logger
}

// NewVehicleHandler creates a new vehicle handler
func NewVehicleHandler(resolver *fleet.Resolver, recorder *fleet.Recorder, roster *fleet.Roster, log logging.Logger) *VehicleHandler {
	return &VehicleHandler{resolver: resolver, recorder: recorder, roster: roster, log: log}
}

// HandleSearch handles GET /api/vehicles/search?plate=
func (h *VehicleHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	res, err := h.resolver.Search(r.Context(), r.URL.Query().Get("plate"))
	if err != nil {
		respondWithFleetError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, searchResponse{
		Vehicle:  toVehicleResponse(res.Vehicle),
		Flexible: res.Flexible,
	})
}

// HandleGet handles GET /api/vehicles/{id}
func (h *VehicleHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := vehicleID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid vehicle id")
		return
	}
	v, err := h.roster.Get(r.Context(), id)
	if err != nil {
		respondWithFleetError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toVehicleResponse(v))
}

// HandleSighting handles POST /api/vehicles/{id}/sighting
func (h *VehicleHandler) HandleSighting(w http.ResponseWriter, r *http.Request) {
	id, ok := vehicleID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid vehicle id")
		return
	}
	v, err := h.recorder.MarkSeen(r.Context(), id)
	if err != nil {
		respondWithFleetError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toVehicleResponse(v))
}
