package handlers

import (
	"net/http"
	"strconv"

	"github.com/vantrack/server/internal/auth"
	"github.com/vantrack/server/internal/fleet"
	"github.com/vantrack/server/internal/logging"
	"github.com/vantrack/server/internal/repo"
)

const (
	defaultAccessLogLimit = 50
	maxAccessLogLimit     = 500
)

// AdminHandler serves the roster CRUD and daily code endpoints
type AdminHandler struct {
	roster      *fleet.Roster
	regenerator *auth.CodeRegenerator
	accessLog   repo.AccessLogRepo
	log         logging.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(roster *fleet.Roster, regenerator *auth.CodeRegenerator, accessLog repo.AccessLogRepo, log logging.Logger) *AdminHandler {
	return &AdminHandler{roster: roster, regenerator: regenerator, accessLog: accessLog, log: log}
}

// HandleList handles GET /admin/api/vehicles?q=
func (h *AdminHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.roster.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondWithFleetError(w, err)
		return
	}
	out := make([]vehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, toVehicleResponse(v))
	}
	respondJSON(w, http.StatusOK, out)
}

// HandleCreate handles POST /admin/api/vehicles
func (h *AdminHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req vehicleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	v, err := h.roster.Create(r.Context(), req.input())
	if err != nil {
		respondWithFleetError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toVehicleResponse(v))
}

// HandleGet handles GET /admin/api/vehicles/{id}
func (h *AdminHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
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

// HandleUpdate handles PUT /admin/api/vehicles/{id}
func (h *AdminHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := vehicleID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid vehicle id")
		return
	}
	var req vehicleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	v, err := h.roster.Update(r.Context(), id, req.input())
	if err != nil {
		respondWithFleetError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toVehicleResponse(v))
}

// HandleDelete handles DELETE /admin/api/vehicles/{id}
func (h *AdminHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := vehicleID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid vehicle id")
		return
	}
	if err := h.roster.Delete(r.Context(), id); err != nil {
		respondWithFleetError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDailyCode handles GET /admin/api/daily-code
func (h *AdminHandler) HandleDailyCode(w http.ResponseWriter, r *http.Request) {
	ac, ok, err := h.regenerator.Current(r.Context())
	if err != nil {
		h.log.Error(r.Context(), "load daily code failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, codeResponse{
			Error:   "Error al consultar el código diario",
			Details: err.Error(),
		})
		return
	}
	resp := codeResponse{Success: true, Fecha: ac.Date, Generated: &ok}
	if ok {
		resp.Codigo = ac.Code
	} else {
		resp.Mensaje = "Código diario no generado"
	}
	respondJSON(w, http.StatusOK, resp)
}

// HandleRegenerate handles POST /admin/api/daily-code/regenerate
func (h *AdminHandler) HandleRegenerate(w http.ResponseWriter, r *http.Request) {
	ac, err := h.regenerator.Regenerate(r.Context())
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, codeResponse{
			Error:   "Error al regenerar el código diario",
			Details: err.Error(),
		})
		return
	}
	respondJSON(w, http.StatusOK, codeResponse{
		Success: true,
		Codigo:  ac.Code,
		Fecha:   ac.Date,
		Mensaje: "Código diario regenerado exitosamente",
	})
}

// HandleAccessLog handles GET /admin/api/access-log?limit=
func (h *AdminHandler) HandleAccessLog(w http.ResponseWriter, r *http.Request) {
	limit := defaultAccessLogLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondWithError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxAccessLogLimit)
	}

	entries, err := h.accessLog.ListRecent(r.Context(), limit)
	if err != nil {
		h.log.Error(r.Context(), "list access log failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	out := make([]accessLogResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, accessLogResponse{
			ID:         e.ID.String(),
			CodeUsed:   e.CodeUsed,
			UserType:   string(e.UserType),
			AccessedAt: e.AccessedAt,
			IP:         e.IP,
		})
	}
	respondJSON(w, http.StatusOK, out)
}
