package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dojosmash/dojo-smash/internal/api/request"
	"github.com/dojosmash/dojo-smash/internal/api/response"
	"github.com/dojosmash/dojo-smash/internal/model"
	"github.com/dojosmash/dojo-smash/internal/services/weekly"
)

// WeeklyHandler handles weekly registration endpoints
type WeeklyHandler struct {
	weekly *weekly.Service
}

// NewWeeklyHandler creates a new weekly handler
func NewWeeklyHandler(weekly *weekly.Service) *WeeklyHandler {
	return &WeeklyHandler{weekly: weekly}
}

// List handles GET /conteo-semanal[?semana=]
func (h *WeeklyHandler) List(w http.ResponseWriter, r *http.Request) {
	regs, err := h.weekly.List(r.Context(), r.URL.Query().Get("semana"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RegistrationsFromModel(regs))
}

// LastTwoWeeks handles GET /conteo-semanal/ultimas-dos-semanas
func (h *WeeklyHandler) LastTwoWeeks(w http.ResponseWriter, r *http.Request) {
	groups, err := h.weekly.LastTwoWeeks(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.WeekGroupsFromService(groups))
}

// Register handles POST /conteo-semanal
func (h *WeeklyHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	if req.UsuarioID == "" {
		WriteError(w, r, NewInvalidRequestError("usuarioId is required"))
		return
	}

	reg, err := h.weekly.RegisterOne(r.Context(), model.UserID(req.UsuarioID), req.Semana, req.Model())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.RegistrationFromModel(reg))
}

// RegisterBatch handles POST /conteo-semanal/batch
func (h *WeeklyHandler) RegisterBatch(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterBatchRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	entries := make([]weekly.Entry, len(req.Registros))
	for i, e := range req.Registros {
		if e.UsuarioID == "" {
			WriteError(w, r, NewInvalidRequestError("every entry needs a usuarioId"))
			return
		}
		entries[i] = weekly.Entry{UserID: model.UserID(e.UsuarioID), Deltas: e.Model()}
	}

	regs, err := h.weekly.RegisterBatch(r.Context(), req.Semana, entries)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.RegistrationsFromModel(regs))
}

// Edit handles PUT /conteo-semanal/{id}
func (h *WeeklyHandler) Edit(w http.ResponseWriter, r *http.Request) {
	var req request.Points
	if err := decode(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	id := model.RegistrationID(mux.Vars(r)["id"])
	reg, err := h.weekly.Edit(r.Context(), id, req.Model())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RegistrationFromModel(reg))
}
