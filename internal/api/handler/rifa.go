package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dojosmash/dojo-smash/internal/api/request"
	"github.com/dojosmash/dojo-smash/internal/api/response"
	"github.com/dojosmash/dojo-smash/internal/model"
	"github.com/dojosmash/dojo-smash/internal/services/rifa"
)

// RifaHandler handles raffle endpoints
type RifaHandler struct {
	rifas *rifa.Service
}

// NewRifaHandler creates a new rifa handler
func NewRifaHandler(rifas *rifa.Service) *RifaHandler {
	return &RifaHandler{rifas: rifas}
}

// List handles GET /dojo-rifa
func (h *RifaHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.rifas.List(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, list)
}

// Latest handles GET /dojo-rifa/ultima
func (h *RifaHandler) Latest(w http.ResponseWriter, r *http.Request) {
	latest, err := h.rifas.Latest(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, latest)
}

// Save handles POST /dojo-rifa
func (h *RifaHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req request.SaveRifaRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	record, err := h.rifas.Save(r.Context(), req.Nombre, req.Model())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, record)
}

// Spin handles POST /dojo-rifa/girar
func (h *RifaHandler) Spin(w http.ResponseWriter, r *http.Request) {
	var req request.SpinRifaRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	assignments, err := h.rifas.Spin(req.Items, req.Jugadores)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"asignaciones": assignments})
}

// Delete handles DELETE /dojo-rifa/{id}
func (h *RifaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.rifas.Delete(r.Context(), model.RifaID(mux.Vars(r)["id"])); err != nil {
		WriteError(w, r, err)
		return
	}
	response.NoContent(w)
}

// Clear handles DELETE /dojo-rifa
func (h *RifaHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.rifas.Clear(r.Context()); err != nil {
		WriteError(w, r, err)
		return
	}
	response.NoContent(w)
}
