package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dojosmash/dojo-smash/internal/api/request"
	"github.com/dojosmash/dojo-smash/internal/api/response"
	"github.com/dojosmash/dojo-smash/internal/model"
	"github.com/dojosmash/dojo-smash/internal/services/wager"
)

// WagerHandler handles wager endpoints
type WagerHandler struct {
	wagers *wager.Service
}

// NewWagerHandler creates a new wager handler
func NewWagerHandler(wagers *wager.Service) *WagerHandler {
	return &WagerHandler{wagers: wagers}
}

func wagerID(r *http.Request) model.WagerID {
	return model.WagerID(mux.Vars(r)["id"])
}

// ListPending handles GET /apuestas
func (h *WagerHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	list, err := h.wagers.ListPending(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.WagersFromModel(list))
}

// ListHistory handles GET /apuestas/historial
func (h *WagerHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	list, err := h.wagers.ListHistory(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.WagersFromModel(list))
}

// Get handles GET /apuestas/{id}
func (h *WagerHandler) Get(w http.ResponseWriter, r *http.Request) {
	wg, err := h.wagers.Get(r.Context(), wagerID(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.WagerFromModel(wg))
}

// Create handles POST /apuestas
func (h *WagerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateWagerRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	category, err := model.ParseCategory(req.TipoPunto)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	participants := make([]model.UserID, len(req.Participantes))
	for i, p := range req.Participantes {
		participants[i] = model.UserID(p)
	}

	wg, err := h.wagers.Create(r.Context(), wager.CreateParams{
		Participants: participants,
		Category:     category,
		Stake:        req.Cantidad,
		Description:  req.Descripcion,
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.WagerFromModel(wg))
}

// Resolve handles POST /apuestas/{id}/resolver
func (h *WagerHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req request.ResolveWagerRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	if req.Ganador == "" {
		WriteError(w, r, NewInvalidRequestError("ganador is required"))
		return
	}

	res, err := h.wagers.Resolve(r.Context(), wagerID(r), model.UserID(req.Ganador))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ResolutionFromService(res))
}

// Cancel handles DELETE /apuestas/{id}
func (h *WagerHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	wg, err := h.wagers.Cancel(r.Context(), wagerID(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.WagerFromModel(wg))
}
