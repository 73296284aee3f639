package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dojosmash/dojo-smash/internal/api/request"
	"github.com/dojosmash/dojo-smash/internal/api/response"
	"github.com/dojosmash/dojo-smash/internal/model"
	"github.com/dojosmash/dojo-smash/internal/services/highscore"
)

// HighscoreHandler handles arcade leaderboard endpoints
type HighscoreHandler struct {
	highscores *highscore.Service
}

// NewHighscoreHandler creates a new highscore handler
func NewHighscoreHandler(highscores *highscore.Service) *HighscoreHandler {
	return &HighscoreHandler{highscores: highscores}
}

func game(r *http.Request) model.Game {
	return model.Game(mux.Vars(r)["juego"])
}

// All handles GET /highscores
func (h *HighscoreHandler) All(w http.ResponseWriter, r *http.Request) {
	boards, err := h.highscores.All(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	out := make(map[string][]response.Highscore, len(boards))
	for g, entries := range boards {
		out[string(g)] = response.HighscoresFromService(entries)
	}
	response.JSON(w, http.StatusOK, out)
}

// Top handles GET /highscores/{juego}[?limit=]
func (h *HighscoreHandler) Top(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	entries, err := h.highscores.TopForGame(r.Context(), game(r), limit)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.HighscoresFromService(entries))
}

// ForUser handles GET /highscores/{juego}/usuario/{id}
func (h *HighscoreHandler) ForUser(w http.ResponseWriter, r *http.Request) {
	entry, err := h.highscores.ForUser(r.Context(), game(r), userID(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.HighscoreFromService(*entry))
}

// GlobalBest handles GET /highscores/{juego}/global
func (h *HighscoreHandler) GlobalBest(w http.ResponseWriter, r *http.Request) {
	entry, err := h.highscores.GlobalBest(r.Context(), game(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.HighscoreFromService(*entry))
}

// Submit handles POST /highscores
func (h *HighscoreHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitHighscoreRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	if req.UsuarioID == "" {
		WriteError(w, r, NewInvalidRequestError("usuarioId is required"))
		return
	}
	if req.Puntuacion == nil {
		WriteError(w, r, NewInvalidRequestError("puntuacion is required"))
		return
	}

	res, err := h.highscores.Submit(r.Context(), model.Game(req.Juego), model.UserID(req.UsuarioID), *req.Puntuacion)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Submission{
		Highscore:   response.HighscoreFromService(res.Entry),
		NuevoRecord: res.NewRecord,
	})
}
