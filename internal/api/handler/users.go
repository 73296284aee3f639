package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dojosmash/dojo-smash/internal/api/request"
	"github.com/dojosmash/dojo-smash/internal/api/response"
	"github.com/dojosmash/dojo-smash/internal/model"
	"github.com/dojosmash/dojo-smash/internal/services/users"
)

// UserHandler handles user endpoints
type UserHandler struct {
	users *users.Service
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *users.Service) *UserHandler {
	return &UserHandler{users: users}
}

func userID(r *http.Request) model.UserID {
	return model.UserID(mux.Vars(r)["id"])
}

// List handles GET /usuarios
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.users.List(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.UsersFromModel(list))
}

// Get handles GET /usuarios/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), userID(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.UserFromModel(user))
}

// Create handles POST /usuarios
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateUserRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	user, err := h.users.Create(r.Context(), req.Nombre, req.Avatar)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.UserFromModel(user))
}

// Update handles PUT /usuarios/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateUserRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	user, err := h.users.Update(r.Context(), userID(r), req.Patch())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.UserFromModel(user))
}

// ApplyPoints handles PUT /usuarios/{id}/puntos
func (h *UserHandler) ApplyPoints(w http.ResponseWriter, r *http.Request) {
	var raw map[string]float64
	if err := decode(r, &raw); err != nil {
		WriteError(w, r, err)
		return
	}
	delta, err := model.ParsePointDelta(raw)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	user, err := h.users.ApplyPointDelta(r.Context(), userID(r), delta)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.UserFromModel(user))
}

// Delete handles DELETE /usuarios/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), userID(r)); err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "Usuario eliminado"})
}

// History handles GET /usuarios/{id}/historial
func (h *UserHandler) History(w http.ResponseWriter, r *http.Request) {
	regs, err := h.users.History(r.Context(), userID(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RegistrationsFromModel(regs))
}
