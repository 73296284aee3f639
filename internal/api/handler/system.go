package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/dojosmash/dojo-smash/internal/api/middleware"
	"github.com/dojosmash/dojo-smash/internal/api/request"
	"github.com/dojosmash/dojo-smash/internal/api/response"
	"github.com/dojosmash/dojo-smash/internal/dependencies/clock"
	"github.com/dojosmash/dojo-smash/internal/services/auth"
)

// Pinger reports whether the storage backend is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler handles health and login endpoints
type SystemHandler struct {
	auth    *auth.Service
	storage Pinger
	clock   clock.Clock
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(auth *auth.Service, storage Pinger, clock clock.Clock) *SystemHandler {
	return &SystemHandler{auth: auth, storage: storage, clock: clock}
}

// Health handles GET /health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, storage, code := "OK", "ok", http.StatusOK
	if err := h.storage.Ping(ctx); err != nil {
		status, storage, code = "DEGRADED", "unreachable", http.StatusServiceUnavailable
	}
	response.JSON(w, code, response.Health{
		Status:    status,
		Timestamp: h.clock.Now(),
		Storage:   storage,
	})
}

// Login handles POST /auth/login
func (h *SystemHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	if req.Clave == "" {
		WriteError(w, r, NewInvalidRequestError("clave is required"))
		return
	}

	session, err := h.auth.Login(req.Clave)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.LoginFromSession(session))
}

// Logout handles POST /auth/logout
func (h *SystemHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if session := middleware.GetSession(r.Context()); session != nil {
		h.auth.InvalidateSession(session.Token)
	}
	response.NoContent(w)
}
