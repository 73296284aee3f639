package request

import (
	"github.com/dojosmash/dojo-smash/internal/model"
	"github.com/dojosmash/dojo-smash/internal/services/users"
)

// LoginRequest is the request body for logging in with the admin key
type LoginRequest struct {
	Clave string `json:"clave"`
}

// CreateUserRequest is the request body for creating a user
type CreateUserRequest struct {
	Nombre string `json:"nombre"`
	Avatar string `json:"avatar,omitempty"`
}

// UpdateUserRequest is a partial user update. Omitted fields are left untouched.
type UpdateUserRequest struct {
	Nombre      *string  `json:"nombre,omitempty"`
	Avatar      *string  `json:"avatar,omitempty"`
	FotoURL     *string  `json:"fotoUrl,omitempty"`
	Deuda       *float64 `json:"deuda,omitempty"`
	Dojos       *float64 `json:"dojos,omitempty"`
	Pendejos    *float64 `json:"pendejos,omitempty"`
	Mimidos     *float64 `json:"mimidos,omitempty"`
	Castitontos *float64 `json:"castitontos,omitempty"`
	Chescos     *float64 `json:"chescos,omitempty"`
}

// Patch converts the request to a users.Patch
func (r UpdateUserRequest) Patch() users.Patch {
	return users.Patch{
		Name:     r.Nombre,
		Avatar:   r.Avatar,
		PhotoURL: r.FotoURL,
		Debt:     r.Deuda,
		Points: users.PointsPatch{
			Dojos:       r.Dojos,
			Pendejos:    r.Pendejos,
			Mimidos:     r.Mimidos,
			Castitontos: r.Castitontos,
			Chescos:     r.Chescos,
		},
	}
}

// Points is a set of per-category deltas. Omitted categories are zero.
type Points struct {
	Dojos       float64 `json:"dojos"`
	Pendejos    float64 `json:"pendejos"`
	Mimidos     float64 `json:"mimidos"`
	Castitontos float64 `json:"castitontos"`
	Chescos     float64 `json:"chescos"`
}

// Model converts to model.Points
func (p Points) Model() model.Points {
	return model.Points{
		Dojos:       p.Dojos,
		Pendejos:    p.Pendejos,
		Mimidos:     p.Mimidos,
		Castitontos: p.Castitontos,
		Chescos:     p.Chescos,
	}
}

// RegisterRequest is the request body for a single weekly registration.
// An empty Semana means the current week.
type RegisterRequest struct {
	UsuarioID string `json:"usuarioId"`
	Semana    string `json:"semana,omitempty"`
	Points
}

// BatchEntry is one user's line in a batch registration
type BatchEntry struct {
	UsuarioID string `json:"usuarioId"`
	Points
}

// RegisterBatchRequest is the request body for registering a whole week
type RegisterBatchRequest struct {
	Semana    string       `json:"semana,omitempty"`
	Registros []BatchEntry `json:"registros"`
}

// PaymentRequest is the request body for recording a debt payment
type PaymentRequest struct {
	UsuarioID   string  `json:"usuarioId"`
	Monto       float64 `json:"monto"`
	Descripcion string  `json:"descripcion,omitempty"`
}

// CreateWagerRequest is the request body for creating a wager
type CreateWagerRequest struct {
	Participantes []string `json:"participantes"`
	TipoPunto     string   `json:"tipoPunto"`
	Cantidad      float64  `json:"cantidad"`
	Descripcion   string   `json:"descripcion,omitempty"`
}

// ResolveWagerRequest is the request body for resolving a wager
type ResolveWagerRequest struct {
	Ganador string `json:"ganador"`
}

// SubmitHighscoreRequest is the request body for submitting a score
type SubmitHighscoreRequest struct {
	Juego      string `json:"juego"`
	UsuarioID  string `json:"usuarioId"`
	Puntuacion *int   `json:"puntuacion"`
}

// RifaAssignment pairs an item with a player
type RifaAssignment struct {
	Item    string `json:"item"`
	Jugador string `json:"jugador"`
}

// SaveRifaRequest is the request body for saving a finished raffle
type SaveRifaRequest struct {
	Nombre       string           `json:"nombre,omitempty"`
	Asignaciones []RifaAssignment `json:"asignaciones"`
}

// Model converts the assignments to model values
func (r SaveRifaRequest) Model() []model.RifaAssignment {
	out := make([]model.RifaAssignment, len(r.Asignaciones))
	for i, a := range r.Asignaciones {
		out[i] = model.RifaAssignment{Item: a.Item, Player: a.Jugador}
	}
	return out
}

// SpinRifaRequest is the request body for spinning the wheel
type SpinRifaRequest struct {
	Items     []string `json:"items"`
	Jugadores []string `json:"jugadores"`
}
