package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	// User events
	EventUserCreated   EventType = "usuario_creado"
	EventUserUpdated   EventType = "usuario_actualizado"
	EventUserDeleted   EventType = "usuario_eliminado"
	EventPointsUpdated EventType = "puntos_actualizados"

	// Weekly registration events
	EventRegistrationCreated EventType = "registro_semanal"
	EventRegistrationEdited  EventType = "registro_editado"

	// Wager events
	EventWagerCreated   EventType = "apuesta_creada"
	EventWagerResolved  EventType = "apuesta_resuelta"
	EventWagerCancelled EventType = "apuesta_cancelada"

	// Bank events
	EventPaymentRecorded EventType = "pago_registrado"

	// Arcade events
	EventNewHighscore EventType = "highscore_nuevo"
	EventRifaSaved    EventType = "rifa_guardada"
)

// Event is published after a ledger change has been committed
type Event struct {
	Type      EventType `json:"tipo"`
	Timestamp time.Time `json:"timestamp"`
	UserIDs   []UserID  `json:"usuarios,omitempty"` // Users whose balances or records changed
	Payload   any       `json:"datos,omitempty"`    // Type-specific data
}

// PointsUpdatedPayload contains data for points updated events
type PointsUpdatedPayload struct {
	UserID UserID     `json:"usuarioId"`
	Delta  PointDelta `json:"delta"`
}

// RegistrationPayload contains data for weekly registration events
type RegistrationPayload struct {
	Week          Week             `json:"semana"`
	Registrations []RegistrationID `json:"registros"`
}

// WagerResolvedPayload contains data for wager resolved events
type WagerResolvedPayload struct {
	WagerID   WagerID            `json:"apuestaId"`
	Winner    UserID             `json:"ganador"`
	Category  Category           `json:"tipoPunto"`
	Transfers map[UserID]float64 `json:"transferencias"`
}

// PaymentPayload contains data for payment events
type PaymentPayload struct {
	TransactionID TransactionID `json:"transaccionId"`
	UserID        UserID        `json:"usuarioId"`
	Amount        float64       `json:"monto"`
	BankTotal     float64       `json:"totalBanco"`
}

// HighscorePayload contains data for new highscore events
type HighscorePayload struct {
	Game   Game   `json:"juego"`
	UserID UserID `json:"usuarioId"`
	Score  int    `json:"puntuacion"`
}
