package model

import "time"

// WagerID identifies a wager
type WagerID string

// WagerState is the lifecycle state of a wager
type WagerState string

const (
	WagerStatePending   WagerState = "pendiente" // Created, awaiting a winner
	WagerStateResolved  WagerState = "resuelta"  // Winner declared, points moved
	WagerStateCancelled WagerState = "cancelada" // Called off, no points moved
)

// MinWagerParticipants is the smallest number of users a wager can have
const MinWagerParticipants = 2

// Wager is a bet between users staked in one point category
type Wager struct {
	ID           WagerID    `bson:"_id" json:"id"`
	Participants []UserID   `bson:"participants" json:"participantes"`
	Category     Category   `bson:"category" json:"tipoPunto"`
	Stake        float64    `bson:"stake" json:"cantidad"`
	State        WagerState `bson:"state" json:"estado"`
	Winner       UserID     `bson:"winner,omitempty" json:"ganador,omitempty"`
	Description  string     `bson:"description,omitempty" json:"descripcion,omitempty"`
	CreatedAt    time.Time  `bson:"createdAt" json:"createdAt"`
	ResolvedAt   *time.Time `bson:"resolvedAt,omitempty" json:"resueltaAt,omitempty"`
	CancelledAt  *time.Time `bson:"cancelledAt,omitempty" json:"canceladaAt,omitempty"`
}

// Clone returns a deep copy
func (w *Wager) Clone() *Wager {
	c := *w
	c.Participants = append([]UserID(nil), w.Participants...)
	return &c
}

// IsPending reports whether the wager can still be resolved or cancelled
func (w *Wager) IsPending() bool {
	return w.State == WagerStatePending
}

// HasParticipant reports whether id takes part in the wager
func (w *Wager) HasParticipant(id UserID) bool {
	for _, p := range w.Participants {
		if p == id {
			return true
		}
	}
	return false
}

// Payout is what the winner receives: the stake from each loser
func (w *Wager) Payout() float64 {
	return MulExact(w.Stake, float64(len(w.Participants)-1))
}

// Transfers returns the point change per participant when winner takes the wager.
// Each loser gives up the stake, the winner gains stake × losers, so the values
// always sum to zero.
func (w *Wager) Transfers(winner UserID) (map[UserID]float64, error) {
	if !w.HasParticipant(winner) {
		return nil, ErrWinnerNotParticipant
	}
	transfers := make(map[UserID]float64, len(w.Participants))
	for _, p := range w.Participants {
		if p == winner {
			continue
		}
		transfers[p] = -w.Stake
	}
	transfers[winner] = w.Payout()
	return transfers, nil
}
