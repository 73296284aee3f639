package model

import "time"

// RifaID identifies a persisted raffle
type RifaID string

// RifaAssignment pairs a raffled item with the player it landed on
type RifaAssignment struct {
	Item   string `bson:"item" json:"item"`
	Player string `bson:"player" json:"jugador"`
}

// RifaRecord is a snapshot of a completed raffle
type RifaRecord struct {
	ID          RifaID           `bson:"_id" json:"id"`
	Name        string           `bson:"name" json:"nombre"`
	Assignments []RifaAssignment `bson:"assignments" json:"asignaciones"`
	Count       int              `bson:"count" json:"cantidad"`
	CreatedAt   time.Time        `bson:"createdAt" json:"createdAt"`
}

// Clone returns a deep copy
func (r *RifaRecord) Clone() *RifaRecord {
	c := *r
	c.Assignments = append([]RifaAssignment(nil), r.Assignments...)
	return &c
}
