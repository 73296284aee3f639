package model

import (
	"sort"
	"time"
)

// RegistrationID identifies a weekly registration
type RegistrationID string

// Modification is one entry of a registration's edit history
type Modification struct {
	At       time.Time `bson:"at"`
	Previous Points    `bson:"previous"`
	New      Points    `bson:"new"`
}

// WeeklyRegistration is one submission of point deltas for a user and week.
// The log of these records is the source of truth for the running counters.
type WeeklyRegistration struct {
	ID            RegistrationID `bson:"_id"`
	UserID        UserID         `bson:"userId"`
	Week          Week           `bson:"week"`
	Deltas        Points         `bson:"deltas"`
	Modifications []Modification `bson:"modifications"`
	CreatedAt     time.Time      `bson:"createdAt"`
	UpdatedAt     time.Time      `bson:"updatedAt"`
}

// Clone returns a deep copy
func (r *WeeklyRegistration) Clone() *WeeklyRegistration {
	c := *r
	c.Modifications = append([]Modification(nil), r.Modifications...)
	return &c
}

// ClaimsDojos reports whether this registration uses the user's dojos slot for the week
func (r *WeeklyRegistration) ClaimsDojos() bool {
	return r.Deltas.Dojos != 0
}

// SortRegistrationsNewestFirst orders by CreatedAt descending, then id descending
func SortRegistrationsNewestFirst(regs []*WeeklyRegistration) {
	sort.Slice(regs, func(i, j int) bool {
		if !regs[i].CreatedAt.Equal(regs[j].CreatedAt) {
			return regs[i].CreatedAt.After(regs[j].CreatedAt)
		}
		return regs[i].ID > regs[j].ID
	})
}
