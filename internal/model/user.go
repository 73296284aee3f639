package model

import (
	"fmt"
	"strings"
	"time"
)

// UserID uniquely identifies a participant
type UserID string

// DeletedUserName is shown for historical records whose user no longer exists
const DeletedUserName = "(eliminado)"

// Avatar is one of the fixed character ids a user can pick
type Avatar string

// DefaultAvatar is assigned when none is given
const DefaultAvatar Avatar = "mario"

// Avatars lists the selectable characters
var Avatars = []Avatar{
	"mario", "luigi", "peach", "daisy", "toad", "yoshi",
	"bowser", "wario", "waluigi", "donkey-kong", "diddy-kong", "koopa",
	"goomba", "boo", "shy-guy", "rosalina", "kirby", "link",
}

// ParseAvatar validates an avatar id; empty means the default
func ParseAvatar(s string) (Avatar, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultAvatar, nil
	}
	for _, a := range Avatars {
		if Avatar(s) == a {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAvatar, s)
}

// User is one participant of the point game
type User struct {
	ID        UserID    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"nombre"`
	Points    Points    `bson:"points" json:"puntos"`
	Debt      float64   `bson:"debt" json:"deuda"`
	Avatar    Avatar    `bson:"avatar" json:"avatar"`
	PhotoURL  string    `bson:"photoUrl,omitempty" json:"fotoUrl,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Total is the derived score. It is never persisted.
func (u *User) Total() float64 {
	return u.Points.Total()
}

// Clone returns a copy safe to mutate
func (u *User) Clone() *User {
	c := *u
	return &c
}

// ApplyDelta adds every amount in d to the matching counter
func (u *User) ApplyDelta(d PointDelta) {
	for c, v := range d {
		u.Points.Add(c, v)
	}
}

// PayDebt reduces the debt by amount, floored at zero
func (u *User) PayDebt(amount float64) {
	u.Debt = AddExact(u.Debt, -amount)
	if u.Debt < 0 {
		u.Debt = 0
	}
}

// UserDirectory indexes users by id for joining names onto historical records
type UserDirectory map[UserID]*User

// NewUserDirectory builds a directory from a user listing
func NewUserDirectory(users []*User) UserDirectory {
	d := make(UserDirectory, len(users))
	for _, u := range users {
		d[u.ID] = u
	}
	return d
}

// Name returns the user's name, or DeletedUserName if the user no longer exists
func (d UserDirectory) Name(id UserID) string {
	if u, ok := d[id]; ok {
		return u.Name
	}
	return DeletedUserName
}
