package model

import (
	"fmt"
	"time"
)

// Game is one of the arcade mini-games with a leaderboard
type Game string

const (
	GameFlappyYoshi Game = "flappy-yoshi"
	GameSnake       Game = "snake"
	GameTetris      Game = "tetris"
	GamePacman      Game = "pacman"
)

// Games lists every game with a board
var Games = []Game{GameFlappyYoshi, GameSnake, GameTetris, GamePacman}

// ParseGame validates a game id
func ParseGame(s string) (Game, error) {
	for _, g := range Games {
		if Game(s) == g {
			return g, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGame, s)
}

// Highscore is a user's best score for one game
type Highscore struct {
	Game       Game      `bson:"game"`
	UserID     UserID    `bson:"userId"`
	Score      int       `bson:"score"`
	AchievedAt time.Time `bson:"achievedAt"`
	UpdatedAt  time.Time `bson:"updatedAt"`
}

// Offer ratchets the stored score. It returns true if score beat the current best.
func (h *Highscore) Offer(score int, at time.Time) bool {
	h.UpdatedAt = at
	if score <= h.Score {
		return false
	}
	h.Score = score
	h.AchievedAt = at
	return true
}
