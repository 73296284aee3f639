package highscore

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/dojosmash/dojo-smash/internal/dependencies/clock"
	"github.com/dojosmash/dojo-smash/internal/events"
	"github.com/dojosmash/dojo-smash/internal/model"
	"github.com/dojosmash/dojo-smash/internal/storage"
)

const (
	// DefaultTop is the board size when none is asked for
	DefaultTop = 10
	// MaxTop caps the board size
	MaxTop = 100
)

// Service keeps the best score per user and game
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	events  events.Publisher
	logger  *slog.Logger
}

// New creates a new highscore Service
func New(storage storage.Storage, clock clock.Clock, events events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		events:  events,
		logger:  logger.With(slog.String("service", "highscore")),
	}
}

// Entry is a highscore joined with its user's name
type Entry struct {
	*model.Highscore
	UserName string
}

// Result is the outcome of a submission
type Result struct {
	Entry
	NewRecord bool
}

// Submit offers a score. The stored score only ever goes up.
func (s *Service) Submit(ctx context.Context, game model.Game, userID model.UserID, score int) (*Result, error) {
	if _, err := model.ParseGame(string(game)); err != nil {
		return nil, err
	}
	if score < 0 {
		return nil, model.ErrInvalidScore
	}

	var res *Result
	err := s.storage.Update(ctx, func(ctx context.Context, tx storage.Tx) error {
		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		hs, err := tx.GetHighscore(ctx, game, userID)
		isNew := false
		switch {
		case errors.Is(err, model.ErrHighscoreNotFound):
			hs = &model.Highscore{Game: game, UserID: userID, Score: score, AchievedAt: now, UpdatedAt: now}
			isNew = true
		case err != nil:
			return err
		default:
			isNew = hs.Offer(score, now)
		}

		res = &Result{Entry: Entry{Highscore: hs, UserName: user.Name}, NewRecord: isNew}
		return tx.SaveHighscore(ctx, hs)
	})
	if err != nil {
		return nil, err
	}

	if res.NewRecord {
		s.logger.Info("new highscore",
			slog.String("game", string(game)),
			slog.String("user_id", string(userID)),
			slog.Int("score", res.Score))
		s.events.Publish(ctx, model.Event{
			Type:      model.EventNewHighscore,
			Timestamp: s.clock.Now(),
			UserIDs:   []model.UserID{userID},
			Payload:   model.HighscorePayload{Game: game, UserID: userID, Score: res.Score},
		})
	}
	return res, nil
}

// ClampTop maps a requested board size onto [1, MaxTop]
func ClampTop(n int) int {
	switch {
	case n <= 0:
		return DefaultTop
	case n > MaxTop:
		return MaxTop
	default:
		return n
	}
}

// TopForGame returns the best n scores, highest first. Ties go to whoever got
// there first.
func (s *Service) TopForGame(ctx context.Context, game model.Game, n int) ([]Entry, error) {
	if _, err := model.ParseGame(string(game)); err != nil {
		return nil, err
	}
	scores, err := s.storage.ListHighscores(ctx, game)
	if err != nil {
		return nil, err
	}
	dir, err := s.directory(ctx)
	if err != nil {
		return nil, err
	}

	rank(scores)
	if n = ClampTop(n); len(scores) > n {
		scores = scores[:n]
	}
	entries := make([]Entry, len(scores))
	for i, hs := range scores {
		entries[i] = Entry{Highscore: hs, UserName: dir.Name(hs.UserID)}
	}
	return entries, nil
}

// GlobalBest returns the top score of a game
func (s *Service) GlobalBest(ctx context.Context, game model.Game) (*Entry, error) {
	top, err := s.TopForGame(ctx, game, 1)
	if err != nil {
		return nil, err
	}
	if len(top) == 0 {
		return nil, model.ErrHighscoreNotFound
	}
	return &top[0], nil
}

// ForUser returns one user's best in a game
func (s *Service) ForUser(ctx context.Context, game model.Game, userID model.UserID) (*Entry, error) {
	if _, err := model.ParseGame(string(game)); err != nil {
		return nil, err
	}
	hs, err := s.storage.GetHighscore(ctx, game, userID)
	if err != nil {
		return nil, err
	}
	dir, err := s.directory(ctx)
	if err != nil {
		return nil, err
	}
	return &Entry{Highscore: hs, UserName: dir.Name(userID)}, nil
}

// All returns the default-sized board of every game
func (s *Service) All(ctx context.Context) (map[model.Game][]Entry, error) {
	boards := make(map[model.Game][]Entry, len(model.Games))
	for _, g := range model.Games {
		top, err := s.TopForGame(ctx, g, DefaultTop)
		if err != nil {
			return nil, err
		}
		boards[g] = top
	}
	return boards, nil
}

func (s *Service) directory(ctx context.Context) (model.UserDirectory, error) {
	users, err := s.storage.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return model.NewUserDirectory(users), nil
}

// rank sorts by score descending, then earliest AchievedAt, then user id
func rank(scores []*model.Highscore) {
	sort.Slice(scores, func(i, j int) bool {
		a, b := scores[i], scores[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.AchievedAt.Equal(b.AchievedAt) {
			return a.AchievedAt.Before(b.AchievedAt)
		}
		return a.UserID < b.UserID
	})
}
