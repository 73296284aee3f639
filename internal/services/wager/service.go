package wager

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/dojosmash/dojo-smash/internal/dependencies/clock"
	"github.com/dojosmash/dojo-smash/internal/dependencies/ids"
	"github.com/dojosmash/dojo-smash/internal/events"
	"github.com/dojosmash/dojo-smash/internal/model"
	"github.com/dojosmash/dojo-smash/internal/storage"
)

// Service runs the wager lifecycle and settles resolved wagers
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	ids     ids.Generator
	events  events.Publisher
	logger  *slog.Logger
}

// New creates a new wager Service
func New(
	storage storage.Storage,
	clock clock.Clock,
	ids ids.Generator,
	events events.Publisher,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		ids:     ids,
		events:  events,
		logger:  logger.With(slog.String("service", "wager")),
	}
}

// CreateParams describes a new wager
type CreateParams struct {
	Participants []model.UserID
	Category     model.Category
	Stake        float64
	Description  string
}

// Resolution is the outcome of resolving a wager
type Resolution struct {
	Wager     *model.Wager
	Transfers map[model.UserID]float64
}

func (p CreateParams) validate() error {
	seen := make(map[model.UserID]bool, len(p.Participants))
	for _, id := range p.Participants {
		if seen[id] {
			return model.ErrDuplicateParticipant
		}
		seen[id] = true
	}
	if len(p.Participants) < model.MinWagerParticipants {
		return model.ErrTooFewParticipants
	}
	if _, err := model.ParseCategory(string(p.Category)); err != nil {
		return err
	}
	if !(p.Stake > 0) || math.IsInf(p.Stake, 0) {
		return model.ErrInvalidStake
	}
	return nil
}

// Create opens a pending wager between existing users
func (s *Service) Create(ctx context.Context, params CreateParams) (*model.Wager, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	wager := &model.Wager{
		ID:           model.WagerID(s.ids.NewID()),
		Participants: append([]model.UserID(nil), params.Participants...),
		Category:     params.Category,
		Stake:        params.Stake,
		State:        model.WagerStatePending,
		Description:  strings.TrimSpace(params.Description),
		CreatedAt:    s.clock.Now(),
	}

	err := s.storage.Update(ctx, func(ctx context.Context, tx storage.Tx) error {
		for _, id := range wager.Participants {
			if _, err := tx.GetUser(ctx, id); err != nil {
				return err
			}
		}
		return tx.SaveWager(ctx, wager)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("wager created",
		slog.String("wager_id", string(wager.ID)),
		slog.Int("participants", len(wager.Participants)),
		slog.Float64("stake", wager.Stake))
	s.publish(ctx, model.EventWagerCreated, wager.Participants, wager)
	return wager, nil
}

// Resolve declares the winner and moves the staked points in one transaction.
// Participants deleted since creation still count as losers for the payout but
// are not written.
func (s *Service) Resolve(ctx context.Context, id model.WagerID, winner model.UserID) (*Resolution, error) {
	var res *Resolution
	err := s.storage.Update(ctx, func(ctx context.Context, tx storage.Tx) error {
		wager, err := tx.GetWager(ctx, id)
		if err != nil {
			return err
		}
		if !wager.IsPending() {
			return model.ErrWagerNotPending
		}
		transfers, err := wager.Transfers(winner)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		for _, uid := range wager.Participants {
			user, err := tx.GetUser(ctx, uid)
			if errors.Is(err, model.ErrUserNotFound) {
				s.logger.Warn("wager participant deleted, skipping transfer",
					slog.String("wager_id", string(id)),
					slog.String("user_id", string(uid)))
				continue
			}
			if err != nil {
				return err
			}
			user.Points.Add(wager.Category, transfers[uid])
			user.UpdatedAt = now
			if err := tx.SaveUser(ctx, user); err != nil {
				return err
			}
		}

		wager.State = model.WagerStateResolved
		wager.Winner = winner
		wager.ResolvedAt = &now
		if err := tx.SaveWager(ctx, wager); err != nil {
			return err
		}

		res = &Resolution{Wager: wager, Transfers: transfers}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("wager resolved",
		slog.String("wager_id", string(id)),
		slog.String("winner", string(winner)))
	s.publish(ctx, model.EventWagerResolved, res.Wager.Participants, model.WagerResolvedPayload{
		WagerID:   id,
		Winner:    winner,
		Category:  res.Wager.Category,
		Transfers: res.Transfers,
	})
	return res, nil
}

// Cancel calls off a pending wager without moving points
func (s *Service) Cancel(ctx context.Context, id model.WagerID) (*model.Wager, error) {
	var cancelled *model.Wager
	err := s.storage.Update(ctx, func(ctx context.Context, tx storage.Tx) error {
		wager, err := tx.GetWager(ctx, id)
		if err != nil {
			return err
		}
		if !wager.IsPending() {
			return model.ErrWagerNotPending
		}
		now := s.clock.Now()
		wager.State = model.WagerStateCancelled
		wager.CancelledAt = &now
		cancelled = wager
		return tx.SaveWager(ctx, wager)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, model.EventWagerCancelled, cancelled.Participants, cancelled)
	return cancelled, nil
}

// Get returns one wager
func (s *Service) Get(ctx context.Context, id model.WagerID) (*model.Wager, error) {
	return s.storage.GetWager(ctx, id)
}

// ListPending returns open wagers, newest first
func (s *Service) ListPending(ctx context.Context) ([]*model.Wager, error) {
	return s.list(ctx, model.WagerStatePending)
}

// ListHistory returns resolved and cancelled wagers, newest first
func (s *Service) ListHistory(ctx context.Context) ([]*model.Wager, error) {
	return s.list(ctx, model.WagerStateResolved, model.WagerStateCancelled)
}

func (s *Service) list(ctx context.Context, states ...model.WagerState) ([]*model.Wager, error) {
	wagers, err := s.storage.ListWagers(ctx, storage.WagerFilter{States: states})
	if err != nil {
		return nil, err
	}
	sort.Slice(wagers, func(i, j int) bool {
		if !wagers[i].CreatedAt.Equal(wagers[j].CreatedAt) {
			return wagers[i].CreatedAt.After(wagers[j].CreatedAt)
		}
		return wagers[i].ID > wagers[j].ID
	})
	return wagers, nil
}

func (s *Service) publish(ctx context.Context, t model.EventType, userIDs []model.UserID, payload any) {
	s.events.Publish(ctx, model.Event{
		Type:      t,
		Timestamp: s.clock.Now(),
		UserIDs:   userIDs,
		Payload:   payload,
	})
}
