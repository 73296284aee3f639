package rifa

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/dojosmash/dojo-smash/internal/dependencies/clock"
	"github.com/dojosmash/dojo-smash/internal/dependencies/ids"
	"github.com/dojosmash/dojo-smash/internal/dependencies/random"
	"github.com/dojosmash/dojo-smash/internal/events"
	"github.com/dojosmash/dojo-smash/internal/model"
	"github.com/dojosmash/dojo-smash/internal/storage"
)

// Service keeps the raffle log and spins the wheel
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	ids     ids.Generator
	random  random.Random
	events  events.Publisher
	logger  *slog.Logger
}

// New creates a new rifa Service
func New(
	storage storage.Storage,
	clock clock.Clock,
	ids ids.Generator,
	random random.Random,
	events events.Publisher,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		ids:     ids,
		random:  random,
		events:  events,
		logger:  logger.With(slog.String("service", "rifa")),
	}
}

func cleanAssignments(in []model.RifaAssignment) ([]model.RifaAssignment, error) {
	if len(in) == 0 {
		return nil, model.ErrEmptyRifa
	}
	out := make([]model.RifaAssignment, len(in))
	for i, a := range in {
		item, player := strings.TrimSpace(a.Item), strings.TrimSpace(a.Player)
		if item == "" || player == "" {
			return nil, model.ErrInvalidRifaItem
		}
		out[i] = model.RifaAssignment{Item: item, Player: player}
	}
	return out, nil
}

// Save persists a finished raffle. An empty name defaults to "Rifa <date>".
func (s *Service) Save(ctx context.Context, name string, assignments []model.RifaAssignment) (*model.RifaRecord, error) {
	cleaned, err := cleanAssignments(assignments)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Rifa " + now.Format("2006-01-02")
	}

	record := &model.RifaRecord{
		ID:          model.RifaID(s.ids.NewID()),
		Name:        name,
		Assignments: cleaned,
		Count:       len(cleaned),
		CreatedAt:   now,
	}
	err = s.storage.Update(ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.SaveRifa(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("rifa saved", slog.String("rifa_id", string(record.ID)), slog.Int("count", record.Count))
	s.events.Publish(ctx, model.Event{
		Type:      model.EventRifaSaved,
		Timestamp: s.clock.Now(),
		Payload:   record,
	})
	return record, nil
}

// List returns every raffle, newest first
func (s *Service) List(ctx context.Context) ([]*model.RifaRecord, error) {
	rifas, err := s.storage.ListRifas(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(rifas, func(i, j int) bool {
		if !rifas[i].CreatedAt.Equal(rifas[j].CreatedAt) {
			return rifas[i].CreatedAt.After(rifas[j].CreatedAt)
		}
		return rifas[i].ID > rifas[j].ID
	})
	return rifas, nil
}

// Latest returns the most recent raffle
func (s *Service) Latest(ctx context.Context) (*model.RifaRecord, error) {
	rifas, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(rifas) == 0 {
		return nil, model.ErrRifaNotFound
	}
	return rifas[0], nil
}

// Delete removes one raffle
func (s *Service) Delete(ctx context.Context, id model.RifaID) error {
	return s.storage.Update(ctx, func(ctx context.Context, tx storage.Tx) error {
		if _, err := tx.GetRifa(ctx, id); err != nil {
			return err
		}
		return tx.DeleteRifa(ctx, id)
	})
}

// Clear removes every raffle
func (s *Service) Clear(ctx context.Context) error {
	err := s.storage.Update(ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.DeleteAllRifas(ctx)
	})
	if err == nil {
		s.logger.Info("rifa log cleared")
	}
	return err
}

// Spin draws a player for every item. Players are drawn without replacement
// until everyone has had a turn, then the pool refills. Nothing is persisted.
func (s *Service) Spin(items, players []string) ([]model.RifaAssignment, error) {
	items, players = compact(items), compact(players)
	if len(items) == 0 || len(players) == 0 {
		return nil, model.ErrEmptyRifa
	}

	out := make([]model.RifaAssignment, 0, len(items))
	var pool []int
	for _, item := range items {
		if len(pool) == 0 {
			pool = s.random.Perm(len(players))
		}
		out = append(out, model.RifaAssignment{Item: item, Player: players[pool[0]]})
		pool = pool[1:]
	}
	return out, nil
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
