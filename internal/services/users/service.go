package users

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

// Service manages users and their point counters
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	ids     ids.Generator
	events  events.Publisher
	logger  *slog.Logger
}

// New creates a new users Service
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
		logger:  logger.With(slog.String("service", "users")),
	}
}

// PointsPatch overwrites individual counters. Nil fields are left alone.
type PointsPatch struct {
	Dojos       *float64
	Pendejos    *float64
	Mimidos     *float64
	Castitontos *float64
	Chescos     *float64
}

// Patch is a partial update of a user. Nil fields are left alone.
type Patch struct {
	Name     *string
	Avatar   *string
	PhotoURL *string
	Debt     *float64
	Points   PointsPatch
}

func (p PointsPatch) apply(pts *model.Points) {
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&pts.Dojos, p.Dojos)
	set(&pts.Pendejos, p.Pendejos)
	set(&pts.Mimidos, p.Mimidos)
	set(&pts.Castitontos, p.Castitontos)
	set(&pts.Chescos, p.Chescos)
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", model.ErrUserNameRequired
	}
	return name, nil
}

// ensureNameFree fails if another user already holds name
func ensureNameFree(ctx context.Context, tx storage.Tx, name string, self model.UserID) error {
	existing, err := tx.GetUserByName(ctx, name)
	if errors.Is(err, model.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != self {
		return model.ErrUserNameTaken
	}
	return nil
}

// Create adds a user with zeroed counters
func (s *Service) Create(ctx context.Context, name, avatar string) (*model.User, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	av, err := model.ParseAvatar(avatar)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user := &model.User{
		ID:        model.UserID(s.ids.NewID()),
		Name:      name,
		Avatar:    av,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.storage.Update(ctx, func(ctx context.Context, tx storage.Tx) error {
		if err := ensureNameFree(ctx, tx, name, user.ID); err != nil {
			return err
		}
		return tx.SaveUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user created", slog.String("user_id", string(user.ID)), slog.String("name", user.Name))
	s.publish(ctx, model.EventUserCreated, []model.UserID{user.ID}, user)
	return user, nil
}

// Get returns one user
func (s *Service) Get(ctx context.Context, id model.UserID) (*model.User, error) {
	return s.storage.GetUser(ctx, id)
}

// List returns every user sorted by name
func (s *Service) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.storage.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Name != users[j].Name {
			return users[i].Name < users[j].Name
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

// Update applies a partial update
func (s *Service) Update(ctx context.Context, id model.UserID, patch Patch) (*model.User, error) {
	var name string
	if patch.Name != nil {
		n, err := normalizeName(*patch.Name)
		if err != nil {
			return nil, err
		}
		name = n
	}
	var av model.Avatar
	if patch.Avatar != nil {
		a, err := model.ParseAvatar(*patch.Avatar)
		if err != nil {
			return nil, err
		}
		av = a
	}
	if patch.Debt != nil && (*patch.Debt < 0 || math.IsNaN(*patch.Debt)) {
		return nil, model.ErrNegativeDebt
	}

	var updated *model.User
	err := s.storage.Update(ctx, func(ctx context.Context, tx storage.Tx) error {
		user, err := tx.GetUser(ctx, id)
		if err != nil {
			return err
		}
		if patch.Name != nil {
			if err := ensureNameFree(ctx, tx, name, id); err != nil {
				return err
			}
			user.Name = name
		}
		if patch.Avatar != nil {
			user.Avatar = av
		}
		if patch.PhotoURL != nil {
			user.PhotoURL = strings.TrimSpace(*patch.PhotoURL)
		}
		if patch.Debt != nil {
			user.Debt = *patch.Debt
		}
		patch.Points.apply(&user.Points)
		user.UpdatedAt = s.clock.Now()

		updated = user
		return tx.SaveUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, model.EventUserUpdated, []model.UserID{id}, updated)
	return updated, nil
}

// ApplyPointDelta adds each amount to its counter inside one transaction
func (s *Service) ApplyPointDelta(ctx context.Context, id model.UserID, delta model.PointDelta) (*model.User, error) {
	if len(delta) == 0 {
		return nil, model.ErrEmptyPointDelta
	}

	var updated *model.User
	err := s.storage.Update(ctx, func(ctx context.Context, tx storage.Tx) error {
		user, err := tx.GetUser(ctx, id)
		if err != nil {
			return err
		}
		user.ApplyDelta(delta)
		user.UpdatedAt = s.clock.Now()
		updated = user
		return tx.SaveUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, model.EventPointsUpdated, []model.UserID{id}, model.PointsUpdatedPayload{
		UserID: id,
		Delta:  delta,
	})
	return updated, nil
}

// Delete removes a user. Records that reference the id are kept.
func (s *Service) Delete(ctx context.Context, id model.UserID) error {
	err := s.storage.Update(ctx, func(ctx context.Context, tx storage.Tx) error {
		if _, err := tx.GetUser(ctx, id); err != nil {
			return err
		}
		return tx.DeleteUser(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("user deleted", slog.String("user_id", string(id)))
	s.publish(ctx, model.EventUserDeleted, []model.UserID{id}, nil)
	return nil
}

// History returns the user's weekly registrations, newest first
func (s *Service) History(ctx context.Context, id model.UserID) ([]*model.WeeklyRegistration, error) {
	if _, err := s.storage.GetUser(ctx, id); err != nil {
		return nil, err
	}
	regs, err := s.storage.ListRegistrations(ctx, storage.RegistrationFilter{UserID: id})
	if err != nil {
		return nil, err
	}
	model.SortRegistrationsNewestFirst(regs)
	return regs, nil
}

func (s *Service) publish(ctx context.Context, t model.EventType, userIDs []model.UserID, payload any) {
	s.events.Publish(ctx, model.Event{
		Type:      t,
		Timestamp: s.clock.Now(),
		UserIDs:   userIDs,
		Payload:   payload,
	})
}
