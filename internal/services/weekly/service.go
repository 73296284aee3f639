package weekly

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/dojosmash/dojo-smash/internal/dependencies/clock"
	"github.com/dojosmash/dojo-smash/internal/dependencies/ids"
	"github.com/dojosmash/dojo-smash/internal/events"
	"github.com/dojosmash/dojo-smash/internal/model"
	"github.com/dojosmash/dojo-smash/internal/storage"
)

// Service records weekly point submissions and keeps user counters in step
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	ids     ids.Generator
	events  events.Publisher
	logger  *slog.Logger
}

// New creates a new weekly registration Service
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
		logger:  logger.With(slog.String("service", "weekly")),
	}
}

// Entry is one user's deltas inside a batch registration
type Entry struct {
	UserID model.UserID
	Deltas model.Points
}

// WeekGroup is every registration submitted for one week
type WeekGroup struct {
	Week          model.Week
	Registrations []*model.WeeklyRegistration
}

// ResolveWeek canonicalizes a week key. Empty means the current week.
func (s *Service) ResolveWeek(raw string) (model.Week, error) {
	if raw == "" {
		return model.WeekOf(s.clock.Now()), nil
	}
	return model.ParseWeek(raw)
}

// checkDojosSlot fails if another registration already used the user's dojos for week
func checkDojosSlot(ctx context.Context, tx storage.Tx, userID model.UserID, week model.Week, self model.RegistrationID) error {
	regs, err := tx.ListRegistrations(ctx, storage.RegistrationFilter{UserID: userID, Week: week})
	if err != nil {
		return err
	}
	for _, r := range regs {
		if r.ID != self && r.ClaimsDojos() {
			return model.ErrDojosAlreadyRegistered
		}
	}
	return nil
}

// register appends one record and applies it to the user within tx
func (s *Service) register(ctx context.Context, tx storage.Tx, userID model.UserID, week model.Week, deltas model.Points) (*model.WeeklyRegistration, error) {
	user, err := tx.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if deltas.Dojos != 0 {
		if err := checkDojosSlot(ctx, tx, userID, week, ""); err != nil {
			return nil, err
		}
	}

	now := s.clock.Now()
	reg := &model.WeeklyRegistration{
		ID:            model.RegistrationID(s.ids.NewID()),
		UserID:        userID,
		Week:          week,
		Deltas:        deltas,
		Modifications: []model.Modification{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := tx.SaveRegistration(ctx, reg); err != nil {
		return nil, err
	}

	user.Points = user.Points.Plus(deltas)
	user.UpdatedAt = now
	if err := tx.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return reg, nil
}

// RegisterOne records one user's deltas for a week and applies them atomically
func (s *Service) RegisterOne(ctx context.Context, userID model.UserID, week string, deltas model.Points) (*model.WeeklyRegistration, error) {
	wk, err := s.ResolveWeek(week)
	if err != nil {
		return nil, err
	}
	if deltas.IsZero() {
		return nil, model.ErrEmptyRegistration
	}

	var reg *model.WeeklyRegistration
	err = s.storage.Update(ctx, func(ctx context.Context, tx storage.Tx) error {
		r, err := s.register(ctx, tx, userID, wk, deltas)
		reg = r
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("weekly registration recorded",
		slog.String("user_id", string(userID)),
		slog.String("week", string(wk)))
	s.publish(ctx, model.EventRegistrationCreated, []model.UserID{userID}, model.RegistrationPayload{
		Week:          wk,
		Registrations: []model.RegistrationID{reg.ID},
	})
	return reg, nil
}

// RegisterBatch records several users for one week. Either every entry is
// applied or none is. All-zero entries are skipped.
func (s *Service) RegisterBatch(ctx context.Context, week string, entries []Entry) ([]*model.WeeklyRegistration, error) {
	wk, err := s.ResolveWeek(week)
	if err != nil {
		return nil, err
	}

	var pending []Entry
	for _, e := range entries {
		if !e.Deltas.IsZero() {
			pending = append(pending, e)
		}
	}
	if len(pending) == 0 {
		return nil, model.ErrEmptyRegistration
	}

	var regs []*model.WeeklyRegistration
	err = s.storage.Update(ctx, func(ctx context.Context, tx storage.Tx) error {
		regs = regs[:0]
		for _, e := range pending {
			r, err := s.register(ctx, tx, e.UserID, wk, e.Deltas)
			if err != nil {
				return err
			}
			regs = append(regs, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	userIDs := make([]model.UserID, len(regs))
	regIDs := make([]model.RegistrationID, len(regs))
	for i, r := range regs {
		userIDs[i] = r.UserID
		regIDs[i] = r.ID
	}
	s.logger.Info("weekly batch recorded",
		slog.String("week", string(wk)),
		slog.Int("registrations", len(regs)),
		slog.Int("skipped", len(entries)-len(regs)))
	s.publish(ctx, model.EventRegistrationCreated, userIDs, model.RegistrationPayload{
		Week:          wk,
		Registrations: regIDs,
	})
	return regs, nil
}

// Edit replaces a registration's deltas and moves the owner's counters by the
// difference. If the owner was deleted only the record changes.
func (s *Service) Edit(ctx context.Context, id model.RegistrationID, deltas model.Points) (*model.WeeklyRegistration, error) {
	var edited *model.WeeklyRegistration
	err := s.storage.Update(ctx, func(ctx context.Context, tx storage.Tx) error {
		reg, err := tx.GetRegistration(ctx, id)
		if err != nil {
			return err
		}
		if deltas.Dojos != 0 {
			if err := checkDojosSlot(ctx, tx, reg.UserID, reg.Week, reg.ID); err != nil {
				return err
			}
		}

		now := s.clock.Now()
		old := reg.Deltas
		reg.Modifications = append(reg.Modifications, model.Modification{
			At:       now,
			Previous: old,
			New:      deltas,
		})
		reg.Deltas = deltas
		reg.UpdatedAt = now
		if err := tx.SaveRegistration(ctx, reg); err != nil {
			return err
		}
		edited = reg

		user, err := tx.GetUser(ctx, reg.UserID)
		if errors.Is(err, model.ErrUserNotFound) {
			s.logger.Warn("registration owner deleted, counters not adjusted",
				slog.String("registration_id", string(id)),
				slog.String("user_id", string(reg.UserID)))
			return nil
		}
		if err != nil {
			return err
		}
		user.Points = user.Points.Plus(deltas.Minus(old))
		user.UpdatedAt = now
		return tx.SaveUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, model.EventRegistrationEdited, []model.UserID{edited.UserID}, model.RegistrationPayload{
		Week:          edited.Week,
		Registrations: []model.RegistrationID{edited.ID},
	})
	return edited, nil
}

// Get returns one registration
func (s *Service) Get(ctx context.Context, id model.RegistrationID) (*model.WeeklyRegistration, error) {
	return s.storage.GetRegistration(ctx, id)
}

// List returns registrations newest first, optionally limited to one week
func (s *Service) List(ctx context.Context, week string) ([]*model.WeeklyRegistration, error) {
	var filter storage.RegistrationFilter
	if week != "" {
		wk, err := model.ParseWeek(week)
		if err != nil {
			return nil, err
		}
		filter.Week = wk
	}

	regs, err := s.storage.ListRegistrations(ctx, filter)
	if err != nil {
		return nil, err
	}
	model.SortRegistrationsNewestFirst(regs)
	return regs, nil
}

// LastTwoWeeks returns the two most recent weeks that have registrations,
// newest first, each with its records
func (s *Service) LastTwoWeeks(ctx context.Context) ([]WeekGroup, error) {
	return s.latestWeeks(ctx, 2)
}

// LatestWeek returns the newest week with registrations, if any
func (s *Service) LatestWeek(ctx context.Context) (*WeekGroup, error) {
	groups, err := s.latestWeeks(ctx, 1)
	if err != nil || len(groups) == 0 {
		return nil, err
	}
	return &groups[0], nil
}

func (s *Service) latestWeeks(ctx context.Context, n int) ([]WeekGroup, error) {
	regs, err := s.storage.ListRegistrations(ctx, storage.RegistrationFilter{})
	if err != nil {
		return nil, err
	}

	byWeek := make(map[model.Week][]*model.WeeklyRegistration)
	for _, r := range regs {
		byWeek[r.Week] = append(byWeek[r.Week], r)
	}
	weeks := make([]model.Week, 0, len(byWeek))
	for w := range byWeek {
		weeks = append(weeks, w)
	}
	// Canonical keys sort chronologically as strings
	sort.Slice(weeks, func(i, j int) bool { return weeks[i] > weeks[j] })
	if len(weeks) > n {
		weeks = weeks[:n]
	}

	groups := make([]WeekGroup, len(weeks))
	for i, w := range weeks {
		model.SortRegistrationsNewestFirst(byWeek[w])
		groups[i] = WeekGroup{Week: w, Registrations: byWeek[w]}
	}
	return groups, nil
}

func (s *Service) publish(ctx context.Context, t model.EventType, userIDs []model.UserID, payload any) {
	s.events.Publish(ctx, model.Event{
		Type:      t,
		Timestamp: s.clock.Now(),
		UserIDs:   userIDs,
		Payload:   payload,
	})
}
