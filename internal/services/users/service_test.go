package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/dojosmash/dojo-smash/internal/dependencies/mocks"
	"github.com/dojosmash/dojo-smash/internal/events"
	"github.com/dojosmash/dojo-smash/internal/model"
	"github.com/dojosmash/dojo-smash/internal/storage"
	"github.com/dojosmash/dojo-smash/internal/storage/memory"
	"github.com/dojosmash/dojo-smash/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage  *memory.Storage
	clock    *mocks.MockClock
	recorder *events.Recorder
	service  *Service
	ctx      context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2025, time.February, 3, 12, 0, 0, 0, time.UTC))
	s.recorder = events.NewRecorder()
	s.service = New(s.storage, s.clock, mocks.NewMockIDs("u"), s.recorder, testutil.NopLogger())
	s.ctx = context.Background()
}

func ptr[T any](v T) *T { return &v }

// Create tests

func (s *ServiceSuite) TestCreateDefaults() {
	u, err := s.service.Create(s.ctx, "  Ana  ", "")
	s.Require().NoError(err)

	s.Equal(model.UserID("u-1"), u.ID)
	s.Equal("Ana", u.Name)
	s.Equal(model.DefaultAvatar, u.Avatar)
	s.Equal(model.Points{}, u.Points)
	s.Equal(0.0, u.Debt)
	s.Equal(0.0, u.Total())
	s.Equal([]model.EventType{model.EventUserCreated}, s.recorder.Types())
}

func (s *ServiceSuite) TestCreateValidation() {
	_, err := s.service.Create(s.ctx, "   ", "")
	s.ErrorIs(err, model.ErrUserNameRequired)

	_, err = s.service.Create(s.ctx, "Ana", "sonic")
	s.ErrorIs(err, model.ErrUnknownAvatar)

	_, err = s.service.Create(s.ctx, "Ana", "")
	s.Require().NoError(err)
	_, err = s.service.Create(s.ctx, "Ana", "luigi")
	s.ErrorIs(err, model.ErrUserNameTaken)

	// Names are case-sensitive
	_, err = s.service.Create(s.ctx, "ana", "")
	s.NoError(err)
}

func (s *ServiceSuite) TestListSortedByName() {
	for _, n := range []string{"Carla", "Ana", "Beto"} {
		_, err := s.service.Create(s.ctx, n, "")
		s.Require().NoError(err)
	}

	users, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(users, 3)
	s.Equal("Ana", users[0].Name)
	s.Equal("Beto", users[1].Name)
	s.Equal("Carla", users[2].Name)
}

func (s *ServiceSuite) TestGetNotFound() {
	_, err := s.service.Get(s.ctx, "missing")
	s.ErrorIs(err, model.ErrUserNotFound)
}

// Update tests

func (s *ServiceSuite) TestUpdatePartial() {
	u, _ := s.service.Create(s.ctx, "Ana", "")
	s.clock.Advance(time.Hour)

	updated, err := s.service.Update(s.ctx, u.ID, Patch{
		Avatar:   ptr("yoshi"),
		PhotoURL: ptr("https://example.com/a.png"),
		Debt:     ptr(20.0),
		Points:   PointsPatch{Dojos: ptr(4.0), Chescos: ptr(2.0)},
	})
	s.Require().NoError(err)

	s.Equal("Ana", updated.Name)
	s.Equal(model.Avatar("yoshi"), updated.Avatar)
	s.Equal("https://example.com/a.png", updated.PhotoURL)
	s.Equal(20.0, updated.Debt)
	s.Equal(model.Points{Dojos: 4, Chescos: 2}, updated.Points)
	s.Equal(4.0, updated.Total())
	s.True(updated.UpdatedAt.After(updated.CreatedAt))

	stored, _ := s.service.Get(s.ctx, u.ID)
	s.Equal(updated.Points, stored.Points)
}

func (s *ServiceSuite) TestUpdateValidation() {
	a, _ := s.service.Create(s.ctx, "Ana", "")
	_, _ = s.service.Create(s.ctx, "Beto", "")

	_, err := s.service.Update(s.ctx, a.ID, Patch{Name: ptr("Beto")})
	s.ErrorIs(err, model.ErrUserNameTaken)

	_, err = s.service.Update(s.ctx, a.ID, Patch{Debt: ptr(-1.0)})
	s.ErrorIs(err, model.ErrNegativeDebt)

	_, err = s.service.Update(s.ctx, a.ID, Patch{Avatar: ptr("sonic")})
	s.ErrorIs(err, model.ErrUnknownAvatar)

	_, err = s.service.Update(s.ctx, "missing", Patch{Name: ptr("Zoe")})
	s.ErrorIs(err, model.ErrUserNotFound)

	// Keeping your own name is not a clash
	_, err = s.service.Update(s.ctx, a.ID, Patch{Name: ptr("Ana")})
	s.NoError(err)
}

// ApplyPointDelta tests

func (s *ServiceSuite) TestApplyPointDelta() {
	u, _ := s.service.Create(s.ctx, "Ana", "")
	s.recorder.Reset()

	updated, err := s.service.ApplyPointDelta(s.ctx, u.ID, model.PointDelta{
		model.CategoryDojos:    2,
		model.CategoryPendejos: 1,
	})
	s.Require().NoError(err)
	s.Equal(model.Points{Dojos: 2, Pendejos: 1}, updated.Points)
	s.Equal(1.0, updated.Total())

	updated, err = s.service.ApplyPointDelta(s.ctx, u.ID, model.PointDelta{model.CategoryChescos: 0.5})
	s.Require().NoError(err)
	s.Equal(1.0, updated.Total(), "chescos leave the total alone")
	s.Equal(0.5, updated.Points.Chescos)

	s.Equal([]model.EventType{model.EventPointsUpdated, model.EventPointsUpdated}, s.recorder.Types())
}

func (s *ServiceSuite) TestApplyPointDeltaErrors() {
	_, err := s.service.ApplyPointDelta(s.ctx, "missing", model.PointDelta{model.CategoryDojos: 1})
	s.ErrorIs(err, model.ErrUserNotFound)

	u, _ := s.service.Create(s.ctx, "Ana", "")
	_, err = s.service.ApplyPointDelta(s.ctx, u.ID, nil)
	s.ErrorIs(err, model.ErrEmptyPointDelta)
}

// Delete tests

func (s *ServiceSuite) TestDeleteKeepsHistory() {
	u, _ := s.service.Create(s.ctx, "Ana", "")
	err := s.storage.Update(s.ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.SaveRegistration(ctx, &model.WeeklyRegistration{ID: "r-1", UserID: u.ID, Week: "2025-W06"})
	})
	s.Require().NoError(err)

	s.Require().NoError(s.service.Delete(s.ctx, u.ID))

	_, err = s.service.Get(s.ctx, u.ID)
	s.ErrorIs(err, model.ErrUserNotFound)

	regs, err := s.storage.ListRegistrations(s.ctx, storage.RegistrationFilter{UserID: u.ID})
	s.Require().NoError(err)
	s.Len(regs, 1)

	s.ErrorIs(s.service.Delete(s.ctx, u.ID), model.ErrUserNotFound)

	// The freed name can be reused
	_, err = s.service.Create(s.ctx, "Ana", "")
	s.NoError(err)
}

// History tests

func (s *ServiceSuite) TestHistoryNewestFirst() {
	u, _ := s.service.Create(s.ctx, "Ana", "")
	base := s.clock.Now()
	err := s.storage.Update(s.ctx, func(ctx context.Context, tx storage.Tx) error {
		for i, id := range []model.RegistrationID{"r-1", "r-2", "r-3"} {
			if err := tx.SaveRegistration(ctx, &model.WeeklyRegistration{
				ID: id, UserID: u.ID, Week: "2025-W06", CreatedAt: base.Add(time.Duration(i) * time.Minute),
			}); err != nil {
				return err
			}
		}
		return tx.SaveRegistration(ctx, &model.WeeklyRegistration{ID: "other", UserID: "someone-else"})
	})
	s.Require().NoError(err)

	regs, err := s.service.History(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Require().Len(regs, 3)
	s.Equal(model.RegistrationID("r-3"), regs[0].ID)
	s.Equal(model.RegistrationID("r-1"), regs[2].ID)

	_, err = s.service.History(s.ctx, "missing")
	s.ErrorIs(err, model.ErrUserNotFound)
}
