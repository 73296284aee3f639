package weekly

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
	// Wednesday of ISO week 2025-W06
	s.clock = mocks.NewMockClock(time.Date(2025, time.February, 5, 12, 0, 0, 0, time.UTC))
	s.recorder = events.NewRecorder()
	s.service = New(s.storage, s.clock, mocks.NewMockIDs("r"), s.recorder, testutil.NopLogger())
	s.ctx = context.Background()

	s.addUser("ana", "Ana")
	s.addUser("beto", "Beto")
}

func (s *ServiceSuite) addUser(id, name string) {
	err := s.storage.Update(s.ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.SaveUser(ctx, &model.User{ID: model.UserID(id), Name: name})
	})
	s.Require().NoError(err)
}

func (s *ServiceSuite) user(id string) *model.User {
	u, err := s.storage.GetUser(s.ctx, model.UserID(id))
	s.Require().NoError(err)
	return u
}

// RegisterOne tests

func (s *ServiceSuite) TestRegisterOneAppliesDeltas() {
	reg, err := s.service.RegisterOne(s.ctx, "ana", "2025-S6", model.Points{Dojos: 2, Pendejos: 1})
	s.Require().NoError(err)

	s.Equal(model.Week("2025-W06"), reg.Week)
	s.Empty(reg.Modifications)

	ana := s.user("ana")
	s.Equal(model.Points{Dojos: 2, Pendejos: 1}, ana.Points)
	s.Equal(1.0, ana.Total())

	stored, err := s.service.Get(s.ctx, reg.ID)
	s.Require().NoError(err)
	s.Equal(reg.Deltas, stored.Deltas)
	s.Equal([]model.EventType{model.EventRegistrationCreated}, s.recorder.Types())
}

func (s *ServiceSuite) TestRegisterOneDefaultsToCurrentWeek() {
	reg, err := s.service.RegisterOne(s.ctx, "ana", "", model.Points{Mimidos: 1})
	s.Require().NoError(err)
	s.Equal(model.Week("2025-W06"), reg.Week)
}

func (s *ServiceSuite) TestRegisterOneErrors() {
	_, err := s.service.RegisterOne(s.ctx, "ana", "2025-W06", model.Points{})
	s.ErrorIs(err, model.ErrEmptyRegistration)

	_, err = s.service.RegisterOne(s.ctx, "ana", "semana 6", model.Points{Dojos: 1})
	s.ErrorIs(err, model.ErrInvalidWeek)

	_, err = s.service.RegisterOne(s.ctx, "nobody", "2025-W06", model.Points{Dojos: 1})
	s.ErrorIs(err, model.ErrUserNotFound)

	regs, _ := s.service.List(s.ctx, "")
	s.Empty(regs)
}

func (s *ServiceSuite) TestDojosOncePerWeek() {
	_, err := s.service.RegisterOne(s.ctx, "ana", "2025-W06", model.Points{Dojos: 1})
	s.Require().NoError(err)

	// Same week written differently is still the same week
	_, err = s.service.RegisterOne(s.ctx, "ana", "2025-w6", model.Points{Dojos: 1})
	s.ErrorIs(err, model.ErrDojosAlreadyRegistered)

	// Other categories are not limited
	_, err = s.service.RegisterOne(s.ctx, "ana", "2025-W06", model.Points{Pendejos: 1})
	s.NoError(err)

	// Another week or another user is fine
	_, err = s.service.RegisterOne(s.ctx, "ana", "2025-W07", model.Points{Dojos: 1})
	s.NoError(err)
	_, err = s.service.RegisterOne(s.ctx, "beto", "2025-W06", model.Points{Dojos: 1})
	s.NoError(err)

	s.Equal(2.0, s.user("ana").Points.Dojos)
}

// RegisterBatch tests

func (s *ServiceSuite) TestRegisterBatchSkipsZeroEntries() {
	regs, err := s.service.RegisterBatch(s.ctx, "2025-W06", []Entry{
		{UserID: "ana", Deltas: model.Points{Dojos: 1}},
		{UserID: "beto", Deltas: model.Points{}},
	})
	s.Require().NoError(err)
	s.Require().Len(regs, 1)
	s.Equal(model.UserID("ana"), regs[0].UserID)
	s.Equal(0.0, s.user("beto").Points.Dojos)
}

func (s *ServiceSuite) TestRegisterBatchAllZeroRejected() {
	_, err := s.service.RegisterBatch(s.ctx, "2025-W06", []Entry{
		{UserID: "ana"},
		{UserID: "beto"},
	})
	s.ErrorIs(err, model.ErrEmptyRegistration)
}

func (s *ServiceSuite) TestRegisterBatchIsAllOrNothing() {
	_, err := s.service.RegisterBatch(s.ctx, "2025-W06", []Entry{
		{UserID: "ana", Deltas: model.Points{Dojos: 2}},
		{UserID: "ghost", Deltas: model.Points{Dojos: 1}},
	})
	s.ErrorIs(err, model.ErrUserNotFound)

	s.Equal(model.Points{}, s.user("ana").Points)
	regs, _ := s.service.List(s.ctx, "")
	s.Empty(regs)
	s.Empty(s.recorder.Events())
}

func (s *ServiceSuite) TestRegisterBatchDuplicateDojosInsideBatch() {
	_, err := s.service.RegisterBatch(s.ctx, "2025-W06", []Entry{
		{UserID: "ana", Deltas: model.Points{Dojos: 1}},
		{UserID: "ana", Deltas: model.Points{Dojos: 1}},
	})
	s.ErrorIs(err, model.ErrDojosAlreadyRegistered)
	s.Equal(0.0, s.user("ana").Points.Dojos)
}

// Edit tests

func (s *ServiceSuite) TestEditAdjustsByDifference() {
	reg, _ := s.service.RegisterOne(s.ctx, "ana", "2025-W06", model.Points{Dojos: 2, Pendejos: 1})
	s.clock.Advance(time.Hour)

	edited, err := s.service.Edit(s.ctx, reg.ID, model.Points{Dojos: 3, Mimidos: 0.5})
	s.Require().NoError(err)

	s.Equal(model.Points{Dojos: 3, Mimidos: 0.5}, edited.Deltas)
	s.Require().Len(edited.Modifications, 1)
	mod := edited.Modifications[0]
	s.Equal(model.Points{Dojos: 2, Pendejos: 1}, mod.Previous)
	s.Equal(model.Points{Dojos: 3, Mimidos: 0.5}, mod.New)
	s.True(mod.At.Equal(s.clock.Now()))

	s.Equal(model.Points{Dojos: 3, Mimidos: 0.5}, s.user("ana").Points)
}

func (s *ServiceSuite) TestEditRespectsDojosSlot() {
	first, _ := s.service.RegisterOne(s.ctx, "ana", "2025-W06", model.Points{Dojos: 1})
	other, _ := s.service.RegisterOne(s.ctx, "ana", "2025-W06", model.Points{Pendejos: 1})

	_, err := s.service.Edit(s.ctx, other.ID, model.Points{Dojos: 1})
	s.ErrorIs(err, model.ErrDojosAlreadyRegistered)

	// The record holding the slot can change its own dojos
	_, err = s.service.Edit(s.ctx, first.ID, model.Points{Dojos: 2})
	s.NoError(err)
}

func (s *ServiceSuite) TestEditOrphanedRegistration() {
	reg, _ := s.service.RegisterOne(s.ctx, "ana", "2025-W06", model.Points{Dojos: 2})
	s.Require().NoError(s.storage.Update(s.ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.DeleteUser(ctx, "ana")
	}))

	edited, err := s.service.Edit(s.ctx, reg.ID, model.Points{Dojos: 1})
	s.Require().NoError(err)
	s.Equal(1.0, edited.Deltas.Dojos)
}

func (s *ServiceSuite) TestEditNotFound() {
	_, err := s.service.Edit(s.ctx, "missing", model.Points{Dojos: 1})
	s.ErrorIs(err, model.ErrRegistrationNotFound)
}

// Read tests

func (s *ServiceSuite) TestListFiltersByWeek() {
	_, _ = s.service.RegisterOne(s.ctx, "ana", "2025-W05", model.Points{Dojos: 1})
	_, _ = s.service.RegisterOne(s.ctx, "ana", "2025-W06", model.Points{Dojos: 1})
	s.clock.Advance(time.Minute)
	_, _ = s.service.RegisterOne(s.ctx, "beto", "2025-W06", model.Points{Dojos: 1})

	regs, err := s.service.List(s.ctx, "2025-S6")
	s.Require().NoError(err)
	s.Require().Len(regs, 2)
	s.Equal(model.UserID("beto"), regs[0].UserID, "newest first")

	all, err := s.service.List(s.ctx, "")
	s.Require().NoError(err)
	s.Len(all, 3)

	_, err = s.service.List(s.ctx, "bogus")
	s.ErrorIs(err, model.ErrInvalidWeek)
}

func (s *ServiceSuite) TestLastTwoWeeks() {
	groups, err := s.service.LastTwoWeeks(s.ctx)
	s.Require().NoError(err)
	s.Empty(groups)

	for _, wk := range []string{"2024-W52", "2025-W02", "2025-W10"} {
		_, err := s.service.RegisterOne(s.ctx, "ana", wk, model.Points{Dojos: 1})
		s.Require().NoError(err)
	}
	_, _ = s.service.RegisterOne(s.ctx, "beto", "2025-W02", model.Points{Dojos: 1})

	groups, err = s.service.LastTwoWeeks(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(groups, 2)
	s.Equal(model.Week("2025-W10"), groups[0].Week)
	s.Len(groups[0].Registrations, 1)
	s.Equal(model.Week("2025-W02"), groups[1].Week)
	s.Len(groups[1].Registrations, 2)

	latest, err := s.service.LatestWeek(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.Week("2025-W10"), latest.Week)
}
