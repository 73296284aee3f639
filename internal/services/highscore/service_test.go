package highscore

import (
	"context"
	"sync"
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
	s.clock = mocks.NewMockClock(time.Date(2025, time.February, 5, 12, 0, 0, 0, time.UTC))
	s.recorder = events.NewRecorder()
	s.service = New(s.storage, s.clock, s.recorder, testutil.NopLogger())
	s.ctx = context.Background()

	s.Require().NoError(s.storage.Update(s.ctx, func(ctx context.Context, tx storage.Tx) error {
		for _, id := range []string{"ana", "beto", "carla"} {
			if err := tx.SaveUser(ctx, &model.User{ID: model.UserID(id), Name: id}); err != nil {
				return err
			}
		}
		return nil
	}))
}

func (s *ServiceSuite) submit(game model.Game, user string, score int) *Result {
	res, err := s.service.Submit(s.ctx, game, model.UserID(user), score)
	s.Require().NoError(err)
	return res
}

func (s *ServiceSuite) TestSubmitRatchets() {
	tests := []struct {
		score     int
		want      int
		newRecord bool
	}{
		{50, 50, true},
		{40, 50, false},
		{50, 50, false},
		{51, 51, true},
		{0, 51, false},
	}

	for _, tt := range tests {
		res := s.submit(model.GameSnake, "ana", tt.score)
		s.Equal(tt.want, res.Score, "after submitting %d", tt.score)
		s.Equal(tt.newRecord, res.NewRecord, "after submitting %d", tt.score)
		s.Equal("ana", res.UserName)
	}

	s.Equal([]model.EventType{model.EventNewHighscore, model.EventNewHighscore}, s.recorder.Types())
}

func (s *ServiceSuite) TestSubmitZeroFirstTime() {
	res := s.submit(model.GameTetris, "ana", 0)
	s.True(res.NewRecord)
	s.Equal(0, res.Score)
}

func (s *ServiceSuite) TestSubmitValidation() {
	_, err := s.service.Submit(s.ctx, "mario-kart", "ana", 1)
	s.ErrorIs(err, model.ErrUnknownGame)

	_, err = s.service.Submit(s.ctx, model.GameSnake, "ana", -1)
	s.ErrorIs(err, model.ErrInvalidScore)

	_, err = s.service.Submit(s.ctx, model.GameSnake, "ghost", 1)
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *ServiceSuite) TestConcurrentSubmitsKeepMax() {
	var wg sync.WaitGroup
	for i := 1; i <= 30; i++ {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			_, err := s.service.Submit(context.Background(), model.GamePacman, "beto", score)
			s.NoError(err)
		}(i)
	}
	wg.Wait()

	e, err := s.service.ForUser(s.ctx, model.GamePacman, "beto")
	s.Require().NoError(err)
	s.Equal(30, e.Score)
}

func (s *ServiceSuite) TestTopForGameOrdering() {
	s.submit(model.GameSnake, "ana", 100)
	s.clock.Advance(time.Minute)
	s.submit(model.GameSnake, "beto", 300)
	s.clock.Advance(time.Minute)
	s.submit(model.GameSnake, "carla", 100)
	s.submit(model.GameTetris, "carla", 999)

	top, err := s.service.TopForGame(s.ctx, model.GameSnake, 0)
	s.Require().NoError(err)
	s.Require().Len(top, 3)
	s.Equal("beto", top[0].UserName)
	s.Equal("ana", top[1].UserName, "earlier achiever wins the tie")
	s.Equal("carla", top[2].UserName)

	top, err = s.service.TopForGame(s.ctx, model.GameSnake, 2)
	s.Require().NoError(err)
	s.Len(top, 2)

	best, err := s.service.GlobalBest(s.ctx, model.GameSnake)
	s.Require().NoError(err)
	s.Equal(300, best.Score)
}

func (s *ServiceSuite) TestEmptyBoards() {
	_, err := s.service.GlobalBest(s.ctx, model.GameFlappyYoshi)
	s.ErrorIs(err, model.ErrHighscoreNotFound)

	_, err = s.service.ForUser(s.ctx, model.GameFlappyYoshi, "ana")
	s.ErrorIs(err, model.ErrHighscoreNotFound)

	all, err := s.service.All(s.ctx)
	s.Require().NoError(err)
	s.Len(all, len(model.Games))
	for _, board := range all {
		s.Empty(board)
	}
}

func (s *ServiceSuite) TestDeletedUserStillListed() {
	s.submit(model.GameSnake, "ana", 10)
	s.Require().NoError(s.storage.Update(s.ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.DeleteUser(ctx, "ana")
	}))

	top, err := s.service.TopForGame(s.ctx, model.GameSnake, 10)
	s.Require().NoError(err)
	s.Require().Len(top, 1)
	s.Equal(model.DeletedUserName, top[0].UserName)
}
