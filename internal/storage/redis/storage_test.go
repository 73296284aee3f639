package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/dojosmash/dojo-smash/internal/model"
	"github.com/dojosmash/dojo-smash/internal/storage"
	"github.com/dojosmash/dojo-smash/internal/storage/storagetest"
)

func TestStorageSuite(t *testing.T) {
	suite.Run(t, &storagetest.Suite{
		NewStorage: func() storage.Storage {
			mini := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
			return NewWithClient(client, DefaultConfig())
		},
	})
}

type RedisSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	other   *redis.Client
	storage *Storage
	ctx     context.Context
}

func TestRedisSuite(t *testing.T) {
	suite.Run(t, new(RedisSuite))
}

func (s *RedisSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})
	s.other = redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.storage = NewWithClient(client, DefaultConfig())
	s.ctx = context.Background()
}

func (s *RedisSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.other != nil {
		_ = s.other.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *RedisSuite) saveUser(u *model.User) {
	err := s.storage.Update(s.ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.SaveUser(ctx, u)
	})
	s.Require().NoError(err)
}

func (s *RedisSuite) TestKeyLayout() {
	s.saveUser(&model.User{ID: "u-1", Name: "Ana"})

	s.True(s.mini.Exists("dojo:usuario:u-1"))
	s.True(s.mini.Exists("dojo:idx:nombre:Ana"))

	members, err := s.mini.Members("dojo:idx:usuarios")
	s.Require().NoError(err)
	s.Equal([]string{"u-1"}, members)

	version, err := s.mini.Get("dojo:version")
	s.Require().NoError(err)
	s.Equal("1", version)
}

func (s *RedisSuite) TestReadOnlyUpdateDoesNotBumpVersion() {
	err := s.storage.Update(s.ctx, func(ctx context.Context, tx storage.Tx) error {
		_, err := tx.ListUsers(ctx)
		return err
	})
	s.Require().NoError(err)
	s.False(s.mini.Exists("dojo:version"))
}

func (s *RedisSuite) TestDeleteUserRemovesIndexes() {
	s.saveUser(&model.User{ID: "u-1", Name: "Ana"})

	err := s.storage.Update(s.ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.DeleteUser(ctx, "u-1")
	})
	s.Require().NoError(err)

	s.False(s.mini.Exists("dojo:usuario:u-1"))
	s.False(s.mini.Exists("dojo:idx:nombre:Ana"))
}

func (s *RedisSuite) TestConcurrentCommitForcesRetry() {
	s.saveUser(&model.User{ID: "u-1", Name: "Ana"})

	calls := 0
	err := s.storage.Update(s.ctx, func(ctx context.Context, tx storage.Tx) error {
		calls++
		u, err := tx.GetUser(ctx, "u-1")
		if err != nil {
			return err
		}
		if calls == 1 {
			// Another writer commits between our read and our EXEC
			s.Require().NoError(s.other.Incr(ctx, "dojo:version").Err())
		}
		u.Points.Add(model.CategoryDojos, 1)
		return tx.SaveUser(ctx, u)
	})
	s.Require().NoError(err)
	s.Equal(2, calls)

	u, err := s.storage.GetUser(s.ctx, "u-1")
	s.Require().NoError(err)
	s.Equal(1.0, u.Points.Dojos)
}

func (s *RedisSuite) TestConflictAfterRetryBudget() {
	s.storage.cfg.MaxRetries = 2
	s.saveUser(&model.User{ID: "u-1", Name: "Ana"})

	calls := 0
	err := s.storage.Update(s.ctx, func(ctx context.Context, tx storage.Tx) error {
		calls++
		s.Require().NoError(s.other.Incr(ctx, "dojo:version").Err())
		return tx.SaveUser(ctx, &model.User{ID: "u-1", Name: "Ana", Debt: 5})
	})
	s.ErrorIs(err, storage.ErrConflict)
	s.Equal(3, calls)

	u, err := s.storage.GetUser(s.ctx, "u-1")
	s.Require().NoError(err)
	s.Equal(0.0, u.Debt)
}

func (s *RedisSuite) TestListSkipsDanglingIndexEntries() {
	s.saveUser(&model.User{ID: "u-1", Name: "Ana"})
	s.mini.Del("dojo:usuario:u-1")

	users, err := s.storage.ListUsers(s.ctx)
	s.Require().NoError(err)
	s.Empty(users)
}
