// Package storagetest holds the behaviour every storage backend must share.
// Backend packages run Suite from their own tests with a constructor for a
// fresh, empty store.
package storagetest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/dojosmash/dojo-smash/internal/model"
	"github.com/dojosmash/dojo-smash/internal/storage"
)

// Suite exercises a storage.Storage implementation
type Suite struct {
	suite.Suite

	// NewStorage returns an empty store. It is called before every test.
	NewStorage func() storage.Storage

	Store storage.Storage
	Ctx   context.Context
}

var errRollback = errors.New("rollback")

var baseTime = time.Date(2025, time.February, 3, 12, 0, 0, 0, time.UTC)

func (s *Suite) SetupTest() {
	s.Store = s.NewStorage()
	s.Ctx = context.Background()
}

func (s *Suite) TearDownTest() {
	if s.Store != nil {
		s.Require().NoError(s.Store.Close())
	}
}

func (s *Suite) update(fn storage.TxFunc) {
	s.Require().NoError(s.Store.Update(s.Ctx, fn))
}

func (s *Suite) saveUser(u *model.User) {
	s.update(func(ctx context.Context, tx storage.Tx) error {
		return tx.SaveUser(ctx, u)
	})
}

// User tests

func (s *Suite) TestSaveAndGetUser() {
	u := &model.User{
		ID:        "u-1",
		Name:      "Ana",
		Points:    model.Points{Dojos: 3, Pendejos: 1.5},
		Debt:      20,
		Avatar:    "yoshi",
		CreatedAt: baseTime,
		UpdatedAt: baseTime,
	}
	s.saveUser(u)

	got, err := s.Store.GetUser(s.Ctx, "u-1")
	s.Require().NoError(err)
	s.Equal(u.Name, got.Name)
	s.Equal(u.Points, got.Points)
	s.Equal(u.Debt, got.Debt)
	s.Equal(u.Avatar, got.Avatar)
	s.True(u.CreatedAt.Equal(got.CreatedAt))

	byName, err := s.Store.GetUserByName(s.Ctx, "Ana")
	s.Require().NoError(err)
	s.Equal(u.ID, byName.ID)
}

func (s *Suite) TestGetUserNotFound() {
	_, err := s.Store.GetUser(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrUserNotFound)

	_, err = s.Store.GetUserByName(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *Suite) TestDeleteUser() {
	s.saveUser(&model.User{ID: "u-1", Name: "Ana"})
	s.saveUser(&model.User{ID: "u-2", Name: "Beto"})

	s.update(func(ctx context.Context, tx storage.Tx) error {
		return tx.DeleteUser(ctx, "u-1")
	})

	_, err := s.Store.GetUser(s.Ctx, "u-1")
	s.ErrorIs(err, model.ErrUserNotFound)
	_, err = s.Store.GetUserByName(s.Ctx, "Ana")
	s.ErrorIs(err, model.ErrUserNotFound)

	users, err := s.Store.ListUsers(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(users, 1)
	s.Equal(model.UserID("u-2"), users[0].ID)
}

func (s *Suite) TestRenameFreesOldName() {
	s.saveUser(&model.User{ID: "u-1", Name: "Ana"})
	s.saveUser(&model.User{ID: "u-1", Name: "Anita"})

	_, err := s.Store.GetUserByName(s.Ctx, "Ana")
	s.ErrorIs(err, model.ErrUserNotFound)

	got, err := s.Store.GetUserByName(s.Ctx, "Anita")
	s.Require().NoError(err)
	s.Equal(model.UserID("u-1"), got.ID)
}

func (s *Suite) TestReturnedValuesAreCopies() {
	s.saveUser(&model.User{ID: "u-1", Name: "Ana", Points: model.Points{Dojos: 1}})

	got, err := s.Store.GetUser(s.Ctx, "u-1")
	s.Require().NoError(err)
	got.Points.Dojos = 99

	again, err := s.Store.GetUser(s.Ctx, "u-1")
	s.Require().NoError(err)
	s.Equal(1.0, again.Points.Dojos)
}

// Transaction tests

func (s *Suite) TestTxSeesOwnWrites() {
	s.update(func(ctx context.Context, tx storage.Tx) error {
		if err := tx.SaveUser(ctx, &model.User{ID: "u-1", Name: "Ana"}); err != nil {
			return err
		}
		got, err := tx.GetUserByName(ctx, "Ana")
		s.Require().NoError(err)
		s.Equal(model.UserID("u-1"), got.ID)

		users, err := tx.ListUsers(ctx)
		s.Require().NoError(err)
		s.Len(users, 1)

		if err := tx.DeleteUser(ctx, "u-1"); err != nil {
			return err
		}
		_, err = tx.GetUser(ctx, "u-1")
		s.ErrorIs(err, model.ErrUserNotFound)
		return nil
	})
}

func (s *Suite) TestFailedTxWritesNothing() {
	s.saveUser(&model.User{ID: "u-1", Name: "Ana", Points: model.Points{Dojos: 1}})

	err := s.Store.Update(s.Ctx, func(ctx context.Context, tx storage.Tx) error {
		u, err := tx.GetUser(ctx, "u-1")
		if err != nil {
			return err
		}
		u.Points.Dojos = 50
		if err := tx.SaveUser(ctx, u); err != nil {
			return err
		}
		if err := tx.SaveUser(ctx, &model.User{ID: "u-2", Name: "Beto"}); err != nil {
			return err
		}
		if err := tx.SaveBank(ctx, &model.BankAccount{ID: model.BankAccountID, Total: 100}); err != nil {
			return err
		}
		return errRollback
	})
	s.ErrorIs(err, errRollback)

	u, err := s.Store.GetUser(s.Ctx, "u-1")
	s.Require().NoError(err)
	s.Equal(1.0, u.Points.Dojos)

	_, err = s.Store.GetUser(s.Ctx, "u-2")
	s.ErrorIs(err, model.ErrUserNotFound)

	bank, err := s.Store.GetBank(s.Ctx)
	s.Require().NoError(err)
	s.Equal(0.0, bank.Total)
}

func (s *Suite) TestConcurrentIncrementsAreNotLost() {
	s.saveUser(&model.User{ID: "u-1", Name: "Ana"})

	const workers = 8
	const perWorker = 5

	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				errs <- s.Store.Update(s.Ctx, func(ctx context.Context, tx storage.Tx) error {
					u, err := tx.GetUser(ctx, "u-1")
					if err != nil {
						return err
					}
					u.Points.Add(model.CategoryDojos, 1)
					return tx.SaveUser(ctx, u)
				})
			}
		}()
	}
	wg.Wait()
	close(errs)

	committed := 0
	for err := range errs {
		if err == nil {
			committed++
			continue
		}
		s.ErrorIs(err, storage.ErrConflict)
	}

	u, err := s.Store.GetUser(s.Ctx, "u-1")
	s.Require().NoError(err)
	s.Equal(float64(committed), u.Points.Dojos)
}

// Weekly registration tests

func (s *Suite) TestRegistrations() {
	regs := []*model.WeeklyRegistration{
		{ID: "r-1", UserID: "u-1", Week: "2025-W06", Deltas: model.Points{Dojos: 2}, CreatedAt: baseTime},
		{ID: "r-2", UserID: "u-2", Week: "2025-W06", Deltas: model.Points{Pendejos: 1}, CreatedAt: baseTime},
		{ID: "r-3", UserID: "u-1", Week: "2025-W07", Deltas: model.Points{Mimidos: 1}, CreatedAt: baseTime},
	}
	s.update(func(ctx context.Context, tx storage.Tx) error {
		for _, r := range regs {
			if err := tx.SaveRegistration(ctx, r); err != nil {
				return err
			}
		}
		return nil
	})

	all, err := s.Store.ListRegistrations(s.Ctx, storage.RegistrationFilter{})
	s.Require().NoError(err)
	s.Len(all, 3)

	week, err := s.Store.ListRegistrations(s.Ctx, storage.RegistrationFilter{Week: "2025-W06"})
	s.Require().NoError(err)
	s.Len(week, 2)

	mine, err := s.Store.ListRegistrations(s.Ctx, storage.RegistrationFilter{UserID: "u-1", Week: "2025-W07"})
	s.Require().NoError(err)
	s.Require().Len(mine, 1)
	s.Equal(model.RegistrationID("r-3"), mine[0].ID)

	// Edit history survives the round trip
	s.update(func(ctx context.Context, tx storage.Tx) error {
		r, err := tx.GetRegistration(ctx, "r-1")
		if err != nil {
			return err
		}
		r.Modifications = append(r.Modifications, model.Modification{
			At:       baseTime.Add(time.Hour),
			Previous: r.Deltas,
			New:      model.Points{Dojos: 3},
		})
		r.Deltas = model.Points{Dojos: 3}
		return tx.SaveRegistration(ctx, r)
	})

	got, err := s.Store.GetRegistration(s.Ctx, "r-1")
	s.Require().NoError(err)
	s.Equal(3.0, got.Deltas.Dojos)
	s.Require().Len(got.Modifications, 1)
	s.Equal(2.0, got.Modifications[0].Previous.Dojos)

	_, err = s.Store.GetRegistration(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrRegistrationNotFound)
}

// Wager tests

func (s *Suite) TestWagers() {
	resolvedAt := baseTime.Add(time.Hour)
	s.update(func(ctx context.Context, tx storage.Tx) error {
		if err := tx.SaveWager(ctx, &model.Wager{
			ID: "w-1", Participants: []model.UserID{"u-1", "u-2"}, Category: model.CategoryDojos,
			Stake: 2, State: model.WagerStatePending, CreatedAt: baseTime,
		}); err != nil {
			return err
		}
		return tx.SaveWager(ctx, &model.Wager{
			ID: "w-2", Participants: []model.UserID{"u-1", "u-2", "u-3"}, Category: model.CategoryChescos,
			Stake: 1, State: model.WagerStateResolved, Winner: "u-3", CreatedAt: baseTime, ResolvedAt: &resolvedAt,
		})
	})

	pending, err := s.Store.ListWagers(s.Ctx, storage.WagerFilter{States: []model.WagerState{model.WagerStatePending}})
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal(model.WagerID("w-1"), pending[0].ID)

	all, err := s.Store.ListWagers(s.Ctx, storage.WagerFilter{})
	s.Require().NoError(err)
	s.Len(all, 2)

	w, err := s.Store.GetWager(s.Ctx, "w-2")
	s.Require().NoError(err)
	s.Equal([]model.UserID{"u-1", "u-2", "u-3"}, w.Participants)
	s.Equal(model.UserID("u-3"), w.Winner)
	s.Require().NotNil(w.ResolvedAt)
	s.True(resolvedAt.Equal(*w.ResolvedAt))
	s.Nil(w.CancelledAt)

	_, err = s.Store.GetWager(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrWagerNotFound)
}

// Bank tests

func (s *Suite) TestBankStartsEmpty() {
	bank, err := s.Store.GetBank(s.Ctx)
	s.Require().NoError(err)
	s.Equal(0.0, bank.Total)

	txns, err := s.Store.ListTransactions(s.Ctx, 0)
	s.Require().NoError(err)
	s.Empty(txns)
}

func (s *Suite) TestTransactionsNewestFirst() {
	s.update(func(ctx context.Context, tx storage.Tx) error {
		for i, id := range []model.TransactionID{"t-1", "t-2", "t-3"} {
			if err := tx.SaveTransaction(ctx, &model.Transaction{
				ID: id, UserID: "u-1", Amount: float64(i + 1), Kind: model.TransactionPayment,
				Timestamp: baseTime.Add(time.Duration(i) * time.Minute),
			}); err != nil {
				return err
			}
		}
		bank, err := tx.GetBank(ctx)
		if err != nil {
			return err
		}
		bank.Deposit(6, baseTime)
		return tx.SaveBank(ctx, bank)
	})

	txns, err := s.Store.ListTransactions(s.Ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(txns, 3)
	s.Equal(model.TransactionID("t-3"), txns[0].ID)
	s.Equal(model.TransactionID("t-1"), txns[2].ID)

	limited, err := s.Store.ListTransactions(s.Ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(limited, 2)
	s.Equal(model.TransactionID("t-3"), limited[0].ID)
	s.Equal(model.TransactionID("t-2"), limited[1].ID)

	bank, err := s.Store.GetBank(s.Ctx)
	s.Require().NoError(err)
	s.Equal(6.0, bank.Total)
}

func (s *Suite) TestTransactionsSameInstantOrderedBySeq() {
	// ids sort opposite to seq so the id tie-break alone would fail
	ids := []model.TransactionID{"t-9", "t-8", "t-7", "t-6", "t-5", "t-4"}
	s.update(func(ctx context.Context, tx storage.Tx) error {
		bank, err := tx.GetBank(ctx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := tx.SaveTransaction(ctx, &model.Transaction{
				ID: id, UserID: "u-1", Amount: 1, Kind: model.TransactionPayment,
				Timestamp: baseTime, Seq: bank.NextSeq(),
			}); err != nil {
				return err
			}
		}
		return tx.SaveBank(ctx, bank)
	})

	newest, err := s.Store.ListTransactions(s.Ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(newest, 1)
	s.Equal(model.TransactionID("t-4"), newest[0].ID)

	all, err := s.Store.ListTransactions(s.Ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(all, len(ids))
	for i, txn := range all {
		s.Equal(ids[len(ids)-1-i], txn.ID)
	}

	bank, err := s.Store.GetBank(s.Ctx)
	s.Require().NoError(err)
	s.Equal(int64(len(ids)), bank.Seq)
}

// Highscore tests

func (s *Suite) TestHighscores() {
	s.update(func(ctx context.Context, tx storage.Tx) error {
		for _, hs := range []*model.Highscore{
			{Game: model.GameSnake, UserID: "u-1", Score: 10, AchievedAt: baseTime},
			{Game: model.GameSnake, UserID: "u-2", Score: 30, AchievedAt: baseTime},
			{Game: model.GameTetris, UserID: "u-1", Score: 500, AchievedAt: baseTime},
		} {
			if err := tx.SaveHighscore(ctx, hs); err != nil {
				return err
			}
		}
		return nil
	})

	hs, err := s.Store.GetHighscore(s.Ctx, model.GameSnake, "u-2")
	s.Require().NoError(err)
	s.Equal(30, hs.Score)

	_, err = s.Store.GetHighscore(s.Ctx, model.GamePacman, "u-2")
	s.ErrorIs(err, model.ErrHighscoreNotFound)

	snake, err := s.Store.ListHighscores(s.Ctx, model.GameSnake)
	s.Require().NoError(err)
	s.Len(snake, 2)

	all, err := s.Store.ListHighscores(s.Ctx, "")
	s.Require().NoError(err)
	s.Len(all, 3)
}

// Rifa tests

func (s *Suite) TestRifas() {
	s.update(func(ctx context.Context, tx storage.Tx) error {
		for _, id := range []model.RifaID{"rf-1", "rf-2"} {
			if err := tx.SaveRifa(ctx, &model.RifaRecord{
				ID:          id,
				Name:        "Rifa " + string(id),
				Assignments: []model.RifaAssignment{{Item: "Switch", Player: "Ana"}},
				Count:       1,
				CreatedAt:   baseTime,
			}); err != nil {
				return err
			}
		}
		return nil
	})

	r, err := s.Store.GetRifa(s.Ctx, "rf-1")
	s.Require().NoError(err)
	s.Equal([]model.RifaAssignment{{Item: "Switch", Player: "Ana"}}, r.Assignments)

	s.update(func(ctx context.Context, tx storage.Tx) error {
		return tx.DeleteRifa(ctx, "rf-1")
	})
	_, err = s.Store.GetRifa(s.Ctx, "rf-1")
	s.ErrorIs(err, model.ErrRifaNotFound)

	s.update(func(ctx context.Context, tx storage.Tx) error {
		return tx.DeleteAllRifas(ctx)
	})
	rifas, err := s.Store.ListRifas(s.Ctx)
	s.Require().NoError(err)
	s.Empty(rifas)
}

func (s *Suite) TestPing() {
	s.NoError(s.Store.Ping(s.Ctx))
}
