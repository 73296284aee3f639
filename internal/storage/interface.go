package storage

import (
	"context"
	"errors"

	"github.com/dojosmash/dojo-smash/internal/model"
)

// ErrConflict is returned by Update when a concurrent writer kept winning and the
// transaction could not be committed within the backend's retry budget
var ErrConflict = errors.New("storage: transaction conflict")

// RegistrationFilter narrows a registration listing. Zero fields match everything.
type RegistrationFilter struct {
	UserID model.UserID
	Week   model.Week
}

// WagerFilter narrows a wager listing. An empty States matches every state.
type WagerFilter struct {
	States []model.WagerState
}

// Matches reports whether w passes the filter
func (f WagerFilter) Matches(w *model.Wager) bool {
	if len(f.States) == 0 {
		return true
	}
	for _, s := range f.States {
		if w.State == s {
			return true
		}
	}
	return false
}

// Matches reports whether r passes the filter
func (f RegistrationFilter) Matches(r *model.WeeklyRegistration) bool {
	if f.UserID != "" && r.UserID != f.UserID {
		return false
	}
	if f.Week != "" && r.Week != f.Week {
		return false
	}
	return true
}

// Reader defines the read side of data persistence.
// Returned values are copies; mutating them does not change stored state.
// List results are unordered unless stated otherwise; services sort.
type Reader interface {
	// User operations
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByName(ctx context.Context, name string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)

	// Weekly registration operations
	GetRegistration(ctx context.Context, id model.RegistrationID) (*model.WeeklyRegistration, error)
	ListRegistrations(ctx context.Context, filter RegistrationFilter) ([]*model.WeeklyRegistration, error)

	// Wager operations
	GetWager(ctx context.Context, id model.WagerID) (*model.Wager, error)
	ListWagers(ctx context.Context, filter WagerFilter) ([]*model.Wager, error)

	// Bank operations. GetBank returns an empty account if none has been saved.
	GetBank(ctx context.Context) (*model.BankAccount, error)
	// ListTransactions returns the newest transactions first, at most limit (0 = all)
	ListTransactions(ctx context.Context, limit int) ([]*model.Transaction, error)

	// Highscore operations. An empty game lists every board.
	GetHighscore(ctx context.Context, game model.Game, userID model.UserID) (*model.Highscore, error)
	ListHighscores(ctx context.Context, game model.Game) ([]*model.Highscore, error)

	// Rifa operations
	GetRifa(ctx context.Context, id model.RifaID) (*model.RifaRecord, error)
	ListRifas(ctx context.Context) ([]*model.RifaRecord, error)
}

// Writer defines the write side. Writes are only reachable through a Tx.
type Writer interface {
	SaveUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id model.UserID) error

	SaveRegistration(ctx context.Context, reg *model.WeeklyRegistration) error

	SaveWager(ctx context.Context, wager *model.Wager) error

	SaveBank(ctx context.Context, bank *model.BankAccount) error
	SaveTransaction(ctx context.Context, txn *model.Transaction) error

	SaveHighscore(ctx context.Context, hs *model.Highscore) error

	SaveRifa(ctx context.Context, rifa *model.RifaRecord) error
	DeleteRifa(ctx context.Context, id model.RifaID) error
	DeleteAllRifas(ctx context.Context) error
}

// Tx is a unit of work. Reads observe committed state plus the Tx's own staged
// writes. Nothing staged is visible to others until the Tx commits.
type Tx interface {
	Reader
	Writer
}

// TxFunc is the body of a transaction. Returning an error discards every write.
// It may be invoked more than once if the backend retries on conflict, so it must
// not have side effects outside the Tx.
type TxFunc func(ctx context.Context, tx Tx) error

// Storage defines the interface for data persistence
type Storage interface {
	Reader

	// Update runs fn in a transaction and commits its writes all-or-nothing.
	// Concurrent Updates never lose each other's writes.
	Update(ctx context.Context, fn TxFunc) error

	// Ping checks the backend is reachable
	Ping(ctx context.Context) error

	// Close releases backend resources
	Close() error
}
