package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/dojosmash/dojo-smash/internal/model"
	"github.com/dojosmash/dojo-smash/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Stored values are never mutated in place: every save stores a copy and every
// read returns one, so a transaction can work on a shallow copy of the maps and
// publish it with a single pointer swap.
type Storage struct {
	mu    sync.RWMutex // guards state; held for writing for the whole of an Update
	state *state
}

type state struct {
	users         map[model.UserID]*model.User
	registrations map[model.RegistrationID]*model.WeeklyRegistration
	wagers        map[model.WagerID]*model.Wager
	bank          *model.BankAccount
	transactions  map[model.TransactionID]*model.Transaction
	highscores    map[highscoreKey]*model.Highscore
	rifas         map[model.RifaID]*model.RifaRecord
}

type highscoreKey struct {
	game   model.Game
	userID model.UserID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		state: &state{
			users:         make(map[model.UserID]*model.User),
			registrations: make(map[model.RegistrationID]*model.WeeklyRegistration),
			wagers:        make(map[model.WagerID]*model.Wager),
			transactions:  make(map[model.TransactionID]*model.Transaction),
			highscores:    make(map[highscoreKey]*model.Highscore),
			rifas:         make(map[model.RifaID]*model.RifaRecord),
		},
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (st *state) clone() *state {
	c := &state{
		users:         maps.Clone(st.users),
		registrations: maps.Clone(st.registrations),
		wagers:        maps.Clone(st.wagers),
		transactions:  maps.Clone(st.transactions),
		highscores:    maps.Clone(st.highscores),
		rifas:         maps.Clone(st.rifas),
	}
	if st.bank != nil {
		b := *st.bank
		c.bank = &b
	}
	return c
}

// Update runs fn against a private copy of the state and swaps it in on success.
// Writers are fully serialized, which rules out lost updates.
func (s *Storage) Update(ctx context.Context, fn storage.TxFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.state.clone()
	if err := fn(ctx, &tx{st: work}); err != nil {
		return err
	}
	s.state = work
	return nil
}

// Ping always succeeds
func (s *Storage) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op
func (s *Storage) Close() error {
	return nil
}

// snapshot returns a read view of the committed state
func (s *Storage) snapshot() *tx {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &tx{st: s.state}
}

// Read operations delegate to a tx over the committed state

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	return s.snapshot().GetUser(ctx, id)
}

func (s *Storage) GetUserByName(ctx context.Context, name string) (*model.User, error) {
	return s.snapshot().GetUserByName(ctx, name)
}

func (s *Storage) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.snapshot().ListUsers(ctx)
}

func (s *Storage) GetRegistration(ctx context.Context, id model.RegistrationID) (*model.WeeklyRegistration, error) {
	return s.snapshot().GetRegistration(ctx, id)
}

func (s *Storage) ListRegistrations(ctx context.Context, filter storage.RegistrationFilter) ([]*model.WeeklyRegistration, error) {
	return s.snapshot().ListRegistrations(ctx, filter)
}

func (s *Storage) GetWager(ctx context.Context, id model.WagerID) (*model.Wager, error) {
	return s.snapshot().GetWager(ctx, id)
}

func (s *Storage) ListWagers(ctx context.Context, filter storage.WagerFilter) ([]*model.Wager, error) {
	return s.snapshot().ListWagers(ctx, filter)
}

func (s *Storage) GetBank(ctx context.Context) (*model.BankAccount, error) {
	return s.snapshot().GetBank(ctx)
}

func (s *Storage) ListTransactions(ctx context.Context, limit int) ([]*model.Transaction, error) {
	return s.snapshot().ListTransactions(ctx, limit)
}

func (s *Storage) GetHighscore(ctx context.Context, game model.Game, userID model.UserID) (*model.Highscore, error) {
	return s.snapshot().GetHighscore(ctx, game, userID)
}

func (s *Storage) ListHighscores(ctx context.Context, game model.Game) ([]*model.Highscore, error) {
	return s.snapshot().ListHighscores(ctx, game)
}

func (s *Storage) GetRifa(ctx context.Context, id model.RifaID) (*model.RifaRecord, error) {
	return s.snapshot().GetRifa(ctx, id)
}

func (s *Storage) ListRifas(ctx context.Context) ([]*model.RifaRecord, error) {
	return s.snapshot().ListRifas(ctx)
}

// tx reads and writes one state value. The caller provides locking.
type tx struct {
	st *state
}

var _ storage.Tx = (*tx)(nil)

// User operations

func (t *tx) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	u, ok := t.st.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return u.Clone(), nil
}

func (t *tx) GetUserByName(ctx context.Context, name string) (*model.User, error) {
	for _, u := range t.st.users {
		if u.Name == name {
			return u.Clone(), nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (t *tx) ListUsers(ctx context.Context) ([]*model.User, error) {
	users := make([]*model.User, 0, len(t.st.users))
	for _, u := range t.st.users {
		users = append(users, u.Clone())
	}
	return users, nil
}

func (t *tx) SaveUser(ctx context.Context, user *model.User) error {
	t.st.users[user.ID] = user.Clone()
	return nil
}

func (t *tx) DeleteUser(ctx context.Context, id model.UserID) error {
	delete(t.st.users, id)
	return nil
}

// Weekly registration operations

func (t *tx) GetRegistration(ctx context.Context, id model.RegistrationID) (*model.WeeklyRegistration, error) {
	r, ok := t.st.registrations[id]
	if !ok {
		return nil, model.ErrRegistrationNotFound
	}
	return r.Clone(), nil
}

func (t *tx) ListRegistrations(ctx context.Context, filter storage.RegistrationFilter) ([]*model.WeeklyRegistration, error) {
	var regs []*model.WeeklyRegistration
	for _, r := range t.st.registrations {
		if filter.Matches(r) {
			regs = append(regs, r.Clone())
		}
	}
	return regs, nil
}

func (t *tx) SaveRegistration(ctx context.Context, reg *model.WeeklyRegistration) error {
	t.st.registrations[reg.ID] = reg.Clone()
	return nil
}

// Wager operations

func (t *tx) GetWager(ctx context.Context, id model.WagerID) (*model.Wager, error) {
	w, ok := t.st.wagers[id]
	if !ok {
		return nil, model.ErrWagerNotFound
	}
	return w.Clone(), nil
}

func (t *tx) ListWagers(ctx context.Context, filter storage.WagerFilter) ([]*model.Wager, error) {
	var wagers []*model.Wager
	for _, w := range t.st.wagers {
		if filter.Matches(w) {
			wagers = append(wagers, w.Clone())
		}
	}
	return wagers, nil
}

func (t *tx) SaveWager(ctx context.Context, wager *model.Wager) error {
	t.st.wagers[wager.ID] = wager.Clone()
	return nil
}

// Bank operations

func (t *tx) GetBank(ctx context.Context) (*model.BankAccount, error) {
	if t.st.bank == nil {
		return model.NewBankAccount(), nil
	}
	b := *t.st.bank
	return &b, nil
}

func (t *tx) SaveBank(ctx context.Context, bank *model.BankAccount) error {
	b := *bank
	t.st.bank = &b
	return nil
}

func (t *tx) ListTransactions(ctx context.Context, limit int) ([]*model.Transaction, error) {
	txns := make([]*model.Transaction, 0, len(t.st.transactions))
	for _, txn := range t.st.transactions {
		c := *txn
		txns = append(txns, &c)
	}
	model.SortTransactionsNewestFirst(txns)
	if limit > 0 && len(txns) > limit {
		txns = txns[:limit]
	}
	return txns, nil
}

func (t *tx) SaveTransaction(ctx context.Context, txn *model.Transaction) error {
	c := *txn
	t.st.transactions[txn.ID] = &c
	return nil
}

// Highscore operations

func (t *tx) GetHighscore(ctx context.Context, game model.Game, userID model.UserID) (*model.Highscore, error) {
	hs, ok := t.st.highscores[highscoreKey{game: game, userID: userID}]
	if !ok {
		return nil, model.ErrHighscoreNotFound
	}
	c := *hs
	return &c, nil
}

func (t *tx) ListHighscores(ctx context.Context, game model.Game) ([]*model.Highscore, error) {
	var scores []*model.Highscore
	for key, hs := range t.st.highscores {
		if game == "" || key.game == game {
			c := *hs
			scores = append(scores, &c)
		}
	}
	return scores, nil
}

func (t *tx) SaveHighscore(ctx context.Context, hs *model.Highscore) error {
	c := *hs
	t.st.highscores[highscoreKey{game: hs.Game, userID: hs.UserID}] = &c
	return nil
}

// Rifa operations

func (t *tx) GetRifa(ctx context.Context, id model.RifaID) (*model.RifaRecord, error) {
	r, ok := t.st.rifas[id]
	if !ok {
		return nil, model.ErrRifaNotFound
	}
	return r.Clone(), nil
}

func (t *tx) ListRifas(ctx context.Context) ([]*model.RifaRecord, error) {
	rifas := make([]*model.RifaRecord, 0, len(t.st.rifas))
	for _, r := range t.st.rifas {
		rifas = append(rifas, r.Clone())
	}
	return rifas, nil
}

func (t *tx) SaveRifa(ctx context.Context, rifa *model.RifaRecord) error {
	t.st.rifas[rifa.ID] = rifa.Clone()
	return nil
}

func (t *tx) DeleteRifa(ctx context.Context, id model.RifaID) error {
	delete(t.st.rifas, id)
	return nil
}

func (t *tx) DeleteAllRifas(ctx context.Context) error {
	t.st.rifas = make(map[model.RifaID]*model.RifaRecord)
	return nil
}
