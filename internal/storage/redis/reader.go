package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/dojosmash/dojo-smash/internal/model"
	"github.com/dojosmash/dojo-smash/internal/storage"
)

// cmdReader is the subset of commands shared by *redis.Client and *redis.Tx
type cmdReader interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
}

// reader implements storage.Reader. Inside a transaction ov holds the staged
// writes, which take precedence over what Redis returns.
type reader struct {
	c  cmdReader
	ov *overlay
}

// get returns the raw value at key, or nil if it does not exist
func (r *reader) get(ctx context.Context, key string) ([]byte, error) {
	if r.ov != nil {
		if v, ok := r.ov.values[key]; ok {
			return v, nil
		}
	}
	data, err := r.c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return data, err
}

// getMany returns the raw values for keys in order, nil where missing
func (r *reader) getMany(ctx context.Context, keys []string) ([][]byte, error) {
	out := make([][]byte, len(keys))
	var fetch []string
	var fetchIdx []int
	for i, k := range keys {
		if r.ov != nil {
			if v, ok := r.ov.values[k]; ok {
				out[i] = v
				continue
			}
		}
		fetch = append(fetch, k)
		fetchIdx = append(fetchIdx, i)
	}
	if len(fetch) == 0 {
		return out, nil
	}

	values, err := r.c.MGet(ctx, fetch...).Result()
	if err != nil {
		return nil, err
	}
	for j, val := range values {
		if s, ok := val.(string); ok {
			out[fetchIdx[j]] = []byte(s)
		}
	}
	return out, nil
}

// members returns the ids in an index set
func (r *reader) members(ctx context.Context, setKey string) ([]string, error) {
	ids, err := r.c.SMembers(ctx, setKey).Result()
	if err != nil {
		return nil, err
	}
	if r.ov == nil || r.ov.sets[setKey] == nil {
		return ids, nil
	}

	staged := r.ov.sets[setKey]
	out := make([]string, 0, len(ids)+len(staged))
	for _, id := range ids {
		if _, ok := staged[id]; !ok {
			out = append(out, id)
		}
	}
	for id, present := range staged {
		if present {
			out = append(out, id)
		}
	}
	return out, nil
}

func getJSON[T any](ctx context.Context, r *reader, key string, notFound error) (*T, error) {
	data, err := r.get(ctx, key)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, notFound
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func listJSON[T any](ctx context.Context, r *reader, setKey string, keyFor func(id string) string) ([]*T, error) {
	ids, err := r.members(ctx, setKey)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*T{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = keyFor(id)
	}
	values, err := r.getMany(ctx, keys)
	if err != nil {
		return nil, err
	}

	out := make([]*T, 0, len(values))
	for _, data := range values {
		if data == nil {
			continue // Index entry without a value
		}
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, nil
}

// User operations

func (r *reader) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	return getJSON[model.User](ctx, r, userKey(id), model.ErrUserNotFound)
}

func (r *reader) GetUserByName(ctx context.Context, name string) (*model.User, error) {
	id, err := r.get(ctx, userNameIndexKey(name))
	if err != nil {
		return nil, err
	}
	if id == nil {
		return nil, model.ErrUserNotFound
	}
	return r.GetUser(ctx, model.UserID(id))
}

func (r *reader) ListUsers(ctx context.Context) ([]*model.User, error) {
	return listJSON[model.User](ctx, r, usersIndexKey(), func(id string) string {
		return userKey(model.UserID(id))
	})
}

// Weekly registration operations

func (r *reader) GetRegistration(ctx context.Context, id model.RegistrationID) (*model.WeeklyRegistration, error) {
	return getJSON[model.WeeklyRegistration](ctx, r, registrationKey(id), model.ErrRegistrationNotFound)
}

func (r *reader) ListRegistrations(ctx context.Context, filter storage.RegistrationFilter) ([]*model.WeeklyRegistration, error) {
	all, err := listJSON[model.WeeklyRegistration](ctx, r, registrationsIndexKey(), func(id string) string {
		return registrationKey(model.RegistrationID(id))
	})
	if err != nil {
		return nil, err
	}
	regs := all[:0]
	for _, reg := range all {
		if filter.Matches(reg) {
			regs = append(regs, reg)
		}
	}
	return regs, nil
}

// Wager operations

func (r *reader) GetWager(ctx context.Context, id model.WagerID) (*model.Wager, error) {
	return getJSON[model.Wager](ctx, r, wagerKey(id), model.ErrWagerNotFound)
}

func (r *reader) ListWagers(ctx context.Context, filter storage.WagerFilter) ([]*model.Wager, error) {
	all, err := listJSON[model.Wager](ctx, r, wagersIndexKey(), func(id string) string {
		return wagerKey(model.WagerID(id))
	})
	if err != nil {
		return nil, err
	}
	wagers := all[:0]
	for _, w := range all {
		if filter.Matches(w) {
			wagers = append(wagers, w)
		}
	}
	return wagers, nil
}

// Bank operations

func (r *reader) GetBank(ctx context.Context) (*model.BankAccount, error) {
	bank, err := getJSON[model.BankAccount](ctx, r, bankKey(), errNoBank)
	if errors.Is(err, errNoBank) {
		return model.NewBankAccount(), nil
	}
	return bank, err
}

var errNoBank = errors.New("bank account not saved")

func (r *reader) ListTransactions(ctx context.Context, limit int) ([]*model.Transaction, error) {
	txns, err := listJSON[model.Transaction](ctx, r, transactionsIndexKey(), func(id string) string {
		return transactionKey(model.TransactionID(id))
	})
	if err != nil {
		return nil, err
	}
	model.SortTransactionsNewestFirst(txns)
	if limit > 0 && len(txns) > limit {
		txns = txns[:limit]
	}
	return txns, nil
}

// Highscore operations

func (r *reader) GetHighscore(ctx context.Context, game model.Game, userID model.UserID) (*model.Highscore, error) {
	return getJSON[model.Highscore](ctx, r, highscoreKey(game, userID), model.ErrHighscoreNotFound)
}

func (r *reader) ListHighscores(ctx context.Context, game model.Game) ([]*model.Highscore, error) {
	games := model.Games
	if game != "" {
		games = []model.Game{game}
	}

	var scores []*model.Highscore
	for _, g := range games {
		board, err := listJSON[model.Highscore](ctx, r, highscoresIndexKey(g), func(id string) string {
			return highscoreKey(g, model.UserID(id))
		})
		if err != nil {
			return nil, err
		}
		scores = append(scores, board...)
	}
	return scores, nil
}

// Rifa operations

func (r *reader) GetRifa(ctx context.Context, id model.RifaID) (*model.RifaRecord, error) {
	return getJSON[model.RifaRecord](ctx, r, rifaKey(id), model.ErrRifaNotFound)
}

func (r *reader) ListRifas(ctx context.Context) ([]*model.RifaRecord, error) {
	return listJSON[model.RifaRecord](ctx, r, rifasIndexKey(), func(id string) string {
		return rifaKey(model.RifaID(id))
	})
}
