package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/dojosmash/dojo-smash/internal/model"
	"github.com/dojosmash/dojo-smash/internal/storage"
)

// overlay holds writes staged by a transaction until EXEC
type overlay struct {
	values map[string][]byte          // nil value marks a deleted key
	sets   map[string]map[string]bool // set key -> member -> added (true) or removed (false)
}

func newOverlay() *overlay {
	return &overlay{
		values: make(map[string][]byte),
		sets:   make(map[string]map[string]bool),
	}
}

func (o *overlay) empty() bool {
	return len(o.values) == 0 && len(o.sets) == 0
}

func (o *overlay) put(key string, v []byte) {
	o.values[key] = v
}

func (o *overlay) del(key string) {
	o.values[key] = nil
}

func (o *overlay) member(setKey, id string, present bool) {
	if o.sets[setKey] == nil {
		o.sets[setKey] = make(map[string]bool)
	}
	o.sets[setKey][id] = present
}

// apply queues every staged write on pipe
func (o *overlay) apply(ctx context.Context, pipe redis.Pipeliner) {
	for key, v := range o.values {
		if v == nil {
			pipe.Del(ctx, key)
			continue
		}
		pipe.Set(ctx, key, v, 0)
	}
	for setKey, members := range o.sets {
		for id, present := range members {
			if present {
				pipe.SAdd(ctx, setKey, id)
			} else {
				pipe.SRem(ctx, setKey, id)
			}
		}
	}
}

// tx is a storage.Tx over a WATCHed connection
type tx struct {
	*reader
	ov *overlay
}

var _ storage.Tx = (*tx)(nil)

func newTx(rtx *redis.Tx) *tx {
	ov := newOverlay()
	return &tx{
		reader: &reader{c: rtx, ov: ov},
		ov:     ov,
	}
}

func (t *tx) putJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	t.ov.put(key, data)
	return nil
}

// dropNameIndex removes the name index entry if it still points at id
func (t *tx) dropNameIndex(ctx context.Context, name string, id model.UserID) error {
	current, err := t.get(ctx, userNameIndexKey(name))
	if err != nil {
		return err
	}
	if string(current) == string(id) {
		t.ov.del(userNameIndexKey(name))
	}
	return nil
}

// User operations

func (t *tx) SaveUser(ctx context.Context, user *model.User) error {
	prev, err := t.GetUser(ctx, user.ID)
	switch {
	case errors.Is(err, model.ErrUserNotFound):
	case err != nil:
		return err
	case prev.Name != user.Name:
		if err := t.dropNameIndex(ctx, prev.Name, user.ID); err != nil {
			return err
		}
	}

	if err := t.putJSON(userKey(user.ID), user); err != nil {
		return err
	}
	t.ov.member(usersIndexKey(), string(user.ID), true)
	t.ov.put(userNameIndexKey(user.Name), []byte(user.ID))
	return nil
}

func (t *tx) DeleteUser(ctx context.Context, id model.UserID) error {
	prev, err := t.GetUser(ctx, id)
	if errors.Is(err, model.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := t.dropNameIndex(ctx, prev.Name, id); err != nil {
		return err
	}
	t.ov.del(userKey(id))
	t.ov.member(usersIndexKey(), string(id), false)
	return nil
}

// Weekly registration operations

func (t *tx) SaveRegistration(ctx context.Context, reg *model.WeeklyRegistration) error {
	if err := t.putJSON(registrationKey(reg.ID), reg); err != nil {
		return err
	}
	t.ov.member(registrationsIndexKey(), string(reg.ID), true)
	return nil
}

// Wager operations

func (t *tx) SaveWager(ctx context.Context, wager *model.Wager) error {
	if err := t.putJSON(wagerKey(wager.ID), wager); err != nil {
		return err
	}
	t.ov.member(wagersIndexKey(), string(wager.ID), true)
	return nil
}

// Bank operations

func (t *tx) SaveBank(ctx context.Context, bank *model.BankAccount) error {
	return t.putJSON(bankKey(), bank)
}

func (t *tx) SaveTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := t.putJSON(transactionKey(txn.ID), txn); err != nil {
		return err
	}
	t.ov.member(transactionsIndexKey(), string(txn.ID), true)
	return nil
}

// Highscore operations

func (t *tx) SaveHighscore(ctx context.Context, hs *model.Highscore) error {
	if err := t.putJSON(highscoreKey(hs.Game, hs.UserID), hs); err != nil {
		return err
	}
	t.ov.member(highscoresIndexKey(hs.Game), string(hs.UserID), true)
	return nil
}

// Rifa operations

func (t *tx) SaveRifa(ctx context.Context, rifa *model.RifaRecord) error {
	if err := t.putJSON(rifaKey(rifa.ID), rifa); err != nil {
		return err
	}
	t.ov.member(rifasIndexKey(), string(rifa.ID), true)
	return nil
}

func (t *tx) DeleteRifa(ctx context.Context, id model.RifaID) error {
	t.ov.del(rifaKey(id))
	t.ov.member(rifasIndexKey(), string(id), false)
	return nil
}

func (t *tx) DeleteAllRifas(ctx context.Context) error {
	ids, err := t.members(ctx, rifasIndexKey())
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := t.DeleteRifa(ctx, model.RifaID(id)); err != nil {
			return err
		}
	}
	return nil
}
