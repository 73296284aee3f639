package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dojosmash/dojo-smash/internal/model"
	"github.com/dojosmash/dojo-smash/internal/storage"
)

// reader implements storage.Reader. With a session set, every operation runs
// inside that session's transaction.
type reader struct {
	db   *mongo.Database
	sess mongo.Session
}

func (r *reader) scope(ctx context.Context) context.Context {
	if r.sess == nil {
		return ctx
	}
	return mongo.NewSessionContext(ctx, r.sess)
}

func findOne[T any](ctx context.Context, r *reader, coll string, filter bson.M, notFound error) (*T, error) {
	var v T
	err := r.db.Collection(coll).FindOne(r.scope(ctx), filter).Decode(&v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func findAll[T any](ctx context.Context, r *reader, coll string, filter bson.M, opts ...*options.FindOptions) ([]*T, error) {
	ctx = r.scope(ctx)
	cur, err := r.db.Collection(coll).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	out := []*T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

var errNoBank = errors.New("bank account not saved")

// User operations

func (r *reader) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	return findOne[model.User](ctx, r, usersCollection, bson.M{"_id": id}, model.ErrUserNotFound)
}

func (r *reader) GetUserByName(ctx context.Context, name string) (*model.User, error) {
	return findOne[model.User](ctx, r, usersCollection, bson.M{"name": name}, model.ErrUserNotFound)
}

func (r *reader) ListUsers(ctx context.Context) ([]*model.User, error) {
	return findAll[model.User](ctx, r, usersCollection, bson.M{})
}

// Weekly registration operations

func (r *reader) GetRegistration(ctx context.Context, id model.RegistrationID) (*model.WeeklyRegistration, error) {
	return findOne[model.WeeklyRegistration](ctx, r, registrationsCollection, bson.M{"_id": id}, model.ErrRegistrationNotFound)
}

func (r *reader) ListRegistrations(ctx context.Context, filter storage.RegistrationFilter) ([]*model.WeeklyRegistration, error) {
	q := bson.M{}
	if filter.UserID != "" {
		q["userId"] = filter.UserID
	}
	if filter.Week != "" {
		q["week"] = filter.Week
	}
	return findAll[model.WeeklyRegistration](ctx, r, registrationsCollection, q)
}

// Wager operations

func (r *reader) GetWager(ctx context.Context, id model.WagerID) (*model.Wager, error) {
	return findOne[model.Wager](ctx, r, wagersCollection, bson.M{"_id": id}, model.ErrWagerNotFound)
}

func (r *reader) ListWagers(ctx context.Context, filter storage.WagerFilter) ([]*model.Wager, error) {
	q := bson.M{}
	if len(filter.States) > 0 {
		q["state"] = bson.M{"$in": filter.States}
	}
	return findAll[model.Wager](ctx, r, wagersCollection, q)
}

// Bank operations

func (r *reader) GetBank(ctx context.Context) (*model.BankAccount, error) {
	bank, err := findOne[model.BankAccount](ctx, r, bankCollection, bson.M{"_id": model.BankAccountID}, errNoBank)
	if errors.Is(err, errNoBank) {
		return model.NewBankAccount(), nil
	}
	return bank, err
}

func (r *reader) ListTransactions(ctx context.Context, limit int) ([]*model.Transaction, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "seq", Value: -1},
		{Key: "timestamp", Value: -1},
		{Key: "_id", Value: -1},
	})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return findAll[model.Transaction](ctx, r, transactionsCollection, bson.M{}, opts)
}

// Highscore operations

func (r *reader) GetHighscore(ctx context.Context, game model.Game, userID model.UserID) (*model.Highscore, error) {
	return findOne[model.Highscore](ctx, r, highscoresCollection, bson.M{"game": game, "userId": userID}, model.ErrHighscoreNotFound)
}

func (r *reader) ListHighscores(ctx context.Context, game model.Game) ([]*model.Highscore, error) {
	q := bson.M{}
	if game != "" {
		q["game"] = game
	}
	return findAll[model.Highscore](ctx, r, highscoresCollection, q)
}

// Rifa operations

func (r *reader) GetRifa(ctx context.Context, id model.RifaID) (*model.RifaRecord, error) {
	return findOne[model.RifaRecord](ctx, r, rifasCollection, bson.M{"_id": id}, model.ErrRifaNotFound)
}

func (r *reader) ListRifas(ctx context.Context) ([]*model.RifaRecord, error) {
	return findAll[model.RifaRecord](ctx, r, rifasCollection, bson.M{})
}
