package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/dojosmash/dojo-smash/internal/model"
	"github.com/dojosmash/dojo-smash/internal/storage"
)

// Collection names
const (
	usersCollection         = "usuarios"
	registrationsCollection = "conteo_semanal"
	wagersCollection        = "apuestas"
	bankCollection          = "banco"
	transactionsCollection  = "transacciones"
	highscoresCollection    = "highscores"
	rifasCollection         = "rifas"
	metaCollection          = "meta"
)

// ledgerDocID is the meta document every write transaction bumps. Two
// concurrent writers therefore always conflict and one of them is retried,
// even when they touch disjoint documents.
const ledgerDocID = "ledger"

// Storage is a MongoDB-backed implementation of the storage interface
type Storage struct {
	*reader
	client *mongo.Client
	db     *mongo.Database
}

// New connects to MongoDB, verifies the connection and ensures indexes
func New(ctx context.Context, cfg Config) (*Storage, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(cfg.Timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	s := NewWithClient(client, cfg.Database)
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("creating indexes: %w", err)
	}
	return s, nil
}

// NewWithClient creates a MongoDB storage with an existing client
func NewWithClient(client *mongo.Client, database string) *Storage {
	db := client.Database(database)
	return &Storage{
		reader: &reader{db: db},
		client: client,
		db:     db,
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) ensureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		registrationsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "week", Value: 1}}},
			{Keys: bson.D{{Key: "week", Value: 1}}},
		},
		wagersCollection: {
			{Keys: bson.D{{Key: "state", Value: 1}}},
		},
		transactionsCollection: {
			{Keys: bson.D{{Key: "seq", Value: -1}, {Key: "timestamp", Value: -1}}},
		},
		highscoresCollection: {
			{Keys: bson.D{{Key: "game", Value: 1}, {Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for coll, models := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("%s: %w", coll, err)
		}
	}
	return nil
}

// Ping checks the primary is reachable
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client
func (s *Storage) Close() error {
	return s.client.Disconnect(context.Background())
}

// Update runs fn inside a multi-document transaction. The driver retries fn on
// transient errors, including write conflicts with another Update.
func (s *Storage) Update(ctx context.Context, fn storage.TxFunc) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		t := &tx{reader: &reader{db: s.db, sess: sess}}
		if err := fn(sc, t); err != nil {
			return nil, err
		}
		if !t.dirty {
			return nil, nil
		}
		_, err := s.db.Collection(metaCollection).UpdateOne(sc,
			bson.M{"_id": ledgerDocID},
			bson.M{"$inc": bson.M{"version": 1}},
			options.Update().SetUpsert(true),
		)
		return nil, err
	})

	var se mongo.ServerError
	if errors.As(err, &se) && se.HasErrorLabel("TransientTransactionError") {
		return fmt.Errorf("%w: %v", storage.ErrConflict, err)
	}
	return err
}

// tx is a storage.Tx bound to a session with an open transaction
type tx struct {
	*reader
	dirty bool
}

var _ storage.Tx = (*tx)(nil)

func (t *tx) replace(ctx context.Context, coll string, filter bson.M, doc any) error {
	t.dirty = true
	_, err := t.db.Collection(coll).ReplaceOne(t.scope(ctx), filter, doc, options.Replace().SetUpsert(true))
	return err
}

func (t *tx) deleteOne(ctx context.Context, coll string, id any) error {
	t.dirty = true
	_, err := t.db.Collection(coll).DeleteOne(t.scope(ctx), bson.M{"_id": id})
	return err
}

func (t *tx) SaveUser(ctx context.Context, user *model.User) error {
	err := t.replace(ctx, usersCollection, bson.M{"_id": user.ID}, user)
	if mongo.IsDuplicateKeyError(err) {
		return model.ErrUserNameTaken
	}
	return err
}

func (t *tx) DeleteUser(ctx context.Context, id model.UserID) error {
	return t.deleteOne(ctx, usersCollection, id)
}

func (t *tx) SaveRegistration(ctx context.Context, reg *model.WeeklyRegistration) error {
	return t.replace(ctx, registrationsCollection, bson.M{"_id": reg.ID}, reg)
}

func (t *tx) SaveWager(ctx context.Context, wager *model.Wager) error {
	return t.replace(ctx, wagersCollection, bson.M{"_id": wager.ID}, wager)
}

func (t *tx) SaveBank(ctx context.Context, bank *model.BankAccount) error {
	doc := *bank
	doc.ID = model.BankAccountID
	return t.replace(ctx, bankCollection, bson.M{"_id": doc.ID}, &doc)
}

func (t *tx) SaveTransaction(ctx context.Context, txn *model.Transaction) error {
	return t.replace(ctx, transactionsCollection, bson.M{"_id": txn.ID}, txn)
}

func (t *tx) SaveHighscore(ctx context.Context, hs *model.Highscore) error {
	return t.replace(ctx, highscoresCollection, bson.M{"game": hs.Game, "userId": hs.UserID}, hs)
}

func (t *tx) SaveRifa(ctx context.Context, rifa *model.RifaRecord) error {
	return t.replace(ctx, rifasCollection, bson.M{"_id": rifa.ID}, rifa)
}

func (t *tx) DeleteRifa(ctx context.Context, id model.RifaID) error {
	return t.deleteOne(ctx, rifasCollection, id)
}

func (t *tx) DeleteAllRifas(ctx context.Context) error {
	t.dirty = true
	_, err := t.db.Collection(rifasCollection).DeleteMany(t.scope(ctx), bson.M{})
	return err
}
