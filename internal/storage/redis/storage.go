package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dojosmash/dojo-smash/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Every entity is a JSON string key with a SET index of ids per entity type.
// Updates use optimistic locking on a single version key.
type Storage struct {
	*reader
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		reader: &reader{c: client},
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Update runs fn under WATCH of the version key and commits its staged writes in
// one MULTI/EXEC. If another Update commits first, fn is run again from scratch.
func (s *Storage) Update(ctx context.Context, fn storage.TxFunc) error {
	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := s.client.Watch(ctx, func(rtx *redis.Tx) error {
			t := newTx(rtx)
			if err := fn(ctx, t); err != nil {
				return err
			}
			if t.ov.empty() {
				return nil
			}

			_, err := rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				t.ov.apply(ctx, pipe)
				pipe.Incr(ctx, versionKey())
				return nil
			})
			return err
		}, versionKey())

		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return storage.ErrConflict
}
