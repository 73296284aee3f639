package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dojosmash/dojo-smash/internal/config"
	"github.com/dojosmash/dojo-smash/internal/dependencies/clock"
	"github.com/dojosmash/dojo-smash/internal/dependencies/ids"
	"github.com/dojosmash/dojo-smash/internal/dependencies/random"
	"github.com/dojosmash/dojo-smash/internal/events"
	"github.com/dojosmash/dojo-smash/internal/events/natspub"
	"github.com/dojosmash/dojo-smash/internal/events/sse"
	"github.com/dojosmash/dojo-smash/internal/services/auth"
	"github.com/dojosmash/dojo-smash/internal/services/bank"
	"github.com/dojosmash/dojo-smash/internal/services/highscore"
	"github.com/dojosmash/dojo-smash/internal/services/rifa"
	"github.com/dojosmash/dojo-smash/internal/services/tabla"
	"github.com/dojosmash/dojo-smash/internal/services/users"
	"github.com/dojosmash/dojo-smash/internal/services/wager"
	"github.com/dojosmash/dojo-smash/internal/services/weekly"
	"github.com/dojosmash/dojo-smash/internal/storage"
	"github.com/dojosmash/dojo-smash/internal/storage/memory"
	mongostorage "github.com/dojosmash/dojo-smash/internal/storage/mongo"
	redisstorage "github.com/dojosmash/dojo-smash/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeMongo  = "mongo"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage     storage.Storage
	StorageType string

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	IDs    ids.Generator

	// Event sinks
	Hub    *sse.Hub
	NATS   *natspub.Publisher
	Events events.Publisher

	// Services
	UserService      *users.Service
	WeeklyService    *weekly.Service
	WagerService     *wager.Service
	BankService      *bank.Service
	HighscoreService *highscore.Service
	RifaService      *rifa.Service
	TablaService     *tabla.Service
	AuthService      *auth.Service

	Logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "mongo")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// MongoConfig holds Mongo connection settings (required if StorageType is "mongo")
	MongoConfig *mongostorage.Config
	// NATSConfig enables the NATS event sink (optional)
	NATSConfig *natspub.Config
	// AuthConfig holds the admin key settings. Zero value disables authorization.
	AuthConfig auth.Config
	// Location is the clock's timezone, which decides week rollover (UTC if nil)
	Location *time.Location
}

// ConfigFrom maps the loaded server configuration onto a factory Config
func ConfigFrom(c *config.Config, logger *slog.Logger) (Config, error) {
	loc, err := c.Server.Location()
	if err != nil {
		return Config{}, err
	}
	redisCfg := redisstorage.Config{
		URL:          c.Redis.URL,
		PoolSize:     c.Redis.PoolSize,
		MinIdleConns: c.Redis.MinIdleConns,
		MaxRetries:   c.Redis.MaxRetries,
	}
	mongoCfg := mongostorage.Config{
		URI:      c.Mongo.URI,
		Database: c.Mongo.Database,
		Timeout:  c.Mongo.Timeout,
	}
	cfg := Config{
		Logger:      logger,
		Location:    loc,
		StorageType: c.Storage.Type,
		RedisConfig: &redisCfg,
		MongoConfig: &mongoCfg,
		AuthConfig: auth.Config{
			Key:             c.Auth.AdminKey,
			KeyHash:         c.Auth.AdminKeyHash,
			SessionDuration: c.Auth.SessionDuration,
		},
	}
	if c.NATS.URL != "" {
		cfg.NATSConfig = &natspub.Config{URL: c.NATS.URL, SubjectPrefix: c.NATS.SubjectPrefix}
	}
	return cfg, nil
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}
	store, err := newStorage(ctx, storageType, cfg)
	if err != nil {
		return nil, err
	}

	var nats *natspub.Publisher
	if cfg.NATSConfig != nil {
		nats, err = natspub.Connect(*cfg.NATSConfig, logger)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
	}

	app, err := newWithDependencies(store, clock.New(cfg.Location), random.New(), ids.New(), nats, cfg.AuthConfig, logger)
	if err != nil {
		_ = store.Close()
		if nats != nil {
			_ = nats.Close()
		}
		return nil, err
	}
	app.StorageType = storageType
	logger.Info("application wired",
		slog.String("storage", storageType),
		slog.Bool("nats", nats != nil),
		slog.Bool("auth", app.AuthService.Enabled()))
	return app, nil
}

func newStorage(ctx context.Context, storageType string, cfg Config) (storage.Storage, error) {
	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypeMongo:
		if cfg.MongoConfig == nil {
			return nil, errors.New("MongoConfig required when StorageType is mongo")
		}
		return mongostorage.New(ctx, *cfg.MongoConfig)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'mongo'", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	gen ids.Generator,
	nats *natspub.Publisher,
	authCfg auth.Config,
	logger *slog.Logger,
) (*App, error) {
	hub := sse.NewHub(logger)
	go hub.Run()

	sinks := events.Multi{hub}
	if nats != nil {
		sinks = append(sinks, nats)
	}

	authService, err := auth.New(clk, authCfg, logger)
	if err != nil {
		hub.Close()
		return nil, err
	}

	return &App{
		Storage:          store,
		StorageType:      StorageTypeMemory,
		Clock:            clk,
		Random:           rnd,
		IDs:              gen,
		Hub:              hub,
		NATS:             nats,
		Events:           sinks,
		UserService:      users.New(store, clk, gen, sinks, logger),
		WeeklyService:    weekly.New(store, clk, gen, sinks, logger),
		WagerService:     wager.New(store, clk, gen, sinks, logger),
		BankService:      bank.New(store, clk, gen, sinks, logger),
		HighscoreService: highscore.New(store, clk, sinks, logger),
		RifaService:      rifa.New(store, clk, gen, rnd, sinks, logger),
		TablaService:     tabla.New(store, clk, logger),
		AuthService:      authService,
		Logger:           logger,
	}, nil
}

// Close stops the event sinks and releases the storage backend
func (a *App) Close() error {
	a.Hub.Close()
	var errs []error
	if a.NATS != nil {
		errs = append(errs, a.NATS.Close())
	}
	errs = append(errs, a.Storage.Close())
	return errors.Join(errs...)
}
