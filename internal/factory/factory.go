package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/mcoot/swordgame-go/internal/dependencies/clock"
	"github.com/mcoot/swordgame-go/internal/dependencies/random"
	"github.com/mcoot/swordgame-go/internal/model"
	"github.com/mcoot/swordgame-go/internal/services/bot"
	"github.com/mcoot/swordgame-go/internal/services/enhance"
	"github.com/mcoot/swordgame-go/internal/services/registry"
	"github.com/mcoot/swordgame-go/internal/services/session"
	"github.com/mcoot/swordgame-go/internal/storage"
	"github.com/mcoot/swordgame-go/internal/storage/memory"
	redisstorage "github.com/mcoot/swordgame-go/internal/storage/redis"
	"github.com/mcoot/swordgame-go/internal/transport/ws"
	"github.com/mcoot/swordgame-go/internal/web/sse"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// botStream is the seeded stream bots draw from, kept apart from enhancement rolls
const botStream = 1

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	// BotRandom drives bot decisions apart from enhancement rolls
	BotRandom random.Random

	// Services
	Registry   *registry.Registry
	Engine     *enhance.Engine
	Dispatcher *session.Dispatcher
	Bots       *bot.Service

	// Transports
	Hub  *ws.Hub
	Feed *sse.Hub

	botConfig BotConfig
	logger    *slog.Logger
	wg        sync.WaitGroup
}

// BotConfig controls the house bots started with the app
type BotConfig struct {
	// Count is how many bots join at startup; zero disables them
	Count int
	// Strategy names the strategy every bot uses
	Strategy string
	// Interval is the time between bot actions
	Interval time.Duration
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// RandomSeed switches enhancement rolls to a seeded generator when non-zero
	RandomSeed uint64
	// WebSocket tunes per-connection limits; zero fields use ws.DefaultOptions
	WebSocket ws.Options
	// Bots configures house bots (optional)
	Bots BotConfig
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig, logger)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	clk := clock.New()

	var rnd, botRnd random.Random = random.New(), random.New()
	if cfg.RandomSeed != 0 {
		logger.Warn("using seeded randomness", slog.Uint64("seed", cfg.RandomSeed))
		rnd = random.NewSeeded(cfg.RandomSeed)
		botRnd = random.NewSeededStream(cfg.RandomSeed, botStream)
	}

	if cfg.Bots.Count > 0 {
		if cfg.Bots.Interval <= 0 {
			return nil, errors.New("bot interval must be positive")
		}
		if _, ok := bot.DefaultStrategies(botRnd)[cfg.Bots.Strategy]; !ok {
			return nil, fmt.Errorf("unknown bot strategy: %q", cfg.Bots.Strategy)
		}
	}

	app := newWithDependencies(store, clk, rnd, botRnd, cfg.WebSocket, logger)
	app.botConfig = cfg.Bots
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd, botRnd random.Random, wsOpts ws.Options, logger *slog.Logger) *App {
	reg := registry.New(store, clk, logger)
	engine := enhance.New(rnd)
	hub := ws.NewHub(wsOpts, logger)
	feed := sse.NewHub(logger)
	dispatcher := session.NewDispatcher(reg, engine, session.Tee(hub, feed), logger)
	bots := bot.NewService(dispatcher, bot.DefaultStrategies(botRnd), logger)

	return &App{
		Storage:    store,
		Clock:      clk,
		Random:     rnd,
		BotRandom:  botRnd,
		Registry:   reg,
		Engine:     engine,
		Dispatcher: dispatcher,
		Bots:       bots,
		Hub:        hub,
		Feed:       feed,
		logger:     logger,
	}
}

// Start clears stale player records, then runs the dispatcher, the websocket hub,
// the spectator feed and any configured bots until ctx is cancelled. Use Wait to block until they exit.
func (a *App) Start(ctx context.Context) error {
	// Records left by a previous process describe connections that no longer exist
	if err := a.Registry.Reset(ctx); err != nil {
		return fmt.Errorf("reset registry: %w", err)
	}

	a.wg.Add(4)
	go func() {
		defer a.wg.Done()
		_ = a.Dispatcher.Run(ctx)
	}()
	go func() {
		defer a.wg.Done()
		a.Hub.Run(ctx)
	}()
	go func() {
		defer a.wg.Done()
		a.Feed.Run()
	}()
	go func() {
		defer a.wg.Done()
		<-ctx.Done()
		a.Feed.Close()
	}()

	if a.botConfig.Count == 0 {
		return nil
	}
	for range a.botConfig.Count {
		if _, err := a.Bots.Spawn(ctx, a.botConfig.Strategy); err != nil {
			return fmt.Errorf("spawn bot: %w", err)
		}
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.Bots.Run(ctx, a.botConfig.Interval)
	}()

	return nil
}

// Wait blocks until every loop started by Start has exited
func (a *App) Wait() {
	a.wg.Wait()
}

// Greeting builds the roster snapshot sent to new spectators
func (a *App) Greeting() sse.Greeting {
	return func(r *http.Request) (model.Event, error) {
		roster, err := a.Dispatcher.Snapshot(r.Context())
		if err != nil {
			return model.Event{}, err
		}
		return model.Event{Name: model.EventInitUsers, Data: roster}, nil
	}
}

// Close releases storage connections
func (a *App) Close() error {
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
