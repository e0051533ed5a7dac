// Package factory wires the application components together.
package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/pdenton/rosterd/internal/dependencies/clock"
	"github.com/pdenton/rosterd/internal/dependencies/random"
	"github.com/pdenton/rosterd/internal/services/adminauth"
	"github.com/pdenton/rosterd/internal/services/flush"
	"github.com/pdenton/rosterd/internal/services/gate"
	"github.com/pdenton/rosterd/internal/services/ledger"
	"github.com/pdenton/rosterd/internal/services/roster"
	"github.com/pdenton/rosterd/internal/storage"
	"github.com/pdenton/rosterd/internal/storage/file"
	"github.com/pdenton/rosterd/internal/storage/memory"
	redisstorage "github.com/pdenton/rosterd/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeFile   = "file"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Store

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Shared dirty flag
	DirtyFlag *flush.Flag

	// Services
	RosterService *roster.Service
	LedgerService *ledger.Service
	GateService   *gate.Service
	AuthService   *adminauth.Service
	Scheduler     *flush.Scheduler
}

// Config holds configuration for the application factory
type Config struct {
	// StorageType selects the storage backend ("memory", "file" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// DataPath is the JSON document file path (required for "file")
	DataPath string
	// RedisConfig holds Redis connection settings (required for "redis")
	RedisConfig *redisstorage.Config

	RosterConfig roster.Config
	GateConfig   gate.Config
	AuthConfig   adminauth.Config
	FlushConfig  flush.Config

	// WipePendingOnStart clears all pending whitelist requests at
	// bootstrap time
	WipePendingOnStart bool

	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	var store storage.Store
	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeFile:
		if cfg.DataPath == "" {
			return nil, errors.New("DataPath required when StorageType is file")
		}
		fileStore, err := file.Open(cfg.DataPath)
		if err != nil {
			return nil, err
		}
		store = fileStore
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'file' or 'redis'")
	}

	if cfg.WipePendingOnStart {
		if err := store.WipePendingRequests(ctx); err != nil {
			return nil, err
		}
		// Write the wipe through immediately; leftover requests must not
		// survive a restart that happens before the first flush.
		if err := store.Persist(ctx); err != nil {
			return nil, err
		}
		logger.Info("wiped pending whitelist requests on start")
	}

	clk := clock.New()
	rnd := random.New()

	return newWithDependencies(store, clk, rnd, cfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Store, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *App {
	flag := flush.NewFlag()

	ledgerService := ledger.New(store, clk, rnd, flag, logger)
	rosterService := roster.New(store, clk, flag, cfg.RosterConfig, logger)
	gateService := gate.New(ledgerService, clk, cfg.GateConfig, logger)
	authService := adminauth.New(clk, cfg.AuthConfig)
	scheduler := flush.NewScheduler(flag, rosterService, store, cfg.FlushConfig, logger)

	return &App{
		Storage:       store,
		Clock:         clk,
		Random:        rnd,
		DirtyFlag:     flag,
		RosterService: rosterService,
		LedgerService: ledgerService,
		GateService:   gateService,
		AuthService:   authService,
		Scheduler:     scheduler,
	}
}
