package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/msomdec/bank-portal/internal/cli"
	"github.com/msomdec/bank-portal/internal/config"
	"github.com/msomdec/bank-portal/internal/domain"
	"github.com/msomdec/bank-portal/internal/repository/memory"
	"github.com/msomdec/bank-portal/internal/repository/postgres"
	"github.com/msomdec/bank-portal/internal/repository/sqlite"
	"github.com/msomdec/bank-portal/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logOpts := &slog.HandlerOptions{Level: cfg.LogLevel}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gateway, closeStore, err := openGateway(ctx, cfg)
	if err != nil {
		slog.Error("failed to open storage", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	directory := service.NewDirectory(gateway)
	sessions := service.NewSessionManager(gateway, cfg.SessionSecret, cfg.SessionTTL)
	if err := sessions.Resume(ctx); err != nil {
		slog.Error("failed to resume session", "error", err)
		os.Exit(1)
	}

	limiter := service.NewTokenBucket(0.1, 5)
	app := &cli.App{
		Auth:     service.NewAuthService(directory, sessions, cfg.BcryptCost, service.WithLoginLimiter(limiter)),
		Banking:  service.NewBankingService(directory, sessions),
		Sessions: sessions,
	}

	if err := cli.Run(ctx, app, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		closeStore()
		os.Exit(1)
	}
}

// openGateway opens the configured storage backend. The returned close func
// is safe to call more than once.
func openGateway(ctx context.Context, cfg config.Config) (domain.Gateway, func(), error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return store, sync.OnceFunc(func() { store.Close() }), nil

	case config.DriverMemory:
		slog.Warn("using in-memory storage; nothing will be kept after exit")
		return memory.New(), func() {}, nil

	default:
		db, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		slog.Debug("database migrations applied", "path", cfg.DatabasePath)
		return db.Gateway(), sync.OnceFunc(func() { db.Close() }), nil
	}
}
