package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/playperu/treasurehunt/internal/config"
	"github.com/playperu/treasurehunt/internal/database"
	"github.com/playperu/treasurehunt/internal/handler/health"
	"github.com/playperu/treasurehunt/internal/huntstore"
	"github.com/playperu/treasurehunt/internal/migrations"
	"github.com/playperu/treasurehunt/internal/seed"
	"github.com/playperu/treasurehunt/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	opts := huntstore.Options{
		Reducer:     cfg.Reducer(),
		MaxAttempts: cfg.CommitMaxAttempts,
	}
	checks := map[string]health.Checker{}

	// --- Store ---
	var store huntstore.Store
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return fmt.Errorf("creating data dir: %w", err)
		}
		db, err := database.Open(ctx, cfg.DBPath)
		if err != nil {
			return fmt.Errorf("connecting to sqlite: %w", err)
		}
		defer db.Close()

		if err := migrations.Run(db); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		logger.Info("connected to sqlite", "path", cfg.DBPath)

		store = huntstore.NewDocStore(db, opts)
		checks["sqlite"] = health.SQL(db)

	case config.BackendRedis:
		rdb, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		logger.Info("connected to redis")

		store = huntstore.NewRedisStore(rdb, opts)
		checks["redis"] = health.Redis(rdb)

	case config.BackendMemory:
		logger.Warn("using in-memory store, hunts are lost on restart")
		store = huntstore.NewMemoryStore(opts)
	}
	defer store.Close()

	// --- Seed ---
	hunts := seed.Default()
	if cfg.SeedFile != "" {
		if hunts, err = seed.Load(cfg.SeedFile); err != nil {
			return err
		}
	}
	if err := server.SeedHunts(ctx, logger, store, hunts); err != nil {
		return fmt.Errorf("seeding hunts: %w", err)
	}

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, store, checks, cfg.ClientDir)

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server",
			"addr", cfg.HTTPAddr,
			"backend", cfg.StoreBackend,
			"device_reset_policy", cfg.DeviceResetPolicy,
			"strict_team_binding", cfg.StrictTeamBinding,
		)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}
