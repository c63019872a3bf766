package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/baharkarakas/ledger-core/internal/api"
	"github.com/baharkarakas/ledger-core/internal/api/handlers"
	"github.com/baharkarakas/ledger-core/internal/config"
	"github.com/baharkarakas/ledger-core/internal/db"
	"github.com/baharkarakas/ledger-core/internal/events"
	"github.com/baharkarakas/ledger-core/internal/logger"
	"github.com/baharkarakas/ledger-core/internal/metrics"
	"github.com/baharkarakas/ledger-core/internal/repository"
	"github.com/baharkarakas/ledger-core/internal/repository/memory"
	"github.com/baharkarakas/ledger-core/internal/repository/mysql"
	"github.com/baharkarakas/ledger-core/internal/repository/postgres"
	"github.com/baharkarakas/ledger-core/internal/services"
	"github.com/baharkarakas/ledger-core/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env, cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Error("storage", "driver", cfg.StorageDriver, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	pub, closePub := openPublisher(ctx, cfg, log)
	defer closePub()

	metrics.Init()
	wp := worker.NewPool(cfg.Workers, 1024)

	ledger := services.NewLedgerService(repos, pub, wp, log)
	h := handlers.NewLedgerHandler(
		ledger,
		services.NewQueryService(repos.Transactions),
		services.NewAccountService(repos.Accounts, log),
		log,
	)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.NewRouter(cfg, h, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "storage", cfg.StorageDriver, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", "err", err)
	}
	// Handlers have returned; let queued audit and event tasks drain.
	wp.Stop()
	log.Info("stopped")
}

func openStore(ctx context.Context, cfg config.Config) (repository.Repositories, func(), error) {
	switch cfg.StorageDriver {
	case "postgres":
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
		if err != nil {
			return repository.Repositories{}, nil, fmt.Errorf("db connect: %w", err)
		}
		if cfg.Migrate {
			if err := db.RunMigrations(ctx, pool); err != nil {
				pool.Close()
				return repository.Repositories{}, nil, fmt.Errorf("migrations: %w", err)
			}
		}
		return postgres.NewRepositories(pool), pool.Close, nil

	case "mysql":
		gdb, err := db.NewMySQL(cfg.MySQL)
		if err != nil {
			return repository.Repositories{}, nil, err
		}
		closeFn := func() {
			if sqlDB, err := gdb.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		if cfg.Migrate {
			if err := mysql.Migrate(gdb); err != nil {
				closeFn()
				return repository.Repositories{}, nil, fmt.Errorf("automigrate: %w", err)
			}
		}
		return mysql.NewRepositories(gdb), closeFn, nil

	case "memory":
		return memory.NewRepositories(memory.New()), func() {}, nil
	}
	return repository.Repositories{}, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

// openPublisher connects to Redis when configured. An unreachable Redis
// disables events instead of failing startup.
func openPublisher(ctx context.Context, cfg config.Config, log *slog.Logger) (events.Publisher, func()) {
	if cfg.RedisAddr == "" {
		return events.Nop{}, func() {}
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unavailable, events disabled", "addr", cfg.RedisAddr, "err", err)
		_ = rdb.Close()
		return events.Nop{}, func() {}
	}
	log.Info("publishing events", "addr", cfg.RedisAddr, "channel", cfg.EventsChannel)
	return events.NewRedisPublisher(rdb, cfg.EventsChannel), func() { _ = rdb.Close() }
}
