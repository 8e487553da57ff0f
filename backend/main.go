package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"bloodflow/m/internal/api"
	"bloodflow/m/internal/config"
	"bloodflow/m/internal/database"
	"bloodflow/m/internal/kv"
	"bloodflow/m/internal/logger"
	"bloodflow/m/internal/migrations"
	"bloodflow/m/internal/seed"
	"bloodflow/m/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	zlog, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat, "bloodflow")
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	backend, closeBackend, err := openBackend(cfg, zlog)
	if err != nil {
		zlog.Fatal("unable to open storage backend", zap.String("backend", cfg.StorageBackend), zap.Error(err))
	}
	defer func() {
		if err := closeBackend(); err != nil {
			zlog.Warn("storage backend close failed", zap.Error(err))
		}
	}()

	opts := []store.Option{store.WithLogger(zlog.Named("store"))}
	if cfg.SeedDonorsCSV != "" {
		donors, err := seed.LoadDonorsCSV(cfg.SeedDonorsCSV, zlog)
		if err != nil {
			zlog.Warn("seed roster unavailable, using built-in donors", zap.String("path", cfg.SeedDonorsCSV), zap.Error(err))
		} else {
			opts = append(opts, store.WithSeedDonors(donors))
		}
	}
	if cfg.InitialUnits != nil {
		opts = append(opts, store.WithInitialInventory(seed.FixedInventory(*cfg.InitialUnits)))
	}

	bloodStore := store.New(backend, opts...)
	bloodStore.Load(context.Background())

	handler := api.New(bloodStore, zlog.Named("http"))
	httpServer := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: handler.Router(),
	}

	go func() {
		zlog.Info("BloodFlow server starting", zap.String("addr", httpServer.Addr), zap.String("backend", cfg.StorageBackend))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		zlog.Error("shutdown error", zap.Error(err))
	}
	zlog.Info("server stopped")
}

func openBackend(cfg config.Config, zlog *zap.Logger) (kv.Store, func() error, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return kv.NewMemoryStore(), func() error { return nil }, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		zlog.Info("redis connected", zap.String("addr", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
		return kv.NewRedisStore(client, cfg.KeyPrefix), client.Close, nil

	default:
		driver := database.DriverSQLite
		if cfg.StorageBackend == config.BackendPostgres {
			driver = database.DriverPostgres
		}
		if cfg.DatabaseDSN == "" {
			return nil, nil, fmt.Errorf("DATABASE_DSN is required for %s", cfg.StorageBackend)
		}
		db, err := database.Connect(driver, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := migrations.Run(db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return kv.NewSQLStore(db), db.Close, nil
	}
}
