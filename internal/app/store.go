package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nightfury12901/restaurant-temp/internal/config"
	"github.com/nightfury12901/restaurant-temp/internal/database"
	"github.com/nightfury12901/restaurant-temp/internal/repository"
)

// OpenKV connects the medium selected by STORE_DRIVER. The returned close
// function releases the underlying connection.
func OpenKV(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.KV, func() error, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		logger.Warn("using in-memory store, reservations are lost on restart")
		return repository.NewMemoryKV(), func() error { return nil }, nil

	case config.DriverRedis:
		rdb, err := NewRedisClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using Redis store", zap.String("addr", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
		return repository.NewRedisKV(rdb), rdb.Close, nil

	default:
		db, err := database.Connect(cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("database handle: %w", err)
		}
		kv := repository.NewGormKV(db)
		if err := kv.Migrate(); err != nil {
			_ = sqlDB.Close()
			return nil, nil, fmt.Errorf("migrate kv table: %w", err)
		}
		return kv, sqlDB.Close, nil
	}
}

// NewRedisClient connects and pings Redis with a short timeout.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
	}
	return client, nil
}
