package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/quest-engine/internal/config"
	"github.com/jwebster45206/quest-engine/pkg/storage"
)

// Open builds the Storage named by cfg.StorageDriver. The redis client is
// returned when the redis driver is used so callers can share it.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Storage, *redis.Client, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		logger.Warn("Using in-memory storage; saves are lost on restart")
		return storage.NewMemoryStorage(), nil, nil
	case config.DriverRedis:
		client, err := NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		rs := NewRedisStorage(client, cfg.SaveTTL, logger)
		if err := rs.WaitForConnection(ctx, 30, 2*time.Second); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return rs, client, nil
	case config.DriverSQLite, config.DriverPostgres:
		s, err := OpenSQL(ctx, cfg.StorageDriver, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
