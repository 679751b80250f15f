package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/infinite-adventure/internal/config"
	"github.com/jwebster45206/infinite-adventure/pkg/storage"
)

// Open returns the backend named by cfg.StorageBackend. The redis
// backend waits for the server to come up, bounded by ctx.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	switch cfg.StorageBackend {
	case config.StorageFile:
		return NewFileStorage(cfg.SaveDir, logger)
	case config.StorageRedis:
		r, err := NewRedisStorage(cfg.RedisURL, cfg.SaveTTL, logger)
		if err != nil {
			return nil, err
		}
		if err := r.WaitForConnection(ctx); err != nil {
			_ = r.Close()
			return nil, err
		}
		return r, nil
	case config.StorageSQLite:
		return NewSQLiteStorage(cfg.SQLitePath, logger)
	case config.StorageMemory:
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.StorageBackend)
	}
}
