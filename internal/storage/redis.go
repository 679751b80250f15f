package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/infinite-adventure/pkg/storage"
)

const (
	worldKeyPrefix = "world:"
	worldIndexKey  = "worlds"
)

// RedisStorage keeps each save as a JSON string under world:<id> and
// indexes ids in a sorted set scored by update time.
type RedisStorage struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// Ensure RedisStorage implements Storage interface
var _ storage.Storage = (*RedisStorage)(nil)

// NewRedisStorage accepts a redis:// URL or a bare host:port. A zero ttl
// keeps saves forever.
func NewRedisStorage(redisURL string, ttl time.Duration, logger *slog.Logger) (*RedisStorage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var opts *redis.Options
	if strings.Contains(redisURL, "://") {
		parsed, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: redisURL}
	}
	return &RedisStorage{
		client: redis.NewClient(opts),
		ttl:    ttl,
		logger: logger,
	}, nil
}

func worldKey(id uuid.UUID) string {
	return worldKeyPrefix + id.String()
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// World operations

func (r *RedisStorage) SaveWorld(ctx context.Context, s *storage.Save) error {
	if err := stamp(s); err != nil {
		return err
	}
	data, err := encodeSave(s, false)
	if err != nil {
		r.logger.Error("Failed to marshal world", "world_id", s.ID, "error", err)
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, worldKey(s.ID), data, r.ttl)
		pipe.ZAdd(ctx, worldIndexKey, redis.Z{
			Score:  float64(s.UpdatedAt.UnixMilli()),
			Member: s.ID.String(),
		})
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to save world", "world_id", s.ID, "error", err)
		return fmt.Errorf("failed to save world: %w", err)
	}
	return nil
}

func (r *RedisStorage) LoadWorld(ctx context.Context, id uuid.UUID) (*storage.Save, error) {
	data, err := r.client.Get(ctx, worldKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Warn("World not found", "world_id", id)
			return nil, nil // Return nil for not found
		}
		r.logger.Error("Failed to load world", "world_id", id, "error", err)
		return nil, fmt.Errorf("failed to load world: %w", err)
	}
	return decodeSave(data)
}

func (r *RedisStorage) DeleteWorld(ctx context.Context, id uuid.UUID) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, worldKey(id))
		pipe.ZRem(ctx, worldIndexKey, id.String())
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to delete world", "world_id", id, "error", err)
		return fmt.Errorf("failed to delete world: %w", err)
	}
	return nil
}

// ListWorlds walks the index newest first. Ids whose key has expired are
// pruned from the index.
func (r *RedisStorage) ListWorlds(ctx context.Context) ([]storage.SaveInfo, error) {
	ids, err := r.client.ZRevRange(ctx, worldIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list worlds: %w", err)
	}
	if len(ids) == 0 {
		return []storage.SaveInfo{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = worldKeyPrefix + id
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list worlds: %w", err)
	}

	infos := make([]storage.SaveInfo, 0, len(values))
	var stale []any
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		info, err := decodeInfo([]byte(raw))
		if err != nil {
			r.logger.Warn("Failed to decode world", "key", keys[i], "error", err)
			continue
		}
		infos = append(infos, info)
	}

	if len(stale) > 0 {
		if err := r.client.ZRem(ctx, worldIndexKey, stale...).Err(); err != nil {
			r.logger.Warn("Failed to prune expired worlds", "error", err)
		}
	}

	storage.SortNewestFirst(infos)
	return infos, nil
}
