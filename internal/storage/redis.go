// Package storage provides the instance stores (Redis, Postgres,
// in-memory) plus the filesystem-backed world library and asset store.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rybla/sva-engine/pkg/sva"
)

const (
	instanceKeyPrefix = "instance:"
	instanceIndexKey  = "instances"
)

// RedisStore implements sva.Store backed by Redis. Instances are stored
// as JSON blobs under instance:<id>, with a set of known IDs for listing.
type RedisStore[S, A any] struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedisStore[S, A any](redisURL string, logger *slog.Logger) (*RedisStore[S, A], error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	return &RedisStore[S, A]{
		client: redis.NewClient(opts),
		logger: logger,
	}, nil
}

func (r *RedisStore[S, A]) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStore[S, A]) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStore[S, A]) WaitForConnection(ctx context.Context) error {
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

func (r *RedisStore[S, A]) Save(ctx context.Context, inst *sva.Instance[S, A]) error {
	data, err := json.Marshal(inst)
	if err != nil {
		r.logger.Error("Failed to marshal instance", "instance_id", inst.ID, "error", err)
		return fmt.Errorf("failed to marshal instance: %w", err)
	}

	key := instanceKeyPrefix + inst.ID.String()
	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		r.logger.Error("Failed to save instance", "instance_id", inst.ID, "error", err)
		return fmt.Errorf("failed to save instance: %w", err)
	}
	if err := r.client.SAdd(ctx, instanceIndexKey, inst.ID.String()).Err(); err != nil {
		return fmt.Errorf("failed to index instance: %w", err)
	}
	return nil
}

func (r *RedisStore[S, A]) Load(ctx context.Context, id uuid.UUID) (*sva.Instance[S, A], error) {
	data, err := r.client.Get(ctx, instanceKeyPrefix+id.String()).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Not found
		}
		r.logger.Error("Failed to load instance", "instance_id", id, "error", err)
		return nil, fmt.Errorf("failed to load instance: %w", err)
	}

	var inst sva.Instance[S, A]
	if err := json.Unmarshal([]byte(data), &inst); err != nil {
		r.logger.Error("Failed to unmarshal instance", "instance_id", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal instance: %w", err)
	}
	return &inst, nil
}

func (r *RedisStore[S, A]) List(ctx context.Context) ([]sva.Metadata, error) {
	ids, err := r.client.SMembers(ctx, instanceIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}

	metas := make([]sva.Metadata, 0, len(ids))
	for _, idStr := range ids {
		id, err := uuid.Parse(idStr)
		if err != nil {
			r.logger.Warn("Skipping malformed instance id in index", "id", idStr)
			continue
		}
		inst, err := r.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		if inst == nil {
			// Index entry without a record; drop it.
			r.client.SRem(ctx, instanceIndexKey, idStr)
			continue
		}
		metas = append(metas, inst.Meta())
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].CreatedAt.After(metas[j].CreatedAt)
	})
	return metas, nil
}

func (r *RedisStore[S, A]) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, instanceKeyPrefix+id.String()).Err(); err != nil {
		r.logger.Error("Failed to delete instance", "instance_id", id, "error", err)
		return fmt.Errorf("failed to delete instance: %w", err)
	}
	if err := r.client.SRem(ctx, instanceIndexKey, id.String()).Err(); err != nil {
		return fmt.Errorf("failed to unindex instance: %w", err)
	}
	return nil
}
