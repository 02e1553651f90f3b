package chat

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ContextKey is the Redis key holding the shared context snapshot.
const ContextKey = "dashboard:chat:context"

// RedisBackend shares one snapshot between dashboard replicas.
type RedisBackend struct {
	client redis.Cmdable
	key    string
}

func NewRedisBackend(client redis.Cmdable) *RedisBackend {
	return &RedisBackend{client: client, key: ContextKey}
}

func (r *RedisBackend) Name() string { return "redis" }

func (r *RedisBackend) Load(ctx context.Context) (Snapshot, bool, error) {
	val, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, err
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(val), &snap); err != nil {
		return Snapshot{}, false, err
	}
	return snap, true, nil
}

func (r *RedisBackend) Store(ctx context.Context, snap Snapshot, ttl time.Duration) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key, data, ttl).Err()
}
