package repository

import (
	"context"
	"fmt"
	"time"

	"roomstay/internal/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only when it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisCoordinationStore keeps room locks and rate limit counters in Redis so
// every API replica sees the same state.
type RedisCoordinationStore struct {
	client *redis.Client
	prefix string
}

// NewRedisClient builds a client from config.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisCoordinationStore(client *redis.Client, prefix string) *RedisCoordinationStore {
	return &RedisCoordinationStore{client: client, prefix: prefix}
}

func (r *RedisCoordinationStore) lockKey(roomID int64) string {
	return fmt.Sprintf("%sroom_lock:%d", r.prefix, roomID)
}

func (r *RedisCoordinationStore) AcquireRoomLock(ctx context.Context, roomID int64, ttl time.Duration) (string, bool, error) {
	if r.client == nil {
		return "", false, fmt.Errorf("redis client is nil")
	}
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, r.lockKey(roomID), token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire room lock: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (r *RedisCoordinationStore) ReleaseRoomLock(ctx context.Context, roomID int64, token string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := releaseScript.Run(ctx, r.client, []string{r.lockKey(roomID)}, token).Err(); err != nil {
		return fmt.Errorf("failed to release room lock: %w", err)
	}
	return nil
}

func (r *RedisCoordinationStore) CheckRateLimit(ctx context.Context, callerID int64, limit int, window time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	key := fmt.Sprintf("%srate_limit:%d", r.prefix, callerID)
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	return count <= int64(limit), nil
}

// Ping checks the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close closes client when it is set.
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
