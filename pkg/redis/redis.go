package redis

import (
	"WinGoApi/pkg/logger"
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisService represents the Redis service
type RedisService struct {
	client *redis.Client // Keep the field unexported
}

// Client returns the Redis client
func (r *RedisService) Client() *redis.Client {
	return r.client
}

// NewRedisService creates a new instance of the Redis service
func NewRedisService(redisAddr string, redisPassword string) *RedisService {
	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       0,
	})

	_, err := client.Ping(context.Background()).Result()
	if err != nil {
		logger.Fatal("%v", err)
	}

	logger.Info("Connected to Redis")

	return &RedisService{
		client: client,
	}
}

// SetKey sets a key-value pair in Redis
func (r *RedisService) SetKey(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	err := r.client.Set(ctx, key, value, expiration).Err()
	if err != nil {
		return logger.WrapError(err, "")
	}
	return nil
}

// GetKey retrieves the value of a key from Redis
func (r *RedisService) GetKey(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return "", logger.WrapError(err, "")
	}
	return val, nil
}

// DeleteKey removes a key from Redis
func (r *RedisService) DeleteKey(ctx context.Context, key string) error {
	err := r.client.Del(ctx, key).Err()
	if err != nil {
		return logger.WrapError(err, "")
	}
	return nil
}

// IncrHashField atomically increments a float field inside a hash
func (r *RedisService) IncrHashField(ctx context.Context, key, field string, delta float64) error {
	err := r.client.HIncrByFloat(ctx, key, field, delta).Err()
	if err != nil {
		return logger.WrapError(err, "")
	}
	return nil
}

// GetHash returns all fields of a hash
func (r *RedisService) GetHash(ctx context.Context, key string) (map[string]string, error) {
	vals, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, logger.WrapError(err, "")
	}
	return vals, nil
}

// AcquireLock takes a best-effort exclusive lock via SETNX.
// Returns true if the lock was taken by this caller.
func (r *RedisService) AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return false, logger.WrapError(err, "")
	}
	return ok, nil
}

// ReleaseLock drops a lock taken with AcquireLock if the token still matches
func (r *RedisService) ReleaseLock(ctx context.Context, key, token string) error {
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return logger.WrapError(err, "")
	}
	if val != token {
		return nil
	}
	return r.DeleteKey(ctx, key)
}
