package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis stores the session id in a Redis string key, for hosts that run
// several widget processes against one shared slot.
type Redis struct {
	client *redis.Client
	key    string
}

// NewRedis creates a Redis-backed store. The connection is lazy.
func NewRedis(addr, key string) *Redis {
	return NewRedisWithClient(redis.NewClient(&redis.Options{Addr: addr}), key)
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, key string) *Redis {
	return &Redis{client: client, key: key}
}

// Get returns the stored id.
func (r *Redis) Get(ctx context.Context) (string, bool, error) {
	value, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	return value, true, nil
}

// Set stores id without expiry.
func (r *Redis) Set(ctx context.Context, id string) error {
	if err := r.client.Set(ctx, r.key, id, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

// Remove deletes the key and its handoff flag.
func (r *Redis) Remove(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key, handoffKey(r.key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", r.key, err)
	}
	return nil
}

// HandoffActive reports the stored handoff flag.
func (r *Redis) HandoffActive(ctx context.Context) (bool, error) {
	key := handoffKey(r.key)
	value, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value == handoffValue, nil
}

// SetHandoffActive stores the handoff flag; false deletes the key.
func (r *Redis) SetHandoffActive(ctx context.Context, active bool) error {
	key := handoffKey(r.key)
	var err error
	if active {
		err = r.client.Set(ctx, key, handoffValue, 0).Err()
	} else {
		err = r.client.Del(ctx, key).Err()
	}
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}
