package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type CacheRepository interface {
	// GetJSON decodes the value at key into dest and reports whether the
	// key was present.
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

type cacheRepository struct {
	client *redis.Client
}

// NewCacheRepository returns a no-op cache when client is nil.
func NewCacheRepository(client *redis.Client) CacheRepository {
	if client == nil {
		return noopCache{}
	}
	return &cacheRepository{client: client}
}

func (r *cacheRepository) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(val, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached value: %w", err)
	}
	return true, nil
}

func (r *cacheRepository) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return r.client.Set(ctx, key, jsonData, expiration).Err()
}

func (r *cacheRepository) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

type noopCache struct{}

func (noopCache) GetJSON(context.Context, string, interface{}) (bool, error) { return false, nil }

func (noopCache) SetJSON(context.Context, string, interface{}, time.Duration) error { return nil }

func (noopCache) Delete(context.Context, string) error { return nil }
