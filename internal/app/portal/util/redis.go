package util

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"scriptsportal/internal/app/portal/entity"

	"github.com/redis/go-redis/v9"
)

const filterOptionsCacheKey = "scripts:filters"

type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

func (r *RedisClient) SetFilterOptions(ctx context.Context, options *entity.FilterOptions, ttl time.Duration) error {
	data, err := json.Marshal(options)
	if err != nil {
		return fmt.Errorf("failed to marshal filter options: %w", err)
	}

	if err := r.client.Set(ctx, filterOptionsCacheKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set filter options in cache: %w", err)
	}

	return nil
}

func (r *RedisClient) GetFilterOptions(ctx context.Context) (*entity.FilterOptions, error) {
	data, err := r.client.Get(ctx, filterOptionsCacheKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get filter options from cache: %w", err)
	}

	var options entity.FilterOptions
	if err := json.Unmarshal(data, &options); err != nil {
		return nil, fmt.Errorf("failed to unmarshal filter options: %w", err)
	}

	return &options, nil
}

func (r *RedisClient) DeleteFilterOptions(ctx context.Context) error {
	if err := r.client.Del(ctx, filterOptionsCacheKey).Err(); err != nil {
		return fmt.Errorf("failed to delete filter options from cache: %w", err)
	}
	return nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
