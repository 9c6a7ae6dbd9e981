package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"loanintake/internal/reference"
	"loanintake/pkg/platform/sentinel"
)

const catalogKeyPrefix = "catalog:"

// RedisCatalogStore shares normalized catalogs across server instances.
type RedisCatalogStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisCatalogStore {
	return &RedisCatalogStore{client: client}
}

func (s *RedisCatalogStore) Get(ctx context.Context, key string) ([]reference.Option, error) {
	raw, err := s.client.Get(ctx, catalogKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", key, errors.Join(sentinel.ErrUnavailable, err))
	}
	var options []reference.Option
	if err := json.Unmarshal(raw, &options); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", key, err)
	}
	return options, nil
}

func (s *RedisCatalogStore) Set(ctx context.Context, key string, options []reference.Option, ttl time.Duration) error {
	raw, err := json.Marshal(options)
	if err != nil {
		return fmt.Errorf("encode catalog %s: %w", key, err)
	}
	return s.client.Set(ctx, catalogKeyPrefix+key, raw, ttl).Err()
}
