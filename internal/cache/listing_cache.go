package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/sankalp69/Visa-prediction/internal/config"
)

// ListingCache remembers bucket listings keyed by prefix.
type ListingCache interface {
	GetListing(ctx context.Context, bucket, prefix string) ([]string, bool, error)
	SetListing(ctx context.Context, bucket, prefix string, keys []string) error
	InvalidateBucket(ctx context.Context, bucket string) error
}

type redisListingCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopListingCache struct{}

// NewListingCache returns a Redis backed cache when cfg.Enabled, otherwise a
// cache that never hits.
func NewListingCache(cfg config.CacheConfig) (ListingCache, error) {
	if !cfg.Enabled {
		return &noopListingCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisListingCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopListingCache() ListingCache {
	return &noopListingCache{}
}

func (c *redisListingCache) GetListing(ctx context.Context, bucket, prefix string) ([]string, bool, error) {
	payload, err := c.client.Get(ctx, buildListingKey(bucket, prefix)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var keys []string
	if err := json.Unmarshal(payload, &keys); err != nil {
		return nil, false, fmt.Errorf("decode listing cache: %w", err)
	}
	return keys, true, nil
}

func (c *redisListingCache) SetListing(ctx context.Context, bucket, prefix string, keys []string) error {
	payload, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("encode listing cache: %w", err)
	}
	if err := c.client.Set(ctx, buildListingKey(bucket, prefix), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisListingCache) InvalidateBucket(ctx context.Context, bucket string) error {
	removed, err := unlinkBucketListings(ctx, c.client, bucket)
	if err != nil {
		return err
	}
	log.Debug().Str("bucket", bucket).Int("listings", removed).Msg("invalidated cached listings")
	return nil
}

func (c *noopListingCache) GetListing(context.Context, string, string) ([]string, bool, error) {
	return nil, false, nil
}

func (c *noopListingCache) SetListing(context.Context, string, string, []string) error {
	return nil
}

func (c *noopListingCache) InvalidateBucket(context.Context, string) error {
	return nil
}
