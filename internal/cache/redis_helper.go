package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sankalp69/Visa-prediction/internal/config"
)

const (
	listingKeyPrefix     = "artifacts:list"
	listingScanBatchSize = 100
	defaultListingTTL    = time.Minute
)

// newRedisClient connects and pings so a bad address fails at startup. The
// returned TTL applies to every cached listing.
func newRedisClient(cfg config.CacheConfig) (*redis.Client, time.Duration, error) {
	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, 0, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, 0, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, listingTTL(cfg), nil
}

func listingTTL(cfg config.CacheConfig) time.Duration {
	ttl := time.Duration(cfg.ListTTLSeconds) * time.Second
	if ttl <= 0 {
		return defaultListingTTL
	}
	return ttl
}

func buildRedisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host := cfg.RedisHost
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.RedisPort
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

// bucketKeyPrefix is the namespace holding every cached listing of bucket.
func bucketKeyPrefix(bucket string) string {
	return fmt.Sprintf("%s:%s:", listingKeyPrefix, bucket)
}

// buildListingKey hashes the prefix so arbitrary object paths stay valid
// and SCAN patterns never see glob characters from them.
func buildListingKey(bucket, prefix string) string {
	sum := sha1.Sum([]byte(prefix))
	return bucketKeyPrefix(bucket) + hex.EncodeToString(sum[:])
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// bucketScanPattern matches the listings of bucket and nothing else, even
// when the bucket name holds glob characters.
func bucketScanPattern(bucket string) string {
	return globEscaper.Replace(bucketKeyPrefix(bucket)) + "*"
}

// unlinkBucketListings drops every cached listing of bucket. Keys found by
// each SCAN batch are unlinked in one pipelined round trip.
func unlinkBucketListings(ctx context.Context, client *redis.Client, bucket string) (int, error) {
	var (
		cursor  uint64
		removed int
	)
	pattern := bucketScanPattern(bucket)
	for {
		keys, next, err := client.Scan(ctx, cursor, pattern, listingScanBatchSize).Result()
		if err != nil {
			return removed, fmt.Errorf("redis scan failed: %w", err)
		}

		if len(keys) > 0 {
			pipe := client.Pipeline()
			for _, key := range keys {
				pipe.Unlink(ctx, key)
			}
			if _, err := pipe.Exec(ctx); err != nil {
				return removed, fmt.Errorf("redis unlink failed: %w", err)
			}
			removed += len(keys)
		}

		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}
