package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/sankalp69/Visa-prediction/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewListingCache_DisabledIsNoop(t *testing.T) {
	c, err := NewListingCache(config.CacheConfig{Enabled: false})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.SetListing(ctx, "bucket", "a/", []string{"a/x"}))
	keys, hit, err := c.GetListing(ctx, "bucket", "a/")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, keys)
	assert.NoError(t, c.InvalidateBucket(ctx, "bucket"))
}

func TestBuildListingKey(t *testing.T) {
	k1 := buildListingKey("models", "a/")
	k2 := buildListingKey("models", "a/*")
	k3 := buildListingKey("other", "a/")

	assert.True(t, strings.HasPrefix(k1, "artifacts:list:models:"))
	assert.NotEqual(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.Equal(t, k1, buildListingKey("models", "a/"))
	assert.NotContains(t, strings.TrimPrefix(k2, bucketKeyPrefix("models")), "*")
}

func TestBuildRedisOptions(t *testing.T) {
	opts, err := buildRedisOptions(config.CacheConfig{RedisHost: "cache", RedisPort: "6380", RedisDB: 2})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)

	opts, err = buildRedisOptions(config.CacheConfig{})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6379", opts.Addr)

	opts, err = buildRedisOptions(config.CacheConfig{RedisURL: "redis://:secret@redis.internal:6379/3"})
	require.NoError(t, err)
	assert.Equal(t, "redis.internal:6379", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 3, opts.DB)

	_, err = buildRedisOptions(config.CacheConfig{RedisURL: "://bad"})
	assert.Error(t, err)
}

func newRedisListingCache(t *testing.T) (ListingCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewListingCache(config.CacheConfig{
		Enabled:        true,
		RedisHost:      mr.Host(),
		RedisPort:      mr.Port(),
		ListTTLSeconds: 30,
	})
	require.NoError(t, err)
	return c, mr
}

func TestRedisListingCache_SetThenGet(t *testing.T) {
	c, mr := newRedisListingCache(t)
	ctx := context.Background()

	keys, hit, err := c.GetListing(ctx, "models", "registry/")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, keys)

	require.NoError(t, c.SetListing(ctx, "models", "registry/", []string{"registry/model.pkl", "registry/preprocessor.pkl"}))

	keys, hit, err = c.GetListing(ctx, "models", "registry/")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"registry/model.pkl", "registry/preprocessor.pkl"}, keys)

	assert.Equal(t, 30*time.Second, mr.TTL(buildListingKey("models", "registry/")))
}

func TestRedisListingCache_EmptyListingIsAHit(t *testing.T) {
	c, _ := newRedisListingCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetListing(ctx, "models", "nothing/", []string{}))
	keys, hit, err := c.GetListing(ctx, "models", "nothing/")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Empty(t, keys)
}

func TestRedisListingCache_Expires(t *testing.T) {
	c, mr := newRedisListingCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetListing(ctx, "models", "", []string{"a"}))
	mr.FastForward(31 * time.Second)

	_, hit, err := c.GetListing(ctx, "models", "")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisListingCache_InvalidateBucket(t *testing.T) {
	c, mr := newRedisListingCache(t)
	ctx := context.Background()

	for _, prefix := range []string{"", "a/", "a/b/", "registry/"} {
		require.NoError(t, c.SetListing(ctx, "models", prefix, []string{prefix + "x"}))
	}
	require.NoError(t, c.SetListing(ctx, "models-archive", "a/", []string{"a/old"}))
	require.NoError(t, mr.Set("unrelated", "keep"))

	require.NoError(t, c.InvalidateBucket(ctx, "models"))

	for _, prefix := range []string{"", "a/", "a/b/", "registry/"} {
		_, hit, err := c.GetListing(ctx, "models", prefix)
		require.NoError(t, err)
		assert.False(t, hit, "prefix %q should be gone", prefix)
	}

	keys, hit, err := c.GetListing(ctx, "models-archive", "a/")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"a/old"}, keys)
	assert.True(t, mr.Exists("unrelated"))
}

func TestRedisListingCache_CorruptPayload(t *testing.T) {
	c, mr := newRedisListingCache(t)
	require.NoError(t, mr.Set(buildListingKey("models", "a/"), "not json"))

	_, hit, err := c.GetListing(context.Background(), "models", "a/")
	assert.Error(t, err)
	assert.False(t, hit)
}

func TestNewListingCache_UnreachableRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewListingCache(config.CacheConfig{Enabled: true, RedisURL: "redis://" + addr})
	assert.Error(t, err)
}

func TestBucketScanPattern(t *testing.T) {
	assert.Equal(t, "artifacts:list:models:*", bucketScanPattern("models"))
	assert.Equal(t, `artifacts:list:m\*\[1\]:*`, bucketScanPattern("m*[1]"))
}

func TestListingTTL(t *testing.T) {
	assert.Equal(t, defaultListingTTL, listingTTL(config.CacheConfig{}))
	assert.Equal(t, 5*time.Second, listingTTL(config.CacheConfig{ListTTLSeconds: 5}))
}
