package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/metrics"
	"github.com/karlseguin/ccache/v3"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	listingKeyPrefix = "listing:"
	categoriesKey    = "categories:all"

	maxLocalTTL = 5 * time.Minute
)

// ListingCache is a two-level cache: an in-process LRU in front of Redis.
// Both levels hold the JSON encoding so callers always get a private copy.
type ListingCache struct {
	client   *redis.Client
	local    *ccache.Cache[[]byte]
	ttl      time.Duration
	localTTL time.Duration
	logger   *logger.Logger
	metrics  *metrics.MetricsManager
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// NewListingCache builds the cache. ttl applies to Redis; local entries live
// at most five minutes. m may be nil.
func NewListingCache(client *redis.Client, ttl time.Duration, localSize int64, log *logger.Logger, m *metrics.MetricsManager) *ListingCache {
	localTTL := ttl
	if localTTL > maxLocalTTL {
		localTTL = maxLocalTTL
	}
	return &ListingCache{
		client:   client,
		local:    ccache.New(ccache.Configure[[]byte]().MaxSize(localSize)),
		ttl:      ttl,
		localTTL: localTTL,
		logger:   log.Named("ListingCache"),
		metrics:  m,
	}
}

func (c *ListingCache) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	data, err := c.get(ctx, listingKeyPrefix+id)
	if err != nil || data == nil {
		return nil, err
	}
	var listing domain.Listing
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, fmt.Errorf("decode cached listing: %w", err)
	}
	return &listing, nil
}

func (c *ListingCache) SetListing(ctx context.Context, listing *domain.Listing) error {
	data, err := json.Marshal(listing)
	if err != nil {
		return fmt.Errorf("encode listing: %w", err)
	}
	return c.set(ctx, listingKeyPrefix+listing.ID, data)
}

func (c *ListingCache) DeleteListing(ctx context.Context, id string) error {
	return c.del(ctx, listingKeyPrefix+id)
}

func (c *ListingCache) GetCategories(ctx context.Context) ([]domain.Category, error) {
	data, err := c.get(ctx, categoriesKey)
	if err != nil || data == nil {
		return nil, err
	}
	var categories []domain.Category
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("decode cached categories: %w", err)
	}
	return categories, nil
}

func (c *ListingCache) SetCategories(ctx context.Context, categories []domain.Category) error {
	if categories == nil {
		categories = []domain.Category{}
	}
	data, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("encode categories: %w", err)
	}
	return c.set(ctx, categoriesKey, data)
}

func (c *ListingCache) DeleteCategories(ctx context.Context) error {
	return c.del(ctx, categoriesKey)
}

// Close stops the local cache's background worker.
func (c *ListingCache) Close() {
	c.local.Stop()
}

func (c *ListingCache) get(ctx context.Context, key string) ([]byte, error) {
	if item := c.local.Get(key); item != nil && !item.Expired() {
		c.metrics.CacheHit("local")
		return item.Value(), nil
	}
	c.metrics.CacheMiss("local")

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.metrics.CacheMiss("redis")
		return nil, nil
	}
	if err != nil {
		c.metrics.CacheError("redis")
		c.logger.Warn("Redis get failed", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	c.metrics.CacheHit("redis")
	c.local.Set(key, data, c.localTTL)
	return data, nil
}

func (c *ListingCache) set(ctx context.Context, key string, data []byte) error {
	c.local.Set(key, data, c.localTTL)
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Redis set failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (c *ListingCache) del(ctx context.Context, key string) error {
	c.local.Delete(key)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("Redis del failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
