package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/metrics"
	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*ListingCache, *miniredis.Miniredis, *metrics.MetricsManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	m := metrics.NewMetricsManager("property-service")
	c := NewListingCache(client, time.Hour, 100, logger.NewNop(), m)
	t.Cleanup(c.Close)
	return c, mr, m
}

func sampleListing() *domain.Listing {
	return &domain.Listing{
		ID:           "l-1",
		Name:         "Lakeview Cabin",
		City:         "Austin",
		State:        "TX",
		WeekdayPrice: 120,
		Category:     &domain.Category{ID: "cabin", Name: "Cabin"},
		Reviews:      []domain.Review{{ID: "rv-1", Rating: 5, Customer: &domain.User{FirstName: "Gus"}}},
	}
}

func TestListingCache_Miss(t *testing.T) {
	c, _, m := newTestCache(t)

	l, err := c.GetListing(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, l)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues("redis", "miss")))
}

func TestListingCache_SetThenGetFromLocal(t *testing.T) {
	c, mr, m := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetListing(ctx, sampleListing()))
	assert.True(t, mr.Exists("listing:l-1"))
	assert.Equal(t, time.Hour, mr.TTL("listing:l-1"))

	got, err := c.GetListing(ctx, "l-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Lakeview Cabin", got.Name)
	assert.Equal(t, "Cabin", got.Category.Name)
	assert.Equal(t, "Gus", got.Reviews[0].Customer.FirstName)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues("local", "hit")))
}

func TestListingCache_ReadThroughFromRedis(t *testing.T) {
	c, _, m := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetListing(ctx, sampleListing()))
	c.local.Clear()

	got, err := c.GetListing(ctx, "l-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues("redis", "hit")))

	// promoted back into the local level
	assert.NotNil(t, c.local.Get("listing:l-1"))
}

func TestListingCache_ReturnsCopies(t *testing.T) {
	c, _, _ := newTestCache(t)
	ctx := context.Background()
	require.NoError(t, c.SetListing(ctx, sampleListing()))

	first, err := c.GetListing(ctx, "l-1")
	require.NoError(t, err)
	first.PhotoURLs = []string{"https://example.com/x"}

	second, err := c.GetListing(ctx, "l-1")
	require.NoError(t, err)
	assert.Empty(t, second.PhotoURLs)
}

func TestListingCache_Delete(t *testing.T) {
	c, mr, _ := newTestCache(t)
	ctx := context.Background()
	require.NoError(t, c.SetListing(ctx, sampleListing()))

	require.NoError(t, c.DeleteListing(ctx, "l-1"))
	assert.False(t, mr.Exists("listing:l-1"))

	got, err := c.GetListing(ctx, "l-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListingCache_Categories(t *testing.T) {
	c, _, _ := newTestCache(t)
	ctx := context.Background()

	got, err := c.GetCategories(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	cats := []domain.Category{{ID: "a", Name: "Apartment"}, {ID: "c", Name: "Cabin"}}
	require.NoError(t, c.SetCategories(ctx, cats))

	got, err = c.GetCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, cats, got)

	require.NoError(t, c.DeleteCategories(ctx))
	got, err = c.GetCategories(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListingCache_RedisDown(t *testing.T) {
	c, mr, m := newTestCache(t)
	mr.Close()

	_, err := c.GetListing(context.Background(), "l-1")
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues("redis", "error")))
}
