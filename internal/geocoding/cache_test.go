package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/propsearch/internal/domain"
)

func setupTestCache(t *testing.T, next Provider) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCache(next, client, time.Hour, testLogger()), mr
}

func TestCache_MissThenHit(t *testing.T) {
	p := &fakeProvider{candidates: candidates(2)}
	cache, mr := setupTestCache(t, p)
	ctx := context.Background()

	first, err := cache.Lookup(ctx, "Vijay  Nagar", "in", 8)
	require.NoError(t, err)
	require.Len(t, first, 2)

	key := cacheKey("Vijay  Nagar", "in", 8)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Hour, mr.TTL(key))

	// A differently spaced and cased query hits the same entry.
	second, err := cache.Lookup(ctx, " vijay nagar", "in", 8)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, p.calls)
}

func TestCache_KeyIncludesCountryAndLimit(t *testing.T) {
	assert.NotEqual(t, cacheKey("Indore", "in", 8), cacheKey("Indore", "in", 5))
	assert.NotEqual(t, cacheKey("Indore", "in", 8), cacheKey("Indore", "np", 8))
	assert.Equal(t, cacheKey("Indore", "in", 8), cacheKey("INDORE ", "in", 8))
}

func TestCache_DoesNotStoreFailuresOrEmptyAnswers(t *testing.T) {
	ctx := context.Background()

	failing := &fakeProvider{err: errors.New("upstream down")}
	cache, mr := setupTestCache(t, failing)
	_, err := cache.Lookup(ctx, "Indore", "in", 8)
	require.Error(t, err)
	assert.Empty(t, mr.Keys())

	empty := &fakeProvider{}
	cache, mr = setupTestCache(t, empty)
	got, err := cache.Lookup(ctx, "Nowhere", "in", 8)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, mr.Keys())
}

func TestCache_RedisDownFallsThrough(t *testing.T) {
	p := &fakeProvider{candidates: candidates(1)}
	cache, mr := setupTestCache(t, p)
	mr.Close()

	got, err := cache.Lookup(context.Background(), "Indore", "in", 8)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, p.calls)
}

func TestCache_CorruptEntryFallsThrough(t *testing.T) {
	p := &fakeProvider{candidates: candidates(1)}
	cache, mr := setupTestCache(t, p)
	require.NoError(t, mr.Set(cacheKey("Indore", "in", 8), "not-json"))

	got, err := cache.Lookup(context.Background(), "Indore", "in", 8)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// The bad entry is overwritten with the fresh answer.
	raw, err := mr.Get(cacheKey("Indore", "in", 8))
	require.NoError(t, err)
	var stored []domain.LocationCandidate
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, got, stored)
}
