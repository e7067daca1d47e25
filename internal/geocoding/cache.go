package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/propsearch/internal/domain"
	"github.com/utafrali/propsearch/pkg/slug"
)

const cacheKeyPrefix = "propsearch:geocode:"

// Cache is a Provider decorator that keeps successful, non-empty answers in
// Redis. Redis failures are logged and the lookup falls through.
type Cache struct {
	next   Provider
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCache wraps next with a Redis cache.
func NewCache(next Provider, client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Lookup implements Provider.
func (c *Cache) Lookup(ctx context.Context, text, country string, limit int) ([]domain.LocationCandidate, error) {
	key := cacheKey(text, country, limit)

	cached, err := c.get(ctx, key)
	switch {
	case err == nil:
		geocodeCacheRequests.WithLabelValues("hit").Inc()
		return cached, nil
	case errors.Is(err, redis.Nil):
		geocodeCacheRequests.WithLabelValues("miss").Inc()
	default:
		geocodeCacheRequests.WithLabelValues("error").Inc()
		c.logger.WarnContext(ctx, "geocode cache read failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}

	candidates, err := c.next.Lookup(ctx, text, country, limit)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return candidates, nil
	}

	if err := c.set(ctx, key, candidates); err != nil {
		c.logger.WarnContext(ctx, "geocode cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
	return candidates, nil
}

func (c *Cache) get(ctx context.Context, key string) ([]domain.LocationCandidate, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}
	var candidates []domain.LocationCandidate
	if err := json.Unmarshal(data, &candidates); err != nil {
		return nil, fmt.Errorf("unmarshal cached candidates: %w", err)
	}
	return candidates, nil
}

func (c *Cache) set(ctx context.Context, key string, candidates []domain.LocationCandidate) error {
	data, err := json.Marshal(candidates)
	if err != nil {
		return fmt.Errorf("marshal candidates: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set geocode: %w", err)
	}
	return nil
}

func cacheKey(text, country string, limit int) string {
	return fmt.Sprintf("%s%s:%d:%s", cacheKeyPrefix, country, limit, slug.Normalize(text))
}
