package geocoding

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/utafrali/propsearch/internal/domain"
	"github.com/utafrali/propsearch/pkg/httpclient"
)

// Result caps.
const (
	MaxSuggestionCandidates = 8
	MaxSearchCandidates     = 5
)

// ClientConfig holds the geocoding client settings.
type ClientConfig struct {
	Country string
	Timeout time.Duration
}

// DefaultClientConfig restricts lookups to India with a 3 second budget.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Country: "in",
		Timeout: 3 * time.Second,
	}
}

// Client wraps a Provider with a hard timeout and a fail-open policy.
type Client struct {
	provider Provider
	country  string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewClient creates a geocoding client. A nil provider is allowed and makes
// every lookup return no candidates.
func NewClient(provider Provider, cfg ClientConfig, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultClientConfig().Timeout
	}
	if cfg.Country == "" {
		cfg.Country = DefaultClientConfig().Country
	}
	return &Client{
		provider: provider,
		country:  cfg.Country,
		timeout:  cfg.Timeout,
		logger:   logger,
	}
}

// Geocode returns up to limit candidates for query, in provider order. Any
// provider failure yields an empty list.
func (c *Client) Geocode(ctx context.Context, query string, limit int) []domain.LocationCandidate {
	query = strings.TrimSpace(query)
	if query == "" || limit <= 0 {
		return []domain.LocationCandidate{}
	}
	if limit > MaxSuggestionCandidates {
		limit = MaxSuggestionCandidates
	}
	if c.provider == nil {
		c.fallback(ctx, query, reasonUnconfigured, nil)
		return []domain.LocationCandidate{}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	candidates, err := c.provider.Lookup(ctx, query, c.country, limit)
	geocodeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.fallback(ctx, query, classify(ctx, err), err)
		return []domain.LocationCandidate{}
	}

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	if candidates == nil {
		candidates = []domain.LocationCandidate{}
	}
	return candidates
}

func (c *Client) fallback(ctx context.Context, query, reason string, err error) {
	geocodeFallbacks.WithLabelValues(reason).Inc()
	attrs := []any{
		slog.String("query", query),
		slog.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	c.logger.WarnContext(ctx, "geocoding unavailable, continuing without candidates", attrs...)
}

func classify(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, ErrMissingCredentials):
		return reasonCredentials
	case errors.Is(err, httpclient.ErrCircuitOpen), errors.Is(err, httpclient.ErrTooManyRequests):
		return reasonCircuitOpen
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return reasonTimeout
	case errors.Is(err, context.Canceled):
		return reasonCanceled
	default:
		return reasonError
	}
}
