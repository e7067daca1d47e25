package geocoding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/propsearch/internal/domain"
	"github.com/utafrali/propsearch/pkg/httpclient"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeProvider answers from a fixed list or fails with err. A positive delay
// blocks until it elapses or ctx ends.
type fakeProvider struct {
	candidates []domain.LocationCandidate
	err        error
	delay      time.Duration

	calls   int
	country string
	limit   int
}

func (f *fakeProvider) Lookup(ctx context.Context, text, country string, limit int) ([]domain.LocationCandidate, error) {
	f.calls++
	f.country = country
	f.limit = limit
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.candidates, nil
}

func candidates(n int) []domain.LocationCandidate {
	out := make([]domain.LocationCandidate, n)
	for i := range out {
		out[i] = domain.LocationCandidate{
			DisplayName: fmt.Sprintf("Place %d", i),
			Coordinates: domain.Coordinates{Lat: 22 + float64(i)/10, Lng: 75},
		}
	}
	return out
}

func TestClient_Geocode_PassesCountryAndLimit(t *testing.T) {
	p := &fakeProvider{candidates: candidates(3)}
	c := NewClient(p, ClientConfig{Country: "in", Timeout: time.Second}, testLogger())

	got := c.Geocode(context.Background(), "  Indore ", MaxSearchCandidates)

	require.Len(t, got, 3)
	assert.Equal(t, "Place 0", got[0].DisplayName, "provider order is preserved")
	assert.Equal(t, "in", p.country)
	assert.Equal(t, MaxSearchCandidates, p.limit)
}

func TestClient_Geocode_CapsLimit(t *testing.T) {
	p := &fakeProvider{candidates: candidates(12)}
	c := NewClient(p, DefaultClientConfig(), testLogger())

	got := c.Geocode(context.Background(), "Indore", 20)

	assert.Equal(t, MaxSuggestionCandidates, p.limit)
	assert.Len(t, got, MaxSuggestionCandidates, "an over-answering provider is truncated")
}

func TestClient_Geocode_EmptyQuerySkipsProvider(t *testing.T) {
	p := &fakeProvider{candidates: candidates(1)}
	c := NewClient(p, DefaultClientConfig(), testLogger())

	got := c.Geocode(context.Background(), "   ", 5)

	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Zero(t, p.calls)
}

func TestClient_Geocode_FailOpen(t *testing.T) {
	tests := []struct {
		name     string
		provider Provider
		timeout  time.Duration
		reason   string
	}{
		{name: "nil provider", provider: nil, reason: reasonUnconfigured},
		{name: "missing credentials", provider: &fakeProvider{err: ErrMissingCredentials}, reason: reasonCredentials},
		{name: "circuit open", provider: &fakeProvider{err: fmt.Errorf("mapbox lookup: %w", httpclient.ErrCircuitOpen)}, reason: reasonCircuitOpen},
		{name: "timeout", provider: &fakeProvider{delay: time.Second}, timeout: 20 * time.Millisecond, reason: reasonTimeout},
		{name: "upstream 500", provider: &fakeProvider{err: &httpclient.StatusError{Service: "mapbox", Status: 500}}, reason: reasonError},
		{name: "other error", provider: &fakeProvider{err: errors.New("boom")}, reason: reasonError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(geocodeFallbacks.WithLabelValues(tt.reason))
			c := NewClient(tt.provider, ClientConfig{Country: "in", Timeout: tt.timeout}, testLogger())

			got := c.Geocode(context.Background(), "Indore", 8)

			assert.NotNil(t, got)
			assert.Empty(t, got)
			assert.Equal(t, before+1, testutil.ToFloat64(geocodeFallbacks.WithLabelValues(tt.reason)))
		})
	}
}

func TestClient_Geocode_NilResultBecomesEmpty(t *testing.T) {
	c := NewClient(&fakeProvider{}, DefaultClientConfig(), testLogger())
	got := c.Geocode(context.Background(), "Nowhere", 5)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(nil, ClientConfig{}, testLogger())
	assert.Equal(t, "in", c.country)
	assert.Equal(t, 3*time.Second, c.timeout)
}
