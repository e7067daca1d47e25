package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/utafrali/propsearch/internal/domain"
	"github.com/utafrali/propsearch/pkg/httpclient"
)

const mapboxService = "mapbox"

// DefaultMapboxTypes are the feature types requested from Mapbox.
const DefaultMapboxTypes = "place,locality,neighborhood,district,postcode"

// MapboxConfig holds the Mapbox places API settings.
type MapboxConfig struct {
	BaseURL     string
	AccessToken string
	Types       string
}

// Mapbox is a Provider backed by the Mapbox places API.
type Mapbox struct {
	baseURL string
	token   string
	types   string
	client  *httpclient.CircuitBreakerClient
}

// NewMapbox creates a Mapbox provider. The client should be configured
// without retries: a failed lookup degrades rather than waits.
func NewMapbox(cfg MapboxConfig, client *httpclient.CircuitBreakerClient) *Mapbox {
	types := cfg.Types
	if types == "" {
		types = DefaultMapboxTypes
	}
	return &Mapbox{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.AccessToken,
		types:   types,
		client:  client,
	}
}

type mapboxResponse struct {
	Features []mapboxFeature `json:"features"`
}

type mapboxFeature struct {
	Text      string    `json:"text"`
	PlaceName string    `json:"place_name"`
	PlaceType []string  `json:"place_type"`
	Center    []float64 `json:"center"`
}

// Lookup implements Provider.
func (m *Mapbox) Lookup(ctx context.Context, text, country string, limit int) ([]domain.LocationCandidate, error) {
	if m.token == "" {
		return nil, ErrMissingCredentials
	}

	params := url.Values{}
	params.Set("access_token", m.token)
	params.Set("country", country)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("types", m.types)
	params.Set("autocomplete", "true")
	endpoint := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json?%s",
		m.baseURL, url.PathEscape(text), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build mapbox request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := m.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("mapbox lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpclient.ParseResponseError(resp, mapboxService)
	}

	var body mapboxResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode mapbox response: %w", err)
	}

	candidates := make([]domain.LocationCandidate, 0, len(body.Features))
	for _, f := range body.Features {
		if len(f.Center) < 2 {
			continue
		}
		candidates = append(candidates, toCandidate(f))
	}
	return candidates, nil
}

func toCandidate(f mapboxFeature) domain.LocationCandidate {
	c := domain.LocationCandidate{
		DisplayName: f.Text,
		Subtitle:    subtitle(f.Text, f.PlaceName),
		FullAddress: f.PlaceName,
		Coordinates: domain.Coordinates{Lat: f.Center[1], Lng: f.Center[0]},
	}
	if len(f.PlaceType) > 0 {
		c.PlaceType = f.PlaceType[0]
	}
	return c
}

// subtitle is the place name without its leading display segment, so
// "Vijay Nagar, Indore, Madhya Pradesh, India" becomes "Indore, Madhya Pradesh, India".
func subtitle(text, placeName string) string {
	rest, ok := strings.CutPrefix(placeName, text)
	if !ok {
		_, rest, ok = strings.Cut(placeName, ",")
		if !ok {
			return ""
		}
	}
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest), ","))
}
