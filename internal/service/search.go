// Package service holds the search orchestrator behind the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/utafrali/propsearch/internal/domain"
	"github.com/utafrali/propsearch/internal/event"
	"github.com/utafrali/propsearch/internal/filter"
	"github.com/utafrali/propsearch/internal/geo"
	"github.com/utafrali/propsearch/internal/geocoding"
	"github.com/utafrali/propsearch/internal/matcher"
	"github.com/utafrali/propsearch/internal/merge"
	"github.com/utafrali/propsearch/internal/repository"
	apperrors "github.com/utafrali/propsearch/pkg/errors"
	"github.com/utafrali/propsearch/pkg/pagination"
	"github.com/utafrali/propsearch/pkg/tracing"
)

// Geocoder turns free text into candidate places. Implementations must not
// fail; an unavailable provider yields no candidates.
type Geocoder interface {
	Geocode(ctx context.Context, query string, limit int) []domain.LocationCandidate
}

// Config tunes the orchestrator.
type Config struct {
	RadiusKm        float64
	RadiusWorkers   int
	SuggestionLimit int
}

// DefaultConfig returns a 15 km radius, 3 radius workers and 10 suggestions.
func DefaultConfig() Config {
	return Config{
		RadiusKm:        matcher.DefaultRadiusKm,
		RadiusWorkers:   matcher.DefaultWorkers,
		SuggestionLimit: merge.MaxSuggestions,
	}
}

// SearchService answers location autocomplete and property searches.
type SearchService struct {
	store    repository.PropertyStore
	text     *matcher.TextMatcher
	radius   *matcher.RadiusMatcher
	geocoder Geocoder
	events   event.Publisher
	cfg      Config
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewSearchService creates a search service. A nil publisher disables
// analytics events.
func NewSearchService(store repository.PropertyStore, geocoder Geocoder, events event.Publisher, cfg Config, logger *slog.Logger) *SearchService {
	def := DefaultConfig()
	if cfg.RadiusKm <= 0 {
		cfg.RadiusKm = def.RadiusKm
	}
	if cfg.RadiusWorkers < 1 {
		cfg.RadiusWorkers = def.RadiusWorkers
	}
	if cfg.SuggestionLimit < 1 {
		cfg.SuggestionLimit = def.SuggestionLimit
	}
	if events == nil {
		events = event.Noop{}
	}
	return &SearchService{
		store:    store,
		text:     matcher.NewTextMatcher(store, logger),
		radius:   matcher.NewRadiusMatcher(store, cfg.RadiusWorkers, logger),
		geocoder: geocoder,
		events:   events,
		cfg:      cfg,
		tracer:   tracing.Tracer("propsearch/service"),
		logger:   logger,
	}
}

// SearchLocations returns autocomplete suggestions for query: listing groups
// matched by text, listing groups near geocoded places and the geocoded
// places themselves, in that priority.
func (s *SearchService) SearchLocations(ctx context.Context, query string) (suggestions []domain.LocationSuggestion, err error) {
	start := time.Now()
	query = strings.TrimSpace(query)

	ctx, finish := tracing.StartSpan(ctx, s.tracer, "SearchService.SearchLocations",
		attribute.String("search.query", query))
	defer func() {
		finish(err)
		s.observe(opLocations, start, len(suggestions), err)
	}()

	if utf8.RuneCountInString(query) < domain.MinLocationQueryLength {
		return nil, apperrors.InvalidInput(
			fmt.Sprintf("query must be at least %d characters", domain.MinLocationQueryLength))
	}

	var (
		groups     []domain.LocationGroup
		searchType domain.SearchType
		candidates []domain.LocationCandidate
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		groups, searchType, err = s.text.Match(gctx, query)
		return err
	})
	g.Go(func() error {
		candidates = s.geocoder.Geocode(gctx, query, geocoding.MaxSuggestionCandidates)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("search locations: %w", err)
	}

	points := centers(candidates)
	nearby, err := s.radius.MatchAll(ctx, points, s.cfg.RadiusKm)
	if err != nil {
		return nil, fmt.Errorf("search locations: %w", err)
	}

	suggestions = merge.Suggestions(
		merge.TextCandidates(groups, searchType),
		merge.CoordinateCandidates(repository.Aggregate(nearby)),
		merge.GeocodeCandidates(candidates),
		s.cfg.SuggestionLimit,
	)

	s.logger.InfoContext(ctx, "location search completed",
		slog.String("query", query),
		slog.String("search_type", string(searchType)),
		slog.Int("text_groups", len(groups)),
		slog.Int("geocode_candidates", len(candidates)),
		slog.Int("suggestions", len(suggestions)),
	)

	s.publish(ctx, func(ctx context.Context) error {
		return s.events.PublishLocationsSearched(ctx, event.LocationsSearchedData{
			Query:             query,
			ResultCount:       len(suggestions),
			GeocodeCandidates: len(candidates),
			SearchTypes:       countSearchTypes(suggestions),
			AreaCells:         geo.Cells(points),
			DurationMs:        time.Since(start).Milliseconds(),
		})
	})

	return suggestions, nil
}

// SearchProperties returns one page of live listings selected by the
// location fields of filters, narrowed by its attribute filters and ordered
// newest first. A free-text location also pulls in listings within the
// search radius of each geocoded candidate; structured fields alone never
// reach the geocoder.
func (s *SearchService) SearchProperties(ctx context.Context, filters domain.SearchFilters) (result pagination.Page[domain.PropertyRecord], err error) {
	start := time.Now()
	filters = filters.WithDefaults()

	ctx, finish := tracing.StartSpan(ctx, s.tracer, "SearchService.SearchProperties",
		attribute.String("search.location", filters.Location),
		attribute.Int("search.page", filters.Page),
		attribute.Int("search.limit", filters.Limit),
	)
	defer func() {
		finish(err)
		s.observe(opProperties, start, result.Pagination.Total, err)
	}()

	if err := filters.Validate(); err != nil {
		return result, err
	}

	fields := repository.FieldQuery{
		Location: filters.Location,
		City:     filters.City,
		Locality: filters.Locality,
		State:    filters.State,
		Pincode:  filters.Pincode,
	}

	var (
		text       []domain.PropertyRecord
		nearby     []domain.PropertyRecord
		candidates []domain.LocationCandidate
		points     []geo.Point
	)

	if filters.Location == "" {
		text, err = s.store.FindByFields(ctx, fields)
		if err != nil {
			return result, fmt.Errorf("search properties: %w", err)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			text, err = s.store.FindByFields(gctx, fields)
			return err
		})
		g.Go(func() error {
			candidates = s.geocoder.Geocode(gctx, filters.Location, geocoding.MaxSearchCandidates)
			return nil
		})
		if err := g.Wait(); err != nil {
			return result, fmt.Errorf("search properties: %w", err)
		}

		points = centers(candidates)
		nearby, err = s.radius.MatchAll(ctx, points, s.cfg.RadiusKm)
		if err != nil {
			return result, fmt.Errorf("search properties: %w", err)
		}
		if filters.HasStructuredLocation() {
			nearby = withinFields(nearby, fields)
		}
	}

	merged := merge.Properties(text, nearby)
	filtered := filter.New(filters).Apply(merged)
	result = pagination.Paginate(filtered, filters.Page, filters.Limit)

	s.logger.InfoContext(ctx, "property search completed",
		slog.String("filters", filters.Summary()),
		slog.Int("text_matches", len(text)),
		slog.Int("radius_matches", len(nearby)),
		slog.Int("geocode_candidates", len(candidates)),
		slog.Int("total", result.Pagination.Total),
	)

	s.publish(ctx, func(ctx context.Context) error {
		return s.events.PublishPropertiesSearched(ctx, event.PropertiesSearchedData{
			Location:          filters.Summary(),
			Page:              filters.Page,
			Limit:             filters.Limit,
			Total:             result.Pagination.Total,
			Returned:          len(result.Data),
			GeocodeCandidates: len(candidates),
			AreaCells:         geo.Cells(points),
			DurationMs:        time.Since(start).Milliseconds(),
		})
	})

	return result, nil
}

// publish sends an analytics event. Failures are logged and dropped.
func (s *SearchService) publish(ctx context.Context, send func(context.Context) error) {
	if err := send(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to publish search event",
			slog.String("error", err.Error()),
		)
	}
}

func (s *SearchService) observe(op string, start time.Time, results int, err error) {
	searchDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	outcome := outcomeSuccess
	switch {
	case err == nil:
		searchResults.WithLabelValues(op).Observe(float64(results))
	case errors.Is(err, apperrors.ErrInvalidInput):
		outcome = outcomeInvalid
	default:
		outcome = outcomeError
	}
	searchRequests.WithLabelValues(op, outcome).Inc()
}

// centers returns the valid coordinates of candidates in order.
func centers(candidates []domain.LocationCandidate) []geo.Point {
	out := make([]geo.Point, 0, len(candidates))
	for _, c := range candidates {
		p := geo.Point{Lat: c.Coordinates.Lat, Lng: c.Coordinates.Lng}
		if p.Valid() {
			out = append(out, p)
		}
	}
	return out
}

// withinFields keeps radius matches that also satisfy the structured
// location fields. The free-text location is what produced the radius
// centres, so it is not applied again.
func withinFields(records []domain.PropertyRecord, q repository.FieldQuery) []domain.PropertyRecord {
	q.Location = ""
	out := make([]domain.PropertyRecord, 0, len(records))
	for i := range records {
		if repository.MatchesFields(&records[i], q) {
			out = append(out, records[i])
		}
	}
	return out
}

func countSearchTypes(suggestions []domain.LocationSuggestion) map[string]int {
	counts := make(map[string]int)
	for _, s := range suggestions {
		key := s.Type
		if s.IsProperty() {
			key = string(s.SearchType)
		}
		counts[key]++
	}
	return counts
}
