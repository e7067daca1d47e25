// Package event publishes search analytics events.
package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/propsearch/pkg/kafka"
	"github.com/utafrali/propsearch/pkg/logger"
)

// Event types.
const (
	TypeLocationsSearched  = "search.locations.executed"
	TypePropertiesSearched = "search.properties.executed"
)

// DefaultTopic receives both event types.
var DefaultTopic = kafka.Topic("search", "executed")

// SourceSearchService identifies events originating from this service.
const SourceSearchService = "propsearch"

// LocationsSearchedData is the payload of a search.locations.executed event.
type LocationsSearchedData struct {
	Query             string         `json:"query"`
	ResultCount       int            `json:"result_count"`
	GeocodeCandidates int            `json:"geocode_candidates"`
	SearchTypes       map[string]int `json:"search_types,omitempty"`
	AreaCells         []string       `json:"area_cells,omitempty"`
	DurationMs        int64          `json:"duration_ms"`
}

// PropertiesSearchedData is the payload of a search.properties.executed event.
type PropertiesSearchedData struct {
	Location          string   `json:"location"`
	Page              int      `json:"page"`
	Limit             int      `json:"limit"`
	Total             int      `json:"total"`
	Returned          int      `json:"returned"`
	GeocodeCandidates int      `json:"geocode_candidates"`
	AreaCells         []string `json:"area_cells,omitempty"`
	DurationMs        int64    `json:"duration_ms"`
}

// Publisher emits search analytics.
type Publisher interface {
	PublishLocationsSearched(ctx context.Context, data LocationsSearchedData) error
	PublishPropertiesSearched(ctx context.Context, data PropertiesSearchedData) error
}

// Sender is the part of kafka.Producer used here.
type Sender interface {
	Publish(ctx context.Context, topic string, event *kafka.Event) error
}

// Producer publishes search events to Kafka.
type Producer struct {
	sender Sender
	topic  string
	logger *slog.Logger
}

var _ Publisher = (*Producer)(nil)

// NewProducer creates a producer writing to topic, or DefaultTopic when
// topic is empty.
func NewProducer(sender Sender, topic string, logger *slog.Logger) *Producer {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Producer{sender: sender, topic: topic, logger: logger}
}

// PublishLocationsSearched publishes a search.locations.executed event.
func (p *Producer) PublishLocationsSearched(ctx context.Context, data LocationsSearchedData) error {
	if err := p.publish(ctx, TypeLocationsSearched, data.Query, data); err != nil {
		return err
	}
	p.logger.DebugContext(ctx, "published search.locations.executed event",
		slog.String("query", data.Query),
		slog.Int("result_count", data.ResultCount),
	)
	return nil
}

// PublishPropertiesSearched publishes a search.properties.executed event.
func (p *Producer) PublishPropertiesSearched(ctx context.Context, data PropertiesSearchedData) error {
	if err := p.publish(ctx, TypePropertiesSearched, data.Location, data); err != nil {
		return err
	}
	p.logger.DebugContext(ctx, "published search.properties.executed event",
		slog.String("location", data.Location),
		slog.Int("total", data.Total),
	)
	return nil
}

func (p *Producer) publish(ctx context.Context, eventType, key string, data any) error {
	evt, err := kafka.NewEvent(eventType, key, SourceSearchService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}
	if err := p.sender.Publish(ctx, p.topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}
	return nil
}

// Noop discards every event. It is used when no brokers are configured.
type Noop struct{}

var _ Publisher = Noop{}

func (Noop) PublishLocationsSearched(context.Context, LocationsSearchedData) error { return nil }

func (Noop) PublishPropertiesSearched(context.Context, PropertiesSearchedData) error { return nil }
