package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/utafrali/propsearch/internal/event"
	pkgconfig "github.com/utafrali/propsearch/pkg/config"
	"github.com/utafrali/propsearch/pkg/database"
)

// Property store backends.
const (
	StorePostgres      = "postgres"
	StoreElasticsearch = "elasticsearch"
	StoreMemory        = "memory"
)

// Config holds all configuration for the search service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"SEARCH_HTTP_PORT" envDefault:"8010"`

	// Property store selection (postgres, elasticsearch or memory)
	PropertyStore string `env:"PROPERTY_STORE" envDefault:"postgres"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"propsearch"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"propsearch_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"marketplace"`
	PostgresSSL  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	// Database pool
	DBMaxConns int32 `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	DBMinConns int32 `env:"POSTGRES_MIN_CONNS" envDefault:"2"`

	// Slow query logging
	SlowQueryThreshold time.Duration `env:"SLOW_QUERY_THRESHOLD" envDefault:"200ms"`

	// Elasticsearch
	ElasticsearchURL   string `env:"ELASTICSEARCH_URL" envDefault:"http://localhost:9200"`
	ElasticsearchIndex string `env:"ELASTICSEARCH_INDEX" envDefault:"marketplace_properties"`

	// In-memory store fixture (JSON array of property records)
	MemoryStoreSeed string `env:"MEMORY_STORE_SEED"`

	// Geocoding provider
	GeocoderBaseURL     string        `env:"GEOCODER_BASE_URL" envDefault:"https://api.mapbox.com"`
	GeocoderAccessToken string        `env:"GEOCODER_ACCESS_TOKEN"`
	GeocoderCountry     string        `env:"GEOCODER_COUNTRY" envDefault:"in"`
	GeocoderTimeout     time.Duration `env:"GEOCODER_TIMEOUT" envDefault:"3s"`

	// Redis geocode cache (empty host disables)
	RedisHost       string        `env:"REDIS_HOST"`
	RedisPort       int           `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	RedisDB         int           `env:"REDIS_DB" envDefault:"0"`
	GeocodeCacheTTL time.Duration `env:"GEOCODE_CACHE_TTL" envDefault:"24h"`

	// Search tuning
	SearchRadiusKm      float64 `env:"SEARCH_RADIUS_KM" envDefault:"15"`
	SearchRadiusWorkers int     `env:"SEARCH_RADIUS_WORKERS" envDefault:"3"`
	SuggestionLimit     int     `env:"SUGGESTION_LIMIT" envDefault:"10"`

	// Per-client rate limit on the search API (0 disables)
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`

	// Profiling endpoints (empty disables)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envSeparator:","`

	// Kafka analytics (empty disables)
	KafkaBrokers     []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaSearchTopic string   `env:"KAFKA_SEARCH_TOPIC"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load search config: %w", err)
	}
	if cfg.KafkaSearchTopic == "" {
		cfg.KafkaSearchTopic = event.DefaultTopic
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	switch c.PropertyStore {
	case StorePostgres:
		if c.PostgresHost == "" {
			return fmt.Errorf("POSTGRES_HOST is required")
		}
		if c.PostgresUser == "" {
			return fmt.Errorf("POSTGRES_USER is required")
		}
		if c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("POSTGRES_MIN_CONNS (%d) exceeds POSTGRES_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
		}
	case StoreElasticsearch:
		if _, err := url.ParseRequestURI(c.ElasticsearchURL); err != nil {
			return fmt.Errorf("invalid ELASTICSEARCH_URL: %w", err)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("PROPERTY_STORE must be one of postgres, elasticsearch, memory, got %q", c.PropertyStore)
	}
	if _, err := url.ParseRequestURI(c.GeocoderBaseURL); err != nil {
		return fmt.Errorf("invalid GEOCODER_BASE_URL: %w", err)
	}
	if c.GeocoderTimeout <= 0 {
		return fmt.Errorf("GEOCODER_TIMEOUT must be positive, got %s", c.GeocoderTimeout)
	}
	if c.SearchRadiusKm <= 0 {
		return fmt.Errorf("SEARCH_RADIUS_KM must be positive, got %g", c.SearchRadiusKm)
	}
	if c.SearchRadiusWorkers < 1 {
		return fmt.Errorf("SEARCH_RADIUS_WORKERS must be at least 1, got %d", c.SearchRadiusWorkers)
	}
	if c.SuggestionLimit < 1 || c.SuggestionLimit > 50 {
		return fmt.Errorf("SUGGESTION_LIMIT must be between 1 and 50, got %d", c.SuggestionLimit)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %g", c.RateLimitRPS)
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1, got %d", c.RateLimitBurst)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}

// Postgres returns the pool settings for the property store.
func (c *Config) Postgres() database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = c.PostgresHost
	pg.Port = c.PostgresPort
	pg.User = c.PostgresUser
	pg.Password = c.PostgresPass
	pg.DBName = c.PostgresDB
	pg.SSLMode = c.PostgresSSL
	pg.MaxConns = c.DBMaxConns
	pg.MinConns = c.DBMinConns
	return pg
}

// Redis returns the geocode cache connection settings.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// AnalyticsEnabled reports whether search events should be published.
func (c *Config) AnalyticsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}
