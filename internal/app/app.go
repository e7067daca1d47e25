package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/propsearch/internal/config"
	"github.com/utafrali/propsearch/internal/event"
	"github.com/utafrali/propsearch/internal/geocoding"
	handler "github.com/utafrali/propsearch/internal/handler/http"
	"github.com/utafrali/propsearch/internal/repository"
	esstore "github.com/utafrali/propsearch/internal/repository/elasticsearch"
	"github.com/utafrali/propsearch/internal/repository/memory"
	"github.com/utafrali/propsearch/internal/repository/postgres"
	"github.com/utafrali/propsearch/internal/service"
	"github.com/utafrali/propsearch/pkg/database"
	"github.com/utafrali/propsearch/pkg/health"
	"github.com/utafrali/propsearch/pkg/httpclient"
	pkgkafka "github.com/utafrali/propsearch/pkg/kafka"
	"github.com/utafrali/propsearch/pkg/tracing"
)

const serviceName = "propsearch"

// App wires together all dependencies and runs the search service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
// Optional dependencies (Redis, Kafka) that cannot be reached are logged and
// skipped.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = tracerShutdown

	healthHandler := health.NewHandler()

	store, err := a.initStore(ctx, healthHandler)
	if err != nil {
		a.closeResources()
		return nil, err
	}

	geocoder := a.initGeocoder(ctx, healthHandler)
	publisher := a.initPublisher(ctx, healthHandler)

	searchService := service.NewSearchService(store, geocoder, publisher, service.Config{
		RadiusKm:        cfg.SearchRadiusKm,
		RadiusWorkers:   cfg.SearchRadiusWorkers,
		SuggestionLimit: cfg.SuggestionLimit,
	}, logger)

	// HTTP router.
	router := handler.NewRouter(searchService, healthHandler, handler.Options{
		RateLimitRPS:      cfg.RateLimitRPS,
		RateLimitBurst:    cfg.RateLimitBurst,
		PprofAllowedCIDRs: cfg.PprofAllowedCIDRs,
	}, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// initStore opens the configured property store and registers it as a
// critical health dependency.
func (a *App) initStore(ctx context.Context, hh *health.Handler) (repository.PropertyStore, error) {
	cfg := a.cfg
	switch cfg.PropertyStore {
	case config.StoreElasticsearch:
		store, err := esstore.New(cfg.ElasticsearchURL, cfg.ElasticsearchIndex, a.logger)
		if err != nil {
			return nil, fmt.Errorf("init elasticsearch store: %w", err)
		}
		hh.RegisterCritical("property_store", store.Ping)
		a.logger.Info("elasticsearch property store initialized",
			slog.String("url", cfg.ElasticsearchURL),
			slog.String("index", cfg.ElasticsearchIndex),
		)
		return store, nil

	case config.StoreMemory:
		store := memory.New()
		if cfg.MemoryStoreSeed != "" {
			var err error
			store, err = memory.LoadFile(cfg.MemoryStoreSeed)
			if err != nil {
				return nil, fmt.Errorf("seed memory store: %w", err)
			}
		}
		hh.RegisterCritical("property_store", func(context.Context) error { return nil })
		a.logger.Info("in-memory property store initialized", slog.Int("records", store.Len()))
		return store, nil

	default:
		pgCfg := cfg.Postgres()
		pool, err := database.NewPostgresPool(ctx, &pgCfg, a.logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.pool = pool
		a.logger.Info("connected to PostgreSQL",
			slog.String("host", cfg.PostgresHost),
			slog.Int("port", cfg.PostgresPort),
			slog.String("database", cfg.PostgresDB),
		)
		database.RegisterPoolMetrics(pool, serviceName)

		// Configure slow query logging.
		if cfg.SlowQueryThreshold > 0 {
			database.SetSlowQueryLogging(cfg.SlowQueryThreshold, a.logger)
		}

		hh.RegisterCritical("property_store", func(ctx context.Context) error {
			return pool.Ping(ctx)
		})
		return postgres.NewStore(pool), nil
	}
}

// initGeocoder builds the fail-open geocoding client. Without an access token
// the client has no provider and every lookup degrades to zero candidates.
func (a *App) initGeocoder(ctx context.Context, hh *health.Handler) *geocoding.Client {
	cfg := a.cfg
	clientCfg := geocoding.ClientConfig{Country: cfg.GeocoderCountry, Timeout: cfg.GeocoderTimeout}

	if cfg.GeocoderAccessToken == "" {
		a.logger.Warn("GEOCODER_ACCESS_TOKEN not set, location search is text-only")
		return geocoding.NewClient(nil, clientCfg, a.logger)
	}

	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.GeocoderTimeout
	httpCfg.MaxRetries = 0
	breaker := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpCfg),
		httpclient.DefaultCircuitBreakerConfig("geocoder"),
		a.logger,
	)

	var provider geocoding.Provider = geocoding.NewMapbox(geocoding.MapboxConfig{
		BaseURL:     cfg.GeocoderBaseURL,
		AccessToken: cfg.GeocoderAccessToken,
	}, breaker)

	if redisCfg := cfg.Redis(); redisCfg.Enabled() {
		client, err := database.NewRedisClient(ctx, redisCfg)
		if err != nil {
			a.logger.Warn("redis unavailable, geocode cache disabled",
				slog.String("addr", redisCfg.Addr()),
				slog.String("error", err.Error()),
			)
		} else {
			a.redis = client
			provider = geocoding.NewCache(provider, client, cfg.GeocodeCacheTTL, a.logger)
			hh.RegisterNonCritical("geocode_cache", func(ctx context.Context) error {
				return client.Ping(ctx).Err()
			})
			a.logger.Info("geocode cache enabled",
				slog.String("addr", redisCfg.Addr()),
				slog.Duration("ttl", cfg.GeocodeCacheTTL),
			)
		}
	}

	a.logger.Info("geocoding provider initialized",
		slog.String("base_url", cfg.GeocoderBaseURL),
		slog.String("country", cfg.GeocoderCountry),
		slog.Duration("timeout", cfg.GeocoderTimeout),
	)
	return geocoding.NewClient(provider, clientCfg, a.logger)
}

// initPublisher returns a Kafka-backed analytics publisher, or a no-op one
// when no brokers are configured.
func (a *App) initPublisher(ctx context.Context, hh *health.Handler) event.Publisher {
	cfg := a.cfg
	if !cfg.AnalyticsEnabled() {
		a.logger.Info("KAFKA_BROKERS not set, search analytics disabled")
		return event.Noop{}
	}

	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), a.logger)
	if err := producer.Ping(ctx); err != nil {
		a.logger.Warn("kafka producer ping failed, continuing in degraded mode",
			slog.String("error", err.Error()),
		)
	} else {
		a.logger.Info("kafka producer initialized",
			slog.Any("brokers", cfg.KafkaBrokers),
			slog.String("topic", cfg.KafkaSearchTopic),
		)
	}
	a.producer = producer

	hh.RegisterNonCritical("analytics", producer.Ping)
	return event.NewProducer(producer, cfg.KafkaSearchTopic, a.logger)
}

// Run starts the HTTP server, blocking until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return errors.Join(err, a.Shutdown())
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	errs = append(errs, a.closeResources()...)

	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(shutdownCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// closeResources releases the producer, cache and pool, in that order.
func (a *App) closeResources() []error {
	var errs []error
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
		a.producer = nil
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
		a.redis = nil
	}
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
	return errs
}
