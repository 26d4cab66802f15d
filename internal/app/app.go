package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/catalogsearch/internal/cache"
	"github.com/utafrali/catalogsearch/internal/catalog"
	"github.com/utafrali/catalogsearch/internal/config"
	"github.com/utafrali/catalogsearch/internal/engine"
	esengine "github.com/utafrali/catalogsearch/internal/engine/elasticsearch"
	"github.com/utafrali/catalogsearch/internal/engine/fallback"
	"github.com/utafrali/catalogsearch/internal/engine/memory"
	"github.com/utafrali/catalogsearch/internal/event"
	handler "github.com/utafrali/catalogsearch/internal/handler/http"
	"github.com/utafrali/catalogsearch/internal/service"
	"github.com/utafrali/catalogsearch/internal/synonym"
	"github.com/utafrali/catalogsearch/pkg/breaker"
	"github.com/utafrali/catalogsearch/pkg/database"
	"github.com/utafrali/catalogsearch/pkg/health"
	"github.com/utafrali/catalogsearch/pkg/httpclient"
	pkgkafka "github.com/utafrali/catalogsearch/pkg/kafka"
	"github.com/utafrali/catalogsearch/pkg/middleware"
	"github.com/utafrali/catalogsearch/pkg/tracing"
)

// Version is reported in traces.
var Version = "dev"

// App wires together all dependencies and runs the catalog search service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	redis          *redis.Client
	producer       *pkgkafka.Producer
	limiter        *middleware.RateLimiter
	tracerShutdown func(context.Context) error
	httpServer     *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
// Only the catalog and the in-memory engine are required; every other backend
// is optional and its failure is logged, not fatal.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	shutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    handler.ServiceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	a.tracerShutdown = shutdown

	expander, err := synonym.LoadFile(cfg.SynonymsFile)
	if err != nil {
		return nil, fmt.Errorf("load synonyms: %w", err)
	}

	cat, err := LoadCatalog(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("catalog loaded",
		slog.String("source", cfg.CatalogSource),
		slog.Int("products", cat.Len()),
	)

	healthHandler := health.NewHandler()
	healthHandler.RegisterOptional("catalog", func(context.Context) error {
		if cat.Len() == 0 {
			return errors.New("catalog is empty")
		}
		return nil
	})

	// The in-memory engine is always built; a remote engine only ever sits
	// in front of it.
	local := memory.New(cat, expander)
	var eng engine.SearchEngine = local
	if cfg.SearchEngine == config.EngineElasticsearch {
		if remote := a.initElasticsearch(ctx, cat, expander, healthHandler); remote != nil {
			eng = fallback.New(remote, local, breaker.DefaultConfig(fallback.BreakerName), logger)
		}
	}

	var opts []service.Option
	if cfg.RedisURL != "" {
		client, err := database.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, suggestion cache disabled", slog.String("error", err.Error()))
		} else {
			a.redis = client
			sc := cache.NewSuggestCache(client, cfg.SuggestCacheTTL)
			healthHandler.RegisterOptional("redis", sc.Ping)
			opts = append(opts, service.WithCache(sc))
			logger.Info("suggestion cache enabled", slog.Duration("ttl", cfg.SuggestCacheTTL))
		}
	}
	if len(cfg.KafkaBrokers) > 0 {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		healthHandler.RegisterOptional("kafka", a.producer.Ping)
		opts = append(opts, service.WithPublisher(event.NewProducer(a.producer, cfg.SearchEventsTopic, logger)))
		logger.Info("search analytics enabled",
			slog.Any("brokers", cfg.KafkaBrokers),
			slog.String("topic", cfg.SearchEventsTopic),
		)
	}

	catalogService := service.NewCatalogService(eng, expander, service.Config{
		DefaultLocation: cfg.DefaultLocation,
		SuggestLimit:    cfg.SuggestDefaultLimit,
		PopularFallback: cfg.SuggestPopularFallback,
	}, logger, opts...)

	a.limiter = middleware.NewRateLimiter(cfg.SuggestRateLimitRPS, cfg.SuggestRateLimitBurst, 3*time.Minute, cfg.TrustedProxyCIDRs, logger)

	router := handler.NewRouter(catalogService, healthHandler, handler.RouterConfig{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		PprofAllowedCIDRs:  cfg.PprofAllowedCIDRs,
		SuggestLimiter:     a.limiter,
	}, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return a, nil
}

// initElasticsearch connects to the cluster and optionally pushes the catalog
// into it. It returns nil when the cluster cannot be used.
func (a *App) initElasticsearch(ctx context.Context, cat *catalog.Catalog, expander *synonym.Expander, h *health.Handler) *esengine.Engine {
	remote, err := esengine.New(ctx, esengine.Config{
		URL:       a.cfg.ElasticsearchURL,
		IndexName: a.cfg.ElasticsearchIndex,
	}, expander, a.logger)
	if err != nil {
		a.logger.Error("elasticsearch unavailable, serving from the in-memory engine",
			slog.String("error", err.Error()),
		)
		return nil
	}

	if a.cfg.ElasticsearchReindex {
		if err := remote.Reindex(ctx, cat.Products()); err != nil {
			a.logger.Error("elasticsearch reindex failed, serving from the in-memory engine",
				slog.String("error", err.Error()),
			)
			return nil
		}
		a.logger.Info("elasticsearch index rebuilt",
			slog.String("index", remote.IndexName()),
			slog.Int("products", cat.Len()),
		)
	}

	h.RegisterOptional("elasticsearch", remote.Ping)
	a.logger.Info("elasticsearch search engine initialized",
		slog.String("url", a.cfg.ElasticsearchURL),
		slog.String("index", remote.IndexName()),
	)
	return remote
}

// Handler returns the HTTP handler of the service.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled.
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
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.limiter.Close()

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.tracerShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// LoadCatalog reads the catalog from the configured source. An unreachable
// source yields an empty catalog; only an unusable configuration is an error.
func LoadCatalog(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*catalog.Catalog, error) {
	switch cfg.CatalogSource {
	case config.SourceFile:
		return catalog.Load(ctx, catalog.NewFileLoader(cfg.CatalogFile), logger), nil

	case config.SourceHTTP:
		client := httpclient.NewCircuitBreakerClient(
			httpclient.New(httpclient.DefaultConfig()),
			breaker.DefaultConfig("catalog-feed"),
			logger,
		)
		return catalog.Load(ctx, catalog.NewHTTPLoader(cfg.CatalogFeedURL, client), logger), nil

	case config.SourcePostgres:
		pool, err := database.NewPostgresPool(ctx, database.DefaultPostgresConfig(cfg.DatabaseURL), logger)
		if err != nil {
			logger.Error("postgres unavailable, starting with an empty catalog",
				slog.String("error", err.Error()),
			)
			return catalog.Empty(), nil
		}
		// The catalog is read once; the pool is not needed afterwards.
		defer pool.Close()
		return catalog.Load(ctx, catalog.NewPostgresLoader(pool), logger), nil

	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.CatalogSource)
	}
}
