package config

import (
	"fmt"
	"net"
	"time"

	pkgconfig "github.com/utafrali/catalogsearch/pkg/config"
)

// Catalog sources.
const (
	SourceFile     = "file"
	SourceHTTP     = "http"
	SourcePostgres = "postgres"
)

// Search engines.
const (
	EngineMemory        = "memory"
	EngineElasticsearch = "elasticsearch"
)

// Config holds all configuration for the catalog search service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"CATALOG_LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort        int           `env:"CATALOG_HTTP_PORT" envDefault:"8010"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// Catalog loading
	CatalogSource  string `env:"CATALOG_SOURCE" envDefault:"file"`
	CatalogFile    string `env:"CATALOG_FILE" envDefault:"data/products.json"`
	CatalogFeedURL string `env:"CATALOG_FEED_URL"`
	DatabaseURL    string `env:"DATABASE_URL"`

	// Optional YAML synonym table; empty uses the built-in one.
	SynonymsFile string `env:"SYNONYMS_FILE"`

	// Search engine selection (memory or elasticsearch)
	SearchEngine         string `env:"SEARCH_ENGINE" envDefault:"memory"`
	ElasticsearchURL     string `env:"ELASTICSEARCH_URL" envDefault:"http://localhost:9200"`
	ElasticsearchIndex   string `env:"ELASTICSEARCH_INDEX" envDefault:"catalog_products"`
	ElasticsearchReindex bool   `env:"ELASTICSEARCH_REINDEX_ON_START" envDefault:"true"`

	// Request defaults
	DefaultLocation        string  `env:"DEFAULT_LOCATION" envDefault:"Mumbai"`
	SuggestDefaultLimit    int     `env:"SUGGEST_DEFAULT_LIMIT" envDefault:"8"`
	SuggestPopularFallback bool    `env:"SUGGEST_POPULAR_FALLBACK" envDefault:"false"`
	SuggestRateLimitRPS    float64 `env:"SUGGEST_RATE_LIMIT_RPS" envDefault:"20"`
	SuggestRateLimitBurst  int     `env:"SUGGEST_RATE_LIMIT_BURST" envDefault:"40"`

	// Redis suggestion cache; disabled when REDIS_URL is empty.
	RedisURL        string        `env:"REDIS_URL"`
	SuggestCacheTTL time.Duration `env:"SUGGEST_CACHE_TTL" envDefault:"5m"`

	// Kafka search analytics; disabled when KAFKA_BROKERS is empty.
	KafkaBrokers      []string `env:"KAFKA_BROKERS" envSeparator:","`
	SearchEventsTopic string   `env:"SEARCH_EVENTS_TOPIC" envDefault:"catalog.search.performed"`

	// OpenTelemetry
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	PprofAllowedCIDRs  []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32" envSeparator:","`

	// Forwarding headers are honored only from these peers. Empty trusts none.
	TrustedProxyCIDRs []string `env:"TRUSTED_PROXY_CIDRS" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load catalog search config: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	switch c.CatalogSource {
	case SourceFile:
		if c.CatalogFile == "" {
			return fmt.Errorf("CATALOG_FILE is required when CATALOG_SOURCE=file")
		}
	case SourceHTTP:
		if c.CatalogFeedURL == "" {
			return fmt.Errorf("CATALOG_FEED_URL is required when CATALOG_SOURCE=http")
		}
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when CATALOG_SOURCE=postgres")
		}
	default:
		return fmt.Errorf("unknown CATALOG_SOURCE %q", c.CatalogSource)
	}

	switch c.SearchEngine {
	case EngineMemory:
	case EngineElasticsearch:
		if c.ElasticsearchURL == "" {
			return fmt.Errorf("ELASTICSEARCH_URL is required when SEARCH_ENGINE=elasticsearch")
		}
	default:
		return fmt.Errorf("unknown SEARCH_ENGINE %q", c.SearchEngine)
	}

	if c.SuggestDefaultLimit < 1 {
		return fmt.Errorf("SUGGEST_DEFAULT_LIMIT must be positive, got %d", c.SuggestDefaultLimit)
	}
	if c.SuggestRateLimitRPS <= 0 || c.SuggestRateLimitBurst < 1 {
		return fmt.Errorf("suggest rate limit must be positive")
	}
	if c.SuggestCacheTTL <= 0 {
		return fmt.Errorf("SUGGEST_CACHE_TTL must be positive")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %v", c.OTELSampleRate)
	}
	for _, cidr := range c.TrustedProxyCIDRs {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			return fmt.Errorf("invalid TRUSTED_PROXY_CIDRS entry %q: %w", cidr, err)
		}
	}
	return nil
}
