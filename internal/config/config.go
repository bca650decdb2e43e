// Package config defines the application configuration model and its loading
// rules.  Configuration is resolved from three layers, lowest priority first:
// built-in defaults, an optional YAML file, and environment variables with
// the ONCO_ prefix (ONCO_SERVER_PORT overrides server.port).
package config

import (
	"fmt"
	"time"

	"github.com/trovesx/OncoPurpose/internal/infrastructure/monitoring/logging"
)

// Config is the root configuration object for the OncoPurpose services.
type Config struct {
	// Environment is one of "development", "staging", "production".
	Environment string `mapstructure:"environment"`

	Server    ServerConfig      `mapstructure:"server"`
	Log       logging.LogConfig `mapstructure:"log"`
	Corpus    CorpusConfig      `mapstructure:"corpus"`
	Cache     CacheConfig       `mapstructure:"cache"`
	Database  DatabaseConfig    `mapstructure:"database"`
	Kafka     KafkaConfig       `mapstructure:"kafka"`
	Auth      AuthConfig        `mapstructure:"auth"`
	RateLimit RateLimitConfig   `mapstructure:"rate_limit"`
	External  ExternalConfig    `mapstructure:"external"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

// Addr returns the host:port string for the HTTP listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// CorpusConfig locates the curated datasets on disk.
type CorpusConfig struct {
	// Dir is the root directory holding broad/ and hero_cases/ subdirectories.
	Dir string `mapstructure:"dir"`
}

// CacheConfig controls the Redis connection and per-namespace TTLs.
type CacheConfig struct {
	// URL is a redis connection URL (redis://host:port/db).  Empty disables
	// caching; all components then operate in pass-through mode.
	URL      string `mapstructure:"url"`
	Password string `mapstructure:"password"`
	PoolSize int    `mapstructure:"pool_size"`

	DrugTTL     time.Duration `mapstructure:"drug_ttl"`
	SearchTTL   time.Duration `mapstructure:"search_ttl"`
	MarketTTL   time.Duration `mapstructure:"market_ttl"`
	PaperTTL    time.Duration `mapstructure:"paper_ttl"`
}

// DatabaseConfig controls the Postgres connection used by the analysis store.
type DatabaseConfig struct {
	// URL is a pgx connection string.  Empty disables persistence and the
	// store falls back to the in-memory ephemeral ring.
	URL             string        `mapstructure:"url"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// KafkaConfig controls event publication.
type KafkaConfig struct {
	// Brokers is the bootstrap broker list.  Empty disables event publication.
	Brokers      []string      `mapstructure:"brokers"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// AuthConfig controls the token lifecycle.  Only the refresh-token side is
// implemented here; access-token signing is delegated to the edge.
type AuthConfig struct {
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
}

// RateLimitConfig controls the sliding-window request limiter.
type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Window  time.Duration `mapstructure:"window"`
	// Per-tier request budgets within one window.  Enterprise is unlimited
	// and has no budget entry.
	BasicLimit        int64 `mapstructure:"basic_limit"`
	ProfessionalLimit int64 `mapstructure:"professional_limit"`
}

// ExternalConfig bundles the outbound data-source settings.
type ExternalConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	// LiveEvidenceDeadline is the shared budget for one live-evidence fan-out.
	LiveEvidenceDeadline time.Duration `mapstructure:"live_evidence_deadline"`

	PubMed         SourceConfig `mapstructure:"pubmed"`
	ClinicalTrials SourceConfig `mapstructure:"clinical_trials"`
	DrugBank       SourceConfig `mapstructure:"drugbank"`
}

// SourceConfig holds per-source connection settings.
type SourceConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	// MaxConcurrent caps in-flight requests against this source.
	MaxConcurrent int `mapstructure:"max_concurrent"`
	// RatePerSecond paces request admission; zero means unpaced.
	RatePerSecond float64 `mapstructure:"rate_per_second"`
}

// Validate checks cross-field constraints that defaults cannot guarantee.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	if c.RateLimit.Enabled && c.RateLimit.Window <= 0 {
		return fmt.Errorf("config: rate_limit.window must be positive when enabled")
	}
	switch c.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("config: unknown environment %q", c.Environment)
	}
	return nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
