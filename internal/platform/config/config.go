package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix namespaces every variable read by FromEnv.
const EnvPrefix = "MIGRATIO_"

// Session store backends.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	WorkerAddr      string        `env:"WORKER_ADDR" envDefault:":9090"`
	JWTSigningKey   string        `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	JWTIssuer       string        `env:"JWT_ISSUER" envDefault:"migratio"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	Log        LogConfig
	Engine     EngineConfig
	Catalog    CatalogConfig
	Redis      RedisConfig    `envPrefix:"REDIS_"`
	Postgres   PostgresConfig `envPrefix:"DATABASE_"`
	Kafka      KafkaConfig    `envPrefix:"KAFKA_"`
	Enrichment EnrichmentConfig
	Services   ServicesConfig
	RateLimit  RateLimitConfig
	Tracing    TracingConfig `envPrefix:"OTEL_"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// EngineConfig holds the knobs of the session orchestrator.
type EngineConfig struct {
	SessionStore     string        `env:"SESSION_STORE" envDefault:"memory"`
	InitialQuestions int           `env:"INITIAL_QUESTIONS" envDefault:"2"`
	QuizVersion      string        `env:"QUIZ_VERSION" envDefault:"v2.0"`
	TxTimeout        time.Duration `env:"TX_TIMEOUT" envDefault:"5s"`
}

type CatalogConfig struct {
	// CountTTL bounds how stale the cached active-question count may be.
	CountTTL time.Duration `env:"CATALOG_COUNT_TTL" envDefault:"5m"`
	SeedFile string        `env:"CATALOG_SEED_FILE"`
}

// RedisConfig configures the go-redis client. An empty URL disables Redis.
type RedisConfig struct {
	URL          string        `env:"URL"`
	PoolSize     int           `env:"POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"3s"`
	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"720h"`
}

// PostgresConfig configures the database/sql pool. An empty URL disables Postgres.
type PostgresConfig struct {
	URL             string        `env:"URL"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"30m"`
}

// KafkaConfig configures the enrichment event transport. No brokers means
// events stay in-process.
type KafkaConfig struct {
	Brokers []string `env:"BROKERS" envSeparator:","`
	Topic   string   `env:"TOPIC" envDefault:"assessment.enrichment"`
	Group   string   `env:"GROUP" envDefault:"assessment-enrichment-worker"`
}

type EnrichmentConfig struct {
	Workers int           `env:"ENRICHMENT_WORKERS" envDefault:"4"`
	Buffer  int           `env:"ENRICHMENT_BUFFER" envDefault:"256"`
	Timeout time.Duration `env:"ENRICHMENT_TIMEOUT" envDefault:"10s"`
}

// ServicesConfig points at the external collaborators. Empty URLs select the
// in-process adapters.
type ServicesConfig struct {
	ProfileURL        string        `env:"PROFILE_SERVICE_URL"`
	RecommendationURL string        `env:"RECOMMENDATION_SERVICE_URL"`
	NlpURL            string        `env:"NLP_SERVICE_URL"`
	HTTPTimeout       time.Duration `env:"SERVICE_HTTP_TIMEOUT" envDefault:"5s"`
	// Client-side request rate per service; 0 disables limiting.
	RateLimit float64 `env:"SERVICE_RATE_LIMIT" envDefault:"50"`
	RateBurst int     `env:"SERVICE_RATE_BURST" envDefault:"20"`
}

// RateLimitConfig bounds assessment requests per user. The window is shared
// through Redis when it is configured.
type RateLimitConfig struct {
	PerUser int           `env:"USER_RATE_LIMIT" envDefault:"120"`
	Window  time.Duration `env:"USER_RATE_WINDOW" envDefault:"1m"`
}

// TracingConfig enables OTLP trace export. An empty endpoint keeps tracing off.
type TracingConfig struct {
	Endpoint    string `env:"ENDPOINT"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"migratio-assessment"`
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func (c Server) validate() error {
	switch c.Engine.SessionStore {
	case StoreMemory:
	case StoreRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("session store %q requires %sREDIS_URL", StoreRedis, EnvPrefix)
		}
	case StorePostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("session store %q requires %sDATABASE_URL", StorePostgres, EnvPrefix)
		}
	default:
		return fmt.Errorf("unknown session store %q", c.Engine.SessionStore)
	}
	if c.Engine.InitialQuestions < 1 {
		return fmt.Errorf("initial questions must be positive, got %d", c.Engine.InitialQuestions)
	}
	return nil
}
