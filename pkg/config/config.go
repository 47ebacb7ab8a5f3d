// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. Each subsystem (loader, search, REPL,
// Redis, Kafka, Postgres, HTTP server) has its own typed section.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Loader    LoaderConfig    `yaml:"loader"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Redis     RedisConfig     `yaml:"redis"`
	Search    SearchConfig    `yaml:"search"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
	REPL      REPLConfig      `yaml:"repl"`
	Logging   LoggingConfig   `yaml:"logging"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

const (
	SourceHTTP     = "http"
	SourcePostgres = "postgres"
)

// LoaderConfig says where the document collection comes from and where it
// is cached between runs.
type LoaderConfig struct {
	Source        string        `yaml:"source"`
	URL           string        `yaml:"url"`
	CacheFile     string        `yaml:"cacheFile"`
	Timeout       time.Duration `yaml:"timeout"`
	RetryAttempts int           `yaml:"retryAttempts"`
	RedisCache    bool          `yaml:"redisCache"`
	RedisCacheTTL time.Duration `yaml:"redisCacheTTL"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	Table           string        `yaml:"table"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Enabled bool        `yaml:"enabled"`
	Brokers []string    `yaml:"brokers"`
	Topics  KafkaTopics `yaml:"topics"`
}

type KafkaTopics struct {
	QueryEvents string `yaml:"queryEvents"`
}

// RedisConfig holds Redis connection and caching parameters.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// SearchConfig holds query defaults shared by the REPL, the one-shot
// command and the HTTP API.
type SearchConfig struct {
	DefaultMode    string `yaml:"defaultMode"`
	Highlight      bool   `yaml:"highlight"`
	HighlightStyle string `yaml:"highlightStyle"`
	Stemmer        string `yaml:"stemmer"`
	CacheResults   bool   `yaml:"cacheResults"`
}

type AnalyticsConfig struct {
	Enabled       bool          `yaml:"enabled"`
	BatchSize     int           `yaml:"batchSize"`
	FlushInterval time.Duration `yaml:"flushInterval"`
	TopQueries    int           `yaml:"topQueries"`
	// SnapshotInterval > 0 persists stats to Postgres while serving.
	SnapshotInterval time.Duration `yaml:"snapshotInterval"`
	SnapshotTable    string        `yaml:"snapshotTable"`
}

// RateLimitConfig configures the per-client token bucket of the HTTP API.
type RateLimitConfig struct {
	Enabled bool          `yaml:"enabled"`
	Limit   int           `yaml:"limit"`
	Window  time.Duration `yaml:"window"`
}

type REPLConfig struct {
	SettingsFile string `yaml:"settingsFile"`
	Prompt       string `yaml:"prompt"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TracingConfig controls query tracing.
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided), applies environment-variable
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			RequestTimeout:  5 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Loader: LoaderConfig{
			Source:        SourceHTTP,
			URL:           "https://poetrydb.org/author,title/Shakespeare;Sonnet",
			CacheFile:     "sonnets.json",
			Timeout:       10 * time.Second,
			RetryAttempts: 3,
			RedisCacheTTL: 24 * time.Hour,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "sonnets",
			User:            "sonnets",
			Password:        "localdev",
			SSLMode:         "disable",
			Table:           "documents",
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			Topics: KafkaTopics{
				QueryEvents: "sonnet-query-events",
			},
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
			CacheTTL: 60 * time.Second,
		},
		Search: SearchConfig{
			DefaultMode:    "AND",
			Highlight:      true,
			HighlightStyle: "DEFAULT",
			Stemmer:        "porter",
		},
		Analytics: AnalyticsConfig{
			Enabled:       true,
			BatchSize:     50,
			FlushInterval: 5 * time.Second,
			TopQueries:    10,
			SnapshotTable: "query_stats_snapshots",
		},
		RateLimit: RateLimitConfig{
			Limit:  60,
			Window: time.Minute,
		},
		REPL: REPLConfig{
			Prompt: "> ",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
		},
	}
}

// Validate rejects settings that would fail later in a less obvious way.
func (c *Config) Validate() error {
	var problems []string
	switch strings.ToUpper(c.Search.DefaultMode) {
	case "AND", "OR":
	default:
		problems = append(problems, fmt.Sprintf("search.defaultMode %q must be AND or OR", c.Search.DefaultMode))
	}
	switch strings.ToUpper(c.Search.HighlightStyle) {
	case "DEFAULT", "GREEN":
	default:
		problems = append(problems, fmt.Sprintf("search.highlightStyle %q must be DEFAULT or GREEN", c.Search.HighlightStyle))
	}
	switch c.Search.Stemmer {
	case "porter", "snowball":
	default:
		problems = append(problems, fmt.Sprintf("search.stemmer %q must be porter or snowball", c.Search.Stemmer))
	}
	switch c.Loader.Source {
	case SourceHTTP:
		if c.Loader.URL == "" {
			problems = append(problems, "loader.url is required for the http source")
		}
	case SourcePostgres:
		if c.Postgres.Table == "" {
			problems = append(problems, "postgres.table is required for the postgres source")
		}
	default:
		problems = append(problems, fmt.Sprintf("loader.source %q must be http or postgres", c.Loader.Source))
	}
	if c.Loader.RedisCache && !c.Redis.Enabled {
		problems = append(problems, "loader.redisCache requires redis.enabled")
	}
	if c.Search.CacheResults && !c.Redis.Enabled {
		problems = append(problems, "search.cacheResults requires redis.enabled")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		problems = append(problems, "kafka.brokers must not be empty when kafka is enabled")
	}
	if c.RateLimit.Enabled && (c.RateLimit.Limit <= 0 || c.RateLimit.Window <= 0) {
		problems = append(problems, "rateLimit.limit and rateLimit.window must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// applyEnvOverrides reads SS_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SS_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SS_LOADER_SOURCE"); v != "" {
		cfg.Loader.Source = v
	}
	if v := os.Getenv("SS_LOADER_URL"); v != "" {
		cfg.Loader.URL = v
	}
	if v := os.Getenv("SS_LOADER_CACHE_FILE"); v != "" {
		cfg.Loader.CacheFile = v
	}
	if v := os.Getenv("SS_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("SS_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("SS_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("SS_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("SS_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("SS_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
		cfg.Kafka.Enabled = true
	}
	if v := os.Getenv("SS_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("SS_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("SS_SEARCH_MODE"); v != "" {
		cfg.Search.DefaultMode = v
	}
	if v := os.Getenv("SS_SEARCH_STEMMER"); v != "" {
		cfg.Search.Stemmer = v
	}
	if v := os.Getenv("SS_SEARCH_HIGHLIGHT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Search.Highlight = b
		}
	}
	if v := os.Getenv("SS_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SS_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
