package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/soundprediction/hybridrag/pkg/driver"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Database configuration
	Database DatabaseConfig `mapstructure:"database"`

	// Embedding configuration
	Embedding EmbeddingConfig `mapstructure:"embedding"`

	// Retrieval configuration
	Retrieval RetrievalConfig `mapstructure:"retrieval"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // color, text, json
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// DatabaseConfig holds graph store configuration
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // neo4j, memory
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	// Fixture is the YAML file loaded by the memory driver.
	Fixture string `mapstructure:"fixture"`
}

// EmbeddingConfig holds embedding configuration
type EmbeddingConfig struct {
	Provider   string        `mapstructure:"provider"` // openai, embedeverything, none
	Model      string        `mapstructure:"model"`
	APIKey     string        `mapstructure:"api_key"`
	BaseURL    string        `mapstructure:"base_url"`
	Dimensions int           `mapstructure:"dimensions"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Retries    int           `mapstructure:"retries"`
	Cache      CacheConfig   `mapstructure:"cache"`
}

// CacheConfig holds query embedding cache configuration
type CacheConfig struct {
	Type string        `mapstructure:"type"` // none, lru, badger
	Size int           `mapstructure:"size"`
	TTL  time.Duration `mapstructure:"ttl"`
	Path string        `mapstructure:"path"`
}

// RetrievalConfig holds the hybrid retrieval knobs
type RetrievalConfig struct {
	TopK             int           `mapstructure:"top_k"`
	Timeout          time.Duration `mapstructure:"timeout"`
	ChannelTimeout   time.Duration `mapstructure:"channel_timeout"`
	MaxHops          int           `mapstructure:"max_hops"`
	MaxEdges         int           `mapstructure:"max_edges"`
	ProximityLimit   int           `mapstructure:"proximity_limit"`
	ExpansionWorkers int           `mapstructure:"expansion_workers"`

	VectorIndex   string `mapstructure:"vector_index"`
	FullTextIndex string `mapstructure:"fulltext_index"`
	DocumentIndex string `mapstructure:"document_index"`

	CatalogLabel        string `mapstructure:"catalog_label"`
	TopicLabel          string `mapstructure:"topic_label"`
	KeywordLabel        string `mapstructure:"keyword_label"`
	KeywordRelationship string `mapstructure:"keyword_relationship"`
	TopicRelationship   string `mapstructure:"topic_relationship"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
	MinRequests      uint32  `mapstructure:"min_requests"`
}

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ParquetPath string `mapstructure:"parquet_path"`
	BatchSize   int    `mapstructure:"batch_size"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	overrideWithEnv(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

// Validate checks the bounds the retrieval core relies on.
func (c *Config) Validate() error {
	var errs []error

	r := c.Retrieval
	if r.TopK < 1 {
		errs = append(errs, fmt.Errorf("retrieval.top_k must be at least 1, got %d", r.TopK))
	}
	if r.MaxHops < 1 || r.MaxHops > 3 {
		errs = append(errs, fmt.Errorf("retrieval.max_hops must be between 1 and 3, got %d", r.MaxHops))
	}
	if r.MaxEdges < 100 || r.MaxEdges > 200 {
		errs = append(errs, fmt.Errorf("retrieval.max_edges must be between 100 and 200, got %d", r.MaxEdges))
	}
	if r.Timeout <= 0 || r.ChannelTimeout <= 0 {
		errs = append(errs, errors.New("retrieval timeouts must be positive"))
	}

	identifiers := map[string]string{
		"retrieval.catalog_label":        r.CatalogLabel,
		"retrieval.topic_label":          r.TopicLabel,
		"retrieval.keyword_label":        r.KeywordLabel,
		"retrieval.keyword_relationship": r.KeywordRelationship,
		"retrieval.topic_relationship":   r.TopicRelationship,
	}
	for key, value := range identifiers {
		if err := driver.ValidateIdentifier(value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}

	switch strings.ToLower(c.Database.Driver) {
	case "neo4j", "memory":
	default:
		errs = append(errs, fmt.Errorf("database.driver %q is not supported", c.Database.Driver))
	}

	switch strings.ToLower(c.Embedding.Provider) {
	case "openai", "embedeverything", "none", "":
	default:
		errs = append(errs, fmt.Errorf("embedding.provider %q is not supported", c.Embedding.Provider))
	}

	return errors.Join(errs...)
}

// setDefaults sets default configuration values
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "color")

	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	// Database defaults
	viper.SetDefault("database.driver", "neo4j")
	viper.SetDefault("database.uri", "bolt://localhost:7687")
	viper.SetDefault("database.username", "neo4j")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.database", "neo4j")
	viper.SetDefault("database.fixture", "")

	// Embedding defaults
	viper.SetDefault("embedding.provider", "openai")
	viper.SetDefault("embedding.model", "text-embedding-3-small")
	viper.SetDefault("embedding.dimensions", 1536)
	viper.SetDefault("embedding.timeout", "3s")
	viper.SetDefault("embedding.retries", 1)
	viper.SetDefault("embedding.cache.type", "lru")
	viper.SetDefault("embedding.cache.size", 1024)
	viper.SetDefault("embedding.cache.ttl", "24h")

	// Retrieval defaults
	viper.SetDefault("retrieval.top_k", 5)
	viper.SetDefault("retrieval.timeout", "10s")
	viper.SetDefault("retrieval.channel_timeout", "4s")
	viper.SetDefault("retrieval.max_hops", 3)
	viper.SetDefault("retrieval.max_edges", 150)
	viper.SetDefault("retrieval.proximity_limit", 20)
	viper.SetDefault("retrieval.expansion_workers", 8)
	viper.SetDefault("retrieval.vector_index", "vector_index")
	viper.SetDefault("retrieval.fulltext_index", "fulltext_index")
	viper.SetDefault("retrieval.document_index", "chunk_vector_index")
	viper.SetDefault("retrieval.catalog_label", "PROCESS")
	viper.SetDefault("retrieval.topic_label", "TOPIC")
	viper.SetDefault("retrieval.keyword_label", "Keyword")
	viper.SetDefault("retrieval.keyword_relationship", "HAS_KEYWORD")
	viper.SetDefault("retrieval.topic_relationship", "HAS_TOPIC")

	// Circuit breaker defaults
	viper.SetDefault("circuit_breaker.enabled", true)
	viper.SetDefault("circuit_breaker.max_requests", 1)
	viper.SetDefault("circuit_breaker.interval", 60)
	viper.SetDefault("circuit_breaker.timeout", 30)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)
	viper.SetDefault("circuit_breaker.min_requests", 3)

	// Telemetry defaults
	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.batch_size", 100)
	if home, err := os.UserHomeDir(); err == nil {
		viper.SetDefault("telemetry.parquet_path", filepath.Join(home, ".hybridrag", "telemetry"))
		viper.SetDefault("embedding.cache.path", filepath.Join(home, ".hybridrag", "embeddings"))
	}
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	// Database credentials
	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		config.Database.URI = uri
	}
	if user := os.Getenv("NEO4J_USER"); user != "" {
		config.Database.Username = user
	}
	if pass := os.Getenv("NEO4J_PASSWORD"); pass != "" {
		config.Database.Password = pass
	}
	if db := os.Getenv("NEO4J_DATABASE"); db != "" {
		config.Database.Database = db
	}
	if dbDriver := os.Getenv("DB_DRIVER"); dbDriver != "" {
		config.Database.Driver = dbDriver
	}

	// Embedding credentials
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.Embedding.APIKey = apiKey
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.Embedding.BaseURL = baseURL
	}

	// Server settings
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Telemetry settings
	if path := os.Getenv("TELEMETRY_PARQUET_PATH"); path != "" {
		config.Telemetry.ParquetPath = path
	}
}
