// Package config centralizes environment-driven configuration for the
// scenedex engine, with validation and defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Embedding provider names accepted by SCENEDEX_EMBEDDING_PROVIDER.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderLocal  = "local"
)

// Config holds all configuration for the engine and its surfaces.
type Config struct {
	// Storage settings
	DatabasePath string

	// Embedding settings
	EmbeddingProvider    string
	EmbeddingModel       string
	EmbeddingDimensions  int
	OpenAIKey            string
	OpenAIBaseURL        string
	OllamaURL            string
	BatchSize            int
	MaxConcurrentBatches int
	MaxRetries           int
	RetryBaseDelay       time.Duration
	CacheSize            int

	// Indexing settings
	Workers     int // 0 means 2x GOMAXPROCS
	MaxFileSize int64

	// Search settings
	DefaultLimit      int
	MaxGraphDepth     int
	QueryCacheTTL     time.Duration
	GraphCacheTTL     time.Duration
	GraphCacheTenants int

	// Logging settings
	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		DatabasePath: getEnv("SCENEDEX_DB_PATH", defaultDBPath()),

		EmbeddingProvider:    getEnv("SCENEDEX_EMBEDDING_PROVIDER", ProviderOpenAI),
		EmbeddingModel:       getEnv("SCENEDEX_EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingDimensions:  getEnvInt("SCENEDEX_EMBEDDING_DIMENSIONS", 1536),
		OpenAIKey:            os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:        os.Getenv("OPENAI_BASE_URL"),
		OllamaURL:            getEnv("OLLAMA_URL", "http://localhost:11434"),
		BatchSize:            getEnvInt("SCENEDEX_EMBEDDING_BATCH_SIZE", 20),
		MaxConcurrentBatches: getEnvInt("SCENEDEX_EMBEDDING_CONCURRENCY", 4),
		MaxRetries:           getEnvInt("SCENEDEX_EMBEDDING_MAX_RETRIES", 3),
		RetryBaseDelay:       getEnvDuration("SCENEDEX_EMBEDDING_RETRY_DELAY", 200*time.Millisecond),
		CacheSize:            getEnvInt("SCENEDEX_EMBEDDING_CACHE_SIZE", 1000),

		Workers:     getEnvInt("SCENEDEX_INDEX_WORKERS", 0),
		MaxFileSize: getEnvInt64("SCENEDEX_MAX_FILE_SIZE", 10*1024*1024),

		DefaultLimit:      getEnvInt("SCENEDEX_SEARCH_LIMIT", 10),
		MaxGraphDepth:     getEnvInt("SCENEDEX_GRAPH_DEPTH", 2),
		QueryCacheTTL:     getEnvDuration("SCENEDEX_QUERY_CACHE_TTL", 60*time.Second),
		GraphCacheTTL:     getEnvDuration("SCENEDEX_GRAPH_CACHE_TTL", 5*time.Minute),
		GraphCacheTenants: getEnvInt("SCENEDEX_GRAPH_CACHE_TENANTS", 64),

		LogLevel:  getEnv("SCENEDEX_LOG_LEVEL", "info"),
		LogFormat: getEnv("SCENEDEX_LOG_FORMAT", "console"),
	}

	return cfg, cfg.Validate()
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	switch c.EmbeddingProvider {
	case ProviderOpenAI, ProviderOllama, ProviderLocal:
	default:
		return fmt.Errorf("SCENEDEX_EMBEDDING_PROVIDER must be one of openai, ollama, local; got %q", c.EmbeddingProvider)
	}
	if c.EmbeddingProvider == ProviderOpenAI && c.OpenAIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required for the openai embedding provider")
	}
	if c.EmbeddingDimensions <= 0 {
		return fmt.Errorf("SCENEDEX_EMBEDDING_DIMENSIONS must be positive, got %d", c.EmbeddingDimensions)
	}
	if c.BatchSize < 1 || c.BatchSize > 100 {
		return fmt.Errorf("SCENEDEX_EMBEDDING_BATCH_SIZE must be 1-100, got %d", c.BatchSize)
	}
	if c.MaxConcurrentBatches < 1 {
		return fmt.Errorf("SCENEDEX_EMBEDDING_CONCURRENCY must be >= 1, got %d", c.MaxConcurrentBatches)
	}
	if c.MaxRetries < 1 || c.MaxRetries > 10 {
		return fmt.Errorf("SCENEDEX_EMBEDDING_MAX_RETRIES must be 1-10, got %d", c.MaxRetries)
	}
	if c.Workers < 0 {
		return fmt.Errorf("SCENEDEX_INDEX_WORKERS must be >= 0, got %d", c.Workers)
	}
	if c.MaxGraphDepth < 1 {
		return fmt.Errorf("SCENEDEX_GRAPH_DEPTH must be >= 1, got %d", c.MaxGraphDepth)
	}
	return nil
}

func defaultDBPath() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return home + "/.scenedex/index.db"
	}
	return ".scenedex/index.db"
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
