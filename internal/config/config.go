// Package config manages application configuration via environment variables.
//
// # Environment Variables
//
// ## Server
//   - SERVER_PORT: HTTP listen port (default: 8080)
//
// ## Typesense
//   - TYPESENSE_HOST: Typesense server host (default: localhost)
//   - TYPESENSE_PORT: Typesense server port (default: 8108)
//   - TYPESENSE_API_KEY: Typesense API key (empty disables remote search)
//   - TYPESENSE_PROTOCOL: http or https (default: http)
//   - TYPESENSE_COLLECTION: collection holding the model records (default: enso_models)
//
// ## Store
//   - STORE_PATH: SQLite database path (default: enso.db)
//   - SAMPLE_DATA_PATH: bundled dataset used when the store is empty (default: data/sample_models.json)
//
// ## Feed
//   - FEED_REPEAT_COUNT: dataset repeat-expansion factor (default: 1)
//   - FEED_PREFETCH_BATCH_SIZE: items scanned per prefetch batch (default: 50)
//   - FEED_READY_BATCH_THRESHOLD: ready-queue level that triggers auto release (default: 24)
//   - FEED_DISPLAY_BATCH_SIZE: items revealed per release (default: 24)
//   - FEED_MAX_READY_QUEUE: ready-queue capacity (default: 3x display batch)
//   - FEED_AUTO_RELEASE_LIMIT: consecutive auto releases without scrolling (default: 3)
//   - FEED_RELEASE_DELAY_MS: cooldown between releases (default: 1200)
//   - FEED_IDLE_PREFETCH_DELAY_MS: scroll quiet period before idle work (default: 1000)
//   - FEED_DETAIL_INITIAL_COUNT: recommendations shown when a detail view opens (default: 70)
//   - FEED_DETAIL_PAGE_SIZE: recommendations added per detail sentinel hit (default: 60)
//   - FEED_SESSION_TTL_MINUTES: idle minutes before a session is evicted (default: 30)
//   - FEED_IMAGE_PROBE_TIMEOUT_MS: per-image prefetch timeout (default: 8000)
//
// ## Search
//   - SEARCH_CACHE_TTL_MINUTES: search response cache TTL (default: 2)
//   - SEARCH_CACHE_MAX_SIZE: search response cache capacity (default: 500)
//   - SEARCH_DEFAULT_LIMIT: default result limit (default: 200)
//
// ## Tracing
//   - TRACING_ENABLED: enable OTLP tracing (default: false)
//   - TRACING_ENDPOINT: OTLP gRPC endpoint (default: localhost:4317)
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string

	TypesenseHost       string
	TypesensePort       string
	TypesenseAPIKey     string
	TypesenseProtocol   string
	TypesenseCollection string

	StorePath      string
	SampleDataPath string

	Feed   FeedConfig
	Search SearchConfig

	TracingEnabled  bool
	TracingEndpoint string
}

// FeedConfig contains the tuning knobs of the feed-loading pipeline.
type FeedConfig struct {
	RepeatCount         int
	PrefetchBatchSize   int
	ReadyBatchThreshold int
	DisplayBatchSize    int
	MaxReadyQueue       int
	AutoReleaseLimit    int
	ReleaseDelay        time.Duration
	IdlePrefetchDelay   time.Duration
	DetailInitialCount  int
	DetailPageSize      int
	SessionTTL          time.Duration
	ImageProbeTimeout   time.Duration
}

// SearchConfig contains search-specific configuration.
type SearchConfig struct {
	CacheTTL     time.Duration
	CacheMaxSize int
	DefaultLimit int
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	displayBatch := getEnvInt("FEED_DISPLAY_BATCH_SIZE", 24)

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),

		TypesenseHost:       getEnv("TYPESENSE_HOST", "localhost"),
		TypesensePort:       getEnv("TYPESENSE_PORT", "8108"),
		TypesenseAPIKey:     getEnv("TYPESENSE_API_KEY", ""),
		TypesenseProtocol:   getEnv("TYPESENSE_PROTOCOL", "http"),
		TypesenseCollection: getEnv("TYPESENSE_COLLECTION", "enso_models"),

		StorePath:      getEnv("STORE_PATH", "enso.db"),
		SampleDataPath: getEnv("SAMPLE_DATA_PATH", "data/sample_models.json"),

		Feed: FeedConfig{
			RepeatCount:         getEnvInt("FEED_REPEAT_COUNT", 1),
			PrefetchBatchSize:   getEnvInt("FEED_PREFETCH_BATCH_SIZE", 50),
			ReadyBatchThreshold: getEnvInt("FEED_READY_BATCH_THRESHOLD", 24),
			DisplayBatchSize:    displayBatch,
			MaxReadyQueue:       getEnvInt("FEED_MAX_READY_QUEUE", displayBatch*3),
			AutoReleaseLimit:    getEnvInt("FEED_AUTO_RELEASE_LIMIT", 3),
			ReleaseDelay:        getEnvMillis("FEED_RELEASE_DELAY_MS", 1200),
			IdlePrefetchDelay:   getEnvMillis("FEED_IDLE_PREFETCH_DELAY_MS", 1000),
			DetailInitialCount:  getEnvInt("FEED_DETAIL_INITIAL_COUNT", 70),
			DetailPageSize:      getEnvInt("FEED_DETAIL_PAGE_SIZE", 60),
			SessionTTL:          time.Duration(getEnvInt("FEED_SESSION_TTL_MINUTES", 30)) * time.Minute,
			ImageProbeTimeout:   getEnvMillis("FEED_IMAGE_PROBE_TIMEOUT_MS", 8000),
		},

		Search: SearchConfig{
			CacheTTL:     time.Duration(getEnvInt("SEARCH_CACHE_TTL_MINUTES", 2)) * time.Minute,
			CacheMaxSize: getEnvInt("SEARCH_CACHE_MAX_SIZE", 500),
			DefaultLimit: getEnvInt("SEARCH_DEFAULT_LIMIT", 200),
		},

		TracingEnabled:  getEnv("TRACING_ENABLED", "false") == "true",
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4317"),
	}
}

// RemoteSearchConfigured reports whether a Typesense endpoint is usable.
func (c *Config) RemoteSearchConfigured() bool {
	return c.TypesenseAPIKey != "" && c.TypesenseHost != ""
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvMillis(key string, defaultValue int) time.Duration {
	return time.Duration(getEnvInt(key, defaultValue)) * time.Millisecond
}
