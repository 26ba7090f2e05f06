package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Similarity   SimilarityConfig
	Jobs         JobsConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// SimilarityConfig tunes the duplicate detection engine.
type SimilarityConfig struct {
	CosineWeight       float64
	JaccardWeight      float64
	LevenshteinWeight  float64
	DuplicateThreshold float64
	ClusterThreshold   float64
	CandidateLimit     int
	TuningFile         string
}

// JobsConfig controls the background job scheduler.
type JobsConfig struct {
	SLAMonitorInterval      time.Duration
	MetricAggregateInterval time.Duration
	QueryTimeout            time.Duration
	SnapshotRetention       time.Duration
	EstimateCacheTTL        time.Duration
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "helpdesk-intel"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Similarity: SimilarityConfig{
			CosineWeight:       getEnvAsFloat("SIMILARITY_COSINE_WEIGHT", 0.5),
			JaccardWeight:      getEnvAsFloat("SIMILARITY_JACCARD_WEIGHT", 0.3),
			LevenshteinWeight:  getEnvAsFloat("SIMILARITY_LEVENSHTEIN_WEIGHT", 0.2),
			DuplicateThreshold: getEnvAsFloat("SIMILARITY_DUPLICATE_THRESHOLD", 0.75),
			ClusterThreshold:   getEnvAsFloat("SIMILARITY_CLUSTER_THRESHOLD", 0.70),
			CandidateLimit:     getEnvAsInt("SIMILARITY_CANDIDATE_LIMIT", 10),
			TuningFile:         getEnv("SIMILARITY_TUNING_FILE", ""),
		},
		Jobs: JobsConfig{
			SLAMonitorInterval:      getEnvAsDuration("JOB_SLA_MONITOR_INTERVAL", time.Hour),
			MetricAggregateInterval: getEnvAsDuration("JOB_METRIC_AGGREGATE_INTERVAL", 24*time.Hour),
			QueryTimeout:            getEnvAsDuration("JOB_QUERY_TIMEOUT", 30*time.Second),
			SnapshotRetention:       getEnvAsDuration("METRIC_SNAPSHOT_RETENTION", 365*24*time.Hour),
			EstimateCacheTTL:        getEnvAsDuration("ESTIMATE_CACHE_TTL", 10*time.Minute),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return parsed
}
