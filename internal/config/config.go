package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverDynamoDB = "dynamodb"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds application configuration from environment.
// It is built once at startup and passed to constructors; nothing mutates it afterwards.
type Config struct {
	HTTPPort string
	LogLevel string

	StoreDriver string

	AWSRegion           string
	AWSEndpoint         string
	TodosTable          string
	TodosCreatedAtIndex string
	AttachmentBucket    string
	SignedURLExpiration time.Duration

	DatabaseURL string
	DBPoolSize  int

	RedisURL      string
	RedisPoolSize int
	CacheTTL      time.Duration

	KafkaBrokers    []string
	KafkaTopic      string
	KafkaPartitions int

	JWTSecret        string
	CORSAllowOrigins []string
}

// Load reads the configuration from the process environment.
func Load() *Config {
	return &Config{
		HTTPPort:            getEnv("HTTP_PORT", "8080"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		StoreDriver:         strings.ToLower(getEnv("STORE_DRIVER", DriverDynamoDB)),
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSEndpoint:         os.Getenv("AWS_ENDPOINT"),
		TodosTable:          getEnv("TODOS_TABLE", "Todos"),
		TodosCreatedAtIndex: os.Getenv("TODOS_CREATED_AT_INDEX"),
		AttachmentBucket:    os.Getenv("ATTACHMENT_S3_BUCKET"),
		SignedURLExpiration: time.Duration(getIntEnv("SIGNED_URL_EXPIRATION", 300)) * time.Second,
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		DBPoolSize:          getIntEnv("DB_POOL_SIZE", 20),
		RedisURL:            os.Getenv("REDIS_URL"),
		RedisPoolSize:       getIntEnv("REDIS_POOL_SIZE", 50),
		CacheTTL:            time.Duration(getIntEnv("CACHE_TTL_SEC", 60)) * time.Second,
		KafkaBrokers:        getSliceEnv("KAFKA_BROKERS"),
		KafkaTopic:          getEnv("KAFKA_TODO_TOPIC", "todo-events"),
		KafkaPartitions:     getIntEnv("KAFKA_PARTITIONS", 8),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		CORSAllowOrigins:    getSliceEnvDefault("CORS_ALLOW_ORIGINS", "*"),
	}
}

// Validate reports settings that would make the server unusable.
func (c *Config) Validate() error {
	var errs []error
	switch c.StoreDriver {
	case DriverDynamoDB:
		if c.TodosTable == "" {
			errs = append(errs, errors.New("TODOS_TABLE is required for the dynamodb driver"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.SignedURLExpiration <= 0 {
		errs = append(errs, errors.New("SIGNED_URL_EXPIRATION must be positive"))
	}
	return errors.Join(errs...)
}

// CacheEnabled reports whether a Redis list cache is configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisURL != ""
}

// EventsEnabled reports whether todo events are published to Kafka.
func (c *Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getSliceEnv(key string) []string {
	var out []string
	for _, s := range strings.Split(os.Getenv(key), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func getSliceEnvDefault(key, defaultVal string) []string {
	if out := getSliceEnv(key); len(out) > 0 {
		return out
	}
	return []string{defaultVal}
}
