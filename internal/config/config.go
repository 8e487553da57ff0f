package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// Config holds application configuration values.
type Config struct {
	HTTPPort        string
	StorageBackend  string
	DatabaseDSN     string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	KeyPrefix       string
	SeedDonorsCSV   string
	InitialUnits    *int64
	ShutdownTimeout time.Duration
	LogLevel        string
	LogFormat       string
}

// Load reads configuration from environment variables with reasonable defaults.
func Load() Config {
	port := getEnv("HTTP_PORT", "8080")
	if _, err := strconv.Atoi(port); err != nil {
		log.Printf("invalid HTTP_PORT value %q, defaulting to 8080", port)
		port = "8080"
	}

	backend := getEnv("STORAGE_BACKEND", BackendSQLite)
	switch backend {
	case BackendSQLite, BackendPostgres, BackendRedis, BackendMemory:
	default:
		log.Printf("unknown STORAGE_BACKEND %q, defaulting to %s", backend, BackendSQLite)
		backend = BackendSQLite
	}

	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" && backend == BackendSQLite {
		dsn = "bloodflow.db"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			log.Printf("invalid REDIS_DB value %q, defaulting to 0", v)
		} else {
			redisDB = n
		}
	}

	var initialUnits *int64
	if v := os.Getenv("INITIAL_INVENTORY_UNITS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			log.Printf("invalid INITIAL_INVENTORY_UNITS value %q, using random starting stock", v)
		} else {
			initialUnits = &n
		}
	}

	timeout := 5 * time.Second
	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			log.Printf("invalid SHUTDOWN_TIMEOUT value %q, defaulting to %s", v, timeout)
		} else {
			timeout = d
		}
	}

	return Config{
		HTTPPort:        port,
		StorageBackend:  backend,
		DatabaseDSN:     dsn,
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         redisDB,
		KeyPrefix:       os.Getenv("STORAGE_KEY_PREFIX"),
		SeedDonorsCSV:   os.Getenv("SEED_DONORS_CSV"),
		InitialUnits:    initialUnits,
		ShutdownTimeout: timeout,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
