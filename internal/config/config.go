// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the service reads from the environment.
type Config struct {
	// Port is the HTTP listen port.
	Port string

	// MongoURI points at the search index cluster.
	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	// MatchTimeout bounds each catalog lookup during reconciliation.
	MatchTimeout time.Duration

	// JobWorkers is the number of concurrent reconcile job consumers.
	JobWorkers int

	// JobQueueSize is the reconcile queue buffer size.
	JobQueueSize int
}

// Load reads configuration from the environment. A missing .env file is not
// an error; explicit environment variables always win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:            getEnv("PORT", "8080"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGO_DB", "smart_warehouse_search"),
		MongoCollection: getEnv("MONGO_COLLECTION", "products"),
		MatchTimeout:    getDurationEnv("MATCH_TIMEOUT", 3*time.Second),
		JobWorkers:      getIntEnv("JOB_WORKERS", 4),
		JobQueueSize:    getIntEnv("JOB_QUEUE_SIZE", 64),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getIntEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
