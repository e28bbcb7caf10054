// Package config reads server settings from the environment.
package config

import (
	"os"
	"strconv"

	"github.com/extratolab/extrato/internal/pipeline"
)

// Config holds the API server settings. Every field has a working default so
// the binary runs with nothing but GEMINI_API_KEY set.
type Config struct {
	Port      string
	Bucket    string
	Model     string
	QueueSize int
	Workers   int
}

// Load reads the configuration from the environment.
func Load() Config {
	return Config{
		Port:      getEnv("PORT", "8080"),
		Bucket:    os.Getenv("GCS_BUCKET"),
		Model:     getEnv("GEMINI_MODEL", pipeline.DefaultModel),
		QueueSize: getEnvInt("JOB_QUEUE_SIZE", 100),
		Workers:   getEnvInt("JOB_WORKERS", 2),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
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
