// Package config loads picmeta settings from environment variables.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"
)

// Config holds the settings shared by all commands.
type Config struct {
	// Path of the bolt database holding the indexes
	DBPath string

	// Number of files resolved concurrently by "index add"
	Workers int

	// Upper bound on the time spent resolving a single file
	FileTimeout time.Duration

	// hclog level name
	LogLevel string

	// Prometheus textfile written after a scan, empty to disable
	MetricsFile string
}

// Load reads the configuration from the environment.
func Load() *Config {
	return &Config{
		DBPath:      getEnv("PICMETA_DB", "picmeta.db"),
		Workers:     getIntEnv("PICMETA_WORKERS", runtime.NumCPU()),
		FileTimeout: time.Duration(getIntEnv("PICMETA_FILE_TIMEOUT_SEC", 30)) * time.Second,
		LogLevel:    getEnv("PICMETA_LOG_LEVEL", "INFO"),
		MetricsFile: getEnv("PICMETA_METRICS_FILE", ""),
	}
}

// Validate rejects settings the scanner cannot run with.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("database path must not be empty")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.FileTimeout <= 0 {
		return fmt.Errorf("file timeout must be positive, got %s", c.FileTimeout)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
