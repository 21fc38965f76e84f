// Package config loads the dispatcher's startup configuration from CLI flags
// with environment-variable fallbacks, following the project's getEnv* helper
// convention.
package config

import (
	"os"
	"strconv"
)

// Config holds every setting the CLI surface in spec.md §6 exposes.
type Config struct {
	Port     int
	Host     string
	S3       bool
	DynamoDB bool
	Lambda   bool
	DataDir  string
	LogLevel string
}

// Defaults returns a Config seeded from environment variables under the
// RUSTSTACK_ prefix, falling back to the documented defaults. Flag parsing
// (cmd/stackbox) overrides whatever this returns.
func Defaults() Config {
	return Config{
		Port:     getEnvInt("RUSTSTACK_PORT", 4566),
		Host:     getEnv("RUSTSTACK_HOST", "0.0.0.0"),
		S3:       getEnvBool("RUSTSTACK_S3", true),
		DynamoDB: getEnvBool("RUSTSTACK_DYNAMODB", true),
		Lambda:   getEnvBool("RUSTSTACK_LAMBDA", true),
		DataDir:  getEnv("RUSTSTACK_DATA_DIR", ""),
		LogLevel: getEnv("RUSTSTACK_LOG_LEVEL", "info"),
	}
}

// Environment reports "production" when requested via RUSTSTACK_ENVIRONMENT,
// defaulting to "development". Kept separate from the upstream CLI surface
// (which has no such flag) because the ambient logging stack needs a prod/dev
// switch.
func Environment() string {
	return getEnv("RUSTSTACK_ENVIRONMENT", "development")
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	return v == "true" || v == "1" || v == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}
