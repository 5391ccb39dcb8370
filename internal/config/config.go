package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string // Empty keeps snapshots in memory only
	RedisURL    string // Empty fans changes out in-process only
	JWKSURL     string // Empty disables peer authentication
	CORSOrigins string
	TablePrefix string
	LogDir      string // Empty logs to stdout only
	// Document limits
	MaxGroupDepth         int
	MaxObjectsPerDocument int
	HistoryLimit          int
	// Debug flags
	Debug bool // Re-validates every flattened sequence
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:                  getEnv("PORT", "8080"),
		Environment:           env,
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		RedisURL:              getEnv("REDIS_URL", ""),
		JWKSURL:               getEnv("JWKS_URL", ""),
		CORSOrigins:           getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:           getTablePrefix(env),
		LogDir:                getEnv("LOG_DIR", ""),
		MaxGroupDepth:         getEnvInt("MAX_GROUP_DEPTH", DefaultMaxGroupDepth),
		MaxObjectsPerDocument: getEnvInt("MAX_OBJECTS_PER_DOCUMENT", DefaultMaxObjectsPerDocument),
		HistoryLimit:          getEnvInt("HISTORY_LIMIT", DefaultHistoryLimit),
		Debug:                 getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// TABLE_PREFIX wins over the environment default
	if prefix, ok := os.LookupEnv("TABLE_PREFIX"); ok {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
