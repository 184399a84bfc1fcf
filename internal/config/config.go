package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Storage: DataDir is used by the JSON document store; when DatabaseURL
	// is set the Postgres store is used instead.
	DataDir     string
	DatabaseURL string

	// Redis (optional, statistics cache)
	RedisURL      string
	StatsCacheTTL time.Duration

	// CORS
	AllowedOrigins []string

	// Logging
	LogLevel string
}

func Load() *Config {
	// Load .env file in development
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Storage
		DataDir:     getEnv("DATA_DIR", "./data"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		// Redis
		RedisURL:      getEnv("REDIS_URL", ""),
		StatsCacheTTL: parseDuration(getEnv("STATS_CACHE_TTL", "30s"), 30*time.Second),

		// CORS. The browser extension ships reports from arbitrary pages,
		// so the default is wide open.
		AllowedOrigins: parseStringSlice(getEnv("ALLOWED_ORIGINS", "*")),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "debug"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func parseDuration(s string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultValue
	}
	return d
}

func parseStringSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
