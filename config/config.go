package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pion/logging"
)

type Config struct {
	Port           string
	Environment    string
	AllowedOrigins []string
	AdminJWTSecret string
	CleanupDelay   time.Duration
	LogLevel       logging.LogLevel
	Redis          RedisConfig
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a Redis host was configured.
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

func Load() *Config {
	// Parse allowed origins (comma-separated)
	originsStr := getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001")
	var origins []string
	for _, origin := range strings.Split(originsStr, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}

	return &Config{
		Port:           getEnv("PORT", "8081"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		AllowedOrigins: origins,
		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
		CleanupDelay:   getDuration("CLEANUP_DELAY", 2*time.Second),
		LogLevel:       parseLogLevel(getEnv("LOG_LEVEL", "info")),
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
		},
	}
}

// LoggerFactory builds the component logger factory at the configured level.
func (c *Config) LoggerFactory() logging.LoggerFactory {
	factory := logging.NewDefaultLoggerFactory()
	factory.DefaultLogLevel = c.LogLevel
	return factory
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func parseLogLevel(level string) logging.LogLevel {
	switch strings.ToLower(level) {
	case "error":
		return logging.LogLevelError
	case "warn", "warning":
		return logging.LogLevelWarn
	case "debug":
		return logging.LogLevelDebug
	case "trace":
		return logging.LogLevelTrace
	case "disabled", "off":
		return logging.LogLevelDisabled
	default:
		return logging.LogLevelInfo
	}
}
