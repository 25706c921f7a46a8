package config

import (
	"os"
	"strconv"
	"time"

	"kinobilet/internal/cache"
	"kinobilet/internal/external"
	"kinobilet/internal/messaging"

	"github.com/joho/godotenv"
)

// Config содержит конфигурацию приложения
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	// Screens
	EnrichConcurrency   int
	ScreenIdleTimeout   time.Duration
	ScreenSweepInterval time.Duration

	CinemaAPI external.CinemaConfig
	Cache     cache.Config
	NATS      messaging.Config
}

// Load загружает конфигурацию из переменных окружения (и .env, если он есть)
func Load() *Config {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	return &Config{
		Port:           getEnv("PORT", "8081"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,

		EnrichConcurrency:   getEnvInt("ENRICH_CONCURRENCY", 8),
		ScreenIdleTimeout:   time.Duration(getEnvInt("SCREEN_IDLE_TIMEOUT_MIN", 30)) * time.Minute,
		ScreenSweepInterval: time.Duration(getEnvInt("SCREEN_SWEEP_INTERVAL_SEC", 30)) * time.Second,

		CinemaAPI: external.CinemaConfig{
			BaseURL: getEnv("CINEMA_API_URL", "http://localhost:3022"),
			Timeout: time.Duration(getEnvInt("CINEMA_API_TIMEOUT_SEC", 10)) * time.Second,
		},

		Cache: cache.Config{
			Enabled:  getEnvBool("CACHE_ENABLED", false),
			Addr:     getEnv("VALKEY_ADDR", "localhost:6379"),
			Password: getEnv("VALKEY_PASSWORD", ""),
			DB:       getEnvInt("VALKEY_DB", 0),
			TTL:      time.Duration(getEnvInt("CATALOG_CACHE_TTL_SEC", 60)) * time.Second,
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", ""),
			ClusterID: getEnv("NATS_CLUSTER_ID", "kinobilet"),
			ClientID:  getEnv("NATS_CLIENT_ID", "kinobilet-api"),
		},
	}
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает целочисленное значение переменной окружения
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
