package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Backend BackendConfig
	Store   StoreConfig
}

type AppConfig struct {
	Environment string
	LogFilePath string
	Language    string // ui language, "en" or "id"
	Mode        string // "demo" or "live"
}

type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

type StoreConfig struct {
	Driver      string // "memory" or "redis"
	RedisURL    string
	SnapshotTTL time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Environment: getEnv("GO_ENV", "development"),
			LogFilePath: getEnv("LOG_FILE_PATH", "client.log"),
			Language:    getEnv("UI_LANGUAGE", "en"),
			Mode:        getEnv("FLOW_MODE", "demo"),
		},
		Backend: BackendConfig{
			BaseURL: getEnv("BACKEND_BASE_URL", "http://localhost:8080/api/concierge"),
			Timeout: getEnvAsDuration("BACKEND_TIMEOUT", 30*time.Second),
		},
		Store: StoreConfig{
			Driver:      getEnv("SNAPSHOT_DRIVER", "memory"),
			RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),
			SnapshotTTL: getEnvAsDuration("SNAPSHOT_TTL", 24*time.Hour),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
