package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port          string
	PostgresDSN   string
	MongoURI      string
	MongoDB       string
	RedisAddr     string
	RedisPassword string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	EngineBaseURL     string
	EngineModel       string
	EngineTemperature float32
	EngineMaxTokens   int
	EngineTimeout     time.Duration

	TavilyAPIKey  string
	SearchTimeout time.Duration
}

func Load() *Config {
	return &Config{
		Port:          getenv("PORT", "8080"),
		PostgresDSN:   getenv("POSTGRES_DSN", ""),
		MongoURI:      getenv("MONGO_URI", ""),
		MongoDB:       getenv("MONGO_DB", "research_hub"),
		RedisAddr:     getenv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),

		MinioEndpoint:  getenv("MINIO_ENDPOINT", "minio:9000"),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getenv("MINIO_BUCKET", "research-reports"),
		MinioUseSSL:    getenv("MINIO_USE_SSL", "false") == "true",

		EngineBaseURL:     getenv("ENGINE_BASE_URL", "http://127.0.0.1:1234/v1"),
		EngineModel:       getenv("ENGINE_MODEL", "google/gemma-3-1b"),
		EngineTemperature: 0.7,
		EngineMaxTokens:   getenvInt("ENGINE_MAX_TOKENS", 2000),
		EngineTimeout:     time.Duration(getenvInt("ENGINE_TIMEOUT_SECONDS", 180)) * time.Second,

		TavilyAPIKey:  getenv("TAVILY_API_KEY", ""),
		SearchTimeout: time.Duration(getenvInt("SEARCH_TIMEOUT_SECONDS", 30)) * time.Second,
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
