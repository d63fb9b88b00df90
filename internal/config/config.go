// Package config загружает конфигурацию сервиса из переменных окружения
package config

import (
	"os"
	"strconv"
	"time"
)

// Config содержит конфигурацию сервиса
type Config struct {
	ServerAddr       string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	DatasetFile      string
	ThresholdsFile   string
	OpenAIAPIKey     string
	OpenAIModel      string
	OpenAIBaseURL    string
	AssistantTimeout time.Duration
	LiveHistorySize  int
	LogLevel         string
	LogFormat        string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	ShutdownTimeout  time.Duration
}

// FromEnv загружает конфигурацию из переменных окружения
func FromEnv() Config {
	return Config{
		ServerAddr:       getEnv("SERVER_ADDR", ":8080"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		DatasetFile:      getEnv("DATASET_FILE", ""),
		ThresholdsFile:   getEnv("THRESHOLDS_FILE", ""),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:      getEnv("OPENAI_MODEL", ""),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", ""),
		AssistantTimeout: getEnvDuration("ASSISTANT_TIMEOUT", 20*time.Second),
		LiveHistorySize:  getEnvInt("LIVE_HISTORY_SIZE", 500),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		ReadTimeout:      15 * time.Second,
		WriteTimeout:     30 * time.Second,
		IdleTimeout:      60 * time.Second,
		ShutdownTimeout:  getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

// getEnv получает переменную окружения с значением по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает целочисленную переменную окружения
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvDuration получает длительность вида 30s, 2m
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
