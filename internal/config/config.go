package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type RFPServiceConfig struct {
	Port          string
	PostgresCfg   PostgresConfig
	RedisCfg      RedisConfig
	MinioCfg      MinioConfig
	RabbitMQCfg   RabbitMQConfig
	GeminiAPICfg  GeminiAPIConfig
	VertexAICfg   VertexAIConfig
	EvaluationCfg EvaluationConfig
}

type PostgresConfig struct {
	DBname   string
	Username string
	Password string
	Host     string
	Port     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type MinioConfig struct {
	MinioURL       string
	MinioAccessKey string
	MinioSecretKey string
	MinioLocation  string
	MinioSecure    string
}

type RabbitMQConfig struct {
	Username string
	Password string
	Host     string
	Port     string
}

type GeminiAPIConfig struct {
	// APIKeys holds one or more keys, tried round-robin on failure.
	APIKeys   []string
	ModelName string
}

type VertexAIConfig struct {
	Project   string
	Location  string
	ModelName string
}

type EvaluationConfig struct {
	// Provider selects the narrative backend: "gemini" or "vertex".
	Provider string
	Timeout  time.Duration
	Locale   string
}

func New() *RFPServiceConfig {
	return &RFPServiceConfig{
		Port: getEnvOrDefault("PORT", "8086"),
		PostgresCfg: PostgresConfig{
			DBname:   getEnvOrDefault("POSTGRES_DB", "rfp_service"),
			Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
			Password: getEnvOrDefault("POSTGRES_PASSWORD", "postgres"),
			Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
		},
		RedisCfg: RedisConfig{
			Host:     getEnvOrDefault("REDIS_HOST", "localhost"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       0,
		},
		MinioCfg: MinioConfig{
			MinioURL:       getEnvOrDefault("MINIO_ENDPOINT", "http://localhost:9407"),
			MinioAccessKey: getEnvOrDefault("MINIO_ACCESS_KEY", "minio"),
			MinioSecretKey: getEnvOrDefault("MINIO_SECRET_KEY", "minio123"),
			MinioLocation:  getEnvOrDefault("MINIO_LOCATION", "us-east-1"),
			MinioSecure:    getEnvOrDefault("MINIO_SECURE", "false"),
		},
		RabbitMQCfg: RabbitMQConfig{
			Username: getEnvOrDefault("RABBITMQ_USER", "admin"),
			Password: getEnvOrDefault("RABBITMQ_PWD", "admin"),
			Host:     getEnvOrDefault("RABBITMQ_HOST", "localhost"),
			Port:     getEnvOrDefault("RABBITMQ_PORT", "5672"),
		},
		GeminiAPICfg: GeminiAPIConfig{
			APIKeys:   splitNonEmpty(getEnvOrDefault("GEMINI_KEYS", "")),
			ModelName: getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-pro"),
		},
		VertexAICfg: VertexAIConfig{
			Project:   getEnvOrDefault("VERTEX_PROJECT", ""),
			Location:  getEnvOrDefault("VERTEX_LOCATION", "us-central1"),
			ModelName: getEnvOrDefault("VERTEX_MODEL", "gemini-2.5-pro"),
		},
		EvaluationCfg: EvaluationConfig{
			Provider: getEnvOrDefault("AI_PROVIDER", "gemini"),
			Timeout:  time.Duration(getEnvIntOrDefault("EVALUATION_TIMEOUT_SECONDS", 120)) * time.Second,
			Locale:   getEnvOrDefault("EVALUATION_LOCALE", "en"),
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func splitNonEmpty(csv string) []string {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
