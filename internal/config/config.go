package config

import (
	"os"
	"time"
)

type Config struct {
	HTTPPort        string
	PublicBaseURL   string
	StoreBackend    string // memory | redis | mongo
	RedisAddr       string
	RedisPassword   string
	MongoURI        string
	MongoDatabase   string
	StripeAPIKey    string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	EnableTracing   bool
	OTLPEndpoint    string
}

func Load() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		PublicBaseURL:   getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		StoreBackend:    getEnv("CART_STORE", "redis"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGO_DB_NAME", "storefront"),
		StripeAPIKey:    getEnv("STRIPE_API_KEY", ""),
		RequestTimeout:  getDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		EnableTracing:   os.Getenv("ENABLE_TRACING") == "1",
		OTLPEndpoint:    getEnv("OTLP_ENDPOINT", "localhost:4317"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
