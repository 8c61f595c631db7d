package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port        string
	MetricsPort string
	Environment string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Auth
	JWTSecret string

	// Payment gateway
	GatewayBaseURL     string
	GatewayAPIKey      string
	PaymentTimeout     time.Duration
	GatewayMaxFailures int
	GatewayCooldown    time.Duration
	ChargeKeyTTL       time.Duration

	// Reservation holds
	ReservationHoldTimeout time.Duration
	CleanupInterval        time.Duration

	// Cache
	ListingCacheTTL time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		MetricsPort: getEnv("METRICS_PORT", "9090"),
		Environment: getEnv("ENVIRONMENT", "development"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "ticketsales"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		JWTSecret: getEnv("JWT_SECRET", ""),

		GatewayBaseURL:     getEnv("PAYMENT_GATEWAY_URL", "http://localhost:9000"),
		GatewayAPIKey:      getEnv("PAYMENT_GATEWAY_API_KEY", ""),
		PaymentTimeout:     getEnvAsDuration("PAYMENT_TIMEOUT", "30s"),
		GatewayMaxFailures: getEnvAsInt("PAYMENT_GATEWAY_MAX_FAILURES", 5),
		GatewayCooldown:    getEnvAsDuration("PAYMENT_GATEWAY_COOLDOWN", "30s"),
		ChargeKeyTTL:       getEnvAsDuration("CHARGE_KEY_TTL", "24h"),

		ReservationHoldTimeout: getEnvAsDuration("RESERVATION_HOLD_TIMEOUT", "15m"),
		CleanupInterval:        getEnvAsDuration("CLEANUP_INTERVAL", "1m"),

		ListingCacheTTL: getEnvAsDuration("LISTING_CACHE_TTL", "30s"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	if duration, err := time.ParseDuration(getEnv(key, defaultValue)); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
