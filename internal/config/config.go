package config

import (
	"os"
	"strconv"
	"time"

	"tixbay/internal/cache"
	"tixbay/internal/database"
	"tixbay/internal/external"
	"tixbay/internal/messaging"
)

// Config holds the full application configuration, loaded from
// environment variables.
type Config struct {
	Port      string
	GinMode   string
	LogLevel  string
	LogFormat string

	// ClientURL is the storefront origin used for checkout redirect
	// targets and CORS.
	ClientURL string

	// BookingTTL is how long a pending booking may hold inventory
	// before the expiration job returns it to the pool.
	BookingTTL       time.Duration
	ExpiryCheckEvery time.Duration
	AdvertisedLimit  int

	Database      database.Config
	NATS          messaging.Config
	Valkey        cache.Config
	Elasticsearch ElasticsearchConfig
	Checkout      external.CheckoutConfig
	Identity      external.IdentityConfig
}

// Load reads configuration from environment variables with defaults
// suitable for local development.
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8080"),
		GinMode:   getEnv("GIN_MODE", "debug"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		ClientURL: getEnv("CLIENT_URL", "http://localhost:5173"),

		BookingTTL:       time.Duration(getEnvInt("BOOKING_TTL_MIN", 30)) * time.Minute,
		ExpiryCheckEvery: time.Duration(getEnvInt("EXPIRY_CHECK_SEC", 60)) * time.Second,
		AdvertisedLimit:  getEnvInt("ADVERTISED_LIMIT", 10),

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "tixbay"),
			Password:           getEnv("DB_PASSWORD", "tixbay123"),
			DBName:             getEnv("DB_NAME", "tixbay"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "tixbay"),
			ClientID:  getEnv("NATS_CLIENT_ID", "tixbay-api"),
		},

		Valkey: cache.Config{
			Addr:     getEnv("VALKEY_ADDR", "localhost:6379"),
			Password: os.Getenv("VALKEY_PASSWORD"),
			DB:       getEnvInt("VALKEY_DB", 0),
			TokenTTL: time.Duration(getEnvInt("VALKEY_TOKEN_TTL_SEC", 300)) * time.Second,
			ListTTL:  time.Duration(getEnvInt("VALKEY_LIST_TTL_SEC", 30)) * time.Second,
		},

		Elasticsearch: LoadElasticsearchConfig(),

		Checkout: external.CheckoutConfig{
			BaseURL:    getEnv("CHECKOUT_GATEWAY_URL", "https://checkout.example.com"),
			MerchantID: getEnv("CHECKOUT_MERCHANT_ID", ""),
			Secret:     getEnv("CHECKOUT_SECRET", ""),
			Timeout:    time.Duration(getEnvInt("CHECKOUT_TIMEOUT_SEC", 30)) * time.Second,
		},

		Identity: external.IdentityConfig{
			BaseURL: getEnv("IDENTITY_PROVIDER_URL", "https://identity.example.com"),
			Timeout: time.Duration(getEnvInt("IDENTITY_TIMEOUT_SEC", 10)) * time.Second,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
