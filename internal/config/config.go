// Package config loads runtime configuration from environment variables.
// Each service calls Load with its default port; every value has a default
// so the services come up with no environment at all, matching how they run
// in local compose setups.
package config

import (
	"os"
	"strconv"
	"time"
)

// Default ports, one per service.
const (
	DefaultGatewayPort = "3000"
	DefaultAuthPort    = "3001"
	DefaultProductPort = "3002"
	DefaultOrderPort   = "3003"
)

// Config holds all runtime configuration values. Fields irrelevant to a
// given service are simply unused by it.
type Config struct {
	Env               string        // application environment (development/production)
	Port              string        // HTTP port to listen on
	JWTSecret         string        // secret used to sign and verify JWTs
	TokenTTLHours     int           // access token time-to-live in hours
	BcryptCost        int           // bcrypt cost for password hashing
	StoreBackend      string        // "memory" or "redis"
	AuthServiceURL    string        // base URL of the auth service
	ProductServiceURL string        // base URL of the product service
	OrderServiceURL   string        // base URL of the order service
	ProductTimeout    time.Duration // bound on each outbound product service call
	RabbitURL         string        // AMQP broker URL; empty disables event publishing
}

// Load reads configuration from the environment, falling back to defaults.
func Load(defaultPort string) Config {
	rabbit := os.Getenv("RABBITMQ_URL")
	if rabbit == "" {
		rabbit = os.Getenv("AMQP_URL")
	}
	return Config{
		Env:               getenv("APP_ENV", "development"),
		Port:              getenv("PORT", defaultPort),
		JWTSecret:         getenv("JWT_SECRET", "your-secret-key-change-in-production"),
		TokenTTLHours:     envInt("TOKEN_EXPIRATION_HOURS", 24),
		BcryptCost:        envInt("BCRYPT_COST", 10),
		StoreBackend:      getenv("STORE_BACKEND", "memory"),
		AuthServiceURL:    getenv("AUTH_SERVICE_URL", "http://auth-service:3001"),
		ProductServiceURL: getenv("PRODUCT_SERVICE_URL", "http://product-service:3002"),
		OrderServiceURL:   getenv("ORDER_SERVICE_URL", "http://order-service:3003"),
		ProductTimeout:    envDur("PRODUCT_TIMEOUT", 5*time.Second),
		RabbitURL:         rabbit,
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func envBool(key string, def bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	case "0", "false", "FALSE", "False", "no", "off":
		return false
	default:
		return def
	}
}
