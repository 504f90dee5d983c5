package config

import (
	"fmt"     // DSN formatting
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // List parsing
	"time"    // Durations

	"github.com/joho/godotenv" // For loading .env files
)

// Supported database drivers
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Config holds the application configuration
type Config struct {
	AppPort          string        // Application port
	DBDriver         string        // mysql or postgres
	DBUser           string        // Database user
	DBPassword       string        // Database password
	DBHost           string        // Database host
	DBPort           string        // Database port
	DBName           string        // Database name
	DBSSLMode        string        // Postgres sslmode
	JWTSecret        string        // JWT secret key
	TokenTTL         time.Duration // Access token lifetime
	RedisAddr        string        // Redis server address, empty disables caching
	RedisPass        string        // Redis password
	RedisDB          int           // Redis database number
	CacheTTL         time.Duration // Lifetime of cached listings
	IsProd           bool          // Is production environment
	LogLevel         string        // Logrus level
	BootstrapEnabled bool          // Expose the unauthenticated bootstrap registration
	TrustedProxies   []string      // Proxies gin trusts for client IPs
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	return &Config{
		AppPort:          getenv("APP_PORT", "8080"),
		DBDriver:         strings.ToLower(getenv("DB_DRIVER", DriverMySQL)),
		DBUser:           os.Getenv("DB_USER"),
		DBPassword:       os.Getenv("DB_PASSWORD"),
		DBHost:           getenv("DB_HOST", "127.0.0.1"),
		DBPort:           os.Getenv("DB_PORT"),
		DBName:           os.Getenv("DB_NAME"),
		DBSSLMode:        getenv("DB_SSLMODE", "disable"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		TokenTTL:         time.Duration(atoi("ACCESS_TOKEN_EXPIRE_MINUTES", 24*60)) * time.Minute,
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPass:        os.Getenv("REDIS_PASS"),
		RedisDB:          atoi("REDIS_DB", 0),
		CacheTTL:         time.Duration(atoi("CACHE_TTL_SECONDS", 60)) * time.Second,
		IsProd:           os.Getenv("IS_PROD") == "true",
		LogLevel:         getenv("LOG_LEVEL", "info"),
		BootstrapEnabled: getenv("BOOTSTRAP_ENABLED", "true") == "true",
		TrustedProxies:   splitList(getenv("TRUSTED_PROXIES", "127.0.0.1")),
	}
}

// Validate rejects configurations the server cannot run with
func (c *Config) Validate() error {
	if c.DBDriver != DriverMySQL && c.DBDriver != DriverPostgres {
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.IsProd && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	return nil
}

// DSN renders the data source name for the configured driver
func (c *Config) DSN() string {
	if c.DBDriver == DriverPostgres {
		port := c.DBPort
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			c.DBHost, port, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
	}
	port := c.DBPort
	if port == "" {
		port = "3306"
	}
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + port + ")/" + c.DBName + "?parseTime=true"
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
