package main

import (
	"context" // context package is needed for Redis operations

	"bingo_ledger/internal/api"        // Custom package for API handlers
	"bingo_ledger/internal/config"     // Custom package for configuration
	"bingo_ledger/internal/db"         // Database connection
	"bingo_ledger/internal/repository" // GORM-backed store
	"bingo_ledger/internal/service"    // Business operations
	"bingo_ledger/internal/utils"      // Tokens, hashing and caching

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration
	setupLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}

	// Connect to the database
	conn, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	store := repository.NewStore(conn)

	cache := setupCache(cfg)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	cards, err := service.NewCardService(store, cache) // Card registry shares the listing cache
	if err != nil {
		logrus.Fatalf("failed to set up card registry: %v", err)
	}
	tokens := utils.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	hasher := utils.NewBcryptHasher()
	r, err := api.NewRouter(api.Services{
		Auth:   service.NewAuthService(store, hasher, tokens),
		Users:  service.NewUserService(store, hasher, cache, cfg.CacheTTL),
		Ledger: service.NewLedgerService(store, cache, cfg.CacheTTL),
		Cards:  cards,
	}, api.RouterOptions{
		BootstrapEnabled: cfg.BootstrapEnabled,
		TrustedProxies:   cfg.TrustedProxies,
	})
	if err != nil {
		logrus.Fatalf("failed to set up router: %v", err)
	}
	if cfg.BootstrapEnabled {
		logrus.Warn("Bootstrap registration is enabled; disable BOOTSTRAP_ENABLED once the owner exists")
	}

	logrus.WithFields(logrus.Fields{"port": cfg.AppPort, "driver": cfg.DBDriver}).Info("Server running")
	if err := r.Run(":" + cfg.AppPort); err != nil { // Start the server on port cfg.AppPort
		logrus.Fatalf("server stopped: %v", err)
	}
}

// setupLogger picks the log format and level
func setupLogger(cfg *config.Config) {
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Warnf("unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

// setupCache connects to Redis when configured, otherwise caching is off
func setupCache(cfg *config.Config) service.Cache {
	if cfg.RedisAddr == "" {
		logrus.Warn("REDIS_ADDR not set, caching disabled")
		return utils.NopCache{}
	}
	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})
	// Test Redis connection
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}
	return utils.NewRedisCache(redisClient)
}
