package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration. It is constructed once at
// process start and passed by reference into the services; business
// logic never reads the environment directly.
type Config struct {
	ServerPort    int
	DatabasePath  string
	JWTSecret     string
	TokenTTL      time.Duration
	UploadPath    string // Base path for stored listing images
	PublicBaseURL string // Prefix for returned image URLs
	AdminEmail    string // Optional bootstrap admin, seeded at startup
	AdminPassword string
	Env           string // "development" or "production"
}

// IsDevelopment reports whether error detail may be exposed to clients.
func (c *Config) IsDevelopment() bool {
	return c.Env != "production"
}

// Load loads configuration from environment variables or sets defaults.
// A .env file in the working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	ttlStr := getEnv("TOKEN_TTL", "168h") // 7 days
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerPort:    port,
		DatabasePath:  getEnv("DATABASE_PATH", "./renthub.db"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		TokenTTL:      ttl,
		UploadPath:    getEnv("UPLOAD_PATH", "./uploads"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		Env:           getEnv("APP_ENV", "development"),
	}

	if cfg.JWTSecret == "" {
		if cfg.Env == "production" {
			return nil, errors.New("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = "local_dev_secret"
	}

	return cfg, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
