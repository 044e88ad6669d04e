package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                string
	DatabaseDSN         string
	JWTSecret           string
	AccessTokenExpiry   time.Duration
	RefreshTokenExpiry  time.Duration
	AccessTokenHeader   string
	DefaultMaxSessions  int
	FirebaseCredentials string
	Env                 string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	accessExpiry := 24 * time.Hour
	if exp := os.Getenv("ACCESS_TOKEN_EXPIRY"); exp != "" {
		if parsed, err := time.ParseDuration(exp); err == nil {
			accessExpiry = parsed
		}
	}

	refreshExpiry := 72 * time.Hour
	if exp := os.Getenv("REFRESH_TOKEN_EXPIRY"); exp != "" {
		if parsed, err := time.ParseDuration(exp); err == nil {
			refreshExpiry = parsed
		}
	}

	maxSessions := 2
	if v := os.Getenv("DEFAULT_MAX_SESSIONS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			maxSessions = parsed
		}
	}

	return &Config{
		Port:                getEnv("PORT", "8080"),
		DatabaseDSN:         getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=hoosha port=5432 sslmode=disable TimeZone=UTC"),
		JWTSecret:           getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		AccessTokenExpiry:   accessExpiry,
		RefreshTokenExpiry:  refreshExpiry,
		AccessTokenHeader:   getEnv("ACCESS_TOKEN_HEADER", "Authorization"),
		DefaultMaxSessions:  maxSessions,
		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
		Env:                 getEnv("APP_ENV", "dev"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
