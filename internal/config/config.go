// Package config resolves all runtime configuration once at process start.
//
// Nothing in this codebase reads an environment variable outside this
// package — database credentials, the JWT secret, bucket keys, and the
// Google OAuth client id are all loaded here and passed explicitly to the
// components that need them.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds every setting the server needs.
type Config struct {
	Port int

	// Relational store. Driver selects the backend: "postgres" connects to
	// DBHost/DBPort with the pgx driver, "sqlite" opens DBPath with the
	// embedded pure-Go driver (useful for local development and tests).
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string

	JWTSecret string

	// Audience for Google ID-token verification (social login).
	GoogleClientID string

	// Object storage (S3-compatible).
	StorageEndpoint  string
	StorageRegion    string
	StorageAccessKey string
	StorageSecretKey string
	StorageBucket    string
	StoragePublicURL string

	// Base URL of the external AI matching / notification service.
	AIServiceURL string

	// Origin of the browser frontend, for CORS. Empty disables the headers.
	CORSOrigin string
}

// Load reads configuration from the environment. Outside production a local
// .env file is merged in first (missing file is fine).
func Load() (*Config, error) {
	if os.Getenv("ENV") != "production" {
		_ = godotenv.Load()
	}

	port := 4000
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("config: invalid PORT %q: %w", portStr, err)
		}
	}

	cfg := &Config{
		Port: port,

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "petlink"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBPath:     getEnv("DB_PATH", "data/petlink.db"),

		JWTSecret:      os.Getenv("JWT_SECRET"),
		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),

		StorageEndpoint:  os.Getenv("STORAGE_ENDPOINT"),
		StorageRegion:    getEnv("STORAGE_REGION", "auto"),
		StorageAccessKey: os.Getenv("STORAGE_ACCESS_KEY"),
		StorageSecretKey: os.Getenv("STORAGE_SECRET_KEY"),
		StorageBucket:    os.Getenv("STORAGE_BUCKET"),
		StoragePublicURL: os.Getenv("STORAGE_PUBLIC_URL"),

		AIServiceURL: os.Getenv("AI_SERVICE_URL"),
		CORSOrigin:   os.Getenv("CORS_ORIGIN"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET must be set")
	}

	return cfg, nil
}

// DatabaseDSN builds the data source name for the configured driver.
func (c *Config) DatabaseDSN() string {
	if c.DBDriver == "sqlite" {
		return c.DBPath
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(c.DBUser),
		url.QueryEscape(c.DBPassword),
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBSSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
