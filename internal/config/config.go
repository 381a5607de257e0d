// Package config loads the application configuration from the environment.
// The configuration is read exactly once at startup and passed by reference
// to the components that need it; no other package reads environment
// variables directly.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds every runtime setting for the back office API.
type Config struct {
	// Port the HTTP server listens on.
	Port string

	// Env is the runtime mode: "development" or "production".
	// Internal error messages are only returned to clients in development.
	Env string

	// DatabaseURL is the PostgreSQL connection string.
	DatabaseURL string

	// JWTSecret signs and verifies bearer tokens (HS256).
	JWTSecret string

	// JWTExpiry is the token lifetime. Default: 24h.
	JWTExpiry time.Duration

	// CookieExpiryDays is the max age of the jwt cookie set at login.
	CookieExpiryDays int

	// BcryptCost is the cost factor for password hashing.
	BcryptCost int

	// OTPValidity is how long a verification/reset code stays usable.
	OTPValidity time.Duration

	// LoginRateLimit is the max login attempts per minute per IP.
	LoginRateLimit int

	// ForgotPasswordRateLimit is the max OTP dispatches per hour per IP.
	ForgotPasswordRateLimit int
}

// Load builds a Config from the environment, applying defaults for
// everything except the two settings that have no safe default.
//
// Required variables:
//   - DATABASE_URL
//   - JWT_SECRET
func Load() (*Config, error) {
	cfg := &Config{
		Port:                    getEnv("PORT", "5000"),
		Env:                     getEnv("APP_ENV", "development"),
		DatabaseURL:             os.Getenv("DATABASE_URL"),
		JWTSecret:               os.Getenv("JWT_SECRET"),
		JWTExpiry:               24 * time.Hour,
		CookieExpiryDays:        getEnvInt("JWT_COOKIE_EXPIRES_DAYS", 7),
		BcryptCost:              12,
		OTPValidity:             10 * time.Minute,
		LoginRateLimit:          5,
		ForgotPasswordRateLimit: 3,
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable not set")
	}

	if v := os.Getenv("JWT_EXPIRES_IN"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRES_IN %q: %w", v, err)
		}
		cfg.JWTExpiry = d
	}

	return cfg, nil
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env != "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
