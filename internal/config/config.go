package config

import (
	"os"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	// RefreshTokenTTL stays a raw "<n><s|m|h|d>" string; the token service
	// parses it and falls back to 7 days on garbage.
	RefreshTokenTTL string

	// Magic link / password reset
	MagicLinkTTL     time.Duration
	MagicLinkBaseURL string
	PasswordResetTTL time.Duration

	// Mail
	PostmarkServerToken  string
	PostmarkAccountToken string
	EmailFrom            string

	// Google OAuth
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string

	// Admin seed
	AdminEmail    string
	AdminPassword string
	AdminName     string

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "blog_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		AccessTokenSecret:  getEnv("JWT_ACCESS_SECRET", ""),
		RefreshTokenSecret: getEnv("JWT_REFRESH_SECRET", ""),
		AccessTokenTTL:     parseDuration(getEnv("JWT_ACCESS_TTL", "15m"), 15*time.Minute),
		RefreshTokenTTL:    getEnv("JWT_REFRESH_TTL", "7d"),

		MagicLinkTTL:     parseDuration(getEnv("MAGIC_LINK_TTL", "900s"), 900*time.Second),
		MagicLinkBaseURL: getEnv("MAGIC_LINK_BASE_URL", "http://localhost:3001"),
		PasswordResetTTL: parseDuration(getEnv("RESET_PASSWORD_TTL", "900s"), 900*time.Second),

		PostmarkServerToken:  getEnv("POSTMARK_SERVER_TOKEN", ""),
		PostmarkAccountToken: getEnv("POSTMARK_ACCOUNT_TOKEN", ""),
		EmailFrom:            getEnv("EMAIL_FROM", "noreply@example.com"),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleCallbackURL:  getEnv("GOOGLE_CALLBACK_URL", ""),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminName:     getEnv("ADMIN_NAME", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
