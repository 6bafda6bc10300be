package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
		"JWT_ACCESS_SECRET", "JWT_REFRESH_SECRET", "JWT_ACCESS_TTL", "JWT_REFRESH_TTL",
		"MAGIC_LINK_TTL", "MAGIC_LINK_BASE_URL", "RESET_PASSWORD_TTL",
		"POSTMARK_SERVER_TOKEN", "POSTMARK_ACCOUNT_TOKEN", "EMAIL_FROM",
		"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "GOOGLE_CALLBACK_URL",
		"ADMIN_EMAIL", "ADMIN_PASSWORD", "ADMIN_NAME",
		"PORT", "CORS_ORIGINS",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, "blog_db", cfg.DBName)
	assert.Equal(t, "disable", cfg.DBSSLMode)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, "7d", cfg.RefreshTokenTTL)
	assert.Equal(t, 900*time.Second, cfg.MagicLinkTTL)
	assert.Equal(t, 900*time.Second, cfg.PasswordResetTTL)
	assert.Equal(t, "http://localhost:3001", cfg.MagicLinkBaseURL)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "*", cfg.CORSOrigins)
	assert.Empty(t, cfg.AccessTokenSecret)
	assert.Empty(t, cfg.PostmarkServerToken)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("JWT_ACCESS_TTL", "5m")
	t.Setenv("JWT_REFRESH_TTL", "30d")
	t.Setenv("MAGIC_LINK_TTL", "10m")
	t.Setenv("PORT", "9090")

	cfg := Load()

	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, "30d", cfg.RefreshTokenTTL)
	assert.Equal(t, 10*time.Minute, cfg.MagicLinkTTL)
	assert.Equal(t, "9090", cfg.Port)
}

func TestLoadBadDurationFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_ACCESS_TTL", "not-a-duration")

	cfg := Load()

	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		DBHost:     "db.internal",
		DBPort:     "5433",
		DBUser:     "blog",
		DBPassword: "s3cret",
		DBName:     "blog_db",
		DBSSLMode:  "require",
	}

	assert.Equal(t,
		"host=db.internal user=blog password=s3cret dbname=blog_db port=5433 sslmode=require TimeZone=UTC",
		cfg.DSN())
}
