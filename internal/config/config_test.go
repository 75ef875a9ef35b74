package config

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.True(t, cfg.Server.IsDevelopment())
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, time.Minute, cfg.Redis.Window)
	assert.Empty(t, cfg.JWT.WriteRoles)
	assert.Equal(t, "carvedrock.products", cfg.RabbitMQ.Exchange)
	assert.Equal(t, 10*time.Second, cfg.Web.APITimeout)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_ENV", "production")
	t.Setenv("JWT_WRITE_ROLES", "admin, editor ,")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://shop.example.com")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("REDIS_ENABLED", "true")

	cfg := Load()

	assert.False(t, cfg.Server.IsDevelopment())
	assert.Equal(t, []string{"admin", "editor"}, cfg.JWT.WriteRoles)
	assert.Equal(t, []string{"https://shop.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.Redis.Window)
	assert.True(t, cfg.Redis.Enabled)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     "5432",
		User:     "carved",
		Password: "p@ss word",
		Database: "catalog",
		Schema:   "public",
		SSLMode:  "disable",
	}

	u, err := url.Parse(cfg.DSN())
	require.NoError(t, err)

	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "db:5432", u.Host)
	assert.Equal(t, "/catalog", u.Path)
	pwd, _ := u.User.Password()
	assert.Equal(t, "p@ss word", pwd)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))
	assert.Equal(t, "public", u.Query().Get("search_path"))
}
