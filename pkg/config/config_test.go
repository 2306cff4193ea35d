package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/restaurante-api/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "usd", cfg.App.Currency)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
}

func TestLoad_VariablesDeEntorno(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "a")
	t.Setenv("JWT_REFRESH_SECRET", "r")
	t.Setenv("JWT_ACCESS_MINUTES", "5")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("APP_CURRENCY", "EUR")
	t.Setenv("COOKIE_SECURE", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "a", cfg.JWT.AccessSecret)
	assert.Equal(t, "r", cfg.JWT.RefreshSecret)
	assert.Equal(t, 5*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "eur", cfg.App.Currency)
	assert.True(t, cfg.Auth.CookieSecure)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss", DBName: "rest", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss@db:5432/rest?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
