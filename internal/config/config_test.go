package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, config.DriverFile, cfg.Store.Driver)
	assert.Equal(t, "kg", cfg.Ledger.BaseWeightUnit)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,https://tally.example")
	t.Setenv("DB_NAME", "books")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.App.Port)
	assert.Equal(t, config.DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, []string{"http://localhost:3000", "https://tally.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "postgres://postgres:@localhost:5432/books?sslmode=disable", cfg.ConnectionString())
}

func TestLoad_UnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")

	_, err := config.Load()
	assert.ErrorContains(t, err, "STORE_DRIVER")
}
