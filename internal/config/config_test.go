package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.False(t, cfg.Database.MigrateOnStart)
	assert.Equal(t, zapcore.InfoLevel, cfg.Log.Level)
	assert.False(t, cfg.Log.IsDevelopment())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "7")
	t.Setenv("DATABASE_MIGRATE_ON_START", "true")
	t.Setenv("SERVER_READ_TIMEOUT", "3s")
	t.Setenv("APP_ENV", "Development")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 7, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Database.MigrateOnStart)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.Log.IsDevelopment())
	assert.Equal(t, zapcore.DebugLevel, cfg.Log.Level)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("DATABASE_MAX_IDLE_CONNS", "many")
	t.Setenv("SERVER_WRITE_TIMEOUT", "soon")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
	assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeout)
}

func TestLoadRejectsUnknownLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")

	_, err := Load()
	assert.Error(t, err)
}
