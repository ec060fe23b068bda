package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("APP_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverDynamo, cfg.Store.Driver)
	assert.Equal(t, "Inverter-db", cfg.Store.TableName)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, "session-token", cfg.Auth.CookieName)
	assert.Equal(t, time.Hour, cfg.Auth.SessionTTL())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("AUTH_SESSION_TTL_MINUTES", "15")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")
	t.Setenv("AUTH_COOKIE_SECURE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
	assert.Equal(t, 15*time.Minute, cfg.Auth.SessionTTL())
	assert.Equal(t, time.Duration(0), cfg.App.RequestTimeout())
	assert.True(t, cfg.Auth.CookieSecure)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")

	_, err := Load()
	assert.Error(t, err)
}
