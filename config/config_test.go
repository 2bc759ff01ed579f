package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.Storefront.Storage)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SESSION_STORAGE", "REDIS")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("COOKIE_SECURE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageRedis, cfg.Storefront.Storage)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 2*time.Hour, cfg.Redis.TTL)
	assert.True(t, cfg.Storefront.SecureCookies)
}

func TestLoadFallsBackOnUnparsableValues(t *testing.T) {
	t.Setenv("REDIS_DB", "three")
	t.Setenv("JWT_EXPIRATION", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown storage driver", env: map[string]string{"SESSION_STORAGE": "localstorage"}},
		{name: "short cookie key", env: map[string]string{"COOKIE_HASH_KEY": "short"}},
		{name: "bad block key length", env: map[string]string{"COOKIE_BLOCK_KEY": "abc"}},
		{name: "default jwt secret in production", env: map[string]string{"APP_ENV": "production"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "shop", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=shop sslmode=disable", d.DSN())
}
