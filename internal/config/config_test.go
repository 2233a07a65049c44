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

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 3, cfg.StoreRetryAttempts)
	assert.Equal(t, time.Second, cfg.StoreRetryBaseDelay)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_RETRY_ATTEMPTS", "5")
	t.Setenv("STORE_RETRY_BASE_DELAY_MS", "250")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com,")
	t.Setenv("ROOT_VIEWPOINT_GROUP_ID", "root-group")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5, cfg.StoreRetryAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.StoreRetryBaseDelay)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, "root-group", cfg.RootViewpointGroupID)
}

func TestIntEnvFallsBackOnGarbage(t *testing.T) {
	t.Setenv("STORE_RETRY_ATTEMPTS", "many")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.StoreRetryAttempts)
}
