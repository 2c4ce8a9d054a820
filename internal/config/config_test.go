package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "127.0.0.1:6379", cfg.Cache.RedisAddr)
	assert.False(t, cfg.Cache.CacheDrafts)
	assert.Equal(t, AuthModeSession, cfg.Auth.Mode)
	assert.NotEmpty(t, cfg.Auth.Secret, "dev secret should be filled in")
	assert.Equal(t, 120, cfg.Security.RateLimitRPM)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Security.CORSAllowedOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("BLAG_HTTP_ADDR", ":9090")
	t.Setenv("BLAG_SECRET", "supersecret")
	t.Setenv("BLAG_CACHE_DRAFTS", "true")
	t.Setenv("BLAG_CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "supersecret", cfg.Auth.Secret)
	assert.True(t, cfg.Cache.CacheDrafts)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.CORSAllowedOrigins)
}

func TestLoad_AdminModeRequiresCredentials(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("BLAG_AUTH_MODE", AuthModeAdmin)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BLAG_ADMIN_USER")
}

func TestLoad_AdminModeWithCredentials(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("BLAG_AUTH_MODE", AuthModeAdmin)
	t.Setenv("BLAG_ADMIN_USER", "admin")
	t.Setenv("BLAG_ADMIN_PASSWORD", "hunter2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, AuthModeAdmin, cfg.Auth.Mode)
	assert.Equal(t, "admin", cfg.Auth.AdminUser)
}

func TestLoad_UnknownAuthMode(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("BLAG_AUTH_MODE", "oauth")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BLAG_AUTH_MODE")
}

func TestLoad_ProdRequiresSecret(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("BLAG_ENV", "prod")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BLAG_SECRET")
}
