package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"DATABASE_URL", "JWT_SECRET", "SERVER_PORT", "REPLY_PROVIDER", "REPLY_MODEL",
		"LLM_TIMEOUT", "REPLY_MAX_CHARS", "RATE_LIMIT_PER_HOUR", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "openai", cfg.ReplyProvider)
	assert.Equal(t, "gpt-4o-mini", cfg.ReplyModel)
	assert.Equal(t, 20*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 150, cfg.ReplyMaxChars)
	assert.Equal(t, 120, cfg.RateLimitPerHour)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.UsesDevSecret())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("REPLY_PROVIDER", "Anthropic")
	t.Setenv("LLM_TIMEOUT", "5s")
	t.Setenv("REPLY_MAX_CHARS", "200")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("REDIS_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.ReplyProvider)
	assert.Equal(t, 5*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 200, cfg.ReplyMaxChars)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("REPLY_MAX_CHARS", "lots")
	t.Setenv("LLM_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 150, cfg.ReplyMaxChars)
	assert.Equal(t, 20*time.Second, cfg.LLMTimeout)
}

func TestValidate(t *testing.T) {
	base := Config{DatabaseURL: "postgres://localhost/replies", JWTSecret: devJWTSecret, ReplyProvider: "openai"}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid with dev secret", func(c *Config) {}, false},
		{"missing database", func(c *Config) { c.DatabaseURL = "" }, true},
		{"short secret", func(c *Config) { c.JWTSecret = "tiny" }, true},
		{"long secret", func(c *Config) { c.JWTSecret = "0123456789abcdef0123" }, false},
		{"unknown provider", func(c *Config) { c.ReplyProvider = "gemini" }, true},
		{"template provider", func(c *Config) { c.ReplyProvider = "template" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
