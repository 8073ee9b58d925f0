package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devJWTSecret = "secret"

type Config struct {
	DatabaseURL string
	RedisURL    string
	JWTSecret   string
	ServerPort  string
	LogLevel    string

	OpenAIAPIKey    string
	OpenAIBaseURL   string
	AnthropicAPIKey string
	ReplyProvider   string
	ReplyModel      string
	LLMTimeout      time.Duration
	ReplyMaxChars   int

	RateLimitPerHour   int
	CacheTTL           time.Duration
	CORSAllowedOrigins []string
}

func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    os.Getenv("REDIS_URL"),
		JWTSecret:   getEnv("JWT_SECRET", devJWTSecret),
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		ReplyProvider:   strings.ToLower(getEnv("REPLY_PROVIDER", "openai")),
		ReplyModel:      getEnv("REPLY_MODEL", "gpt-4o-mini"),
		LLMTimeout:      getEnvDuration("LLM_TIMEOUT", 20*time.Second),
		ReplyMaxChars:   getEnvInt("REPLY_MAX_CHARS", 150),

		RateLimitPerHour:   getEnvInt("RATE_LIMIT_PER_HOUR", 120),
		CacheTTL:           getEnvDuration("CACHE_TTL", 7*24*time.Hour),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}

	// An explicitly empty REDIS_URL disables the Redis tier.
	if _, set := os.LookupEnv("REDIS_URL"); !set {
		cfg.RedisURL = "redis://localhost:6379"
	}

	return cfg, nil
}

// Validate checks the settings required to talk to the database.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.JWTSecret != devJWTSecret && len(c.JWTSecret) < 16 {
		return errors.New("JWT_SECRET must be at least 16 bytes")
	}
	switch c.ReplyProvider {
	case "openai", "anthropic", "template":
	default:
		return errors.New("REPLY_PROVIDER must be one of openai, anthropic, template")
	}
	return nil
}

// UsesDevSecret reports whether the built-in development JWT secret is active.
func (c *Config) UsesDevSecret() bool {
	return c.JWTSecret == devJWTSecret
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

func getEnvList(key string, defaultVal []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultVal
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
