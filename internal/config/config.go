package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the persona service
type Config struct {
	// Server
	Port        string
	Environment string

	// Generative text service
	LLMProvider       string
	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	GeminiAPIKey      string
	PersonaModel      string
	NameModel         string
	SiteURL           string
	SiteName          string

	// Generation policy
	MaxAttempts    int
	AttemptTimeout time.Duration
	FieldSpecPath  string
	SeedPath       string

	// Circuit breaker around the generative service
	BreakerFailures int
	BreakerCooldown time.Duration

	// Infrastructure, empty disables the collaborator
	DatabaseURL  string
	RedisURL     string
	NATSURL      string
	OTLPEndpoint string

	// Access
	APIKeys            []string
	RateLimitPerMinute int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "9350"),
		Environment: getEnv("GO_ENV", "development"),

		LLMProvider:       getEnv("LLM_PROVIDER", "openrouter"),
		OpenRouterAPIKey:  getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		PersonaModel:      getEnv("PERSONA_MODEL", "google/gemini-2.0-flash-001"),
		NameModel:         getEnv("NAME_MODEL", "google/gemini-2.0-flash-001"),
		SiteURL:           getEnv("SITE_URL", "https://github.com/genpersona/api"),
		SiteName:          getEnv("SITE_NAME", "gen-persona"),

		MaxAttempts:    getEnvInt("MAX_ATTEMPTS", 3),
		AttemptTimeout: getEnvDuration("ATTEMPT_TIMEOUT", 60*time.Second),
		FieldSpecPath:  getEnv("FIELD_SPEC_PATH", ""),
		SeedPath:       getEnv("SEED_PATH", ""),

		BreakerFailures: getEnvInt("BREAKER_FAILURES", 5),
		BreakerCooldown: getEnvDuration("BREAKER_COOLDOWN", 30*time.Second),

		DatabaseURL:  getEnv("DATABASE_URL", ""),
		RedisURL:     getEnv("REDIS_URL", ""),
		NATSURL:      getEnv("NATS_URL", ""),
		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		APIKeys:            getEnvList("API_KEYS"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}
}

// IsProduction reports whether the service runs in release mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

// getEnvList splits a comma separated variable, dropping blanks.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
