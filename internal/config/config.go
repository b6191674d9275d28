package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the process configuration, read from the environment
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string
	LogMode   string

	// Optional YAML file overriding the engine policy
	PolicyPath string

	EmbeddingProvider string // local | openai
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenAIEmbedModel  string
	EmbedTimeout      time.Duration

	// Empty disables the redis embedding cache tier
	RedisAddr     string
	EmbedCacheTTL time.Duration

	RateLimitPerMinute int
	CORSOrigins        []string
}

// Load 加载配置
func Load() *Config {
	return &Config{
		Port:               envString("PORT", ":8080"),
		DBPath:             envString("DB_PATH", "./data/layover.db"),
		JWTSecret:          envString("JWT_SECRET", "your-secret-key-change-in-production"),
		LogMode:            envString("LOG_MODE", "development"),
		PolicyPath:         envString("POLICY_PATH", ""),
		EmbeddingProvider:  strings.ToLower(envString("EMBEDDING_PROVIDER", "local")),
		OpenAIAPIKey:       envString("OPENAI_API_KEY", ""),
		OpenAIBaseURL:      envString("OPENAI_BASE_URL", "https://api.openai.com"),
		OpenAIEmbedModel:   envString("OPENAI_EMBED_MODEL", "text-embedding-3-small"),
		EmbedTimeout:       envDuration("EMBED_TIMEOUT", 20*time.Second),
		RedisAddr:          envString("REDIS_ADDR", ""),
		EmbedCacheTTL:      envDuration("EMBED_CACHE_TTL", 24*time.Hour),
		RateLimitPerMinute: envInt("RATE_LIMIT_PER_MINUTE", 120),
		CORSOrigins:        envList("CORS_ORIGINS", []string{"*"}),
	}
}

func envString(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

func envInt(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func envDuration(name string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func envList(name string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
