// Package config loads application configuration from environment variables.
// All variables use the STUDYMATE_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/onyx-team/studymate/internal/ai"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Cache       CacheConfig
	AI          AIConfig
	Pipeline    PipelineConfig
	Log         LogConfig
	CatalogPath string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// DatabaseConfig holds PostgreSQL connection settings. An empty URL disables
// the Postgres history logger.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Redis connection settings. An empty URL selects the
// in-memory session store.
type CacheConfig struct {
	URL        string
	SessionTTL int // hours
}

// AIConfig holds API credentials per engine.
type AIConfig struct {
	OpenAIKey   string
	DeepSeekKey string
	GeminiKey   string
	GrokKey     string
}

// PipelineConfig holds orchestrator settings.
type PipelineConfig struct {
	StepTimeout int // seconds per agent call
	MaxTokens   int
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with STUDYMATE_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("STUDYMATE_SERVER_PORT", 8080),
			Host: envStr("STUDYMATE_SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			URL:      envStr("STUDYMATE_DATABASE_URL", ""),
			MaxConns: envInt("STUDYMATE_DATABASE_MAX_CONNS", 25),
			MinConns: envInt("STUDYMATE_DATABASE_MIN_CONNS", 5),
		},
		Cache: CacheConfig{
			URL:        envStr("STUDYMATE_CACHE_URL", ""),
			SessionTTL: envInt("STUDYMATE_CACHE_SESSION_TTL", 24),
		},
		AI: AIConfig{
			OpenAIKey:   envStr("STUDYMATE_AI_OPENAI_API_KEY", ""),
			DeepSeekKey: envStr("STUDYMATE_AI_DEEPSEEK_API_KEY", ""),
			GeminiKey:   envStr("STUDYMATE_AI_GEMINI_API_KEY", ""),
			GrokKey:     envStr("STUDYMATE_AI_GROK_API_KEY", ""),
		},
		Pipeline: PipelineConfig{
			StepTimeout: envInt("STUDYMATE_PIPELINE_STEP_TIMEOUT", 120),
			MaxTokens:   envInt("STUDYMATE_PIPELINE_MAX_TOKENS", 4096),
		},
		Log: LogConfig{
			Level:  envStr("STUDYMATE_LOG_LEVEL", "info"),
			Format: envStr("STUDYMATE_LOG_FORMAT", "json"),
		},
		CatalogPath: envStr("STUDYMATE_CATALOG_PATH", ""),
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if !c.HasAIProvider() {
		return fmt.Errorf("at least one AI engine credential must be configured")
	}
	if c.Pipeline.StepTimeout <= 0 {
		return fmt.Errorf("STUDYMATE_PIPELINE_STEP_TIMEOUT must be positive, got %d", c.Pipeline.StepTimeout)
	}
	return nil
}

// CredentialFor returns the API credential for an engine, or "" when none is
// configured.
func (c *Config) CredentialFor(engine ai.Engine) string {
	switch engine {
	case ai.EngineOpenAI:
		return c.AI.OpenAIKey
	case ai.EngineDeepSeek:
		return c.AI.DeepSeekKey
	case ai.EngineGemini:
		return c.AI.GeminiKey
	case ai.EngineGrok:
		return c.AI.GrokKey
	}
	return ""
}

// Credentials returns all configured engine credentials.
func (c *Config) Credentials() map[ai.Engine]string {
	creds := make(map[ai.Engine]string)
	for _, engine := range ai.Engines() {
		if key := c.CredentialFor(engine); key != "" {
			creds[engine] = key
		}
	}
	return creds
}

// HasAIProvider returns true if at least one engine credential is configured.
func (c *Config) HasAIProvider() bool {
	return len(c.Credentials()) > 0
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
