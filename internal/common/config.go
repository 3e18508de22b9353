package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	LLM     LLMConfig
	Extract ExtractConfig
	History HistoryConfig
	Log     LogConfig
}

// LLMConfig holds model endpoint configuration
type LLMConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration // 0 = no timeout
}

// ExtractConfig holds extraction pipeline behavior flags
type ExtractConfig struct {
	Strategy    string   // "exact" | "synonym"
	StrictKeys  bool     // reject responses with keys outside the schema
	Fields      []string // optional override of the default invoice key set
	TraceStages bool     // attach the slog stage hook
}

// HistoryConfig holds the run-history store configuration
type HistoryConfig struct {
	Path string // SQLite file path; empty disables history
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			BaseURL: getEnv("OLLAMA_URL", "http://localhost:11434"),
			Model:   getEnv("OLLAMA_MODEL", "llama3.2"),
			Timeout: getEnvAsDuration("LLM_TIMEOUT", 0),
		},
		Extract: ExtractConfig{
			Strategy:    getEnv("PROMPT_STRATEGY", "synonym"),
			StrictKeys:  getEnvAsBool("STRICT_SCHEMA", false),
			Fields:      getEnvAsList("EXTRACT_FIELDS"),
			TraceStages: getEnvAsBool("TRACE_STAGES", false),
		},
		History: HistoryConfig{
			Path: getEnv("HISTORY_DB", ""),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.LLM.BaseURL == "" {
		return NewAppError("CONFIG_ERROR", "OLLAMA_URL is required", nil)
	}
	if c.LLM.Model == "" {
		return NewAppError("CONFIG_ERROR", "OLLAMA_MODEL is required", nil)
	}
	switch c.Extract.Strategy {
	case "exact", "synonym":
	default:
		return NewAppError("CONFIG_ERROR", "PROMPT_STRATEGY must be 'exact' or 'synonym'", nil)
	}
	return nil
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
