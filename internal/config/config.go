// Package config loads runtime settings from the environment. Everything
// has a sensible default except the AI credentials, which gate the semantic
// checks rather than the whole tool.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Rule set
	RulesPath string

	// AI collaborator (OpenAI-compatible endpoint)
	AIBaseURL string
	AIAPIKey  string
	AIModel   string
	AITimeout time.Duration

	// Content checks run after the rule pass when AI is available.
	EnableSpellCheck    bool
	EnableCrossRefCheck bool

	// Revision output
	OutputDir      string
	RevisionAuthor string

	// Documents above this size are rejected before parsing.
	MaxDocumentBytes int64
}

func Load() Config {
	cfg := Config{
		RulesPath: envOr("DOCCHECK_RULES", "rules.yaml"),

		AIBaseURL: envOr("AI_BASE_URL", "https://api.openai.com/v1"),
		AIAPIKey:  os.Getenv("AI_API_KEY"),
		AIModel:   envOr("AI_MODEL", "gpt-4o-mini"),
		AITimeout: envDuration("AI_TIMEOUT", 60*time.Second),

		EnableSpellCheck:    envBool("ENABLE_SPELL_CHECK", true),
		EnableCrossRefCheck: envBool("ENABLE_CROSS_REF_CHECK", true),

		OutputDir:      envOr("DOCCHECK_OUTPUT_DIR", "revised"),
		RevisionAuthor: envOr("REVISION_AUTHOR", "DocCheck"),

		MaxDocumentBytes: envInt64("MAX_DOCUMENT_BYTES", 52428800), // 50MB
	}

	if cfg.AITimeout <= 0 {
		cfg.AITimeout = 60 * time.Second
	}
	if cfg.MaxDocumentBytes <= 0 {
		cfg.MaxDocumentBytes = 52428800
	}

	return cfg
}

// Validate checks the settings no default can repair. Load never produces
// an invalid configuration; this guards configs built by embedding callers.
func (c Config) Validate() error {
	if c.RulesPath == "" {
		return fmt.Errorf("DOCCHECK_RULES must not be empty")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("DOCCHECK_OUTPUT_DIR must not be empty")
	}
	if c.AIEnabled() && c.AIBaseURL == "" {
		return fmt.Errorf("AI_BASE_URL is required when AI_API_KEY is set")
	}
	return nil
}

// AIEnabled reports whether semantic checking has credentials to run with.
// A missing key disables the AI stages; it is not a configuration error.
func (c Config) AIEnabled() bool {
	return c.AIAPIKey != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
