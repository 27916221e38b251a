package config

import (
	"fmt"
	"strings"
)

var logLevels = []string{"trace", "debug", "info", "warn", "error"}

// Validate checks required fields and value ranges. The error message is
// actionable enough to print straight to the user.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if cfg.Anthropic.APIKey == "" {
		return fmt.Errorf("missing Anthropic API key\nSet env: ANTHROPIC_API_KEY=... (or anthropic.api_key in %s)", DefaultConfigFile)
	}
	if cfg.Anthropic.MaxTokens <= 0 {
		return fmt.Errorf("anthropic.max_tokens must be positive, got %d", cfg.Anthropic.MaxTokens)
	}
	if cfg.Chunking.Size <= 0 {
		return fmt.Errorf("chunking.size must be positive, got %d", cfg.Chunking.Size)
	}
	if cfg.Chunking.Overlap < 0 || cfg.Chunking.Overlap >= cfg.Chunking.Size {
		return fmt.Errorf("chunking.overlap must be in [0, chunking.size), got %d", cfg.Chunking.Overlap)
	}
	if cfg.Search.MaxResults <= 0 {
		return fmt.Errorf("search.max_results must be positive, got %d", cfg.Search.MaxResults)
	}
	if cfg.Search.MaxToolRounds <= 0 {
		return fmt.Errorf("search.max_tool_rounds must be positive, got %d", cfg.Search.MaxToolRounds)
	}
	if cfg.Search.MinResolveScore < 0 || cfg.Search.MinResolveScore > 1 {
		return fmt.Errorf("search.min_resolve_score must be in [0, 1], got %g", cfg.Search.MinResolveScore)
	}
	if !stringIn(cfg.Log.Level, logLevels) {
		return fmt.Errorf("log.level=%q; allowed: %s", cfg.Log.Level, strings.Join(logLevels, ", "))
	}
	return nil
}

func stringIn(s string, allowed []string) bool {
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}
