// Package config loads and validates the runtime configuration with
// precedence: defaults, then the YAML config file, then environment
// variables, then CLI flag overrides.
package config

import (
	"github.com/moiesk/courserag/internal/embed"
	"github.com/moiesk/courserag/internal/ingest"
	"github.com/moiesk/courserag/internal/llm"
	"github.com/moiesk/courserag/internal/orchestrator"
	"github.com/moiesk/courserag/internal/session"
	"github.com/moiesk/courserag/internal/vectorstore"
)

// DefaultConfigFile is looked up relative to the working directory unless an
// absolute path is given.
const DefaultConfigFile = ".courserag.yaml"

type Config struct {
	Anthropic AnthropicConfig `yaml:"anthropic"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Search    SearchConfig    `yaml:"search"`
	Server    ServerConfig    `yaml:"server"`
	Paths     PathsConfig     `yaml:"paths"`
	Log       LogConfig       `yaml:"log"`
}

type AnthropicConfig struct {
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

type EmbeddingConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type ChunkingConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

type SearchConfig struct {
	MaxResults      int     `yaml:"max_results"`
	MaxHistory      int     `yaml:"max_history"`
	MaxToolRounds   int     `yaml:"max_tool_rounds"`
	MinResolveScore float64 `yaml:"min_resolve_score"`
}

type ServerConfig struct {
	Listen string `yaml:"listen"`
	Watch  bool   `yaml:"watch"`
}

type PathsConfig struct {
	Docs  string `yaml:"docs"`
	State string `yaml:"state"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the baseline configuration before any file, env, or flag
// overlays.
func Default() Config {
	return Config{
		Anthropic: AnthropicConfig{
			BaseURL:   llm.DefaultBaseURL,
			Model:     llm.DefaultModel,
			MaxTokens: llm.DefaultMaxTokens,
		},
		Embedding: EmbeddingConfig{
			BaseURL: embed.DefaultBaseURL,
			Model:   embed.DefaultModel,
		},
		Chunking: ChunkingConfig{
			Size:    ingest.DefaultChunkSize,
			Overlap: ingest.DefaultChunkOverlap,
		},
		Search: SearchConfig{
			MaxResults:      5,
			MaxHistory:      session.DefaultMaxExchanges,
			MaxToolRounds:   orchestrator.DefaultMaxRounds,
			MinResolveScore: vectorstore.DefaultMinResolveScore,
		},
		Server: ServerConfig{
			Listen: "127.0.0.1:8000",
			Watch:  true,
		},
		Paths: PathsConfig{
			Docs:  "docs",
			State: ".courserag",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
