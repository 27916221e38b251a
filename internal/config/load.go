package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Options controls loading. Overrides carry CLI flag values, which take the
// highest precedence; only non-nil fields are applied.
type Options struct {
	ConfigPath   string
	SkipValidate bool
	Overrides    *Overrides
}

type Overrides struct {
	Listen          *string
	DocsDir         *string
	StateDir        *string
	AnthropicAPIKey *string
	LogLevel        *string
}

// Load builds the configuration with precedence: defaults, YAML file, env
// vars, flag overrides. A missing config file is fine; a malformed one is not.
func Load(opts Options) (*Config, error) {
	cfg := Default()

	// Local dotenv files for developer ergonomics. Explicit env wins over
	// both files, .env.local wins over .env.
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
	}

	path := opts.ConfigPath
	if path == "" {
		path = DefaultConfigFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("malformed YAML in %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	applyEnv(&cfg)

	if opts.Overrides != nil {
		applyOverrides(&cfg, opts.Overrides)
	}

	if !opts.SkipValidate {
		if err := Validate(&cfg); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.Anthropic.APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_BASE_URL"); v != "" {
		cfg.Anthropic.BaseURL = v
	}
	if v := os.Getenv("ANTHROPIC_MODEL"); v != "" {
		cfg.Anthropic.Model = v
	}
	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		cfg.Embedding.BaseURL = v
	}
	if v := os.Getenv("COURSERAG_LISTEN"); v != "" {
		cfg.Server.Listen = v
	}
	if v := os.Getenv("COURSERAG_DOCS_DIR"); v != "" {
		cfg.Paths.Docs = v
	}
	if v := os.Getenv("COURSERAG_STATE_DIR"); v != "" {
		cfg.Paths.State = v
	}
	if v := os.Getenv("COURSERAG_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("COURSERAG_MAX_TOOL_ROUNDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.MaxToolRounds = n
		}
	}
}

func applyOverrides(cfg *Config, o *Overrides) {
	if o.Listen != nil {
		cfg.Server.Listen = *o.Listen
	}
	if o.DocsDir != nil {
		cfg.Paths.Docs = *o.DocsDir
	}
	if o.StateDir != nil {
		cfg.Paths.State = *o.StateDir
	}
	if o.AnthropicAPIKey != nil {
		cfg.Anthropic.APIKey = *o.AnthropicAPIKey
	}
	if o.LogLevel != nil {
		cfg.Log.Level = *o.LogLevel
	}
}
