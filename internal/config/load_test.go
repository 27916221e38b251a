package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".courserag.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaultsWhenFileIsMissing(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")

	cfg, err := Load(Options{ConfigPath: filepath.Join(t.TempDir(), "absent.yaml")})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Search.MaxToolRounds != 2 || cfg.Search.MaxResults != 5 {
		t.Errorf("search defaults = %+v", cfg.Search)
	}
	if cfg.Chunking.Size != 800 || cfg.Chunking.Overlap != 100 {
		t.Errorf("chunking defaults = %+v", cfg.Chunking)
	}
	if cfg.Server.Listen != "127.0.0.1:8000" {
		t.Errorf("listen default = %q", cfg.Server.Listen)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	path := writeConfig(t, "search:\n  max_tool_rounds: 3\nserver:\n  listen: \"0.0.0.0:9000\"\n")

	cfg, err := Load(Options{ConfigPath: path})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Search.MaxToolRounds != 3 {
		t.Errorf("max_tool_rounds = %d", cfg.Search.MaxToolRounds)
	}
	if cfg.Server.Listen != "0.0.0.0:9000" {
		t.Errorf("listen = %q", cfg.Server.Listen)
	}
	// Untouched fields keep their defaults.
	if cfg.Search.MaxResults != 5 {
		t.Errorf("max_results = %d", cfg.Search.MaxResults)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "anthropic:\n  api_key: from-file\n")
	t.Setenv("ANTHROPIC_API_KEY", "from-env")

	cfg, err := Load(Options{ConfigPath: path})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Anthropic.APIKey != "from-env" {
		t.Errorf("api_key = %q", cfg.Anthropic.APIKey)
	}
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	t.Setenv("COURSERAG_LISTEN", "1.2.3.4:1111")

	listen := "127.0.0.1:2222"
	cfg, err := Load(Options{
		ConfigPath: filepath.Join(t.TempDir(), "absent.yaml"),
		Overrides:  &Overrides{Listen: &listen},
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Listen != "127.0.0.1:2222" {
		t.Errorf("listen = %q", cfg.Server.Listen)
	}
}

func TestLoadMalformedYAMLFails(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	path := writeConfig(t, "search: [not a mapping\n")

	if _, err := Load(Options{ConfigPath: path}); err == nil {
		t.Fatal("malformed YAML must fail")
	}
}

func TestLoadMissingAPIKeyFailsValidation(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	if _, err := Load(Options{ConfigPath: filepath.Join(t.TempDir(), "absent.yaml")}); err == nil {
		t.Fatal("missing API key must fail validation")
	}
}

func TestLoadSkipValidate(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	cfg, err := Load(Options{
		ConfigPath:   filepath.Join(t.TempDir(), "absent.yaml"),
		SkipValidate: true,
	})
	if err != nil {
		t.Fatalf("SkipValidate must bypass validation: %v", err)
	}
	if cfg.Anthropic.APIKey != "" {
		t.Errorf("api_key = %q", cfg.Anthropic.APIKey)
	}
}
