package cli

import (
	"github.com/rs/zerolog"

	"github.com/moiesk/courserag/internal/config"
	"github.com/moiesk/courserag/internal/embed"
	"github.com/moiesk/courserag/internal/ingest"
	"github.com/moiesk/courserag/internal/llm"
	"github.com/moiesk/courserag/internal/orchestrator"
	"github.com/moiesk/courserag/internal/rag"
	"github.com/moiesk/courserag/internal/session"
	"github.com/moiesk/courserag/internal/vectorstore"
)

// app bundles everything a command needs once config is resolved.
type app struct {
	cfg    *config.Config
	store  *vectorstore.Store
	sys    *rag.System
	ingest *ingest.Service
	log    zerolog.Logger
}

// loadConfig resolves config with the global flags applied as overrides.
// Exits with ExitConfigInvalid on failure so every command behaves the same.
func loadConfig() *config.Config {
	overrides := &config.Overrides{}
	if globalFlags.DocsDir != "" {
		overrides.DocsDir = &globalFlags.DocsDir
	}
	if globalFlags.StateDir != "" {
		overrides.StateDir = &globalFlags.StateDir
	}
	if globalFlags.LogLevel != "" {
		overrides.LogLevel = &globalFlags.LogLevel
	}
	cfg, err := config.Load(config.Options{
		ConfigPath: globalFlags.ConfigPath,
		Overrides:  overrides,
	})
	if err != nil {
		exitWith(ExitConfigInvalid, "ERROR: "+err.Error())
	}
	return cfg
}

// buildApp wires the full stack from config: embedder, vector store, LLM
// client, orchestrator, sessions, ingester.
func buildApp(cfg *config.Config) (*app, error) {
	logger := newLogger(cfg.Log.Level)

	embedder := embed.NewOllamaClient(cfg.Embedding.BaseURL, cfg.Embedding.Model)
	store, err := vectorstore.Open(cfg.Paths.State, embedder, vectorstore.Options{
		MinResolveScore: cfg.Search.MinResolveScore,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}

	client := llm.NewClient(cfg.Anthropic.BaseURL, cfg.Anthropic.APIKey)
	client.Model = cfg.Anthropic.Model
	client.MaxTokens = cfg.Anthropic.MaxTokens

	orch := orchestrator.New(client, logger)
	sessions := session.NewManager(cfg.Search.MaxHistory)
	sys := rag.New(store, orch, sessions, rag.Options{
		MaxResults: cfg.Search.MaxResults,
		MaxRounds:  cfg.Search.MaxToolRounds,
		Logger:     logger,
	})
	svc := ingest.NewService(store, cfg.Chunking.Size, cfg.Chunking.Overlap, logger)

	return &app{cfg: cfg, store: store, sys: sys, ingest: svc, log: logger}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
