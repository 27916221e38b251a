// Package rag wires retrieval, tools, sessions and the completion loop into
// one query-answering facade.
package rag

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/moiesk/courserag/internal/model"
	"github.com/moiesk/courserag/internal/orchestrator"
	"github.com/moiesk/courserag/internal/session"
	"github.com/moiesk/courserag/internal/tools"
)

// Answerer is the orchestrator boundary, narrowed for tests.
type Answerer interface {
	Answer(ctx context.Context, query string, opts orchestrator.AnswerOptions) (string, error)
}

// CourseStore is what the facade needs from the vector store: the tool-facing
// retrieval contract plus the analytics queries.
type CourseStore interface {
	model.CourseRetriever
	CourseCount(ctx context.Context) (int, error)
	ExistingCourseTitles(ctx context.Context) ([]string, error)
}

// System answers course questions. Each query gets its own tool registry and
// source tracker, so concurrent queries never see each other's sources.
type System struct {
	store        CourseStore
	orchestrator Answerer
	sessions     *session.Manager
	maxResults   int
	maxRounds    int
	log          zerolog.Logger
}

type Options struct {
	MaxResults int
	MaxRounds  int
	Logger     zerolog.Logger
}

func New(store CourseStore, orch Answerer, sessions *session.Manager, opts Options) *System {
	return &System{
		store:        store,
		orchestrator: orch,
		sessions:     sessions,
		maxResults:   opts.MaxResults,
		maxRounds:    opts.MaxRounds,
		log:          opts.Logger,
	}
}

// Answer holds one query's response text plus the sources its searches
// surfaced, already detached from the per-query tracker.
type Answer struct {
	Text      string         `json:"answer"`
	Sources   []model.Source `json:"sources"`
	ToolCalls int            `json:"-"`
}

// Query runs one question through the tool-calling loop. The session id may
// be empty for a one-shot question with no history.
func (s *System) Query(ctx context.Context, sessionID, question string) (Answer, error) {
	tracker := tools.NewSourceTracker()
	registry := tools.NewRegistry(tracker)
	if err := registry.Register(tools.NewSearchTool(s.store, tracker, s.maxResults)); err != nil {
		return Answer{}, fmt.Errorf("register search tool: %w", err)
	}
	if err := registry.Register(tools.NewOutlineTool(s.store)); err != nil {
		return Answer{}, fmt.Errorf("register outline tool: %w", err)
	}

	prompt := fmt.Sprintf("Answer this question about course materials: %s", question)
	text, err := s.orchestrator.Answer(ctx, prompt, orchestrator.AnswerOptions{
		History:    s.sessions.History(sessionID),
		Tools:      registry.Specs(),
		Dispatcher: registry,
		MaxRounds:  s.maxRounds,
	})
	if err != nil {
		return Answer{}, err
	}

	sources := registry.LastSources()
	registry.ClearSources()
	s.sessions.Record(sessionID, question, text)

	s.log.Debug().
		Str("session", sessionID).
		Int("sources", len(sources)).
		Int("tool_calls", registry.Dispatches()).
		Msg("query answered")
	return Answer{Text: text, Sources: sources, ToolCalls: registry.Dispatches()}, nil
}

// NewSession creates a fresh conversation and returns its id.
func (s *System) NewSession() string {
	return s.sessions.Create()
}

// ClearSession drops a conversation's history.
func (s *System) ClearSession(sessionID string) {
	s.sessions.Clear(sessionID)
}

// Analytics summarizes what the store currently holds.
type Analytics struct {
	TotalCourses int      `json:"total_courses"`
	CourseTitles []string `json:"course_titles"`
}

// CourseAnalytics reports the indexed course count and titles.
func (s *System) CourseAnalytics(ctx context.Context) (Analytics, error) {
	count, err := s.store.CourseCount(ctx)
	if err != nil {
		return Analytics{}, err
	}
	titles, err := s.store.ExistingCourseTitles(ctx)
	if err != nil {
		return Analytics{}, err
	}
	return Analytics{TotalCourses: count, CourseTitles: titles}, nil
}
