package tools

import (
	"context"
	"sync"

	"github.com/moiesk/courserag/internal/model"
)

// Tool is a named, schema-described operation the completion model may
// request. Execute returns formatted human-readable text; a non-nil error is
// captured at the dispatcher boundary and never propagates further.
type Tool interface {
	Spec() model.ToolSpec
	Execute(ctx context.Context, args map[string]any) (string, error)
}

// SourceTracker holds the attribution sources produced by the most recent
// search. Each tool execution overwrites the previous batch; the query facade
// reads and then clears it after the orchestrator returns. One tracker must
// not be shared across concurrently in-flight queries.
type SourceTracker struct {
	mu      sync.Mutex
	sources []model.Source
}

func NewSourceTracker() *SourceTracker {
	return &SourceTracker{}
}

// Set replaces the tracked batch with sources.
func (t *SourceTracker) Set(sources []model.Source) {
	copied := make([]model.Source, len(sources))
	copy(copied, sources)
	t.mu.Lock()
	t.sources = copied
	t.mu.Unlock()
}

// Last returns the current batch. The returned slice is a copy; successive
// calls without an intervening Set return equal lists.
func (t *SourceTracker) Last() []model.Source {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]model.Source, len(t.sources))
	copy(out, t.sources)
	return out
}

// Clear discards the tracked batch.
func (t *SourceTracker) Clear() {
	t.mu.Lock()
	t.sources = nil
	t.mu.Unlock()
}
