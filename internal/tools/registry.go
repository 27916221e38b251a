package tools

import (
	"context"
	"fmt"

	"github.com/moiesk/courserag/internal/model"
)

// Registry holds the available tools keyed by declared name and routes
// invocation requests to them. It owns the SourceTracker shared by the
// registered tools; build one Registry per in-flight query.
type Registry struct {
	byName     map[string]Tool
	ordered    []string
	tracker    *SourceTracker
	dispatches int
}

func NewRegistry(tracker *SourceTracker) *Registry {
	if tracker == nil {
		tracker = NewSourceTracker()
	}
	return &Registry{
		byName:  make(map[string]Tool),
		tracker: tracker,
	}
}

// Register adds a tool under its declared name. Registering a second tool
// under an existing name fails without mutating the registry.
func (r *Registry) Register(tool Tool) error {
	name := tool.Spec().Name
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("%w: %s", model.ErrDuplicateTool, name)
	}
	r.byName[name] = tool
	r.ordered = append(r.ordered, name)
	return nil
}

// Specs returns every registered tool's descriptor in registration order.
func (r *Registry) Specs() []model.ToolSpec {
	specs := make([]model.ToolSpec, 0, len(r.ordered))
	for _, name := range r.ordered {
		specs = append(specs, r.byName[name].Spec())
	}
	return specs
}

// Dispatch routes one invocation to the named tool. Failures never escape as
// errors: an unregistered name, a tool error, or a tool panic all come back
// as an error-flagged ToolResult.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) (result model.ToolResult) {
	r.dispatches++
	tool, ok := r.byName[name]
	if !ok {
		return model.ToolResult{
			Text:    fmt.Sprintf("Tool '%s' not found", name),
			IsError: true,
		}
	}

	defer func() {
		if rec := recover(); rec != nil {
			result = model.ToolResult{
				Text:    fmt.Sprintf("Tool execution failed: %v", rec),
				IsError: true,
			}
		}
	}()

	text, err := tool.Execute(ctx, args)
	if err != nil {
		return model.ToolResult{
			Text:    fmt.Sprintf("Tool execution failed: %s", err.Error()),
			IsError: true,
		}
	}
	return model.ToolResult{Text: text}
}

// Dispatches reports how many invocations this registry has routed,
// including ones that failed.
func (r *Registry) Dispatches() int {
	return r.dispatches
}

// LastSources returns the sources produced by the most recent search.
func (r *Registry) LastSources() []model.Source {
	return r.tracker.Last()
}

// ClearSources resets the tracker once the caller has consumed the batch.
func (r *Registry) ClearSources() {
	r.tracker.Clear()
}
