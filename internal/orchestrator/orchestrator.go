package orchestrator

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/moiesk/courserag/internal/llm"
	"github.com/moiesk/courserag/internal/model"
)

// DefaultMaxRounds bounds the tool-calling loop: enough for the documented
// two-hop pattern (outline first, then a targeted search) without letting
// cost or latency run away.
const DefaultMaxRounds = 2

// Degraded responses for faults after a usable first round. Once round 1
// succeeded the caller always receives text, never a raised fault.
const (
	msgUnableToSearch     = "Unable to complete additional searches. Please try rephrasing your query."
	msgSearchError        = "Search encountered an error. Please try rephrasing your query."
	msgUnableToSynthesize = "Unable to synthesize final response. Please try rephrasing your query."
)

// CompletionService is the LLM boundary. Errors must be catchable values;
// the orchestrator decides per round whether to propagate or degrade.
type CompletionService interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error)
}

// ToolDispatcher routes tool invocations. Individual tool failures are
// materialized inside the returned ToolResult, never raised.
type ToolDispatcher interface {
	Dispatch(ctx context.Context, name string, args map[string]any) model.ToolResult
}

// Orchestrator drives the bounded multi-round completion loop: call the
// model, execute any requested tools, fold the results back into the
// transcript, and terminate with final answer text. It is stateless across
// calls; conversation continuity enters only through AnswerOptions.History.
type Orchestrator struct {
	client CompletionService
	log    zerolog.Logger
}

func New(client CompletionService, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{client: client, log: logger}
}

// AnswerOptions carries the per-call collaborators. Tools are advertised to
// the model only when both Tools and Dispatcher are supplied.
type AnswerOptions struct {
	History    string
	Tools      []model.ToolSpec
	Dispatcher ToolDispatcher
	MaxRounds  int
}

// Answer runs the loop for one user query and returns the final answer text.
// First-round transport or orchestration faults propagate to the caller;
// later-round faults degrade to a fixed apology string, because a usable
// first round already happened.
func (o *Orchestrator) Answer(ctx context.Context, query string, opts AnswerOptions) (string, error) {
	maxRounds := opts.MaxRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}

	system := systemPrompt
	if opts.History != "" {
		system = systemPrompt + "\n\nPrevious conversation:\n" + opts.History
	}

	toolsAvailable := len(opts.Tools) > 0 && opts.Dispatcher != nil
	messages := []llm.Message{llm.UserText(query)}
	roundsCompleted := 0

	for roundsCompleted < maxRounds {
		req := llm.CompletionRequest{System: system, Messages: messages}
		if toolsAvailable {
			req.Tools = opts.Tools
			req.ToolChoiceAuto = true
		}

		resp, err := o.client.Complete(ctx, req)
		if err != nil {
			if roundsCompleted == 0 {
				return "", err
			}
			o.log.Warn().Err(err).Int("round", roundsCompleted+1).Msg("completion failed after a usable round, degrading")
			return msgUnableToSearch, nil
		}
		roundsCompleted++

		if resp.StopReason == llm.StopReasonToolUse && opts.Dispatcher != nil {
			updated, execErr := o.executeToolUses(ctx, messages, resp, opts.Dispatcher)
			if execErr != nil {
				if roundsCompleted == 1 {
					return "", execErr
				}
				o.log.Warn().Err(execErr).Int("round", roundsCompleted).Msg("tool dispatch failed after a usable round, degrading")
				return msgSearchError, nil
			}
			messages = updated
			continue
		}

		// No tool use requested: terminate early without burning rounds.
		return resp.Text, nil
	}

	// Budget exhausted while the model kept asking for tools. One last call
	// with tools withheld forces a natural-language synthesis of whatever
	// tool results are already in the transcript.
	resp, err := o.client.Complete(ctx, llm.CompletionRequest{System: system, Messages: messages})
	if err != nil {
		o.log.Warn().Err(err).Msg("final synthesis call failed, degrading")
		return msgUnableToSynthesize, nil
	}
	return resp.Text, nil
}

// executeToolUses appends the assistant's tool-use content to the transcript,
// dispatches every requested invocation in order, and appends one tool_result
// entry per invocation with its correlation id preserved. A malformed
// response is an orchestration-level fault, distinct from an individual
// tool's own failure.
func (o *Orchestrator) executeToolUses(ctx context.Context, messages []llm.Message, resp *llm.CompletionResponse, dispatcher ToolDispatcher) ([]llm.Message, error) {
	if len(resp.ToolUses) == 0 {
		return nil, fmt.Errorf("tool use requested but response carries no tool invocations")
	}

	updated := append(messages, llm.Message{Role: llm.RoleAssistant, Content: resp.Content})

	results := make([]llm.ContentBlock, 0, len(resp.ToolUses))
	for _, use := range resp.ToolUses {
		if use.Name == "" {
			return nil, fmt.Errorf("tool use %q carries no tool name", use.ID)
		}
		result := dispatcher.Dispatch(ctx, use.Name, use.Input)
		o.log.Debug().Str("tool", use.Name).Bool("is_error", result.IsError).Msg("dispatched tool")
		results = append(results, llm.ToolResultBlock(use.ID, result))
	}

	return append(updated, llm.Message{Role: llm.RoleUser, Content: results}), nil
}
