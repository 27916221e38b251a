package llm

import "github.com/moiesk/courserag/internal/model"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const (
	StopReasonEndTurn = "end_turn"
	StopReasonToolUse = "tool_use"
)

// ContentBlock is one entry in a message's content list. Type selects which
// fields are meaningful: "text" (Text), "tool_use" (ID, Name, Input), or
// "tool_result" (ToolUseID, Content, IsError).
type ContentBlock struct {
	Type      string         `json:"type"`
	Text      string         `json:"text,omitempty"`
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name,omitempty"`
	Input     map[string]any `json:"input,omitempty"`
	ToolUseID string         `json:"tool_use_id,omitempty"`
	Content   string         `json:"content,omitempty"`
	IsError   bool           `json:"is_error,omitempty"`
}

// Message is one role-tagged transcript entry.
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// UserText builds a user message holding a single text block.
func UserText(text string) Message {
	return Message{
		Role:    RoleUser,
		Content: []ContentBlock{{Type: "text", Text: text}},
	}
}

// ToolResultBlock builds the tool_result block that pairs a dispatch outcome
// with its originating tool_use id.
func ToolResultBlock(toolUseID string, result model.ToolResult) ContentBlock {
	return ContentBlock{
		Type:      "tool_result",
		ToolUseID: toolUseID,
		Content:   result.Text,
		IsError:   result.IsError,
	}
}

// CompletionRequest is one completion call. Tools are advertised only when
// non-empty; ToolChoiceAuto lets the model decide freely whether to call one.
type CompletionRequest struct {
	System         string
	Messages       []Message
	Tools          []model.ToolSpec
	ToolChoiceAuto bool
}

// CompletionResponse is the parsed outcome of one completion call. Content
// is the raw assistant content, suitable for appending to the transcript
// verbatim; ToolUses lists the tool invocations in request order.
type CompletionResponse struct {
	Text       string
	StopReason string
	Content    []ContentBlock
	ToolUses   []model.ToolUse
}
