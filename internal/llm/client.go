package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/moiesk/courserag/internal/model"
)

const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-sonnet-4-20250514"
	DefaultMaxTokens = 800

	apiVersion   = "2023-06-01"
	messagesPath = "/v1/messages"
)

// Client talks to the Anthropic Messages API. Completion parameters mirror
// the product defaults: temperature 0 and a small max_tokens budget.
type Client struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int

	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	HTTPClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:        strings.TrimRight(baseURL, "/"),
		APIKey:         apiKey,
		Model:          DefaultModel,
		MaxTokens:      DefaultMaxTokens,
		MaxRetries:     2,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     8 * time.Second,
		HTTPClient:     &http.Client{Timeout: 120 * time.Second},
	}
}

type messagesRequest struct {
	Model       string            `json:"model"`
	MaxTokens   int               `json:"max_tokens"`
	Temperature float64           `json:"temperature"`
	System      string            `json:"system,omitempty"`
	Messages    []Message         `json:"messages"`
	Tools       []model.ToolSpec  `json:"tools,omitempty"`
	ToolChoice  map[string]string `json:"tool_choice,omitempty"`
}

type messagesResponse struct {
	Content    []ContentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

type apiErrorBody struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete runs one completion call against the current transcript. Failures
// come back as *model.ProviderError so the orchestrator can apply its
// round-dependent failure policy.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	body := messagesRequest{
		Model:     c.Model,
		MaxTokens: c.MaxTokens,
		System:    req.System,
		Messages:  req.Messages,
	}
	if len(req.Tools) > 0 {
		body.Tools = req.Tools
		if req.ToolChoiceAuto {
			body.ToolChoice = map[string]string{"type": "auto"}
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &model.ProviderError{Code: "ENCODE_FAILED", Message: err.Error(), Cause: err}
	}

	backoff := c.InitialBackoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	var lastErr *model.ProviderError
	attempts := c.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, &model.ProviderError{Code: "CANCELLED", Message: ctx.Err().Error(), Cause: ctx.Err()}
			case <-time.After(backoff):
			}
			backoff *= 2
			if c.MaxBackoff > 0 && backoff > c.MaxBackoff {
				backoff = c.MaxBackoff
			}
		}

		resp, perr := c.doMessages(ctx, payload)
		if perr == nil {
			return resp, nil
		}
		lastErr = perr
		if !perr.Retryable {
			return nil, perr
		}
	}
	return nil, lastErr
}

func (c *Client) doMessages(ctx context.Context, payload []byte) (*CompletionResponse, *model.ProviderError) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+messagesPath, bytes.NewReader(payload))
	if err != nil {
		return nil, &model.ProviderError{Code: "REQUEST_FAILED", Message: err.Error(), Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.APIKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	httpResp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, &model.ProviderError{Code: "TRANSPORT_FAILED", Message: err.Error(), Retryable: true, Cause: err}
	}
	defer func() { _ = httpResp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<22))
	if err != nil {
		return nil, &model.ProviderError{Code: "READ_FAILED", Message: err.Error(), Retryable: true, Cause: err}
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, apiError(httpResp.StatusCode, raw)
	}

	var parsed messagesResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &model.ProviderError{Code: "DECODE_FAILED", Message: err.Error(), Cause: err}
	}

	out := &CompletionResponse{
		StopReason: parsed.StopReason,
		Content:    parsed.Content,
	}
	texts := make([]string, 0, len(parsed.Content))
	for _, block := range parsed.Content {
		switch block.Type {
		case "text":
			texts = append(texts, block.Text)
		case "tool_use":
			input := block.Input
			if input == nil {
				input = map[string]any{}
			}
			out.ToolUses = append(out.ToolUses, model.ToolUse{
				ID:    block.ID,
				Name:  block.Name,
				Input: input,
			})
		}
	}
	out.Text = strings.Join(texts, "\n")
	return out, nil
}

func apiError(status int, raw []byte) *model.ProviderError {
	code := "API_ERROR"
	message := strings.TrimSpace(string(raw))
	var body apiErrorBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Error.Message != "" {
		message = body.Error.Message
		if body.Error.Type != "" {
			code = strings.ToUpper(body.Error.Type)
		}
	}
	if message == "" {
		message = fmt.Sprintf("unexpected status %d", status)
	}
	return &model.ProviderError{
		Code:       code,
		Message:    message,
		Retryable:  status == http.StatusTooManyRequests || status >= 500,
		StatusCode: status,
	}
}
