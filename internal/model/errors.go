package model

import "errors"

var (
	// ErrDuplicateTool rejects registering a second tool under a name that is
	// already taken; re-registration would silently shadow the first tool.
	ErrDuplicateTool = errors.New("tool name already registered")

	// ErrUnknownTool marks a dispatch request for a name that was never
	// registered.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrCourseNotFound marks a fuzzy course-name resolution with no
	// acceptable match. Tools translate it into the user-facing sentinel
	// text rather than propagating it.
	ErrCourseNotFound = errors.New("course not found")
)

// ProviderError describes a failed call to an external provider (completion
// or embedding API) with enough detail for callers to decide on retries.
type ProviderError struct {
	Code       string
	Message    string
	Retryable  bool
	StatusCode int
	Cause      error
}

func (e *ProviderError) Error() string {
	if e == nil {
		return ""
	}
	return e.Code + ": " + e.Message
}

func (e *ProviderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}
