package model

// Lesson is one entry in a course's ordered lesson list.
type Lesson struct {
	Number int    `json:"lesson_number"`
	Title  string `json:"lesson_title"`
	Link   string `json:"lesson_link,omitempty"`
}

// Course is the full metadata record for one ingested course.
type Course struct {
	Title      string   `json:"title"`
	Link       string   `json:"course_link,omitempty"`
	Instructor string   `json:"instructor,omitempty"`
	Lessons    []Lesson `json:"lessons"`
}

// CourseChunk is one indexable slice of course text. LessonNumber is -1 for
// text that precedes any lesson marker.
type CourseChunk struct {
	Content      string
	CourseTitle  string
	LessonNumber int
	Ordinal      int
}

// SearchHit is one similarity-search result in backend rank order.
// LessonNumber is -1 when the chunk carries no lesson metadata.
type SearchHit struct {
	Content      string
	CourseTitle  string
	LessonNumber int
	Score        float64
}

// SearchFilters restrict a similarity search. CourseTitle must already be an
// exact known title (resolve fuzzy names first); a nil LessonNumber means no
// lesson restriction.
type SearchFilters struct {
	CourseTitle  string
	LessonNumber *int
}

// ToolSpec advertises one tool to the completion model. InputSchema is the
// JSON-schema object sent verbatim on the wire; specs are immutable after
// registration.
type ToolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// ToolUse is a tool invocation requested by the completion model. ID is the
// opaque correlation id that pairs the eventual result with the request.
type ToolUse struct {
	ID    string
	Name  string
	Input map[string]any
}

// ToolResult is the materialized outcome of dispatching one tool use. Tool
// failures are carried as data, never as raised errors.
type ToolResult struct {
	Text    string
	IsError bool
}

// Source attributes a piece of answer content, e.g. "Intro to X - Lesson 1".
// Link is empty when no lesson link resolves.
type Source struct {
	Text string `json:"text"`
	Link string `json:"link,omitempty"`
}
