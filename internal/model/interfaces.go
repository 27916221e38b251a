package model

import "context"

// CourseRetriever is the retrieval-backend contract the tools depend on.
// Implementations resolve fuzzy course names, run filtered similarity
// searches, and serve course metadata.
type CourseRetriever interface {
	// ResolveCourseName maps a user-typed, possibly partial course name to
	// the closest known exact title. Returns ErrCourseNotFound (possibly
	// wrapped) when no acceptable match exists.
	ResolveCourseName(ctx context.Context, name string) (string, error)

	// Search runs a filtered similarity search. Hits come back most-similar
	// first; filtering never re-sorts.
	Search(ctx context.Context, query string, filters SearchFilters, limit int) ([]SearchHit, error)

	// LessonLink returns the link for one lesson, or "" when none is known.
	LessonLink(ctx context.Context, courseTitle string, lessonNumber int) (string, error)

	// CourseMetadata returns the full course record for an exact title.
	CourseMetadata(ctx context.Context, courseTitle string) (Course, error)
}

// Embedder turns texts into vectors, one vector per input.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}
