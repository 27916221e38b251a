package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/moiesk/courserag/internal/model"
)

const SearchToolName = "search_course_content"

const defaultMaxResults = 5

// SearchTool implements search_course_content: a filtered similarity search
// over chunked course text with fuzzy course-name resolution and lesson
// scoping. Successful searches overwrite the shared SourceTracker with one
// source per hit; "no match" outcomes leave the tracker untouched.
type SearchTool struct {
	store      model.CourseRetriever
	tracker    *SourceTracker
	maxResults int
}

func NewSearchTool(store model.CourseRetriever, tracker *SourceTracker, maxResults int) *SearchTool {
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	return &SearchTool{store: store, tracker: tracker, maxResults: maxResults}
}

func (t *SearchTool) Spec() model.ToolSpec {
	return model.ToolSpec{
		Name:        SearchToolName,
		Description: "Search course materials with smart course name matching and lesson filtering",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "What to search for in the course content",
				},
				"course_name": map[string]any{
					"type":        "string",
					"description": "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
				},
				"lesson_number": map[string]any{
					"type":        "integer",
					"description": "Specific lesson number to search within (e.g. 1, 2, 3)",
				},
			},
			"required": []string{"query"},
		},
	}
}

func (t *SearchTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	query, err := requiredStringArg(args, "query")
	if err != nil {
		return "", err
	}
	courseName, err := optionalStringArg(args, "course_name")
	if err != nil {
		return "", err
	}
	lessonNumber, err := optionalIntArg(args, "lesson_number")
	if err != nil {
		return "", err
	}

	var filters model.SearchFilters
	if courseName != "" {
		title, resolveErr := t.store.ResolveCourseName(ctx, courseName)
		if resolveErr != nil {
			if errors.Is(resolveErr, model.ErrCourseNotFound) {
				return fmt.Sprintf("No course found matching '%s'", courseName), nil
			}
			return "", resolveErr
		}
		filters.CourseTitle = title
	}
	filters.LessonNumber = lessonNumber

	hits, err := t.store.Search(ctx, query, filters, t.maxResults)
	if err != nil {
		return "", err
	}
	if len(hits) == 0 {
		return noContentMessage(filters.CourseTitle, lessonNumber), nil
	}

	blocks := make([]string, 0, len(hits))
	sources := make([]model.Source, 0, len(hits))
	for _, hit := range hits {
		header := hit.CourseTitle
		if hit.LessonNumber >= 0 {
			header = fmt.Sprintf("%s - Lesson %d", hit.CourseTitle, hit.LessonNumber)
		}
		blocks = append(blocks, fmt.Sprintf("[%s]\n%s", header, hit.Content))

		source := model.Source{Text: header}
		if hit.LessonNumber >= 0 {
			// Link lookup is best-effort; a missing link still attributes.
			if link, linkErr := t.store.LessonLink(ctx, hit.CourseTitle, hit.LessonNumber); linkErr == nil {
				source.Link = link
			}
		}
		sources = append(sources, source)
	}

	t.tracker.Set(sources)
	return strings.Join(blocks, "\n\n"), nil
}

func noContentMessage(courseTitle string, lessonNumber *int) string {
	var sb strings.Builder
	sb.WriteString("No relevant content found")
	if courseTitle != "" {
		fmt.Fprintf(&sb, " in course '%s'", courseTitle)
	}
	if lessonNumber != nil {
		fmt.Fprintf(&sb, " in lesson %d", *lessonNumber)
	}
	return sb.String()
}
