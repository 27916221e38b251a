package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/moiesk/courserag/internal/model"
)

const OutlineToolName = "get_course_outline"

// OutlineTool implements get_course_outline: it resolves a fuzzy course name
// and renders the course's structural metadata. Outlines are structural, not
// excerpted, content, so this tool never touches the SourceTracker.
type OutlineTool struct {
	store model.CourseRetriever
}

func NewOutlineTool(store model.CourseRetriever) *OutlineTool {
	return &OutlineTool{store: store}
}

func (t *OutlineTool) Spec() model.ToolSpec {
	return model.ToolSpec{
		Name:        OutlineToolName,
		Description: "Get the complete outline of a course including title, course link, and all lessons",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"course_name": map[string]any{
					"type":        "string",
					"description": "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
				},
			},
			"required": []string{"course_name"},
		},
	}
}

func (t *OutlineTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	courseName, err := requiredStringArg(args, "course_name")
	if err != nil {
		return "", err
	}

	title, err := t.store.ResolveCourseName(ctx, courseName)
	if err != nil {
		if errors.Is(err, model.ErrCourseNotFound) {
			return fmt.Sprintf("No course found matching '%s'", courseName), nil
		}
		return "", err
	}

	course, err := t.store.CourseMetadata(ctx, title)
	if err != nil {
		return "", err
	}

	lines := []string{course.Title}
	if course.Instructor != "" {
		lines = append(lines, "Instructor: "+course.Instructor)
	}
	if course.Link != "" {
		lines = append(lines, "Course Link: "+course.Link)
	}
	lines = append(lines, "Lessons:")

	lessons := make([]model.Lesson, len(course.Lessons))
	copy(lessons, course.Lessons)
	sort.Slice(lessons, func(i, j int) bool { return lessons[i].Number < lessons[j].Number })
	for _, lesson := range lessons {
		lines = append(lines, fmt.Sprintf("%d. %s", lesson.Number, lesson.Title))
	}

	return strings.Join(lines, "\n"), nil
}
