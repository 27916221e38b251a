package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/moiesk/courserag/internal/model"
)

// scriptedEmbedder returns canned vectors keyed by exact input text.
type scriptedEmbedder struct {
	vectors map[string][]float32
}

func (f *scriptedEmbedder) Embed(_ context.Context, inputs []string) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i, in := range inputs {
		v, ok := f.vectors[in]
		if !ok {
			return nil, fmt.Errorf("no scripted vector for %q", in)
		}
		out[i] = v
	}
	return out, nil
}

func testEmbedder() *scriptedEmbedder {
	return &scriptedEmbedder{vectors: map[string][]float32{
		"MCP Course":    {1, 0, 0},
		"Python Course": {0, 1, 0},

		"MCP":     {0.9, 0.1, 0},
		"quantum": {0, 0, 1},

		"mcp lesson one text":  {1, 0, 0},
		"mcp lesson two text":  {0.8, 0.2, 0},
		"python basics text":   {0, 1, 0},
		"tell me about mcp":    {1, 0, 0},
		"tell me about python": {0, 1, 0},
	}}
}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := Open(dir, testEmbedder(), Options{Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, dir
}

func seedCourses(t *testing.T, store *Store) {
	t.Helper()
	ctx := context.Background()
	courses := []model.Course{
		{Title: "MCP Course", Lessons: []model.Lesson{
			{Number: 1, Title: "One", Link: "https://example.com/mcp/1"},
			{Number: 2, Title: "Two"},
		}},
		{Title: "Python Course"},
	}
	for _, c := range courses {
		if err := store.AddCourse(ctx, c); err != nil {
			t.Fatalf("AddCourse(%s) failed: %v", c.Title, err)
		}
	}
	chunks := []model.CourseChunk{
		{Content: "mcp lesson one text", CourseTitle: "MCP Course", LessonNumber: 1, Ordinal: 0},
		{Content: "mcp lesson two text", CourseTitle: "MCP Course", LessonNumber: 2, Ordinal: 1},
		{Content: "python basics text", CourseTitle: "Python Course", LessonNumber: 1, Ordinal: 0},
	}
	if err := store.AddCourseChunks(ctx, chunks); err != nil {
		t.Fatalf("AddCourseChunks failed: %v", err)
	}
}

func TestStoreSearchRanksAndFilters(t *testing.T) {
	store, _ := newTestStore(t)
	seedCourses(t, store)
	ctx := context.Background()

	hits, err := store.Search(ctx, "tell me about mcp", model.SearchFilters{}, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits", len(hits))
	}
	if hits[0].Content != "mcp lesson one text" || hits[1].Content != "mcp lesson two text" {
		t.Fatalf("ranking: %q then %q", hits[0].Content, hits[1].Content)
	}
	if hits[0].Score < hits[1].Score {
		t.Error("hits must stay in descending score order")
	}

	// Hard course filter drops other courses without re-sorting.
	hits, err = store.Search(ctx, "tell me about mcp", model.SearchFilters{CourseTitle: "Python Course"}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].CourseTitle != "Python Course" {
		t.Fatalf("course filter: %+v", hits)
	}

	lesson := 2
	hits, err = store.Search(ctx, "tell me about mcp", model.SearchFilters{CourseTitle: "MCP Course", LessonNumber: &lesson}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].LessonNumber != 2 {
		t.Fatalf("lesson filter: %+v", hits)
	}
}

func TestStoreResolveCourseName(t *testing.T) {
	store, _ := newTestStore(t)
	seedCourses(t, store)
	ctx := context.Background()

	title, err := store.ResolveCourseName(ctx, "MCP")
	if err != nil {
		t.Fatalf("ResolveCourseName failed: %v", err)
	}
	if title != "MCP Course" {
		t.Fatalf("got %q", title)
	}

	// The best match for an unrelated name scores below the floor.
	if _, err := store.ResolveCourseName(ctx, "quantum"); !errors.Is(err, model.ErrCourseNotFound) {
		t.Fatalf("got %v, want ErrCourseNotFound", err)
	}
}

func TestStoreMetadataAndAnalytics(t *testing.T) {
	store, _ := newTestStore(t)
	seedCourses(t, store)
	ctx := context.Background()

	course, err := store.CourseMetadata(ctx, "MCP Course")
	if err != nil {
		t.Fatal(err)
	}
	if len(course.Lessons) != 2 {
		t.Fatalf("lessons = %+v", course.Lessons)
	}

	link, err := store.LessonLink(ctx, "MCP Course", 1)
	if err != nil || link != "https://example.com/mcp/1" {
		t.Fatalf("LessonLink = %q, %v", link, err)
	}

	count, err := store.CourseCount(ctx)
	if err != nil || count != 2 {
		t.Fatalf("CourseCount = %d, %v", count, err)
	}
	titles, err := store.ExistingCourseTitles(ctx)
	if err != nil || len(titles) != 2 {
		t.Fatalf("titles = %v, %v", titles, err)
	}
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	store, dir := newTestStore(t)
	seedCourses(t, store)
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(dir, testEmbedder(), Options{Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	hits, err := reopened.Search(context.Background(), "tell me about python", model.SearchFilters{}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].Content != "python basics text" {
		t.Fatalf("reopened search: %+v", hits)
	}
}

func TestStoreClearWipesEverything(t *testing.T) {
	store, _ := newTestStore(t)
	seedCourses(t, store)
	ctx := context.Background()

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	count, err := store.CourseCount(ctx)
	if err != nil || count != 0 {
		t.Fatalf("count after Clear = %d, %v", count, err)
	}
	hits, err := store.Search(ctx, "tell me about mcp", model.SearchFilters{}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Fatalf("hits after Clear: %+v", hits)
	}
}
