// Package vectorstore implements the retrieval backend: a SQLite catalog of
// courses, lessons, and chunk text paired with two cosine-similarity vector
// indexes, one over course titles (for fuzzy name resolution) and one over
// content chunks (for similarity search).
package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/moiesk/courserag/internal/index"
	"github.com/moiesk/courserag/internal/model"
)

const (
	catalogDBName  = "catalog.sqlite"
	titleIndexName = "titles.vec"
	chunkIndexName = "chunks.vec"

	// DefaultMinResolveScore is the cosine floor below which the best title
	// match is treated as "no course found" rather than a wrong guess.
	DefaultMinResolveScore = 0.25

	// oversampleFactor widens the raw index search so hard filtering still
	// leaves enough candidates to fill the requested limit.
	oversampleFactor = 5
)

type Options struct {
	MinResolveScore float64
	Logger          zerolog.Logger
}

// Store is the full retrieval backend handed to the tools.
type Store struct {
	catalog    *CatalogStore
	embedder   model.Embedder
	titleIndex *index.VectorIndex
	chunkIndex *index.VectorIndex

	minResolveScore float64
	log             zerolog.Logger
}

// Open builds a Store rooted at stateDir, creating it if needed and loading
// any previously persisted indexes.
func Open(stateDir string, embedder model.Embedder, opts Options) (*Store, error) {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	catalog := NewCatalogStore(filepath.Join(stateDir, catalogDBName))
	if err := catalog.Init(context.Background()); err != nil {
		return nil, fmt.Errorf("initialize catalog store: %w", err)
	}

	titleIndex := index.NewVectorIndex(filepath.Join(stateDir, titleIndexName))
	if err := titleIndex.Load(""); err != nil {
		_ = catalog.Close()
		return nil, fmt.Errorf("load title index: %w", err)
	}

	chunkIndex := index.NewVectorIndex(filepath.Join(stateDir, chunkIndexName))
	if err := chunkIndex.Load(""); err != nil {
		_ = catalog.Close()
		_ = titleIndex.Close()
		return nil, fmt.Errorf("load chunk index: %w", err)
	}

	minScore := opts.MinResolveScore
	if minScore <= 0 {
		minScore = DefaultMinResolveScore
	}

	return &Store{
		catalog:         catalog,
		embedder:        embedder,
		titleIndex:      titleIndex,
		chunkIndex:      chunkIndex,
		minResolveScore: minScore,
		log:             opts.Logger,
	}, nil
}

// AddCourse stores course metadata and indexes its title vector.
func (s *Store) AddCourse(ctx context.Context, course model.Course) error {
	courseID, err := s.catalog.InsertCourse(ctx, course)
	if err != nil {
		return fmt.Errorf("insert course %q: %w", course.Title, err)
	}

	vectors, err := s.embedder.Embed(ctx, []string{course.Title})
	if err != nil {
		return fmt.Errorf("embed course title: %w", err)
	}
	if err := s.titleIndex.Add(uint64(courseID), vectors[0]); err != nil {
		return err
	}
	if err := s.titleIndex.Save(""); err != nil {
		return fmt.Errorf("persist title index: %w", err)
	}
	s.log.Info().Str("course", course.Title).Int("lessons", len(course.Lessons)).Msg("indexed course metadata")
	return nil
}

// AddCourseChunks stores chunk rows and indexes their content vectors.
func (s *Store) AddCourseChunks(ctx context.Context, chunks []model.CourseChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	ids, err := s.catalog.InsertChunks(ctx, chunks)
	if err != nil {
		return fmt.Errorf("insert chunks: %w", err)
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	for i, id := range ids {
		if err := s.chunkIndex.Add(uint64(id), vectors[i]); err != nil {
			return err
		}
	}
	if err := s.chunkIndex.Save(""); err != nil {
		return fmt.Errorf("persist chunk index: %w", err)
	}
	s.log.Info().Int("chunks", len(chunks)).Msg("indexed course content")
	return nil
}

// Search embeds the query, scans the chunk index with oversampling, applies
// the hard course/lesson filters without re-sorting, and returns up to limit
// hits in index rank order.
func (s *Store) Search(ctx context.Context, query string, filters model.SearchFilters, limit int) ([]model.SearchHit, error) {
	if limit <= 0 {
		limit = 5
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}

	labels, scores, err := s.chunkIndex.Search(vectors[0], limit*oversampleFactor)
	if err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return []model.SearchHit{}, nil
	}

	ids := make([]int64, len(labels))
	for i, label := range labels {
		ids[i] = int64(label)
	}
	rows, err := s.catalog.ChunksByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	hits := make([]model.SearchHit, 0, limit)
	for i, label := range labels {
		row, ok := rows[int64(label)]
		if !ok {
			continue
		}
		if filters.CourseTitle != "" && row.CourseTitle != filters.CourseTitle {
			continue
		}
		if filters.LessonNumber != nil && row.LessonNumber != *filters.LessonNumber {
			continue
		}
		hits = append(hits, model.SearchHit{
			Content:      row.Content,
			CourseTitle:  row.CourseTitle,
			LessonNumber: row.LessonNumber,
			Score:        float64(scores[i]),
		})
		if len(hits) >= limit {
			break
		}
	}
	return hits, nil
}

// ResolveCourseName maps a fuzzy course name to the closest known title via
// the title index. The best match must clear the configured score floor.
func (s *Store) ResolveCourseName(ctx context.Context, name string) (string, error) {
	vectors, err := s.embedder.Embed(ctx, []string{name})
	if err != nil {
		return "", err
	}

	labels, scores, err := s.titleIndex.Search(vectors[0], 1)
	if err != nil {
		return "", err
	}
	if len(labels) == 0 || float64(scores[0]) < s.minResolveScore {
		return "", fmt.Errorf("%w: %s", model.ErrCourseNotFound, name)
	}
	return s.catalog.CourseTitleByID(ctx, int64(labels[0]))
}

func (s *Store) LessonLink(ctx context.Context, courseTitle string, lessonNumber int) (string, error) {
	return s.catalog.LessonLink(ctx, courseTitle, lessonNumber)
}

func (s *Store) CourseMetadata(ctx context.Context, courseTitle string) (model.Course, error) {
	return s.catalog.CourseByTitle(ctx, courseTitle)
}

func (s *Store) CourseCount(ctx context.Context) (int, error) {
	return s.catalog.CourseCount(ctx)
}

func (s *Store) ExistingCourseTitles(ctx context.Context) ([]string, error) {
	return s.catalog.CourseTitles(ctx)
}

// Clear wipes the catalog and both indexes, persisting the empty state.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.catalog.Clear(ctx); err != nil {
		return err
	}
	s.titleIndex = index.NewVectorIndex(s.titleIndex.Path())
	s.chunkIndex = index.NewVectorIndex(s.chunkIndex.Path())
	return errors.Join(s.titleIndex.Save(""), s.chunkIndex.Save(""))
}

func (s *Store) Close() error {
	return errors.Join(
		s.catalog.Close(),
		s.titleIndex.Close(),
		s.chunkIndex.Close(),
	)
}
