package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/moiesk/courserag/internal/model"
)

// CourseWriter is the slice of the vector store the ingest service needs.
type CourseWriter interface {
	AddCourse(ctx context.Context, course model.Course) error
	AddCourseChunks(ctx context.Context, chunks []model.CourseChunk) error
	ExistingCourseTitles(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
}

// Service loads course transcript documents into the store.
type Service struct {
	store        CourseWriter
	chunkSize    int
	chunkOverlap int
	log          zerolog.Logger
}

func NewService(store CourseWriter, chunkSize, chunkOverlap int, logger zerolog.Logger) *Service {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = DefaultChunkOverlap
	}
	return &Service{store: store, chunkSize: chunkSize, chunkOverlap: chunkOverlap, log: logger}
}

// AddCourseDocument ingests a single transcript file. It returns the parsed
// course and the number of chunks indexed.
func (s *Service) AddCourseDocument(ctx context.Context, path string) (model.Course, int, error) {
	course, chunks, err := ParseCourseDocument(path, s.chunkSize, s.chunkOverlap)
	if err != nil {
		return model.Course{}, 0, err
	}
	if err := s.store.AddCourse(ctx, course); err != nil {
		return model.Course{}, 0, fmt.Errorf("add course %q: %w", course.Title, err)
	}
	if err := s.store.AddCourseChunks(ctx, chunks); err != nil {
		return model.Course{}, 0, fmt.Errorf("add chunks for %q: %w", course.Title, err)
	}
	s.log.Info().Str("course", course.Title).Int("chunks", len(chunks)).Msg("course ingested")
	return course, len(chunks), nil
}

// AddCourseFolder ingests every transcript document in dir, skipping courses
// whose titles are already in the store. With clearExisting the store is
// wiped first. Returns the number of courses and chunks added.
func (s *Service) AddCourseFolder(ctx context.Context, dir string, clearExisting bool) (int, int, error) {
	if clearExisting {
		s.log.Info().Msg("clearing existing course data")
		if err := s.store.Clear(ctx); err != nil {
			return 0, 0, fmt.Errorf("clear store: %w", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("read course folder: %w", err)
	}

	existing, err := s.store.ExistingCourseTitles(ctx)
	if err != nil {
		return 0, 0, err
	}
	seen := make(map[string]bool, len(existing))
	for _, title := range existing {
		seen[title] = true
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !isCourseDocument(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	coursesAdded, chunksAdded := 0, 0
	for _, name := range names {
		path := filepath.Join(dir, name)
		course, chunks, err := ParseCourseDocument(path, s.chunkSize, s.chunkOverlap)
		if err != nil {
			s.log.Warn().Err(err).Str("file", name).Msg("skipping unreadable course document")
			continue
		}
		if seen[course.Title] {
			s.log.Debug().Str("course", course.Title).Msg("course already indexed, skipping")
			continue
		}
		if err := s.store.AddCourse(ctx, course); err != nil {
			return coursesAdded, chunksAdded, fmt.Errorf("add course %q: %w", course.Title, err)
		}
		if err := s.store.AddCourseChunks(ctx, chunks); err != nil {
			return coursesAdded, chunksAdded, fmt.Errorf("add chunks for %q: %w", course.Title, err)
		}
		seen[course.Title] = true
		coursesAdded++
		chunksAdded += len(chunks)
		s.log.Info().Str("course", course.Title).Int("chunks", len(chunks)).Msg("course ingested")
	}
	return coursesAdded, chunksAdded, nil
}

func isCourseDocument(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md":
		return true
	}
	return false
}
