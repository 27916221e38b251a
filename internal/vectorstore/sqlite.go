package vectorstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/moiesk/courserag/internal/model"
)

// CatalogStore persists course metadata and chunk text in SQLite. Vectors
// live in the gob-backed indexes next to it; chunk_id and course_id are the
// index labels.
type CatalogStore struct {
	path string

	mu sync.Mutex
	db *sql.DB
}

func NewCatalogStore(path string) *CatalogStore {
	return &CatalogStore{path: path}
}

func (s *CatalogStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return err
	}

	schema := `
CREATE TABLE IF NOT EXISTS courses (
  course_id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL UNIQUE,
  instructor TEXT NOT NULL DEFAULT '',
  link TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS lessons (
  course_id INTEGER NOT NULL,
  lesson_number INTEGER NOT NULL,
  title TEXT NOT NULL,
  link TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (course_id, lesson_number)
);

CREATE TABLE IF NOT EXISTS chunks (
  chunk_id INTEGER PRIMARY KEY AUTOINCREMENT,
  course_title TEXT NOT NULL,
  lesson_number INTEGER NOT NULL DEFAULT -1,
  ordinal INTEGER NOT NULL DEFAULT 0,
  content TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chunks_course ON chunks(course_title);
CREATE INDEX IF NOT EXISTS idx_chunks_course_lesson ON chunks(course_title, lesson_number);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

// InsertCourse stores a course and its lessons, returning the new course id.
func (s *CatalogStore) InsertCourse(ctx context.Context, course model.Course) (int64, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(
		ctx,
		`INSERT INTO courses(title, instructor, link) VALUES(?, ?, ?)`,
		course.Title, course.Instructor, course.Link,
	)
	if err != nil {
		return 0, err
	}
	courseID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, lesson := range course.Lessons {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO lessons(course_id, lesson_number, title, link) VALUES(?, ?, ?, ?)`,
			courseID, lesson.Number, lesson.Title, lesson.Link,
		); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return courseID, nil
}

// InsertChunks stores chunk text rows and returns the assigned chunk ids in
// input order.
func (s *CatalogStore) InsertChunks(ctx context.Context, chunks []model.CourseChunk) ([]int64, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO chunks(course_title, lesson_number, ordinal, content) VALUES(?, ?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = stmt.Close() }()

	ids := make([]int64, 0, len(chunks))
	for _, chunk := range chunks {
		res, err := stmt.ExecContext(ctx, chunk.CourseTitle, chunk.LessonNumber, chunk.Ordinal, chunk.Content)
		if err != nil {
			return nil, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

type chunkRow struct {
	ChunkID      int64
	CourseTitle  string
	LessonNumber int
	Content      string
}

// ChunksByIDs fetches chunk rows for the given ids, keyed by chunk id.
func (s *CatalogStore) ChunksByIDs(ctx context.Context, ids []int64) (map[int64]chunkRow, error) {
	out := make(map[int64]chunkRow, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	db, err := s.ensureDB(ctx)
	if err != nil {
		return nil, err
	}

	stmt, err := db.PrepareContext(ctx, `SELECT chunk_id, course_title, lesson_number, content FROM chunks WHERE chunk_id = ?`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = stmt.Close() }()

	for _, id := range ids {
		var row chunkRow
		err := stmt.QueryRowContext(ctx, id).Scan(&row.ChunkID, &row.CourseTitle, &row.LessonNumber, &row.Content)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[id] = row
	}
	return out, nil
}

// CourseByID returns the course title for an index label.
func (s *CatalogStore) CourseTitleByID(ctx context.Context, courseID int64) (string, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return "", err
	}

	var title string
	err = db.QueryRowContext(ctx, `SELECT title FROM courses WHERE course_id = ?`, courseID).Scan(&title)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: course id %d", model.ErrCourseNotFound, courseID)
	}
	if err != nil {
		return "", err
	}
	return title, nil
}

// CourseByTitle returns the full course record for an exact title.
func (s *CatalogStore) CourseByTitle(ctx context.Context, title string) (model.Course, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return model.Course{}, err
	}

	var (
		courseID int64
		course   model.Course
	)
	err = db.QueryRowContext(
		ctx,
		`SELECT course_id, title, instructor, link FROM courses WHERE title = ?`,
		title,
	).Scan(&courseID, &course.Title, &course.Instructor, &course.Link)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Course{}, fmt.Errorf("%w: %s", model.ErrCourseNotFound, title)
	}
	if err != nil {
		return model.Course{}, err
	}

	rows, err := db.QueryContext(
		ctx,
		`SELECT lesson_number, title, link FROM lessons WHERE course_id = ? ORDER BY lesson_number`,
		courseID,
	)
	if err != nil {
		return model.Course{}, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var lesson model.Lesson
		if err := rows.Scan(&lesson.Number, &lesson.Title, &lesson.Link); err != nil {
			return model.Course{}, err
		}
		course.Lessons = append(course.Lessons, lesson)
	}
	return course, rows.Err()
}

// LessonLink returns the stored link for one lesson, or "" when unknown.
func (s *CatalogStore) LessonLink(ctx context.Context, courseTitle string, lessonNumber int) (string, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return "", err
	}

	var link string
	err = db.QueryRowContext(
		ctx,
		`SELECT l.link FROM lessons l JOIN courses c ON c.course_id = l.course_id
		 WHERE c.title = ? AND l.lesson_number = ?`,
		courseTitle, lessonNumber,
	).Scan(&link)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return link, nil
}

func (s *CatalogStore) CourseCount(ctx context.Context) (int, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return 0, err
	}
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *CatalogStore) CourseTitles(ctx context.Context) ([]string, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT title FROM courses ORDER BY course_id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	titles := make([]string, 0, 8)
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, err
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}

// Clear drops all catalog and chunk rows.
func (s *CatalogStore) Clear(ctx context.Context) error {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return err
	}
	for _, table := range []string{"chunks", "lessons", "courses"} {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func (s *CatalogStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *CatalogStore) ensureDB(ctx context.Context) (*sql.DB, error) {
	if err := s.Init(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, errors.New("sqlite db not initialized")
	}
	return s.db, nil
}
