// Package ingest turns course transcript documents into catalog metadata and
// indexable text chunks.
package ingest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/moiesk/courserag/internal/model"
)

// Transcript documents open with a three-line header:
//
//	Course Title: Introduction to Python
//	Course Link: https://example.com/python-intro
//	Course Instructor: Jane Doe
//
// followed by the course body, segmented by "Lesson N: Title" markers, each
// optionally followed by a "Lesson Link:" line.
var lessonMarkerRe = regexp.MustCompile(`^Lesson\s+(\d+):\s*(.*)$`)

const (
	titlePrefix      = "Course Title:"
	linkPrefix       = "Course Link:"
	instructorPrefix = "Course Instructor:"
	lessonLinkPrefix = "Lesson Link:"
)

// ParseCourseDocument reads one transcript file and returns the course
// metadata plus its content chunks, ready for indexing.
func ParseCourseDocument(path string, chunkSize, chunkOverlap int) (model.Course, []model.CourseChunk, error) {
	file, err := os.Open(path)
	if err != nil {
		return model.Course{}, nil, err
	}
	defer func() { _ = file.Close() }()

	course, chunks, err := parseCourse(file, chunkSize, chunkOverlap)
	if err != nil {
		return model.Course{}, nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return course, chunks, nil
}

func parseCourse(r io.Reader, chunkSize, chunkOverlap int) (model.Course, []model.CourseChunk, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var course model.Course
	headerDone := false

	// Per-lesson accumulation. lessonNumber -1 collects any preamble text
	// before the first lesson marker.
	lessonNumber := -1
	var lessonLines []string
	var chunks []model.CourseChunk

	flushLesson := func() {
		text := strings.TrimSpace(strings.Join(lessonLines, "\n"))
		lessonLines = lessonLines[:0]
		if text == "" {
			return
		}
		for _, piece := range ChunkText(text, chunkSize, chunkOverlap) {
			content := piece
			if lessonNumber >= 0 {
				content = fmt.Sprintf("Course %s Lesson %d content: %s", course.Title, lessonNumber, piece)
			} else {
				content = fmt.Sprintf("Course %s content: %s", course.Title, piece)
			}
			chunks = append(chunks, model.CourseChunk{
				Content:      content,
				CourseTitle:  course.Title,
				LessonNumber: lessonNumber,
				Ordinal:      len(chunks),
			})
		}
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		trimmed := strings.TrimSpace(line)

		if !headerDone {
			switch {
			case trimmed == "":
				continue
			case strings.HasPrefix(trimmed, titlePrefix):
				course.Title = strings.TrimSpace(strings.TrimPrefix(trimmed, titlePrefix))
				continue
			case strings.HasPrefix(trimmed, linkPrefix):
				course.Link = strings.TrimSpace(strings.TrimPrefix(trimmed, linkPrefix))
				continue
			case strings.HasPrefix(trimmed, instructorPrefix):
				course.Instructor = strings.TrimSpace(strings.TrimPrefix(trimmed, instructorPrefix))
				continue
			default:
				headerDone = true
			}
		}

		if m := lessonMarkerRe.FindStringSubmatch(trimmed); m != nil {
			flushLesson()
			number, err := strconv.Atoi(m[1])
			if err != nil {
				return model.Course{}, nil, fmt.Errorf("bad lesson number in %q", trimmed)
			}
			lessonNumber = number
			course.Lessons = append(course.Lessons, model.Lesson{Number: number, Title: strings.TrimSpace(m[2])})
			continue
		}

		if strings.HasPrefix(trimmed, lessonLinkPrefix) && len(course.Lessons) > 0 && len(lessonLines) == 0 {
			course.Lessons[len(course.Lessons)-1].Link = strings.TrimSpace(strings.TrimPrefix(trimmed, lessonLinkPrefix))
			continue
		}

		lessonLines = append(lessonLines, line)
	}
	if err := scanner.Err(); err != nil {
		return model.Course{}, nil, err
	}
	flushLesson()

	if course.Title == "" {
		return model.Course{}, nil, fmt.Errorf("missing %q header line", titlePrefix)
	}
	return course, chunks, nil
}
