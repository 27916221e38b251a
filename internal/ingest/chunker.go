package ingest

import (
	"regexp"
	"strings"
)

const (
	// DefaultChunkSize is the target chunk length in characters.
	DefaultChunkSize = 800
	// DefaultChunkOverlap is how many trailing characters of one chunk are
	// repeated at the start of the next.
	DefaultChunkOverlap = 100
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	sentenceRe   = regexp.MustCompile(`[^.!?]+[.!?]+["')\]]*\s*|[^.!?]+$`)
)

// ChunkText splits text into sentence-aligned chunks of roughly chunkSize
// characters. Consecutive chunks share a tail of about overlap characters so
// a sentence near a boundary stays retrievable from both sides.
func ChunkText(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = DefaultChunkOverlap
	}

	normalized := strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	if normalized == "" {
		return nil
	}

	sentences := splitSentences(normalized)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	start := 0
	for start < len(sentences) {
		end := start
		length := 0
		for end < len(sentences) {
			next := len(sentences[end])
			if length > 0 {
				next++ // joining space
			}
			if length+next > chunkSize && length > 0 {
				break
			}
			length += next
			end++
		}
		if end == start {
			// Single sentence longer than chunkSize: keep it whole.
			end = start + 1
		}
		chunks = append(chunks, strings.Join(sentences[start:end], " "))

		if end >= len(sentences) {
			break
		}
		start = nextStart(sentences, start, end, overlap)
	}
	return chunks
}

// nextStart backtracks from end so the next chunk re-reads up to overlap
// characters of this one, while always advancing past the previous start.
func nextStart(sentences []string, start, end, overlap int) int {
	next := end
	carried := 0
	for next > start+1 {
		candidate := len(sentences[next-1])
		if carried > 0 {
			candidate++
		}
		if carried+candidate > overlap {
			break
		}
		carried += candidate
		next--
	}
	return next
}

func splitSentences(text string) []string {
	matches := sentenceRe.FindAllString(text, -1)
	if len(matches) == 0 {
		return []string{text}
	}
	sentences := make([]string, 0, len(matches))
	for _, m := range matches {
		if s := strings.TrimSpace(m); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}
