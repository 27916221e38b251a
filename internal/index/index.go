package index

import (
	"encoding/gob"
	"errors"
	"math"
	"os"
	"sort"
	"sync"
)

// VectorIndex is an in-memory cosine-similarity index over labeled vectors.
// The corpus of a course catalog is small, so exhaustive scoring beats the
// bookkeeping cost of an approximate structure. Persistence is a gob dump of
// the label->vector map, written atomically via tmp-and-rename.
type VectorIndex struct {
	path string

	mu      sync.RWMutex
	vectors map[uint64][]float32
}

// NewVectorIndex creates an empty index. path is used by Save/Load when they
// are called with an empty path argument.
func NewVectorIndex(path string) *VectorIndex {
	return &VectorIndex{
		path:    path,
		vectors: make(map[uint64][]float32),
	}
}

func (i *VectorIndex) Add(label uint64, vector []float32) error {
	if len(vector) == 0 {
		return errors.New("vector cannot be empty")
	}
	copied := make([]float32, len(vector))
	copy(copied, vector)

	i.mu.Lock()
	i.vectors[label] = copied
	i.mu.Unlock()
	return nil
}

func (i *VectorIndex) Remove(label uint64) {
	i.mu.Lock()
	delete(i.vectors, label)
	i.mu.Unlock()
}

// Path returns the default persistence path supplied at construction.
func (i *VectorIndex) Path() string {
	return i.path
}

// Len reports the number of stored vectors.
func (i *VectorIndex) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.vectors)
}

// Search returns up to k labels ranked most-similar first. Ties break on the
// smaller label so results are deterministic. Vectors whose dimension does
// not match the query are skipped.
func (i *VectorIndex) Search(vector []float32, k int) ([]uint64, []float32, error) {
	if len(vector) == 0 {
		return nil, nil, errors.New("query vector cannot be empty")
	}
	if k <= 0 {
		return []uint64{}, []float32{}, nil
	}

	type scored struct {
		label uint64
		score float32
	}

	i.mu.RLock()
	items := make([]scored, 0, len(i.vectors))
	for label, candidate := range i.vectors {
		if len(candidate) != len(vector) {
			continue
		}
		items = append(items, scored{label: label, score: cosineSimilarity(vector, candidate)})
	}
	i.mu.RUnlock()

	sort.Slice(items, func(a, b int) bool {
		if items[a].score == items[b].score {
			return items[a].label < items[b].label
		}
		return items[a].score > items[b].score
	})
	if len(items) > k {
		items = items[:k]
	}

	labels := make([]uint64, len(items))
	scores := make([]float32, len(items))
	for idx, item := range items {
		labels[idx] = item.label
		scores[idx] = item.score
	}
	return labels, scores, nil
}

func (i *VectorIndex) Save(path string) error {
	if path == "" {
		path = i.path
	}
	if path == "" {
		return errors.New("path is required")
	}

	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return err
	}

	i.mu.RLock()
	err = gob.NewEncoder(file).Encode(i.vectors)
	i.mu.RUnlock()
	if err != nil {
		closeErr := file.Close()
		_ = os.Remove(tmpPath)
		return errors.Join(err, closeErr)
	}
	if err := file.Sync(); err != nil {
		closeErr := file.Close()
		_ = os.Remove(tmpPath)
		return errors.Join(err, closeErr)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// Load replaces the index contents from path. A missing file is not an
// error; the index simply starts empty.
func (i *VectorIndex) Load(path string) error {
	if path == "" {
		path = i.path
	}
	if path == "" {
		return errors.New("path is required")
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer func() { _ = file.Close() }()

	loaded := make(map[uint64][]float32)
	if err := gob.NewDecoder(file).Decode(&loaded); err != nil {
		return err
	}

	i.mu.Lock()
	i.vectors = loaded
	i.mu.Unlock()
	return nil
}

func (i *VectorIndex) Close() error {
	return nil
}

func cosineSimilarity(a, b []float32) float32 {
	var dot, magA, magB float32
	for idx := range a {
		dot += a[idx] * b[idx]
		magA += a[idx] * a[idx]
		magB += b[idx] * b[idx]
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / float32(math.Sqrt(float64(magA*magB)))
}
