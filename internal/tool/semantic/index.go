package semantic

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// Index is an in-memory cosine-similarity index over job snippets.
type Index struct {
	mu      sync.RWMutex
	entries []entry
}

type entry struct {
	jobID  string
	text   string
	vector []float64
}

// Hit is one search result; scores are cosine similarities in [-1, 1].
type Hit struct {
	JobID string
	Text  string
	Score float64
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{}
}

// Add inserts a snippet with its embedding.
func (i *Index) Add(jobID, text string, vector []float64) error {
	if len(vector) == 0 {
		return fmt.Errorf("empty vector for job %s", jobID)
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.entries = append(i.entries, entry{jobID: jobID, text: text, vector: vector})
	return nil
}

// Len returns the number of indexed snippets.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries)
}

// Search returns the top-k entries by cosine similarity, scores descending.
func (i *Index) Search(vector []float64, k int) ([]Hit, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("empty query vector")
	}
	if k <= 0 {
		k = 3
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	hits := make([]Hit, 0, len(i.entries))
	for _, e := range i.entries {
		score, err := cosine(vector, e.vector)
		if err != nil {
			return nil, err
		}
		hits = append(hits, Hit{JobID: e.jobID, Text: e.text, Score: score})
	}

	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Score > hits[b].Score })

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector dimension mismatch: %d vs %d", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
