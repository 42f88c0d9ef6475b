package search

import (
	"sort"
	"strings"
	"sync"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/dbctx"
)

type memoryIndex struct {
	mu   sync.RWMutex
	docs map[int64]map[string]int
}

// NewMemory builds a process-local token index, used with the sqlite driver
// and in tests.
func NewMemory() Index {
	return &memoryIndex{docs: make(map[int64]map[string]int)}
}

func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return fields
}

func (idx *memoryIndex) IndexDocument(_ dbctx.Context, documentID int64, content string) error {
	tokens := make(map[string]int)
	for _, t := range tokenize(content) {
		tokens[t]++
	}
	idx.mu.Lock()
	idx.docs[documentID] = tokens
	idx.mu.Unlock()
	return nil
}

func (idx *memoryIndex) Remove(_ dbctx.Context, documentID int64) error {
	idx.mu.Lock()
	delete(idx.docs, documentID)
	idx.mu.Unlock()
	return nil
}

// Search requires every query token to appear; results rank by total term
// frequency.
func (idx *memoryIndex) Search(_ dbctx.Context, query string, limit int) ([]int64, error) {
	terms := tokenize(query)
	if len(terms) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}

	type hit struct {
		id    int64
		score int
	}
	var hits []hit

	idx.mu.RLock()
	for id, tokens := range idx.docs {
		score := 0
		matched := true
		for _, term := range terms {
			n, ok := tokens[term]
			if !ok {
				matched = false
				break
			}
			score += n
		}
		if matched {
			hits = append(hits, hit{id: id, score: score})
		}
	}
	idx.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].id < hits[j].id
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]int64, len(hits))
	for i, h := range hits {
		out[i] = h.id
	}
	return out, nil
}
