// Package index provides the in-process vector index that backs retrieval.
// The index lives entirely in memory and is rebuilt from the record store on
// startup; at the scale this service targets (low thousands of chunks) a
// full scan per query outperforms anything fancier.
package index

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/capsa/internal/interfaces"
	"github.com/ternarybob/capsa/internal/models"
)

// entry is one chunk/embedding pair. The L2 norm is computed once at insert
// so searches only pay for dot products.
type entry struct {
	chunk     models.Chunk
	embedding []float32
	norm      float64
}

// Service implements VectorIndex over a flat slice. Insertion order is
// preserved and doubles as the tie-break order for equal scores.
type Service struct {
	mu        sync.RWMutex
	entries   []entry
	chunkIDs  map[string]struct{}
	dimension int
	logger    arbor.ILogger
}

var _ interfaces.VectorIndex = (*Service)(nil)

// NewService creates an empty vector index.
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		chunkIDs: make(map[string]struct{}),
		logger:   logger,
	}
}

// Insert appends a chunk with its embedding. A duplicate chunk id or an
// embedding whose dimension disagrees with earlier entries is a programming
// error and panics.
func (s *Service) Insert(chunk models.Chunk, embedding []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.chunkIDs[chunk.ChunkID]; exists {
		panic(fmt.Sprintf("vector index: duplicate chunk id %s", chunk.ChunkID))
	}
	if s.dimension == 0 {
		s.dimension = len(embedding)
	} else if len(embedding) != s.dimension {
		panic(fmt.Sprintf("vector index: embedding dimension %d does not match index dimension %d", len(embedding), s.dimension))
	}

	// Copy so callers can reuse their buffer
	stored := make([]float32, len(embedding))
	copy(stored, embedding)

	s.chunkIDs[chunk.ChunkID] = struct{}{}
	s.entries = append(s.entries, entry{
		chunk:     chunk,
		embedding: stored,
		norm:      l2Norm(stored),
	})
}

// RemoveByItem removes every entry belonging to the item. Removing an item
// with no entries is a no-op.
func (s *Service) RemoveByItem(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	removed := 0
	for _, e := range s.entries {
		if e.chunk.ItemID == itemID {
			delete(s.chunkIDs, e.chunk.ChunkID)
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept

	if removed > 0 {
		s.logger.Debug().
			Str("item_id", itemID).
			Int("removed", removed).
			Int("remaining", len(s.entries)).
			Msg("Removed item entries from vector index")
	}
}

// Search returns up to k entries ordered by descending cosine similarity.
// Equal scores keep insertion order, earlier entries first. A zero-norm
// query or entry scores 0 against everything.
func (s *Service) Search(embedding []float32, k int) []interfaces.SearchResult {
	if k <= 0 {
		return []interfaces.SearchResult{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	queryNorm := l2Norm(embedding)

	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(s.entries))
	for i, e := range s.entries {
		scores[i] = scored{idx: i, score: cosine(embedding, queryNorm, e.embedding, e.norm)}
	}

	// Stable sort over insertion order gives the tie-break for free
	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].score > scores[b].score
	})

	if k > len(scores) {
		k = len(scores)
	}

	results := make([]interfaces.SearchResult, 0, k)
	for _, sc := range scores[:k] {
		e := s.entries[sc.idx]
		results = append(results, interfaces.SearchResult{
			Chunk: e.chunk,
			Score: sc.score,
		})
	}

	return results
}

// Size returns the number of entries currently held.
func (s *Service) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear removes all entries and unpins the dimension.
func (s *Service) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	s.chunkIDs = make(map[string]struct{})
	s.dimension = 0
}

// cosine computes cosine similarity with precomputed norms. Either vector
// having zero norm yields 0 rather than NaN.
func cosine(a []float32, aNorm float64, b []float32, bNorm float64) float64 {
	if aNorm == 0 || bNorm == 0 {
		return 0
	}

	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}

	return dot / (aNorm * bNorm)
}

// l2Norm computes the Euclidean norm of a vector.
func l2Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
