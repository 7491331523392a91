package interfaces

import "github.com/ternarybob/capsa/internal/models"

// SearchResult pairs a retrieved chunk with its similarity score
type SearchResult struct {
	Chunk models.Chunk
	Score float64
}

// VectorIndex holds every chunk/embedding pair for the lifetime of the
// process and answers similarity queries over them. Implementations must be
// safe for concurrent use: searches may run in parallel, mutations are
// exclusive with everything else.
type VectorIndex interface {
	// Insert appends an entry. Inserting a chunk id that is already present
	// is a programming error and panics.
	Insert(chunk models.Chunk, embedding []float32)

	// RemoveByItem removes every entry belonging to the item; no-op if none
	RemoveByItem(itemID string)

	// Search returns up to k entries ordered by descending cosine similarity
	// to the query embedding. Ties are broken by insertion order, earlier
	// wins. An empty index returns an empty slice for any k.
	Search(embedding []float32, k int) []SearchResult

	// Size returns the number of entries currently held
	Size() int

	// Clear removes all entries
	Clear()
}
