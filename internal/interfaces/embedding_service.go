package interfaces

import "context"

// EmbeddingService converts ordered batches of text into fixed-dimension
// vectors. It enforces the single-dimensionality invariant: every vector
// returned over the lifetime of the process has the same length, and a
// provider returning anything else is a programming error, not a runtime
// state. Provider failures surface as models.ErrEmbeddingUnavailable.
type EmbeddingService interface {
	// EmbedBatch returns one vector per text, same order and count as the
	// input. An empty batch returns an empty result without a provider call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the pinned vector dimensionality, or 0 if no call
	// has pinned it yet
	Dimension() int
}
