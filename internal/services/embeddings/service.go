// Package embeddings provides the gateway between the pipeline and the
// embedding provider. It enforces the batch contract: results arrive in
// input order, every vector has the same dimension for the lifetime of the
// process, and any provider failure surfaces as ErrEmbeddingUnavailable.
package embeddings

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/capsa/internal/interfaces"
	"github.com/ternarybob/capsa/internal/models"
)

// Service implements EmbeddingService over an EmbeddingClient.
type Service struct {
	client interfaces.EmbeddingClient
	logger arbor.ILogger

	mu        sync.Mutex
	dimension int
}

var _ interfaces.EmbeddingService = (*Service)(nil)

// NewService creates an embedding gateway. A non-zero dimension pins the
// expected vector size up front; zero defers pinning to the first successful
// provider call.
func NewService(client interfaces.EmbeddingClient, dimension int, logger arbor.ILogger) *Service {
	return &Service{
		client:    client,
		dimension: dimension,
		logger:    logger,
	}
}

// EmbedBatch embeds texts in one provider call and returns vectors in input
// order. An empty batch returns an empty result without touching the
// provider. Provider failures are never retried here; retry policy belongs
// to callers.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	startTime := time.Now()
	vectors, err := s.client.EmbedBatch(ctx, texts)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Int("batch_size", len(texts)).
			Str("model", s.client.ModelName()).
			Msg("Embedding provider call failed")
		return nil, fmt.Errorf("%w: %v", models.ErrEmbeddingUnavailable, err)
	}

	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: provider returned %d vectors for %d texts", models.ErrEmbeddingUnavailable, len(vectors), len(texts))
	}

	s.checkDimensions(vectors)

	s.logger.Debug().
		Int("batch_size", len(texts)).
		Int("dimension", s.Dimension()).
		Dur("duration", time.Since(startTime)).
		Msg("Embedded batch")

	return vectors, nil
}

// Dimension returns the pinned embedding dimension, 0 before the first
// successful call when the config left it unpinned.
func (s *Service) Dimension() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dimension
}

// checkDimensions pins the dimension on first contact and panics on any
// disagreement afterwards. Mixed dimensions inside one process corrupt
// every similarity score, so this is a programming error, not a condition
// to recover from.
func (s *Service) checkDimensions(vectors [][]float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, vector := range vectors {
		if s.dimension == 0 {
			s.dimension = len(vector)
			s.logger.Info().
				Int("dimension", s.dimension).
				Str("model", s.client.ModelName()).
				Msg("Embedding dimension pinned from first provider response")
			continue
		}
		if len(vector) != s.dimension {
			panic(fmt.Sprintf("embedding gateway: vector %d has dimension %d, expected %d", i, len(vector), s.dimension))
		}
	}
}
