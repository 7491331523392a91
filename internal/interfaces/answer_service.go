package interfaces

import (
	"context"

	"github.com/ternarybob/capsa/internal/models"
)

// AnswerService owns the read side of the pipeline: embedding a question,
// retrieving the most relevant chunks, and generating a grounded answer with
// one citation per retrieved chunk.
type AnswerService interface {
	// Answer runs the full query pipeline. maxResults <= 0 falls back to the
	// configured default. An empty index is not an error; the generation
	// model is still invoked and answers from its empty-context policy.
	Answer(ctx context.Context, question string, maxResults int) (*models.Answer, error)
}
