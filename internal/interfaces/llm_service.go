package interfaces

import "context"

// EmbeddingClient is the narrow contract a provider SDK must satisfy to
// serve as the embedding model. Implementations perform exactly one attempt
// per call; retry policy, if any, belongs to callers.
type EmbeddingClient interface {
	// EmbedBatch returns one vector per input text, same order and count
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// ModelName returns the provider model identifier
	ModelName() string
}

// GenerationClient is the narrow contract a provider SDK must satisfy to
// serve as the generation model. One attempt per call, no internal retry.
type GenerationClient interface {
	// Generate produces a completion for the user prompt under the given
	// system instruction
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// ModelName returns the provider model identifier
	ModelName() string
}

// LLMFactory resolves configured model names to provider clients
type LLMFactory interface {
	// EmbeddingClient returns the client for the configured embedding model
	EmbeddingClient() (EmbeddingClient, error)

	// GenerationClient returns the client for the configured generation model
	GenerationClient() (GenerationClient, error)
}
