// Package llm provides the Gemini and Claude provider clients behind the
// narrow embedding and generation contracts. The generation provider is
// selected by model-name prefix; embeddings always resolve to Gemini since
// Anthropic exposes no embedding endpoint.
package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/ternarybob/capsa/internal/common"
	"github.com/ternarybob/capsa/internal/interfaces"
)

// Factory constructs provider clients on demand. The underlying genai client
// is created once and shared between the embedder and a Gemini generator.
type Factory struct {
	config *common.Config
	logger arbor.ILogger

	mu           sync.Mutex
	geminiClient *genai.Client
}

var _ interfaces.LLMFactory = (*Factory)(nil)

// NewFactory creates a provider factory. Clients are constructed lazily so a
// missing API key only surfaces when the corresponding provider is used.
func NewFactory(config *common.Config, logger arbor.ILogger) *Factory {
	return &Factory{
		config: config,
		logger: logger,
	}
}

// EmbeddingClient returns the embedding provider for the configured model.
func (f *Factory) EmbeddingClient() (interfaces.EmbeddingClient, error) {
	model := f.config.LLM.EmbeddingModel
	if !strings.HasPrefix(model, "gemini") {
		return nil, fmt.Errorf("unsupported embedding model '%s': only gemini embedding models are available", model)
	}

	client, err := f.gemini()
	if err != nil {
		return nil, err
	}

	return newGeminiEmbedder(client, f.config, f.logger), nil
}

// GenerationClient returns the generation provider for the configured model.
func (f *Factory) GenerationClient() (interfaces.GenerationClient, error) {
	model := f.config.LLM.GenerationModel

	switch {
	case strings.HasPrefix(model, "claude"):
		return newClaudeGenerator(f.config, f.logger)

	case strings.HasPrefix(model, "gemini"):
		client, err := f.gemini()
		if err != nil {
			return nil, err
		}
		return newGeminiGenerator(client, f.config, f.logger), nil

	default:
		return nil, fmt.Errorf("unsupported generation model '%s': expected a gemini-* or claude-* model", model)
	}
}

// gemini returns the shared genai client, creating it on first use.
func (f *Factory) gemini() (*genai.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.geminiClient != nil {
		return f.geminiClient, nil
	}

	if f.config.LLM.GeminiAPIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY, CAPSA_GEMINI_API_KEY, or llm.gemini_api_key in config)")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  f.config.LLM.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	f.logger.Debug().
		Str("embedding_model", f.config.LLM.EmbeddingModel).
		Str("generation_model", f.config.LLM.GenerationModel).
		Msg("Gemini client initialized")

	f.geminiClient = client
	return client, nil
}
