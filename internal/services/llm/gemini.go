package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/ternarybob/capsa/internal/common"
	"github.com/ternarybob/capsa/internal/interfaces"
)

// GeminiEmbedder generates embeddings via Models.EmbedContent. One call
// carries the whole batch; failures surface as plain errors for the gateway
// to classify. No retries here.
type GeminiEmbedder struct {
	client    *genai.Client
	model     string
	dimension int
	timeout   time.Duration
	logger    arbor.ILogger
}

var _ interfaces.EmbeddingClient = (*GeminiEmbedder)(nil)

func newGeminiEmbedder(client *genai.Client, config *common.Config, logger arbor.ILogger) *GeminiEmbedder {
	return &GeminiEmbedder{
		client:    client,
		model:     config.LLM.EmbeddingModel,
		dimension: config.Embedding.Dimension,
		timeout:   common.Duration(config.Embedding.Timeout, 30*time.Second),
		logger:    logger,
	}
}

// EmbedBatch embeds texts in a single provider call and returns vectors in
// input order.
func (g *GeminiEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
	}

	var embedConfig *genai.EmbedContentConfig
	if g.dimension > 0 {
		dim := int32(g.dimension)
		embedConfig = &genai.EmbedContentConfig{
			OutputDimensionality: &dim,
		}
	}

	startTime := time.Now()
	result, err := g.client.Models.EmbedContent(timeoutCtx, g.model, contents, embedConfig)
	if err != nil {
		return nil, fmt.Errorf("gemini embedding call failed: %w", err)
	}

	if result == nil || len(result.Embeddings) != len(texts) {
		got := 0
		if result != nil {
			got = len(result.Embeddings)
		}
		return nil, fmt.Errorf("gemini returned %d embeddings for %d texts", got, len(texts))
	}

	vectors := make([][]float32, len(texts))
	for i, embedding := range result.Embeddings {
		if embedding == nil || len(embedding.Values) == 0 {
			return nil, fmt.Errorf("gemini returned an empty embedding at position %d", i)
		}
		vectors[i] = embedding.Values
	}

	g.logger.Debug().
		Int("batch_size", len(texts)).
		Int("dimension", len(vectors[0])).
		Dur("duration", time.Since(startTime)).
		Msg("Embedding batch completed")

	return vectors, nil
}

// ModelName returns the embedding model identifier.
func (g *GeminiEmbedder) ModelName() string {
	return g.model
}

// GeminiGenerator produces answers via Models.GenerateContent with the
// system prompt carried as SystemInstruction.
type GeminiGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	logger      arbor.ILogger
}

var _ interfaces.GenerationClient = (*GeminiGenerator)(nil)

func newGeminiGenerator(client *genai.Client, config *common.Config, logger arbor.ILogger) *GeminiGenerator {
	return &GeminiGenerator{
		client:      client,
		model:       config.LLM.GenerationModel,
		temperature: config.LLM.Temperature,
		maxTokens:   config.LLM.MaxTokens,
		timeout:     common.Duration(config.LLM.Timeout, 60*time.Second),
		logger:      logger,
	}
}

// Generate produces a completion for the prompt pair. A provider failure or
// an empty completion is returned as an error; the caller decides whether to
// classify it.
func (g *GeminiGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	generateConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
	}
	if g.maxTokens > 0 {
		generateConfig.MaxOutputTokens = int32(g.maxTokens)
	}
	if systemPrompt != "" {
		generateConfig.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	contents := []*genai.Content{genai.NewContentFromText(userPrompt, genai.RoleUser)}

	startTime := time.Now()
	resp, err := g.client.Models.GenerateContent(timeoutCtx, g.model, contents, generateConfig)
	if err != nil {
		return "", fmt.Errorf("gemini generation call failed: %w", err)
	}

	// Take the first candidate that carries text
	var response strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					response.WriteString(part.Text)
				}
			}
			if response.Len() > 0 {
				break
			}
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("gemini returned no text in response")
	}

	g.logger.Debug().
		Int("response_length", response.Len()).
		Dur("duration", time.Since(startTime)).
		Msg("Generation completed")

	return response.String(), nil
}

// ModelName returns the generation model identifier.
func (g *GeminiGenerator) ModelName() string {
	return g.model
}
