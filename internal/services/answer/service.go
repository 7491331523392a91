// Package answer owns the read side of the pipeline: embed the question,
// retrieve the closest chunks, and generate an answer grounded in them.
package answer

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/ternarybob/capsa/internal/common"
	"github.com/ternarybob/capsa/internal/interfaces"
	"github.com/ternarybob/capsa/internal/models"
)

// snippetLength bounds citation snippets for display
const snippetLength = 200

// Service implements the AnswerService interface
type Service struct {
	config    *common.Config
	storage   interfaces.ItemStorage
	embedder  interfaces.EmbeddingService
	index     interfaces.VectorIndex
	generator interfaces.GenerationClient
	events    interfaces.EventService
	markdown  goldmark.Markdown
	logger    arbor.ILogger
}

var _ interfaces.AnswerService = (*Service)(nil)

// NewService wires the query pipeline. The index is constructor-injected,
// shared with the ingestion service.
func NewService(
	config *common.Config,
	storage interfaces.ItemStorage,
	embedder interfaces.EmbeddingService,
	index interfaces.VectorIndex,
	generator interfaces.GenerationClient,
	events interfaces.EventService,
	logger arbor.ILogger,
) *Service {
	return &Service{
		config:    config,
		storage:   storage,
		embedder:  embedder,
		index:     index,
		generator: generator,
		events:    events,
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
				html.WithXHTML(),
			),
		),
		logger: logger,
	}
}

// Answer runs the full query pipeline: embed, search, generate, cite.
func (s *Service) Answer(ctx context.Context, question string, maxResults int) (*models.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question is empty", models.ErrInvalidQuery)
	}
	if maxResults <= 0 {
		maxResults = s.config.Retrieval.MaxResults
	}

	start := time.Now()

	vectors, err := s.embedder.EmbedBatch(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	results := s.index.Search(vectors[0], maxResults)

	// An empty result set is not an error: generation still runs and the
	// prompt's empty-context policy produces the "I have nothing" answer
	contextBlocks, citations := s.buildContext(ctx, results)

	answerText, err := s.generator.Generate(ctx, systemPrompt, buildUserPrompt(question, contextBlocks))
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("model", s.generator.ModelName()).
			Msg("Generation call failed")
		return nil, fmt.Errorf("%w: %v", models.ErrGenerationUnavailable, err)
	}

	answer := &models.Answer{
		Text:      answerText,
		HTML:      s.renderHTML(answerText),
		Model:     s.generator.ModelName(),
		Citations: citations,
	}

	s.logger.Info().
		Str("model", answer.Model).
		Int("citations", len(citations)).
		Dur("duration", time.Since(start)).
		Msg("Question answered")

	s.events.Publish(ctx, models.Event{
		Type: models.EventQueryAnswered,
		Payload: map[string]interface{}{
			"question":  question,
			"citations": len(citations),
			"model":     answer.Model,
		},
	})

	return answer, nil
}

// buildContext turns search results into delimited prompt blocks and one
// citation per retrieved chunk, both in descending score order.
func (s *Service) buildContext(ctx context.Context, results []interfaces.SearchResult) ([]string, []models.Citation) {
	blocks := make([]string, 0, len(results))
	citations := make([]models.Citation, 0, len(results))

	for i, result := range results {
		item, err := s.storage.Get(ctx, result.Chunk.ItemID)
		if err != nil {
			// A chunk whose item vanished from the store points at a
			// delete that missed the index; skip it rather than cite a
			// ghost
			s.logger.Warn().
				Err(err).
				Str("item_id", result.Chunk.ItemID).
				Str("chunk_id", result.Chunk.ChunkID).
				Msg("Retrieved chunk has no stored item, skipping")
			continue
		}

		blocks = append(blocks, formatContextBlock(i+1, item, result))
		citations = append(citations, models.Citation{
			ItemID:     item.ID,
			SourceKind: item.SourceKind,
			OriginURL:  item.OriginURL,
			Title:      item.Title,
			Snippet:    snippet(result.Chunk.Text),
			Score:      result.Score,
		})
	}

	return blocks, citations
}

// snippet truncates chunk text for display, rune-safe
func snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= snippetLength {
		return text
	}
	return string(runes[:snippetLength]) + "..."
}

// renderHTML converts the markdown answer for browser clients. Rendering is
// presentation only, so a failure degrades to an empty HTML field rather
// than failing the query.
func (s *Service) renderHTML(markdown string) string {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(markdown), &buf); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to render answer markdown to HTML")
		return ""
	}
	return buf.String()
}
