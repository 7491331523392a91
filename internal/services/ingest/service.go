// Package ingest owns the write side of the pipeline: turning notes and
// URLs into stored items with indexed chunks, and removing them again.
// Visible state is all-or-nothing: a failed ingest never leaves an item in
// the record store without its chunks in the index.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/capsa/internal/common"
	"github.com/ternarybob/capsa/internal/interfaces"
	"github.com/ternarybob/capsa/internal/models"
)

// Service implements the IngestService interface
type Service struct {
	config    *common.Config
	storage   interfaces.ItemStorage
	extractor interfaces.ExtractorService
	chunker   interfaces.Chunker
	embedder  interfaces.EmbeddingService
	index     interfaces.VectorIndex
	events    interfaces.EventService
	logger    arbor.ILogger
}

var _ interfaces.IngestService = (*Service)(nil)

// NewService wires the ingestion pipeline. All collaborators are required;
// the index is constructor-injected and never reached through a global.
func NewService(
	config *common.Config,
	storage interfaces.ItemStorage,
	extractor interfaces.ExtractorService,
	chunker interfaces.Chunker,
	embedder interfaces.EmbeddingService,
	index interfaces.VectorIndex,
	events interfaces.EventService,
	logger arbor.ILogger,
) *Service {
	return &Service{
		config:    config,
		storage:   storage,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		index:     index,
		events:    events,
		logger:    logger,
	}
}

// Ingest creates a new item from the given source and indexes its chunks.
func (s *Service) Ingest(ctx context.Context, kind models.SourceKind, content string) (*models.Item, error) {
	switch kind {
	case models.SourceNote:
		return s.ingestNote(ctx, content)
	case models.SourceURL:
		return s.ingestURL(ctx, content)
	default:
		return nil, fmt.Errorf("%w: unknown source kind %q", models.ErrInvalidContent, kind)
	}
}

func (s *Service) ingestNote(ctx context.Context, content string) (*models.Item, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: note text is empty", models.ErrInvalidContent)
	}

	maxChars := s.config.Ingest.MaxNoteChars
	if length := utf8.RuneCountInString(content); length > maxChars {
		return nil, fmt.Errorf("%w: note text is %d characters, maximum is %d", models.ErrInvalidContent, length, maxChars)
	}

	item := &models.Item{
		ID:         common.NewItemID(),
		SourceKind: models.SourceNote,
		RawText:    content,
		CreatedAt:  time.Now().UTC(),
	}

	return s.store(ctx, item)
}

func (s *Service) ingestURL(ctx context.Context, pageURL string) (*models.Item, error) {
	pageURL = strings.TrimSpace(pageURL)
	if pageURL == "" {
		return nil, fmt.Errorf("%w: url is empty", models.ErrInvalidContent)
	}

	// Nothing is stored until extraction has produced text
	result, err := s.extractor.Extract(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	item := &models.Item{
		ID:         common.NewItemID(),
		SourceKind: models.SourceURL,
		OriginURL:  pageURL,
		Title:      result.Title,
		RawText:    result.Text,
		CreatedAt:  time.Now().UTC(),
	}

	return s.store(ctx, item)
}

// store runs the persist -> chunk -> embed -> index tail of the pipeline.
// If embedding fails after the item was persisted, the item is rolled back:
// a stored item with zero indexed chunks must never be observable.
func (s *Service) store(ctx context.Context, item *models.Item) (*models.Item, error) {
	if err := s.storage.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to store item: %w", err)
	}

	fragments := s.chunker.Chunk(item.RawText)
	chunks := make([]models.Chunk, len(fragments))
	texts := make([]string, len(fragments))
	for i, fragment := range fragments {
		chunks[i] = models.Chunk{
			ChunkID:     common.NewChunkID(),
			ItemID:      item.ID,
			Text:        fragment.Text,
			StartOffset: fragment.StartOffset,
			EndOffset:   fragment.EndOffset,
		}
		texts[i] = fragment.Text
	}

	if len(chunks) > 0 {
		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			s.rollback(ctx, item.ID)
			return nil, fmt.Errorf("failed to embed item %s: %w", item.ID, err)
		}

		for i := range chunks {
			s.index.Insert(chunks[i], vectors[i])
		}
	}

	s.logger.Info().
		Str("item_id", item.ID).
		Str("source_kind", string(item.SourceKind)).
		Int("chunks", len(chunks)).
		Msg("Item ingested")

	s.events.Publish(ctx, models.Event{
		Type: models.EventItemIngested,
		Payload: map[string]interface{}{
			"item_id":     item.ID,
			"source_kind": item.SourceKind,
			"title":       item.Title,
			"chunks":      len(chunks),
		},
	})

	return item, nil
}

// rollback removes a half-ingested item from the record store
func (s *Service) rollback(ctx context.Context, itemID string) {
	if err := s.storage.Delete(ctx, itemID); err != nil && !errors.Is(err, models.ErrNotFound) {
		// The item is now visible without indexed chunks; loud so an
		// operator can remove it by hand
		s.logger.Error().
			Err(err).
			Str("item_id", itemID).
			Msg("Failed to roll back item after embedding failure")
	}
}

// Delete removes the item from the record store and its chunks from the
// index.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.storage.Delete(ctx, id); err != nil {
		return err
	}

	s.index.RemoveByItem(id)

	s.logger.Info().
		Str("item_id", id).
		Msg("Item deleted")

	s.events.Publish(ctx, models.Event{
		Type:    models.EventItemDeleted,
		Payload: map[string]interface{}{"item_id": id},
	})

	return nil
}

// RebuildIndex repopulates the vector index from the record store. Per-item
// failures are logged and counted, never fatal, so a provider outage at
// startup leaves a partially filled index rather than a dead process.
func (s *Service) RebuildIndex(ctx context.Context) (*interfaces.RebuildResult, error) {
	s.index.Clear()

	items, err := s.storage.List(ctx, "", 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list items for rebuild: %w", err)
	}

	result := &interfaces.RebuildResult{}
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		fragments := s.chunker.Chunk(item.RawText)
		if len(fragments) == 0 {
			result.Items++
			continue
		}

		texts := make([]string, len(fragments))
		for i, fragment := range fragments {
			texts[i] = fragment.Text
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("item_id", item.ID).
				Msg("Skipping item during index rebuild")
			result.Skipped++
			continue
		}

		for i, fragment := range fragments {
			s.index.Insert(models.Chunk{
				ChunkID:     common.NewChunkID(),
				ItemID:      item.ID,
				Text:        fragment.Text,
				StartOffset: fragment.StartOffset,
				EndOffset:   fragment.EndOffset,
			}, vectors[i])
		}

		result.Items++
		result.Chunks += len(fragments)
	}

	s.logger.Info().
		Int("items", result.Items).
		Int("chunks", result.Chunks).
		Int("skipped", result.Skipped).
		Msg("Vector index rebuilt")

	s.events.Publish(ctx, models.Event{
		Type: models.EventIndexRebuilt,
		Payload: map[string]interface{}{
			"items":   result.Items,
			"chunks":  result.Chunks,
			"skipped": result.Skipped,
		},
	})

	return result, nil
}

// Refresh re-extracts a url item's page and re-ingests it under a new id.
// Extraction runs before anything is removed so an unreachable page keeps
// the stale copy instead of losing it.
func (s *Service) Refresh(ctx context.Context, id string) (*models.Item, error) {
	item, err := s.storage.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if item.SourceKind != models.SourceURL {
		return nil, fmt.Errorf("%w: item %s is a %s, only url items can be refreshed", models.ErrInvalidContent, id, item.SourceKind)
	}

	result, err := s.extractor.Extract(ctx, item.OriginURL)
	if err != nil {
		return nil, err
	}

	if err := s.Delete(ctx, id); err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to remove stale item %s: %w", id, err)
	}

	fresh := &models.Item{
		ID:         common.NewItemID(),
		SourceKind: models.SourceURL,
		OriginURL:  item.OriginURL,
		Title:      result.Title,
		RawText:    result.Text,
		CreatedAt:  time.Now().UTC(),
	}

	return s.store(ctx, fresh)
}
