package ingest

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ternarybob/capsa/internal/interfaces"
	"github.com/ternarybob/capsa/internal/models"
)

// importEntry is one record of a YAML seed file. Notes carry their text in
// content; url entries may use either content or the url key.
type importEntry struct {
	Kind    string `yaml:"kind"`
	Content string `yaml:"content"`
	URL     string `yaml:"url"`
}

// ImportFile bulk-ingests entries from a YAML seed file through the normal
// pipeline. Per-entry failures are collected and reported, never fatal.
func (s *Service) ImportFile(ctx context.Context, path string) (*interfaces.ImportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}

	var entries []importEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse import file: %w", err)
	}

	result := &interfaces.ImportResult{}
	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		kind, err := models.ParseSourceKind(entry.Kind)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("entry %d: %v", i+1, err))
			continue
		}

		content := entry.Content
		if kind == models.SourceURL && entry.URL != "" {
			content = entry.URL
		}

		if _, err := s.Ingest(ctx, kind, content); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("entry %d: %v", i+1, err))
			continue
		}
		result.Ingested++
	}

	s.logger.Info().
		Str("path", path).
		Int("ingested", result.Ingested).
		Int("failed", result.Failed).
		Msg("Import file processed")

	return result, nil
}
