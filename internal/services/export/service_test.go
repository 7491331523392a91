package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/capsa/internal/models"
)

func createTestLogger() arbor.ILogger {
	return arbor.NewLogger()
}

func TestItemToPDF_ProducesPDFBytes(t *testing.T) {
	service := NewService(createTestLogger())

	pdf, err := service.ItemToPDF(&models.Item{
		ID:         "item_1",
		SourceKind: models.SourceNote,
		Title:      "Meeting Notes",
		RawText:    "Discussed the rollout plan.",
		CreatedAt:  time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, pdf)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF-"))
}

func TestItemToPDF_RendersMarkdownStructures(t *testing.T) {
	service := NewService(createTestLogger())

	markdown := `# Release Summary

A short paragraph with **bold** and *italic* and ` + "`inline code`" + `.

## Changes

- first change
- second change
  - nested detail

` + "```" + `
func main() {
	fmt.Println("hello")
}
` + "```" + `

> A quoted remark.

---

| Field | Value |
|-------|-------|
| state | done  |
`

	pdf, err := service.ItemToPDF(&models.Item{
		ID:         "item_md",
		SourceKind: models.SourceNote,
		RawText:    markdown,
		CreatedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.Greater(t, len(pdf), 1000)
}

func TestItemToPDF_EmptyText(t *testing.T) {
	service := NewService(createTestLogger())

	pdf, err := service.ItemToPDF(&models.Item{
		ID:         "item_empty",
		SourceKind: models.SourceNote,
		RawText:    "",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF-"))
}

func TestItemToPDF_LongTextPaginates(t *testing.T) {
	service := NewService(createTestLogger())

	pdf, err := service.ItemToPDF(&models.Item{
		ID:         "item_long",
		SourceKind: models.SourceURL,
		OriginURL:  "https://example.org/long-read",
		RawText:    strings.Repeat("A paragraph of body text that keeps going.\n\n", 200),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
}

func TestDisplayTitle(t *testing.T) {
	created := time.Date(2026, 7, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		item     *models.Item
		expected string
	}{
		{
			name:     "own title wins",
			item:     &models.Item{Title: "The Guide", SourceKind: models.SourceURL, OriginURL: "https://example.org/"},
			expected: "The Guide",
		},
		{
			name:     "url item falls back to origin",
			item:     &models.Item{SourceKind: models.SourceURL, OriginURL: "https://example.org/post"},
			expected: "https://example.org/post",
		},
		{
			name:     "note falls back to date",
			item:     &models.Item{SourceKind: models.SourceNote, CreatedAt: created},
			expected: "Note from 2 July 2026",
		},
		{
			name:     "bare note",
			item:     &models.Item{SourceKind: models.SourceNote},
			expected: "Note",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, displayTitle(tt.item))
		})
	}
}

func TestProvenance(t *testing.T) {
	line := provenance(&models.Item{SourceKind: models.SourceNote})
	assert.Equal(t, "source: note", line)

	line = provenance(&models.Item{
		SourceKind: models.SourceURL,
		OriginURL:  "https://example.org/a",
		CreatedAt:  time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC),
	})
	assert.Contains(t, line, "source: url")
	assert.Contains(t, line, "https://example.org/a")
	assert.Contains(t, line, "captured 5 Jan 2026")
}
