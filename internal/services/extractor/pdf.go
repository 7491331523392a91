package extractor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"
)

// extractPDFText pulls the text content out of a fetched PDF body. pdfcpu
// operates on files, so the body takes a round trip through a temp dir.
func extractPDFText(body []byte, logger arbor.ILogger) (string, error) {
	tempDir, err := os.MkdirTemp("", "capsa-pdf-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	tempFile := filepath.Join(tempDir, "download.pdf")
	if err := os.WriteFile(tempFile, body, 0644); err != nil {
		return "", fmt.Errorf("failed to write temp PDF: %w", err)
	}

	pdfCtx, err := api.ReadContextFile(tempFile)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF: %w", err)
	}
	pageCount := pdfCtx.PageCount

	outDir := filepath.Join(tempDir, "pages")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create extraction dir: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(tempFile, outDir, nil, conf); err != nil {
		return "", fmt.Errorf("failed to extract PDF content: %w", err)
	}

	// pdfcpu writes one file per page; the naming varies between versions
	entries, err := os.ReadDir(outDir)
	if err != nil {
		return "", fmt.Errorf("failed to read extraction dir: %w", err)
	}

	pageTexts := make(map[int]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		var pageNum int
		name := entry.Name()
		if _, err := fmt.Sscanf(name, "page_%d", &pageNum); err != nil {
			if _, err := fmt.Sscanf(name, "Content_page_%d", &pageNum); err != nil {
				continue
			}
		}

		content, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			logger.Warn().Err(err).Str("file", name).Msg("Failed to read extracted page")
			continue
		}
		pageTexts[pageNum] = string(content)
	}

	var builder strings.Builder
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		text := strings.TrimSpace(pageTexts[pageNum])
		if text == "" {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString(fmt.Sprintf("\n\n--- Page %d ---\n\n", pageNum))
		}
		builder.WriteString(text)
	}

	logger.Debug().
		Int("pages", pageCount).
		Int("text_length", builder.Len()).
		Msg("Extracted PDF text")

	return builder.String(), nil
}
