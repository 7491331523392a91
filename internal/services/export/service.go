// Package export renders stored items into downloadable PDF documents.
// Item text is treated as markdown, which is what the extractor produces
// and what notes are assumed to be.
package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/ternarybob/capsa/internal/interfaces"
	"github.com/ternarybob/capsa/internal/models"
)

// Service implements the ExportService interface
type Service struct {
	logger arbor.ILogger
}

var _ interfaces.ExportService = (*Service)(nil)

// NewService creates a new export service
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		logger: logger,
	}
}

// ItemToPDF renders an item's text to an A4 PDF with a provenance header.
func (s *Service) ItemToPDF(item *models.Item) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.SetTitle(displayTitle(item), true)
	pdf.AddPage()

	// Header: title, provenance line, separator rule
	pdf.SetFont("Arial", "B", 16)
	pdf.MultiCell(0, 8, displayTitle(item), "", "L", false)
	pdf.SetFont("Arial", "", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.MultiCell(0, 4, provenance(item), "", "L", false)
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(2)
	pdf.Line(10, pdf.GetY(), 200, pdf.GetY())
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 10)

	md := goldmark.New(
		goldmark.WithExtensions(extension.Table, extension.Strikethrough),
	)
	source := []byte(item.RawText)
	doc := md.Parser().Parse(text.NewReader(source))

	renderer := &pdfRenderer{
		pdf:    pdf,
		source: source,
		font:   "Arial",
		size:   10,
	}
	if err := renderer.render(doc); err != nil {
		s.logger.Error().Err(err).Str("item_id", item.ID).Msg("Failed to render item to PDF")
		return nil, fmt.Errorf("failed to render item %s: %w", item.ID, err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF output: %w", err)
	}

	s.logger.Debug().
		Str("item_id", item.ID).
		Int("pdf_size", buf.Len()).
		Msg("Item exported to PDF")

	return buf.Bytes(), nil
}

// displayTitle picks the document title: the item's own title, then the
// origin url for pages, then a dated note fallback.
func displayTitle(item *models.Item) string {
	if item.Title != "" {
		return item.Title
	}
	if item.SourceKind == models.SourceURL && item.OriginURL != "" {
		return item.OriginURL
	}
	if !item.CreatedAt.IsZero() {
		return "Note from " + item.CreatedAt.Format("2 January 2006")
	}
	return "Note"
}

// provenance builds the grey metadata line under the title
func provenance(item *models.Item) string {
	parts := []string{"source: " + string(item.SourceKind)}
	if item.OriginURL != "" {
		parts = append(parts, item.OriginURL)
	}
	if !item.CreatedAt.IsZero() {
		parts = append(parts, "captured "+item.CreatedAt.Format("2 Jan 2006 15:04 MST"))
	}
	return strings.Join(parts, "  |  ")
}
