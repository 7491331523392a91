package interfaces

import "github.com/ternarybob/capsa/internal/models"

// ExportService renders stored items into downloadable documents
type ExportService interface {
	// ItemToPDF renders the item's text (treated as markdown) to a PDF
	ItemToPDF(item *models.Item) ([]byte, error)
}
