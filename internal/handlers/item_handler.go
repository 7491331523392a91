package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/capsa/internal/interfaces"
	"github.com/ternarybob/capsa/internal/models"
)

// previewChars is how much raw text a list response carries per item
const previewChars = 200

// ItemHandler serves the item lifecycle: ingestion, listing, retrieval,
// export, and deletion.
type ItemHandler struct {
	ingest  interfaces.IngestService
	storage interfaces.ItemStorage
	export  interfaces.ExportService
	logger  arbor.ILogger
}

// NewItemHandler creates an item handler
func NewItemHandler(ingest interfaces.IngestService, storage interfaces.ItemStorage, export interfaces.ExportService, logger arbor.ILogger) *ItemHandler {
	return &ItemHandler{
		ingest:  ingest,
		storage: storage,
		export:  export,
		logger:  logger,
	}
}

// IngestRequest is the POST /api/ingest payload
type IngestRequest struct {
	SourceKind string `json:"source_kind"`
	Content    string `json:"content"`
}

// itemSummary is one row of a list response. RawText is truncated so list
// responses stay small regardless of item size.
type itemSummary struct {
	ID         string            `json:"id"`
	SourceKind models.SourceKind `json:"source_kind"`
	OriginURL  string            `json:"origin_url,omitempty"`
	Title      string            `json:"title,omitempty"`
	Preview    string            `json:"preview"`
	Chars      int               `json:"chars"`
	CreatedAt  time.Time         `json:"created_at"`
}

// IngestHandler handles POST /api/ingest
func (h *ItemHandler) IngestHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	kind, err := models.ParseSourceKind(req.SourceKind)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.ingest.Ingest(r.Context(), kind, req.Content)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("source_kind", string(kind)).
			Msg("Ingest failed")
		WriteTaxonomyError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, item)
}

// ListHandler handles GET /api/items with optional source_kind and limit
// query parameters
func (h *ItemHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	var kind models.SourceKind
	if raw := r.URL.Query().Get("source_kind"); raw != "" {
		parsed, err := models.ParseSourceKind(raw)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		kind = parsed
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", raw))
			return
		}
		limit = parsed
	}

	items, err := h.storage.List(r.Context(), kind, limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list items")
		WriteError(w, http.StatusInternalServerError, "failed to list items")
		return
	}

	summaries := make([]itemSummary, 0, len(items))
	for _, item := range items {
		summaries = append(summaries, itemSummary{
			ID:         item.ID,
			SourceKind: item.SourceKind,
			OriginURL:  item.OriginURL,
			Title:      item.Title,
			Preview:    truncate(item.RawText, previewChars),
			Chars:      len([]rune(item.RawText)),
			CreatedAt:  item.CreatedAt,
		})
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items": summaries,
		"count": len(summaries),
	})
}

// GetHandler handles GET /api/items/{id}
func (h *ItemHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	id := itemIDFromPath(r.URL.Path)
	if id == "" {
		WriteError(w, http.StatusBadRequest, "item id is required")
		return
	}

	item, err := h.storage.Get(r.Context(), id)
	if err != nil {
		WriteTaxonomyError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, item)
}

// DeleteHandler handles DELETE /api/items/{id}
func (h *ItemHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id := itemIDFromPath(r.URL.Path)
	if id == "" {
		WriteError(w, http.StatusBadRequest, "item id is required")
		return
	}

	if err := h.ingest.Delete(r.Context(), id); err != nil {
		WriteTaxonomyError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "deleted",
		"id":     id,
	})
}

// ExportHandler handles GET /api/items/{id}/export, returning the item
// rendered as a PDF attachment
func (h *ItemHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	id := itemIDFromPath(r.URL.Path)
	if id == "" {
		WriteError(w, http.StatusBadRequest, "item id is required")
		return
	}

	item, err := h.storage.Get(r.Context(), id)
	if err != nil {
		WriteTaxonomyError(w, err)
		return
	}

	pdf, err := h.export.ItemToPDF(item)
	if err != nil {
		h.logger.Error().Err(err).Str("item_id", id).Msg("PDF export failed")
		WriteError(w, http.StatusInternalServerError, "failed to render PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".pdf"))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

// itemIDFromPath pulls the item id out of /api/items/{id} and
// /api/items/{id}/export paths
func itemIDFromPath(path string) string {
	id := strings.TrimPrefix(path, "/api/items/")
	id = strings.TrimSuffix(id, "/export")
	return strings.Trim(id, "/")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
