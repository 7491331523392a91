package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/capsa/internal/common"
	"github.com/ternarybob/capsa/internal/interfaces"
)

// StatusHandler serves health and version endpoints
type StatusHandler struct {
	storage interfaces.ItemStorage
	index   interfaces.VectorIndex
	logger  arbor.ILogger
}

// NewStatusHandler creates a status handler
func NewStatusHandler(storage interfaces.ItemStorage, index interfaces.VectorIndex, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		storage: storage,
		index:   index,
		logger:  logger,
	}
}

// HealthHandler handles GET /api/health. The index size next to the item
// count makes a failed startup rebuild visible: items without chunks mean
// the rebuild was skipped or partial.
func (h *StatusHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	count, err := h.storage.Count(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to count items")
		WriteError(w, http.StatusInternalServerError, "storage unavailable")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"version":     common.GetVersion(),
		"items_count": count,
		"index_size":  h.index.Size(),
	})
}

// VersionHandler handles GET /api/version
func (h *StatusHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"full":    common.GetFullVersion(),
	})
}

// NotFoundHandler answers unmatched /api/ paths with a JSON 404
func (h *StatusHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, "unknown API route "+r.URL.Path)
}
