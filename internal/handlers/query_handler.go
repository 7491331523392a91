package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/capsa/internal/interfaces"
)

// QueryHandler serves question answering over the ingested items
type QueryHandler struct {
	answer interfaces.AnswerService
	logger arbor.ILogger
}

// NewQueryHandler creates a query handler
func NewQueryHandler(answer interfaces.AnswerService, logger arbor.ILogger) *QueryHandler {
	return &QueryHandler{
		answer: answer,
		logger: logger,
	}
}

// QueryRequest is the POST /api/query payload. MaxResults of zero falls back
// to the configured retrieval default.
type QueryRequest struct {
	Question   string `json:"question"`
	MaxResults int    `json:"max_results,omitempty"`
}

// QueryHandler handles POST /api/query
func (h *QueryHandler) QueryHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	answer, err := h.answer.Answer(r.Context(), req.Question, req.MaxResults)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Query failed")
		WriteTaxonomyError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, answer)
}
