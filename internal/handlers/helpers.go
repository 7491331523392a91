package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ternarybob/capsa/internal/models"
)

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// WriteTaxonomyError maps a pipeline error onto its HTTP status and writes
// it. The mapping follows the failure taxonomy: caller mistakes are 4xx,
// provider outages are 502, anything unrecognized is 500.
func WriteTaxonomyError(w http.ResponseWriter, err error) {
	WriteError(w, StatusForError(err), err.Error())
}

// StatusForError resolves a pipeline error to an HTTP status code.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidContent), errors.Is(err, models.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrExtractionFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrEmbeddingUnavailable), errors.Is(err, models.ErrGenerationUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RequireMethod validates that the request uses the specified method.
// Returns true if the method matches, false otherwise (and writes the error
// response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}
