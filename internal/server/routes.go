package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Ingestion and querying
	mux.HandleFunc("/api/ingest", s.app.ItemHandler.IngestHandler) // POST
	mux.HandleFunc("/api/query", s.app.QueryHandler.QueryHandler)  // POST

	// Items
	mux.HandleFunc("/api/items", s.app.ItemHandler.ListHandler) // GET
	mux.HandleFunc("/api/items/", s.handleItemRoutes)           // GET/DELETE /{id}, GET /{id}/export

	// System
	mux.HandleFunc("/api/health", s.app.StatusHandler.HealthHandler)
	mux.HandleFunc("/api/version", s.app.StatusHandler.VersionHandler)

	// Event stream
	mux.HandleFunc("/ws/events", s.app.WSHandler.HandleWebSocket)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.StatusHandler.NotFoundHandler)

	return mux
}

// handleItemRoutes routes /api/items/{id} requests to the appropriate
// handler
func (s *Server) handleItemRoutes(w http.ResponseWriter, r *http.Request) {
	if strings.HasSuffix(r.URL.Path, "/export") {
		s.app.ItemHandler.ExportHandler(w, r)
		return
	}

	RouteByMethod(w, r, MethodRouter{
		http.MethodGet:    s.app.ItemHandler.GetHandler,
		http.MethodDelete: s.app.ItemHandler.DeleteHandler,
	})
}
