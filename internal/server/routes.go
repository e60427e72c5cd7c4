package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// UI page routes (HTML templates)
	mux.HandleFunc("/", s.handleRoot)

	// Static files (CSS, JS, images)
	mux.HandleFunc("/static/", s.app.PageHandler.StaticFileHandler)

	// API routes - Chat
	mux.HandleFunc("/api/chat", s.app.ChatHandler.ChatHandler)
	mux.HandleFunc("/api/chat/health", s.app.ChatHandler.HealthHandler)

	// API routes - Conversation state
	mux.HandleFunc("/api/session", s.app.SessionHandler.GetHandler)
	mux.HandleFunc("/api/session/reset", s.app.SessionHandler.ResetHandler)
	mux.HandleFunc("/api/session/settings", s.app.SessionHandler.SettingsHandler)
	mux.HandleFunc("/api/session/export", s.app.SessionHandler.ExportHandler)
	mux.HandleFunc("/api/session/import", s.app.SessionHandler.ImportHandler)

	// API routes - Knowledge base
	mux.HandleFunc("/api/kb", s.app.KBHandler.ListHandler)
	mux.HandleFunc("/api/kb/status", s.app.KBHandler.StatusHandler)
	mux.HandleFunc("/api/kb/refresh", s.app.KBHandler.RefreshHandler)

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// Unknown API routes get a JSON 404
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleRoot serves the chat page on "/" and a 404 for everything else that
// fell through to the catch-all pattern.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			s.app.APIHandler.NotFoundHandler(w, r)
			return
		}
		http.NotFound(w, r)
		return
	}
	s.app.PageHandler.ServePage("index.html", "chat")(w, r)
}
