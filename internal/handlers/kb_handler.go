package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/respondeo/internal/kb"
	"github.com/ternarybob/respondeo/internal/services/refresh"
)

// KBHandler exposes the knowledge base over HTTP
type KBHandler struct {
	store   *kb.Store
	refresh *refresh.Service
	logger  arbor.ILogger
}

// NewKBHandler creates a new knowledge base handler
func NewKBHandler(store *kb.Store, refreshService *refresh.Service, logger arbor.ILogger) *KBHandler {
	return &KBHandler{
		store:   store,
		refresh: refreshService,
		logger:  logger,
	}
}

// ListHandler handles GET /api/kb requests, returning every document with
// its metadata.
func (h *KBHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":     h.store.Count(),
		"documents": h.store.All(),
	})
}

// StatusHandler handles GET /api/kb/status requests.
func (h *KBHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	lastRefresh := h.refresh.LastRefresh()
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"documents":        h.store.Count(),
		"topics":           h.store.Topics(),
		"last_refresh":     lastRefresh.Format(time.RFC3339),
		"refresh_interval": h.refresh.Interval().String(),
		"stale":            h.refresh.ShouldRefresh(),
	})
}

// RefreshHandler handles POST /api/kb/refresh requests. The refresh runs
// synchronously and the per-topic report is returned; partial failure is
// still a 200 as long as the pass completed.
func (h *KBHandler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	h.logger.Info().Msg("Manual knowledge base refresh requested")
	report := h.refresh.Refresh(r.Context())

	status := "success"
	if !report.Success() {
		status = "no_updates"
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": status,
		"report": report,
	})
}
