package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/respondeo/internal/models"
	"github.com/ternarybob/respondeo/internal/services/session"
)

// maxImportBytes bounds conversation import payloads.
const maxImportBytes = 4 << 20

// SessionHandler handles conversation state HTTP requests
type SessionHandler struct {
	sessions *session.Manager
	logger   arbor.ILogger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *session.Manager, logger arbor.ILogger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// GetHandler handles GET /api/session requests.
func (h *SessionHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	sess := resolveSession(w, r, h.sessions)
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sess.ID(),
		"history":    sess.History(),
		"stats":      sess.Stats(),
		"settings":   sess.Settings(),
	})
}

// ResetHandler handles POST /api/session/reset requests. The conversation is
// cleared; settings and the session itself survive.
func (h *SessionHandler) ResetHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	sess := resolveSession(w, r, h.sessions)
	sess.Reset()

	h.logger.Info().Str("session_id", sess.ID()).Msg("Conversation reset")
	WriteSuccess(w, "Conversation cleared")
}

// SettingsHandler handles PUT /api/session/settings requests.
func (h *SessionHandler) SettingsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPut) {
		return
	}

	var settings models.DisplaySettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid settings body")
		return
	}

	sess := resolveSession(w, r, h.sessions)
	sess.UpdateSettings(settings)

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "success",
		"settings": sess.Settings(),
	})
}

// ExportHandler handles GET /api/session/export requests. The format query
// parameter selects JSON (default) or a plain-text transcript.
func (h *SessionHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	sess := resolveSession(w, r, h.sessions)
	stamp := time.Now().Format("20060102_150405")

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		data, err := sess.ExportJSON()
		if err != nil {
			h.logger.Error().Err(err).Msg("Conversation export failed")
			WriteError(w, http.StatusInternalServerError, "Export failed")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=gitlab_chat_export_%s.json", stamp))
		w.Write(data)

	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=gitlab_chat_export_%s.txt", stamp))
		io.WriteString(w, sess.ExportText())

	default:
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("Unknown export format %q", format))
	}
}

// ImportHandler handles POST /api/session/import requests, replacing the
// conversation with a previously exported one.
func (h *SessionHandler) ImportHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Failed to read import body")
		return
	}

	sess := resolveSession(w, r, h.sessions)
	if err := sess.Import(data); err != nil {
		h.logger.Warn().Err(err).Str("session_id", sess.ID()).Msg("Conversation import rejected")
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.Info().
		Str("session_id", sess.ID()).
		Int("turns", len(sess.History())).
		Msg("Conversation imported")

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"stats":  sess.Stats(),
	})
}
