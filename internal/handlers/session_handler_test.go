package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/respondeo/internal/models"
	"github.com/ternarybob/respondeo/internal/services/session"
)

func newSessionFixture() (*SessionHandler, *session.Manager) {
	sessions := session.NewManager(arbor.NewLogger())
	return NewSessionHandler(sessions, arbor.NewLogger()), sessions
}

func TestSessionHandler_GetCreatesSession(t *testing.T) {
	h, sessions := newSessionFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	rec := httptest.NewRecorder()
	h.GetHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if sessions.Count() != 1 {
		t.Errorf("sessions = %d, want 1", sessions.Count())
	}

	var body struct {
		SessionID string `json:"session_id"`
		History   []models.Turn
		Settings  models.DisplaySettings
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.SessionID == "" {
		t.Error("session_id missing")
	}
	if len(body.History) != 0 {
		t.Errorf("fresh session has %d turns", len(body.History))
	}
	if !body.Settings.ShowSources || !body.Settings.ShowConfidence || !body.Settings.ShowFollowups {
		t.Errorf("settings = %+v, want all enabled", body.Settings)
	}
}

func TestSessionHandler_ResetClearsConversation(t *testing.T) {
	h, sessions := newSessionFixture()

	sess, _ := sessions.GetOrCreate("")
	sess.AppendUserTurn("hello")

	req := httptest.NewRequest(http.MethodPost, "/api/session/reset", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sess.ID()})
	rec := httptest.NewRecorder()
	h.ResetHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(sess.History()) != 0 {
		t.Error("history not cleared")
	}
}

func TestSessionHandler_UpdateSettings(t *testing.T) {
	h, sessions := newSessionFixture()

	sess, _ := sessions.GetOrCreate("")
	body := `{"show_sources":false,"show_confidence":true,"show_followups":false}`
	req := httptest.NewRequest(http.MethodPut, "/api/session/settings", strings.NewReader(body))
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sess.ID()})
	rec := httptest.NewRecorder()
	h.SettingsHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := sess.Settings()
	if got.ShowSources || !got.ShowConfidence || got.ShowFollowups {
		t.Errorf("settings = %+v", got)
	}
}

func TestSessionHandler_ExportFormats(t *testing.T) {
	h, sessions := newSessionFixture()

	sess, _ := sessions.GetOrCreate("")
	sess.AppendUserTurn("What are GitLab's values?")
	cookie := &http.Cookie{Name: SessionCookieName, Value: sess.ID()}

	t.Run("json default", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/session/export", nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		h.ExportHandler(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "gitlab_chat_export_") {
			t.Errorf("content disposition = %q", cd)
		}
		var export models.ConversationExport
		if err := json.Unmarshal(rec.Body.Bytes(), &export); err != nil {
			t.Fatalf("export is not valid JSON: %v", err)
		}
		if export.Metadata.ExportVersion != models.ExportVersion {
			t.Errorf("export version = %q", export.Metadata.ExportVersion)
		}
	})

	t.Run("text", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/session/export?format=text", nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		h.ExportHandler(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "GitLab GenAI Chatbot Conversation Export") {
			t.Error("text export missing header")
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/session/export?format=xml", nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		h.ExportHandler(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestSessionHandler_ImportRoundTrip(t *testing.T) {
	h, sessions := newSessionFixture()

	source, _ := sessions.GetOrCreate("")
	source.AppendUserTurn("Tell me about remote work")
	data, err := source.ExportJSON()
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	target, _ := sessions.GetOrCreate("")
	req := httptest.NewRequest(http.MethodPost, "/api/session/import", bytes.NewReader(data))
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: target.ID()})
	rec := httptest.NewRecorder()
	h.ImportHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	history := target.History()
	if len(history) != 1 || history[0].Content != "Tell me about remote work" {
		t.Errorf("imported history = %+v", history)
	}
}

func TestSessionHandler_ImportRejectsWrongVersion(t *testing.T) {
	h, sessions := newSessionFixture()

	sess, _ := sessions.GetOrCreate("")
	payload := `{"metadata":{"export_version":"1.0"},"conversation":[],"analytics":{},"settings":{}}`
	req := httptest.NewRequest(http.MethodPost, "/api/session/import", strings.NewReader(payload))
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sess.ID()})
	rec := httptest.NewRecorder()
	h.ImportHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
