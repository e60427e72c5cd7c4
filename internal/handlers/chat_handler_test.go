package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
	"github.com/ternarybob/respondeo/internal/services/session"
)

// stubChatService is a canned ChatService for handler tests.
type stubChatService struct {
	result *interfaces.AskResult
	err    error
	ready  bool
	delay  time.Duration
}

func (s *stubChatService) Ask(context.Context, *interfaces.AskRequest) (*interfaces.AskResult, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.result, s.err
}

func (s *stubChatService) Ready() bool { return s.ready }

func (s *stubChatService) HealthCheck(context.Context) error {
	if !s.ready {
		return interfaces.ErrNotConfigured
	}
	return nil
}

func (s *stubChatService) GetMode() interfaces.LLMMode {
	if !s.ready {
		return ""
	}
	return interfaces.LLMModeMock
}

func okResult() *interfaces.AskResult {
	return &interfaces.AskResult{
		Answer:            "GitLab is remote-first.",
		Sources:           []models.SourceRef{{URL: "https://handbook.gitlab.com/x", Title: "GitLab Handbook", Topic: "remote_work"}},
		FollowupQuestions: []string{"What about async?"},
		ConfidenceLevel:   "Medium",
		Topics:            []string{"remote_work"},
	}
}

func newChatFixture(svc interfaces.ChatService) (*ChatHandler, *session.Manager) {
	sessions := session.NewManager(arbor.NewLogger())
	return NewChatHandler(svc, sessions, arbor.NewLogger()), sessions
}

func TestChatHandler_AnswersAndRecordsTurns(t *testing.T) {
	h, _ := newChatFixture(&stubChatService{result: okResult(), ready: true})

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"remote work?"}`))
	rec := httptest.NewRecorder()
	h.ChatHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Success bool `json:"success"`
		Ready   bool `json:"ready"`
		Answer  string
		Stats   models.ConversationStats
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if !body.Success || body.Answer != "GitLab is remote-first." {
		t.Errorf("body = %+v", body)
	}
	if !body.Ready {
		t.Error("ready = false, want true with a configured provider")
	}
	if body.Stats.TotalQueries != 1 {
		t.Errorf("stats.total_queries = %d, want 1", body.Stats.TotalQueries)
	}

	// A session cookie is minted on first contact.
	cookie := findSessionCookie(rec.Result().Cookies())
	if cookie == nil || cookie.Value == "" {
		t.Fatal("no session cookie set")
	}
}

func TestChatHandler_ReusesSessionFromCookie(t *testing.T) {
	h, sessions := newChatFixture(&stubChatService{result: okResult(), ready: true})

	first := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"q1"}`))
	rec1 := httptest.NewRecorder()
	h.ChatHandler(rec1, first)
	cookie := findSessionCookie(rec1.Result().Cookies())
	if cookie == nil {
		t.Fatal("no session cookie on first request")
	}

	second := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"q2"}`))
	second.AddCookie(cookie)
	rec2 := httptest.NewRecorder()
	h.ChatHandler(rec2, second)

	if sessions.Count() != 1 {
		t.Errorf("sessions = %d, want 1", sessions.Count())
	}
	sess, _ := sessions.Get(cookie.Value)
	if got := sess.Stats().TotalQueries; got != 2 {
		t.Errorf("total queries = %d, want 2", got)
	}
	// Four turns: two questions, two answers.
	if got := len(sess.History()); got != 4 {
		t.Errorf("history length = %d, want 4", got)
	}
}

func TestChatHandler_SerializesInteractionsPerSession(t *testing.T) {
	h, sessions := newChatFixture(&stubChatService{result: okResult(), ready: true, delay: 50 * time.Millisecond})

	sess, _ := sessions.GetOrCreate("")
	cookie := &http.Cookie{Name: SessionCookieName, Value: sess.ID()}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"q"}`))
			req.AddCookie(cookie)
			h.ChatHandler(httptest.NewRecorder(), req)
		}()
	}
	wg.Wait()

	// Each interaction appends its question and answer as an adjacent pair;
	// concurrent requests must not interleave them.
	history := sess.History()
	if len(history) != 8 {
		t.Fatalf("history length = %d, want 8", len(history))
	}
	for i, turn := range history {
		want := models.RoleUser
		if i%2 == 1 {
			want = models.RoleAssistant
		}
		if turn.Role != want {
			t.Fatalf("turn[%d].Role = %q, want %q (history roles interleaved)", i, turn.Role, want)
		}
	}
}

func TestChatHandler_RejectsBadRequests(t *testing.T) {
	h, _ := newChatFixture(&stubChatService{result: okResult(), ready: true})

	tests := []struct {
		name       string
		method     string
		body       string
		wantStatus int
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"invalid json", http.MethodPost, "{", http.StatusBadRequest},
		{"empty message", http.MethodPost, `{"message":""}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/chat", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ChatHandler(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestChatHandler_ServiceError(t *testing.T) {
	h, _ := newChatFixture(&stubChatService{err: errors.New("fallback topics missing"), ready: true})

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"q"}`))
	rec := httptest.NewRecorder()
	h.ChatHandler(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestChatHandler_Health(t *testing.T) {
	tests := []struct {
		name       string
		ready      bool
		wantStatus string
	}{
		{"configured", true, "ok"},
		{"unconfigured", false, "not_configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newChatFixture(&stubChatService{ready: tt.ready})

			req := httptest.NewRequest(http.MethodGet, "/api/chat/health", nil)
			rec := httptest.NewRecorder()
			h.HealthHandler(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			var body struct {
				Status     string `json:"status"`
				Configured bool   `json:"configured"`
			}
			json.Unmarshal(rec.Body.Bytes(), &body)
			if body.Status != tt.wantStatus || body.Configured != tt.ready {
				t.Errorf("body = %+v", body)
			}
		})
	}
}

func findSessionCookie(cookies []*http.Cookie) *http.Cookie {
	for _, c := range cookies {
		if c.Name == SessionCookieName {
			return c
		}
	}
	return nil
}
