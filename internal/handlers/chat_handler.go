package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/services/session"
)

// ChatHandler handles chat-related HTTP requests
type ChatHandler struct {
	chatService interfaces.ChatService
	sessions    *session.Manager
	logger      arbor.ILogger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService interfaces.ChatService, sessions *session.Manager, logger arbor.ILogger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		sessions:    sessions,
		logger:      logger,
	}
}

type chatRequest struct {
	Message string `json:"message"`
}

// ChatHandler handles POST /api/chat requests. The question is answered
// against the knowledge base and both turns are recorded on the caller's
// session.
func (h *ChatHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error().Err(err).Msg("Failed to decode chat request")
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Message == "" {
		WriteError(w, http.StatusBadRequest, "Message field is required")
		return
	}

	sess := resolveSession(w, r, h.sessions)

	h.logger.Info().
		Str("session_id", sess.ID()).
		Int("message_length", len(req.Message)).
		Msg("Processing chat request")

	// One interaction per session at a time: the question, the answer, and
	// the history window the prompt sees must not interleave with another
	// request on the same conversation.
	sess.BeginInteraction()
	defer sess.EndInteraction()

	sess.AppendUserTurn(req.Message)

	result, err := h.chatService.Ask(r.Context(), &interfaces.AskRequest{
		Query:   req.Message,
		History: sess.History(),
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to answer chat request")
		WriteError(w, http.StatusInternalServerError, "Failed to generate response: "+err.Error())
		return
	}

	turn := sess.AppendAssistantTurn(result)

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":            true,
		"ready":              h.chatService.Ready(),
		"turn_id":            turn.ID,
		"answer":             result.Answer,
		"sources":            result.Sources,
		"followup_questions": result.FollowupQuestions,
		"confidence_level":   result.ConfidenceLevel,
		"topics":             result.Topics,
		"stats":              sess.Stats(),
	})
}

// HealthHandler handles GET /api/chat/health requests. It reports whether a
// generation provider is configured without probing the remote API.
func (h *ChatHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	configured := h.chatService.Ready()
	status := "ok"
	if !configured {
		status = "not_configured"
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":     status,
		"configured": configured,
		"mode":       string(h.chatService.GetMode()),
	})
}
