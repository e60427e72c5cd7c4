package interfaces

import (
	"context"

	"github.com/ternarybob/respondeo/internal/models"
)

// AskRequest carries one user question plus the conversation history the
// prompt builder may draw on.
type AskRequest struct {
	// User's question
	Query string `json:"query"`

	// Prior turns, oldest first. The prompt builder only uses the
	// configured trailing window.
	History []models.Turn `json:"history,omitempty"`
}

// AskResult is the fully derived answer: generated text plus the metadata
// the presentation layer renders alongside it.
type AskResult struct {
	Answer            string             `json:"answer"`
	Sources           []models.SourceRef `json:"sources"`
	FollowupQuestions []string           `json:"followup_questions"`
	ConfidenceLevel   string             `json:"confidence_level"`
	Topics            []string           `json:"topics"`
}

// ChatService produces answers conditioned on retrieved knowledge-base
// documents. Generation failures are absorbed: the result carries a fixed
// apology answer and fallback follow-ups rather than an error.
type ChatService interface {
	// Ask answers one user question. The returned error is reserved for
	// configuration problems (e.g. missing fallback topics); transport
	// failures from the generation collaborator never propagate.
	Ask(ctx context.Context, req *AskRequest) (*AskResult, error)

	// Ready reports whether the generation collaborator is configured.
	Ready() bool

	// HealthCheck verifies the chat service is operational.
	HealthCheck(ctx context.Context) error

	// GetMode returns the underlying LLM mode.
	GetMode() LLMMode
}
