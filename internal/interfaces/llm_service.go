package interfaces

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when no usable API key is available for the
// selected provider. Callers report "not ready" instead of attempting
// generation.
var ErrNotConfigured = errors.New("llm service is not configured")

// LLMMode represents the operational mode of the LLM service
type LLMMode string

const (
	// LLMModeCloud indicates the service uses cloud-based LLM APIs
	LLMModeCloud LLMMode = "cloud"

	// LLMModeMock indicates a test double is in use
	LLMModeMock LLMMode = "mock"
)

// Message represents a single message in a chat conversation
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string

	// Content contains the text content of the message
	Content string
}

// LLMService is the narrow contract with the hosted text-generation
// collaborator: supply a conversation, receive a response string or an
// error. Implementations exist for Gemini and Claude; tests inject mocks.
type LLMService interface {
	// Chat generates a completion response based on the conversation history.
	// The messages slice should contain the full conversation context in
	// chronological order, including system prompts, user messages, and
	// previous assistant responses.
	Chat(ctx context.Context, messages []Message) (string, error)

	// HealthCheck verifies the LLM service is operational and can handle
	// requests.
	HealthCheck(ctx context.Context) error

	// GetMode returns the current operational mode of the LLM service.
	GetMode() LLMMode

	// Close releases resources and performs cleanup operations.
	Close() error
}
