package llm

import (
	"context"
	"sync"

	"github.com/ternarybob/respondeo/internal/interfaces"
)

// MockService is an in-process LLMService used by tests. Responses are
// returned in order; when they run out the last one repeats.
type MockService struct {
	mu        sync.Mutex
	responses []string
	calls     [][]interfaces.Message
	err       error
}

// NewMockService builds a mock that replays the given responses.
func NewMockService(responses ...string) *MockService {
	return &MockService{responses: responses}
}

// FailWith makes every Chat call return err.
func (m *MockService) FailWith(err error) *MockService {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Chat records the request and replays the next canned response.
func (m *MockService) Chat(_ context.Context, messages []interfaces.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := make([]interfaces.Message, len(messages))
	copy(copied, messages)
	m.calls = append(m.calls, copied)

	if m.err != nil {
		return "", m.err
	}
	if len(m.responses) == 0 {
		return "mock response", nil
	}
	idx := len(m.calls) - 1
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	return m.responses[idx], nil
}

// Calls returns every recorded Chat request.
func (m *MockService) Calls() [][]interfaces.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// HealthCheck reports the configured failure, if any.
func (m *MockService) HealthCheck(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// GetMode identifies the service as a mock.
func (m *MockService) GetMode() interfaces.LLMMode {
	return interfaces.LLMModeMock
}

// Close is a no-op.
func (m *MockService) Close() error {
	return nil
}
