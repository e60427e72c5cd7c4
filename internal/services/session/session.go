package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

// Session holds one visitor's conversation state: the append-only turn log,
// running analytics, and display settings. Chat interactions are serialized
// per session via the interaction lock, so only one runs at a time.
type Session struct {
	mu          sync.RWMutex
	interaction sync.Mutex
	id          string
	turns       []models.Turn
	topicsSeen  map[string]struct{}
	topics      []string
	settings    models.DisplaySettings
	createdAt   time.Time
	lastActive  time.Time
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// BeginInteraction blocks until this session's in-flight interaction, if
// any, completes. One interaction runs to completion at a time; the state
// lock stays free so reads during a slow generation do not stall.
func (s *Session) BeginInteraction() {
	s.interaction.Lock()
}

// EndInteraction releases the interaction lock.
func (s *Session) EndInteraction() {
	s.interaction.Unlock()
}

// AppendUserTurn records a user question and returns the stored turn.
func (s *Session) AppendUserTurn(content string) models.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	turn := models.Turn{
		ID:        uuid.NewString(),
		Role:      models.RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
	s.turns = append(s.turns, turn)
	s.lastActive = turn.Timestamp
	return turn
}

// AppendAssistantTurn records an answer with its grounding metadata and
// folds the answer's topics into the session analytics.
func (s *Session) AppendAssistantTurn(result *interfaces.AskResult) models.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	turn := models.Turn{
		ID:                uuid.NewString(),
		Role:              models.RoleAssistant,
		Content:           result.Answer,
		Timestamp:         time.Now(),
		Sources:           result.Sources,
		FollowupQuestions: result.FollowupQuestions,
		ConfidenceLevel:   result.ConfidenceLevel,
		Topics:            result.Topics,
	}
	s.turns = append(s.turns, turn)
	s.lastActive = turn.Timestamp

	for _, topic := range result.Topics {
		if _, seen := s.topicsSeen[topic]; !seen {
			s.topicsSeen[topic] = struct{}{}
			s.topics = append(s.topics, topic)
		}
	}
	return turn
}

// History returns a copy of the turn log, oldest first.
func (s *Session) History() []models.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Stats returns the running conversation analytics.
func (s *Session) Stats() models.ConversationStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statsLocked()
}

func (s *Session) statsLocked() models.ConversationStats {
	queries := 0
	for _, turn := range s.turns {
		if turn.Role == models.RoleUser {
			queries++
		}
	}
	topics := make([]string, len(s.topics))
	copy(topics, s.topics)
	return models.ConversationStats{
		TotalQueries:    queries,
		TopicsDiscussed: topics,
	}
}

// Settings returns the session display settings.
func (s *Session) Settings() models.DisplaySettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// UpdateSettings replaces the display settings.
func (s *Session) UpdateSettings(settings models.DisplaySettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	s.lastActive = time.Now()
}

// Reset clears the conversation but keeps the session and its settings.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
	s.topicsSeen = make(map[string]struct{})
	s.topics = nil
	s.lastActive = time.Now()
}

// Manager tracks sessions by identifier.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	logger   arbor.ILogger
}

// NewManager creates an empty session manager.
func NewManager(logger arbor.ILogger) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		logger:   logger,
	}
}

// GetOrCreate returns the session for id, minting a new one when id is
// empty or unknown. The second result reports whether a session was
// created.
func (m *Manager) GetOrCreate(id string) (*Session, bool) {
	m.mu.RLock()
	if s, ok := m.sessions[id]; ok {
		m.mu.RUnlock()
		return s, false
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s, false
	}

	now := time.Now()
	s := &Session{
		id:         uuid.NewString(),
		topicsSeen: make(map[string]struct{}),
		settings: models.DisplaySettings{
			ShowSources:    true,
			ShowConfidence: true,
			ShowFollowups:  true,
		},
		createdAt:  now,
		lastActive: now,
	}
	m.sessions[s.id] = s

	m.logger.Debug().Str("session_id", s.id).Msg("Session created")
	return s, true
}

// Get returns the session for id if it exists.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Prune drops sessions idle longer than maxIdle and reports how many were
// removed.
func (m *Manager) Prune(maxIdle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	cutoff := time.Now().Add(-maxIdle)
	for id, s := range m.sessions {
		s.mu.RLock()
		idle := s.lastActive.Before(cutoff)
		s.mu.RUnlock()
		if idle {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info().Int("removed", removed).Msg("Pruned idle sessions")
	}
	return removed
}
