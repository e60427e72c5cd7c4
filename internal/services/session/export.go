package session

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/respondeo/internal/models"
)

// ExportJSON serializes the conversation with metadata and analytics.
func (s *Session) ExportJSON() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userMessages := 0
	for _, turn := range s.turns {
		if turn.Role == models.RoleUser {
			userMessages++
		}
	}

	export := models.ConversationExport{
		Metadata: models.ExportMetadata{
			ExportTimestamp: time.Now(),
			TotalMessages:   len(s.turns),
			UserMessages:    userMessages,
			TopicsDiscussed: s.statsLocked().TopicsDiscussed,
			ExportVersion:   models.ExportVersion,
		},
		Conversation: append([]models.Turn{}, s.turns...),
		Analytics:    s.statsLocked(),
		Settings:     s.settings,
	}

	return json.MarshalIndent(export, "", "  ")
}

// ExportText renders the conversation as a readable transcript.
func (s *Session) ExportText() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sb strings.Builder
	sb.WriteString("GitLab GenAI Chatbot Conversation Export\n")
	fmt.Fprintf(&sb, "Generated: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")

	for i, turn := range s.turns {
		role := "GitLab Assistant"
		if turn.Role == models.RoleUser {
			role = "You"
		}

		fmt.Fprintf(&sb, "[%d] %s %s\n", i+1, role, turn.Timestamp.Format("2006-01-02 15:04:05"))
		sb.WriteString(strings.Repeat("-", 30) + "\n")
		sb.WriteString(turn.Content + "\n")

		if turn.Role == models.RoleAssistant && len(turn.Sources) > 0 {
			sb.WriteString("\nSources:\n")
			for _, source := range turn.Sources {
				fmt.Fprintf(&sb, "- %s: %s\n", source.Title, source.URL)
			}
		}

		sb.WriteString("\n")
	}

	return sb.String()
}

// Import replaces the conversation with an exported one. Only the current
// export version is accepted.
func (s *Session) Import(data []byte) error {
	var export models.ConversationExport
	if err := json.Unmarshal(data, &export); err != nil {
		return fmt.Errorf("failed to parse conversation export: %w", err)
	}
	if export.Metadata.ExportVersion != models.ExportVersion {
		return fmt.Errorf("unsupported export version %q, want %q",
			export.Metadata.ExportVersion, models.ExportVersion)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = append([]models.Turn{}, export.Conversation...)
	s.topicsSeen = make(map[string]struct{})
	s.topics = nil
	for _, turn := range s.turns {
		for _, topic := range turn.Topics {
			if _, seen := s.topicsSeen[topic]; !seen {
				s.topicsSeen[topic] = struct{}{}
				s.topics = append(s.topics, topic)
			}
		}
	}
	s.settings = export.Settings
	s.lastActive = time.Now()

	return nil
}
