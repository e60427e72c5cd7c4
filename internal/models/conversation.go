package models

import "time"

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message in the conversation sequence. Turns are append-only:
// once created they are never mutated, and the sequence is only cleared
// wholesale by an explicit reset.
type Turn struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Assistant-only metadata. Topics are inferred from the user's
	// triggering query, not from the generated answer.
	Sources           []SourceRef `json:"sources,omitempty"`
	FollowupQuestions []string    `json:"followup_questions,omitempty"`
	ConfidenceLevel   string      `json:"confidence_level,omitempty"`
	Topics            []string    `json:"topics,omitempty"`
}

// ConversationStats are the session's aggregate analytics counters.
// TotalQueries is monotonic; TopicsDiscussed only grows.
type ConversationStats struct {
	TotalQueries    int      `json:"total_queries"`
	TopicsDiscussed []string `json:"topics_discussed"`
}

// DisplaySettings are the user-toggled presentation flags.
type DisplaySettings struct {
	ShowSources    bool `json:"show_sources"`
	ShowConfidence bool `json:"show_confidence"`
	ShowFollowups  bool `json:"show_followups"`
}

// ExportVersion identifies the structured export format.
const ExportVersion = "2.0"

// ExportMetadata describes an exported conversation.
type ExportMetadata struct {
	ExportTimestamp time.Time `json:"export_timestamp"`
	TotalMessages   int       `json:"total_messages"`
	UserMessages    int       `json:"user_messages"`
	TopicsDiscussed []string  `json:"topics_discussed"`
	ExportVersion   string    `json:"export_version"`
}

// ConversationExport is the structured export surface consumed by the UI's
// download action and accepted back by import. Re-reading an export must
// reproduce the turn sequence with content fields intact.
type ConversationExport struct {
	Metadata     ExportMetadata    `json:"metadata"`
	Conversation []Turn            `json:"conversation"`
	Analytics    ConversationStats `json:"analytics"`
	Settings     DisplaySettings   `json:"settings"`
}
