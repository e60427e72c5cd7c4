package models

import "time"

// DocumentRecord is one curated knowledge-base entry. Confidence is a static
// editorial estimate of document reliability assigned by the corpus author;
// it is never recomputed from data. Keywords drive fast relevance boosting.
type DocumentRecord struct {
	Topic       string    `json:"topic" toml:"topic"`
	Content     string    `json:"content" toml:"content"`
	Source      string    `json:"source" toml:"source"`
	Confidence  float64   `json:"confidence" toml:"confidence"`
	Keywords    []string  `json:"keywords" toml:"keywords"`
	LastUpdated time.Time `json:"last_updated" toml:"-"`
}

// ScoredDocument pairs a document with its per-query relevance score.
// The score is derived at retrieval time and never persisted.
type ScoredDocument struct {
	DocumentRecord
	RelevanceScore float64 `json:"relevance_score"`
}

// SourceRef is the attribution metadata attached to an assistant turn,
// one entry per document the answer was conditioned on.
type SourceRef struct {
	URL            string    `json:"url"`
	Title          string    `json:"title"`
	RelevanceScore float64   `json:"relevance_score"`
	Confidence     float64   `json:"confidence"`
	LastUpdated    time.Time `json:"last_updated"`
	Topic          string    `json:"topic"`
}

// Refresh outcome states for a single topic in a refresh cycle.
const (
	RefreshUpdated = "updated"
	RefreshSkipped = "skipped"
	RefreshFailed  = "failed"
)

// RefreshOutcome reports the result of refreshing one topic. A failure for
// one topic never aborts the others; callers receive one outcome per topic.
type RefreshOutcome struct {
	Topic  string `json:"topic"`
	URL    string `json:"url"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// RefreshReport summarizes a full refresh cycle. The cycle is considered
// partially successful when at least one topic updated.
type RefreshReport struct {
	Outcomes  []RefreshOutcome `json:"outcomes"`
	Updated   int              `json:"updated"`
	Skipped   int              `json:"skipped"`
	Failed    int              `json:"failed"`
	StartedAt time.Time        `json:"started_at"`
}

// Success reports whether the cycle updated at least one topic.
func (r *RefreshReport) Success() bool {
	return r.Updated > 0
}
