package kb

import (
	_ "embed"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/respondeo/internal/models"
)

//go:embed seeds.toml
var seedData []byte

type seedFile struct {
	Documents []models.DocumentRecord `toml:"documents"`
}

// Store is the in-memory knowledge base. Documents keep the order they were
// seeded in; iteration and scoring ties are deterministic because of it.
type Store struct {
	mu          sync.RWMutex
	order       []string
	docs        map[string]models.DocumentRecord
	lastRefresh time.Time
	logger      arbor.ILogger
}

// NewStore loads the embedded seed corpus. The initial refresh timestamp is
// backdated so the first staleness check reports the corpus as stale.
func NewStore(logger arbor.ILogger) (*Store, error) {
	var seeds seedFile
	if err := toml.Unmarshal(seedData, &seeds); err != nil {
		return nil, fmt.Errorf("failed to parse seed corpus: %w", err)
	}
	return NewStoreFromDocuments(seeds.Documents, logger)
}

// NewStoreFromFile loads a corpus from a user-supplied TOML file, replacing
// the embedded seeds entirely.
func NewStoreFromFile(path string, logger arbor.ILogger) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}

	var seeds seedFile
	if err := toml.Unmarshal(data, &seeds); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	logger.Info().Str("path", path).Msg("Loading knowledge base from file")
	return NewStoreFromDocuments(seeds.Documents, logger)
}

// NewStoreFromDocuments builds a store from an explicit document set,
// preserving slice order.
func NewStoreFromDocuments(documents []models.DocumentRecord, logger arbor.ILogger) (*Store, error) {
	if len(documents) == 0 {
		return nil, fmt.Errorf("seed corpus is empty")
	}

	now := time.Now()
	s := &Store{
		order:       make([]string, 0, len(documents)),
		docs:        make(map[string]models.DocumentRecord, len(documents)),
		lastRefresh: now.Add(-30 * 24 * time.Hour),
		logger:      logger,
	}

	for _, doc := range documents {
		if doc.Topic == "" {
			return nil, fmt.Errorf("seed corpus contains a document without a topic")
		}
		if _, exists := s.docs[doc.Topic]; exists {
			return nil, fmt.Errorf("seed corpus contains duplicate topic %q", doc.Topic)
		}
		doc.LastUpdated = now
		s.order = append(s.order, doc.Topic)
		s.docs[doc.Topic] = doc
	}

	logger.Info().Int("documents", len(s.order)).Msg("Knowledge base loaded")
	return s, nil
}

// Get returns the document for a topic.
func (s *Store) Get(topic string) (models.DocumentRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[topic]
	return doc, ok
}

// All returns every document in seed order.
func (s *Store) All() []models.DocumentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.DocumentRecord, 0, len(s.order))
	for _, topic := range s.order {
		out = append(out, s.docs[topic])
	}
	return out
}

// Topics returns the topic names in seed order.
func (s *Store) Topics() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Count returns the number of documents in the store.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// UpdateContent replaces a document's content and timestamps it. Keywords,
// confidence, and source are preserved so retrieval quality survives a
// refresh. Unknown topics are ignored and reported as false.
func (s *Store) UpdateContent(topic, content string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[topic]
	if !ok {
		return false
	}
	doc.Content = content
	doc.LastUpdated = time.Now()
	s.docs[topic] = doc

	s.logger.Debug().Str("topic", topic).Int("chars", len(content)).Msg("Knowledge base document updated")
	return true
}

// LastRefresh returns when the store last completed a refresh.
func (s *Store) LastRefresh() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefresh
}

// MarkRefreshed records a completed refresh pass.
func (s *Store) MarkRefreshed(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRefresh = t
}
