package kb

import (
	"fmt"
	"sort"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/models"
)

// Retriever selects the documents most relevant to a query. When nothing
// clears the score threshold it serves the configured fallback topics so an
// answer always has grounding material.
type Retriever struct {
	store  *Store
	scorer *Scorer
	cfg    common.RetrievalConfig
	logger arbor.ILogger
}

// NewRetriever wires a retriever over a store.
func NewRetriever(store *Store, cfg common.RetrievalConfig, logger arbor.ILogger) *Retriever {
	return &Retriever{
		store:  store,
		scorer: NewScorer(cfg),
		cfg:    cfg,
		logger: logger,
	}
}

// Retrieve scores every document and returns the top matches above the
// threshold, highest first. Ordering among equal scores follows seed order.
// An error is returned only when the fallback path is needed and none of
// the configured fallback topics exist in the store.
func (r *Retriever) Retrieve(query string) ([]models.ScoredDocument, error) {
	scored := make([]models.ScoredDocument, 0, r.cfg.MaxDocuments)
	for _, doc := range r.store.All() {
		score := r.scorer.Score(query, doc)
		if score > r.cfg.MinScore {
			scored = append(scored, models.ScoredDocument{
				DocumentRecord: doc,
				RelevanceScore: score,
			})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RelevanceScore > scored[j].RelevanceScore
	})

	if len(scored) == 0 {
		return r.fallback(query)
	}

	if len(scored) > r.cfg.MaxDocuments {
		scored = scored[:r.cfg.MaxDocuments]
	}
	return scored, nil
}

func (r *Retriever) fallback(query string) ([]models.ScoredDocument, error) {
	docs := make([]models.ScoredDocument, 0, len(r.cfg.FallbackTopics))
	for _, topic := range r.cfg.FallbackTopics {
		doc, ok := r.store.Get(topic)
		if !ok {
			r.logger.Warn().Str("topic", topic).Msg("Fallback topic missing from knowledge base")
			continue
		}
		docs = append(docs, models.ScoredDocument{
			DocumentRecord: doc,
			RelevanceScore: r.cfg.FallbackScore,
		})
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no fallback topics available: %v not found in knowledge base", r.cfg.FallbackTopics)
	}

	r.logger.Debug().Str("query", query).Int("documents", len(docs)).Msg("Serving fallback documents")
	return docs, nil
}
