package kb

import (
	"strings"

	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/models"
)

// Scorer computes a relevance score for a document against a query. The
// score blends keyword hits, raw word overlap with the document body, and
// the document's stored quality confidence.
type Scorer struct {
	keywordWeight float64
	contentWeight float64
	qualityWeight float64
}

// NewScorer builds a scorer from retrieval configuration.
func NewScorer(cfg common.RetrievalConfig) *Scorer {
	return &Scorer{
		keywordWeight: cfg.KeywordWeight,
		contentWeight: cfg.ContentWeight,
		qualityWeight: cfg.QualityWeight,
	}
}

// Score returns a relevance value in [0, 1].
func (s *Scorer) Score(query string, doc models.DocumentRecord) float64 {
	queryLower := strings.ToLower(query)

	// Keyword matching: fraction of the document's keywords that appear as
	// substrings of the query. Documents without keywords score zero here.
	keywordScore := 0.0
	if len(doc.Keywords) > 0 {
		matches := 0
		for _, keyword := range doc.Keywords {
			if strings.Contains(queryLower, strings.ToLower(keyword)) {
				matches++
			}
		}
		keywordScore = float64(matches) / float64(len(doc.Keywords))
		if keywordScore > 1.0 {
			keywordScore = 1.0
		}
	}

	// Content overlap: fraction of distinct query words found in the body.
	queryWords := wordSet(queryLower)
	contentWords := wordSet(strings.ToLower(doc.Content))
	overlap := 0
	for w := range queryWords {
		if _, ok := contentWords[w]; ok {
			overlap++
		}
	}
	denom := len(queryWords)
	if denom < 1 {
		denom = 1
	}
	contentScore := float64(overlap) / float64(denom)

	relevance := keywordScore*s.keywordWeight + contentScore*s.contentWeight + doc.Confidence*s.qualityWeight
	if relevance > 1.0 {
		relevance = 1.0
	}
	if relevance < 0 {
		relevance = 0
	}
	return relevance
}

func wordSet(s string) map[string]struct{} {
	words := strings.Fields(s)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
