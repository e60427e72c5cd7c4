package kb

import (
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/models"
)

// Answer confidence levels surfaced to the user.
const (
	ConfidenceHigh   = "High"
	ConfidenceMedium = "Medium"
	ConfidenceLow    = "Low"
)

// EstimateConfidence grades the grounding material for an answer. The grade
// averages the retrieval relevance and the stored quality confidence of the
// selected documents; no documents means Low.
func EstimateConfidence(docs []models.ScoredDocument, cfg common.ConfidenceConfig) string {
	if len(docs) == 0 {
		return ConfidenceLow
	}

	var relSum, confSum float64
	for _, d := range docs {
		relSum += d.RelevanceScore
		confSum += d.Confidence
	}
	n := float64(len(docs))
	combined := (relSum/n + confSum/n) / 2

	switch {
	case combined > cfg.HighThreshold:
		return ConfidenceHigh
	case combined > cfg.MediumThreshold:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
