package refresh

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/kb"
	"github.com/ternarybob/respondeo/internal/models"
)

// Service re-scrapes knowledge base documents from their source pages. A
// refresh pass is best effort: every topic gets an outcome and failures on
// one page never stop the rest.
type Service struct {
	store      *kb.Store
	scraper    *Scraper
	interval   time.Duration
	minContent int
	logger     arbor.ILogger
}

// NewService wires a refresh service over the store.
func NewService(store *kb.Store, cfg *common.Config, logger arbor.ILogger) (*Service, error) {
	scraper, err := NewScraper(cfg.Refresh, logger)
	if err != nil {
		return nil, err
	}
	return &Service{
		store:      store,
		scraper:    scraper,
		interval:   cfg.RefreshInterval(),
		minContent: cfg.Refresh.MinContent,
		logger:     logger,
	}, nil
}

// ShouldRefresh reports whether the corpus is older than the refresh
// interval.
func (s *Service) ShouldRefresh() bool {
	return time.Since(s.store.LastRefresh()) > s.interval
}

// LastRefresh exposes the store's refresh timestamp.
func (s *Service) LastRefresh() time.Time {
	return s.store.LastRefresh()
}

// Interval returns the configured staleness window.
func (s *Service) Interval() time.Duration {
	return s.interval
}

// Refresh re-scrapes every document from its source URL. Pages that fetch
// cleanly but come back shorter than the minimum are skipped so a broken
// page cannot hollow out a good document. The refresh timestamp advances
// even when individual pages fail.
func (s *Service) Refresh(ctx context.Context) *models.RefreshReport {
	report := &models.RefreshReport{StartedAt: time.Now()}

	s.logger.Info().Int("documents", s.store.Count()).Msg("Starting knowledge base refresh")

	for _, doc := range s.store.All() {
		outcome := models.RefreshOutcome{Topic: doc.Topic, URL: doc.Source}

		if ctx.Err() != nil {
			outcome.Status = models.RefreshFailed
			outcome.Error = ctx.Err().Error()
			report.Outcomes = append(report.Outcomes, outcome)
			report.Failed++
			continue
		}

		content, err := s.scraper.Scrape(ctx, doc.Source)
		switch {
		case err != nil:
			s.logger.Warn().Err(err).Str("topic", doc.Topic).Msg("Refresh failed for topic")
			outcome.Status = models.RefreshFailed
			outcome.Error = err.Error()
			report.Failed++

		case len(content) < s.minContent:
			s.logger.Warn().
				Str("topic", doc.Topic).
				Int("chars", len(content)).
				Msg("Refresh skipped, content too short")
			outcome.Status = models.RefreshSkipped
			report.Skipped++

		default:
			s.store.UpdateContent(doc.Topic, content)
			outcome.Status = models.RefreshUpdated
			report.Updated++
		}

		report.Outcomes = append(report.Outcomes, outcome)
	}

	s.store.MarkRefreshed(time.Now())

	s.logger.Info().
		Int("updated", report.Updated).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Msg("Knowledge base refresh finished")

	return report
}
