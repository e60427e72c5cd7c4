package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/kb"
	"github.com/ternarybob/respondeo/internal/models"
)

// apologyAnswer is returned whenever answer generation fails. Retrieval
// problems, provider outages, and an unconfigured provider all collapse to
// this so the conversation can continue.
const apologyAnswer = "I apologize, but I encountered an error while generating a response. Please try again."

// Service answers questions grounded in the knowledge base. It implements
// interfaces.ChatService.
type Service struct {
	llm       interfaces.LLMService
	retriever *kb.Retriever
	prompts   *PromptBuilder
	confCfg   common.ConfidenceConfig
	logger    arbor.ILogger
}

// NewService wires a chat service. llm may be nil when no provider is
// configured; every Ask then returns the apology result.
func NewService(llm interfaces.LLMService, retriever *kb.Retriever, cfg *common.Config, logger arbor.ILogger) *Service {
	return &Service{
		llm:       llm,
		retriever: retriever,
		prompts:   NewPromptBuilder(cfg.Prompt),
		confCfg:   cfg.Confidence,
		logger:    logger,
	}
}

// Ask answers one user question. An error is returned only for retrieval
// configuration problems; generation failures degrade to the apology result.
func (s *Service) Ask(ctx context.Context, req *interfaces.AskRequest) (*interfaces.AskResult, error) {
	if req == nil || req.Query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	startTime := time.Now()

	docs, err := s.retriever.Retrieve(req.Query)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	answer, err := s.generateAnswer(ctx, req, docs)
	if err != nil {
		s.logger.Error().Err(err).Str("query", req.Query).Msg("Answer generation failed")
		return s.apologyResult(), nil
	}

	result := &interfaces.AskResult{
		Answer:            answer,
		Sources:           sourceRefs(docs),
		FollowupQuestions: s.generateFollowups(ctx, req.Query, answer),
		ConfidenceLevel:   kb.EstimateConfidence(docs, s.confCfg),
		Topics:            kb.ExtractTopics(req.Query),
	}

	s.logger.Info().
		Str("query", req.Query).
		Int("documents", len(docs)).
		Str("confidence", result.ConfidenceLevel).
		Dur("duration", time.Since(startTime)).
		Msg("Question answered")

	return result, nil
}

func (s *Service) generateAnswer(ctx context.Context, req *interfaces.AskRequest, docs []models.ScoredDocument) (string, error) {
	if s.llm == nil {
		return "", interfaces.ErrNotConfigured
	}

	messages := []interfaces.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: s.prompts.BuildAnswerPrompt(req.Query, docs, req.History)},
	}
	return s.llm.Chat(ctx, messages)
}

// generateFollowups asks the model for follow-up questions. Any failure, or
// unusably short output, falls back to a fixed set.
func (s *Service) generateFollowups(ctx context.Context, query, answer string) []string {
	if s.llm == nil {
		return fallbackFollowups
	}

	raw, err := s.llm.Chat(ctx, []interfaces.Message{
		{Role: "user", Content: s.prompts.BuildFollowupPrompt(query, answer)},
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Follow-up generation failed")
		return fallbackFollowups
	}

	questions := parseFollowups(raw, s.prompts.cfg.MaxFollowups)
	if len(questions) == 0 {
		return fallbackFollowups
	}
	return questions
}

func (s *Service) apologyResult() *interfaces.AskResult {
	return &interfaces.AskResult{
		Answer:            apologyAnswer,
		Sources:           []models.SourceRef{},
		FollowupQuestions: retryFollowups,
		ConfidenceLevel:   kb.ConfidenceLow,
		Topics:            []string{},
	}
}

func sourceRefs(docs []models.ScoredDocument) []models.SourceRef {
	refs := make([]models.SourceRef, 0, len(docs))
	for _, doc := range docs {
		refs = append(refs, models.SourceRef{
			URL:            doc.Source,
			Title:          common.TitleFromURL(doc.Source),
			RelevanceScore: doc.RelevanceScore,
			Confidence:     doc.Confidence,
			LastUpdated:    doc.LastUpdated,
			Topic:          doc.Topic,
		})
	}
	return refs
}

// Ready reports whether a generation provider is configured.
func (s *Service) Ready() bool {
	return s.llm != nil
}

// HealthCheck probes the generation provider.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.llm == nil {
		return interfaces.ErrNotConfigured
	}
	return s.llm.HealthCheck(ctx)
}

// GetMode returns the underlying LLM mode, or empty when unconfigured.
func (s *Service) GetMode() interfaces.LLMMode {
	if s.llm == nil {
		return ""
	}
	return s.llm.GetMode()
}
