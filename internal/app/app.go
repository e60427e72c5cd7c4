package app

import (
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/handlers"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/kb"
	"github.com/ternarybob/respondeo/internal/services/chat"
	"github.com/ternarybob/respondeo/internal/services/llm"
	"github.com/ternarybob/respondeo/internal/services/refresh"
	"github.com/ternarybob/respondeo/internal/services/session"
)

// App wires configuration, services, and HTTP handlers together.
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Core services
	Store          *kb.Store
	Retriever      *kb.Retriever
	LLMService     interfaces.LLMService
	ChatService    interfaces.ChatService
	RefreshService *refresh.Service
	Sessions       *session.Manager

	// HTTP handlers
	ChatHandler    *handlers.ChatHandler
	SessionHandler *handlers.SessionHandler
	KBHandler      *handlers.KBHandler
	APIHandler     *handlers.APIHandler
	PageHandler    *handlers.PageHandler
}

// New builds the application. A missing LLM API key is not fatal: the app
// starts with generation degraded and reports it on the chat health
// endpoint.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	store, err := newStore(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize knowledge base: %w", err)
	}
	app.Store = store
	app.Retriever = kb.NewRetriever(store, cfg.Retrieval, logger)

	llmService, err := llm.NewLLMService(cfg, logger)
	switch {
	case err == nil:
		app.LLMService = llmService
	case errors.Is(err, interfaces.ErrNotConfigured):
		logger.Warn().Err(err).Msg("LLM provider not configured, chat responses degraded")
	default:
		return nil, fmt.Errorf("failed to initialize LLM service: %w", err)
	}

	chatService := chat.NewService(app.LLMService, app.Retriever, cfg, logger)
	app.ChatService = chatService

	refreshService, err := refresh.NewService(store, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize refresh service: %w", err)
	}
	app.RefreshService = refreshService

	app.Sessions = session.NewManager(logger)

	app.ChatHandler = handlers.NewChatHandler(chatService, app.Sessions, logger)
	app.SessionHandler = handlers.NewSessionHandler(app.Sessions, logger)
	app.KBHandler = handlers.NewKBHandler(store, refreshService, logger)
	app.APIHandler = handlers.NewAPIHandler(logger)
	app.PageHandler = handlers.NewPageHandler(logger)

	logger.Info().
		Int("documents", store.Count()).
		Str("provider", string(cfg.LLM.DefaultProvider)).
		Msg("Application initialized")

	return app, nil
}

// newStore loads the corpus, preferring a configured seed file over the
// embedded seeds.
func newStore(cfg *common.Config, logger arbor.ILogger) (*kb.Store, error) {
	if cfg.KB.SeedFile != "" {
		return kb.NewStoreFromFile(cfg.KB.SeedFile, logger)
	}
	return kb.NewStore(logger)
}

// Close releases app resources.
func (a *App) Close() error {
	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil {
			return err
		}
	}
	return nil
}
