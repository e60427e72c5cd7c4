package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// PlaceholderAPIKey is the unconfigured sentinel shipped in sample configs.
// A key equal to this value is treated the same as an empty key.
const PlaceholderAPIKey = "your_google_api_key_here"

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Server      ServerConfig     `toml:"server"`
	Logging     LoggingConfig    `toml:"logging"`
	LLM         LLMConfig        `toml:"llm"`
	KB          KBConfig         `toml:"kb"`
	Gemini      GeminiConfig     `toml:"gemini"`
	Claude      ClaudeConfig     `toml:"claude"`
	Retrieval   RetrievalConfig  `toml:"retrieval"`
	Confidence  ConfidenceConfig `toml:"confidence"`
	Prompt      PromptConfig     `toml:"prompt"`
	Refresh     RefreshConfig    `toml:"refresh"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gt=0,lte=65535"`
	Host string `toml:"host" validate:"required"`
}

type LoggingConfig struct {
	Level      string `toml:"level"`       // "debug", "info", "warn", "error"
	Format     string `toml:"format"`      // "json" or "text"
	TimeFormat string `toml:"time_format"` // Time format for logs (default: "15:04:05.000")
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig contains unified configuration for all AI providers
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider" validate:"oneof=gemini claude"` // "gemini" or "claude" (default: "gemini")
}

// KBConfig controls the knowledge base corpus source
type KBConfig struct {
	SeedFile string `toml:"seed_file"` // Optional TOML corpus replacing the embedded seeds
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key
	Model       string  `toml:"model"`       // Model for chat completions (default: "gemini-2.0-flash")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 500)
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "30s")
	Temperature float32 `toml:"temperature"` // Chat completion temperature (default: 0.7)
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key
	Model       string  `toml:"model"`       // Model for chat completions (default: "claude-3-5-haiku-20241022")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 500)
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "30s")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.7)
}

// RetrievalConfig tunes relevance scoring and document selection
type RetrievalConfig struct {
	KeywordWeight  float64  `toml:"keyword_weight" validate:"gte=0,lte=1"` // Weight of keyword matches in relevance (default: 0.5)
	ContentWeight  float64  `toml:"content_weight" validate:"gte=0,lte=1"` // Weight of content-word overlap (default: 0.3)
	QualityWeight  float64  `toml:"quality_weight" validate:"gte=0,lte=1"` // Weight of stored document confidence (default: 0.2)
	MinScore       float64  `toml:"min_score"`                             // Score threshold below which documents are discarded (default: 0.1)
	MaxDocuments   int      `toml:"max_documents" validate:"gt=0"`         // Maximum documents returned per query (default: 3)
	FallbackTopics []string `toml:"fallback_topics" validate:"min=1"`      // Topics served when nothing scores above the threshold
	FallbackScore  float64  `toml:"fallback_score"`                        // Relevance stamped on fallback documents (default: 0.3)
}

// ConfidenceConfig holds the answer confidence thresholds
type ConfidenceConfig struct {
	HighThreshold   float64 `toml:"high_threshold"`   // Combined score above this is High (default: 0.8)
	MediumThreshold float64 `toml:"medium_threshold"` // Combined score above this is Medium (default: 0.6)
}

// PromptConfig tunes prompt assembly
type PromptConfig struct {
	HistoryTurns      int `toml:"history_turns"`       // Trailing conversation turns included in the prompt (default: 4)
	HistoryTruncateAt int `toml:"history_truncate_at"` // Per-turn character cap when echoed into the prompt (default: 200)
	MaxFollowups      int `toml:"max_followups"`       // Follow-up questions requested per answer (default: 3)
}

// RefreshConfig contains handbook scraping configuration
type RefreshConfig struct {
	Interval       string   `toml:"interval"`        // Staleness window as duration string (default: "168h")
	RequestTimeout string   `toml:"request_timeout"` // Per-page HTTP timeout (default: "10s")
	UserAgent      string   `toml:"user_agent"`      // User agent sent on scrape requests
	RateLimit      string   `toml:"rate_limit"`      // Minimum spacing between page fetches (default: "1s")
	OutputFormat   string   `toml:"output_format"`   // "text" or "markdown" (default: "text")
	MaxExcerpt     int      `toml:"max_excerpt"`     // Character cap on scraped content (default: 3000)
	MinContent     int      `toml:"min_content"`     // Minimum extracted length to accept a page (default: 100)
	AllowedHosts   []string `toml:"allowed_hosts"`   // Hosts refresh is permitted to fetch from
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability.
// Only user-facing settings should be exposed in respondeo.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			TimeFormat: "15:04:05.000",
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderGemini,
		},
		Gemini: GeminiConfig{
			APIKey:      "", // User must provide API key (no fallback)
			Model:       "gemini-2.0-flash",
			MaxTokens:   500,
			Timeout:     "30s",
			Temperature: 0.7,
		},
		Claude: ClaudeConfig{
			APIKey:      "", // User must provide API key (ANTHROPIC_API_KEY or config)
			Model:       "claude-3-5-haiku-20241022",
			MaxTokens:   500,
			Timeout:     "30s",
			Temperature: 0.7,
		},
		Retrieval: RetrievalConfig{
			KeywordWeight:  0.5,
			ContentWeight:  0.3,
			QualityWeight:  0.2,
			MinScore:       0.1,
			MaxDocuments:   3,
			FallbackTopics: []string{"culture", "values"},
			FallbackScore:  0.3,
		},
		Confidence: ConfidenceConfig{
			HighThreshold:   0.8,
			MediumThreshold: 0.6,
		},
		Prompt: PromptConfig{
			HistoryTurns:      4,
			HistoryTruncateAt: 200,
			MaxFollowups:      3,
		},
		Refresh: RefreshConfig{
			Interval:       "168h", // 7 days
			RequestTimeout: "10s",
			UserAgent:      "Mozilla/5.0 (compatible; RespondeoBot/1.0)",
			RateLimit:      "1s",
			OutputFormat:   "text",
			MaxExcerpt:     3000,
			MinContent:     100,
			AllowedHosts:   []string{"handbook.gitlab.com", "about.gitlab.com"},
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env -> CLI
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	// Environment configuration (highest priority: RESPONDEO_ENV, fallback: GO_ENV)
	if env := os.Getenv("RESPONDEO_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("RESPONDEO_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("RESPONDEO_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Logging configuration
	if level := os.Getenv("RESPONDEO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("RESPONDEO_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}

	// LLM provider configuration
	if provider := os.Getenv("RESPONDEO_LLM_DEFAULT_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(provider)
	}

	// Knowledge base configuration
	if seedFile := os.Getenv("RESPONDEO_KB_SEED_FILE"); seedFile != "" {
		config.KB.SeedFile = seedFile
	}

	// Gemini configuration (GOOGLE_API_KEY kept for parity with SDK conventions)
	if apiKey := os.Getenv("RESPONDEO_GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	} else if apiKey := os.Getenv("GOOGLE_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("RESPONDEO_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}
	if maxTokens := os.Getenv("RESPONDEO_GEMINI_MAX_TOKENS"); maxTokens != "" {
		if mt, err := strconv.Atoi(maxTokens); err == nil {
			config.Gemini.MaxTokens = mt
		}
	}
	if timeout := os.Getenv("RESPONDEO_GEMINI_TIMEOUT"); timeout != "" {
		config.Gemini.Timeout = timeout
	}
	if temperature := os.Getenv("RESPONDEO_GEMINI_TEMPERATURE"); temperature != "" {
		if t, err := strconv.ParseFloat(temperature, 32); err == nil {
			config.Gemini.Temperature = float32(t)
		}
	}

	// Claude configuration
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("RESPONDEO_CLAUDE_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey // RESPONDEO_ prefix takes priority
	}
	if model := os.Getenv("RESPONDEO_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}
	if maxTokens := os.Getenv("RESPONDEO_CLAUDE_MAX_TOKENS"); maxTokens != "" {
		if mt, err := strconv.Atoi(maxTokens); err == nil {
			config.Claude.MaxTokens = mt
		}
	}
	if timeout := os.Getenv("RESPONDEO_CLAUDE_TIMEOUT"); timeout != "" {
		config.Claude.Timeout = timeout
	}
	if temperature := os.Getenv("RESPONDEO_CLAUDE_TEMPERATURE"); temperature != "" {
		if t, err := strconv.ParseFloat(temperature, 32); err == nil {
			config.Claude.Temperature = float32(t)
		}
	}

	// Refresh configuration
	if interval := os.Getenv("RESPONDEO_REFRESH_INTERVAL"); interval != "" {
		if _, err := time.ParseDuration(interval); err == nil {
			config.Refresh.Interval = interval
		}
	}
	if requestTimeout := os.Getenv("RESPONDEO_REFRESH_REQUEST_TIMEOUT"); requestTimeout != "" {
		if _, err := time.ParseDuration(requestTimeout); err == nil {
			config.Refresh.RequestTimeout = requestTimeout
		}
	}
	if userAgent := os.Getenv("RESPONDEO_REFRESH_USER_AGENT"); userAgent != "" {
		config.Refresh.UserAgent = userAgent
	}
	if outputFormat := os.Getenv("RESPONDEO_REFRESH_OUTPUT_FORMAT"); outputFormat != "" {
		config.Refresh.OutputFormat = outputFormat
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	// Command-line flags have highest priority
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks structural constraints and the cross-field invariants the
// struct tags cannot express.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	sum := c.Retrieval.KeywordWeight + c.Retrieval.ContentWeight + c.Retrieval.QualityWeight
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("invalid configuration: retrieval weights must sum to 1.0, got %.3f", sum)
	}
	if c.Confidence.MediumThreshold >= c.Confidence.HighThreshold {
		return fmt.Errorf("invalid configuration: confidence medium_threshold (%.2f) must be below high_threshold (%.2f)",
			c.Confidence.MediumThreshold, c.Confidence.HighThreshold)
	}

	for _, d := range []string{c.Refresh.Interval, c.Refresh.RequestTimeout, c.Refresh.RateLimit} {
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("invalid configuration: bad duration %q: %w", d, err)
		}
	}
	switch c.Refresh.OutputFormat {
	case "text", "markdown":
	default:
		return fmt.Errorf("invalid configuration: refresh output_format must be \"text\" or \"markdown\", got %q", c.Refresh.OutputFormat)
	}

	return nil
}

// RefreshInterval returns the parsed staleness window.
func (c *Config) RefreshInterval() time.Duration {
	d, err := time.ParseDuration(c.Refresh.Interval)
	if err != nil {
		return 7 * 24 * time.Hour
	}
	return d
}

// Configured reports whether a usable Gemini key is present.
func (c *GeminiConfig) Configured() bool {
	key := strings.TrimSpace(c.APIKey)
	return key != "" && key != PlaceholderAPIKey
}

// Configured reports whether a usable Anthropic key is present.
func (c *ClaudeConfig) Configured() bool {
	key := strings.TrimSpace(c.APIKey)
	return key != "" && key != PlaceholderAPIKey
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
