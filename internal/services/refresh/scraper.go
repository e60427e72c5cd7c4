package refresh

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/respondeo/internal/common"
)

// contentSelectors are tried in order; the first match wins. The page body
// is the last resort.
var contentSelectors = []string{
	"main",
	".content",
	".handbook-content",
	".markdown-body",
	"article",
	".post-content",
}

// strippedElements never contribute to extracted content.
const strippedElements = "script, style, nav, header, footer"

// Scraper fetches handbook pages and extracts their main content. Fetches
// are paced by a rate limiter so refresh passes stay polite.
type Scraper struct {
	client    *http.Client
	limiter   *rate.Limiter
	converter *md.Converter
	cfg       common.RefreshConfig
	logger    arbor.ILogger
}

// NewScraper builds a scraper from refresh configuration.
func NewScraper(cfg common.RefreshConfig, logger arbor.ILogger) (*Scraper, error) {
	timeout, err := time.ParseDuration(cfg.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid request timeout '%s': %w", cfg.RequestTimeout, err)
	}
	spacing, err := time.ParseDuration(cfg.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit '%s': %w", cfg.RateLimit, err)
	}

	s := &Scraper{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Every(spacing), 1),
		cfg:     cfg,
		logger:  logger,
	}
	if cfg.OutputFormat == "markdown" {
		s.converter = md.NewConverter("", true, nil)
	}
	return s, nil
}

// Scrape fetches one page and returns its extracted content, capped at the
// configured excerpt length. Hosts outside the allow list are refused.
func (s *Scraper) Scrape(ctx context.Context, pageURL string) (string, error) {
	if err := s.checkHost(pageURL); err != nil {
		return "", err
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait cancelled: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request for %s: %w", pageURL, err)
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}

	content := s.extract(doc)
	if content == "" {
		return "", fmt.Errorf("no content extracted from %s", pageURL)
	}
	content = common.Truncate(content, s.cfg.MaxExcerpt)

	s.logger.Debug().Str("url", pageURL).Int("chars", len(content)).Msg("Page scraped")
	return content, nil
}

func (s *Scraper) checkHost(pageURL string) error {
	if len(s.cfg.AllowedHosts) == 0 {
		return nil
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", pageURL, err)
	}
	for _, host := range s.cfg.AllowedHosts {
		if strings.EqualFold(u.Hostname(), host) {
			return nil
		}
	}
	return fmt.Errorf("host %q is not in the refresh allow list", u.Hostname())
}

func (s *Scraper) extract(doc *goquery.Document) string {
	doc.Find(strippedElements).Remove()

	var selection *goquery.Selection
	for _, selector := range contentSelectors {
		if found := doc.Find(selector); found.Length() > 0 {
			selection = found.First()
			break
		}
	}
	if selection == nil {
		selection = doc.Selection
	}

	if s.converter != nil {
		if markdown := strings.TrimSpace(s.converter.Convert(selection)); markdown != "" {
			return markdown
		}
	}

	// Normalize whitespace into single spaces.
	return strings.Join(strings.Fields(selection.Text()), " ")
}
