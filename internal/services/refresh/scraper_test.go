package refresh

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/respondeo/internal/common"
)

func testScraperConfig() common.RefreshConfig {
	cfg := common.NewDefaultConfig().Refresh
	cfg.AllowedHosts = nil // tests run against httptest servers
	cfg.RateLimit = "1ms"
	return cfg
}

func newTestScraper(t *testing.T, cfg common.RefreshConfig) *Scraper {
	t.Helper()
	s, err := NewScraper(cfg, arbor.NewLogger())
	if err != nil {
		t.Fatalf("NewScraper() error = %v", err)
	}
	return s
}

func TestScraper_Scrape_PrefersMainContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<nav>site navigation</nav>
			<main>the handbook content lives here</main>
			<footer>footer junk</footer>
		</body></html>`))
	}))
	defer srv.Close()

	content, err := newTestScraper(t, testScraperConfig()).Scrape(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if content != "the handbook content lives here" {
		t.Errorf("content = %q", content)
	}
}

func TestScraper_Scrape_SelectorOrder(t *testing.T) {
	// .content outranks article when both are present.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<article>article text</article>
			<div class="content">div content text</div>
		</body></html>`))
	}))
	defer srv.Close()

	content, err := newTestScraper(t, testScraperConfig()).Scrape(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if content != "div content text" {
		t.Errorf("content = %q, want .content to win over article", content)
	}
}

func TestScraper_Scrape_FallsBackToBodyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>just   body
		text</p></body></html>`))
	}))
	defer srv.Close()

	content, err := newTestScraper(t, testScraperConfig()).Scrape(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if content != "just body text" {
		t.Errorf("content = %q, want whitespace-normalized body text", content)
	}
}

func TestScraper_Scrape_SendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`<main>content</main>`))
	}))
	defer srv.Close()

	cfg := testScraperConfig()
	cfg.UserAgent = "respondeo-test-agent"
	if _, err := newTestScraper(t, cfg).Scrape(context.Background(), srv.URL); err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if gotUA != "respondeo-test-agent" {
		t.Errorf("User-Agent = %q", gotUA)
	}
}

func TestScraper_Scrape_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := newTestScraper(t, testScraperConfig()).Scrape(context.Background(), srv.URL); err == nil {
		t.Error("Scrape() error = nil, want error for 404")
	}
}

func TestScraper_Scrape_CapsExcerpt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<main>" + strings.Repeat("word ", 2000) + "</main>"))
	}))
	defer srv.Close()

	cfg := testScraperConfig()
	content, err := newTestScraper(t, cfg).Scrape(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if len(content) != cfg.MaxExcerpt {
		t.Errorf("content length = %d, want capped at %d", len(content), cfg.MaxExcerpt)
	}
}

func TestScraper_Scrape_ExcerptCutsOnRuneBoundary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<main>" + strings.Repeat("日本語テスト ", 1000) + "</main>"))
	}))
	defer srv.Close()

	cfg := testScraperConfig()
	content, err := newTestScraper(t, cfg).Scrape(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if !utf8.ValidString(content) {
		t.Fatal("capped content is not valid UTF-8")
	}
	if got := utf8.RuneCountInString(content); got != cfg.MaxExcerpt {
		t.Errorf("content runes = %d, want capped at %d", got, cfg.MaxExcerpt)
	}
}

func TestScraper_Scrape_RefusesUnlistedHost(t *testing.T) {
	cfg := testScraperConfig()
	cfg.AllowedHosts = []string{"handbook.gitlab.com"}

	_, err := newTestScraper(t, cfg).Scrape(context.Background(), "https://evil.example.com/page")
	if err == nil {
		t.Error("Scrape() error = nil, want allow-list refusal")
	}
}

func TestScraper_Scrape_MarkdownOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<main><h1>Values</h1><p>Transparency matters.</p></main>`))
	}))
	defer srv.Close()

	cfg := testScraperConfig()
	cfg.OutputFormat = "markdown"
	content, err := newTestScraper(t, cfg).Scrape(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if !strings.Contains(content, "# Values") {
		t.Errorf("content = %q, want markdown heading", content)
	}
}
