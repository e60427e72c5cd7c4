package refresh

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/kb"
	"github.com/ternarybob/respondeo/internal/models"
)

func refreshFixture(t *testing.T) (*Service, *kb.Store, *httptest.Server) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/good", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<main>" + strings.Repeat("fresh handbook content ", 20) + "</main>"))
	})
	mux.HandleFunc("/short", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<main>tiny</main>"))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "oops", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	logger := arbor.NewLogger()
	store, err := kb.NewStoreFromDocuments([]models.DocumentRecord{
		{Topic: "good", Source: srv.URL + "/good", Content: "stale", Confidence: 0.9},
		{Topic: "short", Source: srv.URL + "/short", Content: "stale", Confidence: 0.9},
		{Topic: "broken", Source: srv.URL + "/broken", Content: "stale", Confidence: 0.9},
	}, logger)
	if err != nil {
		t.Fatalf("NewStoreFromDocuments() error = %v", err)
	}

	cfg := common.NewDefaultConfig()
	cfg.Refresh.AllowedHosts = nil
	cfg.Refresh.RateLimit = "1ms"

	svc, err := NewService(store, cfg, logger)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc, store, srv
}

func TestService_Refresh_BestEffort(t *testing.T) {
	svc, store, _ := refreshFixture(t)

	report := svc.Refresh(context.Background())

	if report.Updated != 1 || report.Skipped != 1 || report.Failed != 1 {
		t.Fatalf("report = updated %d, skipped %d, failed %d; want 1/1/1",
			report.Updated, report.Skipped, report.Failed)
	}
	if len(report.Outcomes) != 3 {
		t.Fatalf("outcomes = %d, want one per topic", len(report.Outcomes))
	}
	if !report.Success() {
		t.Error("Success() = false, want true when anything updated")
	}

	byTopic := map[string]models.RefreshOutcome{}
	for _, o := range report.Outcomes {
		byTopic[o.Topic] = o
	}
	if byTopic["good"].Status != models.RefreshUpdated {
		t.Errorf("good status = %q", byTopic["good"].Status)
	}
	if byTopic["short"].Status != models.RefreshSkipped {
		t.Errorf("short status = %q", byTopic["short"].Status)
	}
	if byTopic["broken"].Status != models.RefreshFailed {
		t.Errorf("broken status = %q", byTopic["broken"].Status)
	}
	if byTopic["broken"].Error == "" {
		t.Error("failed outcome carries no error detail")
	}

	// Only the good topic's content changed.
	good, _ := store.Get("good")
	if good.Content == "stale" {
		t.Error("good topic content not updated")
	}
	short, _ := store.Get("short")
	if short.Content != "stale" {
		t.Error("short topic content overwritten with too-short page")
	}
	broken, _ := store.Get("broken")
	if broken.Content != "stale" {
		t.Error("broken topic content changed despite fetch failure")
	}
}

func TestService_Refresh_AdvancesTimestamp(t *testing.T) {
	svc, store, _ := refreshFixture(t)

	before := store.LastRefresh()
	svc.Refresh(context.Background())
	if !store.LastRefresh().After(before) {
		t.Error("refresh did not advance the refresh timestamp")
	}
	if svc.ShouldRefresh() {
		t.Error("ShouldRefresh() = true immediately after a refresh")
	}
}

func TestService_ShouldRefresh_InitiallyStale(t *testing.T) {
	svc, _, _ := refreshFixture(t)

	if !svc.ShouldRefresh() {
		t.Error("ShouldRefresh() = false for a freshly seeded store")
	}
}

func TestService_Refresh_CancelledContext(t *testing.T) {
	svc, store, _ := refreshFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := svc.Refresh(ctx)
	if report.Updated != 0 {
		t.Errorf("updated = %d with cancelled context, want 0", report.Updated)
	}
	if report.Failed != store.Count() {
		t.Errorf("failed = %d, want %d", report.Failed, store.Count())
	}
}

func TestService_Interval(t *testing.T) {
	svc, _, _ := refreshFixture(t)

	if svc.Interval() != 7*24*time.Hour {
		t.Errorf("Interval() = %v, want 168h", svc.Interval())
	}
}
