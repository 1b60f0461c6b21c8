package pipeline

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"marketpipe/internal/cleaner"
	"marketpipe/internal/config"
	"marketpipe/internal/fetcher"
	"marketpipe/internal/model"
	"marketpipe/internal/reporter"
	"marketpipe/internal/storage"
)

// stubFetcher lets each test choose payloads and injected failures.
type stubFetcher struct {
	market    json.RawMessage
	marketErr error
	news      json.RawMessage
	newsErr   error
	newsCalls int
}

func (s *stubFetcher) FetchMarketData() (json.RawMessage, error) {
	return s.market, s.marketErr
}

func (s *stubFetcher) FetchNewsData(_ string) (json.RawMessage, error) {
	s.newsCalls++
	return s.news, s.newsErr
}

func newTestPipeline(t *testing.T, f DataFetcher) (*Pipeline, *storage.Store) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		ProcessedDataPath: filepath.Join(dir, "processed"),
		ReportsPath:       filepath.Join(dir, "reports"),
		DatabasePath:      filepath.Join(dir, "pipeline.db"),
		DateFormat:        "2006-01-02 15:04:05",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := storage.Open(cfg, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	c := cleaner.New(cfg, logger)
	r := reporter.New(cfg, logger)
	return New(f, c, store, r, logger), store
}

func TestRunSuccessWithoutNews(t *testing.T) {
	f := &stubFetcher{market: fetcher.MockMarketData()}
	p, store := newTestPipeline(t, f)

	summary := p.Run(false, "")

	if summary.Status != model.StatusSuccess {
		t.Fatalf("status = %s (%s)", summary.Status, summary.ErrorMessage)
	}
	if summary.MarketProcessed != 10 {
		t.Errorf("MarketProcessed = %d, want 10", summary.MarketProcessed)
	}
	if summary.NewsProcessed != 0 {
		t.Errorf("NewsProcessed = %d, want 0", summary.NewsProcessed)
	}
	if f.newsCalls != 0 {
		t.Errorf("news fetch called %d times with news disabled", f.newsCalls)
	}
	if summary.ReportPath == "" || len(summary.CSVExports) != 3 {
		t.Errorf("missing artifacts: report=%q csv=%v", summary.ReportPath, summary.CSVExports)
	}
	if summary.Stats.MarketRecords != 10 {
		t.Errorf("stored market rows = %d, want 10", summary.Stats.MarketRecords)
	}

	runs, err := store.PipelineHistory(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Status != model.StatusSuccess {
		t.Errorf("audit log = %+v, want one SUCCESS row", runs)
	}
}

func TestRunSuccessWithNews(t *testing.T) {
	f := &stubFetcher{market: fetcher.MockMarketData(), news: fetcher.MockNewsData()}
	p, _ := newTestPipeline(t, f)

	summary := p.Run(true, "test-key")

	if summary.Status != model.StatusSuccess {
		t.Fatalf("status = %s (%s)", summary.Status, summary.ErrorMessage)
	}
	if summary.NewsProcessed != 5 {
		t.Errorf("NewsProcessed = %d, want 5", summary.NewsProcessed)
	}
	if summary.Stats.NewsRecords != 5 {
		t.Errorf("stored news rows = %d, want 5", summary.Stats.NewsRecords)
	}
}

func TestRunMarketFetchFailureIsFatal(t *testing.T) {
	f := &stubFetcher{marketErr: errors.New("connection refused")}
	p, store := newTestPipeline(t, f)

	summary := p.Run(true, "test-key")

	if summary.Status != model.StatusFailed {
		t.Fatalf("status = %s, want FAILED", summary.Status)
	}
	if summary.ErrorMessage == "" {
		t.Error("failed summary must carry an error message")
	}
	if summary.MarketProcessed != 0 || summary.NewsProcessed != 0 {
		t.Errorf("counts = %d/%d, want 0/0", summary.MarketProcessed, summary.NewsProcessed)
	}

	stats, _ := store.Stats()
	if stats.MarketRecords != 0 || stats.NewsRecords != 0 {
		t.Errorf("nothing should be stored after a fatal fetch failure, got %+v", stats)
	}

	runs, err := store.PipelineHistory(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Status != model.StatusFailed {
		t.Fatalf("audit log = %+v, want one FAILED row", runs)
	}
	if runs[0].ErrorMessage == "" {
		t.Error("FAILED audit row must carry the error message")
	}
}

func TestRunNewsFetchFailureIsRecoverable(t *testing.T) {
	f := &stubFetcher{market: fetcher.MockMarketData(), newsErr: errors.New("status 401")}
	p, store := newTestPipeline(t, f)

	summary := p.Run(true, "bad-key")

	if summary.Status != model.StatusSuccess {
		t.Fatalf("news failure must not fail the run, got %s (%s)", summary.Status, summary.ErrorMessage)
	}
	if summary.MarketProcessed != 10 {
		t.Errorf("MarketProcessed = %d, want 10", summary.MarketProcessed)
	}
	if summary.NewsProcessed != 0 {
		t.Errorf("NewsProcessed = %d, want 0 on degraded run", summary.NewsProcessed)
	}

	runs, _ := store.PipelineHistory(10)
	if len(runs) != 1 || runs[0].Status != model.StatusSuccess {
		t.Errorf("audit log = %+v, want one SUCCESS row", runs)
	}
}

func TestRunMalformedMarketPayloadIsFatal(t *testing.T) {
	f := &stubFetcher{market: json.RawMessage(`"not market data"`)}
	p, store := newTestPipeline(t, f)

	summary := p.Run(false, "")

	if summary.Status != model.StatusFailed {
		t.Fatalf("status = %s, want FAILED on malformed payload", summary.Status)
	}
	stats, _ := store.Stats()
	if stats.MarketRecords != 0 {
		t.Errorf("nothing should be stored, got %d rows", stats.MarketRecords)
	}
}

func TestEveryRunAppendsOneAuditRow(t *testing.T) {
	f := &stubFetcher{market: fetcher.MockMarketData()}
	p, store := newTestPipeline(t, f)

	p.Run(false, "")
	f.marketErr = errors.New("boom")
	p.Run(false, "")
	f.marketErr = nil
	p.Run(false, "")

	runs, err := store.PipelineHistory(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 {
		t.Fatalf("audit rows = %d, want one per run", len(runs))
	}
	var failed int
	for _, r := range runs {
		if r.Status == model.StatusFailed {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("FAILED rows = %d, want 1", failed)
	}
}

func TestRepeatedRunsDoNotDuplicateRows(t *testing.T) {
	f := &stubFetcher{market: fetcher.MockMarketData()}
	p, store := newTestPipeline(t, f)

	// Same asset ids at (almost certainly) the same second-resolution
	// fetch timestamp: append mode must not multiply rows.
	p.Run(false, "")
	p.Run(false, "")

	stats, _ := store.Stats()
	if stats.MarketRecords > 20 {
		t.Errorf("market rows = %d, duplicates leaked past the primary key", stats.MarketRecords)
	}
	if stats.PipelineRuns != 2 {
		t.Errorf("audit rows = %d, want 2", stats.PipelineRuns)
	}
}

func TestQueryHelpers(t *testing.T) {
	f := &stubFetcher{market: fetcher.MockMarketData(), news: fetcher.MockNewsData()}
	p, _ := newTestPipeline(t, f)
	if s := p.Run(true, "test-key"); s.Status != model.StatusSuccess {
		t.Fatalf("setup run failed: %s", s.ErrorMessage)
	}

	market, err := p.LatestMarket(3)
	if err != nil || len(market) != 3 {
		t.Errorf("LatestMarket: %d rows, err=%v", len(market), err)
	}
	news, err := p.LatestNews(2)
	if err != nil || len(news) != 2 {
		t.Errorf("LatestNews: %d rows, err=%v", len(news), err)
	}
	history, err := p.History(5)
	if err != nil || len(history) != 1 {
		t.Errorf("History: %d rows, err=%v", len(history), err)
	}
}
