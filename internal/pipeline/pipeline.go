package pipeline

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"marketpipe/internal/cleaner"
	"marketpipe/internal/model"
	"marketpipe/internal/reporter"
	"marketpipe/internal/storage"
)

// Stage names used in failure reporting.
const (
	stageFetch  = "fetch"
	stageClean  = "clean"
	stageStore  = "store"
	stageReport = "report"
)

// DataFetcher is the fetch stage as the orchestrator sees it.
type DataFetcher interface {
	FetchMarketData() (json.RawMessage, error)
	FetchNewsData(apiKey string) (json.RawMessage, error)
}

// Pipeline drives one fetch, clean, store, report sequence per Run call.
type Pipeline struct {
	fetcher  DataFetcher
	cleaner  *cleaner.Cleaner
	store    *storage.Store
	reporter *reporter.Reporter
	logger   *slog.Logger
}

// New creates a Pipeline over the four stage components.
func New(f DataFetcher, c *cleaner.Cleaner, s *storage.Store, r *reporter.Reporter, logger *slog.Logger) *Pipeline {
	return &Pipeline{fetcher: f, cleaner: c, store: s, reporter: r, logger: logger}
}

type runArtifacts struct {
	market     []model.MarketRecord
	news       []model.NewsRecord
	reportPath string
	csvExports []string
}

// Run executes the full pipeline and returns a summary. It never returns an
// error: failures end the run as FAILED inside the summary, and every run,
// success or failure, appends exactly one audit row.
func (p *Pipeline) Run(fetchNews bool, newsAPIKey string) *model.RunSummary {
	start := time.Now()
	runID := uuid.NewString()
	p.logger.Info("pipeline execution started", "run_id", runID, "fetch_news", fetchNews)

	art := &runArtifacts{}
	stageErr := p.execute(fetchNews, newsAPIKey, art)

	end := time.Now()
	summary := &model.RunSummary{
		RunID:           runID,
		StartTime:       start,
		EndTime:         end,
		Duration:        end.Sub(start),
		MarketProcessed: len(art.market),
		NewsProcessed:   len(art.news),
		ReportPath:      art.reportPath,
		CSVExports:      art.csvExports,
	}

	if stageErr != nil && stageErr.Severity == model.SeverityFatal {
		summary.Status = model.StatusFailed
		summary.ErrorMessage = stageErr.Error()
		p.store.LogPipelineRun(model.StatusFailed, len(art.market), len(art.news), stageErr.Error())
		p.logger.Error("pipeline failed",
			"run_id", runID, "stage", stageErr.Stage, "error", stageErr.Err,
			"duration", summary.Duration)
		return summary
	}

	summary.Status = model.StatusSuccess
	p.store.LogPipelineRun(model.StatusSuccess, len(art.market), len(art.news), "")
	if stats, err := p.store.Stats(); err != nil {
		p.logger.Warn("failed to collect database stats", "error", err)
	} else {
		summary.Stats = stats
	}

	p.logger.Info("pipeline execution finished",
		"run_id", runID, "status", string(summary.Status),
		"market_records", summary.MarketProcessed,
		"news_records", summary.NewsProcessed,
		"duration", summary.Duration)
	return summary
}

// execute walks the stages. Recoverable failures are absorbed here; only a
// fatal stage error is returned.
func (p *Pipeline) execute(fetchNews bool, newsAPIKey string, art *runArtifacts) *model.StageError {
	// FETCH. Market data is mandatory; news is best-effort.
	p.logger.Info("stage 1: fetching data")
	rawMarket, err := p.fetcher.FetchMarketData()
	if err != nil {
		return model.Fatal(stageFetch, err)
	}
	var rawNews json.RawMessage
	if fetchNews {
		if rawNews, err = p.fetcher.FetchNewsData(newsAPIKey); err != nil {
			p.degrade(model.Recoverable(stageFetch, err))
			rawNews = nil
		}
	}

	// CLEAN. Structural errors in either table are fatal. The news table is
	// an explicit empty slice when news was disabled or failed, so every
	// downstream stage sees a real value.
	p.logger.Info("stage 2: cleaning data")
	market, err := p.cleaner.CleanMarketData(rawMarket)
	if err != nil {
		return model.Fatal(stageClean, err)
	}
	art.market = market

	news := []model.NewsRecord{}
	if rawNews != nil {
		if news, err = p.cleaner.CleanNewsData(rawNews); err != nil {
			return model.Fatal(stageClean, err)
		}
	}
	art.news = news

	// STORE.
	p.logger.Info("stage 3: storing data")
	if err := p.store.StoreMarketData(market, storage.Append); err != nil {
		return model.Fatal(stageStore, err)
	}
	if len(news) > 0 {
		if err := p.store.StoreNewsData(news, storage.Append); err != nil {
			return model.Fatal(stageStore, err)
		}
	}

	// REPORT. A run that fetched, cleaned, and stored has succeeded; report
	// and export problems degrade the artifacts, not the run.
	p.logger.Info("stage 4: generating reports")
	ms := p.reporter.MarketSummary(market)
	ns := p.reporter.NewsSummary(news)
	if path, err := p.reporter.CreateDailyReport(market, news, ms, ns); err != nil {
		p.degrade(model.Recoverable(stageReport, err))
	} else {
		art.reportPath = path
	}
	if marketCSV, newsCSV, summaryCSV, err := p.reporter.ExportCSV(market, news); err != nil {
		p.degrade(model.Recoverable(stageReport, err))
	} else {
		art.csvExports = []string{marketCSV, newsCSV, summaryCSV}
	}

	return nil
}

func (p *Pipeline) degrade(e *model.StageError) {
	p.logger.Warn("continuing after recoverable failure", "stage", e.Stage, "error", e.Err)
}

// History returns recent run audit rows. Read-only; bypasses the state machine.
func (p *Pipeline) History(limit int) ([]model.PipelineRun, error) {
	return p.store.PipelineHistory(limit)
}

// LatestMarket returns the most recently stored market rows.
func (p *Pipeline) LatestMarket(limit int) ([]model.MarketRecord, error) {
	return p.store.LatestMarketData(limit)
}

// LatestNews returns the most recently stored news rows.
func (p *Pipeline) LatestNews(limit int) ([]model.NewsRecord, error) {
	return p.store.LatestNews(limit)
}
