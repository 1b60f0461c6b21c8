package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"marketpipe/internal/cleaner"
	"marketpipe/internal/config"
	"marketpipe/internal/fetcher"
	"marketpipe/internal/model"
	"marketpipe/internal/pipeline"
	"marketpipe/internal/reporter"
	"marketpipe/internal/scheduler"
	"marketpipe/internal/storage"
)

func main() {
	godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}

	var (
		configFlag = flag.String("config", cfgPath, "path to config file")
		news       = flag.Bool("news", true, "fetch news data")
		newsAPIKey = flag.String("news-api-key", os.Getenv("NEWS_API_KEY"), "news API key (empty uses mock news)")
		cronMode   = flag.Bool("cron", false, "keep running and execute on the configured schedule")
		history    = flag.Int("history", 0, "print the last N pipeline runs and exit")
		latest     = flag.String("latest", "", "print the latest stored rows (market|news) and exit")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config validation: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogPath)
	logger.Info("pipeline starting", "config", *configFlag)

	store, err := storage.Open(cfg, logger)
	if err != nil {
		logger.Error("open storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	pipe := pipeline.New(
		fetcher.New(cfg, logger),
		cleaner.New(cfg, logger),
		store,
		reporter.New(cfg, logger),
		logger,
	)

	switch {
	case *history > 0:
		printHistory(pipe, *history, logger)
	case *latest != "":
		printLatest(pipe, *latest, logger)
	case *cronMode:
		runScheduled(pipe, cfg, logger, *news, *newsAPIKey)
	default:
		summary := pipe.Run(*news, *newsAPIKey)
		printSummary(summary)
		if summary.Status == model.StatusFailed {
			os.Exit(1)
		}
	}
}

// newLogger writes structured logs to stdout and, when possible, the
// configured log file.
func newLogger(logPath string) *slog.Logger {
	out := io.Writer(os.Stdout)
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err == nil {
		if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err == nil {
			out = io.MultiWriter(os.Stdout, f)
		}
	}
	return slog.New(slog.NewTextHandler(out, nil))
}

func runScheduled(pipe *pipeline.Pipeline, cfg *config.Config, logger *slog.Logger, news bool, newsAPIKey string) {
	sched := scheduler.New(pipe, logger, news, newsAPIKey)
	if err := sched.Register(cfg.Schedule.DailyCron); err != nil {
		logger.Error("register schedule", "error", err)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	logger.Info("running on schedule", "cron", cfg.Schedule.DailyCron)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown signal received, stopping")
}

func printSummary(s *model.RunSummary) {
	fmt.Println("================================================================================")
	fmt.Println("PIPELINE EXECUTION SUMMARY")
	fmt.Println("================================================================================")
	fmt.Printf("Run ID:   %s\n", s.RunID)
	fmt.Printf("Status:   %s\n", s.Status)
	fmt.Printf("Duration: %.2f seconds\n", s.Duration.Seconds())
	if s.Status == model.StatusSuccess {
		fmt.Printf("Market records processed: %d\n", s.MarketProcessed)
		fmt.Printf("News records processed:   %d\n", s.NewsProcessed)
		if s.ReportPath != "" {
			fmt.Printf("Report saved to: %s\n", s.ReportPath)
		}
		fmt.Printf("CSV exports: %d\n", len(s.CSVExports))
		fmt.Printf("Database totals: %d market, %d news, %d runs\n",
			s.Stats.MarketRecords, s.Stats.NewsRecords, s.Stats.PipelineRuns)
	} else {
		fmt.Printf("Error: %s\n", s.ErrorMessage)
	}
	fmt.Println("================================================================================")
}

func printHistory(pipe *pipeline.Pipeline, limit int, logger *slog.Logger) {
	runs, err := pipe.History(limit)
	if err != nil {
		logger.Error("query history", "error", err)
		return
	}
	fmt.Printf("%-6s %-20s %-8s %8s %6s  %s\n", "RUN", "TIMESTAMP", "STATUS", "MARKET", "NEWS", "ERROR")
	for _, r := range runs {
		fmt.Printf("%-6d %-20s %-8s %8d %6d  %s\n",
			r.RunID, r.RunTimestamp, r.Status, r.MarketRecords, r.NewsRecords, r.ErrorMessage)
	}
}

func printLatest(pipe *pipeline.Pipeline, kind string, logger *slog.Logger) {
	const limit = 10
	switch kind {
	case "market":
		records, err := pipe.LatestMarket(limit)
		if err != nil {
			logger.Error("query latest market data", "error", err)
			return
		}
		fmt.Printf("%-14s %-8s %14s %18s  %s\n", "ID", "SYMBOL", "PRICE", "MARKET CAP", "FETCHED")
		for _, r := range records {
			fmt.Printf("%-14s %-8s %14.2f %18.0f  %s\n",
				r.ID, r.Symbol, r.CurrentPrice, r.MarketCap, r.FetchTimestamp)
		}
	case "news":
		records, err := pipe.LatestNews(limit)
		if err != nil {
			logger.Error("query latest news", "error", err)
			return
		}
		for _, r := range records {
			fmt.Printf("[%s] %s (%s)\n", r.FetchTimestamp, r.Title, r.SourceName)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown -latest kind %q (want market or news)\n", kind)
	}
}
