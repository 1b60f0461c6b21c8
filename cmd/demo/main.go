package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"marketpipe/internal/cleaner"
	"marketpipe/internal/config"
	"marketpipe/internal/fetcher"
	"marketpipe/internal/model"
	"marketpipe/internal/pipeline"
	"marketpipe/internal/reporter"
	"marketpipe/internal/storage"
)

// Demo entry point: runs the full clean → store → report sequence over fixed
// mock payloads, no network access required.
func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	configFlag := flag.String("config", cfgPath, "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	logger.Info("demo pipeline starting (mock data, no network)")

	store, err := storage.Open(cfg, logger)
	if err != nil {
		logger.Error("open storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	pipe := pipeline.New(
		fetcher.MockFetcher{},
		cleaner.New(cfg, logger),
		store,
		reporter.New(cfg, logger),
		logger,
	)

	summary := pipe.Run(true, "")

	fmt.Println("================================================================================")
	fmt.Println("DEMO PIPELINE EXECUTION SUMMARY")
	fmt.Println("================================================================================")
	fmt.Printf("Status:   %s\n", summary.Status)
	fmt.Printf("Duration: %.2f seconds\n", summary.Duration.Seconds())
	fmt.Printf("Market records processed: %d\n", summary.MarketProcessed)
	fmt.Printf("News records processed:   %d\n", summary.NewsProcessed)
	fmt.Printf("Database totals: %d market, %d news, %d runs\n",
		summary.Stats.MarketRecords, summary.Stats.NewsRecords, summary.Stats.PipelineRuns)
	if summary.ReportPath != "" {
		fmt.Printf("Report saved to: %s\n", summary.ReportPath)
	}
	fmt.Println("================================================================================")

	if summary.Status == model.StatusFailed {
		fmt.Printf("Error: %s\n", summary.ErrorMessage)
		os.Exit(1)
	}

	// Show a sample of what was stored.
	if records, err := pipe.LatestMarket(5); err == nil {
		fmt.Println("\nSample Market Data:")
		for _, r := range records {
			fmt.Printf("  %-14s %-6s $%12.2f\n", r.Name, r.Symbol, r.CurrentPrice)
		}
	}
	if records, err := pipe.LatestNews(5); err == nil {
		fmt.Println("\nSample News Headlines:")
		for _, r := range records {
			fmt.Printf("  %s (%s)\n", r.Title, r.SourceName)
		}
	}
}
