package reporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"marketpipe/internal/model"
)

// ExportCSV writes the market table, news table, and a small summary metrics
// file to the reports directory and returns the three paths.
func (r *Reporter) ExportCSV(market []model.MarketRecord, news []model.NewsRecord) (marketPath, newsPath, summaryPath string, err error) {
	if err := os.MkdirAll(r.reportsDir, 0755); err != nil {
		return "", "", "", fmt.Errorf("create reports dir: %w", err)
	}
	ts := time.Now().Format(artifactLayout)

	marketPath = filepath.Join(r.reportsDir, fmt.Sprintf("market_data_%s.csv", ts))
	marketRows := make([][]string, len(market))
	for i, rec := range market {
		marketRows[i] = rec.Row()
	}
	if err := writeCSV(marketPath, model.MarketColumns, marketRows); err != nil {
		return "", "", "", err
	}
	r.logger.Info("market data exported", "path", marketPath)

	newsPath = filepath.Join(r.reportsDir, fmt.Sprintf("news_data_%s.csv", ts))
	newsRows := make([][]string, len(news))
	for i, rec := range news {
		newsRows[i] = rec.Row()
	}
	if err := writeCSV(newsPath, model.NewsColumns, newsRows); err != nil {
		return "", "", "", err
	}
	r.logger.Info("news data exported", "path", newsPath)

	ms := r.MarketSummary(market)
	ns := r.NewsSummary(news)
	avgPrice, totalCap := "N/A", "N/A"
	if ms.Price != nil {
		avgPrice = fmt.Sprintf("$%.2f", ms.Price.Average)
	}
	if ms.MarketCap != nil {
		totalCap = fmt.Sprintf("$%.2f", ms.MarketCap.Total)
	}
	summaryPath = filepath.Join(r.reportsDir, fmt.Sprintf("daily_summary_%s.csv", ts))
	summaryRows := [][]string{
		{"Market Records", strconv.Itoa(len(market))},
		{"News Articles", strconv.Itoa(len(news))},
		{"Avg Current Price", avgPrice},
		{"Total Market Cap", totalCap},
		{"Unique News Sources", strconv.Itoa(ns.UniqueSources)},
	}
	if err := writeCSV(summaryPath, []string{"Metric", "Value"}, summaryRows); err != nil {
		return "", "", "", err
	}
	r.logger.Info("summary exported", "path", summaryPath)

	return marketPath, newsPath, summaryPath, nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header to %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows to %s: %w", path, err)
	}
	return nil
}
