package reporter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"marketpipe/internal/model"
)

const artifactLayout = "20060102_150405"

// CreateDailyReport writes the plain-text daily report and returns its path.
func (r *Reporter) CreateDailyReport(market []model.MarketRecord, news []model.NewsRecord, ms MarketSummary, ns NewsSummary) (string, error) {
	if err := os.MkdirAll(r.reportsDir, 0755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}

	var b strings.Builder
	rule := strings.Repeat("=", 80)
	sub := strings.Repeat("-", 80)

	b.WriteString(rule + "\n")
	b.WriteString("DAILY MARKET & NEWS DATA REPORT\n")
	b.WriteString(rule + "\n\n")
	b.WriteString(fmt.Sprintf("Report Generated: %s\n\n", time.Now().Format(r.dateFormat)))

	b.WriteString(sub + "\n")
	b.WriteString("MARKET DATA SUMMARY\n")
	b.WriteString(sub + "\n\n")
	b.WriteString(fmt.Sprintf("Total Records: %d\n\n", ms.TotalRecords))

	if ms.Price != nil {
		b.WriteString("Price Statistics:\n")
		b.WriteString(fmt.Sprintf("  Average: $%.2f\n", ms.Price.Average))
		b.WriteString(fmt.Sprintf("  Median: $%.2f\n", ms.Price.Median))
		b.WriteString(fmt.Sprintf("  Min: $%.2f\n", ms.Price.Min))
		b.WriteString(fmt.Sprintf("  Max: $%.2f\n", ms.Price.Max))
		b.WriteString(fmt.Sprintf("  Std: $%.2f\n\n", ms.Price.Std))
	}
	if ms.MarketCap != nil {
		b.WriteString("Market Cap Statistics:\n")
		b.WriteString(fmt.Sprintf("  Total: $%.2f\n", ms.MarketCap.Total))
		b.WriteString(fmt.Sprintf("  Average: $%.2f\n", ms.MarketCap.Average))
		b.WriteString(fmt.Sprintf("  Top asset cap: $%.2f\n\n", ms.MarketCap.TopAssetCap))
	}
	if ms.Change != nil {
		b.WriteString("24h Price Change:\n")
		b.WriteString(fmt.Sprintf("  Average Change: %.2f%%\n", ms.Change.AverageChange))
		b.WriteString(fmt.Sprintf("  Gainers: %d\n", ms.Change.Gainers))
		b.WriteString(fmt.Sprintf("  Losers: %d\n\n", ms.Change.Losers))
	}
	if len(ms.Top5ByPrice) > 0 {
		b.WriteString("Top 5 Assets by Price:\n")
		for i, asset := range ms.Top5ByPrice {
			b.WriteString(fmt.Sprintf("  %d. %s: $%.2f\n", i+1, asset.Name, asset.CurrentPrice))
		}
		b.WriteString("\n")
	}

	b.WriteString(sub + "\n")
	b.WriteString("NEWS DATA SUMMARY\n")
	b.WriteString(sub + "\n\n")
	b.WriteString(fmt.Sprintf("Total Articles: %d\n\n", ns.TotalArticles))
	if ns.UniqueSources > 0 {
		b.WriteString(fmt.Sprintf("Unique Sources: %d\n\n", ns.UniqueSources))
	}
	if len(ns.RecentHeadlines) > 0 {
		b.WriteString("Recent Headlines:\n")
		for i, headline := range ns.RecentHeadlines {
			b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, headline))
		}
		b.WriteString("\n")
	}

	b.WriteString(rule + "\n")
	b.WriteString("END OF REPORT\n")
	b.WriteString(rule + "\n")

	path := filepath.Join(r.reportsDir, fmt.Sprintf("daily_report_%s.txt", time.Now().Format(artifactLayout)))
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("write daily report: %w", err)
	}
	r.logger.Info("daily report saved", "path", path)
	return path, nil
}
