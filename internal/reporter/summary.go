package reporter

import (
	"log/slog"
	"sort"
	"time"

	"marketpipe/internal/config"
	"marketpipe/internal/model"
)

// PriceStats are the price statistics in a market summary.
type PriceStats struct {
	Average float64
	Median  float64
	Min     float64
	Max     float64
	Std     float64
}

// MarketCapStats are the aggregate market-cap statistics.
type MarketCapStats struct {
	Total       float64
	Average     float64
	TopAssetCap float64
}

// ChangeStats summarize the 24h price changes.
type ChangeStats struct {
	AverageChange float64
	Gainers       int
	Losers        int
}

// TopAsset is one row of the top-5-by-price list.
type TopAsset struct {
	Name         string
	CurrentPrice float64
	MarketCap    float64
}

// MarketSummary holds the derived statistics for a cleaned market table.
// Stat blocks are nil when the table is empty.
type MarketSummary struct {
	Timestamp    string
	TotalRecords int
	Columns      []string
	Price        *PriceStats
	MarketCap    *MarketCapStats
	Change       *ChangeStats
	Top5ByPrice  []TopAsset
}

// NewsSummary holds the derived statistics for a cleaned news table.
type NewsSummary struct {
	Timestamp          string
	TotalArticles      int
	Columns            []string
	UniqueSources      int
	SourceDistribution map[string]int
	UniqueAuthors      int
	ArticlesWithAuthor int
	RecentHeadlines    []string
}

// Reporter produces summaries, the daily text report, and CSV exports.
// Pure output formatting; it holds no state between calls.
type Reporter struct {
	reportsDir string
	dateFormat string
	logger     *slog.Logger
}

// New creates a Reporter.
func New(cfg *config.Config, logger *slog.Logger) *Reporter {
	return &Reporter{
		reportsDir: cfg.ReportsPath,
		dateFormat: cfg.DateFormat,
		logger:     logger,
	}
}

// MarketSummary derives statistics from cleaned market rows.
func (r *Reporter) MarketSummary(records []model.MarketRecord) MarketSummary {
	s := MarketSummary{
		Timestamp:    time.Now().Format(r.dateFormat),
		TotalRecords: len(records),
		Columns:      model.MarketColumns,
	}
	if len(records) == 0 {
		return s
	}

	prices := make([]float64, len(records))
	caps := make([]float64, len(records))
	changes := make([]float64, len(records))
	for i, rec := range records {
		prices[i] = rec.CurrentPrice
		caps[i] = rec.MarketCap
		changes[i] = rec.PriceChangePct24h
	}

	min, max := minMax(prices)
	s.Price = &PriceStats{
		Average: mean(prices),
		Median:  median(prices),
		Min:     min,
		Max:     max,
		Std:     stddev(prices),
	}

	_, topCap := minMax(caps)
	s.MarketCap = &MarketCapStats{
		Total:       sum(caps),
		Average:     mean(caps),
		TopAssetCap: topCap,
	}

	change := &ChangeStats{AverageChange: mean(changes)}
	for _, c := range changes {
		switch {
		case c > 0:
			change.Gainers++
		case c < 0:
			change.Losers++
		}
	}
	s.Change = change

	byPrice := make([]model.MarketRecord, len(records))
	copy(byPrice, records)
	sort.SliceStable(byPrice, func(i, j int) bool {
		return byPrice[i].CurrentPrice > byPrice[j].CurrentPrice
	})
	for i := 0; i < len(byPrice) && i < 5; i++ {
		s.Top5ByPrice = append(s.Top5ByPrice, TopAsset{
			Name:         byPrice[i].Name,
			CurrentPrice: byPrice[i].CurrentPrice,
			MarketCap:    byPrice[i].MarketCap,
		})
	}

	r.logger.Info("market summary generated", "records", s.TotalRecords)
	return s
}

// NewsSummary derives statistics from cleaned news rows. Headlines keep input
// order; they are not time-sorted.
func (r *Reporter) NewsSummary(records []model.NewsRecord) NewsSummary {
	s := NewsSummary{
		Timestamp:     time.Now().Format(r.dateFormat),
		TotalArticles: len(records),
		Columns:       model.NewsColumns,
	}
	if len(records) == 0 {
		return s
	}

	s.SourceDistribution = make(map[string]int)
	authors := make(map[string]struct{})
	for _, rec := range records {
		s.SourceDistribution[rec.SourceName]++
		authors[rec.Author] = struct{}{}
		if rec.Author != "" {
			s.ArticlesWithAuthor++
		}
	}
	s.UniqueSources = len(s.SourceDistribution)
	s.UniqueAuthors = len(authors)

	for i := 0; i < len(records) && i < 5; i++ {
		s.RecentHeadlines = append(s.RecentHeadlines, records[i].Title)
	}

	r.logger.Info("news summary generated", "articles", s.TotalArticles)
	return s
}
