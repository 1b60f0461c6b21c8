package cleaner

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"marketpipe/internal/config"
	"marketpipe/internal/model"
)

const artifactLayout = "20060102_150405"

// Cleaner normalizes raw fetched payloads into typed records. It is stateless
// across calls; the only side effect is a CSV audit copy per cleaning pass.
type Cleaner struct {
	processedDir string
	dateFormat   string
	logger       *slog.Logger
}

// New creates a Cleaner.
func New(cfg *config.Config, logger *slog.Logger) *Cleaner {
	return &Cleaner{
		processedDir: cfg.ProcessedDataPath,
		dateFormat:   cfg.DateFormat,
		logger:       logger,
	}
}

// rawMarketRecord is the projection of a market API record onto the allowed
// field set. Pointer fields distinguish absent values, which are filled with
// zero; every other field in the payload is dropped by decoding.
type rawMarketRecord struct {
	ID                *string  `json:"id"`
	Symbol            *string  `json:"symbol"`
	Name              *string  `json:"name"`
	CurrentPrice      *float64 `json:"current_price"`
	MarketCap         *float64 `json:"market_cap"`
	TotalVolume       *float64 `json:"total_volume"`
	PriceChange24h    *float64 `json:"price_change_24h"`
	PriceChangePct24h *float64 `json:"price_change_percentage_24h"`
	High24h           *float64 `json:"high_24h"`
	Low24h            *float64 `json:"low_24h"`
}

// CleanMarketData turns a raw market payload (a record list, or a single
// record) into validated MarketRecords: projected, zero-filled, deduplicated,
// stamped, and filtered by the price and market-cap quality rules.
func (c *Cleaner) CleanMarketData(raw json.RawMessage) ([]model.MarketRecord, error) {
	c.logger.Info("cleaning market data")

	var rows []rawMarketRecord
	if err := json.Unmarshal(raw, &rows); err != nil {
		var single rawMarketRecord
		if err2 := json.Unmarshal(raw, &single); err2 != nil {
			return nil, fmt.Errorf("market payload is neither a record list nor a record: %w", err)
		}
		rows = []rawMarketRecord{single}
	}
	initial := len(rows)

	stamp := time.Now().Format(c.dateFormat)
	seen := make(map[model.MarketRecord]struct{}, len(rows))
	records := make([]model.MarketRecord, 0, len(rows))
	for _, r := range rows {
		rec := model.MarketRecord{
			ID:                strVal(r.ID),
			Symbol:            strVal(r.Symbol),
			Name:              strVal(r.Name),
			CurrentPrice:      floatVal(r.CurrentPrice),
			MarketCap:         floatVal(r.MarketCap),
			TotalVolume:       floatVal(r.TotalVolume),
			PriceChange24h:    floatVal(r.PriceChange24h),
			PriceChangePct24h: floatVal(r.PriceChangePct24h),
			High24h:           floatVal(r.High24h),
			Low24h:            floatVal(r.Low24h),
			FetchTimestamp:    stamp,
			DataSource:        model.SourceMarketAPI,
		}
		if _, dup := seen[rec]; dup {
			continue
		}
		seen[rec] = struct{}{}
		if rec.CurrentPrice <= 0 {
			continue
		}
		if rec.MarketCap < 0 {
			continue
		}
		records = append(records, rec)
	}

	c.logger.Info("market data cleaned", "initial", initial, "kept", len(records))

	rows2 := make([][]string, len(records))
	for i, rec := range records {
		rows2[i] = rec.Row()
	}
	if err := c.saveProcessed("market_data_cleaned", model.MarketColumns, rows2); err != nil {
		return nil, err
	}
	return records, nil
}

// rawNewsArticle is the projection of a news article. The nested source object
// is kept raw and flattened after decoding.
type rawNewsArticle struct {
	Source      json.RawMessage `json:"source"`
	Author      *string         `json:"author"`
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Content     *string         `json:"content"`
	PublishedAt *string         `json:"publishedAt"`
}

// CleanNewsData turns a raw news payload (a wrapped articles object, a bare
// list, or a single article) into NewsRecords: source flattened, empty-filled,
// title-deduplicated (first occurrence wins), stamped, and text-normalized.
func (c *Cleaner) CleanNewsData(raw json.RawMessage) ([]model.NewsRecord, error) {
	c.logger.Info("cleaning news data")

	articles, err := extractArticles(raw)
	if err != nil {
		return nil, err
	}
	initial := len(articles)

	stamp := time.Now().Format(c.dateFormat)
	seen := make(map[string]struct{}, len(articles))
	records := make([]model.NewsRecord, 0, len(articles))
	for _, a := range articles {
		title := strVal(a.Title)
		if _, dup := seen[title]; dup {
			continue
		}
		seen[title] = struct{}{}

		sourceID, sourceName := flattenSource(a.Source)
		records = append(records, model.NewsRecord{
			Title:          cleanText(title),
			Description:    cleanText(strVal(a.Description)),
			Author:         cleanText(strVal(a.Author)),
			Content:        cleanText(strVal(a.Content)),
			SourceID:       sourceID,
			SourceName:     sourceName,
			PublishedAt:    strVal(a.PublishedAt),
			FetchTimestamp: stamp,
			DataSource:     model.SourceNewsAPI,
		})
	}

	c.logger.Info("news data cleaned", "initial", initial, "kept", len(records))

	rows := make([][]string, len(records))
	for i, rec := range records {
		rows[i] = rec.Row()
	}
	if err := c.saveProcessed("news_data_cleaned", model.NewsColumns, rows); err != nil {
		return nil, err
	}
	return records, nil
}

func extractArticles(raw json.RawMessage) ([]rawNewsArticle, error) {
	var wrapped struct {
		Articles []rawNewsArticle `json:"articles"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Articles != nil {
		return wrapped.Articles, nil
	}

	var list []rawNewsArticle
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var single rawNewsArticle
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("news payload is neither an articles object, a list, nor an article: %w", err)
	}
	return []rawNewsArticle{single}, nil
}

// flattenSource pulls id/name out of a nested source object. A missing or
// non-object source yields empty strings.
func flattenSource(raw json.RawMessage) (id, name string) {
	if len(raw) == 0 {
		return "", ""
	}
	var src struct {
		ID   *string `json:"id"`
		Name *string `json:"name"`
	}
	if err := json.Unmarshal(raw, &src); err != nil {
		return "", ""
	}
	return strVal(src.ID), strVal(src.Name)
}

// cleanText trims the ends, replaces newlines with spaces, and collapses
// whitespace runs to a single space.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func floatVal(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func (c *Cleaner) saveProcessed(name string, header []string, rows [][]string) error {
	if err := os.MkdirAll(c.processedDir, 0755); err != nil {
		return fmt.Errorf("create processed data dir: %w", err)
	}
	path := filepath.Join(c.processedDir, fmt.Sprintf("%s_%s.csv", name, time.Now().Format(artifactLayout)))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create processed file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write processed header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write processed rows: %w", err)
	}
	c.logger.Info("processed data saved", "path", path)
	return nil
}
