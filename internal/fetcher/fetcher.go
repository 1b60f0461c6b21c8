package fetcher

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"marketpipe/internal/config"
)

const snapshotLayout = "20060102_150405"

// Fetcher issues GET requests to the configured endpoints and captures the
// raw JSON response to the raw-data directory before returning it.
type Fetcher struct {
	marketURL string
	newsURL   string
	rawDir    string
	client    *http.Client
	logger    *slog.Logger
}

// New creates a Fetcher with a bounded request timeout.
func New(cfg *config.Config, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		marketURL: cfg.MarketAPIURL,
		newsURL:   cfg.NewsAPIURL,
		rawDir:    cfg.RawDataPath,
		client:    &http.Client{Timeout: 30 * time.Second},
		logger:    logger,
	}
}

// FetchMarketData fetches the market endpoint and returns the raw payload.
func (f *Fetcher) FetchMarketData() (json.RawMessage, error) {
	return f.fetchJSON(f.marketURL, "market_data", "")
}

// FetchNewsData fetches the news endpoint. With no API key it falls back to a
// fixed mock payload instead of failing; the mock is still snapshotted so the
// raw-data directory reflects what entered the pipeline.
func (f *Fetcher) FetchNewsData(apiKey string) (json.RawMessage, error) {
	if apiKey == "" {
		f.logger.Warn("no news API key provided, using mock news data")
		payload := MockNewsData()
		if err := f.saveRaw("news_data", payload); err != nil {
			return nil, err
		}
		return payload, nil
	}
	return f.fetchJSON(f.newsURL, "news_data", apiKey)
}

func (f *Fetcher) fetchJSON(endpoint, kind, apiKey string) (json.RawMessage, error) {
	f.logger.Info("fetching data", "kind", kind, "url", endpoint)

	req, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", kind, err)
	}
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", kind, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", kind, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d, body: %s", kind, resp.StatusCode, string(body))
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("decode %s: response is not valid JSON", kind)
	}

	// Capture before transform: the verbatim payload is on disk before any
	// downstream stage can touch it.
	if err := f.saveRaw(kind, body); err != nil {
		return nil, err
	}

	return body, nil
}

func (f *Fetcher) saveRaw(kind string, payload []byte) error {
	if err := os.MkdirAll(f.rawDir, 0755); err != nil {
		return fmt.Errorf("create raw data dir: %w", err)
	}
	name := fmt.Sprintf("%s_%s.json", kind, time.Now().Format(snapshotLayout))
	path := filepath.Join(f.rawDir, name)
	if err := os.WriteFile(path, payload, 0644); err != nil {
		return fmt.Errorf("save raw %s: %w", kind, err)
	}
	f.logger.Info("raw data saved", "kind", kind, "path", path)
	return nil
}
