package fetcher

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"marketpipe/internal/config"
)

func newTestFetcher(t *testing.T, marketURL, newsURL string) (*Fetcher, string) {
	t.Helper()
	rawDir := filepath.Join(t.TempDir(), "raw")
	cfg := &config.Config{
		MarketAPIURL: marketURL,
		NewsAPIURL:   newsURL,
		RawDataPath:  rawDir,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cfg, logger), rawDir
}

func TestFetchMarketDataSavesSnapshot(t *testing.T) {
	payload := `[{"id": "bitcoin", "current_price": 45000}]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	f, rawDir := newTestFetcher(t, srv.URL, "")
	data, err := f.FetchMarketData()
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(data) != payload {
		t.Errorf("payload = %q, want verbatim response", data)
	}

	matches, err := filepath.Glob(filepath.Join(rawDir, "market_data_*.json"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("snapshot files = %v, err=%v", matches, err)
	}
	saved, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(saved, data) {
		t.Error("snapshot must be byte-identical to the returned payload")
	}
}

func TestFetchNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f, rawDir := newTestFetcher(t, srv.URL, "")
	if _, err := f.FetchMarketData(); err == nil {
		t.Fatal("expected error on 429 response")
	} else if !strings.Contains(err.Error(), "429") {
		t.Errorf("error should name the status code, got %v", err)
	}

	matches, _ := filepath.Glob(filepath.Join(rawDir, "*.json"))
	if len(matches) != 0 {
		t.Errorf("failed fetch must not leave a snapshot, found %v", matches)
	}
}

func TestFetchInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	f, _ := newTestFetcher(t, srv.URL, "")
	if _, err := f.FetchMarketData(); err == nil {
		t.Fatal("expected error on non-JSON response")
	}
}

func TestFetchNewsSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"status": "ok", "articles": []}`))
	}))
	defer srv.Close()

	f, _ := newTestFetcher(t, "", srv.URL)
	if _, err := f.FetchNewsData("secret-key"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotAuth != "Bearer secret-key" {
		t.Errorf("Authorization = %q, want Bearer secret-key", gotAuth)
	}
}

func TestFetchNewsWithoutKeyUsesMock(t *testing.T) {
	f, rawDir := newTestFetcher(t, "", "http://unreachable.invalid")

	data, err := f.FetchNewsData("")
	if err != nil {
		t.Fatalf("mock fallback should not fail: %v", err)
	}

	var resp struct {
		Articles []json.RawMessage `json:"articles"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("mock payload must be valid wrapped JSON: %v", err)
	}
	if len(resp.Articles) == 0 {
		t.Error("mock payload must contain articles")
	}

	// The fallback is still snapshotted like a real fetch.
	matches, _ := filepath.Glob(filepath.Join(rawDir, "news_data_*.json"))
	if len(matches) != 1 {
		t.Errorf("snapshot files = %v, want one", matches)
	}
}
