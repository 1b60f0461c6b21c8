package fetcher

import (
	"encoding/json"
	"time"
)

// MockFetcher serves the fixed payloads without network access.
// Used by the demo entry point and by tests.
type MockFetcher struct{}

func (MockFetcher) FetchMarketData() (json.RawMessage, error) {
	return MockMarketData(), nil
}

func (MockFetcher) FetchNewsData(_ string) (json.RawMessage, error) {
	return MockNewsData(), nil
}

type mockSource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type mockArticle struct {
	Source      mockSource `json:"source"`
	Author      string     `json:"author"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	PublishedAt string     `json:"publishedAt"`
	Content     string     `json:"content"`
}

type mockNewsResponse struct {
	Status       string        `json:"status"`
	TotalResults int           `json:"totalResults"`
	Articles     []mockArticle `json:"articles"`
}

// MockNewsData returns a fixed, realistic news payload in the same wrapped
// shape the news API uses. Used when no API key is configured and by the demo.
func MockNewsData() json.RawMessage {
	now := time.Now().Format(time.RFC3339)
	resp := mockNewsResponse{
		Status:       "ok",
		TotalResults: 5,
		Articles: []mockArticle{
			{
				Source:      mockSource{ID: "bloomberg", Name: "Bloomberg"},
				Author:      "Sarah Chen",
				Title:       "Bitcoin Surges Past $98,000 as Institutional Adoption Accelerates",
				Description: "Cryptocurrency markets show strong momentum with major institutional investments",
				PublishedAt: now,
				Content:     "Bitcoin reached new heights today as major financial institutions announced increased crypto allocations...",
			},
			{
				Source:      mockSource{ID: "reuters", Name: "Reuters"},
				Author:      "Michael Roberts",
				Title:       "Federal Reserve Maintains Interest Rates Amid Economic Uncertainty",
				Description: "Central bank holds rates steady as economic indicators show mixed signals",
				PublishedAt: now,
				Content:     "The Federal Reserve announced today that it would maintain current interest rate levels...",
			},
			{
				Source:      mockSource{ID: "wsj", Name: "Wall Street Journal"},
				Author:      "Jennifer Martinez",
				Title:       "Tech Stocks Rally on Strong Earnings Reports",
				Description: "Major technology companies exceed analyst expectations in Q4 earnings",
				PublishedAt: now,
				Content:     "Leading technology firms reported better-than-expected quarterly results...",
			},
			{
				Source:      mockSource{ID: "cnbc", Name: "CNBC"},
				Author:      "David Thompson",
				Title:       "Ethereum Upgrade Promises Faster Transactions and Lower Fees",
				Description: "Network improvements aim to enhance scalability and user experience",
				PublishedAt: now,
				Content:     "The Ethereum network is set to implement major upgrades that will significantly improve performance...",
			},
			{
				Source:      mockSource{ID: "ft", Name: "Financial Times"},
				Author:      "Emma Wilson",
				Title:       "Global Markets Show Resilience Amid Geopolitical Tensions",
				Description: "Investor sentiment remains cautiously optimistic despite ongoing challenges",
				PublishedAt: now,
				Content:     "International financial markets demonstrated unexpected strength today...",
			},
		},
	}
	data, _ := json.MarshalIndent(resp, "", "  ")
	return data
}

// MockMarketData returns a fixed ten-asset market payload in the list-of-records
// shape the market API uses. Only consumed by the demo entry point.
func MockMarketData() json.RawMessage {
	return json.RawMessage(`[
  {"id": "bitcoin", "symbol": "btc", "name": "Bitcoin", "current_price": 98456.78, "market_cap": 1923456789012, "total_volume": 45678901234, "price_change_24h": 2345.67, "price_change_percentage_24h": 2.44, "high_24h": 99123.45, "low_24h": 96234.56},
  {"id": "ethereum", "symbol": "eth", "name": "Ethereum", "current_price": 3678.90, "market_cap": 456789012345, "total_volume": 23456789012, "price_change_24h": -45.67, "price_change_percentage_24h": -1.23, "high_24h": 3734.56, "low_24h": 3645.23},
  {"id": "binancecoin", "symbol": "bnb", "name": "Binance Coin", "current_price": 612.34, "market_cap": 94567890123, "total_volume": 2345678901, "price_change_24h": 15.67, "price_change_percentage_24h": 2.63, "high_24h": 618.90, "low_24h": 598.45},
  {"id": "cardano", "symbol": "ada", "name": "Cardano", "current_price": 1.23, "market_cap": 43456789012, "total_volume": 1234567890, "price_change_24h": 0.05, "price_change_percentage_24h": 4.23, "high_24h": 1.28, "low_24h": 1.18},
  {"id": "solana", "symbol": "sol", "name": "Solana", "current_price": 234.56, "market_cap": 123456789012, "total_volume": 4567890123, "price_change_24h": 8.90, "price_change_percentage_24h": 3.94, "high_24h": 238.45, "low_24h": 228.67},
  {"id": "ripple", "symbol": "xrp", "name": "XRP", "current_price": 0.87, "market_cap": 45678901234, "total_volume": 2345678901, "price_change_24h": -0.03, "price_change_percentage_24h": -3.33, "high_24h": 0.91, "low_24h": 0.85},
  {"id": "polkadot", "symbol": "dot", "name": "Polkadot", "current_price": 12.34, "market_cap": 15678901234, "total_volume": 890123456, "price_change_24h": 0.56, "price_change_percentage_24h": 4.76, "high_24h": 12.67, "low_24h": 11.89},
  {"id": "dogecoin", "symbol": "doge", "name": "Dogecoin", "current_price": 0.15, "market_cap": 21234567890, "total_volume": 1456789012, "price_change_24h": 0.01, "price_change_percentage_24h": 7.14, "high_24h": 0.16, "low_24h": 0.14},
  {"id": "avalanche", "symbol": "avax", "name": "Avalanche", "current_price": 45.67, "market_cap": 17890123456, "total_volume": 789012345, "price_change_24h": -1.23, "price_change_percentage_24h": -2.62, "high_24h": 47.34, "low_24h": 44.56},
  {"id": "chainlink", "symbol": "link", "name": "Chainlink", "current_price": 23.45, "market_cap": 13456789012, "total_volume": 678901234, "price_change_24h": 0.89, "price_change_percentage_24h": 3.94, "high_24h": 24.12, "low_24h": 22.67}
]`)
}
