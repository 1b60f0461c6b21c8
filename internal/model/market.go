package model

// SourceMarketAPI tags rows that came from the market endpoint.
const SourceMarketAPI = "market_api"

// MarketColumns is the canonical column set and order for cleaned market rows.
// It is the single place the projection from raw API fields is defined.
var MarketColumns = []string{
	"id", "symbol", "name", "current_price", "market_cap",
	"total_volume", "price_change_24h", "price_change_percentage_24h",
	"high_24h", "low_24h", "fetch_timestamp", "data_source",
}

// MarketRecord is one cleaned market snapshot row.
// Uniqueness key is (ID, FetchTimestamp): the same asset fetched at a
// different time is a new row, never an update.
type MarketRecord struct {
	ID                string
	Symbol            string
	Name              string
	CurrentPrice      float64
	MarketCap         float64
	TotalVolume       float64
	PriceChange24h    float64
	PriceChangePct24h float64
	High24h           float64
	Low24h            float64
	FetchTimestamp    string
	DataSource        string
}
