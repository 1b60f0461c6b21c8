package model

import "strconv"

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Row renders the record in MarketColumns order for CSV output.
func (r MarketRecord) Row() []string {
	return []string{
		r.ID, r.Symbol, r.Name,
		formatFloat(r.CurrentPrice), formatFloat(r.MarketCap),
		formatFloat(r.TotalVolume), formatFloat(r.PriceChange24h),
		formatFloat(r.PriceChangePct24h), formatFloat(r.High24h),
		formatFloat(r.Low24h), r.FetchTimestamp, r.DataSource,
	}
}

// Row renders the record in NewsColumns order for CSV output.
func (r NewsRecord) Row() []string {
	return []string{
		r.Title, r.Description, r.Author, r.Content,
		r.SourceID, r.SourceName, r.PublishedAt,
		r.FetchTimestamp, r.DataSource,
	}
}
