package model

// SourceNewsAPI tags rows that came from the news endpoint.
const SourceNewsAPI = "news_api"

// NewsColumns is the canonical column set and order for cleaned news rows.
var NewsColumns = []string{
	"title", "description", "author", "content",
	"source_id", "source_name", "publishedat",
	"fetch_timestamp", "data_source",
}

// NewsRecord is one cleaned news article row.
// Uniqueness key is (Title, FetchTimestamp).
type NewsRecord struct {
	Title          string
	Description    string
	Author         string
	Content        string
	SourceID       string
	SourceName     string
	PublishedAt    string
	FetchTimestamp string
	DataSource     string
}
