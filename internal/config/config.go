package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	LogPath           string `yaml:"log_path"`
	RawDataPath       string `yaml:"raw_data_path"`
	ProcessedDataPath string `yaml:"processed_data_path"`
	ReportsPath       string `yaml:"reports_path"`
	DatabasePath      string `yaml:"database_path"`
	MarketAPIURL      string `yaml:"market_api_url"`
	NewsAPIURL        string `yaml:"news_api_url"`
	// DateFormat is a Go reference layout used to stamp fetch and run timestamps.
	DateFormat string `yaml:"date_format"`
	Schedule   struct {
		DailyCron string `yaml:"daily_cron"`
	} `yaml:"schedule"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("MARKET_API_URL"); v != "" {
		cfg.MarketAPIURL = v
	}
	if v := os.Getenv("NEWS_API_URL"); v != "" {
		cfg.NewsAPIURL = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("LOG_PATH"); v != "" {
		cfg.LogPath = v
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}

	// Defaults
	if cfg.LogPath == "" {
		cfg.LogPath = "logs/pipeline.log"
	}
	if cfg.RawDataPath == "" {
		cfg.RawDataPath = "data/raw"
	}
	if cfg.ProcessedDataPath == "" {
		cfg.ProcessedDataPath = "data/processed"
	}
	if cfg.ReportsPath == "" {
		cfg.ReportsPath = "reports"
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "data/pipeline.db"
	}
	if cfg.MarketAPIURL == "" {
		cfg.MarketAPIURL = "https://api.coingecko.com/api/v3/coins/markets?vs_currency=usd&order=market_cap_desc&per_page=50&page=1"
	}
	if cfg.NewsAPIURL == "" {
		cfg.NewsAPIURL = "https://newsapi.org/v2/everything?q=cryptocurrency&sortBy=publishedAt&pageSize=20"
	}
	if cfg.DateFormat == "" {
		cfg.DateFormat = "2006-01-02 15:04:05"
	}
	if cfg.Schedule.DailyCron == "" {
		cfg.Schedule.DailyCron = "0 0 6 * * *"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.RawDataPath == "" {
		return fmt.Errorf("raw_data_path is required")
	}
	if c.ProcessedDataPath == "" {
		return fmt.Errorf("processed_data_path is required")
	}
	if c.ReportsPath == "" {
		return fmt.Errorf("reports_path is required")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path is required")
	}
	if c.MarketAPIURL == "" {
		return fmt.Errorf("market_api_url is required")
	}
	if c.NewsAPIURL == "" {
		return fmt.Errorf("news_api_url is required")
	}
	if c.DateFormat == "" {
		return fmt.Errorf("date_format is required")
	}
	return nil
}
