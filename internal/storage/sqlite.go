package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"marketpipe/internal/config"
	"marketpipe/internal/model"
)

// WriteMode controls how a store call treats existing table contents.
// The pipeline always appends; replace and fail exist for tooling and tests.
type WriteMode string

const (
	Append  WriteMode = "append"
	Replace WriteMode = "replace"
	Fail    WriteMode = "fail"
)

// Store owns the SQLite file and all three tables. No other component opens
// the database directly.
type Store struct {
	db         *sql.DB
	path       string
	dateFormat string
	logger     *slog.Logger
	mu         sync.Mutex
}

// Open opens (or creates) the SQLite database and initializes the schema.
// Schema initialization is idempotent and safe to run on every startup; a
// failure here is fatal to the caller.
func Open(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &Store{db: db, path: cfg.DatabasePath, dateFormat: cfg.DateFormat, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	logger.Info("database initialized", "path", cfg.DatabasePath)
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS market_data (
			id                          TEXT,
			symbol                      TEXT,
			name                        TEXT,
			current_price               REAL,
			market_cap                  REAL,
			total_volume                REAL,
			price_change_24h            REAL,
			price_change_percentage_24h REAL,
			high_24h                    REAL,
			low_24h                     REAL,
			fetch_timestamp             TEXT,
			data_source                 TEXT,
			PRIMARY KEY (id, fetch_timestamp)
		)`,
		`CREATE TABLE IF NOT EXISTS news_data (
			title           TEXT,
			description     TEXT,
			author          TEXT,
			content         TEXT,
			source_id       TEXT,
			source_name     TEXT,
			publishedat     TEXT,
			fetch_timestamp TEXT,
			data_source     TEXT,
			PRIMARY KEY (title, fetch_timestamp)
		)`,
		`CREATE TABLE IF NOT EXISTS pipeline_metadata (
			run_id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_timestamp  TEXT,
			status         TEXT,
			market_records INTEGER,
			news_records   INTEGER,
			error_message  TEXT
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// StoreMarketData persists cleaned market rows. Append mode relies on the
// (id, fetch_timestamp) primary key: an already-present row is ignored, never
// updated.
func (s *Store) StoreMarketData(records []model.MarketRecord, mode WriteMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("storing market data", "records", len(records), "mode", string(mode))
	if err := s.prepareTable("market_data", mode); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin market store: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO market_data
		(id, symbol, name, current_price, market_cap, total_volume,
		 price_change_24h, price_change_percentage_24h, high_24h, low_24h,
		 fetch_timestamp, data_source)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare market insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(
			r.ID, r.Symbol, r.Name, r.CurrentPrice, r.MarketCap, r.TotalVolume,
			r.PriceChange24h, r.PriceChangePct24h, r.High24h, r.Low24h,
			r.FetchTimestamp, r.DataSource,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert market row %q: %w", r.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit market store: %w", err)
	}
	return nil
}

// StoreNewsData persists cleaned news rows, keyed by (title, fetch_timestamp).
func (s *Store) StoreNewsData(records []model.NewsRecord, mode WriteMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("storing news data", "records", len(records), "mode", string(mode))
	if err := s.prepareTable("news_data", mode); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin news store: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO news_data
		(title, description, author, content, source_id, source_name,
		 publishedat, fetch_timestamp, data_source)
		VALUES (?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare news insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(
			r.Title, r.Description, r.Author, r.Content, r.SourceID,
			r.SourceName, r.PublishedAt, r.FetchTimestamp, r.DataSource,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert news row %q: %w", r.Title, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit news store: %w", err)
	}
	return nil
}

func (s *Store) prepareTable(table string, mode WriteMode) error {
	switch mode {
	case Append, "":
		return nil
	case Replace:
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
		return nil
	case Fail:
		var n int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			return fmt.Errorf("count %s: %w", table, err)
		}
		if n > 0 {
			return fmt.Errorf("%s already holds %d rows", table, n)
		}
		return nil
	default:
		return fmt.Errorf("unknown write mode %q", mode)
	}
}

// LogPipelineRun appends exactly one audit row. It never reports failure to
// the caller: a broken audit write must not mask the real run outcome, so it
// is logged and swallowed here.
func (s *Store) LogPipelineRun(status model.RunStatus, marketCount, newsCount int, errorMessage string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errMsg sql.NullString
	if errorMessage != "" {
		errMsg = sql.NullString{String: errorMessage, Valid: true}
	}
	_, err := s.db.Exec(`INSERT INTO pipeline_metadata
		(run_timestamp, status, market_records, news_records, error_message)
		VALUES (?,?,?,?,?)`,
		time.Now().Format(s.dateFormat), string(status), marketCount, newsCount, errMsg,
	)
	if err != nil {
		s.logger.Error("failed to log pipeline run", "status", string(status), "error", err)
		return
	}
	s.logger.Info("pipeline run logged", "status", string(status))
}

// LatestMarketData returns the most recent limit market rows.
func (s *Store) LatestMarketData(limit int) ([]model.MarketRecord, error) {
	rows, err := s.db.Query(`SELECT id, symbol, name, current_price, market_cap,
		total_volume, price_change_24h, price_change_percentage_24h, high_24h,
		low_24h, fetch_timestamp, data_source
		FROM market_data ORDER BY fetch_timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query market data: %w", err)
	}
	defer rows.Close()

	var records []model.MarketRecord
	for rows.Next() {
		var r model.MarketRecord
		if err := rows.Scan(
			&r.ID, &r.Symbol, &r.Name, &r.CurrentPrice, &r.MarketCap,
			&r.TotalVolume, &r.PriceChange24h, &r.PriceChangePct24h,
			&r.High24h, &r.Low24h, &r.FetchTimestamp, &r.DataSource,
		); err != nil {
			return nil, fmt.Errorf("scan market row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// LatestNews returns the most recent limit news rows.
func (s *Store) LatestNews(limit int) ([]model.NewsRecord, error) {
	rows, err := s.db.Query(`SELECT title, description, author, content,
		source_id, source_name, publishedat, fetch_timestamp, data_source
		FROM news_data ORDER BY fetch_timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query news data: %w", err)
	}
	defer rows.Close()

	var records []model.NewsRecord
	for rows.Next() {
		var r model.NewsRecord
		if err := rows.Scan(
			&r.Title, &r.Description, &r.Author, &r.Content, &r.SourceID,
			&r.SourceName, &r.PublishedAt, &r.FetchTimestamp, &r.DataSource,
		); err != nil {
			return nil, fmt.Errorf("scan news row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// PipelineHistory returns the most recent limit audit rows.
func (s *Store) PipelineHistory(limit int) ([]model.PipelineRun, error) {
	rows, err := s.db.Query(`SELECT run_id, run_timestamp, status,
		market_records, news_records, error_message
		FROM pipeline_metadata ORDER BY run_timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query pipeline history: %w", err)
	}
	defer rows.Close()

	var runs []model.PipelineRun
	for rows.Next() {
		var r model.PipelineRun
		var errMsg sql.NullString
		if err := rows.Scan(&r.RunID, &r.RunTimestamp, &r.Status,
			&r.MarketRecords, &r.NewsRecords, &errMsg); err != nil {
			return nil, fmt.Errorf("scan pipeline run: %w", err)
		}
		r.ErrorMessage = errMsg.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Stats returns total row counts for all three tables.
func (s *Store) Stats() (model.DatabaseStats, error) {
	stats := model.DatabaseStats{DatabasePath: s.path}
	counts := []struct {
		table string
		dst   *int
	}{
		{"market_data", &stats.MarketRecords},
		{"news_data", &stats.NewsRecords},
		{"pipeline_metadata", &stats.PipelineRuns},
	}
	for _, c := range counts {
		if err := s.db.QueryRow("SELECT COUNT(*) FROM " + c.table).Scan(c.dst); err != nil {
			return model.DatabaseStats{}, fmt.Errorf("count %s: %w", c.table, err)
		}
	}
	return stats, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.logger.Info("closing database")
	return s.db.Close()
}
