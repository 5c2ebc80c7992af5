package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

// QuoteSnapshot is one normalized quote as observed at poll time. Symbol is
// the display ticker the caller asked for; YahooSymbol is the provider's
// resolved notation.
type QuoteSnapshot struct {
	ID            int64   `json:"id"`
	TS            int64   `json:"ts"`
	Symbol        string  `json:"symbol"`
	YahooSymbol   string  `json:"yahoo_symbol"`
	LongName      string  `json:"long_name"`
	Currency      string  `json:"currency"`
	Price         float64 `json:"price"`
	PrevClose     float64 `json:"prev_close"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_pct"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Volume        int64   `json:"volume"`
	CreatedAt     string  `json:"created_at"`
}

// AnalysisRecord is one generated narrative, kept as an audit trail.
type AnalysisRecord struct {
	ID        int64  `json:"id"`
	TS        int64  `json:"ts"`
	Symbol    string `json:"symbol"`
	Language  string `json:"language"`
	Kind      string `json:"kind"`
	ContentMD string `json:"content_md"`
	CreatedAt string `json:"created_at"`
}

func Open(path string) (*Store, error) {
	if path == "" {
		path = "data/app.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=3000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma busy_timeout: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS quote_snapshot (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts INTEGER NOT NULL,
			symbol TEXT,
			yahoo_symbol TEXT,
			long_name TEXT,
			currency TEXT,
			price REAL,
			prev_close REAL,
			change REAL,
			change_pct REAL,
			open REAL,
			high REAL,
			low REAL,
			volume INTEGER,
			created_at TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_quote_snapshot_ts ON quote_snapshot(ts);`,
		`CREATE INDEX IF NOT EXISTS idx_quote_snapshot_symbol ON quote_snapshot(symbol);`,
		`CREATE TABLE IF NOT EXISTS analysis (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts INTEGER NOT NULL,
			symbol TEXT,
			language TEXT,
			kind TEXT,
			content_md TEXT,
			created_at TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_analysis_ts ON analysis(ts);`,
		`CREATE INDEX IF NOT EXISTS idx_analysis_symbol ON analysis(symbol);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) InsertQuoteSnapshot(q QuoteSnapshot) error {
	if s == nil || s.db == nil {
		return nil
	}
	if q.CreatedAt == "" {
		q.CreatedAt = time.Now().Format(time.RFC3339)
	}
	_, err := s.db.Exec(
		`INSERT INTO quote_snapshot (ts, symbol, yahoo_symbol, long_name, currency, price, prev_close, change, change_pct, open, high, low, volume, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.TS, q.Symbol, q.YahooSymbol, q.LongName, q.Currency, q.Price, q.PrevClose, q.Change, q.ChangePercent, q.Open, q.High, q.Low, q.Volume, q.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert quote snapshot: %w", err)
	}
	return nil
}

func (s *Store) QueryQuoteSnapshots(symbol string, limit int, offset int) ([]QuoteSnapshot, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store not initialized")
	}
	if limit <= 0 {
		limit = 200
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.Query(
		`SELECT id, ts, symbol, yahoo_symbol, long_name, currency, price, prev_close, change, change_pct, open, high, low, volume, created_at
		 FROM quote_snapshot WHERE symbol = ?
		 ORDER BY ts DESC LIMIT ? OFFSET ?`,
		symbol, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("query quote snapshot: %w", err)
	}
	defer rows.Close()
	var out []QuoteSnapshot
	for rows.Next() {
		var q QuoteSnapshot
		if err := rows.Scan(&q.ID, &q.TS, &q.Symbol, &q.YahooSymbol, &q.LongName, &q.Currency, &q.Price, &q.PrevClose, &q.Change, &q.ChangePercent, &q.Open, &q.High, &q.Low, &q.Volume, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan quote snapshot: %w", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows quote snapshot: %w", err)
	}
	return out, nil
}

func (s *Store) InsertAnalysis(a AnalysisRecord) error {
	if s == nil || s.db == nil {
		return nil
	}
	if a.CreatedAt == "" {
		a.CreatedAt = time.Now().Format(time.RFC3339)
	}
	if a.TS == 0 {
		a.TS = time.Now().Unix()
	}
	_, err := s.db.Exec(
		`INSERT INTO analysis (ts, symbol, language, kind, content_md, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.TS, a.Symbol, a.Language, a.Kind, a.ContentMD, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

func (s *Store) QueryAnalyses(symbol string, limit int, offset int) ([]AnalysisRecord, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store not initialized")
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT id, ts, symbol, language, kind, content_md, created_at FROM analysis`
	args := []any{}
	if symbol != "" {
		query += " WHERE symbol = ?"
		args = append(args, symbol)
	}
	query += " ORDER BY ts DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query analysis: %w", err)
	}
	defer rows.Close()
	var out []AnalysisRecord
	for rows.Next() {
		var a AnalysisRecord
		if err := rows.Scan(&a.ID, &a.TS, &a.Symbol, &a.Language, &a.Kind, &a.ContentMD, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows analysis: %w", err)
	}
	return out, nil
}
