package data

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"tradebench/internal/domain"
)

const createTicksTable = `
CREATE TABLE IF NOT EXISTS ticks (
	symbol    TEXT    NOT NULL,
	timestamp INTEGER NOT NULL,
	open      REAL    NOT NULL,
	high      REAL    NOT NULL,
	low       REAL    NOT NULL,
	close     REAL    NOT NULL,
	volume    REAL    NOT NULL,
	PRIMARY KEY (symbol, timestamp)
)`

// SQLiteStore archives tick data in a SQLite database. The fetch command
// writes into it; runs can read their input stream back out, ordered for the
// simulator.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the tick archive at dbPath.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(createTicksTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating ticks table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// WriteTicks upserts a batch of ticks inside one transaction, keyed by
// (symbol, timestamp) so repeated fetches stay idempotent.
func (s *SQLiteStore) WriteTicks(ticks []domain.Tick) error {
	if len(ticks) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO ticks
		(symbol, timestamp, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range ticks {
		_, err := stmt.Exec(
			t.Pair.String(), t.Timestamp.UnixMilli(),
			t.Open, t.High, t.Low, t.Close, t.Volume,
		)
		if err != nil {
			return fmt.Errorf("inserting tick %s@%s: %w", t.Pair, t.Timestamp, err)
		}
	}
	return tx.Commit()
}

// ReadTicks returns all archived ticks ordered by timestamp then symbol.
func (s *SQLiteStore) ReadTicks() ([]domain.Tick, error) {
	rows, err := s.db.Query(`SELECT symbol, timestamp, open, high, low, close, volume
		FROM ticks ORDER BY timestamp, symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ticks []domain.Tick
	for rows.Next() {
		var symbol string
		var ms int64
		var t domain.Tick
		if err := rows.Scan(&symbol, &ms, &t.Open, &t.High, &t.Low, &t.Close, &t.Volume); err != nil {
			return nil, err
		}
		pair, err := domain.ParsePair(symbol)
		if err != nil {
			return nil, err
		}
		t.Pair = pair
		t.Timestamp = time.UnixMilli(ms).UTC()
		ticks = append(ticks, t)
	}
	return ticks, rows.Err()
}
