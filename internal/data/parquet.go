package data

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"

	"tradebench/internal/domain"
)

// TickRecord is the on-disk Parquet schema for tick data.
type TickRecord struct {
	Symbol    string  `parquet:"symbol"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	Volume    float64 `parquet:"volume"`
}

// WriteParquetTicks writes ticks to a single Parquet file, creating parent
// directories as needed.
func WriteParquetTicks(path string, ticks []domain.Tick) error {
	records := make([]TickRecord, len(ticks))
	for i, t := range ticks {
		records[i] = TickRecord{
			Symbol:    t.Pair.String(),
			Timestamp: t.Timestamp.UnixMilli(),
			Open:      t.Open,
			High:      t.High,
			Low:       t.Low,
			Close:     t.Close,
			Volume:    t.Volume,
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

// ReadParquetTicks reads a Parquet tick file, validating every symbol.
func ReadParquetTicks(path string) ([]domain.Tick, error) {
	records, err := parquet.ReadFile[TickRecord](path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	ticks := make([]domain.Tick, 0, len(records))
	for _, r := range records {
		pair, err := domain.ParsePair(r.Symbol)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		ticks = append(ticks, domain.Tick{
			Pair:      pair,
			Timestamp: time.UnixMilli(r.Timestamp).UTC(),
			Open:      r.Open,
			High:      r.High,
			Low:       r.Low,
			Close:     r.Close,
			Volume:    r.Volume,
		})
	}
	return ticks, nil
}
