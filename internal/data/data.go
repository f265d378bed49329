// Package data loads and saves tick data and trade logs in the formats the
// toolchain produces: merged CSV, Parquet, and a SQLite archive. Loading
// validates every symbol against the known pair set, so bad identifiers fail
// before a run starts instead of in the middle of one.
package data

import (
	"fmt"
	"path/filepath"
	"strings"

	"tradebench/internal/domain"
)

// LoadTicks reads ticks from path, dispatching on the file extension:
// .csv, .parquet, or .db/.sqlite.
func LoadTicks(path string) ([]domain.Tick, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSVTicks(path)
	case ".parquet":
		return ReadParquetTicks(path)
	case ".db", ".sqlite":
		store, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.ReadTicks()
	}
	return nil, fmt.Errorf("unsupported data file %q: want .csv, .parquet, .db, or .sqlite", path)
}
