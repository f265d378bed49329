package data

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"tradebench/internal/domain"
)

// SymbolMapping names the real-world symbols behind each generic asset; merge
// inputs carry exchange pairs like "ETH/USDT" that are anonymized to
// "token_1/fiat" etc. in the merged output.
type SymbolMapping struct {
	Token1 string // e.g. "ETH"
	Token2 string // e.g. "BTC"
	Fiat   string // e.g. "USDT"
}

// pairRenames maps real pair strings to the generic pair set.
func (m SymbolMapping) pairRenames() map[string]domain.Pair {
	return map[string]domain.Pair{
		m.Token1 + "/" + m.Fiat:   domain.PairToken1Fiat,
		m.Token2 + "/" + m.Fiat:   domain.PairToken2Fiat,
		m.Token1 + "/" + m.Token2: domain.PairToken1Token2,
	}
}

// Merge reads per-pair CSV files, renames their symbols per mapping, sorts
// everything by timestamp, assigns a fresh row id to each tick, and writes
// the merged CSV to outPath. It returns the number of merged rows.
func Merge(inputs []string, outPath string, mapping SymbolMapping) (int, error) {
	renames := mapping.pairRenames()

	var ticks []domain.Tick
	for _, path := range inputs {
		fileTicks, err := readRenamedCSV(path, renames)
		if err != nil {
			return 0, err
		}
		ticks = append(ticks, fileTicks...)
	}

	sort.SliceStable(ticks, func(i, j int) bool {
		return ticks[i].Timestamp.Before(ticks[j].Timestamp)
	})

	ids := make([]string, len(ticks))
	for i := range ids {
		ids[i] = uuid.NewString()
	}

	if err := WriteCSVTicks(outPath, ticks, ids); err != nil {
		return 0, err
	}
	return len(ticks), nil
}

// readRenamedCSV reads one input CSV, translating each row's symbol through
// renames. Symbols already in generic form pass through unchanged.
func readRenamedCSV(path string, renames map[string]domain.Pair) ([]domain.Tick, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("%s: empty file", path)
	}

	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[name] = i
	}
	for _, required := range []string{"timestamp", "symbol", "close"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("%s: missing column %q", path, required)
		}
	}

	field := func(row []string, name string) float64 {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return 0
		}
		v, _ := strconv.ParseFloat(row[i], 64)
		return v
	}

	ticks := make([]domain.Tick, 0, len(rows)-1)
	for n, row := range rows[1:] {
		symbol := row[col["symbol"]]
		pair, ok := renames[symbol]
		if !ok {
			var err error
			if pair, err = domain.ParsePair(symbol); err != nil {
				return nil, fmt.Errorf("%s row %d: symbol %q matches no mapping: %w", path, n+2, symbol, err)
			}
		}
		ts, err := parseTimestamp(row[col["timestamp"]])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, n+2, err)
		}

		ticks = append(ticks, domain.Tick{
			Pair:      pair,
			Timestamp: ts,
			Open:      field(row, "open"),
			High:      field(row, "high"),
			Low:       field(row, "low"),
			Close:     field(row, "close"),
			Volume:    field(row, "volume"),
		})
	}
	return ticks, nil
}
