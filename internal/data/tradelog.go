package data

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"tradebench/internal/engine"
)

// WriteTradeLog writes the journaled trades of a run to a CSV file, one row
// per order the strategy returned.
func WriteTradeLog(path string, trades []engine.Trade) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "timestamp", "pair", "side", "qty", "executed"}); err != nil {
		return err
	}
	for _, t := range trades {
		row := []string{
			t.ID,
			strconv.FormatInt(t.Timestamp.UnixMilli(), 10),
			t.Pair,
			t.Side,
			formatFloat(t.Qty),
			strconv.FormatBool(t.Executed),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadTradeLog reads a trade-log CSV back into journal entries. The executed
// column is optional so externally produced submissions load too.
func ReadTradeLog(path string) ([]engine.Trade, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
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
	for _, required := range []string{"timestamp", "pair", "side", "qty"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("%s: missing column %q", path, required)
		}
	}

	get := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	trades := make([]engine.Trade, 0, len(rows)-1)
	for n, row := range rows[1:] {
		ts, err := parseTimestamp(get(row, "timestamp"))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, n+2, err)
		}
		qty, err := strconv.ParseFloat(get(row, "qty"), 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: qty: %w", path, n+2, err)
		}
		executed := get(row, "executed") == "true"

		trades = append(trades, engine.Trade{
			ID:        get(row, "id"),
			Timestamp: ts.In(time.UTC),
			Pair:      get(row, "pair"),
			Side:      get(row, "side"),
			Qty:       qty,
			Executed:  executed,
		})
	}
	return trades, nil
}
