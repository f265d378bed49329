package data

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"tradebench/internal/domain"
)

// tickColumns is the merged-file column order. An id column, when present,
// is carried but not required.
var tickColumns = []string{"id", "timestamp", "symbol", "open", "high", "low", "close", "volume"}

// ReadCSVTicks reads ticks from a merged CSV file. Columns are resolved by
// header name; timestamp, symbol, and close are required, the remaining OHLCV
// fields default to zero when absent.
func ReadCSVTicks(path string) ([]domain.Tick, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
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
		pair, err := domain.ParsePair(row[col["symbol"]])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, n+2, err)
		}
		ts, err := parseTimestamp(row[col["timestamp"]])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, n+2, err)
		}
		close, err := strconv.ParseFloat(row[col["close"]], 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: close: %w", path, n+2, err)
		}

		ticks = append(ticks, domain.Tick{
			Pair:      pair,
			Timestamp: ts,
			Open:      field(row, "open"),
			High:      field(row, "high"),
			Low:       field(row, "low"),
			Close:     close,
			Volume:    field(row, "volume"),
		})
	}
	return ticks, nil
}

// WriteCSVTicks writes ticks in the merged-file format with the given row
// ids. ids may be nil, in which case the id column is left empty.
func WriteCSVTicks(path string, ticks []domain.Tick, ids []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(tickColumns); err != nil {
		return err
	}
	for i, tk := range ticks {
		id := ""
		if ids != nil {
			id = ids[i]
		}
		row := []string{
			id,
			strconv.FormatInt(tk.Timestamp.UnixMilli(), 10),
			tk.Pair.String(),
			formatFloat(tk.Open),
			formatFloat(tk.High),
			formatFloat(tk.Low),
			formatFloat(tk.Close),
			formatFloat(tk.Volume),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// parseTimestamp accepts unix milliseconds, unix seconds, RFC 3339, or the
// "2006-01-02 15:04:05" layout the downloader historically emitted.
func parseTimestamp(s string) (time.Time, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		// Values this large can only be milliseconds.
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}
