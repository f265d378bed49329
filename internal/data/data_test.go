package data

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"tradebench/internal/domain"
	"tradebench/internal/engine"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadCSVTicks(t *testing.T) {
	path := writeFile(t, t.TempDir(), "ticks.csv",
		"id,timestamp,symbol,open,high,low,close,volume\n"+
			"a,1704067200000,token_1/fiat,99,101,98,100,12.5\n"+
			"b,1704067260000,token_2/fiat,40,41,39,40.5,7\n")

	ticks, err := ReadCSVTicks(path)
	if err != nil {
		t.Fatalf("ReadCSVTicks: %v", err)
	}
	if len(ticks) != 2 {
		t.Fatalf("got %d ticks, want 2", len(ticks))
	}

	first := ticks[0]
	if first.Pair != domain.PairToken1Fiat {
		t.Errorf("pair = %v", first.Pair)
	}
	if first.Close != 100 || first.Open != 99 || first.Volume != 12.5 {
		t.Errorf("tick = %+v", first)
	}
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !first.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", first.Timestamp, want)
	}
}

func TestReadCSVTicksRejectsUnknownSymbol(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.csv",
		"timestamp,symbol,close\n1704067200000,token_9/fiat,1\n")

	if _, err := ReadCSVTicks(path); err == nil {
		t.Fatal("unknown symbol should fail at load time")
	}
}

func TestCSVTicksRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	in := []domain.Tick{
		{Pair: domain.PairToken1Fiat, Timestamp: time.UnixMilli(1704067200000).UTC(), Close: 100.25, Volume: 3},
		{Pair: domain.PairToken1Token2, Timestamp: time.UnixMilli(1704067260000).UTC(), Close: 2.5},
	}
	if err := WriteCSVTicks(path, in, []string{"x", "y"}); err != nil {
		t.Fatalf("WriteCSVTicks: %v", err)
	}

	out, err := ReadCSVTicks(path)
	if err != nil {
		t.Fatalf("ReadCSVTicks: %v", err)
	}
	if len(out) != 2 || out[0].Close != 100.25 || out[1].Pair != domain.PairToken1Token2 {
		t.Errorf("round trip mismatch: %+v", out)
	}
	if !out[0].Timestamp.Equal(in[0].Timestamp) {
		t.Errorf("timestamp = %v, want %v", out[0].Timestamp, in[0].Timestamp)
	}
}

func TestMerge(t *testing.T) {
	dir := t.TempDir()
	eth := writeFile(t, dir, "eth.csv",
		"timestamp,symbol,open,high,low,close,volume\n"+
			"1704067260000,ETH/USDT,0,0,0,2250,1\n")
	btc := writeFile(t, dir, "btc.csv",
		"timestamp,symbol,open,high,low,close,volume\n"+
			"1704067200000,BTC/USDT,0,0,0,42000,1\n")

	out := filepath.Join(dir, "merged.csv")
	n, err := Merge([]string{eth, btc}, out, SymbolMapping{Token1: "ETH", Token2: "BTC", Fiat: "USDT"})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if n != 2 {
		t.Fatalf("merged %d rows, want 2", n)
	}

	ticks, err := ReadCSVTicks(out)
	if err != nil {
		t.Fatalf("ReadCSVTicks: %v", err)
	}
	// Sorted by timestamp: the BTC row comes first, renamed to token_2/fiat.
	if ticks[0].Pair != domain.PairToken2Fiat || ticks[0].Close != 42000 {
		t.Errorf("first merged tick = %+v", ticks[0])
	}
	if ticks[1].Pair != domain.PairToken1Fiat || ticks[1].Close != 2250 {
		t.Errorf("second merged tick = %+v", ticks[1])
	}
}

func TestMergeRejectsUnmappedSymbol(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "doge.csv",
		"timestamp,symbol,close\n1704067200000,DOGE/USDT,0.1\n")

	_, err := Merge([]string{in}, filepath.Join(dir, "out.csv"),
		SymbolMapping{Token1: "ETH", Token2: "BTC", Fiat: "USDT"})
	if err == nil {
		t.Fatal("unmapped symbol should fail")
	}
}

func TestTradeLogRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trades.csv")

	in := []engine.Trade{
		{ID: "t1", Timestamp: time.UnixMilli(1704067200000).UTC(), Pair: "token_1/fiat", Side: "buy", Qty: 1.5, Executed: true},
		{ID: "t2", Timestamp: time.UnixMilli(1704067260000).UTC(), Pair: "token_1/fiat", Side: "sell", Qty: 0.5, Executed: false},
	}
	if err := WriteTradeLog(path, in); err != nil {
		t.Fatalf("WriteTradeLog: %v", err)
	}

	out, err := ReadTradeLog(path)
	if err != nil {
		t.Fatalf("ReadTradeLog: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d trades, want 2", len(out))
	}
	if out[0] != in[0] || out[1] != in[1] {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", out, in)
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ticks.db")

	store, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer store.Close()

	in := []domain.Tick{
		{Pair: domain.PairToken1Fiat, Timestamp: time.UnixMilli(1704067260000).UTC(), Close: 101},
		{Pair: domain.PairToken1Fiat, Timestamp: time.UnixMilli(1704067200000).UTC(), Close: 100},
	}
	if err := store.WriteTicks(in); err != nil {
		t.Fatalf("WriteTicks: %v", err)
	}
	// Writing the same batch again is idempotent.
	if err := store.WriteTicks(in); err != nil {
		t.Fatalf("WriteTicks (repeat): %v", err)
	}

	out, err := store.ReadTicks()
	if err != nil {
		t.Fatalf("ReadTicks: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d ticks, want 2", len(out))
	}
	// Ordered by timestamp regardless of insertion order.
	if !out[0].Timestamp.Before(out[1].Timestamp) {
		t.Error("ReadTicks not ordered by timestamp")
	}
	if out[0].Close != 100 || out[1].Close != 101 {
		t.Errorf("ticks = %+v", out)
	}
}

func TestLoadTicksDispatch(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeFile(t, dir, "data.csv",
		"timestamp,symbol,close\n1704067200000,token_1/fiat,100\n")

	ticks, err := LoadTicks(csvPath)
	if err != nil {
		t.Fatalf("LoadTicks(csv): %v", err)
	}
	if len(ticks) != 1 {
		t.Errorf("got %d ticks, want 1", len(ticks))
	}

	if _, err := LoadTicks(filepath.Join(dir, "data.xlsx")); err == nil {
		t.Error("unsupported extension should fail")
	}
}
