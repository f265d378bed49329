package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tradebench/internal/config"
	"tradebench/internal/data"
	"tradebench/internal/domain"
	"tradebench/internal/engine"
	"tradebench/internal/gather"
	"tradebench/internal/report"
	"tradebench/internal/strategy"
	"tradebench/internal/strategy/builtins"
	"tradebench/internal/util"
)

const version = "0.1.0"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tradebench <command> [options]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  run        Backtest a strategy against a tick data file\n")
		fmt.Fprintf(os.Stderr, "  score      Score a recorded trade log against a tick data file\n")
		fmt.Fprintf(os.Stderr, "  merge      Merge per-pair CSV files into one anonymized data set\n")
		fmt.Fprintf(os.Stderr, "  fetch      Download 1-minute klines from Binance\n")
		fmt.Fprintf(os.Stderr, "  version    Print the CLI version\n")
		fmt.Fprintf(os.Stderr, "\n")
	}

	if len(os.Args) < 2 {
		flag.Usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "run":
		err = cmdRun(os.Args[2:])
	case "score":
		err = cmdScore(os.Args[2:])
	case "merge":
		err = cmdMerge(os.Args[2:])
	case "fetch":
		err = cmdFetch(os.Args[2:])
	case "version":
		fmt.Printf("tradebench %s\n", version)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		flag.Usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves the config file and installs the logger.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	util.SetDefault(util.NewLogger(cfg.Logging.Level))
	return cfg, nil
}

// buildRegistry wires up the built-in strategies from the configuration.
func buildRegistry(cfg *config.Config) *strategy.Registry {
	reg := strategy.NewRegistry()
	reg.Register(builtins.NewMeanRevert(
		cfg.Strategy.Pair,
		cfg.Strategy.Window,
		cfg.Strategy.Threshold,
		cfg.Strategy.Qty,
	))
	reg.Register(builtins.NewHold())
	return reg
}

// runBacktest is the shared core of the run and score commands.
func runBacktest(cfg *config.Config, dataPath string, strat strategy.Strategy) (*engine.Result, error) {
	ticks, err := data.LoadTicks(dataPath)
	if err != nil {
		return nil, err
	}

	sim, err := engine.NewSimulator(engine.Config{
		InitialBalances: cfg.InitialBalances(),
		FeeRate:         cfg.FeeRate(),
		RiskFree:        cfg.RiskFree,
	})
	if err != nil {
		return nil, err
	}
	return sim.Run(ticks, strat)
}

func cmdRun(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML config file")
	dataPath := fs.String("data", "", "tick data file (.csv, .parquet, .db); overrides config")
	stratName := fs.String("strategy", "", "strategy name; overrides config")
	tradesOut := fs.String("trades", "", "write journaled trades CSV here; overrides config")
	jsonOut := fs.Bool("json", false, "print the result as JSON instead of a summary")
	withCurve := fs.Bool("curve", false, "include the equity curve in JSON output")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *dataPath != "" {
		cfg.Data.Path = *dataPath
	}
	if *stratName != "" {
		cfg.Strategy.Name = *stratName
	}
	if *tradesOut != "" {
		cfg.Data.TradesOut = *tradesOut
	}
	if cfg.Data.Path == "" {
		return fmt.Errorf("no data file: pass -data or set data.path in the config")
	}

	strat, ok := buildRegistry(cfg).Get(cfg.Strategy.Name)
	if !ok {
		return fmt.Errorf("unknown strategy %q", cfg.Strategy.Name)
	}

	res, err := runBacktest(cfg, cfg.Data.Path, strat)
	if err != nil {
		return err
	}

	if cfg.Data.TradesOut != "" {
		if err := data.WriteTradeLog(cfg.Data.TradesOut, res.Trades); err != nil {
			return fmt.Errorf("writing trade log: %w", err)
		}
	}

	return printResult(res, *jsonOut, *withCurve)
}

func cmdScore(args []string) error {
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML config file")
	dataPath := fs.String("data", "", "tick data file; overrides config")
	tradesPath := fs.String("trades", "", "recorded trade log CSV to replay")
	jsonOut := fs.Bool("json", false, "print the result as JSON instead of a summary")
	fs.Parse(args)

	if *tradesPath == "" {
		return fmt.Errorf("no trade log: pass -trades")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *dataPath != "" {
		cfg.Data.Path = *dataPath
	}
	if cfg.Data.Path == "" {
		return fmt.Errorf("no data file: pass -data or set data.path in the config")
	}

	trades, err := data.ReadTradeLog(*tradesPath)
	if err != nil {
		return err
	}
	orders := make([]strategy.TimedOrder, len(trades))
	for i, t := range trades {
		orders[i] = strategy.TimedOrder{
			Timestamp: t.Timestamp,
			Order:     domain.Order{Pair: t.Pair, Side: t.Side, Qty: t.Qty},
		}
	}

	res, err := runBacktest(cfg, cfg.Data.Path, strategy.NewReplay(orders))
	if err != nil {
		return err
	}
	return printResult(res, *jsonOut, false)
}

func cmdMerge(args []string) error {
	fs := flag.NewFlagSet("merge", flag.ExitOnError)
	out := fs.String("out", "merged.csv", "output CSV path")
	token1 := fs.String("token1", "ETH", "real symbol behind token_1")
	token2 := fs.String("token2", "BTC", "real symbol behind token_2")
	fiat := fs.String("fiat", "USDT", "real symbol behind fiat")
	fs.Parse(args)

	inputs := fs.Args()
	if len(inputs) == 0 {
		return fmt.Errorf("no input files")
	}

	n, err := data.Merge(inputs, *out, data.SymbolMapping{
		Token1: *token1,
		Token2: *token2,
		Fiat:   *fiat,
	})
	if err != nil {
		return err
	}
	fmt.Printf("merged %d rows from %d files into %s\n", n, len(inputs), *out)
	return nil
}

func cmdFetch(args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML config file")
	symbol := fs.String("symbol", "", "exchange symbol, e.g. ETHUSDT; overrides config")
	pairName := fs.String("pair", "", "generic pair label for the output, e.g. token_1/fiat")
	startMs := fs.Int64("start", 0, "range start, unix milliseconds")
	endMs := fs.Int64("end", 0, "range end, unix milliseconds")
	out := fs.String("out", "", "output file (.parquet or .db); overrides config")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *symbol != "" {
		cfg.Fetch.Symbol = *symbol
	}
	if *pairName != "" {
		cfg.Fetch.Pair = *pairName
	}
	if *startMs != 0 {
		cfg.Fetch.StartMs = *startMs
	}
	if *endMs != 0 {
		cfg.Fetch.EndMs = *endMs
	}
	if *out != "" {
		cfg.Fetch.Out = *out
	}

	if cfg.Fetch.Symbol == "" || cfg.Fetch.Pair == "" || cfg.Fetch.Out == "" {
		return fmt.Errorf("fetch needs -symbol, -pair, and -out (or their config fields)")
	}
	pair, err := domain.ParsePair(cfg.Fetch.Pair)
	if err != nil {
		return err
	}

	fetcher := gather.NewKlineFetcher(cfg.Fetch.BaseURL, cfg.Fetch.RateLimitPerMin)
	ticks, err := fetcher.Fetch(context.Background(), cfg.Fetch.Symbol, pair,
		time.UnixMilli(cfg.Fetch.StartMs), time.UnixMilli(cfg.Fetch.EndMs))
	if err != nil {
		return err
	}

	if err := saveTicks(cfg.Fetch.Out, ticks); err != nil {
		return err
	}
	fmt.Printf("saved %d rows to %s\n", len(ticks), cfg.Fetch.Out)
	return nil
}

// saveTicks writes fetched ticks to Parquet or the SQLite archive, chosen by
// extension.
func saveTicks(path string, ticks []domain.Tick) error {
	switch filepath.Ext(path) {
	case ".parquet":
		return data.WriteParquetTicks(path, ticks)
	case ".db", ".sqlite":
		store, err := data.OpenSQLite(path)
		if err != nil {
			return err
		}
		defer store.Close()
		return store.WriteTicks(ticks)
	case ".csv":
		return data.WriteCSVTicks(path, ticks, nil)
	}
	return fmt.Errorf("unsupported output %q: want .parquet, .db, .sqlite, or .csv", path)
}

func printResult(res *engine.Result, asJSON, withCurve bool) error {
	if asJSON {
		out, err := report.RenderJSON(res, withCurve)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}
	fmt.Print(report.Summary(res))
	return nil
}
