package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"tradebench/internal/domain"
	"tradebench/internal/strategy"
)

// Config carries the resolved run parameters the simulator needs.
type Config struct {
	// InitialBalances are the starting holdings per asset. Missing assets
	// default to zero.
	InitialBalances domain.Balances

	// FeeRate is the trading fee as a fraction, e.g. 0.0002 for 2 bps.
	FeeRate float64

	// RiskFree is the annual risk-free rate for the sharpe computation.
	RiskFree float64
}

// Trade is one journaled strategy order. Every order a strategy returns is
// recorded, whether or not it executed.
type Trade struct {
	ID        string
	Timestamp time.Time
	Pair      string
	Side      string
	Qty       float64
	Executed  bool
}

// PnL summarizes the run's profit and loss.
type PnL struct {
	Absolute      float64
	Percentage    float64
	InitialEquity float64
	FinalEquity   float64
}

// HODL is the buy-and-hold baseline: the initial balances valued at the
// run's final prices, never traded.
type HODL struct {
	FinalValue float64
	Absolute   float64
	Percentage float64
}

// Result is the immutable outcome of one backtest run, assembled once at
// finalization.
type Result struct {
	Score           float64
	ScoreComponents ScoreComponents

	PnL         PnL
	Sharpe      float64
	MaxDrawdown float64
	Turnover    float64
	FeesPaid    float64
	TradeCount  int

	HODL HODL

	InitialBalances domain.Balances
	FinalBalances   domain.Balances
	InitialPrices   map[string]float64
	FinalPrices     map[string]float64

	EquityCurve []float64
	Trades      []Trade
}

// Simulator drives one backtest: it streams tick groups in timestamp order
// through the price book and ledger, invokes the strategy once per group, and
// produces the run result. A Simulator owns its ledger and price book for the
// duration of the run and must not be shared or reused.
type Simulator struct {
	cfg    Config
	ledger *Ledger
	book   *PriceBook
	log    *slog.Logger
}

// NewSimulator validates cfg and creates a ready-to-run Simulator.
func NewSimulator(cfg Config) (*Simulator, error) {
	if cfg.InitialBalances == nil {
		cfg.InitialBalances = domain.Balances{}
	}
	if err := cfg.InitialBalances.Validate(); err != nil {
		return nil, fmt.Errorf("initial balances: %w", err)
	}
	if cfg.FeeRate < 0 {
		return nil, fmt.Errorf("fee rate must be non-negative, got %v", cfg.FeeRate)
	}

	return &Simulator{
		cfg:    cfg,
		ledger: NewLedger(cfg.InitialBalances, cfg.FeeRate),
		book:   NewPriceBook(),
		log:    slog.Default().With("component", "simulator"),
	}, nil
}

// Run replays ticks through strat and returns the completed result. Ticks are
// ordered by timestamp (then pair) before streaming; ticks sharing a
// timestamp form one group whose price updates are applied together.
//
// For each group the loop updates the price book, invokes the strategy once
// with a snapshot of the group and a copy of the balances, applies the
// returned orders sequentially in their returned order, and appends one
// equity sample reflecting the post-trade balances at the group's prices.
// A strategy error or malformed order aborts the run with no partial result.
func (s *Simulator) Run(ticks []domain.Tick, strat strategy.Strategy) (*Result, error) {
	ordered := make([]domain.Tick, len(ticks))
	copy(ordered, ticks)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Timestamp.Equal(ordered[j].Timestamp) {
			return ordered[i].Timestamp.Before(ordered[j].Timestamp)
		}
		return ordered[i].Pair.String() < ordered[j].Pair.String()
	})

	initialBalances := s.ledger.Balances()
	equity := []float64{seedEquity(initialBalances, ordered)}
	var trades []Trade

	s.log.Debug("run starting",
		"ticks", len(ordered),
		"strategy", strat.Name(),
		"fee_rate", s.cfg.FeeRate)

	for start := 0; start < len(ordered); {
		end := start
		for end < len(ordered) && ordered[end].Timestamp.Equal(ordered[start].Timestamp) {
			end++
		}
		group := ordered[start:end]
		start = end

		snap := strategy.Snapshot{
			Timestamp: group[0].Timestamp,
			Fee:       s.cfg.FeeRate,
			Ticks:     make(map[string]domain.Tick, len(group)),
		}
		for _, tick := range group {
			s.book.Update(tick.Pair, tick.Close)
			snap.Ticks[tick.Pair.String()] = tick
		}

		orders, err := strat.OnData(snap, s.ledger.Balances())
		if err != nil {
			return nil, fmt.Errorf("strategy %s at %s: %w", strat.Name(), snap.Timestamp, err)
		}

		for _, order := range orders {
			executed, err := s.ledger.Execute(order, s.book)
			if err != nil {
				return nil, fmt.Errorf("at %s: %w", snap.Timestamp, err)
			}
			trades = append(trades, Trade{
				ID:        tradeID(snap.Timestamp, len(trades), order),
				Timestamp: snap.Timestamp,
				Pair:      order.Pair,
				Side:      order.Side,
				Qty:       order.Qty,
				Executed:  executed,
			})
		}

		equity = append(equity, PortfolioValue(s.ledger.Balances(), s.book))
	}

	return s.finalize(initialBalances, equity, trades), nil
}

// tradeID derives a stable UUID from the trade's position and content, so an
// identical run journals identical IDs.
func tradeID(ts time.Time, seq int, order domain.Order) string {
	name := fmt.Sprintf("%d/%d/%s/%s/%v", ts.UnixMilli(), seq, order.Pair, order.Side, order.Qty)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

// seedEquity values the initial holdings at the first observed direct price
// of each token pair. Pairs with no data at all stay unpriced and contribute
// nothing; the stream is already time-ordered, so the first occurrence per
// pair is its first tick.
func seedEquity(balances domain.Balances, ordered []domain.Tick) float64 {
	firstClose := make(map[domain.Pair]float64)
	for _, tick := range ordered {
		if _, ok := firstClose[tick.Pair]; !ok {
			firstClose[tick.Pair] = tick.Close
		}
	}

	value := balances[domain.AssetFiat]
	if p, ok := firstClose[domain.PairToken1Fiat]; ok {
		value += balances[domain.AssetToken1] * p
	}
	if p, ok := firstClose[domain.PairToken2Fiat]; ok {
		value += balances[domain.AssetToken2] * p
	}
	return value
}

func (s *Simulator) finalize(initialBalances domain.Balances, equity []float64, trades []Trade) *Result {
	rets := Returns(equity)
	sharpe := SharpeRatio(rets, s.cfg.RiskFree)
	maxDD := MaxDrawdown(equity)
	turnover := s.ledger.Turnover()
	score, components := ComputeScore(sharpe, maxDD, turnover)

	initialEquity := equity[0]
	finalEquity := equity[len(equity)-1]
	absolutePnL := finalEquity - initialEquity

	hodlValue := PortfolioValue(initialBalances, s.book)

	res := &Result{
		Score:           score,
		ScoreComponents: components,
		PnL: PnL{
			Absolute:      absolutePnL,
			Percentage:    percentOf(absolutePnL, initialEquity),
			InitialEquity: initialEquity,
			FinalEquity:   finalEquity,
		},
		Sharpe:      sharpe,
		MaxDrawdown: maxDD,
		Turnover:    turnover,
		FeesPaid:    s.ledger.FeesPaid(),
		TradeCount:  s.ledger.TradeCount(),
		HODL: HODL{
			FinalValue: hodlValue,
			Absolute:   hodlValue - initialEquity,
			Percentage: percentOf(hodlValue-initialEquity, initialEquity),
		},
		InitialBalances: initialBalances,
		FinalBalances:   s.ledger.Balances(),
		InitialPrices:   s.book.FirstPrices(),
		FinalPrices:     s.book.LatestPrices(),
		EquityCurve:     equity,
		Trades:          trades,
	}

	s.log.Info("run finished",
		"score", res.Score,
		"sharpe", res.Sharpe,
		"max_drawdown", res.MaxDrawdown,
		"turnover", res.Turnover,
		"trades", res.TradeCount)

	return res
}

func percentOf(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}
