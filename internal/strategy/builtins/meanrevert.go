// Package builtins provides the strategy implementations that ship with
// tradebench.
package builtins

import (
	"math"

	"tradebench/internal/domain"
	"tradebench/internal/strategy"
)

// Compile-time interface checks.
var _ strategy.Strategy = (*MeanRevert)(nil)
var _ strategy.Strategy = (*Hold)(nil)

// MeanRevert trades a single pair against a rolling mean: it buys when the
// close drops below mean − threshold·stddev and sells when it rises above
// mean + threshold·stddev. Price history is instance state, reset with each
// new value constructed for a run.
type MeanRevert struct {
	pair      string
	window    int
	threshold float64
	qty       float64

	prices []float64
}

// NewMeanRevert creates a MeanRevert strategy for the given pair with a
// rolling window length, a threshold in standard deviations, and a fixed
// order quantity.
func NewMeanRevert(pair string, window int, threshold, qty float64) *MeanRevert {
	return &MeanRevert{
		pair:      pair,
		window:    window,
		threshold: threshold,
		qty:       qty,
	}
}

// Name returns "mean-revert".
func (m *MeanRevert) Name() string { return "mean-revert" }

// OnData appends the pair's close to the rolling window and emits a buy or
// sell once the window is full and the price strays past the threshold.
func (m *MeanRevert) OnData(snap strategy.Snapshot, _ domain.Balances) ([]domain.Order, error) {
	tick, ok := snap.Ticks[m.pair]
	if !ok {
		return nil, nil
	}

	m.prices = append(m.prices, tick.Close)
	if len(m.prices) > m.window {
		m.prices = m.prices[len(m.prices)-m.window:]
	}
	if len(m.prices) < m.window {
		return nil, nil
	}

	mean, stddev := meanStddev(m.prices)
	switch {
	case tick.Close < mean-m.threshold*stddev:
		return []domain.Order{{Pair: m.pair, Side: string(domain.OrderSideBuy), Qty: m.qty}}, nil
	case tick.Close > mean+m.threshold*stddev:
		return []domain.Order{{Pair: m.pair, Side: string(domain.OrderSideSell), Qty: m.qty}}, nil
	}
	return nil, nil
}

// meanStddev returns the mean and population standard deviation of xs.
func meanStddev(xs []float64) (float64, float64) {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))

	var sq float64
	for _, x := range xs {
		d := x - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(xs)))
}

// Hold never trades. Its run result is the pure buy-and-hold trajectory of
// the initial balances, useful as a live control next to the HODL baseline.
type Hold struct{}

// NewHold creates a Hold strategy.
func NewHold() *Hold { return &Hold{} }

// Name returns "hold".
func (h *Hold) Name() string { return "hold" }

// OnData always returns no orders.
func (h *Hold) OnData(_ strategy.Snapshot, _ domain.Balances) ([]domain.Order, error) {
	return nil, nil
}
