// Package engine implements the deterministic backtesting core: the price
// book, the balance ledger with fee-aware order execution, portfolio
// valuation, the tick-driven simulator, and performance metrics.
package engine

import (
	"tradebench/internal/domain"
)

// PriceBook tracks the latest known price for each pair, plus the first price
// ever observed per pair. First prices are write-once and kept for reporting
// and the buy-and-hold baseline.
type PriceBook struct {
	latest map[domain.Pair]float64
	first  map[domain.Pair]float64
}

// NewPriceBook creates an empty PriceBook; no pair is priced until its first
// tick arrives.
func NewPriceBook() *PriceBook {
	return &PriceBook{
		latest: make(map[domain.Pair]float64),
		first:  make(map[domain.Pair]float64),
	}
}

// Update overwrites the latest price for pair and records the first-seen
// price if not already recorded.
func (b *PriceBook) Update(pair domain.Pair, price float64) {
	b.latest[pair] = price
	if _, ok := b.first[pair]; !ok {
		b.first[pair] = price
	}
}

// Price returns the latest price for pair. The second return value is false
// until the first tick for that pair has been ingested.
func (b *PriceBook) Price(pair domain.Pair) (float64, bool) {
	p, ok := b.latest[pair]
	return p, ok
}

// FirstPrice returns the first price ever observed for pair.
func (b *PriceBook) FirstPrice(pair domain.Pair) (float64, bool) {
	p, ok := b.first[pair]
	return p, ok
}

// LatestPrices returns a snapshot of all latest prices keyed by pair string.
func (b *PriceBook) LatestPrices() map[string]float64 {
	return snapshotPrices(b.latest)
}

// FirstPrices returns a snapshot of all first-seen prices keyed by pair string.
func (b *PriceBook) FirstPrices() map[string]float64 {
	return snapshotPrices(b.first)
}

func snapshotPrices(m map[domain.Pair]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for pair, price := range m {
		out[pair.String()] = price
	}
	return out
}
