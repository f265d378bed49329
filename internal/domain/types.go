// Package domain defines the core value types shared across the backtesting
// engine: assets, trading pairs, market ticks, orders, and balances. The set
// of assets and pairs is a closed enumeration; anything outside it is rejected
// at parse time rather than failing mid-run.
package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Asset identifies a tradable currency.
type Asset string

// The three assets of the reference domain.
const (
	AssetFiat   Asset = "fiat"
	AssetToken1 Asset = "token_1"
	AssetToken2 Asset = "token_2"
)

// KnownAssets returns all supported assets in sorted order.
func KnownAssets() []Asset {
	return []Asset{AssetFiat, AssetToken1, AssetToken2}
}

// ParseAsset validates s against the known asset set.
func ParseAsset(s string) (Asset, error) {
	switch Asset(s) {
	case AssetFiat, AssetToken1, AssetToken2:
		return Asset(s), nil
	}
	return "", fmt.Errorf("unknown asset %q", s)
}

// Pair is an ordered base/quote asset combination, rendered as "base/quote".
type Pair struct {
	Base  Asset
	Quote Asset
}

// The three pairs supported by the engine.
var (
	PairToken1Fiat   = Pair{Base: AssetToken1, Quote: AssetFiat}
	PairToken2Fiat   = Pair{Base: AssetToken2, Quote: AssetFiat}
	PairToken1Token2 = Pair{Base: AssetToken1, Quote: AssetToken2}
)

// String returns the canonical "base/quote" rendering.
func (p Pair) String() string {
	return string(p.Base) + "/" + string(p.Quote)
}

// KnownPairs returns all supported pairs sorted by their string rendering.
func KnownPairs() []Pair {
	pairs := []Pair{PairToken1Fiat, PairToken2Fiat, PairToken1Token2}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].String() < pairs[j].String()
	})
	return pairs
}

// ParsePair splits s on "/" and validates that both sides are known assets
// and that the combination is one of the supported pairs.
func ParsePair(s string) (Pair, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return Pair{}, fmt.Errorf("pair %q: want exactly one \"/\"", s)
	}
	base, err := ParseAsset(parts[0])
	if err != nil {
		return Pair{}, fmt.Errorf("pair %q: %w", s, err)
	}
	quote, err := ParseAsset(parts[1])
	if err != nil {
		return Pair{}, fmt.Errorf("pair %q: %w", s, err)
	}
	p := Pair{Base: base, Quote: quote}
	switch p {
	case PairToken1Fiat, PairToken2Fiat, PairToken1Token2:
		return p, nil
	}
	return Pair{}, fmt.Errorf("unsupported pair %q", s)
}

// OrderSide is the direction of an order.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// ParseSide validates s as an order side.
func ParseSide(s string) (OrderSide, error) {
	switch OrderSide(s) {
	case OrderSideBuy, OrderSideSell:
		return OrderSide(s), nil
	}
	return "", fmt.Errorf("unknown order side %q", s)
}

// Tick is a single market observation for one pair at one timestamp. Only
// Close is required by the engine; the remaining OHLCV fields are carried
// through to strategies untouched.
type Tick struct {
	Pair      Pair
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Order is a trading intent returned by a strategy. Pair and Side are kept as
// raw strings: a strategy can emit anything, and the ledger treats anything
// that does not parse as a fatal run error.
type Order struct {
	Pair string
	Side string
	Qty  float64
}

// Balances maps each asset to a non-negative quantity.
type Balances map[Asset]float64

// Copy returns an independent copy of the balances.
func (b Balances) Copy() Balances {
	c := make(Balances, len(b))
	for asset, qty := range b {
		c[asset] = qty
	}
	return c
}

// Validate checks that every key is a known asset and every quantity is a
// non-negative finite number.
func (b Balances) Validate() error {
	for asset, qty := range b {
		if _, err := ParseAsset(string(asset)); err != nil {
			return err
		}
		if math.IsNaN(qty) || math.IsInf(qty, 0) || qty < 0 {
			return fmt.Errorf("balance for %s must be a non-negative number, got %v", asset, qty)
		}
	}
	return nil
}
