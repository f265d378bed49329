package engine

import (
	"fmt"
	"math"

	"tradebench/internal/domain"
)

// Ledger holds per-asset balances and applies orders against them with fee
// deduction. Balances never go negative: an order that cannot be afforded is
// rejected without partial application.
//
// The turnover counter is asymmetric: buys accumulate total cost including
// fee, sells accumulate gross proceeds excluding fee. The score weighting is
// calibrated against this exact definition.
type Ledger struct {
	balances domain.Balances
	feeRate  float64

	turnover   float64
	feesPaid   float64
	tradeCount int
}

// NewLedger creates a Ledger with a copy of the initial balances and a fixed
// fee rate expressed as a fraction (0.0002 for 2 basis points).
func NewLedger(initial domain.Balances, feeRate float64) *Ledger {
	l := &Ledger{
		balances: initial.Copy(),
		feeRate:  feeRate,
	}
	// Every known asset has an entry so reports always show all three.
	for _, asset := range domain.KnownAssets() {
		if _, ok := l.balances[asset]; !ok {
			l.balances[asset] = 0
		}
	}
	return l
}

// Execute applies order against the current balances at the latest price from
// book. It returns true when the order executed and mutated state.
//
// A missing price for the pair or an insufficient balance is a silent skip:
// (false, nil) with no state change. A malformed order, meaning an
// unresolvable pair, an unknown side, or a non-positive quantity, is a fatal
// run error.
func (l *Ledger) Execute(order domain.Order, book *PriceBook) (bool, error) {
	pair, err := domain.ParsePair(order.Pair)
	if err != nil {
		return false, fmt.Errorf("malformed order: %w", err)
	}
	side, err := domain.ParseSide(order.Side)
	if err != nil {
		return false, fmt.Errorf("malformed order: %w", err)
	}
	if math.IsNaN(order.Qty) || math.IsInf(order.Qty, 0) || order.Qty <= 0 {
		return false, fmt.Errorf("malformed order: qty must be positive, got %v", order.Qty)
	}

	price, ok := book.Price(pair)
	if !ok {
		// A strategy cannot trade a pair with no price history.
		return false, nil
	}

	switch side {
	case domain.OrderSideBuy:
		cost := order.Qty * price
		fee := cost * l.feeRate
		total := cost + fee
		if l.balances[pair.Quote] < total {
			return false, nil
		}
		l.balances[pair.Quote] -= total
		l.balances[pair.Base] += order.Qty
		l.turnover += total
		l.feesPaid += fee

	case domain.OrderSideSell:
		if l.balances[pair.Base] < order.Qty {
			return false, nil
		}
		proceeds := order.Qty * price
		fee := proceeds * l.feeRate
		l.balances[pair.Quote] += proceeds - fee
		l.balances[pair.Base] -= order.Qty
		l.turnover += proceeds
		l.feesPaid += fee
	}

	l.tradeCount++
	return true, nil
}

// Balances returns a copy of the current balances.
func (l *Ledger) Balances() domain.Balances {
	return l.balances.Copy()
}

// FeeRate returns the fee fraction this ledger was constructed with.
func (l *Ledger) FeeRate() float64 { return l.feeRate }

// Turnover returns the cumulative gross notional traded.
func (l *Ledger) Turnover() float64 { return l.turnover }

// FeesPaid returns the cumulative fees deducted.
func (l *Ledger) FeesPaid() float64 { return l.feesPaid }

// TradeCount returns the number of executed orders.
func (l *Ledger) TradeCount() int { return l.tradeCount }
