package engine

import (
	"tradebench/internal/domain"
)

// PortfolioValue converts balances into a single fiat amount using the latest
// prices in book.
//
// Direct pricing always wins over triangulation: token_2 holdings are valued
// through token_1/token_2 only while token_2/fiat has never been priced. A
// token with no usable price contributes zero until one appears.
func PortfolioValue(balances domain.Balances, book *PriceBook) float64 {
	value := balances[domain.AssetFiat]

	if p, ok := book.Price(domain.PairToken1Fiat); ok {
		value += balances[domain.AssetToken1] * p
	}

	if p, ok := book.Price(domain.PairToken2Fiat); ok {
		value += balances[domain.AssetToken2] * p
		return value
	}

	// Fallback: convert token_2 into token_1 units and value those in fiat.
	t1Fiat, okDirect := book.Price(domain.PairToken1Fiat)
	t1t2, okCross := book.Price(domain.PairToken1Token2)
	if okDirect && okCross {
		value += balances[domain.AssetToken2] / t1t2 * t1Fiat
	}

	return value
}
