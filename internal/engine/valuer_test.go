package engine

import (
	"testing"

	"tradebench/internal/domain"
)

func TestPortfolioValueDirect(t *testing.T) {
	book := NewPriceBook()
	book.Update(domain.PairToken1Fiat, 100)
	book.Update(domain.PairToken2Fiat, 50)

	balances := domain.Balances{
		domain.AssetFiat:   1000,
		domain.AssetToken1: 2,
		domain.AssetToken2: 4,
	}
	if got, want := PortfolioValue(balances, book), 1000+2*100.0+4*50.0; !almostEqual(got, want) {
		t.Errorf("PortfolioValue = %v, want %v", got, want)
	}
}

func TestPortfolioValueTriangulated(t *testing.T) {
	// token_2/fiat never priced; token_1/fiat=100 and token_1/token_2=20 are.
	book := NewPriceBook()
	book.Update(domain.PairToken1Fiat, 100)
	book.Update(domain.PairToken1Token2, 20)

	balances := domain.Balances{
		domain.AssetFiat:   1000,
		domain.AssetToken2: 40,
	}
	// 40 token_2 / 20 = 2 token_1 units, worth 200 fiat.
	if got, want := PortfolioValue(balances, book), 1200.0; !almostEqual(got, want) {
		t.Errorf("PortfolioValue = %v, want %v", got, want)
	}
}

func TestPortfolioValueDirectBeatsTriangulation(t *testing.T) {
	book := NewPriceBook()
	book.Update(domain.PairToken1Fiat, 100)
	book.Update(domain.PairToken1Token2, 20)
	book.Update(domain.PairToken2Fiat, 7)

	balances := domain.Balances{domain.AssetToken2: 10}
	// Direct price wins: 10 * 7, not 10/20*100.
	if got, want := PortfolioValue(balances, book), 70.0; !almostEqual(got, want) {
		t.Errorf("PortfolioValue = %v, want %v", got, want)
	}
}

func TestPortfolioValueUnpricedIsZero(t *testing.T) {
	book := NewPriceBook()
	book.Update(domain.PairToken1Fiat, 100)
	// token_2 has no direct price and no triangulation path.

	balances := domain.Balances{
		domain.AssetFiat:   500,
		domain.AssetToken1: 1,
		domain.AssetToken2: 99,
	}
	if got, want := PortfolioValue(balances, book), 600.0; !almostEqual(got, want) {
		t.Errorf("PortfolioValue = %v, want %v", got, want)
	}

	// With no prices at all, only fiat counts.
	empty := NewPriceBook()
	if got := PortfolioValue(balances, empty); !almostEqual(got, 500) {
		t.Errorf("PortfolioValue with empty book = %v, want 500", got)
	}
}

func TestPriceBookFirstPriceWriteOnce(t *testing.T) {
	book := NewPriceBook()

	if _, ok := book.Price(domain.PairToken1Fiat); ok {
		t.Fatal("pair should be unpriced before first update")
	}

	book.Update(domain.PairToken1Fiat, 100)
	book.Update(domain.PairToken1Fiat, 110)

	if p, _ := book.Price(domain.PairToken1Fiat); p != 110 {
		t.Errorf("latest price = %v, want 110", p)
	}
	if p, _ := book.FirstPrice(domain.PairToken1Fiat); p != 100 {
		t.Errorf("first price = %v, want 100", p)
	}

	latest := book.LatestPrices()
	if latest["token_1/fiat"] != 110 {
		t.Errorf("LatestPrices = %v", latest)
	}
	if len(latest) != 1 {
		t.Errorf("LatestPrices has %d entries, want 1", len(latest))
	}
}
