package domain

import (
	"testing"
)

func TestParsePair(t *testing.T) {
	p, err := ParsePair("token_1/fiat")
	if err != nil {
		t.Fatalf("ParsePair returned unexpected error: %v", err)
	}
	if p.Base != AssetToken1 || p.Quote != AssetFiat {
		t.Errorf("ParsePair = %v, want token_1/fiat", p)
	}
	if p.String() != "token_1/fiat" {
		t.Errorf("String() = %q, want %q", p.String(), "token_1/fiat")
	}

	for _, bad := range []string{
		"token_1",
		"token_1/fiat/extra",
		"token_3/fiat",
		"fiat/token_1", // known assets, but not a supported combination
		"",
	} {
		if _, err := ParsePair(bad); err == nil {
			t.Errorf("ParsePair(%q) should fail", bad)
		}
	}
}

func TestKnownPairsSorted(t *testing.T) {
	pairs := KnownPairs()
	if len(pairs) != 3 {
		t.Fatalf("KnownPairs returned %d pairs, want 3", len(pairs))
	}
	for i := 1; i < len(pairs); i++ {
		if pairs[i-1].String() >= pairs[i].String() {
			t.Errorf("KnownPairs not sorted: %s before %s", pairs[i-1], pairs[i])
		}
	}
}

func TestParseSide(t *testing.T) {
	if _, err := ParseSide("buy"); err != nil {
		t.Errorf("ParseSide(buy) error: %v", err)
	}
	if _, err := ParseSide("sell"); err != nil {
		t.Errorf("ParseSide(sell) error: %v", err)
	}
	if _, err := ParseSide("hold"); err == nil {
		t.Error("ParseSide(hold) should fail")
	}
}

func TestBalancesCopy(t *testing.T) {
	b := Balances{AssetFiat: 100, AssetToken1: 2}
	c := b.Copy()
	c[AssetFiat] = 0
	if b[AssetFiat] != 100 {
		t.Error("Copy did not produce an independent map")
	}
}

func TestBalancesValidate(t *testing.T) {
	if err := (Balances{AssetFiat: 0, AssetToken1: 1.5}).Validate(); err != nil {
		t.Errorf("valid balances rejected: %v", err)
	}
	if err := (Balances{AssetFiat: -1}).Validate(); err == nil {
		t.Error("negative balance should be rejected")
	}
	if err := (Balances{"doge": 1}).Validate(); err == nil {
		t.Error("unknown asset should be rejected")
	}
}
