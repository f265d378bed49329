package report

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"tradebench/internal/domain"
	"tradebench/internal/engine"
)

func sampleResult() *engine.Result {
	return &engine.Result{
		Score:       1.25,
		Sharpe:      2.0,
		MaxDrawdown: -0.1,
		Turnover:    100.02,
		TradeCount:  1,
		FeesPaid:    0.02,
		PnL: engine.PnL{
			Absolute:      9.98,
			Percentage:    0.0998,
			InitialEquity: 10000,
			FinalEquity:   10009.98,
		},
		HODL: engine.HODL{FinalValue: 10000, Absolute: 0, Percentage: 0},
		InitialBalances: domain.Balances{
			domain.AssetFiat: 10000, domain.AssetToken1: 0, domain.AssetToken2: 0,
		},
		FinalBalances: domain.Balances{
			domain.AssetFiat: 9899.98, domain.AssetToken1: 1, domain.AssetToken2: 0,
		},
		InitialPrices: map[string]float64{"token_1/fiat": 100},
		FinalPrices:   map[string]float64{"token_1/fiat": 110},
		EquityCurve:   []float64{10000, 9999.98, 10009.98},
	}
}

func TestRenderJSON(t *testing.T) {
	out, err := RenderJSON(sampleResult(), true)
	if err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	for _, key := range []string{
		"score", "pnl", "sharpe", "max_drawdown", "turnover", "trade_count",
		"fees_paid", "score_components", "hodl", "initial_balances",
		"final_balances", "initial_prices", "final_prices", "equity_curve",
	} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("JSON output missing %q", key)
		}
	}

	if got := decoded["score"].(float64); got != 1.25 {
		t.Errorf("score = %v, want 1.25", got)
	}
	if curve := decoded["equity_curve"].([]any); len(curve) != 3 {
		t.Errorf("equity curve length = %d, want 3", len(curve))
	}

	// Without the curve, the key is omitted.
	out, _ = RenderJSON(sampleResult(), false)
	if strings.Contains(string(out), "equity_curve") {
		t.Error("equity_curve present despite includeCurve=false")
	}
}

func TestRenderJSONNaNSharpe(t *testing.T) {
	res := sampleResult()
	res.Sharpe = math.NaN()
	res.Score = math.NaN()
	res.ScoreComponents.SharpeContribution = math.NaN()

	out, err := RenderJSON(res, false)
	if err != nil {
		t.Fatalf("RenderJSON with NaN: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["sharpe"] != nil {
		t.Errorf("sharpe = %v, want null", decoded["sharpe"])
	}
	if decoded["score"] != nil {
		t.Errorf("score = %v, want null", decoded["score"])
	}
}

func TestSummary(t *testing.T) {
	s := Summary(sampleResult())
	for _, want := range []string{"score:", "sharpe:", "turnover:", "token_1/fiat", "fiat"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary missing %q:\n%s", want, s)
		}
	}
	// token_2/fiat was never priced; it renders as "-".
	if !strings.Contains(s, "-") {
		t.Errorf("summary should mark unpriced pairs:\n%s", s)
	}
}

func TestFormatTurnover(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{2_500_000_000, "2.5B"},
		{1_500_000, "1.5M"},
		{12_345, "12.3K"},
		{100.02, "100.02"},
	}
	for _, tc := range cases {
		if got := FormatTurnover(tc.in); got != tc.want {
			t.Errorf("FormatTurnover(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{5.25, "+5.2%"},
		{-12.5, "-12.5%"},
		{150, "+150%"},
		{0, "+0.0%"},
	}
	for _, tc := range cases {
		if got := FormatPercent(tc.in); got != tc.want {
			t.Errorf("FormatPercent(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatMetric(t *testing.T) {
	if got := FormatMetric(math.NaN()); got != "n/a" {
		t.Errorf("FormatMetric(NaN) = %q, want n/a", got)
	}
	if got := FormatMetric(1.23456); got != "1.2346" {
		t.Errorf("FormatMetric = %q", got)
	}
}

func TestFormatInt(t *testing.T) {
	cases := []struct {
		in   int
		want string
	}{
		{7, "7"},
		{1234, "1,234"},
		{1234567, "1,234,567"},
	}
	for _, tc := range cases {
		if got := FormatInt(tc.in); got != tc.want {
			t.Errorf("FormatInt(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
