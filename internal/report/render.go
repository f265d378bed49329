package report

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"tradebench/internal/domain"
	"tradebench/internal/engine"
)

// jsonResult mirrors engine.Result with a stable field order and JSON-safe
// numbers: the NaN sharpe sentinel becomes null.
type jsonResult struct {
	Score           *float64           `json:"score"`
	PnL             jsonPnL            `json:"pnl"`
	Sharpe          *float64           `json:"sharpe"`
	MaxDrawdown     float64            `json:"max_drawdown"`
	Turnover        float64            `json:"turnover"`
	TradeCount      int                `json:"trade_count"`
	FeesPaid        float64            `json:"fees_paid"`
	ScoreComponents jsonComponents     `json:"score_components"`
	HODL            jsonHODL           `json:"hodl"`
	InitialBalances map[string]float64 `json:"initial_balances"`
	FinalBalances   map[string]float64 `json:"final_balances"`
	InitialPrices   map[string]float64 `json:"initial_prices"`
	FinalPrices     map[string]float64 `json:"final_prices"`
	EquityCurve     []float64          `json:"equity_curve,omitempty"`
}

type jsonPnL struct {
	Absolute      float64 `json:"absolute"`
	Percentage    float64 `json:"percentage"`
	InitialEquity float64 `json:"initial_equity"`
	FinalEquity   float64 `json:"final_equity"`
}

type jsonComponents struct {
	SharpeContribution *float64 `json:"sharpe_contribution"`
	DrawdownPenalty    float64  `json:"drawdown_penalty"`
	TurnoverPenalty    float64  `json:"turnover_penalty"`
}

type jsonHODL struct {
	FinalValue float64 `json:"final_value"`
	Absolute   float64 `json:"absolute"`
	Percentage float64 `json:"percentage"`
}

// nullableFloat maps NaN to nil so the value encodes as JSON null.
func nullableFloat(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func balancesToMap(b domain.Balances) map[string]float64 {
	out := make(map[string]float64, len(b))
	for asset, qty := range b {
		out[string(asset)] = qty
	}
	return out
}

// RenderJSON encodes res as indented JSON. includeCurve controls whether the
// full equity sequence is embedded, which can be large for long runs.
func RenderJSON(res *engine.Result, includeCurve bool) ([]byte, error) {
	out := jsonResult{
		Score: nullableFloat(res.Score),
		PnL: jsonPnL{
			Absolute:      res.PnL.Absolute,
			Percentage:    res.PnL.Percentage,
			InitialEquity: res.PnL.InitialEquity,
			FinalEquity:   res.PnL.FinalEquity,
		},
		Sharpe:      nullableFloat(res.Sharpe),
		MaxDrawdown: res.MaxDrawdown,
		Turnover:    res.Turnover,
		TradeCount:  res.TradeCount,
		FeesPaid:    res.FeesPaid,
		ScoreComponents: jsonComponents{
			SharpeContribution: nullableFloat(res.ScoreComponents.SharpeContribution),
			DrawdownPenalty:    res.ScoreComponents.DrawdownPenalty,
			TurnoverPenalty:    res.ScoreComponents.TurnoverPenalty,
		},
		HODL: jsonHODL{
			FinalValue: res.HODL.FinalValue,
			Absolute:   res.HODL.Absolute,
			Percentage: res.HODL.Percentage,
		},
		InitialBalances: balancesToMap(res.InitialBalances),
		FinalBalances:   balancesToMap(res.FinalBalances),
		InitialPrices:   res.InitialPrices,
		FinalPrices:     res.FinalPrices,
	}
	if includeCurve {
		out.EquityCurve = res.EquityCurve
	}
	return json.MarshalIndent(out, "", "  ")
}

// Summary renders a short human-readable report of the run.
func Summary(res *engine.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "score:        %s\n", FormatMetric(res.Score))
	fmt.Fprintf(&b, "sharpe:       %s\n", FormatMetric(res.Sharpe))
	fmt.Fprintf(&b, "max drawdown: %s\n", FormatPercent(res.MaxDrawdown*100))
	fmt.Fprintf(&b, "turnover:     %s\n", FormatTurnover(res.Turnover))
	fmt.Fprintf(&b, "trades:       %s (fees %.4f)\n", FormatInt(res.TradeCount), res.FeesPaid)
	fmt.Fprintf(&b, "pnl:          %.2f (%s), equity %.2f -> %.2f\n",
		res.PnL.Absolute, FormatPercent(res.PnL.Percentage),
		res.PnL.InitialEquity, res.PnL.FinalEquity)
	fmt.Fprintf(&b, "hodl:         %.2f (%s)\n",
		res.HODL.FinalValue, FormatPercent(res.HODL.Percentage))

	fmt.Fprintf(&b, "prices:\n")
	for _, pair := range domain.KnownPairs() {
		first, firstOK := res.InitialPrices[pair.String()]
		last, lastOK := res.FinalPrices[pair.String()]
		fmt.Fprintf(&b, "  %-15s %s -> %s\n", pair.String(),
			FormatPrice(first, firstOK), FormatPrice(last, lastOK))
	}

	fmt.Fprintf(&b, "balances:\n")
	for _, asset := range domain.KnownAssets() {
		fmt.Fprintf(&b, "  %-8s %.6f -> %.6f\n", string(asset),
			res.InitialBalances[asset], res.FinalBalances[asset])
	}

	return b.String()
}
