package engine

import (
	"math"
)

// Fixed policy constants for metric computation and scoring. The weights and
// the turnover normalizer are not configurable per run.
const (
	// MinutesPerYear annualizes per-minute returns.
	MinutesPerYear = 365 * 24 * 60

	// Epsilon keeps the sharpe denominator non-zero on a flat equity curve.
	Epsilon = 1e-9

	// DefaultRiskFree is the annual risk-free rate assumed when none is
	// configured.
	DefaultRiskFree = 0.0

	scoreSharpeWeight      = 0.7
	scoreDrawdownWeight    = 0.2
	scoreTurnoverWeight    = 0.1
	scoreTurnoverNormalize = 1e6
)

// Returns computes the period-over-period returns of an equity sequence:
// (equity[t+1] − equity[t]) / equity[t]. It returns nil when the sequence has
// fewer than two samples.
func Returns(equity []float64) []float64 {
	if len(equity) < 2 {
		return nil
	}
	rets := make([]float64, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		rets[i-1] = (equity[i] - equity[i-1]) / equity[i-1]
	}
	return rets
}

// SharpeRatio computes the annualized risk-adjusted return of per-minute
// returns against an annual risk-free rate:
//
//	sqrt(MinutesPerYear) * mean(excess) / (stddev(excess) + Epsilon)
//
// where excess subtracts the per-minute risk-free rate and stddev is the
// unbiased sample deviation. With fewer than two returns the sample deviation
// is undefined and NaN is returned as the documented sentinel.
func SharpeRatio(returns []float64, riskFree float64) float64 {
	if len(returns) < 2 {
		return math.NaN()
	}

	rfPerMinute := riskFree / MinutesPerYear
	var sum float64
	for _, r := range returns {
		sum += r - rfPerMinute
	}
	mean := sum / float64(len(returns))

	var sq float64
	for _, r := range returns {
		d := (r - rfPerMinute) - mean
		sq += d * d
	}
	stddev := math.Sqrt(sq / float64(len(returns)-1))

	return math.Sqrt(MinutesPerYear) * mean / (stddev + Epsilon)
}

// MaxDrawdown returns the largest peak-to-trough relative decline of an
// equity sequence as a value in (−1, 0]. Zero means equity never fell below
// a prior peak.
func MaxDrawdown(equity []float64) float64 {
	var peak, maxDD float64
	for _, v := range equity {
		if v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		if dd := (v - peak) / peak; dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// ScoreComponents breaks the composite score into its weighted parts.
type ScoreComponents struct {
	SharpeContribution float64
	DrawdownPenalty    float64
	TurnoverPenalty    float64
}

// ComputeScore combines sharpe, max drawdown, and turnover into the single
// comparable score: 0.7·sharpe − 0.2·|maxDD| − 0.1·(turnover/1e6).
func ComputeScore(sharpe, maxDrawdown, turnover float64) (float64, ScoreComponents) {
	c := ScoreComponents{
		SharpeContribution: scoreSharpeWeight * sharpe,
		DrawdownPenalty:    scoreDrawdownWeight * math.Abs(maxDrawdown),
		TurnoverPenalty:    scoreTurnoverWeight * (turnover / scoreTurnoverNormalize),
	}
	return c.SharpeContribution - c.DrawdownPenalty - c.TurnoverPenalty, c
}
