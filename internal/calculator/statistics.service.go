package calculator

import (
	"math"

	"github.com/montanaflynn/stats"
)

// PositionStats is one weighted leg of the portfolio for risk aggregation.
// Returns must be index-aligned across every leg in the same portfolio.
type PositionStats struct {
	Weight  float64
	StdDev  float64
	Returns []float64
}

// AnnualizedStdDev computes the Bessel-corrected sample standard deviation of
// a daily return series, annualized by sqrt(365). Fewer than two samples
// cannot produce a sample deviation, so the result is NaN.
func AnnualizedStdDev(returns []float64) float64 {
	if len(returns) < 2 {
		return math.NaN()
	}
	stdev, err := stats.StandardDeviationSample(returns)
	if err != nil {
		return math.NaN()
	}
	return stdev * math.Sqrt(365)
}

// PortfolioStdDev aggregates per-leg deviations into
//
//	sum_i(w_i^2 * o_i^2) + 2 * sum_{i<j}(w_i * w_j * o_i * o_j * corr(i,j))
//
// where corr is the Pearson correlation of the two legs' daily return series.
// A single-leg portfolio reduces to w^2 * o^2 with no correlation term.
func PortfolioStdDev(positions []PositionStats) float64 {
	result := 0.0
	for i, iPos := range positions {
		result += iPos.Weight * iPos.Weight * iPos.StdDev * iPos.StdDev

		for j := i + 1; j < len(positions); j++ {
			jPos := positions[j]

			correlation, err := stats.Pearson(iPos.Returns, jPos.Returns)
			if err != nil {
				correlation = math.NaN()
			}

			result += 2 * correlation * iPos.Weight * jPos.Weight * iPos.StdDev * jPos.StdDev
		}
	}
	return result
}

// SharpeRatio is the excess return over the risk-free rate per unit of
// volatility. Equal return and risk-free rate is exactly zero no matter the
// deviation; a zero deviation with differing returns yields +-Inf, which the
// caller is expected to surface as-is.
func SharpeRatio(expectedReturn, riskFreeRate, stdDev float64) float64 {
	if expectedReturn == riskFreeRate {
		return 0
	}
	return (expectedReturn - riskFreeRate) / stdDev
}
