package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_SharpeRatio(t *testing.T) {
	t.Run("same as risk free rate is zero", func(t *testing.T) {
		require.Equal(t, 0.0, SharpeRatio(0, 0, 1))
		require.Equal(t, 0.0, SharpeRatio(5, 5, 1))
		// zero deviation does not matter when returns match
		require.Equal(t, 0.0, SharpeRatio(0.05, 0.05, 0))
	})

	t.Run("negative when return below risk free rate", func(t *testing.T) {
		require.InDelta(t, -0.2265, SharpeRatio(0.0365, 0.05, 0.0596), 1e-4)
	})

	t.Run("positive when return above risk free rate", func(t *testing.T) {
		require.InDelta(t, 0.4446, SharpeRatio(0.0365, 0.01, 0.0596), 1e-4)
	})

	t.Run("zero deviation with differing returns is infinite", func(t *testing.T) {
		require.True(t, math.IsInf(SharpeRatio(0.05, 0.01, 0), 1))
		require.True(t, math.IsInf(SharpeRatio(0.01, 0.05, 0), -1))
	})
}

func Test_AnnualizedStdDev(t *testing.T) {
	t.Run("constant series has zero deviation", func(t *testing.T) {
		require.Equal(t, 0.0, AnnualizedStdDev([]float64{0.01, 0.01, 0.01, 0.01}))
	})

	t.Run("fewer than two samples is NaN", func(t *testing.T) {
		require.True(t, math.IsNaN(AnnualizedStdDev([]float64{})))
		require.True(t, math.IsNaN(AnnualizedStdDev([]float64{0.01})))
	})

	t.Run("sample deviation annualized by sqrt 365", func(t *testing.T) {
		// sample stddev of {0.01, 0.02, 0.03} is exactly 0.01
		require.InDelta(t, 0.01*math.Sqrt(365), AnnualizedStdDev([]float64{0.01, 0.02, 0.03}), 1e-12)
	})
}

func Test_PortfolioStdDev(t *testing.T) {
	t.Run("single position has no correlation term", func(t *testing.T) {
		got := PortfolioStdDev([]PositionStats{
			{Weight: 0.5, StdDev: 0.2, Returns: []float64{0.01, -0.02, 0.03}},
		})
		require.Equal(t, 0.5*0.5*0.2*0.2, got)
	})

	t.Run("perfectly correlated pair", func(t *testing.T) {
		returns := []float64{0.01, -0.02, 0.03, 0.005}
		got := PortfolioStdDev([]PositionStats{
			{Weight: 0.6, StdDev: 0.2, Returns: returns},
			{Weight: 0.4, StdDev: 0.1, Returns: returns},
		})
		// correlation 1 collapses to (w1*o1 + w2*o2)^2
		want := math.Pow(0.6*0.2+0.4*0.1, 2)
		require.InDelta(t, want, got, 1e-12)
	})

	t.Run("perfectly anti-correlated pair", func(t *testing.T) {
		a := []float64{0.01, -0.02, 0.03, 0.005}
		b := make([]float64, len(a))
		for i, r := range a {
			b[i] = -r
		}
		got := PortfolioStdDev([]PositionStats{
			{Weight: 0.5, StdDev: 0.2, Returns: a},
			{Weight: 0.5, StdDev: 0.2, Returns: b},
		})
		// correlation -1 cancels equal weights and deviations entirely
		require.InDelta(t, 0.0, got, 1e-12)
	})
}
