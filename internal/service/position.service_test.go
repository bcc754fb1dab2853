package service

import (
	"errors"
	"testing"

	"levsim/internal/domain"

	"github.com/stretchr/testify/require"
)

func sizingKey() domain.SimulationKey {
	return domain.SimulationKey{
		MarketKey:         "ethereumV3",
		InitialInvestment: 1000,
		MaxLTV:            0.8,
		Leverage:          3,
		SwapFee:           0.003,
		Allocations: domain.AllocationMap{
			"WETH": {SupplyPct: 100},
			"USDC": {BorrowPct: 100},
		},
		Reserves: domain.ReserveMap{
			"WETH": {Symbol: "WETH", LiquidationThreshold: 0.825},
			"USDC": {Symbol: "USDC", LiquidationThreshold: 0.85},
		},
		FromDate: 1672531200,
	}
}

func sizingData() domain.MarketData {
	return domain.MarketData{
		Prices: map[string]domain.PriceSeries{
			"WETH": {{Timestamp: 1672531200, Price: 2000}},
			"USDC": {{Timestamp: 1672531200, Price: 1}},
		},
		Rates: map[string]domain.RateSeries{
			"WETH": {{Timestamp: 1672531200, SupplyRate: 0.01}},
			"USDC": {{Timestamp: 1672531200, BorrowRate: 0.03}},
		},
	}
}

func Test_BuildLegs(t *testing.T) {
	t.Run("swap fee applies to looped capital only", func(t *testing.T) {
		longs, shorts, err := BuildLegs(sizingKey(), sizingData())
		require.NoError(t, err)
		require.Len(t, longs, 1)
		require.Len(t, shorts, 1)

		// leverageAfterFees = (3-1)*(1-0.003)+1 = 2.994
		require.InDelta(t, 1000*2.994/2000, longs[0].Units, 1e-12)
		require.Equal(t, "WETH", longs[0].Symbol)
		require.Equal(t, 0.825, longs[0].LiquidationThreshold)
		require.Equal(t, 1.0, longs[0].AllocationFraction)

		// borrow sizing never pays the swap fee
		require.InDelta(t, 1000*2/1, shorts[0].Units, 1e-12)
		require.True(t, shorts[0].Short)
	})

	t.Run("partial allocations divide by 100 not by their sum", func(t *testing.T) {
		key := sizingKey()
		key.Allocations = domain.AllocationMap{
			"WETH": {SupplyPct: 60},
			"USDC": {BorrowPct: 40},
		}

		longs, shorts, err := BuildLegs(key, sizingData())
		require.NoError(t, err)
		require.InDelta(t, 1000*2.994*0.6/2000, longs[0].Units, 1e-12)
		require.InDelta(t, 1000*2*0.4/1, shorts[0].Units, 1e-12)
	})

	t.Run("zero allocations are skipped", func(t *testing.T) {
		key := sizingKey()
		key.Allocations["USDC"] = domain.AssetAllocation{}

		longs, shorts, err := BuildLegs(key, sizingData())
		require.NoError(t, err)
		require.Len(t, longs, 1)
		require.Empty(t, shorts)
	})

	t.Run("legs come out in sorted symbol order", func(t *testing.T) {
		key := sizingKey()
		key.Allocations = domain.AllocationMap{
			"WETH": {SupplyPct: 50},
			"USDC": {SupplyPct: 50},
		}

		longs, _, err := BuildLegs(key, sizingData())
		require.NoError(t, err)
		require.Len(t, longs, 2)
		require.Equal(t, "USDC", longs[0].Symbol)
		require.Equal(t, "WETH", longs[1].Symbol)
	})

	t.Run("allocated symbol without a reserve", func(t *testing.T) {
		key := sizingKey()
		delete(key.Reserves, "WETH")

		_, _, err := BuildLegs(key, sizingData())
		var notFound AssetNotFoundError
		require.True(t, errors.As(err, &notFound))
		require.Equal(t, "WETH", notFound.Symbol)
	})

	t.Run("empty price series", func(t *testing.T) {
		data := sizingData()
		data.Prices["WETH"] = domain.PriceSeries{}

		_, _, err := BuildLegs(sizingKey(), data)
		var stepErr StepError
		require.True(t, errors.As(err, &stepErr))
		require.Equal(t, "WETH", stepErr.Symbol)
	})
}
