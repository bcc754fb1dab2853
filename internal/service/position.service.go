package service

import (
	"sort"

	"levsim/internal/domain"
)

// Leg is one supply (long) or borrow (short) position inside a single
// simulation run. A leg is owned exclusively by its run and mutated in place
// as interest compounds.
type Leg struct {
	Symbol               string
	Units                float64
	Prices               domain.PriceSeries
	Rates                domain.RateSeries
	StakingAPR           float64
	LiquidationThreshold float64
	Short                bool

	// AllocationFraction is the raw percentage divided by 100, used later to
	// weight this leg in portfolio risk aggregation.
	AllocationFraction float64

	prevUnits float64
	prevPrice float64
	Returns   []float64
}

// BuildLegs converts percentage allocations plus leverage and swap-fee
// assumptions into initial per-asset unit sizes. The swap fee applies only to
// the looped portion of the position, not the initial unlevered capital:
//
//	leverageAfterFees = (leverage - 1) * (1 - swapFee) + 1
//
// Initial prices are the first element of each asset's series. Symbols are
// processed in sorted order so float accumulation downstream is deterministic.
func BuildLegs(key domain.SimulationKey, data domain.MarketData) (longs []*Leg, shorts []*Leg, err error) {
	leverageAfterFees := (key.Leverage-1)*(1-key.SwapFee) + 1

	symbols := make([]string, 0, len(key.Allocations))
	for symbol := range key.Allocations {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	for _, symbol := range symbols {
		allocation := key.Allocations[symbol]
		if allocation.SupplyPct <= 0 && allocation.BorrowPct <= 0 {
			continue
		}

		reserve, ok := key.Reserves[symbol]
		if !ok {
			return nil, nil, AssetNotFoundError{Symbol: symbol}
		}

		prices := data.Prices[symbol]
		rates := data.Rates[symbol]
		if len(prices) == 0 {
			return nil, nil, StepError{Index: 0, Symbol: symbol, Reason: "empty price series"}
		}
		initialPrice := prices[0].Price

		if allocation.SupplyPct > 0 {
			units := key.InitialInvestment * leverageAfterFees * allocation.SupplyPct / 100 / initialPrice
			longs = append(longs, &Leg{
				Symbol:               symbol,
				Units:                units,
				Prices:               prices,
				Rates:                rates,
				StakingAPR:           allocation.StakingAPR,
				LiquidationThreshold: reserve.LiquidationThreshold,
				AllocationFraction:   allocation.SupplyPct / 100,
				prevUnits:            units,
				prevPrice:            initialPrice,
			})
		}

		if allocation.BorrowPct > 0 {
			units := key.InitialInvestment * (key.Leverage - 1) * allocation.BorrowPct / 100 / initialPrice
			shorts = append(shorts, &Leg{
				Symbol:             symbol,
				Units:              units,
				Prices:             prices,
				Rates:              rates,
				Short:              true,
				AllocationFraction: allocation.BorrowPct / 100,
				prevUnits:          units,
				prevPrice:          initialPrice,
			})
		}
	}

	return longs, shorts, nil
}
