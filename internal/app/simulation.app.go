package app

import (
	"fmt"

	"levsim/internal/calculator"
	"levsim/internal/domain"
	"levsim/internal/service"
)

// ValidationError is a malformed or economically invalid simulation request.
// It is raised before any simulation work begins and never retried.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid simulation request: %s", e.Reason)
}

// SimulationService runs one leveraged-position backtest end to end. Simulate
// is pure and deterministic: identical keys and market data always produce
// identical results, with no I/O and no hidden state.
type SimulationService struct{}

func NewSimulationService() *SimulationService {
	return &SimulationService{}
}

func (s *SimulationService) Simulate(key domain.SimulationKey, data domain.MarketData) (*domain.SimulationResult, error) {
	if err := validate(key, data); err != nil {
		return nil, err
	}

	longs, shorts, err := service.BuildLegs(key, data)
	if err != nil {
		return nil, err
	}

	steps := seriesLength(key, data)
	stepper := service.NewStepper(longs, shorts, steps)
	state, err := stepper.Run()
	if err != nil {
		return nil, err
	}

	result := &domain.SimulationResult{
		Liquidated:     state == service.StateLiquidated,
		FinalTimestamp: stepper.FinalTimestamp(),
		Snapshots:      stepper.Snapshots(),
	}
	if result.Liquidated {
		return result, nil
	}

	sharpe := computeSharpe(key, longs, shorts, result.Snapshots)
	result.SharpeRatio = &sharpe
	return result, nil
}

func validate(key domain.SimulationKey, data domain.MarketData) error {
	if key.InitialInvestment <= 0 {
		return ValidationError{Reason: fmt.Sprintf("initialInvestment must be positive, got %v", key.InitialInvestment)}
	}
	if _, ok := domain.V3Markets[key.MarketKey]; !ok {
		return ValidationError{Reason: fmt.Sprintf("unknown market %q", key.MarketKey)}
	}
	if key.MaxLTV <= 0 {
		return ValidationError{Reason: fmt.Sprintf("maxLtv must be positive, got %v", key.MaxLTV)}
	}
	if key.Leverage <= 0 {
		return ValidationError{Reason: fmt.Sprintf("leverage must be positive, got %v", key.Leverage)}
	}
	if len(key.Allocations) == 0 {
		return ValidationError{Reason: "no allocations specified"}
	}
	for symbol := range key.Allocations {
		if _, ok := key.Reserves[symbol]; !ok {
			return ValidationError{Reason: fmt.Sprintf("allocated symbol %s has no reserve entry", symbol)}
		}
	}
	if key.FromDate <= 0 {
		return ValidationError{Reason: fmt.Sprintf("invalid start date %d", key.FromDate)}
	}
	return validateAlignment(key, data)
}

// validateAlignment enforces the positional-alignment invariant the stepper
// assumes: every allocated symbol's price and rate series must carry the same
// non-zero number of daily samples. Silently mismatched indices would corrupt
// results without any observable symptom, so misalignment is rejected up
// front.
func validateAlignment(key domain.SimulationKey, data domain.MarketData) error {
	expected := -1
	for symbol := range key.Allocations {
		prices, ok := data.Prices[symbol]
		if !ok || len(prices) == 0 {
			return ValidationError{Reason: fmt.Sprintf("no price history for %s", symbol)}
		}
		rates, ok := data.Rates[symbol]
		if !ok || len(rates) == 0 {
			return ValidationError{Reason: fmt.Sprintf("no rate history for %s", symbol)}
		}
		if expected == -1 {
			expected = len(prices)
		}
		if len(prices) != expected || len(rates) != expected {
			return ValidationError{
				Reason: fmt.Sprintf("misaligned series for %s: %d prices, %d rates, expected %d samples",
					symbol, len(prices), len(rates), expected),
			}
		}
	}
	return nil
}

func seriesLength(key domain.SimulationKey, data domain.MarketData) int {
	for symbol := range key.Allocations {
		if prices, ok := data.Prices[symbol]; ok {
			return len(prices)
		}
	}
	return 0
}

// computeSharpe aggregates per-leg volatility into a portfolio deviation and
// scores the realized return against the risk-free rate. Long legs share the
// leverage/(2*leverage-1) slice of total exposure and short legs the
// (leverage-1)/(2*leverage-1) slice, each split by its allocation fraction.
func computeSharpe(key domain.SimulationKey, longs, shorts []*service.Leg, snapshots []domain.Snapshot) float64 {
	numDays := len(snapshots)
	final := snapshots[numDays-1]

	longShare := key.Leverage / (2*key.Leverage - 1)
	shortShare := (key.Leverage - 1) / (2*key.Leverage - 1)

	positions := []calculator.PositionStats{}
	for _, leg := range longs {
		positions = append(positions, calculator.PositionStats{
			Weight:  leg.AllocationFraction * longShare,
			StdDev:  calculator.AnnualizedStdDev(leg.Returns),
			Returns: leg.Returns,
		})
	}
	for _, leg := range shorts {
		positions = append(positions, calculator.PositionStats{
			Weight:  leg.AllocationFraction * shortShare,
			StdDev:  calculator.AnnualizedStdDev(leg.Returns),
			Returns: leg.Returns,
		})
	}

	portfolioStdDev := calculator.PortfolioStdDev(positions)
	expectedReturn := ((final.LongTotalUSD-final.ShortTotalUSD)/key.InitialInvestment - 1) / float64(numDays) * 365

	return calculator.SharpeRatio(expectedReturn, key.RiskFreeRate, portfolioStdDev)
}
