package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"levsim/internal/domain"
	"levsim/internal/repository"
)

// SimulationRequest is a user-initiated run request before any history has
// been fetched.
type SimulationRequest struct {
	MarketKey         string
	InitialInvestment float64
	MaxLTV            float64
	Leverage          float64
	Allocations       domain.AllocationMap
	FromDate          time.Time
	RiskFreeRate      float64
	SwapFee           float64
}

// RequestService turns a run request into a simulation key plus the aligned
// market data the engine needs, pulling reserves and history from the
// configured providers.
type RequestService struct {
	ReserveRepository      repository.ReserveRepository
	PriceHistoryRepository repository.PriceHistoryRepository
	RateHistoryRepository  repository.RateHistoryRepository
}

// Assemble snapshots the market's reserves into the key and fetches one price
// and one rate series per allocated symbol. All series are truncated to the
// shortest length so every series carries the same number of daily samples;
// the engine re-checks that invariant before running.
func (s RequestService) Assemble(ctx context.Context, request SimulationRequest) (domain.SimulationKey, domain.MarketData, error) {
	key := domain.SimulationKey{
		MarketKey:         request.MarketKey,
		InitialInvestment: request.InitialInvestment,
		MaxLTV:            request.MaxLTV,
		Leverage:          request.Leverage,
		Allocations:       request.Allocations,
		Reserves:          domain.ReserveMap{},
		FromDate:          request.FromDate.Unix(),
		RiskFreeRate:      request.RiskFreeRate,
		SwapFee:           request.SwapFee,
	}
	data := domain.MarketData{
		Prices: map[string]domain.PriceSeries{},
		Rates:  map[string]domain.RateSeries{},
	}

	reserves, err := s.ReserveRepository.Get(ctx, request.MarketKey)
	if err != nil {
		return key, data, fmt.Errorf("failed to load reserves for %s: %w", request.MarketKey, err)
	}

	symbols := make([]string, 0, len(request.Allocations))
	for symbol := range request.Allocations {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	for _, symbol := range symbols {
		reserve, ok := reserves[symbol]
		if !ok {
			return key, data, ValidationError{Reason: fmt.Sprintf("allocated symbol %s has no reserve entry", symbol)}
		}
		key.Reserves[symbol] = reserve

		prices, err := s.PriceHistoryRepository.List(ctx, symbol, request.FromDate)
		if err != nil {
			return key, data, fmt.Errorf("failed to load price history for %s: %w", symbol, err)
		}
		rates, err := s.RateHistoryRepository.List(ctx, request.MarketKey, reserve.UnderlyingAsset, request.FromDate.Unix())
		if err != nil {
			return key, data, fmt.Errorf("failed to load rate history for %s: %w", symbol, err)
		}

		data.Prices[symbol] = prices
		data.Rates[symbol] = rates
	}

	alignSeries(&data)
	return key, data, nil
}

// alignSeries truncates every series to the shortest one so index i always
// refers to the same calendar day across assets. Providers mostly agree on
// length; the tail difference is the partial current day.
func alignSeries(data *domain.MarketData) {
	shortest := -1
	for _, series := range data.Prices {
		if shortest == -1 || len(series) < shortest {
			shortest = len(series)
		}
	}
	for _, series := range data.Rates {
		if shortest == -1 || len(series) < shortest {
			shortest = len(series)
		}
	}
	if shortest <= 0 {
		return
	}

	for symbol, series := range data.Prices {
		data.Prices[symbol] = series[:shortest]
	}
	for symbol, series := range data.Rates {
		data.Rates[symbol] = series[:shortest]
	}
}
