package repository

import (
	"context"
	"fmt"
	"time"

	"levsim/internal/domain"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
)

// yahooPriceRepository serves daily price history from Yahoo Finance charts,
// which quote crypto pairs like BTC-USD. Last-resort source for assets not
// covered by the other providers.
type yahooPriceRepository struct {
	pairSuffix string
}

func NewYahooPriceRepository(pairSuffix string) PriceHistoryRepository {
	return &yahooPriceRepository{pairSuffix: pairSuffix}
}

func (r *yahooPriceRepository) List(ctx context.Context, symbol string, from time.Time) (domain.PriceSeries, error) {
	now := time.Now().UTC()
	params := &chart.Params{
		Symbol:   symbol + r.pairSuffix,
		Start:    datetime.New(&from),
		End:      datetime.New(&now),
		Interval: datetime.OneDay,
	}
	iter := chart.Get(params)

	series := domain.PriceSeries{}
	for iter.Next() {
		series = append(series, domain.PricePoint{
			Timestamp: int64(iter.Bar().Timestamp),
			Price:     iter.Bar().Close.InexactFloat64(),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to get prices for %s: %w", symbol, err)
	}

	return series, nil
}
