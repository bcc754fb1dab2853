package repository

import (
	"context"
	"fmt"
	"time"

	"levsim/internal/domain"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
)

// binancePriceRepository serves daily price history from Binance spot klines.
// Useful when a symbol is thinly covered on CoinGecko but actively traded on
// Binance.
type binancePriceRepository struct {
	client *binance.Client
	quote  string
}

func NewBinancePriceRepository(quote string) PriceHistoryRepository {
	// public market data needs no credentials
	return &binancePriceRepository{
		client: binance.NewClient("", ""),
		quote:  quote,
	}
}

func (r *binancePriceRepository) List(ctx context.Context, symbol string, from time.Time) (domain.PriceSeries, error) {
	klines, err := r.client.NewKlinesService().
		Symbol(symbol + r.quote).
		Interval("1d").
		StartTime(from.UnixMilli()).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list binance klines for %s: %w", symbol, err)
	}

	series := domain.PriceSeries{}
	for _, kline := range klines {
		closePrice, err := decimal.NewFromString(kline.Close)
		if err != nil {
			return nil, fmt.Errorf("failed to parse close price %q for %s: %w", kline.Close, symbol, err)
		}
		series = append(series, domain.PricePoint{
			Timestamp: kline.OpenTime / 1000,
			Price:     closePrice.InexactFloat64(),
		})
	}
	return series, nil
}
