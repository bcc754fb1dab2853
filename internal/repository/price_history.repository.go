package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"levsim/internal/domain"
	"levsim/internal/util"
	coingecko_client "levsim/pkg/coingecko"
)

// PriceHistoryRepository supplies the daily price series for one asset symbol
// from the given start date to now, oldest first.
type PriceHistoryRepository interface {
	List(ctx context.Context, symbol string, from time.Time) (domain.PriceSeries, error)
}

type coingeckoPriceRepository struct {
	client        *coingecko_client.Client
	quoteCurrency string

	mu        sync.Mutex
	idsLoaded bool
	idsBySym  map[string]string
}

func NewCoinGeckoPriceRepository(client *coingecko_client.Client, quoteCurrency string) PriceHistoryRepository {
	return &coingeckoPriceRepository{
		client:        client,
		quoteCurrency: quoteCurrency,
		idsBySym:      map[string]string{},
	}
}

// resolveCoinID maps an asset symbol to a CoinGecko coin id using the
// (lazily loaded) full coin listing. The first listing match per symbol wins,
// which is how the upstream UI resolves symbols too.
func (r *coingeckoPriceRepository) resolveCoinID(ctx context.Context, symbol string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.idsLoaded {
		coins, err := r.client.ListCoins(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to load coin listing: %w", err)
		}
		for _, coin := range coins {
			key := strings.ToLower(coin.Symbol)
			if _, ok := r.idsBySym[key]; !ok {
				r.idsBySym[key] = coin.ID
			}
		}
		r.idsLoaded = true
	}

	id, ok := r.idsBySym[strings.ToLower(symbol)]
	if !ok {
		return "", fmt.Errorf("no coingecko listing for symbol %s", symbol)
	}
	return id, nil
}

func (r *coingeckoPriceRepository) List(ctx context.Context, symbol string, from time.Time) (domain.PriceSeries, error) {
	coinID, err := r.resolveCoinID(ctx, symbol)
	if err != nil {
		return nil, err
	}

	days := util.DaysBetween(from, time.Now())
	if days < 1 {
		days = 1
	}

	series, err := r.client.GetMarketChart(ctx, coinID, r.quoteCurrency, days)
	if err != nil {
		return nil, fmt.Errorf("failed to list price history for %s: %w", symbol, err)
	}
	return series, nil
}
