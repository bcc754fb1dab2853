package repository

import (
	"context"
	"fmt"

	"levsim/internal/domain"
	aavegateway_client "levsim/pkg/aavegateway"
)

// RateHistoryRepository supplies the daily supply/borrow rate series for one
// reserve starting at the given unix timestamp.
type RateHistoryRepository interface {
	List(ctx context.Context, marketKey string, assetAddress string, fromUnix int64) (domain.RateSeries, error)
}

type rateHistoryRepository struct {
	client *aavegateway_client.Client
}

func NewRateHistoryRepository(client *aavegateway_client.Client) RateHistoryRepository {
	return &rateHistoryRepository{client: client}
}

func (r *rateHistoryRepository) List(ctx context.Context, marketKey string, assetAddress string, fromUnix int64) (domain.RateSeries, error) {
	market, ok := domain.V3Markets[marketKey]
	if !ok {
		return nil, fmt.Errorf("unknown market %q", marketKey)
	}

	series, err := r.client.GetRateHistory(ctx, market.ReserveID(assetAddress), fromUnix)
	if err != nil {
		return nil, fmt.Errorf("failed to list rate history for %s on %s: %w", assetAddress, marketKey, err)
	}
	return series, nil
}
