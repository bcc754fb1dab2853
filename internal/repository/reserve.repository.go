package repository

import (
	"context"
	"fmt"
	"sync"

	"levsim/internal/domain"
	aavegateway_client "levsim/pkg/aavegateway"
)

// ReserveRepository supplies per-market reserve metadata. Snapshots are
// cached in memory; the scheduler refreshes them periodically so a simulation
// request normally never waits on the gateway.
type ReserveRepository interface {
	Get(ctx context.Context, marketKey string) (domain.ReserveMap, error)
	Refresh(ctx context.Context, marketKey string) error
}

type reserveRepository struct {
	client *aavegateway_client.Client

	mu        sync.RWMutex
	snapshots map[string]domain.ReserveMap
}

func NewReserveRepository(client *aavegateway_client.Client) ReserveRepository {
	return &reserveRepository{
		client:    client,
		snapshots: map[string]domain.ReserveMap{},
	}
}

func (r *reserveRepository) Get(ctx context.Context, marketKey string) (domain.ReserveMap, error) {
	r.mu.RLock()
	snapshot, ok := r.snapshots[marketKey]
	r.mu.RUnlock()
	if ok {
		return snapshot, nil
	}

	if err := r.Refresh(ctx, marketKey); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshots[marketKey], nil
}

func (r *reserveRepository) Refresh(ctx context.Context, marketKey string) error {
	market, ok := domain.V3Markets[marketKey]
	if !ok {
		return fmt.Errorf("unknown market %q", marketKey)
	}

	reserves, err := r.client.GetReserves(ctx, market)
	if err != nil {
		return fmt.Errorf("failed to refresh reserves for %s: %w", marketKey, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[marketKey] = reserves
	return nil
}
