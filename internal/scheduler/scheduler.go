package scheduler

import (
	"context"

	"levsim/internal/repository"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler refreshes the cached reserve snapshots on a cron cadence so
// simulation requests read fresh metadata without waiting on the gateway.
type Scheduler struct {
	cron     *cron.Cron
	reserves repository.ReserveRepository
	log      *zap.SugaredLogger
}

func New(reserves repository.ReserveRepository, log *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		reserves: reserves,
		log:      log,
	}
}

// Start registers the refresh job for the given markets and starts the cron
// loop. Refresh failures are logged and retried on the next tick.
func (s *Scheduler) Start(cronSpec string, marketKeys []string) error {
	_, err := s.cron.AddFunc(cronSpec, func() {
		ctx := context.Background()
		for _, marketKey := range marketKeys {
			if err := s.reserves.Refresh(ctx, marketKey); err != nil {
				s.log.Warnw("reserve refresh failed", "market", marketKey, "error", err)
				continue
			}
			s.log.Infow("reserve snapshot refreshed", "market", marketKey)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}
