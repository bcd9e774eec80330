package scheduler

import (
	"context"

	"github.com/erp/ledger/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Job names
const (
	JobAlertSweep = "alert-sweep"
	JobRetryDrain = "alert-retry-drain"
)

// AlertSweeper is the part of the alert engine the jobs drive
type AlertSweeper interface {
	SweepAll(ctx context.Context) (int, error)
	DrainRetries(ctx context.Context, limit int) (int, error)
}

// AlertJobs builds the periodic alert sweep and the retry queue drain
func AlertJobs(cfg config.SchedulerConfig, engine AlertSweeper, logger *zap.Logger) []Job {
	if logger == nil {
		logger = zap.NewNop()
	}
	return []Job{
		{
			Name:     JobAlertSweep,
			Interval: cfg.AlertSweepInterval,
			Run: func(ctx context.Context) error {
				scanned, err := engine.SweepAll(ctx)
				if err != nil {
					return err
				}
				logger.Info("Alert sweep finished", zap.Int("tenants_scanned", scanned))
				return nil
			},
		},
		{
			Name:     JobRetryDrain,
			Interval: cfg.RetryDrainInterval,
			Run: func(ctx context.Context) error {
				drained, err := engine.DrainRetries(ctx, cfg.RetryDrainBatch)
				if err != nil {
					return err
				}
				if drained > 0 {
					logger.Info("Alert scan retries replayed", zap.Int("drained", drained))
				}
				return nil
			},
		},
	}
}

// RegisterAll registers jobs on s, stopping at the first error
func RegisterAll(s *Scheduler, jobs ...Job) error {
	for _, job := range jobs {
		if err := s.Register(job); err != nil {
			return err
		}
	}
	return nil
}
