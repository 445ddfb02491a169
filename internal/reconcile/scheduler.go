package reconcile

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs the reconciler on a cron schedule
type Scheduler struct {
	cron       *cron.Cron
	reconciler *Reconciler
	logger     *zap.Logger
}

// NewScheduler creates a new reconciliation scheduler
func NewScheduler(reconciler *Reconciler, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		reconciler: reconciler,
		logger:     logger,
	}
}

// Start schedules the reconciler with the given cron expression (standard
// five-field syntax or a descriptor like "@hourly") and starts the scheduler
func (s *Scheduler) Start(schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		if _, err := s.reconciler.Run(context.Background()); err != nil {
			s.logger.Error("Reconciliation run failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("Reconciliation scheduler started", zap.String("schedule", schedule))
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Reconciliation scheduler stopped")
}
