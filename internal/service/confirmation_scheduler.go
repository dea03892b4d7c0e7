package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// confirmRunTimeout bounds a single scheduled confirmation run.
const confirmRunTimeout = 5 * time.Minute

// ConfirmationScheduler periodically confirms pending records whose NAV has arrived.
// Runs never overlap and a panicking run is recovered and logged.
type ConfirmationScheduler struct {
	cron    *cron.Cron
	records *RecordService
	logger  *zap.Logger
}

// NewConfirmationScheduler registers the confirmation job on schedule, which accepts
// standard five-field cron expressions and descriptors such as "@every 30m".
func NewConfirmationScheduler(schedule string, records *RecordService, logger *zap.Logger) (*ConfirmationScheduler, error) {
	logger = logger.Named("scheduler")
	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger))

	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(
			cron.Recover(cronLogger),
			cron.SkipIfStillRunning(cronLogger),
		),
	)

	s := &ConfirmationScheduler{
		cron:    c,
		records: records,
		logger:  logger,
	}

	if _, err := c.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("invalid confirmation schedule %q: %w", schedule, err)
	}

	return s, nil
}

// Start begins running the job in the background.
func (s *ConfirmationScheduler) Start() {
	s.cron.Start()
	s.logger.Info("confirmation scheduler started")
}

// Stop stops scheduling new runs and waits for a running one to finish or ctx to expire.
func (s *ConfirmationScheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("confirmation scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("confirmation scheduler stop timed out")
	}
}

// RunOnce confirms pending records immediately and returns how many were confirmed.
func (s *ConfirmationScheduler) RunOnce(ctx context.Context) (int, error) {
	return s.records.ConfirmPending(ctx)
}

func (s *ConfirmationScheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), confirmRunTimeout)
	defer cancel()

	start := time.Now()
	n, err := s.RunOnce(ctx)
	if err != nil {
		s.logger.Error("scheduled confirmation failed", zap.Error(err))
		return
	}

	s.logger.Debug("scheduled confirmation finished",
		zap.Int("confirmed", n),
		zap.Duration("duration", time.Since(start)),
	)
}
