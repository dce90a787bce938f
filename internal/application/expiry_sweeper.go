package application

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SweepLockName is the distributed lock guarding the expiry sweep.
const SweepLockName = "booking-expiry-sweep"

// Locker hands out a cluster-wide lock. release is nil when the lock is
// held elsewhere.
type Locker interface {
	TryAcquire(ctx context.Context, name string, ttl time.Duration) (release func(context.Context) error, err error)
}

// Expirer is the part of the lifecycle engine the sweeper drives.
type Expirer interface {
	ExpireOldBookings(ctx context.Context) (int64, error)
}

// ExpirySweeper periodically expires lapsed pending bookings. At most one
// replica sweeps per tick.
type ExpirySweeper struct {
	expirer  Expirer
	locker   Locker
	schedule string
	lockTTL  time.Duration
	logger   *zap.Logger
	cron     *cron.Cron
}

// NewExpirySweeper creates a new ExpirySweeper. A nil locker sweeps
// unconditionally.
func NewExpirySweeper(expirer Expirer, locker Locker, schedule string, lockTTL time.Duration, logger *zap.Logger) *ExpirySweeper {
	if lockTTL <= 0 {
		lockTTL = 2 * time.Minute
	}
	return &ExpirySweeper{
		expirer:  expirer,
		locker:   locker,
		schedule: schedule,
		lockTTL:  lockTTL,
		logger:   logger,
	}
}

// Start registers the sweep on its cron schedule and starts the scheduler.
func (s *ExpirySweeper) Start(ctx context.Context) error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.Error("expiry sweep failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("expiry sweeper started", zap.String("schedule", s.schedule))
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *ExpirySweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.logger.Info("expiry sweeper stopped")
}

// RunOnce performs a single sweep. It returns 0 without sweeping when another
// replica holds the lock.
func (s *ExpirySweeper) RunOnce(ctx context.Context) (int64, error) {
	if s.locker != nil {
		release, err := s.locker.TryAcquire(ctx, SweepLockName, s.lockTTL)
		if err != nil {
			return 0, err
		}
		if release == nil {
			s.logger.Debug("expiry sweep skipped, lock held elsewhere")
			return 0, nil
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("failed to release sweep lock", zap.Error(err))
			}
		}()
	}

	count, err := s.expirer.ExpireOldBookings(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info("expiry sweep finished", zap.Int64("expired", count))
	return count, nil
}
