package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/zazaborisovi/laptomania/internal/metrics"
	"github.com/zazaborisovi/laptomania/internal/repository"
)

// Sweeper periodically nulls out expired verification codes so a stale
// code can never be redeemed long after the email promised it expired.
type Sweeper struct {
	users    repository.UserRepository
	logger   *slog.Logger
	schedule cron.Schedule
}

func New(users repository.UserRepository, logger *slog.Logger, cronExpr string) (*Sweeper, error) {
	sched, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("parse sweep cron expression: %w", err)
	}
	return &Sweeper{
		users:    users,
		logger:   logger.With("component", "sweeper"),
		schedule: sched,
	}, nil
}

func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("verification sweeper started")

	for {
		timer := time.NewTimer(time.Until(s.schedule.Next(time.Now())))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("verification sweeper shut down")
			return
		case <-timer.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.users.SweepExpiredVerificationCodes(ctx)
	if err != nil {
		s.logger.Error("sweep expired verification codes", "error", err)
		return
	}
	if n > 0 {
		metrics.SweptCodesTotal.Add(float64(n))
		s.logger.Info("cleared expired verification codes", "count", n)
	}
}
