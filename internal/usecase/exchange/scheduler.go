package exchange

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Scheduler polls storage at a fixed interval and advances every pending
// transaction by one processing pass. A stop request is acknowledged only
// after the in-flight pass completes; passes are never aborted midway.
type Scheduler struct {
	usecase  ExchangeUsecase
	interval time.Duration

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewScheduler(uc ExchangeUsecase, interval time.Duration) *Scheduler {
	return &Scheduler{
		usecase:  uc,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the polling loop in its own goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)
	slog.Info("exchange scheduler started", "interval", s.interval.String())

	for {
		select {
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		default:
		}

		if err := s.usecase.ProcessPending(ctx); err != nil {
			slog.Error("poll pass failed", "error", err.Error())
		}

		select {
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		case <-time.After(s.interval):
		}
	}
}

// Stop requests shutdown and blocks until the current pass finishes or ctx
// expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stop) })

	select {
	case <-s.done:
		slog.Info("exchange scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
