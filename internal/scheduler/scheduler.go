// Package scheduler runs the queue passes unattended. Operators normally
// trigger passes from the menu; the scheduler covers the case where the
// sheet holds future-dated rows and nobody is around to press the button.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Scheduler invokes tickFn immediately on Start and then on every interval
// until Stop. Start and Stop are idempotent and report whether they changed
// state.
type Scheduler struct {
	interval time.Duration
	tickFn   func(context.Context)
	logger   *slog.Logger

	running  atomic.Bool
	lastTick atomic.Int64

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(interval time.Duration, tickFn func(context.Context), logger *slog.Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, errors.New("interval must be > 0")
	}
	if tickFn == nil {
		return nil, errors.New("tickFn must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		interval: interval,
		tickFn:   tickFn,
		logger:   logger,
		done:     make(chan struct{}),
	}, nil
}

func (s *Scheduler) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running.Store(true)

	go s.loop(ctx)
	return true
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("autorun started", "interval", s.interval.String())

	s.safeTick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("autorun stopping")
			return
		case <-ticker.C:
			s.safeTick(ctx)
		}
	}
}

func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.Load() {
		return false
	}

	s.cancel()
	<-s.done
	s.running.Store(false)

	s.logger.Info("autorun stopped")
	return true
}

func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}

// LastTick reports when the most recent tick completed; zero before the
// first tick.
func (s *Scheduler) LastTick() time.Time {
	ns := s.lastTick.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

func (s *Scheduler) safeTick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("autorun tick panic recovered", "panic", r)
		}
	}()

	start := time.Now()
	s.tickFn(ctx)
	s.lastTick.Store(time.Now().UnixNano())
	s.logger.Info("autorun tick completed", "duration_ms", time.Since(start).Milliseconds())
}
