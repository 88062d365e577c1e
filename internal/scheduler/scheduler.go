// Package scheduler runs the periodic publish sweep that promotes due
// scheduled posts to published.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"inkwell/internal/observability"
	"inkwell/internal/repository"
)

// Scheduler owns the background sweep. It holds no mutable state of its
// own beyond lifecycle plumbing: every tick is a stateless read-modify
// against the post store, so two processes running the sweep concurrently
// would still converge (the selection predicate is the guard).
type Scheduler struct {
	posts    repository.PostRepository
	interval time.Duration
	logger   *slog.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

// New creates a Scheduler sweeping at the given interval. Scheduled posts
// may publish up to one interval after their due time; that staleness
// bound is the documented cost of the polling design.
func New(posts repository.PostRepository, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		posts:    posts,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start launches the sweep goroutine. Safe to call once per Scheduler;
// subsequent calls are no-ops.
func (s *Scheduler) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		ctx, s.cancel = context.WithCancel(ctx)
		go s.run(ctx)
		s.logger.Info("publish scheduler started", slog.Duration("interval", s.interval))
	})
}

// Stop halts the sweep and waits for any in-flight tick to finish.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		if s.cancel == nil {
			return
		}
		s.cancel()
		<-s.done
		s.logger.Info("publish scheduler stopped")
	})
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx, time.Now().UTC())
		}
	}
}

// Tick runs one publish sweep with the given "now". Errors are logged and
// the tick abandoned; the next tick retries naturally because the
// selection predicate still matches anything left behind. Exported so the
// sweep can be driven directly in tests and ops tooling.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	start := time.Now()
	n, err := s.posts.PublishDue(ctx, now)
	observability.SchedulerTickDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		observability.SchedulerTickErrors.Inc()
		s.logger.ErrorContext(ctx, "publish sweep failed",
			slog.Time("tick", now),
			slog.String("error", err.Error()),
		)
		return
	}

	if n > 0 {
		observability.PostsPublishedBySweep.Add(float64(n))
		s.logger.InfoContext(ctx, "publish sweep promoted posts",
			slog.Time("tick", now),
			slog.Int64("published", n),
		)
	}
}
