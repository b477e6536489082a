// Package poller keeps the nearby place list current: a heartbeat evaluates
// scheduled jobs against the latest device position, and a refresher swaps new
// results into the store atomically.
package poller

import (
	"context"
	"log/slog"
	"time"

	"hihimaps/pkg/store"
)

// Scheduler manages the central heartbeat and scheduled jobs. Every tick it
// reads the current position from the store; jobs never fire before the first
// position arrives.
type Scheduler struct {
	store    *store.Store
	interval time.Duration
	jobs     []Job
}

// NewScheduler creates a Scheduler reading positions from st.
func NewScheduler(st *store.Store, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Scheduler{
		store:    st,
		interval: interval,
	}
}

// AddJob registers a job.
func (s *Scheduler) AddJob(j Job) {
	s.jobs = append(s.jobs, j)
}

// Start runs the main loop. It blocks until context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("Scheduler started", "interval", s.interval, "jobs", len(s.jobs))

	for {
		select {
		case <-ctx.Done():
			slog.Info("Scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	loc, ok := s.store.CurrentLocation()
	if !ok {
		return
	}

	for _, job := range s.jobs {
		if job.ShouldFire(loc) {
			// Fire and forget
			go job.Run(ctx, loc)
		}
	}
}
