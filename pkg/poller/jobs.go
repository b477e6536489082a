package poller

import (
	"context"
	"sync/atomic"
	"time"

	"hihimaps/pkg/geo"
	"hihimaps/pkg/model"
)

// Job defines a scheduled task driven by position updates.
type Job interface {
	Name() string
	ShouldFire(loc model.Location) bool
	Run(ctx context.Context, loc model.Location)
}

// BaseJob provides atomic running state to prevent re-entry.
type BaseJob struct {
	name    string
	running int32 // 1 if running, 0 otherwise
}

func NewBaseJob(name string) BaseJob {
	return BaseJob{name: name}
}

func (b *BaseJob) Name() string {
	return b.name
}

// TryLock attempts to set running to 1. Returns true if successful.
func (b *BaseJob) TryLock() bool {
	return atomic.CompareAndSwapInt32(&b.running, 0, 1)
}

func (b *BaseJob) Unlock() {
	atomic.StoreInt32(&b.running, 0)
}

// TimeJob fires when time elapsed exceeds threshold.
type TimeJob struct {
	BaseJob
	lastTime  time.Time
	threshold time.Duration
	action    func(context.Context, model.Location)
	firstRun  bool
}

func NewTimeJob(name string, threshold time.Duration, action func(context.Context, model.Location)) *TimeJob {
	return &TimeJob{
		BaseJob:   NewBaseJob(name),
		threshold: threshold,
		action:    action,
		firstRun:  true,
	}
}

func (j *TimeJob) ShouldFire(model.Location) bool {
	if atomic.LoadInt32(&j.running) == 1 {
		return false
	}

	if j.firstRun {
		return true
	}

	return time.Since(j.lastTime) >= j.threshold
}

func (j *TimeJob) Run(ctx context.Context, loc model.Location) {
	if !j.TryLock() {
		return
	}
	defer j.Unlock()

	j.lastTime = time.Now()
	j.firstRun = false

	j.action(ctx, loc)
}

// DistanceJob fires when distance traveled exceeds threshold.
type DistanceJob struct {
	BaseJob
	lastPos   geo.Point
	threshold float64 // meters
	action    func(context.Context, model.Location)
	firstRun  bool
}

func NewDistanceJob(name string, thresholdMeters float64, action func(context.Context, model.Location)) *DistanceJob {
	return &DistanceJob{
		BaseJob:   NewBaseJob(name),
		threshold: thresholdMeters,
		action:    action,
		firstRun:  true,
	}
}

func (j *DistanceJob) ShouldFire(loc model.Location) bool {
	if atomic.LoadInt32(&j.running) == 1 {
		return false
	}

	if j.firstRun {
		return true
	}

	return geo.Distance(j.lastPos, geo.FromLocation(loc)) >= j.threshold
}

func (j *DistanceJob) Run(ctx context.Context, loc model.Location) {
	if !j.TryLock() {
		return
	}
	defer j.Unlock()

	j.lastPos = geo.FromLocation(loc)
	j.firstRun = false

	j.action(ctx, loc)
}
