package poller

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"hihimaps/pkg/model"
)

var hanoi = model.Location{Latitude: 21.0278, Longitude: 105.8342}

func TestTimeJob_FiresImmediatelyOnFirstRun(t *testing.T) {
	var fired int32
	j := NewTimeJob("test", time.Hour, func(context.Context, model.Location) {
		atomic.AddInt32(&fired, 1)
	})

	if !j.ShouldFire(hanoi) {
		t.Fatal("expected first run to fire")
	}
	j.Run(context.Background(), hanoi)
	if atomic.LoadInt32(&fired) != 1 {
		t.Error("action not invoked")
	}

	if j.ShouldFire(hanoi) {
		t.Error("should not fire again before threshold")
	}
}

func TestTimeJob_FiresAfterThreshold(t *testing.T) {
	j := NewTimeJob("test", 10*time.Millisecond, func(context.Context, model.Location) {})
	j.Run(context.Background(), hanoi)

	if j.ShouldFire(hanoi) {
		t.Error("fired before threshold elapsed")
	}
	time.Sleep(20 * time.Millisecond)
	if !j.ShouldFire(hanoi) {
		t.Error("did not fire after threshold elapsed")
	}
}

func TestDistanceJob_FiresOnMovement(t *testing.T) {
	j := NewDistanceJob("test", 100, func(context.Context, model.Location) {})
	j.Run(context.Background(), hanoi)

	near := model.Location{Latitude: hanoi.Latitude + 0.0001, Longitude: hanoi.Longitude}
	if j.ShouldFire(near) {
		t.Error("fired for ~11m of movement with a 100m threshold")
	}

	far := model.Location{Latitude: hanoi.Latitude + 0.01, Longitude: hanoi.Longitude}
	if !j.ShouldFire(far) {
		t.Error("did not fire for ~1.1km of movement")
	}
}

func TestBaseJob_PreventsReentry(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	j := NewTimeJob("test", time.Hour, func(context.Context, model.Location) {
		close(started)
		<-release
	})

	go j.Run(context.Background(), hanoi)
	<-started

	if j.ShouldFire(hanoi) {
		t.Error("job reported ready while still running")
	}
	if j.TryLock() {
		t.Error("TryLock succeeded while job running")
	}
	close(release)
}
