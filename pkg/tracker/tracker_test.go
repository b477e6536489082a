package tracker

import (
	"sync"
	"testing"
)

func TestTracker_Counters(t *testing.T) {
	tr := New()

	tr.TrackCacheHit("places")
	tr.TrackCacheMiss("places")
	tr.TrackAPISuccess("places")
	tr.TrackAPIFailure("nominatim")
	tr.TrackSuperseded("places")

	snap := tr.Snapshot()
	p := snap["places"]
	if p.CacheHits != 1 || p.CacheMisses != 1 || p.APISuccess != 1 || p.Superseded != 1 {
		t.Errorf("unexpected places stats: %+v", p)
	}
	if snap["nominatim"].APIFailures != 1 {
		t.Errorf("unexpected nominatim stats: %+v", snap["nominatim"])
	}
}

func TestTracker_Concurrent(t *testing.T) {
	tr := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.TrackAPISuccess("places")
		}()
	}
	wg.Wait()

	if got := tr.Snapshot()["places"].APISuccess; got != 50 {
		t.Errorf("expected 50 successes, got %d", got)
	}
}
