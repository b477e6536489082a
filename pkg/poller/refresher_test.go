package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"hihimaps/pkg/model"
	"hihimaps/pkg/store"
	"hihimaps/pkg/tracker"
)

// fakeSource serves queued responses, optionally blocking each call until
// released.
type fakeSource struct {
	mu    sync.Mutex
	resps []fakeResp
	gates []chan struct{}
	calls int
}

type fakeResp struct {
	places []model.Place
	err    error
}

func (f *fakeSource) Nearby(ctx context.Context, loc model.Location, dist int) ([]model.Place, error) {
	f.mu.Lock()
	i := f.calls
	f.calls++
	var gate chan struct{}
	if i < len(f.gates) {
		gate = f.gates[i]
	}
	var resp fakeResp
	if i < len(f.resps) {
		resp = f.resps[i]
	}
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return resp.places, resp.err
}

func TestRefresher_ReplacesStoreOnSuccess(t *testing.T) {
	st := store.New(model.LanguageEnglish)
	src := &fakeSource{resps: []fakeResp{
		{places: []model.Place{{ID: 1, Name: "Temple", Lat: 10, Lon: 20}}},
	}}
	r := NewRefresher(src, st, tracker.New(), 5000)

	r.Refresh(context.Background(), hanoi)

	got := st.Places()
	if len(got) != 1 || got[0].Name != "Temple" {
		t.Errorf("unexpected places: %+v", got)
	}
}

func TestRefresher_KeepsOldListOnFailure(t *testing.T) {
	st := store.New(model.LanguageEnglish)
	st.ReplacePlaces([]model.Place{{ID: 1, Name: "Temple"}})

	src := &fakeSource{resps: []fakeResp{{err: errors.New("api down")}}}
	r := NewRefresher(src, st, tracker.New(), 5000)

	r.Refresh(context.Background(), hanoi)

	if got := st.Places(); len(got) != 1 || got[0].Name != "Temple" {
		t.Errorf("old list not preserved: %+v", got)
	}
	if _, _, ok := st.Notice(); !ok {
		t.Error("expected a user notice after failed refresh")
	}
}

func TestRefresher_DropsStaleResponse(t *testing.T) {
	st := store.New(model.LanguageEnglish)
	gate := make(chan struct{})
	src := &fakeSource{
		resps: []fakeResp{
			{places: []model.Place{{ID: 1, Name: "Old"}}},
			{places: []model.Place{{ID: 2, Name: "New"}}},
		},
		gates: []chan struct{}{gate, nil},
	}
	tr := tracker.New()
	r := NewRefresher(src, st, tr, 5000)

	done := make(chan struct{})
	go func() {
		r.Refresh(context.Background(), hanoi)
		close(done)
	}()

	// Wait for the first refresh to be in flight, then complete a second one.
	deadline := time.Now().Add(time.Second)
	for {
		src.mu.Lock()
		started := src.calls == 1
		src.mu.Unlock()
		if started {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("first refresh never started")
		}
		time.Sleep(time.Millisecond)
	}
	r.Refresh(context.Background(), hanoi)

	// Release the first; its response is now stale.
	close(gate)
	<-done

	if got := st.Places(); len(got) != 1 || got[0].Name != "New" {
		t.Errorf("stale response overwrote newer list: %+v", got)
	}
	if s := tr.Snapshot()["places"]; s.Superseded != 1 {
		t.Errorf("expected 1 superseded response tracked, got %d", s.Superseded)
	}
}
