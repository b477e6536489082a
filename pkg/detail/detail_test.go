package detail

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"hihimaps/pkg/model"
	"hihimaps/pkg/tracker"
)

type fakeSource struct {
	mu      sync.Mutex
	details map[int64]*model.PlaceDetail
	errs    map[int64]error
	gates   map[int64]chan struct{}
	calls   []int64
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		details: make(map[int64]*model.PlaceDetail),
		errs:    make(map[int64]error),
		gates:   make(map[int64]chan struct{}),
	}
}

func (f *fakeSource) Detail(ctx context.Context, id int64, lang model.Language) (*model.PlaceDetail, error) {
	f.mu.Lock()
	f.calls = append(f.calls, id)
	gate := f.gates[id]
	d, err := f.details[id], f.errs[id]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return d, err
}

func templeDetail() *model.PlaceDetail {
	return &model.PlaceDetail{
		ID: 1,
		Descriptions: []model.Description{
			{
				Language: model.LanguageEnglish,
				Name:     "Temple of Literature",
				Content:  "Vietnam's first university.",
				Audios: []model.AudioTrack{
					{ID: "a1", Voice: "Mai", URL: "http://cdn/1.mp3"},
					{ID: "a2", Voice: "Nam", URL: "http://cdn/2.mp3"},
				},
			},
		},
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestFetcher_LoadsAndResolvesLanguage(t *testing.T) {
	src := newFakeSource()
	src.details[1] = templeDetail()
	f := New(src, tracker.New())

	f.Fetch(1, model.LanguageEnglish)
	if s := f.Snapshot(); !s.Loading || s.PlaceID != 1 {
		t.Errorf("expected loading state, got %+v", s)
	}

	waitFor(t, func() bool { return f.Snapshot().Result != nil })

	s := f.Snapshot()
	if s.Loading || s.Err != nil {
		t.Errorf("unexpected state: %+v", s)
	}
	if !s.Result.LanguageMatched || s.Result.Description.Name != "Temple of Literature" {
		t.Errorf("unexpected result: %+v", s.Result)
	}
	if len(s.Result.Description.Audios) != 2 {
		t.Errorf("expected both voices, got %+v", s.Result.Description.Audios)
	}
}

func TestFetcher_LanguageFallback(t *testing.T) {
	src := newFakeSource()
	src.details[1] = templeDetail() // English only
	f := New(src, tracker.New())

	f.Fetch(1, model.LanguageVietnamese)
	waitFor(t, func() bool { return f.Snapshot().Result != nil })

	s := f.Snapshot()
	if s.Result.LanguageMatched {
		t.Error("expected fallback to be flagged")
	}
	if s.Result.Description.Language != model.LanguageEnglish {
		t.Errorf("expected first available description, got %+v", s.Result.Description)
	}
}

func TestFetcher_ErrorState(t *testing.T) {
	src := newFakeSource()
	src.errs[1] = errors.New("api down")
	f := New(src, tracker.New())

	f.Fetch(1, model.LanguageEnglish)
	waitFor(t, func() bool { s := f.Snapshot(); return !s.Loading })

	s := f.Snapshot()
	if s.Err == nil || s.Result != nil {
		t.Errorf("expected error state, got %+v", s)
	}
}

func TestFetcher_NewSelectionCancelsPrevious(t *testing.T) {
	src := newFakeSource()
	src.details[1] = templeDetail()
	src.details[2] = &model.PlaceDetail{ID: 2, Descriptions: []model.Description{
		{Language: model.LanguageEnglish, Name: "Lake"},
	}}
	src.gates[1] = make(chan struct{})
	f := New(src, tracker.New())

	f.Fetch(1, model.LanguageEnglish)
	f.Fetch(2, model.LanguageEnglish)
	waitFor(t, func() bool { return f.Snapshot().Result != nil })

	// Release the first fetch; its response must not win.
	close(src.gates[1])
	time.Sleep(50 * time.Millisecond)

	s := f.Snapshot()
	if s.PlaceID != 2 || s.Result.Description.Name != "Lake" {
		t.Errorf("stale detail overwrote newer selection: %+v", s)
	}
}

func TestFetcher_ClearResetsState(t *testing.T) {
	src := newFakeSource()
	src.details[1] = templeDetail()
	f := New(src, tracker.New())

	f.Fetch(1, model.LanguageEnglish)
	waitFor(t, func() bool { return f.Snapshot().Result != nil })

	f.Clear()
	if s := f.Snapshot(); s.PlaceID != 0 || s.Result != nil || s.Loading {
		t.Errorf("expected empty state after Clear, got %+v", s)
	}
}

func TestFetcher_RefetchOnLanguageChange(t *testing.T) {
	src := newFakeSource()
	src.details[1] = &model.PlaceDetail{ID: 1, Descriptions: []model.Description{
		{Language: model.LanguageEnglish, Name: "Temple"},
		{Language: model.LanguageVietnamese, Name: "Văn Miếu"},
	}}
	f := New(src, tracker.New())

	f.Fetch(1, model.LanguageEnglish)
	waitFor(t, func() bool { return f.Snapshot().Result != nil })

	f.Refetch(model.LanguageVietnamese)
	waitFor(t, func() bool {
		s := f.Snapshot()
		return s.Result != nil && s.Result.Description.Name == "Văn Miếu"
	})
}
