package apisession

import (
	"sync"
	"testing"
	"time"
)

type testState struct {
	Counter int
}

func TestGetOrCreate(t *testing.T) {
	s := New(time.Minute, func() *testState { return &testState{} })

	a := s.Get("a")
	if a == nil {
		t.Fatal("Get returned nil")
	}
	a.Counter = 42

	if a2 := s.Get("a"); a2 != a {
		t.Error("expected same pointer for same session ID")
	}

	b := s.Get("b")
	if b == a {
		t.Error("different session IDs should return different pointers")
	}
	if s.Len() != 2 {
		t.Errorf("expected Len()=2, got %d", s.Len())
	}
}

func TestDelete(t *testing.T) {
	s := New(time.Minute, func() *testState { return &testState{} })

	s.Get("a").Counter = 1
	s.Delete("a")

	if s.Get("a").Counter != 0 {
		t.Error("expected fresh state after Delete")
	}
}

func TestCleanupEvictsExpired(t *testing.T) {
	s := New(10*time.Millisecond, func() *testState { return &testState{} })

	s.Get("old")
	time.Sleep(20 * time.Millisecond)
	s.Get("fresh")
	s.Cleanup()

	if s.Len() != 1 {
		t.Errorf("expected only the fresh session to survive, got %d", s.Len())
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := New(time.Minute, func() *testState { return &testState{} })

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Get("shared")
			s.Get("shared")
		}()
	}
	wg.Wait()

	if s.Len() != 1 {
		t.Errorf("expected a single shared session, got %d", s.Len())
	}
}
