package request

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"hihimaps/pkg/cache"
	"hihimaps/pkg/config"
	"hihimaps/pkg/db"
	"hihimaps/pkg/tracker"
)

func testRequestConfig() *config.RequestConfig {
	return &config.RequestConfig{
		Retries: 3,
		Timeout: config.Duration(5 * time.Second),
		Backoff: config.BackoffConfig{
			BaseDelay: config.Duration(10 * time.Millisecond),
			MaxDelay:  config.Duration(100 * time.Millisecond),
		},
	}
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	d, err := db.Init(filepath.Join(t.TempDir(), "client_test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { d.Close() })
	return New(cache.NewSQLiteCache(d), tracker.New(), testRequestConfig(), "test@example.com")
}

func TestGet_Sequential(t *testing.T) {
	var conc int32
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current := atomic.AddInt32(&conc, 1)
		defer atomic.AddInt32(&conc, -1)
		if current > 1 {
			t.Errorf("concurrent requests to one provider, expected sequential")
		}
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(200)
		_, _ = w.Write([]byte("ok"))
	}))
	defer svr.Close()

	client := newTestClient(t)

	done := make(chan struct{}, 3)
	for i := 0; i < 3; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			if _, err := client.Get(context.Background(), svr.URL, ""); err != nil {
				t.Errorf("Get failed: %v", err)
			}
		}()
	}
	for i := 0; i < 3; i++ {
		<-done
	}
}

func TestGet_Retry(t *testing.T) {
	attempts := 0
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(200)
		_, _ = w.Write([]byte("success"))
	}))
	defer svr.Close()

	client := newTestClient(t)

	body, err := client.Get(context.Background(), svr.URL, "")
	if err != nil {
		t.Fatalf("Get failed after retries: %v", err)
	}
	if string(body) != "success" {
		t.Errorf("expected success body, got %q", body)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestGet_CacheHit(t *testing.T) {
	var hits int32
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(200)
		_, _ = w.Write([]byte("payload"))
	}))
	defer svr.Close()

	client := newTestClient(t)

	for i := 0; i < 2; i++ {
		body, err := client.Get(context.Background(), svr.URL, "key1")
		if err != nil {
			t.Fatalf("Get %d failed: %v", i, err)
		}
		if string(body) != "payload" {
			t.Errorf("unexpected body %q", body)
		}
	}

	if atomic.LoadInt32(&hits) != 1 {
		t.Errorf("expected exactly one upstream request, got %d", hits)
	}
}

func TestGet_DefaultUserAgent(t *testing.T) {
	var gotUA string
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(200)
	}))
	defer svr.Close()

	client := newTestClient(t)
	if _, err := client.Get(context.Background(), svr.URL, ""); err != nil {
		t.Fatal(err)
	}
	if gotUA == "" || gotUA == "Go-http-client/1.1" {
		t.Errorf("expected HihiMaps user agent, got %q", gotUA)
	}
}

func TestGet_HeaderOverride(t *testing.T) {
	var gotUA string
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(200)
	}))
	defer svr.Close()

	client := newTestClient(t)
	_, err := client.GetWithHeaders(context.Background(), svr.URL, map[string]string{"User-Agent": "custom/1.0"}, "")
	if err != nil {
		t.Fatal(err)
	}
	if gotUA != "custom/1.0" {
		t.Errorf("expected custom UA, got %q", gotUA)
	}
}

func TestGet_ClientError_NoRetry(t *testing.T) {
	attempts := 0
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer svr.Close()

	client := newTestClient(t)
	if _, err := client.Get(context.Background(), svr.URL, ""); err == nil {
		t.Error("expected error for 404")
	}
	if attempts != 1 {
		t.Errorf("4xx must not retry, got %d attempts", attempts)
	}
}

func TestNormalizeProvider(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"nominatim.openstreetmap.org", "nominatim"},
		{"openstreetmap.org", "nominatim"},
		{"192.168.23.102:8081", "192.168.23.102:8081"},
	}
	for _, tt := range tests {
		if got := normalizeProvider(tt.host); got != tt.want {
			t.Errorf("normalizeProvider(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}
