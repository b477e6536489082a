package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"hihimaps/pkg/db"
)

func newTestCache(t *testing.T) (*SQLiteCache, *db.DB) {
	t.Helper()
	d, err := db.Init(filepath.Join(t.TempDir(), "cache_test.db"))
	if err != nil {
		t.Fatalf("Failed to init db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return NewSQLiteCache(d), d
}

func TestSQLiteCache_RoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	if _, hit := c.GetCache(ctx, "missing"); hit {
		t.Error("expected miss for unknown key")
	}

	if err := c.SetCache(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("SetCache failed: %v", err)
	}
	val, hit := c.GetCache(ctx, "k")
	if !hit || string(val) != "v1" {
		t.Errorf("expected hit with v1, got hit=%v val=%q", hit, val)
	}

	// Overwrite
	if err := c.SetCache(ctx, "k", []byte("v2")); err != nil {
		t.Fatalf("SetCache overwrite failed: %v", err)
	}
	val, hit = c.GetCache(ctx, "k")
	if !hit || string(val) != "v2" {
		t.Errorf("expected hit with v2, got hit=%v val=%q", hit, val)
	}
}

func TestSQLiteCache_Prune(t *testing.T) {
	c, d := newTestCache(t)
	ctx := context.Background()

	if err := c.SetCache(ctx, "fresh", []byte("x")); err != nil {
		t.Fatal(err)
	}
	// Backdate an entry beyond the TTL.
	old := time.Now().Add(-48 * time.Hour).UTC().Format("2006-01-02 15:04:05")
	if _, err := d.Exec("INSERT INTO cache (key, value, created_at) VALUES (?, ?, ?)", "stale", []byte("y"), old); err != nil {
		t.Fatal(err)
	}

	if err := d.PruneCache(24 * time.Hour); err != nil {
		t.Fatalf("PruneCache failed: %v", err)
	}

	if _, hit := c.GetCache(ctx, "stale"); hit {
		t.Error("stale entry should have been pruned")
	}
	if _, hit := c.GetCache(ctx, "fresh"); !hit {
		t.Error("fresh entry should survive pruning")
	}
}
