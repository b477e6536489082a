package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "hihimaps.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Places.RadiusMeters != 5000 {
		t.Errorf("expected default radius 5000, got %d", cfg.Places.RadiusMeters)
	}
	if time.Duration(cfg.Places.PollInterval) != 10*time.Second {
		t.Errorf("expected default poll interval 10s, got %v", time.Duration(cfg.Places.PollInterval))
	}
	if cfg.Language != "vi" {
		t.Errorf("expected default language vi, got %q", cfg.Language)
	}
}

func TestLoad_FileOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hihimaps.yaml")

	content := `
places:
  base_url: "http://localhost:9999/api"
  radius_meters: 1000
  poll_interval: "5s"
  movement_threshold_m: 50
geocoding:
  debounce: "450ms"
language: "en"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Places.BaseURL != "http://localhost:9999/api" {
		t.Errorf("base_url not applied: %q", cfg.Places.BaseURL)
	}
	if cfg.Places.MovementThreshold != 50 {
		t.Errorf("movement threshold not applied: %v", cfg.Places.MovementThreshold)
	}
	if time.Duration(cfg.Geocoding.Debounce) != 450*time.Millisecond {
		t.Errorf("debounce not applied: %v", time.Duration(cfg.Geocoding.Debounce))
	}
	if cfg.Language != "en" {
		t.Errorf("language not applied: %q", cfg.Language)
	}
	// Unset values keep defaults.
	if cfg.Geocoding.MinQueryLen != 2 {
		t.Errorf("expected default min_query_len 2, got %d", cfg.Geocoding.MinQueryLen)
	}
}

func TestLoad_InvalidLanguage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hihimaps.yaml")
	if err := os.WriteFile(path, []byte("language: \"fr\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected validation error for unsupported language")
	}
}

func TestLoad_RejectsZeroPollInterval(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hihimaps.yaml")
	content := `
places:
  poll_interval: "0s"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected validation error for zero poll interval")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("HIHIMAPS_PLACES_URL", "http://env-host:8081/api")
	t.Setenv("HIHIMAPS_CONTACT", "ops@example.com")

	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "hihimaps.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Places.BaseURL != "http://env-host:8081/api" {
		t.Errorf("env override not applied: %q", cfg.Places.BaseURL)
	}
	if cfg.Geocoding.Contact != "ops@example.com" {
		t.Errorf("contact override not applied: %q", cfg.Geocoding.Contact)
	}
}

func TestGenerateDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "configs", "hihimaps.yaml")

	if err := GenerateDefault(path); err != nil {
		t.Fatalf("GenerateDefault failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}

	// Round-trips through Load.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load of generated config failed: %v", err)
	}
	if cfg.Server.Addr == "" {
		t.Error("expected server addr in generated config")
	}

	// Second call is a no-op.
	if err := GenerateDefault(path); err != nil {
		t.Errorf("GenerateDefault on existing file failed: %v", err)
	}
}

func TestDuration_Marshal(t *testing.T) {
	d := Duration(450 * time.Millisecond)
	v, err := d.MarshalYAML()
	if err != nil {
		t.Fatal(err)
	}
	if v != "450ms" {
		t.Errorf("expected 450ms, got %v", v)
	}
}
