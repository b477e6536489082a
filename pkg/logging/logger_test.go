package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hihimaps/pkg/config"
)

func testLogConfig(dir string) *config.LogConfig {
	return &config.LogConfig{
		Server:   config.LogSettings{Path: filepath.Join(dir, "server.log"), Level: "DEBUG"},
		Requests: config.LogSettings{Path: filepath.Join(dir, "requests.log"), Level: "INFO"},
	}
}

func TestInit_CreatesLogs(t *testing.T) {
	dir := t.TempDir()
	cfg := testLogConfig(dir)

	cleanup, err := Init(cfg)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer cleanup()

	slog.Info("server line")
	RequestLogger.Info("request line", "host", "example.com")

	serverData, err := os.ReadFile(cfg.Server.Path)
	if err != nil {
		t.Fatalf("server log missing: %v", err)
	}
	if !strings.Contains(string(serverData), "server line") {
		t.Error("server log does not contain logged line")
	}

	reqData, err := os.ReadFile(cfg.Requests.Path)
	if err != nil {
		t.Fatalf("requests log missing: %v", err)
	}
	if !strings.Contains(string(reqData), "request line") {
		t.Error("requests log does not contain logged line")
	}
	if strings.Contains(string(serverData), "request line") {
		t.Error("request line leaked into server log")
	}
}

func TestInit_Rotation(t *testing.T) {
	dir := t.TempDir()
	cfg := testLogConfig(dir)

	if err := os.WriteFile(cfg.Server.Path, []byte("previous run\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cleanup, err := Init(cfg)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer cleanup()

	oldData, err := os.ReadFile(cfg.Server.Path + ".old")
	if err != nil {
		t.Fatalf("rotated log missing: %v", err)
	}
	if !strings.Contains(string(oldData), "previous run") {
		t.Error("rotated log lost previous content")
	}
}
