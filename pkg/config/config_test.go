package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse_MinimalFileGetsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("backend: https://forms.example.com\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Backend != "https://forms.example.com" {
		t.Fatalf("backend = %q", cfg.Backend)
	}
	if cfg.PollInterval.Std() != 2*time.Second || cfg.PollCap.Std() != 5*time.Minute {
		t.Fatalf("poll defaults = %s / %s", cfg.PollInterval, cfg.PollCap)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Fatalf("upload limit default = %d", cfg.MaxUploadBytes)
	}
	if cfg.DocumentsTable != "documents" {
		t.Fatalf("documents table default = %q", cfg.DocumentsTable)
	}
}

func TestParse_ExplicitValuesKept(t *testing.T) {
	cfg, err := Parse([]byte(strings.TrimSpace(`
backend: http://localhost:9000
requestTimeout: 5s
pollInterval: 500ms
pollCap: 1m
maxUploadBytes: 1048576
documentsTable: uploads
protectedTables: [users, audit_log]
`)))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.RequestTimeout.Std() != 5*time.Second || cfg.PollInterval.Std() != 500*time.Millisecond {
		t.Fatalf("timings = %s / %s", cfg.RequestTimeout, cfg.PollInterval)
	}
	if cfg.DocumentsTable != "uploads" {
		t.Fatalf("documents table = %q", cfg.DocumentsTable)
	}
	if len(cfg.ProtectedTables) != 2 || cfg.ProtectedTables[1] != "audit_log" {
		t.Fatalf("protected tables = %v", cfg.ProtectedTables)
	}
}

func TestParse_RejectsIntervalLongerThanCap(t *testing.T) {
	_, err := Parse([]byte("pollInterval: 10m\npollCap: 1m\n"))
	if err == nil || !strings.Contains(err.Error(), "pollInterval") {
		t.Fatalf("expected interval/cap error, got %v", err)
	}
}

func TestLoad_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formmaster.yaml")
	if err := os.WriteFile(path, []byte("backend: http://api.internal\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend != "http://api.internal" {
		t.Fatalf("backend = %q", cfg.Backend)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("missing file did not error")
	}
}
