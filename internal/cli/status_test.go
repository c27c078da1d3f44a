package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/maisquelle/maisquelle/internal/config"
)

func TestRunStatusAllReportsCorrupt(t *testing.T) {
	dir := t.TempDir()
	runsDir := filepath.Join(dir, "runs")
	if err := os.MkdirAll(runsDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(runsDir, "2026-01-01T00-00-00-report.json"), []byte("{corrupt"), 0644); err != nil {
		t.Fatal(err)
	}

	origCfg := cfg
	t.Cleanup(func() { cfg = origCfg })
	cfg = config.DefaultConfig()
	cfg.StorageDir = dir

	// A runs directory holding only unreadable files must surface an
	// error, not crash.
	err := runStatus(statusCmd, nil)
	if err == nil {
		t.Fatal("expected error for unreadable run history")
	}
	if !strings.Contains(err.Error(), "no loadable runs") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRunStatusEmptyStorage(t *testing.T) {
	origCfg := cfg
	t.Cleanup(func() { cfg = origCfg })
	cfg = config.DefaultConfig()
	cfg.StorageDir = t.TempDir()

	if err := runStatus(statusCmd, nil); err != nil {
		t.Fatalf("empty storage should not be an error: %v", err)
	}
}
