package logger

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInitWritesToFile(t *testing.T) {
	tempDir := t.TempDir()
	logFile := filepath.Join(tempDir, "test.log")

	cfg := FileConfig{
		Path:       logFile,
		MaxSizeMB:  1,
		MaxBackups: 1,
		MaxAgeDays: 1,
	}
	if err := InitWithFileConfig("debug", cfg, false); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	defer Sync()

	Sugar.Infow("composited canvas", "instances", 3, "mode", "imagery")
	Sync()

	info, err := os.Stat(logFile)
	if err != nil {
		t.Fatalf("log file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("log file is empty")
	}
}

func TestParseLevel(t *testing.T) {
	if parseLevel("debug").String() != "debug" {
		t.Error("debug level not parsed")
	}
	if parseLevel("nonsense").String() != "info" {
		t.Error("unknown level should default to info")
	}
}
