package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileOutputWritesJSONLines(t *testing.T) {
	tempDir := t.TempDir()
	logFile := filepath.Join(tempDir, "render.log")

	opts := Options{
		Level:      "debug",
		File:       logFile,
		Console:    false,
		MaxSizeMB:  1,
		MaxBackups: 1,
		MaxAgeDays: 1,
	}
	if err := InitWithOptions(opts); err != nil {
		t.Fatalf("InitWithOptions failed: %v", err)
	}

	Sugar.Infow("frame rendered", "frame", 42)
	Sync()

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}

	line := strings.TrimSpace(strings.Split(string(data), "\n")[0])
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v\nline: %s", err, line)
	}
	if entry["msg"] != "frame rendered" {
		t.Errorf("msg = %v, want 'frame rendered'", entry["msg"])
	}
	if entry["frame"] != float64(42) {
		t.Errorf("frame = %v, want 42", entry["frame"])
	}
}

func TestLevelFiltering(t *testing.T) {
	tempDir := t.TempDir()
	logFile := filepath.Join(tempDir, "warn.log")

	opts := DefaultOptions("warn", logFile)
	opts.Console = false
	if err := InitWithOptions(opts); err != nil {
		t.Fatalf("InitWithOptions failed: %v", err)
	}

	Info("should be filtered")
	Warn("should appear")
	Sync()

	data, _ := os.ReadFile(logFile)
	if strings.Contains(string(data), "should be filtered") {
		t.Error("info entry leaked through warn level")
	}
	if !strings.Contains(string(data), "should appear") {
		t.Error("warn entry missing")
	}
}
