package serverlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileLoggerLevelGating(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	logger, err := NewFileLogger(path, LevelInfo)
	if err != nil {
		t.Fatal(err)
	}
	defer logger.Close()

	logger.Debug("should not appear")
	logger.Info("hello %s", "world")
	logger.Error("boom")

	entries := logger.GetLogs()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries (debug gated out), got %d", len(entries))
	}
	if entries[0].Message != "hello world" {
		t.Fatalf("got message %q", entries[0].Message)
	}
}

func TestFileLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	logger, err := NewFileLogger(path, LevelDebug)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("written")
	logger.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "written") {
		t.Fatalf("expected log file to contain the entry, got %s", data)
	}
}

func TestFileLoggerWithAttachesFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	logger, err := NewFileLogger(path, LevelDebug)
	if err != nil {
		t.Fatal(err)
	}
	defer logger.Close()

	tagged := logger.With(map[string]any{"correlation_id": "abc123"})
	tagged.Info("traced")

	found := false
	for _, e := range logger.GetLogs() {
		if e.Fields["correlation_id"] == "abc123" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a logged entry carrying the correlation_id field")
	}
}

func TestNullLoggerDiscardsSilently(t *testing.T) {
	var l Logger = NullLogger{}
	l.Debug("x")
	l.Info("y")
	l.Error("z")
	l2 := l.With(map[string]any{"a": 1})
	l2.Info("still fine")
	if err := l2.Close(); err != nil {
		t.Fatal(err)
	}
}
