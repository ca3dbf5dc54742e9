package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"audiopilot/internal/config"
	"audiopilot/internal/logging"
	"audiopilot/internal/services"
)

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = "json"
	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger instance")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message without caller", logging.String("outcome", "healthy"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	text := string(content)
	if strings.Contains(text, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", text)
	}
	if !strings.Contains(text, "- Outcome: healthy") {
		t.Fatalf("expected outcome field, got %q", text)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), ".go:") {
		t.Fatalf("expected caller information in debug mode, got %q", content)
	}
}

func TestConsoleSubjectFromContext(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "subject.log")
	base, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithCycleID(context.Background(), "0123456789abcdef")
	ctx = services.WithRoomID(ctx, "anger-room")
	ctx = services.WithStage(ctx, "scan")
	logging.WithContext(ctx, logging.NewComponentLogger(base, "autopilot")).Info("room scanned")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	want := "[autopilot] Cycle 01234567 · anger-room (scan) – room scanned"
	if !strings.Contains(string(content), want) {
		t.Fatalf("expected %q in %q", want, content)
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logging.WarnWithContext(logger, "room skipped", "room_skipped", logging.String(logging.FieldImpact, "room not repaired"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record[logging.FieldEventType] != "room_skipped" {
		t.Fatalf("event_type = %v", record[logging.FieldEventType])
	}
	if record[logging.FieldImpact] != "room not repaired" {
		t.Fatalf("impact overridden: %v", record[logging.FieldImpact])
	}
	if record[logging.FieldErrorHint] == nil {
		t.Fatal("expected default error hint")
	}
}

func TestCycleLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "cycle.log")
	handler, closer, err := logging.NewCycleFileHandler(path)
	if err != nil {
		t.Fatalf("NewCycleFileHandler: %v", err)
	}
	logger := logging.CycleLogger(logging.NewNop(), handler, "cycle-42")
	logger.Debug("decision", logging.String("room_id", "r"))
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read cycle log: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(content), &record); err != nil {
		t.Fatalf("decode %q: %v", content, err)
	}
	if record["cycle_id"] != "cycle-42" || record["level"] != "debug" || record["ts"] == nil {
		t.Fatalf("unexpected record %v", record)
	}
}

func TestCleanupOldFiles(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	old := now.AddDate(0, 0, -10)
	for _, name := range []string{"a.log", "b.log", "keep.log", "c.json"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := os.Chtimes(path, old, old); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}
	fresh := filepath.Join(dir, "fresh.log")
	if err := os.WriteFile(fresh, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Chtimes(fresh, now, now); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	removed := logging.CleanupOldFiles(nil, now, 7, logging.RetentionTarget{Dir: dir, Pattern: "*.log", Exclude: []string{"keep.log"}})
	if removed != 2 {
		t.Fatalf("removed %d files, want 2", removed)
	}
	for name, want := range map[string]bool{"a.log": false, "b.log": false, "keep.log": true, "c.json": true, "fresh.log": true} {
		_, err := os.Stat(filepath.Join(dir, name))
		if exists := err == nil; exists != want {
			t.Fatalf("%s exists=%v, want %v", name, exists, want)
		}
	}
	if logging.CleanupOldFiles(nil, now, 0, logging.RetentionTarget{Dir: dir}) != 0 {
		t.Fatal("zero retention must disable pruning")
	}
}
