// Package logging provides tests for session logs and console logging.
package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewSessionLogger(t *testing.T) {
	t.Run("successful creation with valid paths", func(t *testing.T) {
		logger, err := NewSessionLogger(t.TempDir(), t.TempDir())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer logger.Close()

		if logger.Dir == "" || logger.SessionID == "" || logger.LogPath == "" {
			t.Errorf("expected fields to be set, got %+v", logger)
		}
		if _, err := os.Stat(logger.LogPath); err != nil {
			t.Errorf("log file not created: %v", err)
		}
	})

	t.Run("empty base dir returns error", func(t *testing.T) {
		_, err := NewSessionLogger("", t.TempDir())
		if err == nil || !strings.Contains(err.Error(), "empty") {
			t.Fatalf("expected empty dir error, got %v", err)
		}
	})

	t.Run("creates log directory if missing", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "new-logs", "nested")
		logger, err := NewSessionLogger(base, t.TempDir())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer logger.Close()
		if !strings.HasPrefix(logger.Dir, base) {
			t.Errorf("log dir %q not under %q", logger.Dir, base)
		}
	})
}

func TestRecordAndReadEvents(t *testing.T) {
	logger, err := NewSessionLogger(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	events := []Event{
		{Command: "todo read book", OK: true, Tasks: 1},
		{Command: "mark 9", Keyword: "mark", OK: false, Error: "That task doesn't even exist dummy!", Tasks: 1},
	}
	for _, e := range events {
		if err := logger.Record(e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if err := logger.Close(); err != nil {
		t.Fatal(err)
	}

	// Garbage lines are skipped.
	f, err := os.OpenFile(logger.LogPath, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("not json\n")
	f.Close()

	got, err := ReadEvents(logger.LogPath)
	if err != nil {
		t.Fatalf("ReadEvents: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[0].Command != "todo read book" || !got[0].OK {
		t.Errorf("first event: %+v", got[0])
	}
	if got[0].Time.IsZero() {
		t.Error("Record should stamp the time")
	}
	if got[1].Error == "" || got[1].OK {
		t.Errorf("second event: %+v", got[1])
	}
}

func TestNilSessionLogger(t *testing.T) {
	var logger *SessionLogger
	if err := logger.Record(Event{Command: "list"}); err != nil {
		t.Errorf("Record on nil: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Close on nil: %v", err)
	}
}

func TestFindSessions(t *testing.T) {
	t.Run("missing dir", func(t *testing.T) {
		sessions, err := FindSessions(filepath.Join(t.TempDir(), "missing"))
		if err != nil || len(sessions) != 0 {
			t.Fatalf("got %v, %v", sessions, err)
		}
		latest, err := FindLatestLog(filepath.Join(t.TempDir(), "missing"))
		if err != nil || latest != "" {
			t.Fatalf("got %q, %v", latest, err)
		}
	})

	t.Run("newest first", func(t *testing.T) {
		dir := t.TempDir()
		old := filepath.Join(dir, "a.jsonl")
		recent := filepath.Join(dir, "b.jsonl")
		for _, p := range []string{old, recent, filepath.Join(dir, "notes.txt")} {
			if err := os.WriteFile(p, nil, 0644); err != nil {
				t.Fatal(err)
			}
		}
		past := time.Now().Add(-time.Hour)
		if err := os.Chtimes(old, past, past); err != nil {
			t.Fatal(err)
		}

		sessions, err := FindSessions(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(sessions) != 2 {
			t.Fatalf("got %d sessions, want 2", len(sessions))
		}
		if sessions[0].ID != "b" || sessions[1].ID != "a" {
			t.Errorf("order: %s, %s", sessions[0].ID, sessions[1].ID)
		}
		latest, err := FindLatestLog(dir)
		if err != nil || latest != recent {
			t.Errorf("FindLatestLog: got %q, %v", latest, err)
		}
	})
}

func TestWriteHistory(t *testing.T) {
	logger, err := NewSessionLogger(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, cmd := range []string{"list", "todo a", "todo b"} {
		logger.Record(Event{Command: cmd, OK: true})
	}
	logger.Record(Event{Command: "blah", Error: "What are you saying??? Try again"})
	logger.Close()

	var buf bytes.Buffer
	if err := WriteHistory(&buf, logger.LogPath, 2); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "todo b") || !strings.HasSuffix(lines[0], "ok") {
		t.Errorf("line 0: %q", lines[0])
	}
	if !strings.Contains(lines[1], "error: What are you saying") {
		t.Errorf("line 1: %q", lines[1])
	}
}

func TestFindLogDir(t *testing.T) {
	work := t.TempDir()
	dir, err := FindLogDir("logs", work)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(dir, filepath.Join(work, "logs")) {
		t.Errorf("relative base should resolve against work dir, got %q", dir)
	}
	again, _ := FindLogDir("logs", work)
	if dir != again {
		t.Errorf("log dir not stable: %q vs %q", dir, again)
	}
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"":            "project",
		"my project":  "my_project",
		"a//b":        "a_b",
		"karen-go":    "karen-go",
		"!!!":         "project",
		"tasks.v2_ok": "tasks.v2_ok",
	}
	for in, want := range tests {
		if got := slugify(in); got != want {
			t.Errorf("slugify(%q): got %q, want %q", in, got, want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]log.Level{
		"debug":   log.DebugLevel,
		"INFO":    log.InfoLevel,
		"warning": log.WarnLevel,
		"error":   log.ErrorLevel,
		"fatal":   log.FatalLevel,
		"bogus":   log.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q): got %v, want %v", in, got, want)
		}
	}
}

func TestNewConsoleFromConfig(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleFromConfig(&buf, "info", "json", false, false)
	logger.Debug("hidden")
	logger.Info("task added", "count", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message should be filtered:\n%s", out)
	}
	for _, want := range []string{`"msg":"task added"`, `"count":3`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
}
