package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]Level{
		"debug":   LevelDebug,
		" WARN ":  LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for raw, want := range cases {
		if got := ParseLevel(raw); got != want {
			t.Fatalf("ParseLevel(%q)=%s, want %s", raw, got, want)
		}
	}
}

func TestLogger_FieldsFromKeyValues(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(LevelDebug)
	logger := FromZap(zap.New(core)).With("component", "espn")

	logger.WarnContext(context.Background(), "provider failed", "status_code", 503, "error", errors.New("boom"), "dangling")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["component"] != "espn" {
		t.Fatalf("unexpected component field: %v", fields["component"])
	}
	if fields["status_code"] != int64(503) {
		t.Fatalf("unexpected status_code field: %#v", fields["status_code"])
	}
	if fields["error"] != "boom" {
		t.Fatalf("unexpected error field: %v", fields["error"])
	}
	if _, ok := fields["dangling"]; !ok {
		t.Fatalf("expected dangling key to be kept")
	}
}

func TestNew_WritesJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, LevelInfo)
	logger.Debug("hidden")
	logger.Info("visible", "league", "NBA")
	_ = logger.Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %q", len(lines), buf.String())
	}

	var decoded map[string]any
	if err := sonic.Unmarshal([]byte(lines[0]), &decoded); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if decoded["msg"] != "visible" || decoded["league"] != "NBA" || decoded["level"] != "INFO" {
		t.Fatalf("unexpected log line: %v", decoded)
	}
}

func TestNilLogger_FallsBackToDefault(t *testing.T) {
	t.Parallel()

	var logger *Logger
	logger.Info("no panic")
	if logger.With("k", "v") == nil {
		t.Fatalf("expected non-nil logger from nil receiver")
	}
}
