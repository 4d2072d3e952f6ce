package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/wakili/backend/internal/config"
)

func TestNewWithWriter_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, config.LoggingConfig{Level: "debug", Format: "JSON"})

	logger.Debug("booking created", "bookingId", "BK-1")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json log line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "booking created" {
		t.Errorf("unexpected msg %v", entry["msg"])
	}
	if entry["bookingId"] != "BK-1" {
		t.Errorf("unexpected bookingId %v", entry["bookingId"])
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		" error ": slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
