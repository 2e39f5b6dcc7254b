package logger

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(LoggingConfig{Level: "debug"})
	log.SetOutput(&buf)

	log.WithField("user_id", 42).Info("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if entry["message"] != "hello" {
		t.Fatalf("unexpected message: %v", entry["message"])
	}
	if entry["user_id"] != float64(42) {
		t.Fatalf("expected user_id field, got %v", entry["user_id"])
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := New(LoggingConfig{Level: "warn"})
	log.SetOutput(&buf)

	log.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered at warn level, got %q", buf.String())
	}

	log.Warn("kept")
	if buf.Len() == 0 {
		t.Fatalf("expected warn output")
	}
}
