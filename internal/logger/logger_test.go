package logger

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestProductionLoggerWritesSeverity(t *testing.T) {
	var buf bytes.Buffer
	l := Service(NewWithWriter(&buf, "production"), "ClassService")

	l.Debug().Msg("hidden")
	l.Info().Msg("visible")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if entry["severity"] != "info" {
		t.Errorf("expected severity info, got %v", entry["severity"])
	}
	if entry["service"] != "ClassService" {
		t.Errorf("expected service field, got %v", entry["service"])
	}
}
