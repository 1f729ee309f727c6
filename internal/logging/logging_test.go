package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("info", &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Debug().Msg("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected debug entry to be filtered, got %q", buf.String())
	}

	component := Component(logger, "render")
	component.Info().Msg("rendered")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log: %v", err)
	}
	if entry["cmp"] != "render" {
		t.Errorf("cmp = %v, want %q", entry["cmp"], "render")
	}
	if entry["message"] != "rendered" {
		t.Errorf("message = %v, want %q", entry["message"], "rendered")
	}
	if _, ok := entry["time"]; !ok {
		t.Error("expected a timestamp")
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New("loud", nil); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}
