package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Level: "warn", Format: FormatJSON, Out: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	log.Info().Msg("hidden")
	log.Warn().Int("floor", 3).Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Info line leaked through warn level: %s", out)
	}
	if !strings.Contains(out, `"floor":3`) || !strings.Contains(out, "shown") {
		t.Errorf("Expected warn line with fields, got %s", out)
	}
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Out: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	log.Info().Msg("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("Expected console output, got %q", buf.String())
	}
}

func TestNew_Rejects(t *testing.T) {
	if _, err := New(Options{Level: "loud"}); err == nil {
		t.Error("Expected error for unknown level")
	}
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Error("Expected error for unknown format")
	}
}
