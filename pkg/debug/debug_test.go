package debug

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestLogRespectsEnabled(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	prev := Enabled()
	defer SetEnabled(prev)

	SetEnabled(false)
	Log("hidden %d", 1)
	if buf.Len() != 0 {
		t.Fatalf("expected no output while disabled, got %q", buf.String())
	}

	SetEnabled(true)
	Log("shown %d", 2)
	if !strings.Contains(buf.String(), "shown 2") {
		t.Fatalf("expected log line, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), prefix) {
		t.Errorf("expected prefix %q in %q", prefix, buf.String())
	}
}

func TestLogEnterExit(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	prev := Enabled()
	defer SetEnabled(prev)
	SetEnabled(true)

	LogEnterExit("work")()
	out := buf.String()
	if !strings.Contains(out, "-> work") || !strings.Contains(out, "<- work took") {
		t.Errorf("missing enter/exit lines in %q", out)
	}
}

func TestLogTiming(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	prev := Enabled()
	defer SetEnabled(prev)

	SetEnabled(false)
	LogTiming("parse", time.Millisecond)
	if buf.Len() != 0 {
		t.Fatalf("disabled logger wrote %q", buf.String())
	}

	SetEnabled(true)
	LogTiming("parse", 2*time.Millisecond)
	if !strings.Contains(buf.String(), "parse took 2ms") {
		t.Errorf("timing line missing in %q", buf.String())
	}
}
