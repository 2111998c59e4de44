package debug

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func withBuffer(t *testing.T) *bytes.Buffer {
	t.Helper()
	prevEnabled := enabled
	prevLogger := logger
	t.Cleanup(func() {
		enabled = prevEnabled
		logger = prevLogger
	})
	var buf bytes.Buffer
	SetEnabled(true)
	SetOutput(&buf)
	return &buf
}

func TestLog_DisabledIsSilent(t *testing.T) {
	buf := withBuffer(t)
	SetEnabled(false)

	Log("hidden %d", 1)
	LogTiming("hidden", time.Millisecond)
	Section("hidden")

	if buf.Len() != 0 {
		t.Fatalf("expected no output while disabled, got %q", buf.String())
	}
}

func TestLog_EnabledWritesPrefixedLines(t *testing.T) {
	buf := withBuffer(t)

	Log("dropped edge %s -> %s", "A", "E1")
	LogIf(false, "never")
	LogIf(true, "conditional %s", "yes")

	out := buf.String()
	if !strings.Contains(out, "[INTELLECT]") {
		t.Errorf("missing prefix in %q", out)
	}
	if !strings.Contains(out, "dropped edge A -> E1") {
		t.Errorf("missing formatted message in %q", out)
	}
	if strings.Contains(out, "never") {
		t.Errorf("LogIf(false) should not log, got %q", out)
	}
	if !strings.Contains(out, "conditional yes") {
		t.Errorf("LogIf(true) should log, got %q", out)
	}
}

func TestLogEnterExit(t *testing.T) {
	buf := withBuffer(t)

	done := LogEnterExit("rebind")
	done()

	out := buf.String()
	if !strings.Contains(out, "-> rebind") || !strings.Contains(out, "<- rebind") {
		t.Errorf("expected enter/exit lines, got %q", out)
	}
}

func TestSection(t *testing.T) {
	buf := withBuffer(t)
	Section("settle")
	if !strings.Contains(buf.String(), "=== settle ===") {
		t.Errorf("missing section header in %q", buf.String())
	}
}
