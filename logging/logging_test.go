package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLogHandlerWritesLevelAndMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, nil)

	logger.Warn("way references non-existing node", "way", int64(10), "node", int64(999))

	out := buf.String()
	if !strings.Contains(out, "WARN") {
		t.Fatalf("expected level in output, got %q", out)
	}
	if !strings.Contains(out, "way references non-existing node") {
		t.Fatalf("expected message in output, got %q", out)
	}
	if !strings.Contains(out, "way=10") || !strings.Contains(out, "node=999") {
		t.Fatalf("expected structured attrs in output, got %q", out)
	}
}

func TestLogHandlerRespectsLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})

	logger.Debug("should not appear")
	logger.Warn("should appear")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Fatalf("expected debug record to be filtered out, got %q", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Fatalf("expected warn record to appear, got %q", out)
	}
}

func TestLogHandlerWithAttrsPersistsAcrossCalls(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, nil).With("component", "osmgraph")

	logger.Info("building")

	if !strings.Contains(buf.String(), "component=osmgraph") {
		t.Fatalf("expected persisted attr in output, got %q", buf.String())
	}
}
