package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"Error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerComponentAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelWarn, Component: ComponentQuery, Output: &buf})
	l.Info("hidden")
	l.Warn("shown", FieldCount, 3)
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "component=query") || !strings.Contains(out, "count=3") {
		t.Fatalf("missing attributes: %s", out)
	}
	if l.WithComponent(ComponentHTTP).Component() != ComponentHTTP {
		t.Fatal("WithComponent did not switch component")
	}
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: slog.LevelInfo, Output: &buf}).With(FieldRequestID, "req-42")
	FromContext(NewContext(context.Background(), base)).Info("inside")
	if !strings.Contains(buf.String(), "request_id=req-42") {
		t.Fatalf("request id not propagated: %s", buf.String())
	}

	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext must fall back to a default logger")
	}
}

func TestStructuredLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Level: slog.LevelDebug, Output: &buf}))
	r := httptest.NewRequest(http.MethodGet, "/api/overview?month=2", nil)
	sl.LogHTTPEnd(context.Background(), r, 503, 12, "10.0.0.1")
	sl.LogError(context.Background(), "boom", errors.New("bad"), OpQuery, nil)
	out := buf.String()
	if !strings.Contains(out, "level=ERROR") || !strings.Contains(out, "status_code=503") {
		t.Fatalf("unexpected output: %s", out)
	}
	if !strings.Contains(out, "error=bad") {
		t.Fatalf("error field missing: %s", out)
	}
}
