package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

// captureLogOutput captures log output for testing by temporarily
// redirecting the logger to write to a buffer
func captureLogOutput(f func()) string {
	var buf bytes.Buffer

	oldLogger := defaultLogger
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	defaultLogger = slog.New(handler)

	f()

	defaultLogger = oldLogger
	return buf.String()
}

// captureLogOutputWithInit captures output through InitLoggerWriter, so the
// ReplaceAttr logic is exercised.
func captureLogOutputWithInit(level Level, format Format, f func()) string {
	var buf bytes.Buffer
	InitLoggerWriter(&buf, level, format)
	f()
	InitLogger(LevelWarn, FormatText)
	return buf.String()
}

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name   string
		level  Level
		format Format
	}{
		{"Debug level JSON format", LevelDebug, FormatJSON},
		{"Info level JSON format", LevelInfo, FormatJSON},
		{"Warn level Text format", LevelWarn, FormatText},
		{"Error level Text format", LevelError, FormatText},
		{"Default level (invalid value)", Level(999), FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			InitLogger(tt.level, tt.format)
			if GetLogger() == nil {
				t.Error("Expected logger to be initialized, got nil")
			}
		})
	}
	InitLogger(LevelWarn, FormatText)
}

func TestInitLoggerLevelFilters(t *testing.T) {
	output := captureLogOutputWithInit(LevelWarn, FormatJSON, func() {
		Info("hidden")
		Warn("shown")
	})
	if strings.Contains(output, "hidden") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(output, "shown") {
		t.Error("warn message should be logged at warn level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{" warn ", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, err=%v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"Text", FormatText, false},
		{"", FormatText, false},
		{"xml", FormatText, true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v, err=%v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestGetRequestID(t *testing.T) {
	tests := []struct {
		name     string
		ctx      context.Context
		expected string
	}{
		{"Context with request ID", WithRequestID(context.Background(), "test-id"), "test-id"},
		{"Context without request ID", context.Background(), ""},
		{"Context with wrong type value", context.WithValue(context.Background(), RequestIDKey, 12345), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := GetRequestID(tt.ctx); result != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestStartRequest(t *testing.T) {
	ctx := StartRequest(context.Background())
	id := GetRequestID(ctx)
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("request ID %q is not a UUID: %v", id, err)
	}

	if again := StartRequest(ctx); GetRequestID(again) != id {
		t.Error("StartRequest should keep an existing request ID")
	}
	if NewRequestID() == NewRequestID() {
		t.Error("NewRequestID should not repeat")
	}
}

func TestLoggingFunctions(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{"Debug", func() { Debug("debug message", "key", "value") }},
		{"Info", func() { Info("info message", "key", "value") }},
		{"Warn", func() { Warn("warning message", "key", "value") }},
		{"Error", func() { Error("error message", "key", "value") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if output := captureLogOutput(tt.fn); output == "" {
				t.Error("Expected log output, got empty string")
			}
		})
	}
}

func TestContextLoggingFunctions(t *testing.T) {
	ctx := WithRequestID(context.Background(), "test-request-id")

	tests := []struct {
		name string
		fn   func()
	}{
		{"DebugContext", func() { DebugContext(ctx, "debug message") }},
		{"InfoContext", func() { InfoContext(ctx, "info message") }},
		{"WarnContext", func() { WarnContext(ctx, "warning message") }},
		{"ErrorContext", func() { ErrorContext(ctx, "error message") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := captureLogOutput(tt.fn)
			if !strings.Contains(output, "test-request-id") {
				t.Errorf("Expected output to contain request ID, got %q", output)
			}
		})
	}
}

func decode(t *testing.T, output string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(output)), &m); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, output)
	}
	return m
}

func TestLookupMiss(t *testing.T) {
	output := captureLogOutput(func() {
		LookupMiss(context.Background(), "H9999", []string{"H9999"}, "row", 3)
	})
	m := decode(t, output)
	if m["msg"] != "lookup_miss" || m["code"] != "H9999" || m["row"] != float64(3) {
		t.Errorf("unexpected record: %v", m)
	}
	if m["level"] != "DEBUG" {
		t.Errorf("level = %v, want DEBUG", m["level"])
	}
}

func TestLookupFallback(t *testing.T) {
	output := captureLogOutput(func() {
		LookupFallback(context.Background(), "H1254a", "H1254A", "flip-case")
	})
	m := decode(t, output)
	if m["msg"] != "lookup_fallback" || m["matched"] != "H1254A" || m["step"] != "flip-case" {
		t.Errorf("unexpected record: %v", m)
	}
}

func TestSourceError(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	output := captureLogOutput(func() {
		SourceError(ctx, "Barnes", "query", errors.New("disk I/O error"))
	})
	m := decode(t, output)
	if m["msg"] != "source_error" || m["source"] != "Barnes" || m["error"] != "disk I/O error" {
		t.Errorf("unexpected record: %v", m)
	}
	if m["level"] != "WARN" || m["request_id"] != "req-1" {
		t.Errorf("unexpected level or request id: %v", m)
	}
}

func TestCommand(t *testing.T) {
	ok := decode(t, captureLogOutput(func() {
		Command(context.Background(), "vocab", 1500*time.Millisecond, nil)
	}))
	if ok["level"] != "INFO" || ok["command"] != "vocab" || ok["duration_ms"] != float64(1500) {
		t.Errorf("unexpected record: %v", ok)
	}

	failed := decode(t, captureLogOutput(func() {
		Command(context.Background(), "vocab", time.Millisecond, errors.New("boom"))
	}))
	if failed["level"] != "ERROR" || failed["error"] != "boom" {
		t.Errorf("unexpected record: %v", failed)
	}
}

func TestReplaceAttrTimestamp(t *testing.T) {
	output := captureLogOutputWithInit(LevelInfo, FormatJSON, func() {
		Info("timestamp test")
	})
	m := decode(t, output)
	ts, ok := m["time"].(string)
	if !ok {
		t.Fatalf("time attribute missing: %v", m)
	}
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Errorf("time %q is not RFC3339: %v", ts, err)
	}
}

func TestTextFormat(t *testing.T) {
	output := captureLogOutputWithInit(LevelInfo, FormatText, func() {
		Info("test message text", "key", "value")
	})
	if !strings.Contains(output, `msg="test message text"`) || !strings.Contains(output, "key=value") {
		t.Errorf("unexpected text output: %q", output)
	}
}

func TestInit(t *testing.T) {
	if defaultLogger == nil {
		t.Error("Expected defaultLogger to be initialized by init()")
	}
}

func TestLevelConstants(t *testing.T) {
	if !(LevelDebug < LevelInfo && LevelInfo < LevelWarn && LevelWarn < LevelError) {
		t.Error("log levels are out of order")
	}
}
