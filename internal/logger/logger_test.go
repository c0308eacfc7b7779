package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"Warn", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
		{"", LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)
	l.SetLevel(LevelWarn)

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("Expected debug/info filtered at warn level, got:\n%s", out)
	}
	if !strings.Contains(out, "[WARN] warn message") {
		t.Errorf("Expected warn message, got:\n%s", out)
	}
	if !strings.Contains(out, "[ERROR] error message") {
		t.Errorf("Expected error message, got:\n%s", out)
	}
}

func TestLogFormatting(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)
	l.SetLevel(LevelDebug)

	l.Info("record %s saved as %s", "rec-1", "2024-000001")

	if !strings.Contains(buf.String(), "[INFO] record rec-1 saved as 2024-000001") {
		t.Errorf("Unexpected log output:\n%s", buf.String())
	}
}

func TestLevelString(t *testing.T) {
	if LevelDebug.String() != "DEBUG" || LevelError.String() != "ERROR" {
		t.Errorf("Unexpected level strings: %s %s", LevelDebug, LevelError)
	}
	if Level(42).String() != "UNKNOWN" {
		t.Errorf("Expected UNKNOWN for out-of-range level")
	}
}
