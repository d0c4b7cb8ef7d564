package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, err=%v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestNewLoggerFiltersByLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	if _, err := newLogger(&buf, "warn"); err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}

	slog.Info("hidden")
	slog.Warn("shown", "matchup_period", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("Expected info records filtered at warn level")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "matchup_period=3") {
		t.Errorf("Expected warn record with attrs, got %q", out)
	}
}
