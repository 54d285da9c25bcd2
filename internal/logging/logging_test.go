package logging

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warning", zapcore.WarnLevel},
		{" error ", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_WritesToFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "log.json")
	l, err := New(Config{Level: "debug", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	child := l.With(Field{Key: "component", Value: "test"})
	child.Debug("debug", Field{Key: "n", Value: 1})
	child.Info("info")
	child.Warn("warn")
	child.Error("error")
	_ = l.Sync()
}

func TestNopLogger_With(t *testing.T) {
	t.Parallel()

	n := NewNopLogger()
	if n.With(Field{Key: "k", Value: "v"}) != n {
		t.Error("NopLogger.With should return the same logger")
	}
}
