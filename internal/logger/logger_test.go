package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestToZapLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := toZapLevel(in); got != want {
			t.Errorf("toZapLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNormalizeLevel(t *testing.T) {
	if got := normalizeLevel("  WARN "); got != WarnLevel {
		t.Fatalf("normalizeLevel = %q, want %q", got, WarnLevel)
	}
}

func TestNamedAddsComponent(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := Wrap(zap.New(core)).Named("tracker")
	l.Infow("hello", "k", 1)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].LoggerName != "tracker" {
		t.Fatalf("logger name = %q, want tracker", entries[0].LoggerName)
	}
}

func TestNamedOnNilLogger(t *testing.T) {
	var l *Logger
	if l.Named("x") != nil {
		t.Fatalf("expected nil child for nil logger")
	}
}
