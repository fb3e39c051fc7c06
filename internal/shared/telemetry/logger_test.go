package telemetry

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWriteUsesFieldsAndLevel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(prev) })

	Debug("hidden", nil)
	Info("llm.attempt", map[string]any{"attempt": 2, "outcome": "success"})
	Error("llm.failed", map[string]any{"err": errors.New("boom")})

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	first := entries[0].ContextMap()
	if entries[0].Message != "llm.attempt" || first["outcome"] != "success" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Level != zapcore.ErrorLevel {
		t.Fatalf("expected error level, got %s", entries[1].Level)
	}
	if got := entries[1].ContextMap()["err"]; got != "boom" {
		t.Fatalf("unexpected err field: %v", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
