package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestObserver_LogEvent(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	o := NewObserver(zap.New(core))

	o.LogEvent("search.completed", map[string]any{"strategy": "rrf", "results": 3})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["event"] != "search.completed" {
		t.Errorf("event = %v", ctx["event"])
	}
	if ctx["strategy"] != "rrf" {
		t.Errorf("strategy = %v", ctx["strategy"])
	}
	if entries[0].LoggerName != "events" {
		t.Errorf("logger name = %q", entries[0].LoggerName)
	}
}

func TestObserver_NilLogger(t *testing.T) {
	NewObserver(nil).LogEvent("noop", nil)
	NopObserver{}.LogEvent("noop", map[string]any{"a": 1})
}
