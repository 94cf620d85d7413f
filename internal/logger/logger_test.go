package logger

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFieldsReachTheCore(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core)).Named("links").With(String("store", "memory"))

	log.Warn("link write failed", String("op", "add"), Error(errors.New("boom")))
	log.Infof("imported %d links", 3)

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	first := entries[0]
	if first.LoggerName != "links" || first.Level != zapcore.WarnLevel {
		t.Errorf("unexpected entry %+v", first.Entry)
	}
	ctx := first.ContextMap()
	if ctx["store"] != "memory" || ctx["op"] != "add" || ctx["error"] != "boom" {
		t.Errorf("unexpected fields %v", ctx)
	}
	if entries[1].Message != "imported 3 links" {
		t.Errorf("Infof message = %q", entries[1].Message)
	}
}

func TestNewHonorsLevel(t *testing.T) {
	tests := []struct {
		level  string
		pretty bool
		debug  bool
	}{
		{"error", false, false},
		{"debug", false, true},
		{"bogus", false, false}, // production default is info
		{"", true, true},        // development default is debug
	}
	for _, tt := range tests {
		l := New(tt.level, tt.pretty).(*zapLogger)
		if got := l.Core().Enabled(zapcore.DebugLevel); got != tt.debug {
			t.Errorf("New(%q, %v) debug enabled = %v, want %v", tt.level, tt.pretty, got, tt.debug)
		}
	}
}
