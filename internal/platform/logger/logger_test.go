package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedactsSecretKeys(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar(), redact: true}

	l.Info("upstream configured", "api_key", "sk-live-123", "model", "gpt-4o-mini", "max_tokens", 1500)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries=%d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["api_key"] != "[REDACTED]" {
		t.Fatalf("api_key not redacted: %v", fields["api_key"])
	}
	if fields["model"] != "gpt-4o-mini" {
		t.Fatalf("model=%v", fields["model"])
	}
	if fields["max_tokens"] != int64(1500) {
		t.Fatalf("max_tokens=%v (%T)", fields["max_tokens"], fields["max_tokens"])
	}
}

func TestRedactionDisabled(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar(), redact: false}

	l.With("authorization", "Bearer abc").Warn("raw")

	fields := logs.All()[0].ContextMap()
	if fields["authorization"] != "Bearer abc" {
		t.Fatalf("authorization=%v", fields["authorization"])
	}
}
