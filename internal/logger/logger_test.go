package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestNewLogger(t *testing.T) {
	for _, env := range []string{"prod", "local", "dev", "docker"} {
		if _, err := NewLogger(env, ""); err != nil {
			t.Errorf("env %q: unexpected error: %v", env, err)
		}
	}
}

func TestNewLogger_UnknownEnv(t *testing.T) {
	if _, err := NewLogger("staging", ""); err == nil {
		t.Error("expected error for unknown environment")
	}
}

func TestNewLogger_LevelOverride(t *testing.T) {
	l, err := NewLogger("prod", "debug")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !l.Core().Enabled(zap.DebugLevel) {
		t.Error("expected debug level to be enabled")
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	if _, err := NewLogger("prod", "verbose"); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestFromContext(t *testing.T) {
	l := zap.NewNop()
	ctx := ContextWithLogger(context.Background(), l)
	if FromContext(ctx) != l {
		t.Error("expected stored logger back")
	}
	if FromContext(context.Background()) == nil {
		t.Error("expected fallback logger, got nil")
	}
}
