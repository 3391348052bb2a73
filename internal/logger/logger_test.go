package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestDefaultIsNop(t *testing.T) {
	if Logger == nil {
		t.Fatal("logger should never be nil")
	}
	Logger.Info("dropped")
}

func TestInitialize(t *testing.T) {
	prev := Logger
	defer func() { Logger = prev }()

	if err := Initialize(false, "warn"); err != nil {
		t.Fatal(err)
	}
	if Logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !Logger.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("error should be enabled at warn level")
	}

	if err := Initialize(true, "debug"); err != nil {
		t.Fatal(err)
	}
	if !Logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug should be enabled")
	}
}

func TestInitializeBadLevel(t *testing.T) {
	if err := Initialize(false, "loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}
