package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDebug_GatesDebugMessages(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := zap.New(core)

	Debug(base, false).Debug("hidden")
	Debug(base, true).Debug("shown")
	Debug(base, false).Info("info always")

	if logs.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", logs.Len())
	}
	if logs.All()[0].Message != "shown" {
		t.Fatalf("unexpected first entry %q", logs.All()[0].Message)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSetLevel_ChangesRootLogger(t *testing.T) {
	l := L()
	t.Cleanup(func() { SetLevel("info") })

	SetLevel("warn")
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("info should be disabled at warn")
	}
	SetLevel("debug")
	if !l.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("debug should be enabled after SetLevel(debug)")
	}
}

func TestIsProd(t *testing.T) {
	for env, want := range map[string]bool{"prod": true, "Production": true, "dev": false, "": false} {
		if isProd(env) != want {
			t.Fatalf("isProd(%q) = %v", env, !want)
		}
	}
}
