package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize text logger: %v", err)
	}
	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}

	if err := Init(WithFormat("json")); err != nil {
		t.Fatalf("failed to initialize json logger: %v", err)
	}
	if !Initialized() {
		t.Fatal("logger should report initialized")
	}

	if err := Init(WithFormat("xml")); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithWriter(&buf), WithFormat("json")); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	Named("optimizer").Info(context.Background(), "annealing finished",
		Int("iterations", 5000),
		Float64("best", 0.125),
		Bool("valid", true),
		Duration("elapsed", 2*time.Second),
		Error(errors.New("boom")),
	)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log line is not json: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "annealing finished" {
		t.Fatalf("unexpected msg: %v", rec["msg"])
	}
	group, ok := rec["optimizer"].(map[string]any)
	if !ok {
		t.Fatalf("expected optimizer group, got %v", rec)
	}
	if group["iterations"] != float64(5000) {
		t.Errorf("unexpected iterations: %v", group["iterations"])
	}
	if src, _ := group["source"].(string); !strings.Contains(src, "logger_test.go") {
		t.Errorf("source should point at the caller, got %q", src)
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithWriter(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	ctx := context.Background()
	Get().Debug(ctx, "hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug should be filtered at info level, got %q", buf.String())
	}

	if err := SetLevelString("debug"); err != nil {
		t.Fatalf("set level: %v", err)
	}
	Get().Debug(ctx, "visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("debug should be emitted after SetLevelString(debug), got %q", buf.String())
	}

	if err := SetLevelString("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	_ = SetLevelString("info")
}

func TestNopLogger(t *testing.T) {
	l := Nop()
	if l == nil {
		t.Fatal("nop logger is nil")
	}
	l.Named("x").Error(context.Background(), "discarded", String("k", "v"))
}
