package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestJSONLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "json", Output: &buf})

	log.With(String("link", "ka-leo")).Info(context.Background(), "evaluated",
		Float("snr_db", 5.1),
		Int("steps", 3),
		Bool("ok", true),
		Err(errors.New("boom")),
	)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected one JSON record, got %q: %v", buf.String(), err)
	}
	if rec["msg"] != "evaluated" || rec["link"] != "ka-leo" {
		t.Fatalf("unexpected record %v", rec)
	}
	if rec["snr_db"] != 5.1 || rec["steps"] != float64(3) || rec["ok"] != true || rec["error"] != "boom" {
		t.Fatalf("unexpected fields %v", rec)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Output: &buf})

	log.Info(context.Background(), "hidden")
	log.Warn(context.Background(), "shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info record should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("warn record missing: %q", out)
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	if got := parseLevel("nonsense"); got.Level().String() != "INFO" {
		t.Fatalf("parseLevel(nonsense) = %v, want INFO", got)
	}
	if got := parseLevel("WARNING"); got.Level().String() != "WARN" {
		t.Fatalf("parseLevel(WARNING) = %v, want WARN", got)
	}
}

func TestContextLogger(t *testing.T) {
	ctx := context.Background()
	if LoggerFromContext(ctx) != nil {
		t.Fatalf("expected no logger on a bare context")
	}
	ctx = ContextWithLogger(ctx, nil)
	if _, ok := LoggerFromContext(ctx).(noopLogger); !ok {
		t.Fatalf("nil logger should be stored as noop")
	}
	if Err(nil).Value != "" {
		t.Fatalf("Err(nil) should carry an empty string")
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", " debug ")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_SOURCE", "true")

	cfg := ConfigFromEnv()
	if cfg.Level != "debug" || cfg.Format != "json" || !cfg.AddSource {
		t.Fatalf("ConfigFromEnv() = %+v, want debug/json with source", cfg)
	}

	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("LOG_SOURCE", "nope")
	if cfg := ConfigFromEnv(); cfg.Level != "" || cfg.Format != "" || cfg.AddSource {
		t.Fatalf("ConfigFromEnv() with unset vars = %+v, want zero", cfg)
	}
}

func TestResolve(t *testing.T) {
	var buf, other bytes.Buffer
	fromCtx := New(Config{Format: "json", Output: &buf})
	explicit := New(Config{Output: &other})

	ctx := ContextWithLogger(context.Background(), fromCtx)
	if got := Resolve(ctx, explicit); got != explicit {
		t.Fatalf("Resolve should prefer the explicit logger")
	}
	Resolve(ctx, nil).Info(ctx, "from context", Bool("visible", true))
	if !strings.Contains(buf.String(), `"visible":true`) {
		t.Fatalf("expected the context logger to be used, got %q", buf.String())
	}
	if _, ok := Resolve(context.Background(), nil).(noopLogger); !ok {
		t.Fatalf("Resolve on a bare context should return noop")
	}
}
