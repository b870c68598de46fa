package observability

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"

	"github.com/signalsfoundry/linkbudget/internal/logging"
)

func TestTracingConfigFromEnvDefaults(t *testing.T) {
	t.Setenv("LINKBUDGET_TRACING_ENABLED", "")
	t.Setenv("LINKBUDGET_TRACING_EXPORTER", "")
	t.Setenv("LINKBUDGET_TRACING_SERVICE_NAME", "")
	t.Setenv("LINKBUDGET_TRACING_SAMPLE_RATIO", "")

	cfg := TracingConfigFromEnv()
	if cfg.Enabled {
		t.Fatalf("tracing should be disabled by default")
	}
	if cfg.Exporter != "stdout" || cfg.ServiceName != "linkbudget" || cfg.SampleRatio != 1 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestTracingConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("LINKBUDGET_TRACING_ENABLED", "TRUE")
	t.Setenv("LINKBUDGET_TRACING_EXPORTER", "OTLP")
	t.Setenv("LINKBUDGET_TRACING_SERVICE_NAME", "budget-batch")
	t.Setenv("LINKBUDGET_TRACING_SAMPLE_RATIO", "0.25")
	t.Setenv("LINKBUDGET_OTLP_ENDPOINT", "collector:4317")

	cfg := TracingConfigFromEnv()
	if !cfg.Enabled || cfg.Exporter != "otlp" || cfg.ServiceName != "budget-batch" ||
		cfg.SampleRatio != 0.25 || cfg.Endpoint != "collector:4317" {
		t.Fatalf("unexpected config %+v", cfg)
	}

	t.Setenv("LINKBUDGET_TRACING_SAMPLE_RATIO", "7")
	if got := TracingConfigFromEnv().SampleRatio; got != 1 {
		t.Fatalf("out-of-range ratio should fall back to 1, got %v", got)
	}
}

func TestInitTracingDisabledIsNoop(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), TracingConfig{}, nil)
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}
	_, span := Tracer().Start(context.Background(), "noop")
	if span.SpanContext().IsValid() {
		t.Fatalf("noop provider should produce invalid span contexts")
	}
	span.End()
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestInitTracingStdoutExporter(t *testing.T) {
	defer otel.SetTracerProvider(otel.GetTracerProvider())

	var buf bytes.Buffer
	shutdown, err := InitTracing(context.Background(), TracingConfig{
		Enabled:     true,
		ServiceName: "linkbudget-test",
		Exporter:    "stdout",
		SampleRatio: 1,
		Writer:      &buf,
	}, nil)
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}

	_, span := Tracer().Start(context.Background(), "Evaluate")
	span.End()
	ShutdownWithTimeout(context.Background(), shutdown, nil)

	if !strings.Contains(buf.String(), `"Name": "Evaluate"`) {
		t.Fatalf("expected exported span in output, got %q", buf.String())
	}
}

// A one-shot run exports each span as it ends and tags the process that
// produced it.
func TestInitTracingStdoutIsSynchronous(t *testing.T) {
	defer otel.SetTracerProvider(otel.GetTracerProvider())

	var buf, logs bytes.Buffer
	ctx := logging.ContextWithLogger(context.Background(),
		logging.New(logging.Config{Level: "info", Format: "json", Output: &logs}))
	shutdown, err := InitTracing(ctx, TracingConfig{
		Enabled:        true,
		ServiceName:    "linkbudget-test",
		ServiceVersion: "1.2.3",
		Exporter:       "stdout",
		SampleRatio:    1,
		Writer:         &buf,
	}, nil)
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}
	defer ShutdownWithTimeout(ctx, shutdown, nil)

	_, span := Tracer().Start(context.Background(), "SensitivityTable")
	span.End()

	out := buf.String()
	for _, want := range []string{`"Name": "SensitivityTable"`, `"service.version"`, `"1.2.3"`, `"process.pid"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s before shutdown, got %q", want, out)
		}
	}
	if !strings.Contains(logs.String(), `"sampler":"AlwaysOnSampler"`) {
		t.Fatalf("expected tracing log on the context logger, got %q", logs.String())
	}
}

func TestInitTracingRatioSamplerIgnoresParent(t *testing.T) {
	defer otel.SetTracerProvider(otel.GetTracerProvider())

	var logs bytes.Buffer
	log := logging.New(logging.Config{Level: "info", Format: "json", Output: &logs})
	shutdown, err := InitTracing(context.Background(), TracingConfig{
		Enabled:     true,
		ServiceName: "linkbudget-test",
		Exporter:    "stdout",
		SampleRatio: 0.5,
		Writer:      &bytes.Buffer{},
	}, log)
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}
	defer ShutdownWithTimeout(context.Background(), shutdown, log)

	if !strings.Contains(logs.String(), `"sampler":"TraceIDRatioBased{0.5}"`) {
		t.Fatalf("expected a plain ratio sampler, got %q", logs.String())
	}
}

func TestInitTracingRejectsUnknownExporter(t *testing.T) {
	_, err := InitTracing(context.Background(), TracingConfig{Enabled: true, Exporter: "zipkin"}, nil)
	if err == nil || !strings.Contains(err.Error(), "unsupported tracing exporter") {
		t.Fatalf("expected unsupported exporter error, got %v", err)
	}
}
