package searchbot

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	DefaultTracingOutput      = "stderr"
	DefaultTracingServiceName = "search-bot"
)

// TracingConfig controls span export. Spans are written as JSON lines to
// stdout, stderr or a file.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Output      string  `yaml:"output"`
	PrettyPrint bool    `yaml:"pretty_print"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

func (c TracingConfig) withDefaults() TracingConfig {
	if c.Output == "" {
		c.Output = DefaultTracingOutput
	}
	if c.ServiceName == "" {
		c.ServiceName = DefaultTracingServiceName
	}
	if c.SampleRatio <= 0 || c.SampleRatio > 1 {
		c.SampleRatio = 1
	}
	return c
}

// SetupTracing installs a global tracer provider when tracing is enabled.
// The returned function flushes pending spans and must be called before exit.
func SetupTracing(cfg TracingConfig) (func(context.Context) error, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}
	cfg = cfg.withDefaults()

	var out io.Writer
	var file *os.File
	switch cfg.Output {
	case "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	default:
		var err error
		file, err = os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open trace output: %w", err)
		}
		out = file
	}

	opts := []stdouttrace.Option{stdouttrace.WithWriter(out)}
	if cfg.PrettyPrint {
		opts = append(opts, stdouttrace.WithPrettyPrint())
	}
	exporter, err := stdouttrace.New(opts...)
	if err != nil {
		if file != nil {
			_ = file.Close()
		}
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
	otel.SetTracerProvider(provider)

	return func(ctx context.Context) error {
		err := provider.Shutdown(ctx)
		if file != nil {
			if closeErr := file.Close(); err == nil {
				err = closeErr
			}
		}
		return err
	}, nil
}
