// Package tracing builds OpenTelemetry tracer providers for pool task spans.
package tracing

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Exporter names accepted by Config.Exporter
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterZipkin = "zipkin"
)

// Config selects where spans go
type Config struct {
	Exporter    string    // none (or empty), stdout or zipkin
	Endpoint    string    // zipkin collector URL, e.g. http://localhost:9411/api/v2/spans
	ServiceName string    // service.name resource attribute
	Writer      io.Writer // stdout exporter destination; os.Stdout when nil
}

// NewTracerProvider creates an SDK tracer provider for cfg
// Callers own the provider and must Shutdown it to flush batched spans
func NewTracerProvider(ctx context.Context, cfg Config) (*sdktrace.TracerProvider, error) {
	name := cfg.ServiceName
	if name == "" {
		name = "ppqsort"
	}
	res := resource.NewSchemaless(attribute.String("service.name", name))

	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}

	switch cfg.Exporter {
	case "", ExporterNone:
	case ExporterStdout:
		w := cfg.Writer
		if w == nil {
			w = os.Stdout
		}
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithSyncer(exporter))
	case ExporterZipkin:
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("zipkin exporter requires an endpoint")
		}
		exporter, err := zipkin.New(cfg.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to create zipkin exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", cfg.Exporter)
	}

	return sdktrace.NewTracerProvider(opts...), nil
}
