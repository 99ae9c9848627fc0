package telemetry

import (
	"context"
	"fmt"
	"log"
	"yatube/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

type ShutdownFunc func(context.Context) error

// Init настраивает экспорт трейсов по OTLP/HTTP.
// Без telemetry.endpoint трейсинг выключен и возвращается пустой shutdown.
func Init(ctx context.Context, conf *config.ConfigSchema) (ShutdownFunc, error) {
	noop := func(context.Context) error { return nil }
	if conf == nil || conf.Telemetry.Endpoint == "" {
		return noop, nil
	}

	exp, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(conf.Telemetry.Endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return noop, fmt.Errorf("otel exporter: %w", err)
	}
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(conf.Telemetry.ServiceName),
		attribute.String("db.driver", conf.Databases.Driver),
	)
	tp := trace.NewTracerProvider(trace.WithBatcher(exp), trace.WithResource(res))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
	log.Printf("Tracing enabled, exporting to %s", conf.Telemetry.Endpoint)
	return tp.Shutdown, nil
}
