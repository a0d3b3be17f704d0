// otelnotify instruments pgxnotify handlers with OpenTelemetry traces and
// metrics. Wrapping is pure decoration: an unwrapped handler behaves
// identically.
package otelnotify

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/rnovatorov/pgxnotify"
)

const scopeName = "github.com/rnovatorov/pgxnotify/otelnotify"

type config struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

type option func(*config)

func WithTracerProvider(tp trace.TracerProvider) option {
	return func(c *config) {
		c.tracerProvider = tp
	}
}

func WithMeterProvider(mp metric.MeterProvider) option {
	return func(c *config) {
		c.meterProvider = mp
	}
}

// WrapHandler returns a handler that surrounds each call of next with a
// span named "Notification #<channel>" ("Notification timeout #<channel>"
// for Timeout events) and records the handling duration against the channel
// name.
func WrapHandler(next pgxnotify.Handler, opts ...option) pgxnotify.Handler {
	c := config{
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(&c)
	}

	tracer := c.tracerProvider.Tracer(scopeName)

	duration, err := c.meterProvider.Meter(scopeName).Float64Histogram(
		"pgxnotify.handle.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Time spent handling one event."),
	)
	if err != nil {
		otel.Handle(err)
	}

	return func(ctx context.Context, event pgxnotify.Event) error {
		ctx, span := tracer.Start(ctx, spanName(event))
		defer span.End()

		start := time.Now()
		err := next(ctx, event)
		elapsed := time.Since(start)

		if duration != nil {
			duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
				attribute.String("channel", eventChannel(event)),
			))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	}
}

func spanName(event pgxnotify.Event) string {
	switch e := event.(type) {
	case pgxnotify.Notification:
		return "Notification #" + e.Channel
	case pgxnotify.Timeout:
		return "Notification timeout #" + e.Channel
	default:
		return "Notification"
	}
}

func eventChannel(event pgxnotify.Event) string {
	switch e := event.(type) {
	case pgxnotify.Notification:
		return e.Channel
	case pgxnotify.Timeout:
		return e.Channel
	default:
		return ""
	}
}
