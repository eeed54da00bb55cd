package query

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "sports-scoreboard/internal/platform/query"

type instruments struct {
	hits     metric.Int64Counter
	misses   metric.Int64Counter
	fetches  metric.Int64Counter
	failures metric.Int64Counter
}

func newInstruments(meter metric.Meter) instruments {
	if meter == nil {
		meter = otel.Meter(meterName)
	}
	fallback := noop.NewMeterProvider().Meter(meterName)

	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		if err != nil {
			c, _ = fallback.Int64Counter(name)
		}
		return c
	}

	return instruments{
		hits:     counter("query.cache.hits", "Observations served from fresh cached data"),
		misses:   counter("query.cache.misses", "Observations that required a fetch"),
		fetches:  counter("query.fetch.total", "Producer invocations including retries"),
		failures: counter("query.fetch.failures", "Fetches that settled in the error state"),
	}
}

func keyAttrs(key Key) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("query.kind", key.Kind),
		attribute.String("query.league", key.League),
	)
}

func (i instruments) add(ctx context.Context, c metric.Int64Counter, key Key) {
	c.Add(ctx, 1, keyAttrs(key))
}
