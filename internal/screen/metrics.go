package screen

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/nimbusview/nimbus/internal/screen"

// Metrics holds the OpenTelemetry instruments for screen loads.
type Metrics struct {
	loads        metric.Int64Counter
	loadDuration metric.Float64Histogram
}

// NewMetrics creates the load instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	loads, err := meter.Int64Counter(
		"screen.load.total",
		metric.WithDescription("Screen loads by outcome"),
		metric.WithUnit("{load}"),
	)
	if err != nil {
		return nil, err
	}

	loadDuration, err := meter.Float64Histogram(
		"screen.load.duration",
		metric.WithDescription("Time from issuing a load to its completion"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{loads: loads, loadDuration: loadDuration}, nil
}

func (m *Metrics) recordOutcome(ctx context.Context, outcome string, kind ErrorKind) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String("outcome", outcome)}
	if kind != ErrorNone {
		attrs = append(attrs, attribute.String("error_kind", string(kind)))
	}
	m.loads.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) recordDuration(ctx context.Context, seconds float64) {
	if m == nil {
		return
	}
	m.loadDuration.Record(ctx, seconds)
}
