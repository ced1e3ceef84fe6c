package runner

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/OCAP2/flythrough/internal/runner"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// instruments are the trial metrics. They are no-ops unless an SDK is installed.
type instruments struct {
	trials   metric.Int64Counter
	duration metric.Float64Histogram
}

func newInstruments(m metric.Meter) (*instruments, error) {
	var (
		in  instruments
		err error
	)
	in.trials, err = m.Int64Counter(
		"flythrough.trials",
		metric.WithDescription("Trials executed, by outcome"),
		metric.WithUnit("{trial}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating trials counter: %w", err)
	}
	in.duration, err = m.Float64Histogram(
		"flythrough.trial.duration",
		metric.WithDescription("Wall time of one trial"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}
	return &in, nil
}

func (in *instruments) record(ctx context.Context, env string, outcome Outcome, took time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("env", env),
		attribute.String("outcome", string(outcome)),
	)
	// recorded after cancellation too
	ctx = context.WithoutCancel(ctx)
	in.trials.Add(ctx, 1, attrs)
	in.duration.Record(ctx, took.Seconds(), attrs)
}
