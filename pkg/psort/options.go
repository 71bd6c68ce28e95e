package psort

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/fluxorio/ppqsort/pkg/core/concurrency"
)

// DefaultThreshold is the partition size below which work is not split further
const DefaultThreshold = 2048

type options struct {
	name      string
	threads   int
	threshold int
	policy    concurrency.FaultPolicy
	poolOpts  []concurrency.Option
}

// Option configures a sort call
type Option func(*options)

// WithThreads sets the number of workers; n < 1 uses concurrency.DefaultWorkers()
func WithThreads(n int) Option {
	return func(o *options) {
		o.threads = n
	}
}

// WithThreshold sets the base-case partition size; n < 1 is treated as 1
func WithThreshold(n int) Option {
	return func(o *options) {
		o.threshold = n
	}
}

// WithFaultPolicy selects what happens when compare panics
// FaultCollect (the default) returns the panic as an error; FaultCrash lets it
// escape and terminate the process, on the sequential path too.
func WithFaultPolicy(policy concurrency.FaultPolicy) Option {
	return func(o *options) {
		o.policy = policy
	}
}

// WithName names the pool used by the call in logs, metrics and spans
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger forwards logger to the pool
func WithLogger(logger concurrency.Logger) Option {
	return func(o *options) {
		o.poolOpts = append(o.poolOpts, concurrency.WithLogger(logger))
	}
}

// WithMetrics forwards recorder to the pool
func WithMetrics(recorder concurrency.MetricsRecorder) Option {
	return func(o *options) {
		o.poolOpts = append(o.poolOpts, concurrency.WithMetrics(recorder))
	}
}

// WithTracer forwards tracer to the pool
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.poolOpts = append(o.poolOpts, concurrency.WithTracer(tracer))
	}
}

func newOptions(opts []Option) options {
	o := options{
		name:      "psort",
		threads:   concurrency.AutoWorkers,
		threshold: DefaultThreshold,
		policy:    concurrency.FaultCollect,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.threads < 1 {
		o.threads = concurrency.DefaultWorkers()
	}
	if o.policy == "" {
		o.policy = concurrency.FaultCollect
	}
	if o.threshold < 1 {
		o.threshold = 1
	}
	return o
}
