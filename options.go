package scango

import (
	"log/slog"

	"github.com/hupe1980/scango/similarity"
)

type options struct {
	measure          similarity.Measure
	parallelism      int
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures index construction behavior.
type Option func(*options)

// WithMeasure configures the similarity measure used to score edges during
// index construction. The default is similarity.Cosine, the traditional
// choice for SCAN.
//
// If nil is passed, the default is kept.
func WithMeasure(m similarity.Measure) Option {
	return func(o *options) {
		if m != nil {
			o.measure = m
		}
	}
}

// WithParallelism bounds the number of workers used by the construction
// phases and by clustering queries. Values <= 0 mean GOMAXPROCS.
//
// The bound also applies to the default measure; a measure passed via
// WithMeasure carries its own parallelism setting.
func WithParallelism(workers int) Option {
	return func(o *options) {
		o.parallelism = workers
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.measure == nil {
		o.measure = similarity.Cosine{Parallelism: o.parallelism}
	}
	return o
}
