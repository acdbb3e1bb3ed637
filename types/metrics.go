package types

import "log/slog"

// MetricsSink receives scalar observations from the control loops.
// Passing a sink explicitly keeps the core algorithms free of any
// ambient logging dependency.
type MetricsSink interface {
	Observe(values map[string]float64)
}

type noopSink struct{}

func (noopSink) Observe(map[string]float64) {}

// NoopSink discards all observations.
func NoopSink() MetricsSink {
	return noopSink{}
}

type slogSink struct {
	logger *slog.Logger
}

// SlogSink reports observations as structured log records.
func SlogSink(logger *slog.Logger) MetricsSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &slogSink{logger: logger}
}

func (s *slogSink) Observe(values map[string]float64) {
	attrs := make([]any, 0, 2*len(values))
	for k, v := range values {
		attrs = append(attrs, k, v)
	}
	s.logger.Info("metrics", attrs...)
}

// MultiSink fans observations out to several sinks.
func MultiSink(sinks ...MetricsSink) MetricsSink {
	return multiSink(sinks)
}

type multiSink []MetricsSink

func (m multiSink) Observe(values map[string]float64) {
	for _, s := range m {
		s.Observe(values)
	}
}
