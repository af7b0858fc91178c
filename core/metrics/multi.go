package metrics

import (
	"errors"

	"github.com/kilianp07/gridwarden/core/model"
)

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordHour forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordHour(ev HourEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordHour(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordRun forwards completed runs to sinks supporting them.
func (m *MultiSink) RecordRun(run model.SimulationRun) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(RunRecorder); ok {
			if err := rec.RecordRun(run); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordComparison forwards comparisons to sinks supporting them.
func (m *MultiSink) RecordComparison(c model.Comparison) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(ComparisonRecorder); ok {
			if err := rec.RecordComparison(c); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes every sink holding resources and joins their errors.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.Sinks {
		if c, ok := s.(Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
