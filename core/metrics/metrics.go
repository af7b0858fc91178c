package metrics

import (
	"time"

	"github.com/kilianp07/gridwarden/core/model"
)

// HourEvent is emitted after each simulated hour.
type HourEvent struct {
	RunID    string
	Scenario string
	Policy   model.ChargingPolicy
	// Time is the wall-clock start of the simulated hour.
	Time   time.Time
	Result model.HourResult
}

// MetricsSink records hourly simulation results.
type MetricsSink interface {
	RecordHour(ev HourEvent) error
}

// RunRecorder records completed runs.
type RunRecorder interface {
	RecordRun(run model.SimulationRun) error
}

// ComparisonRecorder records two-policy comparisons.
type ComparisonRecorder interface {
	RecordComparison(c model.Comparison) error
}

// Closer is implemented by sinks holding network resources.
type Closer interface {
	Close() error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordHour(HourEvent) error              { return nil }
func (NopSink) RecordRun(model.SimulationRun) error     { return nil }
func (NopSink) RecordComparison(model.Comparison) error { return nil }
