package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/gridwarden/core/metrics"
	"github.com/kilianp07/gridwarden/core/model"
)

var hourLabels = []string{"scenario", "policy", "hour"}
var runLabels = []string{"scenario", "policy"}

// PromSink exposes the latest simulated day as Prometheus gauges.
type PromSink struct {
	load      *prometheus.GaugeVec
	loading   *prometheus.GaugeVec
	voltage   *prometheus.GaugeVec
	hotSpot   *prometheus.GaugeVec
	aging     *prometheus.GaugeVec
	collapses *prometheus.CounterVec

	peakLoad    *prometheus.GaugeVec
	peakHotSpot *prometheus.GaugeVec
	agingHours  *prometheus.GaugeVec
	multiplier  *prometheus.GaugeVec
	reduction   *prometheus.GaugeVec
}

// NewPromSink registers the simulation metrics on the default registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Metrics
// already registered by a previous sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gauge := func(name, help string, labels []string) (*prometheus.GaugeVec, error) {
		return register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help}, labels))
	}
	var (
		s   PromSink
		err error
	)
	if s.load, err = gauge("gridwarden_feeder_load_mw", "Total feeder load per simulated hour", hourLabels); err != nil {
		return nil, err
	}
	if s.loading, err = gauge("gridwarden_transformer_loading_percent", "Transformer loading per simulated hour", hourLabels); err != nil {
		return nil, err
	}
	if s.voltage, err = gauge("gridwarden_load_bus_voltage_pu", "Load bus voltage per simulated hour", hourLabels); err != nil {
		return nil, err
	}
	if s.hotSpot, err = gauge("gridwarden_hot_spot_celsius", "Winding hot-spot temperature per simulated hour", hourLabels); err != nil {
		return nil, err
	}
	if s.aging, err = gauge("gridwarden_aging_factor", "Aging acceleration factor per simulated hour", hourLabels); err != nil {
		return nil, err
	}
	if s.collapses, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gridwarden_grid_collapse_total",
		Help: "Simulated hours where the power flow did not converge",
	}, runLabels)); err != nil {
		return nil, err
	}
	if s.peakLoad, err = gauge("gridwarden_run_peak_load_mw", "Peak feeder load of the last run", runLabels); err != nil {
		return nil, err
	}
	if s.peakHotSpot, err = gauge("gridwarden_run_peak_hot_spot_celsius", "Peak hot-spot temperature of the last run", runLabels); err != nil {
		return nil, err
	}
	if s.agingHours, err = gauge("gridwarden_run_aging_hours", "Equivalent aging hours of the last run", runLabels); err != nil {
		return nil, err
	}
	if s.multiplier, err = gauge("gridwarden_run_aging_multiplier", "Aging relative to a normal day", runLabels); err != nil {
		return nil, err
	}
	if s.reduction, err = gauge("gridwarden_peak_reduction_percent", "Peak reduction of the candidate policy", []string{"reference", "candidate"}); err != nil {
		return nil, err
	}
	return &s, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, err
	}
	return c, nil
}

// RecordHour sets the hourly gauges.
func (s *PromSink) RecordHour(ev coremetrics.HourEvent) error {
	r := ev.Result
	labels := []string{ev.Scenario, ev.Policy.String(), strconv.Itoa(r.Hour)}
	s.load.WithLabelValues(labels...).Set(r.TotalLoadMW)
	s.loading.WithLabelValues(labels...).Set(r.PowerFlow.LoadingPercent)
	s.voltage.WithLabelValues(labels...).Set(r.PowerFlow.VoltagePU)
	s.hotSpot.WithLabelValues(labels...).Set(r.Aging.HotSpotC)
	s.aging.WithLabelValues(labels...).Set(r.Aging.AgingFactor)
	if r.PowerFlow.Collapsed {
		s.collapses.WithLabelValues(ev.Scenario, ev.Policy.String()).Inc()
	}
	return nil
}

// RecordRun sets the run summary gauges.
func (s *PromSink) RecordRun(run model.SimulationRun) error {
	labels := []string{run.Name, run.Policy.String()}
	s.peakLoad.WithLabelValues(labels...).Set(run.Summary.PeakLoadMW)
	s.peakHotSpot.WithLabelValues(labels...).Set(run.Summary.PeakHotSpotC)
	s.agingHours.WithLabelValues(labels...).Set(run.Summary.TotalAgingHours)
	s.multiplier.WithLabelValues(labels...).Set(run.Summary.AgingMultiplier)
	return nil
}

// RecordComparison sets the peak reduction gauge.
func (s *PromSink) RecordComparison(c model.Comparison) error {
	s.reduction.WithLabelValues(c.Reference.Name, c.Candidate.Name).Set(c.PeakReductionPercent)
	return nil
}
