package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/kilianp07/gridwarden/config"
	"github.com/kilianp07/gridwarden/core/forecast"
	coremetrics "github.com/kilianp07/gridwarden/core/metrics"
	"github.com/kilianp07/gridwarden/core/model"
	"github.com/kilianp07/gridwarden/core/simulation"
	"github.com/kilianp07/gridwarden/infra/logger"
	"github.com/kilianp07/gridwarden/infra/metrics"
	"github.com/kilianp07/gridwarden/infra/mqtt"
)

// ErrNoForecast is returned when no forecast file is configured.
var ErrNoForecast = errors.New("input.forecast_path is required")

// Service wires the configuration, the metrics sinks and the simulation engine.
type Service struct {
	cfg    *config.Config
	engine *simulation.Engine
	sink   coremetrics.MetricsSink
	log    logger.Logger
}

// New creates a Service and the metrics sinks described by cfg.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	sink, err := buildSink(cfg, logg)
	if err != nil {
		return nil, err
	}
	svc, err := NewWithSink(cfg, sink, logg)
	if err != nil {
		if c, ok := sink.(coremetrics.Closer); ok {
			_ = c.Close()
		}
		return nil, err
	}
	return svc, nil
}

// NewWithSink creates a Service reporting to the provided sink.
func NewWithSink(cfg *config.Config, sink coremetrics.MetricsSink, log logger.Logger) (*Service, error) {
	engine, err := simulation.NewEngine(cfg.Transformer, cfg.Thermal, sink, logger.New("engine"))
	if err != nil {
		return nil, fmt.Errorf("simulation engine: %w", err)
	}
	return &Service{cfg: cfg, engine: engine, sink: sink, log: log}, nil
}

func buildSink(cfg *config.Config, log logger.Logger) (coremetrics.MetricsSink, error) {
	var sinks []coremetrics.MetricsSink
	configured, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sinks: %w", err)
	}
	sinks = append(sinks, configured)
	if cfg.Metrics.PrometheusAddr != "" {
		prom, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, prom)
	}
	if cfg.MQTT.Broker != "" {
		pub, err := mqtt.NewResultPublisher(cfg.MQTT, logger.New("mqtt-publisher"))
		if err != nil {
			log.Errorf("mqtt publisher disabled: %v", err)
		} else {
			sinks = append(sinks, pub)
		}
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return coremetrics.NewMultiSink(sinks...), nil
}

// Scenario builds the primary scenario from the configured forecast.
func (s *Service) Scenario() (simulation.Scenario, error) {
	if s.cfg.Input.ForecastPath == "" {
		return simulation.Scenario{}, ErrNoForecast
	}
	f, err := os.Open(s.cfg.Input.ForecastPath)
	if err != nil {
		return simulation.Scenario{}, fmt.Errorf("open forecast: %w", err)
	}
	defer f.Close()
	series, err := forecast.ReadCSV(f)
	if err != nil {
		return simulation.Scenario{}, fmt.Errorf("read forecast: %w", err)
	}
	return s.ScenarioFromSeries(series)
}

// ScenarioFromSeries selects the configured day of series, rescales it to
// the feeder peak and attaches the fleet.
func (s *Service) ScenarioFromSeries(series forecast.Series) (simulation.Scenario, error) {
	sim := s.cfg.Simulation
	day, err := s.cfg.Input.Day()
	if err != nil {
		return simulation.Scenario{}, err
	}
	if day.IsZero() {
		if day, err = series.PeakDay(); err != nil {
			return simulation.Scenario{}, err
		}
		s.log.Infof("simulating forecast peak day %s", day.Format(config.DateLayout))
	}
	load, temp, fellBack, err := series.Day(day)
	if err != nil {
		return simulation.Scenario{}, err
	}
	if fellBack {
		s.log.Warnf("forecast has no complete day %s, using the first %d hours", day.Format(config.DateLayout), model.HoursPerDay)
	}
	if sim.FeederPeakMW > 0 {
		if load, err = forecast.ScaleToPeak(load, sim.FeederPeakMW); err != nil {
			return simulation.Scenario{}, err
		}
	}
	policy, _, err := sim.Policies()
	if err != nil {
		return simulation.Scenario{}, err
	}
	return simulation.Scenario{
		Name:        fmt.Sprintf("%s-%s", sim.Name, policy),
		Day:         day,
		BaseLoad:    load,
		Ambient:     temp,
		Fleet:       sim.FleetConfig(),
		Policy:      policy,
		Seed:        sim.Seed,
		NameplateMW: sim.NameplateMW,
	}, nil
}

// Simulate runs the primary scenario.
func (s *Service) Simulate(sc simulation.Scenario) (model.SimulationRun, error) {
	return s.engine.Run(sc)
}

// Compare runs sc against the same scenario under the comparison policy.
func (s *Service) Compare(ctx context.Context, sc simulation.Scenario) (model.Comparison, error) {
	_, other, err := s.cfg.Simulation.Policies()
	if err != nil {
		return model.Comparison{}, err
	}
	candidate := sc.WithPolicy(other)
	candidate.Name = fmt.Sprintf("%s-%s", s.cfg.Simulation.Name, other)
	return s.engine.Compare(ctx, sc, candidate)
}

// ServeMetrics exposes /metrics until ctx is canceled when an address is
// configured.
func (s *Service) ServeMetrics(ctx context.Context) {
	addr := s.cfg.Metrics.PrometheusAddr
	if addr == "" {
		return
	}
	go func() {
		if err := metrics.StartPromServer(ctx, addr, nil); err != nil {
			s.log.Errorf("prom server: %v", err)
		}
	}()
}

// Close releases the metrics sinks.
func (s *Service) Close() error {
	if c, ok := s.sink.(coremetrics.Closer); ok {
		return c.Close()
	}
	return nil
}
