package scenarios

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kilianp07/gridwarden/core/grid"
	"github.com/kilianp07/gridwarden/core/model"
	"github.com/kilianp07/gridwarden/core/simulation"
	"github.com/kilianp07/gridwarden/core/thermal"
	"github.com/kilianp07/gridwarden/infra/logger"
	"github.com/kilianp07/gridwarden/infra/metrics"
)

func RunScenario(t *testing.T, sc *Scenario) {
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	engine, err := simulation.NewEngine(grid.DefaultTopology(), thermal.DefaultParams(), sink, logger.NopLogger{})
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	primary, compare, comparing, err := sc.ToSimulation()
	if err != nil {
		t.Fatalf("scenario %s: %v", sc.Name, err)
	}

	var run model.SimulationRun
	runs := 1
	if comparing {
		cmp, err := engine.Compare(context.Background(), primary, compare)
		if err != nil {
			t.Fatalf("compare: %v", err)
		}
		run = cmp.Reference
		runs = 2
		if err := sc.Expected.PeakReductionPercent.Check(cmp.PeakReductionPercent); err != nil {
			t.Errorf("scenario %s peak reduction: %v", sc.Name, err)
		}
	} else {
		if run, err = engine.Run(primary); err != nil {
			t.Fatalf("run: %v", err)
		}
	}

	checks := []struct {
		name string
		r    Range
		v    float64
	}{
		{"peak load", sc.Expected.PeakLoadMW, run.Summary.PeakLoadMW},
		{"peak hot spot", sc.Expected.PeakHotSpotC, run.Summary.PeakHotSpotC},
		{"aging hours", sc.Expected.AgingHours, run.Summary.TotalAgingHours},
	}
	for _, c := range checks {
		if err := c.r.Check(c.v); err != nil {
			t.Errorf("scenario %s %s: %v", sc.Name, c.name, err)
		}
	}
	if want := sc.Expected.CollapsedHours; want != nil && run.Summary.CollapsedHours != *want {
		t.Errorf("scenario %s expected %d collapsed hours, got %d", sc.Name, *want, run.Summary.CollapsedHours)
	}
	n, err := testutil.GatherAndCount(reg, "gridwarden_hot_spot_celsius")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != runs*model.HoursPerDay {
		t.Errorf("scenario %s expected %d hot spot series, got %d", sc.Name, runs*model.HoursPerDay, n)
	}
}
