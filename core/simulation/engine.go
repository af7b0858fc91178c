package simulation

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/gridwarden/core/fleet"
	"github.com/kilianp07/gridwarden/core/grid"
	"github.com/kilianp07/gridwarden/core/logger"
	"github.com/kilianp07/gridwarden/core/metrics"
	"github.com/kilianp07/gridwarden/core/model"
	"github.com/kilianp07/gridwarden/core/thermal"
)

// Engine runs scenarios against one transformer design. It holds no
// per-run state and is safe for concurrent use.
type Engine struct {
	topo   grid.Topology
	params thermal.Params
	sink   metrics.MetricsSink
	log    logger.Logger
	now    func() time.Time
}

// NewEngine validates the transformer description. A nil sink disables
// metrics.
func NewEngine(topo grid.Topology, params thermal.Params, sink metrics.MetricsSink, log logger.Logger) (*Engine, error) {
	if log == nil {
		return nil, fmt.Errorf("simulation: nil logger")
	}
	if err := topo.Validate(); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Engine{topo: topo, params: params, sink: sink, log: log, now: time.Now}, nil
}

// Run simulates one scenario. Errors only come from invalid scenario
// configuration; power-flow collapse is reported in the hourly results.
func (e *Engine) Run(sc Scenario) (model.SimulationRun, error) {
	syn, err := fleet.NewSynthesizer(sc.Fleet)
	if err != nil {
		return model.SimulationRun{}, fmt.Errorf("scenario %s: %w", sc.displayName(), err)
	}
	// fresh per scenario: a reused network or thermal state leaks into the
	// next run
	network, err := grid.NewNetwork(e.topo, e.log)
	if err != nil {
		return model.SimulationRun{}, fmt.Errorf("scenario %s: %w", sc.displayName(), err)
	}
	state := thermal.InitialState()
	rng := rand.New(rand.NewSource(sc.Seed))

	run := model.SimulationRun{
		ID:        uuid.NewString(),
		Name:      sc.displayName(),
		Policy:    sc.Policy,
		FleetSize: sc.Fleet.Size,
		Seed:      sc.Seed,
		StartedAt: e.now(),
		BaseLoad:  sc.BaseLoad,
		Ambient:   sc.Ambient,
	}
	run.EVLoad = syn.Generate(sc.Policy, rng)
	run.TotalLoad = sc.BaseLoad.Add(run.EVLoad)

	aging := make([]model.AgingResult, 0, model.HoursPerDay)
	for h := 0; h < model.HoursPerDay; h++ {
		pf := network.Solve(run.TotalLoad[h])
		var ar model.AgingResult
		state, ar = e.params.Step(state, pf.LoadingPercent, sc.Ambient[h])
		hr := model.HourResult{
			Hour:        h,
			TotalLoadMW: run.TotalLoad[h],
			EVLoadMW:    run.EVLoad[h],
			AmbientC:    sc.Ambient[h],
			TopOilRiseC: state.TopOilRise,
			PowerFlow:   pf,
			Aging:       ar,
		}
		run.Hours[h] = hr
		aging = append(aging, ar)
		if pf.Collapsed {
			run.Summary.CollapsedHours++
		}
		e.recordHour(run, sc.Day, hr)
	}

	total := thermal.TotalAgingHours(aging)
	run.Summary.PeakLoadMW = run.TotalLoad.Max()
	run.Summary.PeakHotSpotC = run.HotSpots().Max()
	run.Summary.TotalAgingHours = total
	run.Summary.AgingMultiplier = thermal.AgingMultiplier(total, model.HoursPerDay)
	if sc.NameplateMW > 0 {
		run.Summary.NameplateMarginMW = run.Summary.PeakLoadMW - sc.NameplateMW
	}

	e.log.Infof("scenario %s: peak %.2f MW, hot spot %.1f °C, aging %.2f h (x%.2f)",
		run.Name, run.Summary.PeakLoadMW, run.Summary.PeakHotSpotC,
		run.Summary.TotalAgingHours, run.Summary.AgingMultiplier)
	if rec, ok := e.sink.(metrics.RunRecorder); ok {
		if err := rec.RecordRun(run); err != nil {
			e.log.Warnf("record run %s: %v", run.ID, err)
		}
	}
	return run, nil
}

func (e *Engine) recordHour(run model.SimulationRun, day time.Time, hr model.HourResult) {
	ev := metrics.HourEvent{
		RunID:    run.ID,
		Scenario: run.Name,
		Policy:   run.Policy,
		Result:   hr,
	}
	if !day.IsZero() {
		y, m, d := day.Date()
		ev.Time = time.Date(y, m, d, hr.Hour, 0, 0, 0, day.Location())
	}
	if err := e.sink.RecordHour(ev); err != nil {
		e.log.Warnf("record hour %d of %s: %v", hr.Hour, run.ID, err)
	}
}

// Compare evaluates two scenarios concurrently and reports the peak-load
// reduction of candidate relative to reference.
func (e *Engine) Compare(ctx context.Context, reference, candidate Scenario) (model.Comparison, error) {
	var cmp model.Comparison
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		run, err := e.Run(reference)
		cmp.Reference = run
		return err
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		run, err := e.Run(candidate)
		cmp.Candidate = run
		return err
	})
	if err := g.Wait(); err != nil {
		return model.Comparison{}, err
	}
	cmp.PeakReductionPercent = PeakReduction(cmp.Reference.Summary.PeakLoadMW, cmp.Candidate.Summary.PeakLoadMW)
	e.log.Infof("peak reduction %s -> %s: %.1f%%", cmp.Reference.Name, cmp.Candidate.Name, cmp.PeakReductionPercent)
	if rec, ok := e.sink.(metrics.ComparisonRecorder); ok {
		if err := rec.RecordComparison(cmp); err != nil {
			e.log.Warnf("record comparison: %v", err)
		}
	}
	return cmp, nil
}

// PeakReduction is the relative reduction of peakB against peakA in percent.
// It is zero when peakA is zero.
func PeakReduction(peakA, peakB float64) float64 {
	if peakA == 0 {
		return 0
	}
	return (peakA - peakB) / peakA * 100
}
