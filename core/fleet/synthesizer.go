package fleet

import (
	"math/rand"

	"github.com/kilianp07/gridwarden/core/model"
)

// Behavioural constants of the arrival model.
const (
	ArrivalMeanHour   = 18.0
	ArrivalStdDevHour = 2.0
	MinArrivalSoC     = 0.2
	MaxArrivalSoC     = 0.8

	// TimerStartMinute is the 23:00 trigger used by the overnight policies.
	TimerStartMinute = 23 * 60
	// TimerJitterMinutes bounds the start noise of a naive timer.
	TimerJitterMinutes = 15
	// SpreadWindowMinutes is the coordinated staggering window (23:00-04:00).
	SpreadWindowMinutes = 5 * 60
)

// Vehicle is one sampled charging session. It only lives during synthesis.
type Vehicle struct {
	ArrivalHour   float64
	SoC           float64
	EnergyKWh     float64
	DurationHours float64
	StartMinute   int
	EndMinute     int
}

// Synthesizer produces fleet charging curves.
type Synthesizer struct {
	cfg Config
}

// NewSynthesizer validates cfg and returns a Synthesizer.
func NewSynthesizer(cfg Config) (*Synthesizer, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Synthesizer{cfg: cfg}, nil
}

// Config returns the effective fleet configuration.
func (s *Synthesizer) Config() Config { return s.cfg }

// SampleVehicles draws the fleet's charging sessions. Arrivals are drawn for
// the whole fleet first, then states of charge, then the per-vehicle start
// jitter of the policy.
func (s *Synthesizer) SampleVehicles(policy model.ChargingPolicy, rng *rand.Rand) []Vehicle {
	n := s.cfg.Size
	if n == 0 {
		return nil
	}
	vs := make([]Vehicle, n)
	for i := range vs {
		vs[i].ArrivalHour = ArrivalMeanHour + rng.NormFloat64()*ArrivalStdDevHour
	}
	for i := range vs {
		vs[i].SoC = MinArrivalSoC + rng.Float64()*(MaxArrivalSoC-MinArrivalSoC)
	}
	for i := range vs {
		v := &vs[i]
		v.EnergyKWh = (1 - v.SoC) * s.cfg.BatteryKWh
		v.DurationHours = v.EnergyKWh / s.cfg.ChargingPowerKW

		var start int
		switch policy {
		case model.PolicyDelayedTimer:
			start = TimerStartMinute + rng.Intn(TimerJitterMinutes)
		case model.PolicyCoordinatedSpread:
			start = TimerStartMinute + rng.Intn(SpreadWindowMinutes)
		default:
			start = int(v.ArrivalHour * 60)
		}
		if start < 0 {
			start = 0
		}
		v.StartMinute = start
		v.EndMinute = start + int(v.DurationHours*60)
	}
	return vs
}

// Generate returns the hourly fleet load in MW for the given policy.
func (s *Synthesizer) Generate(policy model.ChargingPolicy, rng *rand.Rand) model.Profile {
	return Aggregate(s.SampleVehicles(policy, rng), s.cfg.ChargingPowerKW)
}

// Aggregate sums constant-power sessions into hourly mean MW. Sessions are
// clipped at midnight of the simulated day; energy past minute 1440 is
// dropped rather than wrapped.
func Aggregate(vs []Vehicle, powerKW float64) model.Profile {
	var out model.Profile
	if len(vs) == 0 {
		return out
	}
	delta := make([]float64, model.MinutesPerDay+1)
	for _, v := range vs {
		start, end := clip(v.StartMinute), clip(v.EndMinute)
		if end <= start {
			continue
		}
		delta[start] += powerKW
		delta[end] -= powerKW
	}
	var level float64
	for m := 0; m < model.MinutesPerDay; m++ {
		level += delta[m]
		out[m/60] += level
	}
	for h := range out {
		// mean kW over the hour, then kW -> MW
		out[h] = out[h] / 60 / 1000
	}
	return out
}

func clip(minute int) int {
	if minute < 0 {
		return 0
	}
	if minute > model.MinutesPerDay {
		return model.MinutesPerDay
	}
	return minute
}
