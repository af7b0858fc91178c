package thermal

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/kilianp07/gridwarden/core/model"
)

// ErrInvalidParams is returned when thermal parameters are unusable.
var ErrInvalidParams = errors.New("invalid thermal params")

const kelvin = 273.0

// Params are the ONAN transformer constants.
type Params struct {
	RatedTopOilRise   float64       `json:"rated_top_oil_rise"`
	RatedHotSpotRise  float64       `json:"rated_hot_spot_rise"`
	OilExponent       float64       `json:"oil_exponent"`
	WindingExponent   float64       `json:"winding_exponent"`
	OilTimeConstant   time.Duration `json:"oil_time_constant"`
	Step              time.Duration `json:"step"`
	ReferenceHotSpotC float64       `json:"reference_hot_spot_c"`
	AgingConstant     float64       `json:"aging_constant"`
}

// DefaultParams returns the constants of a typical 10 MVA ONAN unit.
func DefaultParams() Params {
	return Params{
		RatedTopOilRise:   50,
		RatedHotSpotRise:  15,
		OilExponent:       0.8,
		WindingExponent:   1.6,
		OilTimeConstant:   180 * time.Minute,
		Step:              60 * time.Minute,
		ReferenceHotSpotC: 110,
		AgingConstant:     15000,
	}
}

// SetDefaults fills unset fields from DefaultParams.
func (p *Params) SetDefaults() {
	d := DefaultParams()
	if p.RatedTopOilRise == 0 {
		p.RatedTopOilRise = d.RatedTopOilRise
	}
	if p.RatedHotSpotRise == 0 {
		p.RatedHotSpotRise = d.RatedHotSpotRise
	}
	if p.OilExponent == 0 {
		p.OilExponent = d.OilExponent
	}
	if p.WindingExponent == 0 {
		p.WindingExponent = d.WindingExponent
	}
	if p.OilTimeConstant == 0 {
		p.OilTimeConstant = d.OilTimeConstant
	}
	if p.Step == 0 {
		p.Step = d.Step
	}
	if p.ReferenceHotSpotC == 0 {
		p.ReferenceHotSpotC = d.ReferenceHotSpotC
	}
	if p.AgingConstant == 0 {
		p.AgingConstant = d.AgingConstant
	}
}

// Validate checks the parameters describe a physical transformer.
func (p Params) Validate() error {
	if p.RatedTopOilRise < 0 || p.RatedHotSpotRise < 0 {
		return fmt.Errorf("%w: rated rises must be non-negative", ErrInvalidParams)
	}
	if p.OilExponent <= 0 || p.WindingExponent <= 0 {
		return fmt.Errorf("%w: exponents must be positive", ErrInvalidParams)
	}
	if p.OilTimeConstant <= 0 || p.Step <= 0 {
		return fmt.Errorf("%w: time constant and step must be positive", ErrInvalidParams)
	}
	if p.ReferenceHotSpotC+kelvin <= 0 {
		return fmt.Errorf("%w: reference hot spot below absolute zero", ErrInvalidParams)
	}
	return nil
}

// State is the memory carried from one step to the next.
type State struct {
	// TopOilRise is the top-oil temperature rise above ambient in °C.
	TopOilRise float64 `json:"top_oil_rise"`
}

// InitialState is steady state at ambient temperature.
func InitialState() State { return State{} }

// TargetOilRise is the steady-state top-oil rise at load factor k.
func (p Params) TargetOilRise(k float64) float64 {
	return p.RatedTopOilRise * math.Pow(k, p.OilExponent)
}

// HotSpotGradient is the winding hot-spot rise over top oil at load factor k.
func (p Params) HotSpotGradient(k float64) float64 {
	return p.RatedHotSpotRise * math.Pow(k, p.WindingExponent)
}

// lagFactor is the fraction of the gap to the target closed in one step.
func (p Params) lagFactor() float64 {
	return 1 - math.Exp(-p.Step.Minutes()/p.OilTimeConstant.Minutes())
}

// AgingFactor returns the Arrhenius aging-acceleration factor. It is exactly
// 1 at or below the reference hot-spot temperature.
func (p Params) AgingFactor(hotSpotC float64) float64 {
	if hotSpotC <= p.ReferenceHotSpotC {
		return 1
	}
	ref := p.ReferenceHotSpotC + kelvin
	return math.Exp(p.AgingConstant/ref - p.AgingConstant/(hotSpotC+kelvin))
}

// Step advances the thermal state by one step at the given transformer
// loading (percent of rating) and ambient temperature. Steps of a scenario
// must be applied in chronological order.
func (p Params) Step(prev State, loadingPercent, ambientC float64) (State, model.AgingResult) {
	k := loadingPercent / 100
	if k < 0 {
		k = 0
	}
	target := p.TargetOilRise(k)
	next := State{TopOilRise: prev.TopOilRise + (target-prev.TopOilRise)*p.lagFactor()}
	hst := ambientC + next.TopOilRise + p.HotSpotGradient(k)
	return next, model.AgingResult{HotSpotC: hst, AgingFactor: p.AgingFactor(hst)}
}

// TotalAgingHours sums hourly aging factors into equivalent aging hours.
func TotalAgingHours(results []model.AgingResult) float64 {
	var total float64
	for _, r := range results {
		total += r.AgingFactor
	}
	return total
}

// AgingMultiplier is equivalent aging relative to normal aging over hours.
func AgingMultiplier(totalAgingHours float64, hours int) float64 {
	if hours <= 0 {
		return 0
	}
	return totalAgingHours / float64(hours)
}
