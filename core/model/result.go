package model

import "time"

// PowerFlowResult is the transformer operating point for one hour.
type PowerFlowResult struct {
	LoadingPercent float64 `json:"loading_percent"`
	VoltagePU      float64 `json:"voltage_pu"`
	// Collapsed is set when the solve did not converge and the values are the
	// brownout sentinel.
	Collapsed bool `json:"collapsed"`
}

// CollapsedResult is reported when the power flow fails to converge.
var CollapsedResult = PowerFlowResult{LoadingPercent: 150, VoltagePU: 0.85, Collapsed: true}

// AgingResult holds the thermal outcome of one step.
type AgingResult struct {
	HotSpotC    float64 `json:"hot_spot_c"`
	AgingFactor float64 `json:"aging_factor"`
}

// HourResult collects everything computed for a single hour of a run.
type HourResult struct {
	Hour        int             `json:"hour"`
	TotalLoadMW float64         `json:"total_load_mw"`
	EVLoadMW    float64         `json:"ev_load_mw"`
	AmbientC    float64         `json:"ambient_c"`
	TopOilRiseC float64         `json:"top_oil_rise_c"`
	PowerFlow   PowerFlowResult `json:"power_flow"`
	Aging       AgingResult     `json:"aging"`
}

// Summary holds the scalar metrics of a run.
type Summary struct {
	PeakLoadMW      float64 `json:"peak_load_mw"`
	PeakHotSpotC    float64 `json:"peak_hot_spot_c"`
	TotalAgingHours float64 `json:"total_aging_hours"`
	AgingMultiplier float64 `json:"aging_multiplier"`
	CollapsedHours  int     `json:"collapsed_hours"`
	// NameplateMarginMW is PeakLoadMW minus the transformer nameplate. It is a
	// display reference only and plays no part in the physics.
	NameplateMarginMW float64 `json:"nameplate_margin_mw"`
}

// SimulationRun is the outcome of one scenario.
type SimulationRun struct {
	ID        string                  `json:"id"`
	Name      string                  `json:"name"`
	Policy    ChargingPolicy          `json:"policy"`
	FleetSize int                     `json:"fleet_size"`
	Seed      int64                   `json:"seed"`
	StartedAt time.Time               `json:"started_at"`
	BaseLoad  Profile                 `json:"base_load_mw"`
	EVLoad    Profile                 `json:"ev_load_mw"`
	TotalLoad Profile                 `json:"total_load_mw"`
	Ambient   Profile                 `json:"ambient_c"`
	Hours     [HoursPerDay]HourResult `json:"hours"`
	Summary   Summary                 `json:"summary"`
}

// HotSpots returns the hourly hot-spot temperatures.
func (r SimulationRun) HotSpots() Profile {
	var p Profile
	for h, hr := range r.Hours {
		p[h] = hr.Aging.HotSpotC
	}
	return p
}

// AgingFactors returns the hourly aging-acceleration factors.
func (r SimulationRun) AgingFactors() Profile {
	var p Profile
	for h, hr := range r.Hours {
		p[h] = hr.Aging.AgingFactor
	}
	return p
}

// Loadings returns the hourly transformer loading in percent.
func (r SimulationRun) Loadings() Profile {
	var p Profile
	for h, hr := range r.Hours {
		p[h] = hr.PowerFlow.LoadingPercent
	}
	return p
}

// Voltages returns the hourly load-bus voltage in per-unit.
func (r SimulationRun) Voltages() Profile {
	var p Profile
	for h, hr := range r.Hours {
		p[h] = hr.PowerFlow.VoltagePU
	}
	return p
}

// Comparison pairs two runs sharing a base load.
type Comparison struct {
	Reference SimulationRun `json:"reference"`
	Candidate SimulationRun `json:"candidate"`
	// PeakReductionPercent is (reference peak - candidate peak) / reference peak * 100.
	PeakReductionPercent float64 `json:"peak_reduction_percent"`
}
