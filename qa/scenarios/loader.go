package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/gridwarden/core/fleet"
	"github.com/kilianp07/gridwarden/core/model"
	"github.com/kilianp07/gridwarden/core/simulation"
)

type FleetDef struct {
	Size            int     `yaml:"size"`
	ChargingPowerKW float64 `yaml:"charging_power_kw,omitempty"`
	BatteryKWh      float64 `yaml:"battery_kwh,omitempty"`
}

func (f FleetDef) ToConfig() fleet.Config {
	c := fleet.Config{Size: f.Size, ChargingPowerKW: f.ChargingPowerKW, BatteryKWh: f.BatteryKWh}
	c.SetDefaults()
	return c
}

// Range bounds a result. Unset ends are not checked.
type Range struct {
	Min *float64 `yaml:"min,omitempty"`
	Max *float64 `yaml:"max,omitempty"`
}

func (r Range) Check(v float64) error {
	if r.Min != nil && v < *r.Min {
		return fmt.Errorf("%.4f below %.4f", v, *r.Min)
	}
	if r.Max != nil && v > *r.Max {
		return fmt.Errorf("%.4f above %.4f", v, *r.Max)
	}
	return nil
}

type Expected struct {
	PeakLoadMW           Range `yaml:"peak_load_mw"`
	PeakHotSpotC         Range `yaml:"peak_hot_spot_c"`
	AgingHours           Range `yaml:"aging_hours"`
	CollapsedHours       *int  `yaml:"collapsed_hours,omitempty"`
	PeakReductionPercent Range `yaml:"peak_reduction_percent"`
}

type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	// BaseLoadMW and AmbientC hold 24 hourly values or a single constant.
	BaseLoadMW    []float64 `yaml:"base_load_mw"`
	AmbientC      []float64 `yaml:"ambient_c"`
	Fleet         FleetDef  `yaml:"fleet"`
	Policy        string    `yaml:"policy"`
	ComparePolicy string    `yaml:"compare_policy,omitempty"`
	Seed          int64     `yaml:"seed"`
	NameplateMW   float64   `yaml:"nameplate_mw,omitempty"`
	Expected      Expected  `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

// ToSimulation converts the fixture into engine scenarios. compare is only
// meaningful when ok is true.
func (s Scenario) ToSimulation() (primary, compare simulation.Scenario, ok bool, err error) {
	base, err := profile(s.BaseLoadMW)
	if err != nil {
		return primary, compare, false, fmt.Errorf("base_load_mw: %w", err)
	}
	ambient, err := profile(s.AmbientC)
	if err != nil {
		return primary, compare, false, fmt.Errorf("ambient_c: %w", err)
	}
	policy, err := model.ParseChargingPolicy(s.Policy)
	if err != nil {
		return primary, compare, false, err
	}
	primary = simulation.Scenario{
		Name:        s.Name,
		BaseLoad:    base,
		Ambient:     ambient,
		Fleet:       s.Fleet.ToConfig(),
		Policy:      policy,
		Seed:        s.Seed,
		NameplateMW: s.NameplateMW,
	}
	if s.ComparePolicy == "" {
		return primary, compare, false, nil
	}
	other, err := model.ParseChargingPolicy(s.ComparePolicy)
	if err != nil {
		return primary, compare, false, err
	}
	compare = primary.WithPolicy(other)
	compare.Name = s.Name + "-" + other.String()
	return primary, compare, true, nil
}

func profile(values []float64) (model.Profile, error) {
	if len(values) == 1 {
		return model.Constant(values[0]), nil
	}
	return model.ProfileFromSlice(values)
}
