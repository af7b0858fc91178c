package config

import (
	"fmt"

	"github.com/kilianp07/gridwarden/core/fleet"
	"github.com/kilianp07/gridwarden/core/model"
)

// SimulationConfig describes the feeder and the EV fleet under study.
type SimulationConfig struct {
	Name string `json:"name"`
	// FeederPeakMW rescales the forecast base load to this peak. Zero keeps
	// the forecast magnitude.
	FeederPeakMW float64 `json:"feeder_peak_mw"`
	// NameplateMW is the displayed transformer limit.
	NameplateMW     float64 `json:"nameplate_mw"`
	FleetSize       int     `json:"fleet_size"`
	Policy          string  `json:"policy"`
	ComparePolicy   string  `json:"compare_policy"`
	Seed            int64   `json:"seed"`
	ChargingPowerKW float64 `json:"charging_power_kw"`
	BatteryKWh      float64 `json:"battery_kwh"`
}

// SetDefaults applies the reference feeder study values.
func (c *SimulationConfig) SetDefaults() {
	if c.Name == "" {
		c.Name = "feeder"
	}
	if c.FeederPeakMW == 0 {
		c.FeederPeakMW = 5
	}
	if c.NameplateMW == 0 {
		c.NameplateMW = 10
	}
	if c.FleetSize == 0 {
		c.FleetSize = 1000
	}
	if c.Policy == "" {
		c.Policy = model.PolicyDelayedTimer.String()
	}
	if c.ComparePolicy == "" {
		c.ComparePolicy = model.PolicyCoordinatedSpread.String()
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
}

// Validate checks policies and fleet parameters.
func (c SimulationConfig) Validate() error {
	if c.FeederPeakMW < 0 {
		return fmt.Errorf("feeder_peak_mw must not be negative")
	}
	if c.NameplateMW < 0 {
		return fmt.Errorf("nameplate_mw must not be negative")
	}
	if _, _, err := c.Policies(); err != nil {
		return err
	}
	return c.FleetConfig().Validate()
}

// Policies returns the primary and comparison charging policies.
func (c SimulationConfig) Policies() (primary, compare model.ChargingPolicy, err error) {
	if primary, err = model.ParseChargingPolicy(c.Policy); err != nil {
		return 0, 0, err
	}
	if compare, err = model.ParseChargingPolicy(c.ComparePolicy); err != nil {
		return 0, 0, err
	}
	return primary, compare, nil
}

// FleetConfig returns the defaulted synthesizer configuration.
func (c SimulationConfig) FleetConfig() fleet.Config {
	fc := fleet.Config{Size: c.FleetSize, ChargingPowerKW: c.ChargingPowerKW, BatteryKWh: c.BatteryKWh}
	fc.SetDefaults()
	return fc
}
