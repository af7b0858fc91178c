package fleet

import (
	"errors"
	"fmt"
)

// Default vehicle characteristics.
const (
	DefaultChargingPowerKW = 7.0
	DefaultBatteryKWh      = 60.0
)

// ErrInvalidConfig is returned for fleet parameters that cannot be simulated.
var ErrInvalidConfig = errors.New("invalid fleet config")

// Config describes a homogeneous fleet.
type Config struct {
	Size            int     `json:"size"`
	ChargingPowerKW float64 `json:"charging_power_kw"`
	BatteryKWh      float64 `json:"battery_kwh"`
}

// SetDefaults fills zero vehicle characteristics.
func (c *Config) SetDefaults() {
	if c.ChargingPowerKW == 0 {
		c.ChargingPowerKW = DefaultChargingPowerKW
	}
	if c.BatteryKWh == 0 {
		c.BatteryKWh = DefaultBatteryKWh
	}
}

// Validate checks the fleet can be simulated.
func (c Config) Validate() error {
	if c.Size < 0 {
		return fmt.Errorf("%w: negative fleet size %d", ErrInvalidConfig, c.Size)
	}
	if c.ChargingPowerKW <= 0 {
		return fmt.Errorf("%w: charging power must be positive", ErrInvalidConfig)
	}
	if c.BatteryKWh <= 0 {
		return fmt.Errorf("%w: battery capacity must be positive", ErrInvalidConfig)
	}
	return nil
}
