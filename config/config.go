package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/gridwarden/core/grid"
	"github.com/kilianp07/gridwarden/core/metrics"
	"github.com/kilianp07/gridwarden/core/thermal"
	"github.com/kilianp07/gridwarden/infra/mqtt"
)

// EnvPrefix marks environment overrides. Nested keys are separated by a
// double underscore: K_SIMULATION__FLEET_SIZE=2000.
const EnvPrefix = "K_"

type Config struct {
	Simulation  SimulationConfig `json:"simulation"`
	Transformer grid.Topology    `json:"transformer"`
	Thermal     thermal.Params   `json:"thermal"`
	Input       InputConfig      `json:"input"`
	Metrics     metrics.Config   `json:"metrics"`
	MQTT        mqtt.Config      `json:"mqtt"`
	Report      ReportConfig     `json:"report"`
	Logging     LoggingConfig    `json:"logging"`
}

// Default returns a configuration with every section defaulted.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// Load reads the file at path and applies K_ environment overrides. An empty
// path loads defaults and the environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every unset field.
func (c *Config) SetDefaults() {
	c.Simulation.SetDefaults()
	c.Transformer.SetDefaults()
	c.Thermal.SetDefaults()
	c.Report.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Simulation.Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if err := c.Transformer.Validate(); err != nil {
		return fmt.Errorf("transformer: %w", err)
	}
	if err := c.Thermal.Validate(); err != nil {
		return fmt.Errorf("thermal: %w", err)
	}
	if err := c.Input.Validate(); err != nil {
		return fmt.Errorf("input: %w", err)
	}
	if c.MQTT.Broker != "" {
		if err := c.MQTT.Validate(); err != nil {
			return err
		}
	}
	if err := c.Report.Validate(); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}
