package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gridwarden/core/model"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `simulation:
  name: "downtown"
  feeder_peak_mw: 6.5
  fleet_size: 750
  policy: "ulo_timer"
  compare_policy: "smart_managed"
  seed: 7
transformer:
  rated_mva: 12
  max_iterations: 30
thermal:
  oil_time_constant: "150m"
input:
  forecast_path: "forecast.csv"
  date: "2024-07-15"
metrics:
  prometheus_addr: ":9100"
  sinks:
    - type: "nop"
mqtt:
  broker: "tcp://localhost:1883"
  topic_prefix: "feeders/downtown"
report:
  format: "csv"
  chart_path: "mitigation.png"
logging:
  level: "debug"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"simulation.name", cfg.Simulation.Name, "downtown"},
		{"simulation.feeder_peak_mw", cfg.Simulation.FeederPeakMW, 6.5},
		{"simulation.fleet_size", cfg.Simulation.FleetSize, 750},
		{"simulation.seed", cfg.Simulation.Seed, int64(7)},
		{"simulation.nameplate_mw", cfg.Simulation.NameplateMW, 10.0},
		{"transformer.rated_mva", cfg.Transformer.RatedMVA, 12.0},
		{"transformer.max_iterations", cfg.Transformer.MaxIterations, 30},
		{"transformer.hv_kv", cfg.Transformer.HVkV, 115.0},
		{"thermal.oil_time_constant", cfg.Thermal.OilTimeConstant, 150 * time.Minute},
		{"thermal.step", cfg.Thermal.Step, time.Hour},
		{"input.forecast_path", cfg.Input.ForecastPath, "forecast.csv"},
		{"metrics.prometheus_addr", cfg.Metrics.PrometheusAddr, ":9100"},
		{"metrics.sinks", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"mqtt.topic_prefix", cfg.MQTT.TopicPrefix, "feeders/downtown"},
		{"report.format", cfg.Report.Format, "csv"},
		{"report.hot_spot_limit_c", cfg.Report.HotSpotLimitC, 110.0},
		{"logging.level", cfg.Logging.Level, "debug"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}

	primary, compare, err := cfg.Simulation.Policies()
	require.NoError(t, err)
	assert.Equal(t, model.PolicyDelayedTimer, primary)
	assert.Equal(t, model.PolicyCoordinatedSpread, compare)

	day, err := cfg.Input.Day()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC), day)

	fc := cfg.Simulation.FleetConfig()
	assert.Equal(t, 750, fc.Size)
	assert.Equal(t, 7.0, fc.ChargingPowerKW)
	assert.Equal(t, 60.0, fc.BatteryKWh)
}

func TestLoad_JSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{"simulation": {"fleet_size": 10}, "report": {"format": "json"}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Simulation.FleetSize)
	assert.Equal(t, 5.0, cfg.Simulation.FeederPeakMW)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.Simulation.FleetSize)
	assert.Equal(t, "delayed_timer", cfg.Simulation.Policy)
	assert.Equal(t, "coordinated_spread", cfg.Simulation.ComparePolicy)
	assert.Equal(t, int64(42), cfg.Simulation.Seed)
	assert.Equal(t, 1.02, cfg.Transformer.SlackVoltagePU)
	assert.Equal(t, 180*time.Minute, cfg.Thermal.OilTimeConstant)
	assert.Equal(t, "json", cfg.Report.Format)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "config.yaml", "simulation:\n  fleet_size: 100\n")
	t.Setenv("K_SIMULATION__FLEET_SIZE", "2500")
	t.Setenv("K_SIMULATION__POLICY", "uncontrolled")
	t.Setenv("K_THERMAL__OIL_TIME_CONSTANT", "2h")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2500, cfg.Simulation.FleetSize)
	assert.Equal(t, "uncontrolled", cfg.Simulation.Policy)
	assert.Equal(t, 2*time.Hour, cfg.Thermal.OilTimeConstant)
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]struct {
		name string
		data string
		msg  string
	}{
		"format":      {"config.toml", "", "unsupported config format"},
		"policy":      {"c.yaml", "simulation:\n  policy: \"random\"\n", "simulation"},
		"fleet":       {"c.yaml", "simulation:\n  fleet_size: -3\n", "simulation"},
		"transformer": {"c.yaml", "transformer:\n  vk_percent: -1\n", "transformer"},
		"date":        {"c.yaml", "input:\n  date: \"15/07/2024\"\n", "input"},
		"report":      {"c.yaml", "report:\n  format: \"xml\"\n", "report"},
		"logging":     {"c.yaml", "logging:\n  level: \"loud\"\n", "logging"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.name, tc.data))
			assert.ErrorContains(t, err, tc.msg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
