package config

import (
	"github.com/kilianp07/gridwarden/pkg/export"
)

// ReportConfig controls how results leave the process.
type ReportConfig struct {
	Format string `json:"format"`
	// Output is the report file; empty writes to stdout.
	Output string `json:"output"`
	// ChartPath receives the mitigation chart of compare runs when set.
	ChartPath string `json:"chart_path"`
	// HotSpotLimitC is the limit line drawn on the chart.
	HotSpotLimitC float64 `json:"hot_spot_limit_c"`
}

// SetDefaults applies JSON output and the 110 °C limit line.
func (c *ReportConfig) SetDefaults() {
	if c.Format == "" {
		c.Format = string(export.FormatJSON)
	}
	if c.HotSpotLimitC == 0 {
		c.HotSpotLimitC = 110
	}
}

// Validate checks the report format.
func (c ReportConfig) Validate() error {
	_, err := export.ParseFormat(c.Format)
	return err
}
