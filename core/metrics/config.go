package metrics

import "github.com/kilianp07/gridwarden/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddr exposes /metrics while the command runs when set.
	PrometheusAddr string `json:"prometheus_addr"`
}
